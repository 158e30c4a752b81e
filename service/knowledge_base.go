package service

import "github.com/Abhishek-Jose7/CA-alternative/models"

// defaultKnowledgeBase is the curated set of GST circulars and rules used for
// retrieval-augmented guidance on notices. It is intentionally small: each
// entry maps a recurring notice cause to the concrete next step a shop owner
// should take.
func defaultKnowledgeBase() []models.KnowledgeDoc {
	return []models.KnowledgeDoc{
		{
			ID:       "GST-001",
			Title:    "Section 16(2)(c) - ITC Mismatch",
			Content:  "Circular regarding mismatch between GSTR-3B and GSTR-2A. If supplier has not paid tax, ITC can be blocked under Section 16(2)(c).",
			Guidance: "Verify if the supplier has filed GSTR-1 and paid tax. Ask for a payment confirmation receipt.",
		},
		{
			ID:       "GST-002",
			Title:    "Rule 86B - 1% Cash Payment",
			Content:  "Rule 86B restricts use of ITC to 99% of tax liability for businesses with turnover > 50L. 1% must be paid in cash.",
			Guidance: "Ensure that at least 1% of the output tax liability is paid through the electronic cash ledger.",
		},
		{
			ID:       "GST-003",
			Title:    "HSN Code Misclassification",
			Content:  "Notices often arise from using wrong HSN codes (e.g., 12% vs 18%). Common for furniture, textile, and electronics.",
			Guidance: "Check the exact HSN code from the official CBIC directory and ensure rate consistency.",
		},
		{
			ID:       "GST-004",
			Title:    "Interest on Delayed Payment",
			Content:  "Section 50 mandates 18% interest on net tax liability if delayed beyond due date.",
			Guidance: "Calculate interest from the day after the due date until the actual date of payment.",
		},
	}
}
