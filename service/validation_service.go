package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// Rule-based checks over extraction output. A malformed extraction is an
// expected input here, not an exceptional one: every failure mode degrades to
// a verdict entry and nothing escapes this package as a panic or error.

// gstinPattern is the fixed 15-character GSTIN grammar: 2 digits (state code),
// 5 letters + 4 digits + 1 letter (PAN), 1 entity-count character, literal Z,
// 1 checksum character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// amountTolerance is the absolute rounding slack allowed when reconciling
// extracted totals, in currency units.
const amountTolerance = 1.0

// penaltyEscalationThreshold and invoiceEscalationThreshold are the CA-review
// triggers: notices demanding more than 50k, invoices above 5 lakhs.
const (
	penaltyEscalationThreshold = 50000.0
	invoiceEscalationThreshold = 500000.0
)

// ValidateGSTIN reports whether code matches the GSTIN grammar. Empty input
// and the extractor's "Not Found" sentinel are simply invalid, not errors.
func ValidateGSTIN(code string) bool {
	if code == "" || code == "Not Found" {
		return false
	}
	return gstinPattern.MatchString(code)
}

// ValidateInvoiceMath reconciles the extracted line items and tax brackets
// against the extracted totals. It operates on the raw payload because
// numeric coercion failures (a garbled amount) are themselves findings.
//
// The two checks are deliberately asymmetric: a grand-total mismatch flips
// MathValid, a tax-breakdown mismatch is advisory only. Sub-tax extraction is
// the least reliable part of the model output, so it never fails an invoice
// on its own.
func ValidateInvoiceMath(raw map[string]interface{}) models.ValidationVerdict {
	verdict := models.NewValidationVerdict()
	if raw == nil {
		return verdict
	}

	details, _ := raw["invoiceDetails"].(map[string]interface{})
	summary, _ := raw["summary"].(map[string]interface{})
	lineItems, _ := raw["lineItems"].([]interface{})

	// Sum(lineItems.amount) vs grand total
	calcTotal := 0.0
	coerced := true
	for i, item := range lineItems {
		m, ok := item.(map[string]interface{})
		if !ok {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("Validation Error: line item %d is not an object", i+1))
			verdict.MathValid = false
			coerced = false
			continue
		}
		amount, err := models.CoerceFloat(m["amount"])
		if err != nil {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("Validation Error: line item %d has unreadable amount %q", i+1, fmt.Sprint(m["amount"])))
			verdict.MathValid = false
			coerced = false
			continue
		}
		calcTotal += amount

		// qty * rate should approximate the line amount. Logged only; unit
		// conversions and discounts make this too noisy to enforce.
		qty, qerr := models.CoerceFloat(m["qty"])
		rate, rerr := models.CoerceFloat(m["rate"])
		if qerr == nil && rerr == nil && qty > 0 && rate > 0 && math.Abs(qty*rate-amount) > amountTolerance {
			verdict.Warnings = append(verdict.Warnings, fmt.Sprintf("Line %d: qty %.2f x rate %.2f = %.2f does not match amount %.2f", i+1, qty, rate, qty*rate, amount))
		}
	}

	grandTotal, gtErr := coercedField(&verdict, summary, "grandTotal", "summary grand total")
	totalAmount, taErr := coercedField(&verdict, details, "totalAmount", "invoice total amount")
	expected := math.Max(grandTotal, totalAmount)

	if coerced && gtErr == nil && taErr == nil && math.Abs(calcTotal-expected) > amountTolerance {
		verdict.MathValid = false
		verdict.Warnings = append(verdict.Warnings, fmt.Sprintf("Math Mismatch: Line items sum up to ₹%g, but grand total is ₹%g.", calcTotal, expected))
	}

	// Tax breakdown reconciliation (advisory only)
	taxAnalysis, _ := raw["taxAnalysis"].([]interface{})
	calcTax := 0.0
	taxCoerced := true
	for i, bracket := range taxAnalysis {
		m, ok := bracket.(map[string]interface{})
		if !ok {
			continue
		}
		for _, field := range []string{"cgst", "sgst", "igst"} {
			v, err := models.CoerceFloat(m[field])
			if err != nil {
				verdict.Errors = append(verdict.Errors, fmt.Sprintf("Validation Error: tax bracket %d has unreadable %s %q", i+1, field, fmt.Sprint(m[field])))
				verdict.MathValid = false
				taxCoerced = false
				continue
			}
			calcTax += v
		}
	}

	totalTax, ttErr := coercedField(&verdict, summary, "totalTax", "summary total tax")
	if taxCoerced && ttErr == nil && math.Abs(calcTax-totalTax) > amountTolerance {
		verdict.Warnings = append(verdict.Warnings, fmt.Sprintf("Tax Mismatch: Calculated taxes (%g) do not match summary tax (%g).", calcTax, totalTax))
	}

	return verdict
}

// coercedField reads a numeric field, recording a coercion failure on the
// verdict and flipping MathValid (a total we cannot read cannot be trusted).
func coercedField(verdict *models.ValidationVerdict, m map[string]interface{}, key, label string) (float64, error) {
	if m == nil {
		return 0, nil
	}
	v, err := models.CoerceFloat(m[key])
	if err != nil {
		verdict.Errors = append(verdict.Errors, fmt.Sprintf("Validation Error: %s is unreadable: %q", label, fmt.Sprint(m[key])))
		verdict.MathValid = false
		return 0, err
	}
	return v, nil
}

// CheckEscalationCriteria decides whether a record needs a CA in the loop.
// Pure and deterministic: high-risk notices, notices with a penalty above
// 50,000, and invoices above 5 lakhs escalate. A math-validation failure is
// intentionally not a trigger here.
func CheckEscalationCriteria(rec *models.ExtractionRecord) bool {
	if rec == nil {
		return false
	}

	switch rec.DocType {
	case models.DocTypeNotice:
		if rec.Notice == nil {
			return false
		}
		if strings.EqualFold(string(rec.Notice.RiskLevel), "high") {
			return true
		}
		return parsePenalty(rec.Notice.Penalty) > penaltyEscalationThreshold

	case models.DocTypeInvoice:
		if rec.Invoice == nil {
			return false
		}
		return rec.Invoice.Summary.GrandTotal > invoiceEscalationThreshold
	}

	return false
}

// parsePenalty extracts a numeric penalty from a currency string. Non-numeric
// or absent penalties coerce to 0 and never escalate on their own.
func parsePenalty(penalty string) float64 {
	v, err := models.CoerceFloat(penalty)
	if err != nil {
		return 0
	}
	return v
}
