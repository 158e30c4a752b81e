package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

func TestValidateGSTIN(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"valid gstin", "29ABCDE1234F1Z5", true},
		{"valid gstin alt state", "07AABCU9603R1ZM", true},
		{"empty", "", false},
		{"not found sentinel", "Not Found", false},
		{"too short", "29ABCDE1234F1Z", false},
		{"too long", "29ABCDE1234F1Z55", false},
		{"lowercase", "29abcde1234f1z5", false},
		{"missing literal Z", "29ABCDE1234F1X5", false},
		{"entity digit zero", "29ABCDE1234F0Z5", false},
		{"bad state code", "2XABCDE1234F1Z5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateGSTIN(tt.code))
		})
	}
}

func TestValidateInvoiceMath_Valid(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": 100.5, "qty": 2.0, "rate": 50.25},
			map[string]interface{}{"amount": 150.0, "qty": 3.0, "rate": 50.0},
		},
		"summary": map[string]interface{}{
			"grandTotal": 250.0, // within the 1 rupee tolerance of 250.5
			"totalTax":   0.0,
		},
	}

	verdict := ValidateInvoiceMath(raw)
	assert.True(t, verdict.MathValid)
	assert.Empty(t, verdict.Errors)
	assert.Empty(t, verdict.Warnings)
}

func TestValidateInvoiceMath_TotalMismatch(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": 100.0},
			map[string]interface{}{"amount": 150.0},
		},
		"summary": map[string]interface{}{
			"grandTotal": 300.0,
		},
	}

	verdict := ValidateInvoiceMath(raw)
	assert.False(t, verdict.MathValid)
	require.Len(t, verdict.Warnings, 1)
	assert.Contains(t, verdict.Warnings[0], "Math Mismatch")
	assert.Contains(t, verdict.Warnings[0], "250")
	assert.Contains(t, verdict.Warnings[0], "300")
}

func TestValidateInvoiceMath_UsesLargerOfTotals(t *testing.T) {
	// When the summary grand total and the header total disagree, the larger
	// one is the reconciliation target.
	raw := map[string]interface{}{
		"invoiceDetails": map[string]interface{}{
			"totalAmount": 500.0,
		},
		"lineItems": []interface{}{
			map[string]interface{}{"amount": 500.0},
		},
		"summary": map[string]interface{}{
			"grandTotal": 120.0,
		},
	}

	verdict := ValidateInvoiceMath(raw)
	assert.True(t, verdict.MathValid)
	assert.Empty(t, verdict.Warnings)
}

func TestValidateInvoiceMath_UnreadableAmount(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": "abc"},
		},
		"summary": map[string]interface{}{
			"grandTotal": 100.0,
		},
	}

	// Must degrade to verdict entries, never panic
	verdict := ValidateInvoiceMath(raw)
	assert.False(t, verdict.MathValid)
	require.NotEmpty(t, verdict.Errors)
	assert.Contains(t, verdict.Errors[0], "unreadable amount")
}

func TestValidateInvoiceMath_CurrencyStrings(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": "₹1,000.00"},
			map[string]interface{}{"amount": "Rs. 500"},
		},
		"summary": map[string]interface{}{
			"grandTotal": "1,500",
		},
	}

	verdict := ValidateInvoiceMath(raw)
	assert.True(t, verdict.MathValid)
	assert.Empty(t, verdict.Errors)
}

func TestValidateInvoiceMath_TaxMismatchIsAdvisory(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": 118.0},
		},
		"taxAnalysis": []interface{}{
			map[string]interface{}{"cgst": 9.0, "sgst": 9.0, "igst": 0.0},
		},
		"summary": map[string]interface{}{
			"grandTotal": 118.0,
			"totalTax":   50.0, // disagrees with 18 by more than tolerance
		},
	}

	verdict := ValidateInvoiceMath(raw)
	// Tax reconciliation never fails an invoice on its own
	assert.True(t, verdict.MathValid)
	require.Len(t, verdict.Warnings, 1)
	assert.Contains(t, verdict.Warnings[0], "Tax Mismatch")
}

func TestValidateInvoiceMath_QtyRateWarning(t *testing.T) {
	raw := map[string]interface{}{
		"lineItems": []interface{}{
			map[string]interface{}{"amount": 100.0, "qty": 5.0, "rate": 30.0},
		},
		"summary": map[string]interface{}{
			"grandTotal": 100.0,
		},
	}

	verdict := ValidateInvoiceMath(raw)
	assert.True(t, verdict.MathValid)
	require.Len(t, verdict.Warnings, 1)
	assert.Contains(t, verdict.Warnings[0], "Line 1")
}

func TestValidateInvoiceMath_NilPayload(t *testing.T) {
	verdict := ValidateInvoiceMath(nil)
	assert.True(t, verdict.MathValid)
	assert.Empty(t, verdict.Errors)
}

func TestCheckEscalationCriteria_Notice(t *testing.T) {
	tests := []struct {
		name     string
		risk     models.RiskLevel
		penalty  string
		escalate bool
	}{
		{"high risk no penalty", models.RiskHigh, "0", true},
		{"high risk case insensitive", models.RiskLevel("HIGH"), "Not Found", true},
		{"low risk big penalty", models.RiskLow, "60000", true},
		{"low risk currency penalty", models.RiskLow, "₹75,000", true},
		{"low risk small penalty", models.RiskLow, "1000", false},
		{"low risk exact threshold", models.RiskLow, "50000", false},
		{"medium risk no penalty", models.RiskMedium, "Not Found", false},
		{"unknown risk garbled penalty", models.RiskUnknown, "ten thousand", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.ExtractionRecord{
				DocType: models.DocTypeNotice,
				Notice: &models.NoticeRecord{
					RiskLevel: tt.risk,
					Penalty:   tt.penalty,
				},
			}
			assert.Equal(t, tt.escalate, CheckEscalationCriteria(rec))
		})
	}
}

func TestCheckEscalationCriteria_Invoice(t *testing.T) {
	rec := &models.ExtractionRecord{
		DocType: models.DocTypeInvoice,
		Invoice: &models.InvoiceRecord{
			Summary: models.InvoiceSummary{GrandTotal: 600000},
		},
	}
	assert.True(t, CheckEscalationCriteria(rec))

	rec.Invoice.Summary.GrandTotal = 500000
	assert.False(t, CheckEscalationCriteria(rec))
}

func TestCheckEscalationCriteria_NilRecord(t *testing.T) {
	assert.False(t, CheckEscalationCriteria(nil))
	assert.False(t, CheckEscalationCriteria(&models.ExtractionRecord{DocType: models.DocTypeNotice}))
}
