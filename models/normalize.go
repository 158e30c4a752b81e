package models

import (
	"strconv"
	"strings"
)

// Normalization maps the loosely-structured JSON guess coming back from the
// vision model onto the typed record variants. All defaulting happens here in
// one pass: missing numerics become 0, missing strings become "", sub-structs
// are always present. Downstream code never sees nulls.

// NoticeRecordFromRaw builds a NoticeRecord from a raw extraction payload
func NoticeRecordFromRaw(raw map[string]interface{}, language string) *NoticeRecord {
	rec := &NoticeRecord{
		NoticeType:     rawString(raw, "noticeType"),
		Deadline:       rawString(raw, "deadline"),
		Penalty:        rawString(raw, "penalty"),
		Reason:         rawString(raw, "reason"),
		RiskLevel:      normalizeRiskLevel(rawString(raw, "riskLevel")),
		ActionRequired: rawString(raw, "actionRequired"),
		Summary:        rawString(raw, "summary"),
		Language:       language,
	}
	if rec.Penalty == "" {
		rec.Penalty = "Not Found"
	}
	return rec
}

// InvoiceRecordFromRaw builds an InvoiceRecord from a raw extraction payload
func InvoiceRecordFromRaw(raw map[string]interface{}) *InvoiceRecord {
	details := rawMap(raw, "invoiceDetails")
	summary := rawMap(raw, "summary")

	rec := &InvoiceRecord{
		InvoiceDetails: InvoiceDetails{
			InvoiceNumber:  rawString(details, "invoiceNumber"),
			Date:           rawString(details, "date"),
			DueDate:        rawString(details, "dueDate"),
			TotalAmount:    currency(rawFloat(details, "totalAmount")),
			ReceivedAmount: currency(rawFloat(details, "receivedAmount")),
			BalanceAmount:  currency(rawFloat(details, "balanceAmount")),
		},
		Vendor:   partyFromRaw(rawMap(raw, "vendor")),
		Customer: partyFromRaw(rawMap(raw, "customer")),
		Summary: InvoiceSummary{
			TotalTaxable: currency(rawFloat(summary, "totalTaxable")),
			TotalTax:     currency(rawFloat(summary, "totalTax")),
			RoundOff:     rawFloat(summary, "roundOff"), // round-off may legitimately be negative
			GrandTotal:   currency(rawFloat(summary, "grandTotal")),
		},
		LineItems:   []LineItem{},
		TaxBrackets: []TaxBracket{},
	}

	for _, item := range rawSlice(raw, "lineItems") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rec.LineItems = append(rec.LineItems, LineItem{
			Description: rawString(m, "description"),
			HSN:         rawString(m, "hsn"),
			Qty:         rawFloat(m, "qty"),
			Unit:        rawString(m, "unit"),
			Rate:        rawFloat(m, "rate"),
			Discount:    rawFloat(m, "discount"),
			TaxAmount:   rawFloat(m, "taxAmount"),
			Amount:      currency(rawFloat(m, "amount")),
		})
	}

	for _, bracket := range rawSlice(raw, "taxAnalysis") {
		m, ok := bracket.(map[string]interface{})
		if !ok {
			continue
		}
		rec.TaxBrackets = append(rec.TaxBrackets, TaxBracket{
			Rate:         rawFloat(m, "rate"),
			TaxableValue: currency(rawFloat(m, "taxableValue")),
			CGST:         currency(rawFloat(m, "cgst")),
			SGST:         currency(rawFloat(m, "sgst")),
			IGST:         currency(rawFloat(m, "igst")),
		})
	}

	return rec
}

func partyFromRaw(m map[string]interface{}) Party {
	return Party{
		Name:    rawString(m, "name"),
		Address: rawString(m, "address"),
		GSTIN:   rawString(m, "gstin"),
		Mobile:  rawString(m, "mobile"),
	}
}

func normalizeRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "action required":
		return RiskHigh
	case "medium", "needs review":
		return RiskMedium
	case "low":
		return RiskLow
	case "safe":
		return RiskSafe
	default:
		return RiskUnknown
	}
}

// currency clamps currency values to be non-negative after normalization
func currency(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func rawString(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func rawMap(m map[string]interface{}, key string) map[string]interface{} {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func rawSlice(m map[string]interface{}, key string) []interface{} {
	if m == nil {
		return nil
	}
	if s, ok := m[key].([]interface{}); ok {
		return s
	}
	return nil
}

// rawFloat coerces a numeric-ish value to float64, defaulting to 0.
// The model sometimes returns amounts as strings ("1,234.50" or "₹500").
func rawFloat(m map[string]interface{}, key string) float64 {
	if m == nil {
		return 0
	}
	v, err := CoerceFloat(m[key])
	if err != nil {
		return 0
	}
	return v
}

// CoerceFloat converts a raw JSON value to a float64. Unlike rawFloat it
// reports garbled values so the validation engine can record them as errors.
func CoerceFloat(v interface{}) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, nil
		}
		s = strings.ReplaceAll(s, "₹", "")
		s = strings.ReplaceAll(s, "Rs.", "")
		s = strings.ReplaceAll(s, "Rs", "")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return f, nil
	default:
		return 0, strconv.ErrSyntax
	}
}
