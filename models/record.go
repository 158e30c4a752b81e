package models

// DocumentType represents the kind of scanned document
type DocumentType string

const (
	DocTypeNotice  DocumentType = "notice"
	DocTypeInvoice DocumentType = "invoice"
)

// RiskLevel represents the model-assessed severity of a notice
type RiskLevel string

const (
	RiskHigh    RiskLevel = "High"
	RiskMedium  RiskLevel = "Medium"
	RiskLow     RiskLevel = "Low"
	RiskSafe    RiskLevel = "Safe"
	RiskUnknown RiskLevel = "Unknown"
)

// NoticeRecord represents the structured extraction of a GST notice
type NoticeRecord struct {
	NoticeType     string    `json:"notice_type"`
	Deadline       string    `json:"deadline"`
	Penalty        string    `json:"penalty"` // currency string, may be "Not Found"
	Reason         string    `json:"reason"`
	RiskLevel      RiskLevel `json:"risk_level"`
	ActionRequired string    `json:"action_required"`
	Summary        string    `json:"summary"`
	Language       string    `json:"language"` // language code the text fields were generated in
}

// InvoiceDetails represents the invoice header fields
type InvoiceDetails struct {
	InvoiceNumber  string  `json:"invoice_number"`
	Date           string  `json:"date"`
	DueDate        string  `json:"due_date"`
	TotalAmount    float64 `json:"total_amount"`
	ReceivedAmount float64 `json:"received_amount"`
	BalanceAmount  float64 `json:"balance_amount"`
}

// Party represents a vendor or customer on an invoice
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
	Mobile  string `json:"mobile"`
}

// LineItem represents a single invoice line
type LineItem struct {
	Description string  `json:"description"`
	HSN         string  `json:"hsn"`
	Qty         float64 `json:"qty"`
	Unit        string  `json:"unit"`
	Rate        float64 `json:"rate"`
	Discount    float64 `json:"discount"`
	TaxAmount   float64 `json:"tax_amount"`
	Amount      float64 `json:"amount"`
}

// TaxBracket represents one GST rate slab on an invoice
type TaxBracket struct {
	Rate         float64 `json:"rate"`
	TaxableValue float64 `json:"taxable_value"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	IGST         float64 `json:"igst"`
}

// InvoiceSummary represents the invoice totals block
type InvoiceSummary struct {
	TotalTaxable float64 `json:"total_taxable"`
	TotalTax     float64 `json:"total_tax"`
	RoundOff     float64 `json:"round_off"`
	GrandTotal   float64 `json:"grand_total"`
}

// InvoiceRecord represents the structured extraction of an invoice
type InvoiceRecord struct {
	InvoiceDetails InvoiceDetails `json:"invoice_details"`
	Vendor         Party          `json:"vendor"`
	Customer       Party          `json:"customer"`
	LineItems      []LineItem     `json:"line_items"`
	TaxBrackets    []TaxBracket   `json:"tax_analysis"`
	Summary        InvoiceSummary `json:"summary"`
	IsKacchaBill   bool           `json:"is_kaccha_bill"`
}

// ExtractionRecord is a tagged union over notice and invoice extractions.
// Exactly one of Notice/Invoice is non-nil, selected by DocType.
type ExtractionRecord struct {
	DocType DocumentType   `json:"doc_type"`
	Notice  *NoticeRecord  `json:"notice,omitempty"`
	Invoice *InvoiceRecord `json:"invoice,omitempty"`
}

// ValidationVerdict accumulates the results of deterministic rule checks.
// It is attached to a record, never replaces it; independent checks append
// entries and never overwrite each other's.
type ValidationVerdict struct {
	MathValid bool     `json:"math_valid"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// NewValidationVerdict returns a verdict with no findings yet
func NewValidationVerdict() ValidationVerdict {
	return ValidationVerdict{
		MathValid: true,
		Errors:    []string{},
		Warnings:  []string{},
	}
}
