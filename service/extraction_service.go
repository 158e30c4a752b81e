package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Abhishek-Jose7/CA-alternative/models"
)

// HistoryStore persists finished extraction results for a user's history view
type HistoryStore interface {
	SaveDocument(ctx context.Context, userID string, docType models.DocumentType, payload interface{}) error
}

// ExtractionService runs the post-extraction pipeline: vision extraction,
// normalization, deterministic validation, guidance retrieval and review
// escalation. Validation and retrieval failures degrade the result; only a
// failed extraction call aborts, because nothing downstream can run without
// a record.
type ExtractionService struct {
	llm     LLM
	rag     *RAGService
	queue   *ReviewQueue
	history HistoryStore

	persistTimeout time.Duration
}

// ExtractionServiceOption is a functional option for ExtractionService
type ExtractionServiceOption func(*ExtractionService)

// ExtractionWithLLM sets the vision/language model collaborator
func ExtractionWithLLM(llm LLM) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.llm = llm
	}
}

// ExtractionWithRAG sets the retrieval engine
func ExtractionWithRAG(rag *RAGService) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.rag = rag
	}
}

// ExtractionWithReviewQueue sets the CA review queue
func ExtractionWithReviewQueue(queue *ReviewQueue) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.queue = queue
	}
}

// ExtractionWithHistoryStore sets the durable history collaborator
func ExtractionWithHistoryStore(store HistoryStore) ExtractionServiceOption {
	return func(s *ExtractionService) {
		s.history = store
	}
}

// NewExtractionService creates an extraction service
func NewExtractionService(opts ...ExtractionServiceOption) *ExtractionService {
	s := &ExtractionService{
		persistTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// kacchaBillWarning is appended to the verdict when the vendor GSTIN fails
// validation and the invoice is marked informal.
const kacchaBillWarning = "Kaccha Bill: vendor GSTIN is missing or invalid. This invoice cannot be used to claim ITC."

// DecodeNoticeRequest represents a request to decode a scanned notice
type DecodeNoticeRequest struct {
	Image      []byte
	MimeType   string
	Language   string // language code for the generated summaries
	SourceName string // original filename, used for review item ids
	UserID     string
}

// DecodeNoticeResult represents a decoded notice with attached guidance
type DecodeNoticeResult struct {
	Record      *models.ExtractionRecord
	Guidance    []models.GuidanceMatch
	NeedsReview bool
	ReviewID    string
}

// DecodeNotice extracts a notice, attaches guidance and escalates if needed
func (s *ExtractionService) DecodeNotice(ctx context.Context, req DecodeNoticeRequest) (*DecodeNoticeResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("llm client not set")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	text, err := s.llm.GenerateVision(ctx, noticeModel, noticePrompt(language), req.Image, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	raw, err := cleanJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable model output: %v", ErrExtractionFailed, err)
	}

	record := &models.ExtractionRecord{
		DocType: models.DocTypeNotice,
		Notice:  models.NoticeRecordFromRaw(raw, language),
	}

	result := &DecodeNoticeResult{Record: record}

	// Guidance retrieval is notices-only and best-effort
	if s.rag != nil {
		query := strings.TrimSpace(record.Notice.Reason + " " + record.Notice.Summary)
		if query != "" {
			result.Guidance = s.rag.QueryKnowledgeBase(ctx, query, 0)
		}
	}

	if s.queue != nil && CheckEscalationCriteria(record) {
		item := s.queue.Enqueue(ctx, record, req.SourceName)
		result.NeedsReview = true
		result.ReviewID = item.ID
	}

	s.persistHistory(req.UserID, models.DocTypeNotice, result)
	return result, nil
}

// ParseInvoiceRequest represents a request to parse a scanned invoice
type ParseInvoiceRequest struct {
	Image      []byte
	MimeType   string
	SourceName string
	UserID     string
}

// ParseInvoiceResult represents a parsed invoice with its validation verdict
type ParseInvoiceResult struct {
	Record      *models.ExtractionRecord
	Verdict     models.ValidationVerdict
	NeedsReview bool
	ReviewID    string
}

// ParseInvoice extracts an invoice, validates its math and escalates if needed
func (s *ExtractionService) ParseInvoice(ctx context.Context, req ParseInvoiceRequest) (*ParseInvoiceResult, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("llm client not set")
	}

	text, err := s.llm.GenerateVision(ctx, invoiceModel, invoicePrompt, req.Image, req.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	raw, err := cleanJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable model output: %v", ErrExtractionFailed, err)
	}

	// Validation runs on the raw payload so coercion failures are recorded;
	// normalization then produces the typed record everything else uses.
	verdict := ValidateInvoiceMath(raw)
	record := &models.ExtractionRecord{
		DocType: models.DocTypeInvoice,
		Invoice: models.InvoiceRecordFromRaw(raw),
	}

	applyKacchaBillPolicy(record.Invoice, &verdict)

	result := &ParseInvoiceResult{
		Record:  record,
		Verdict: verdict,
	}

	if s.queue != nil && CheckEscalationCriteria(record) {
		item := s.queue.Enqueue(ctx, record, req.SourceName)
		result.NeedsReview = true
		result.ReviewID = item.ID
	}

	s.persistHistory(req.UserID, models.DocTypeInvoice, result)
	return result, nil
}

// applyKacchaBillPolicy marks invoices whose vendor GSTIN fails validation.
// This composition stays outside the validation engine so the engine remains
// rule-pure.
func applyKacchaBillPolicy(invoice *models.InvoiceRecord, verdict *models.ValidationVerdict) {
	if invoice == nil {
		return
	}
	if !ValidateGSTIN(invoice.Vendor.GSTIN) {
		invoice.IsKacchaBill = true
		verdict.Warnings = append(verdict.Warnings, kacchaBillWarning)
	}
}

// persistHistory writes the finished result to the durable history in the
// background. Loss of a history entry is acceptable; the extraction response
// has already been computed.
func (s *ExtractionService) persistHistory(userID string, docType models.DocumentType, payload interface{}) {
	if s.history == nil || userID == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
		defer cancel()
		if err := s.history.SaveDocument(ctx, userID, docType, payload); err != nil {
			log.Printf("Warning: Failed to persist %s history for user %s: %v", docType, userID, err)
		}
	}()
}

// cleanJSON strips markdown code fences the model sometimes wraps around its
// output and decodes the result
func cleanJSON(text string) (map[string]interface{}, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// noticePrompt builds the strict-JSON extraction prompt for GST notices.
// Summaries are generated in the requested language; field names stay fixed.
func noticePrompt(language string) string {
	return fmt.Sprintf(`You are a GST compliance expert for Indian MSMEs.
Analyze this image of a government notice.

Return a STRICT JSON object (no markdown, no extra text) with this schema:
{
  "noticeType": "<string: e.g. ASMT-10, DRC-01, Show Cause Notice, Address Verification>",
  "deadline": "<string: DD MMM YYYY or empty if none>",
  "penalty": "<string: e.g. 'Rs 5000' or 'Not Found'>",
  "reason": "<string: why the notice was issued, in language code %[1]s>",
  "riskLevel": "<string: High, Medium, Low, or Safe>",
  "actionRequired": "<string: clear next step, in language code %[1]s>",
  "summary": "<string: simple 1-2 sentence explanation, in language code %[1]s>"
}

Risk Logic:
- "Safe": Information only, no negative consequence.
- "Low": Minor discrepancy or info needed, no deadline pressure.
- "Medium": Requires a response but no immediate penalty.
- "High": Deadlines, penalties, or show-cause.`, language)
}

// invoicePrompt is the strict-JSON extraction prompt for invoices
const invoicePrompt = `Extract data from this invoice image into a STRICT JSON object (no markdown, no extra text):
{
  "invoiceDetails": {"invoiceNumber": "", "date": "", "dueDate": "", "totalAmount": 0, "receivedAmount": 0, "balanceAmount": 0},
  "vendor": {"name": "", "address": "", "gstin": "", "mobile": ""},
  "customer": {"name": "", "address": "", "gstin": "", "mobile": ""},
  "lineItems": [{"description": "", "hsn": "", "qty": 0, "unit": "", "rate": 0, "discount": 0, "taxAmount": 0, "amount": 0}],
  "taxAnalysis": [{"rate": 0, "taxableValue": 0, "cgst": 0, "sgst": 0, "igst": 0}],
  "summary": {"totalTaxable": 0, "totalTax": 0, "roundOff": 0, "grandTotal": 0}
}

Rules:
- Focus on extracting every line item.
- All amounts numeric, without currency symbols.
- Use 0 for numeric fields you cannot find and "" for text fields.
- If the vendor GSTIN is not printed, use "Not Found".`
