package domain

// Party is a counterparty on a business document.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
	Country string `json:"country"`
}

// LineItem is a single item line on a purchase order, proforma or invoice.
type LineItem struct {
	LineNumber  int     `json:"line_number"`
	ProductCode string  `json:"product_code"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	ProjectCode string  `json:"project_code,omitempty"`
}

// BankDetail carries the payment-slip fields present only on bank payments.
type BankDetail struct {
	PayerBank        string `json:"payer_bank"`
	PayeeBank        string `json:"payee_bank"`
	PayerAccount     string `json:"payer_account"`
	PayeeAccount     string `json:"payee_account"`
	TransactionRef   string `json:"transaction_ref"`
	ValueDate        string `json:"value_date"`
	PaymentReference string `json:"payment_reference"`
}

// ExtractedRecord is the structured output of one extraction, keyed by
// DocumentType. BankDetail is nil except for bank payments.
type ExtractedRecord struct {
	DocumentType   DocumentType `json:"document_type"`
	DocumentNumber string       `json:"document_number"`
	DocumentDate   string       `json:"document_date"`
	Supplier       Party        `json:"supplier"`
	Buyer          Party        `json:"buyer"`
	Currency       string       `json:"currency"`
	TotalAmount    float64      `json:"total_amount"`
	Items          []LineItem   `json:"items"`
	BankDetail     *BankDetail  `json:"bank_detail,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// CorrectionNote records one repair applied by the reconciliation pass.
type CorrectionNote struct {
	FieldPath string `json:"field_path"`
	Rule      string `json:"rule"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Message   string `json:"message"`
}

// ExtractionMetadata describes how a record was produced.
type ExtractionMetadata struct {
	DocumentType     DocumentType `json:"documentType"`
	TemplateID       string       `json:"templateId"`
	TemplateName     string       `json:"templateName"`
	TemplateVersion  string       `json:"templateVersion"`
	ProviderUsed     string       `json:"providerUsed"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
	Confidence       float64      `json:"confidence"`
	SupplierDetected string       `json:"supplierDetected,omitempty"`
	SelectionScore   int          `json:"selectionScore"`
	UsedFallbackSet  bool         `json:"usedFallbackSet"`
}

// ExtractionResult is the engine's output handed to the HTTP layer.
type ExtractionResult struct {
	Record      *ExtractedRecord   `json:"data"`
	Metadata    ExtractionMetadata `json:"extraction_metadata"`
	Corrections []CorrectionNote   `json:"corrections,omitempty"`
}
