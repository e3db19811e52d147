package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"docpilot/internal/domain"
	"docpilot/internal/middleware"
	"docpilot/internal/service"
)

// ExtractHandler handles document extraction endpoints.
type ExtractHandler struct {
	extraction *service.ExtractionService
	batch      *service.BatchProcessor
	maxItems   int
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extraction *service.ExtractionService, batch *service.BatchProcessor, maxItems int) *ExtractHandler {
	if maxItems <= 0 {
		maxItems = 25
	}
	return &ExtractHandler{extraction: extraction, batch: batch, maxItems: maxItems}
}

// Extract handles POST /api/v1/extract. The document arrives either as a
// multipart file or as a raw_text form field; the classifier decides the
// category.
func (h *ExtractHandler) Extract(c *gin.Context) {
	ectx, ok := h.extractionContext(c)
	if !ok {
		return
	}

	doc, err := h.buildDocument(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	res, err := h.extraction.Extract(c.Request.Context(), doc, ectx)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondExtraction(c, res)
}

// ExtractBankPayment handles POST /api/v1/extract/bank-payment. Bank slips
// are routed by endpoint, never inferred from content.
func (h *ExtractHandler) ExtractBankPayment(c *gin.Context) {
	ectx, ok := h.extractionContext(c)
	if !ok {
		return
	}

	doc, err := h.buildDocument(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	res, err := h.extraction.ExtractBankPayment(c.Request.Context(), doc, ectx)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondExtraction(c, res)
}

// ExtractBatch handles POST /api/v1/extract/batch with multiple files under
// the "files" field. Per-item outcomes come back together; one bad document
// never fails the batch.
func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	ectx, ok := h.extractionContext(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "NO_FILE", "multipart form with a files field is required")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		RespondError(c, http.StatusBadRequest, "NO_FILE", "at least one file is required")
		return
	}
	if len(headers) > h.maxItems {
		RespondError(c, http.StatusBadRequest, "BATCH_TOO_LARGE", "too many files in one batch")
		return
	}

	docs := make([]*domain.Document, 0, len(headers))
	for _, header := range headers {
		doc, err := documentFromFile(header)
		if err != nil {
			HandleError(c, err)
			return
		}
		docs = append(docs, doc)
	}

	result := h.batch.Process(c.Request.Context(), docs, ectx)
	RespondOK(c, result)
}

func (h *ExtractHandler) extractionContext(c *gin.Context) (domain.ExtractionContext, bool) {
	user, err := middleware.CallerFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return domain.ExtractionContext{}, false
	}

	ectx := domain.ExtractionContext{
		SupplierName: c.PostForm("supplier_hint"),
		User:         user,
		TestMode:     c.PostForm("test_mode") == "true",
	}
	switch c.PostForm("prompt_override") {
	case string(domain.PromptSystemManaged):
		ectx.ExplicitPromptOverride = domain.PromptSystemManaged
	case string(domain.PromptSystemLegacy):
		ectx.ExplicitPromptOverride = domain.PromptSystemLegacy
	}
	return ectx, true
}

// buildDocument assembles the transient document from the request: a file
// upload when present, otherwise the raw_text field.
func (h *ExtractHandler) buildDocument(c *gin.Context) (*domain.Document, error) {
	if _, header, err := c.Request.FormFile("file"); err == nil {
		doc, err := documentFromFile(header)
		if err != nil {
			return nil, err
		}
		doc.IsScanned = c.PostForm("is_scanned") == "true"
		return doc, nil
	}

	rawText := c.PostForm("raw_text")
	if rawText == "" {
		return nil, domain.ErrNoFile
	}
	return &domain.Document{RawText: rawText}, nil
}

func documentFromFile(header *multipart.FileHeader) (*domain.Document, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &domain.Document{
		Bytes:          data,
		SourceFilename: header.Filename,
		MimeType:       header.Header.Get("Content-Type"),
		SizeBytes:      header.Size,
	}, nil
}

// respondExtraction writes the extraction envelope: record, metadata and
// applied corrections at the top level.
func respondExtraction(c *gin.Context, res *domain.ExtractionResult) {
	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"data":                res.Record,
		"extraction_metadata": res.Metadata,
		"corrections":         res.Corrections,
	})
}
