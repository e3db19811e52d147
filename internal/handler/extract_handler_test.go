package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docpilot/internal/catalog"
	"docpilot/internal/domain"
	"docpilot/internal/extractor"
	"docpilot/internal/handler"
	"docpilot/internal/middleware"
	"docpilot/internal/port"
	"docpilot/internal/provider"
	"docpilot/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const handlerStubResponse = `{
  "document_type": "purchase_order",
  "document_number": "PO-7",
  "supplier": {"name": "Acme Marine"},
  "currency": "USD",
  "total_amount": 50,
  "items": [{"line_number": 1, "product_code": "P-1", "product_name": "ROPE",
             "quantity": 5, "unit": "PCS", "unit_price": 10, "total_price": 50}],
  "confidence": 0.9
}`

type stubStore struct{ templates []domain.Template }

func (s *stubStore) List(context.Context, domain.TemplateFilter) ([]domain.Template, error) {
	return s.templates, nil
}

func (s *stubStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Template, error) {
	for i := range s.templates {
		if s.templates[i].ID == id {
			return &s.templates[i], nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

func (s *stubStore) IncrementUsage(context.Context, uuid.UUID) error { return nil }

type stubProvider struct{ response string }

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Complete(context.Context, port.CompletionRequest) (string, error) {
	return p.response, nil
}

type stubText struct{}

func (stubText) ExtractText(context.Context, []byte, string, string) (*port.TextResult, error) {
	return &port.TextResult{Text: "PURCHASE ORDER"}, nil
}

func newExtractHandler(t *testing.T) *handler.ExtractHandler {
	t.Helper()
	store := &stubStore{templates: []domain.Template{{
		ID:                 uuid.New(),
		Name:               "Purchase Order Extraction",
		Category:           domain.DocTypePurchaseOrder,
		Version:            "1.0.0",
		Namespace:          domain.PromptSystemManaged,
		Suppliers:          domain.StringList{domain.SupplierWildcard},
		ProviderPreference: "stub",
		IsActive:           true,
	}}}
	cat := catalog.NewService(store, catalog.Config{}, nil)
	rt := provider.NewRouter([]provider.Entry{{
		Handle: domain.ProviderHandle{Name: "stub", IsConfigured: true},
		Client: &stubProvider{response: handlerStubResponse},
	}})
	exec := extractor.NewExecutor(rt, time.Second)
	svc := service.NewExtractionService(cat, exec, service.NewUsageQueue(store, 8), stubText{}, nil,
		service.ExtractionConfig{ManagedPercent: 100})
	batch := service.NewBatchProcessor(svc, nil, service.BatchConfig{Concurrency: 1})
	return handler.NewExtractHandler(svc, batch, 10)
}

func formRequest(t *testing.T, target string, fields url.Values) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, target, strings.NewReader(fields.Encode()))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Set(middleware.ContextKeyEmail, "ops@example.com")
	c.Set(middleware.ContextKeyRole, string(domain.RoleMember))
	return w, c
}

func TestExtractHandler_RawTextSuccess(t *testing.T) {
	h := newExtractHandler(t)
	w, c := formRequest(t, "/api/v1/extract", url.Values{
		"raw_text":      {"PURCHASE ORDER PO-7\nBILL TO Acme"},
		"supplier_hint": {"Acme Marine"},
	})

	h.Extract(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success  bool                      `json:"success"`
		Data     *domain.ExtractedRecord   `json:"data"`
		Metadata domain.ExtractionMetadata `json:"extraction_metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "PO-7", resp.Data.DocumentNumber)
	assert.Equal(t, domain.DocTypePurchaseOrder, resp.Metadata.DocumentType)
	assert.Equal(t, "stub", resp.Metadata.ProviderUsed)
}

func TestExtractHandler_MissingDocument(t *testing.T) {
	h := newExtractHandler(t)
	w, c := formRequest(t, "/api/v1/extract", url.Values{})

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NO_FILE", resp.Error.Code)
}

func TestExtractHandler_Unauthenticated(t *testing.T) {
	h := newExtractHandler(t)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader("raw_text=x"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	h.Extract(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExtractHandler_BankPaymentForcesCategory(t *testing.T) {
	h := newExtractHandler(t)
	w, c := formRequest(t, "/api/v1/extract/bank-payment", url.Values{
		"raw_text": {"PAYMENT ADVICE VALUE DATE 2026-03-01"},
	})

	h.ExtractBankPayment(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Metadata domain.ExtractionMetadata `json:"extraction_metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.DocTypeBankPayment, resp.Metadata.DocumentType)
}

func TestMapDomainError_Codes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrNoFile, http.StatusBadRequest, "NO_FILE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrNoProviderAvailable, http.StatusServiceUnavailable, "NO_PROVIDER_AVAILABLE"},
		{domain.ErrProviderTimeout, http.StatusGatewayTimeout, "PROVIDER_TIMEOUT"},
		{domain.ErrParseFailure, http.StatusBadGateway, "PARSE_ERROR"},
		{domain.ErrProvider, http.StatusBadGateway, "EXTRACTION_FAILED"},
	}
	for _, tc := range cases {
		status, code, _ := handler.MapDomainError(tc.err)
		assert.Equal(t, tc.status, status, tc.code)
		assert.Equal(t, tc.code, code)
	}
}
