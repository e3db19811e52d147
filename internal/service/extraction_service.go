package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/google/uuid"

	"docpilot/internal/catalog"
	"docpilot/internal/classifier"
	"docpilot/internal/domain"
	"docpilot/internal/extractor"
	"docpilot/internal/port"
	"docpilot/internal/reconcile"
	"docpilot/internal/selector"
)

// ExtractionConfig holds orchestration settings.
type ExtractionConfig struct {
	ManagedPercent   int
	MaxFileSizeBytes int64
	ArchiveBucket    string
	ArchiveEnabled   bool
}

// ExtractionService runs the full pipeline for one document: classify,
// select a template, execute against the provider chain, reconcile the
// record, and report usage.
type ExtractionService struct {
	catalog  *catalog.Service
	executor *extractor.Executor
	usage    *UsageQueue
	text     port.TextExtractor
	storage  port.ObjectStorage
	cfg      ExtractionConfig
}

// NewExtractionService creates an ExtractionService. storage may be nil when
// archival is disabled.
func NewExtractionService(
	cat *catalog.Service,
	exec *extractor.Executor,
	usage *UsageQueue,
	text port.TextExtractor,
	storage port.ObjectStorage,
	cfg ExtractionConfig,
) *ExtractionService {
	return &ExtractionService{
		catalog:  cat,
		executor: exec,
		usage:    usage,
		text:     text,
		storage:  storage,
		cfg:      cfg,
	}
}

// Extract processes one document end to end. When ectx.DocumentType is
// unknown the content classifier decides; bank payments skip classification
// because that category is routed by endpoint.
func (s *ExtractionService) Extract(ctx context.Context, doc *domain.Document, ectx domain.ExtractionContext) (*domain.ExtractionResult, error) {
	started := time.Now()

	if err := s.prepare(ctx, doc); err != nil {
		return nil, err
	}
	s.archive(doc)

	docType := ectx.DocumentType
	if !docType.Known() {
		docType = classifier.Classify(doc.RawText)
	}
	ectx.DocumentType = docType

	tpl, sel, usedFallback, err := s.selectTemplate(ctx, ectx)
	if err != nil {
		return nil, err
	}

	res, err := s.executor.Execute(ctx, tpl, doc, docType)
	if err != nil {
		return nil, err
	}

	corrections := reconcile.Reconcile(res.Record, doc.RawText, ectx.SupplierName)

	if !usedFallback {
		s.usage.Publish(domain.UsageEvent{
			TemplateID: tpl.ID,
			UserEmail:  ectx.User.Email,
			TestMode:   ectx.TestMode,
			At:         time.Now(),
		})
	}

	return &domain.ExtractionResult{
		Record: res.Record,
		Metadata: domain.ExtractionMetadata{
			DocumentType:     docType,
			TemplateID:       tpl.ID.String(),
			TemplateName:     tpl.Name,
			TemplateVersion:  tpl.Version,
			ProviderUsed:     res.ProviderUsed,
			ProcessingTimeMs: time.Since(started).Milliseconds(),
			Confidence:       res.Confidence,
			SupplierDetected: ectx.SupplierName,
			SelectionScore:   sel.Score,
			UsedFallbackSet:  usedFallback,
		},
		Corrections: corrections,
	}, nil
}

// ExtractBankPayment processes a bank payment slip. The category is fixed by
// the endpoint; the bank-payment indicator score is logged for observability
// but never overrides the routing decision.
func (s *ExtractionService) ExtractBankPayment(ctx context.Context, doc *domain.Document, ectx domain.ExtractionContext) (*domain.ExtractionResult, error) {
	ectx.DocumentType = domain.DocTypeBankPayment
	if doc.RawText != "" {
		if score := classifier.ScoreBankPayment(doc.RawText); score == 0 {
			log.Printf("extractionService: bank-payment endpoint called with zero bank indicators (file=%s)", doc.SourceFilename)
		}
	}
	return s.Extract(ctx, doc, ectx)
}

// prepare validates the upload and fills RawText from the bytes when the
// caller did not supply text.
func (s *ExtractionService) prepare(ctx context.Context, doc *domain.Document) error {
	if doc.RawText == "" && len(doc.Bytes) == 0 {
		return domain.ErrNoFile
	}
	if s.cfg.MaxFileSizeBytes > 0 && doc.SizeBytes > s.cfg.MaxFileSizeBytes {
		return fmt.Errorf("%w: %d bytes", domain.ErrFileTooLarge, doc.SizeBytes)
	}

	if doc.RawText != "" || doc.IsScanned || len(doc.Bytes) == 0 {
		return nil
	}

	result, err := s.text.ExtractText(ctx, doc.Bytes, doc.SourceFilename, doc.MimeType)
	if err != nil {
		return err
	}
	doc.RawText = result.Text
	doc.IsScanned = result.NeedsVision
	return nil
}

// archive stores the source bytes to object storage, best-effort. The
// request never waits on it.
func (s *ExtractionService) archive(doc *domain.Document) {
	if !s.cfg.ArchiveEnabled || s.storage == nil || len(doc.Bytes) == 0 {
		return
	}
	key := fmt.Sprintf("documents/%s/%s-%s",
		time.Now().UTC().Format("2006/01/02"), uuid.NewString(), path.Base(doc.SourceFilename))
	data := doc.Bytes
	contentType := doc.MimeType

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.cfg.ArchiveBucket,
			Key:         key,
			Body:        bytes.NewReader(data),
			ContentType: contentType,
			Size:        int64(len(data)),
		})
		if err != nil {
			log.Printf("extractionService: archive upload failed for %s: %v", key, err)
		}
	}()
}

// selectTemplate resolves the candidate pool for the caller's cohort and
// scores it. An empty or all-negative pool falls through to the built-in
// set, scored by the same policy.
func (s *ExtractionService) selectTemplate(ctx context.Context, ectx domain.ExtractionContext) (*domain.Template, domain.SelectionResult, bool, error) {
	namespace := selector.NamespaceFor(ectx, s.cfg.ManagedPercent)
	filter := domain.TemplateFilter{
		Category:  ectx.DocumentType,
		Namespace: namespace,
		Active:    true,
	}

	candidates, err := s.catalog.List(ctx, filter)
	if err != nil {
		log.Printf("extractionService: catalog list failed: %v", err)
		candidates = nil
	}

	sel := selector.Select(candidates, ectx)
	if sel.Template != nil {
		// The catalog degrades to the built-in set silently when the store
		// is down; the fixed IDs give that away.
		return sel.Template, sel, catalog.IsFallbackID(sel.Template.ID), nil
	}

	if len(sel.RejectionReasons) > 0 {
		log.Printf("extractionService: no catalog template selected for %s/%s: %v",
			ectx.DocumentType, namespace, sel.RejectionReasons)
	}

	fbSel := selector.Select(catalog.FallbackTemplates(), ectx)
	if fbSel.Template == nil {
		return nil, fbSel, true, domain.ErrNoTemplateSelected
	}
	return fbSel.Template, fbSel, true, nil
}
