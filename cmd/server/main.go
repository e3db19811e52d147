package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"docpilot/internal/catalog"
	"docpilot/internal/catalog/postgres"
	"docpilot/internal/config"
	"docpilot/internal/domain"
	"docpilot/internal/extractor"
	"docpilot/internal/handler"
	"docpilot/internal/notify/noop"
	"docpilot/internal/notify/ses"
	"docpilot/internal/port"
	"docpilot/internal/provider"
	"docpilot/internal/provider/claude"
	"docpilot/internal/provider/gemini"
	"docpilot/internal/provider/openai"
	"docpilot/internal/router"
	"docpilot/internal/service"
	s3storage "docpilot/internal/storage/s3"
	"docpilot/internal/textextract"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Catalog: postgres repo behind the TTL cache with the built-in fallback set
	templateRepo := postgres.NewTemplateRepo(db)
	cat := catalog.NewService(templateRepo, catalog.Config{
		TTL:        time.Duration(cfg.Cache.TTLSecs) * time.Second,
		MaxRetries: cfg.Cache.MaxRetries,
		RetryBase:  time.Duration(cfg.Cache.RetryBaseMs) * time.Millisecond,
	}, nil)

	// Provider chain
	registerProviders()
	providerRouter, err := buildProviderRouter(&cfg.Extract)
	if err != nil {
		return err
	}
	exec := extractor.NewExecutor(providerRouter, time.Duration(cfg.Extract.TimeoutSecs)*time.Second)

	// Optional collaborators
	var storage port.ObjectStorage
	if cfg.S3.Enabled {
		storage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}
	notifier, err := buildNotifier(&cfg.Notify)
	if err != nil {
		return err
	}

	// Services
	usage := service.NewUsageQueue(cat, cfg.Cache.UsageBufSize)
	extractionSvc := service.NewExtractionService(cat, exec, usage, textextract.New(), storage,
		service.ExtractionConfig{
			ManagedPercent:   cfg.Cache.ManagedPct,
			MaxFileSizeBytes: cfg.Extract.MaxFileSizeMB * 1024 * 1024,
			ArchiveBucket:    cfg.S3.Bucket,
			ArchiveEnabled:   cfg.S3.Enabled,
		})
	batch := service.NewBatchProcessor(extractionSvc, notifier, service.BatchConfig{
		Concurrency:      cfg.Batch.Concurrency,
		InterItemDelay:   time.Duration(cfg.Batch.InterItemDelayMs) * time.Millisecond,
		MaxItemsPerBatch: cfg.Batch.MaxItemsPerBatch,
	})

	// Handlers
	extractH := handler.NewExtractHandler(extractionSvc, batch, cfg.Batch.MaxItemsPerBatch)
	templateH := handler.NewTemplateHandler(cat)
	healthH := handler.NewHealthHandler(db, providerRouter)

	// Usage drain runs until shutdown, then flushes
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	usage.Start(ctx)

	r := router.Setup(cfg, extractH, templateH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	stop()
	usage.Wait()
	return nil
}

func registerProviders() {
	provider.Register("openai", func(cfg *config.ProviderConfig) (port.ProviderClient, error) {
		return openai.New(cfg), nil
	})
	provider.Register("claude", func(cfg *config.ProviderConfig) (port.ProviderClient, error) {
		return claude.New(cfg), nil
	})
	provider.Register("gemini", func(cfg *config.ProviderConfig) (port.ProviderClient, error) {
		return gemini.New(cfg), nil
	})
}

// buildProviderRouter turns the four config slots into the ordered failover
// chain. Unconfigured slots stay in the chain as skippable handles so the
// walk order matches the deployment's declared preference order.
func buildProviderRouter(cfg *config.ExtractConfig) (*provider.Router, error) {
	var entries []provider.Entry
	for _, slot := range cfg.Chain() {
		if slot.Name == "" {
			continue
		}
		entry := provider.Entry{
			Handle: domain.ProviderHandle{Name: slot.Name, IsConfigured: slot.IsConfigured()},
		}
		if slot.IsConfigured() {
			client, err := provider.NewClient(slot)
			if err != nil {
				return nil, fmt.Errorf("provider slot %s: %w", slot.Name, err)
			}
			entry.Client = client
		}
		entries = append(entries, entry)
	}
	return provider.NewRouter(entries), nil
}

func buildNotifier(cfg *config.NotifyConfig) (port.NotificationSender, error) {
	if cfg.Provider == "ses" {
		sender, err := ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		return sender, nil
	}
	return noop.NewNoopSender(), nil
}
