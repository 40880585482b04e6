package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"chatledger/internal/adapter/outbound/csvio"
	"chatledger/internal/adapter/outbound/export"
	"chatledger/internal/adapter/outbound/messaging"
	"chatledger/internal/adapter/outbound/repository"
	"chatledger/internal/application/common/retry"
	"chatledger/internal/application/common/slogger"
	"chatledger/internal/application/service"
	"chatledger/internal/config"
	"chatledger/internal/domain/classification"
	"chatledger/internal/domain/normalization"
	"chatledger/internal/domain/rules"
	"chatledger/internal/port/outbound"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
)

// pipeline wires the services and adapters shared by the ledger commands.
type pipeline struct {
	cfg      *config.Config
	store    *csvio.TranscriptStore
	exporter *export.Exporter
	metrics  *service.LedgerMetrics
}

func newPipeline(cfg *config.Config, fs afero.Fs) (*pipeline, error) {
	metrics, err := service.NewLedgerMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger metrics: %w", err)
	}
	return &pipeline{
		cfg:      cfg,
		store:    csvio.NewTranscriptStore(fs),
		exporter: export.NewExporter(fs),
		metrics:  metrics,
	}, nil
}

// extraction holds the outcome of one extract step.
type extraction struct {
	result *service.ExtractionResult
	files  []string
}

// clean normalizes the transcript at input and writes it to output.
func (p *pipeline) clean(ctx context.Context, input, output string) (service.CleanReport, error) {
	transcript, err := p.store.ReadTranscript(ctx, input)
	if err != nil {
		return service.CleanReport{}, err
	}

	cleaner := service.NewCleaningService(normalization.NewMessageNormalizer(), p.cfg.Worker.Concurrency, p.metrics)
	cleaned, report, err := cleaner.Clean(ctx, transcript)
	if err != nil {
		return service.CleanReport{}, err
	}

	if err := p.store.WriteTranscript(ctx, output, cleaned); err != nil {
		return service.CleanReport{}, err
	}
	return report, nil
}

// extract classifies the cleaned transcript at input, exports the ledger into outputDir
// and forwards the requests to the configured sinks.
func (p *pipeline) extract(ctx context.Context, input, outputDir string, strict bool) (*extraction, error) {
	extractor, err := p.extractionService(strict)
	if err != nil {
		return nil, err
	}

	transcript, err := p.store.ReadTranscript(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := extractor.Extract(ctx, transcript)
	if err != nil {
		return nil, err
	}
	for _, failure := range result.Report.Failures {
		slogger.Warn(ctx, "Skipped malformed row", slogger.Fields{
			"line":  failure.Line,
			"error": failure.Err.Error(),
		})
	}
	if len(result.Requests) == 0 {
		return nil, fmt.Errorf("%w from %s", service.ErrNoRequests, input)
	}

	files, err := p.exporter.ExportLedger(ctx, outputDir, result.Requests)
	if err != nil {
		return nil, err
	}

	ledger, closeLedger, err := p.openLedger(ctx)
	if err != nil {
		return nil, err
	}
	defer closeLedger()

	if err := ledger.Record(ctx, result.Requests); err != nil {
		slogger.ErrorWithError(ctx, err, "Failed to record requests", slogger.Field("requests", len(result.Requests)))
		return nil, err
	}
	return &extraction{result: result, files: files}, nil
}

func (p *pipeline) extractionService(strict bool) (*service.ExtractionService, error) {
	ruleSet, err := rules.Load(p.cfg.Classifier.RulesFile)
	if err != nil {
		return nil, err
	}
	classifier, err := classification.NewClassifier(ruleSet, p.cfg.Classifier.TrackedSenders)
	if err != nil {
		return nil, err
	}
	return service.NewExtractionService(classifier, service.ExtractionConfig{
		Concurrency: p.cfg.Worker.Concurrency,
		Strict:      strict,
	}, p.metrics), nil
}

// openLedger connects the sinks enabled in the configuration. The returned function
// releases them.
func (p *pipeline) openLedger(ctx context.Context) (*service.LedgerService, func(), error) {
	var (
		repo      outbound.RequestRepository
		publisher outbound.RequestPublisher
		closers   []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	connector := retry.NewRetryExecutor(retryConfig(p.cfg.Retry))

	if p.cfg.Database.Enabled {
		var pool *pgxpool.Pool
		err := connector.Execute(ctx, func(ctx context.Context) error {
			var err error
			pool, err = repository.NewDatabaseConnection(ctx, databaseConfig(p.cfg.Database))
			return err
		})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, pool.Close)

		store, err := repository.NewPostgreSQLRequestRepository(pool, p.cfg.Database.Schema)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		repo = store
	}

	if p.cfg.NATS.Enabled {
		natsPublisher, err := messaging.NewNATSRequestPublisher(p.cfg.NATS)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		err = connector.Execute(ctx, func(context.Context) error {
			return natsPublisher.Connect()
		})
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := natsPublisher.Disconnect(); err != nil {
				slogger.Warn(ctx, "Failed to disconnect from NATS", slogger.Field("error", err.Error()))
			}
		})
		publisher = natsPublisher
	}

	return service.NewLedgerService(repo, publisher), closeAll, nil
}

func databaseConfig(cfg config.DatabaseConfig) repository.DatabaseConfig {
	return repository.DatabaseConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Database:       cfg.Name,
		Username:       cfg.User,
		Password:       cfg.Password,
		Schema:         cfg.Schema,
		MaxConnections: cfg.MaxConnections,
		SSLMode:        cfg.SSLMode,
	}
}

func retryConfig(cfg config.RetryConfig) *retry.RetryConfig {
	return &retry.RetryConfig{
		MaxRetries:    uint64(cfg.MaxRetries), //nolint:gosec // validated non-negative
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		JitterPercent: retry.DefaultRetryConfig().JitterPercent,
	}
}

// workingDirectories lists the directories the pipeline reads from and writes to.
func workingDirectories(paths config.PathsConfig) []string {
	return []string{
		filepath.Dir(paths.Input),
		filepath.Dir(paths.Cleaned),
		paths.OutputDir,
		paths.FinalDir,
	}
}
