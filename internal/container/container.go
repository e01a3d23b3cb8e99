package container

import (
	"fmt"
	"net/http"

	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/analysis"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/config"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/factory"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/logger"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/observer"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/proof"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/repository"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/storage"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/internal/transport"
	"github.com/anja687gutierrez-jpg/la-ops-hub-sub000/pkg/match"
)

// Container holds all application dependencies
type Container struct {
	config       *config.Config
	enumerator   storage.PhotoEnumerator
	proofStore   repository.ProofStore
	analyses     *analysis.Store
	orchestrator *analysis.Orchestrator
	manager      *proof.Manager
	metrics      *observer.MetricsObserver
	handler      http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Build dependency graph
	components := factory.NewComponentFactory()
	enumerator, err := components.EnumeratorFactory.CreateEnumerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo enumerator: %w", err)
	}
	proofStore, err := components.ProofStoreFactory.CreateProofStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create proof store: %w", err)
	}

	events := observer.NewEventBus()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	opts := match.Options{
		Similarity:   cfg.SimilarityThreshold,
		VerifyScore:  cfg.VerifyScore,
		LowScore:     cfg.LowScore,
		SampleLength: cfg.TextSampleLength,
	}

	analyses := analysis.NewStore()
	extractor := analysis.WithTimeout(storage.NewTesseractExtractor(cfg.OCRLanguage), cfg.ExtractTimeout)
	orchestrator := analysis.NewOrchestrator(analyses, extractor, events, opts, cfg.ScanDelay)
	manager := proof.NewManager(proofStore, analyses, events, cfg.DigestMaxDimension, cfg.DigestQuality)

	handler := transport.NewHandler(transport.Deps{
		Enumerator:   enumerator,
		Orchestrator: orchestrator,
		Analyses:     analyses,
		Tags:         repository.NewMemoryTagStore(),
		Trackers:     repository.NewMemoryTrackerSource(),
		Proofs:       proofStore,
		Manager:      manager,
		Metrics:      metrics,
	}, cfg)

	return &Container{
		config:       cfg,
		enumerator:   enumerator,
		proofStore:   proofStore,
		analyses:     analyses,
		orchestrator: orchestrator,
		manager:      manager,
		metrics:      metrics,
		handler:      handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases long-lived resources such as the proof store's connection
// pool.
func (c *Container) Close() error {
	if closer, ok := c.proofStore.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
