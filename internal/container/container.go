package container

import (
	"fmt"
	"net/http"

	"go-id-verifier/internal/audit"
	"go-id-verifier/internal/config"
	"go-id-verifier/internal/face"
	"go-id-verifier/internal/factory"
	"go-id-verifier/internal/logger"
	"go-id-verifier/internal/ocr"
	"go-id-verifier/internal/orientation"
	"go-id-verifier/internal/transport"
	"go-id-verifier/internal/verify"
)

// Container holds all application dependencies
type Container struct {
	config    *config.Config
	engine    ocr.Engine
	locator   *face.Locator
	backbone  *face.Backbone
	service   *verify.Service
	publisher audit.Subject
	metrics   *audit.MetricsObserver
	handler   http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	engine, err := ocr.NewEnginePool(cfg.OCRLanguage, cfg.OCRClientPoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OCR engine pool: %w", err)
	}

	corrector := orientation.NewCorrector(orientation.NewOSDDetector(engine))
	extractor := ocr.NewExtractor(ocr.NewBank(), engine)

	locator, err := face.NewLocator(cfg.CascadePath, cfg.FaceQualityFloor)
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to load face cascade: %w", err)
	}

	// A missing backbone degrades similarity to unavailable instead of
	// failing startup.
	backbone := face.LoadBackbone(cfg.BackbonePath)
	if !backbone.Available() {
		logger.WithField("reason", backbone.Reason()).Warn("Face embedding model unavailable")
	}
	similarity := face.NewSimilarityEngine(backbone, cfg.SimilarityScales, face.Thresholds{
		High:       cfg.ThresholdHigh,
		Base:       cfg.ThresholdBase,
		Low:        cfg.ThresholdLow,
		HighCutoff: cfg.HighQualityCutoff,
		LowCutoff:  cfg.LowQualityCutoff,
	})

	cleanup := func() {
		engine.Close()
		locator.Close()
		backbone.Close()
	}

	components := factory.NewComponentFactory(cfg)
	registryStore, auditStore, err := components.RegistryFactory.CreateRegistry(factory.RegistryTypeFromConfig(cfg))
	if err != nil {
		cleanup()
		return nil, err
	}
	resolver, err := components.ResolverFactory.CreateResolver()
	if err != nil {
		cleanup()
		return nil, err
	}

	metrics := audit.NewMetricsObserver()
	publisher := audit.NewEventPublisher()
	publisher.Subscribe(audit.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	service := verify.NewService(cfg, corrector, extractor, registryStore, resolver, locator, similarity, auditStore, publisher)
	handler := transport.NewHandler(service, cfg, backbone.Available(), metrics.GetMetrics)

	return &Container{
		config:    cfg,
		engine:    engine,
		locator:   locator,
		backbone:  backbone,
		service:   service,
		publisher: publisher,
		metrics:   metrics,
		handler:   handler,
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

// Close releases native resources held by the pipeline.
func (c *Container) Close() error {
	var firstErr error
	if err := c.engine.Close(); err != nil {
		firstErr = err
	}
	c.locator.Close()
	if err := c.backbone.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
