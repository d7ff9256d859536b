package audit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// VerificationEvent represents a verification lifecycle event.
type VerificationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of verification event.
type EventType string

const (
	// VerificationStarted when a verification begins
	VerificationStarted EventType = "verification_started"
	// VerificationCompleted when a verification finishes with a verdict
	VerificationCompleted EventType = "verification_completed"
	// VerificationFailed when a verification fails before producing a verdict
	VerificationFailed EventType = "verification_failed"
	// PhotoFetched when a stored reference photo is resolved
	PhotoFetched EventType = "photo_fetched"
	// PhotoFetchFailed when resolving a stored photo fails
	PhotoFetchFailed EventType = "photo_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event VerificationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event VerificationEvent)
}

// LoggingObserver logs verification events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles verification events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"request_id":      event.RequestID,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}

	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	if event.Metadata != nil {
		for k, v := range event.Metadata {
			fields[k] = v
		}
	}

	switch event.EventType {
	case VerificationStarted:
		o.logger.WithFields(fields).Info("Verification started")
	case VerificationCompleted:
		o.logger.WithFields(fields).Info("Verification completed")
	case VerificationFailed:
		o.logger.WithFields(fields).Error("Verification failed")
	case PhotoFetched:
		o.logger.WithFields(fields).Debug("Stored photo resolved")
	case PhotoFetchFailed:
		o.logger.WithFields(fields).Error("Stored photo fetch failed")
	default:
		o.logger.WithFields(fields).Info("Verification event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects metrics from verification events
type MetricsObserver struct {
	mu                      sync.RWMutex
	totalVerifications      int64
	successfulVerifications int64
	failedVerifications     int64
	totalProcessingTime     time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles verification events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event VerificationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case VerificationStarted:
		o.totalVerifications++
	case VerificationCompleted:
		o.successfulVerifications++
		o.totalProcessingTime += event.ProcessingTime
	case VerificationFailed:
		o.failedVerifications++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulVerifications > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulVerifications)
	}

	return map[string]interface{}{
		"total_verifications":      o.totalVerifications,
		"successful_verifications": o.successfulVerifications,
		"failed_verifications":     o.failedVerifications,
		"total_processing_time":    o.totalProcessingTime,
		"avg_processing_time":      avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() Subject {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event VerificationEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
