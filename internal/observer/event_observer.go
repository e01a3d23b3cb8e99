package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// BatchEvent describes one step of a verification batch.
type BatchEvent struct {
	EventType  EventType              `json:"event_type"`
	Timestamp  time.Time              `json:"timestamp"`
	BatchID    string                 `json:"batch_id"`
	CampaignID string                 `json:"campaign_id"`
	PhotoID    string                 `json:"photo_id,omitempty"`
	Score      int                    `json:"score,omitempty"`
	Duration   time.Duration          `json:"duration,omitempty"`
	ErrorMsg   string                 `json:"error_message,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of batch event
type EventType string

const (
	// BatchStarted when a verification batch begins
	BatchStarted EventType = "batch_started"
	// PhotoAnalyzed when one photo's extraction and scoring completes
	PhotoAnalyzed EventType = "photo_analyzed"
	// PhotoFailed when one photo's extraction fails
	PhotoFailed EventType = "photo_failed"
	// BatchCompleted when the batch loop finishes (or is cancelled)
	BatchCompleted EventType = "batch_completed"
	// ProofSaved when a campaign's proof record is written
	ProofSaved EventType = "proof_saved"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event BatchEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event BatchEvent)
}

// EventBus is a simple synchronous Subject implementation.
type EventBus struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventBus creates an empty event bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers an observer.
func (b *EventBus) Subscribe(observer Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, observer)
}

// Unsubscribe removes an observer by name.
func (b *EventBus) Unsubscribe(observer Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.observers {
		if o.GetObserverName() == observer.GetObserverName() {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return
		}
	}
}

// NotifyObservers delivers the event to every subscriber in order.
func (b *EventBus) NotifyObservers(ctx context.Context, event BatchEvent) {
	b.mu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, o := range observers {
		o.OnEvent(ctx, event)
	}
}

// LoggingObserver logs batch events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles batch events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event BatchEvent) {
	fields := logrus.Fields{
		"event_type":  event.EventType,
		"batch_id":    event.BatchID,
		"campaign_id": event.CampaignID,
	}
	if event.PhotoID != "" {
		fields["photo_id"] = event.PhotoID
	}
	if event.Duration > 0 {
		fields["duration_ms"] = event.Duration.Milliseconds()
	}
	if event.ErrorMsg != "" {
		fields["error"] = event.ErrorMsg
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case BatchStarted:
		o.logger.WithFields(fields).Info("Verification batch started")
	case PhotoAnalyzed:
		fields["score"] = event.Score
		o.logger.WithFields(fields).Debug("Photo analyzed")
	case PhotoFailed:
		o.logger.WithFields(fields).Error("Photo extraction failed")
	case BatchCompleted:
		o.logger.WithFields(fields).Info("Verification batch completed")
	case ProofSaved:
		o.logger.WithFields(fields).Info("Proof record saved")
	default:
		o.logger.WithFields(fields).Info("Batch event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from batch events
type MetricsObserver struct {
	mu             sync.RWMutex
	batches        int64
	photosAnalyzed int64
	photosFailed   int64
	proofsSaved    int64
	totalDuration  time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles batch events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event BatchEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case BatchStarted:
		o.batches++
	case PhotoAnalyzed:
		o.photosAnalyzed++
		o.totalDuration += event.Duration
	case PhotoFailed:
		o.photosFailed++
	case ProofSaved:
		o.proofsSaved++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := time.Duration(0)
	if o.photosAnalyzed > 0 {
		avg = o.totalDuration / time.Duration(o.photosAnalyzed)
	}
	return map[string]interface{}{
		"batches":          o.batches,
		"photos_analyzed":  o.photosAnalyzed,
		"photos_failed":    o.photosFailed,
		"proofs_saved":     o.proofsSaved,
		"avg_photo_time":   avg.String(),
	}
}
