package eventbus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pass-questions/internal/shared/logger"
)

// Domain event types published across modules. session.revoked carries the
// auth module's model.Revocation; user.paid carries the uid.
const (
	EventTypeSessionRevoked  = "session.revoked"
	EventTypeExamDeleted     = "exam.deleted"
	EventTypeQuestionDeleted = "question.deleted"
	EventTypeQuizSubmitted   = "quiz.submitted"
	EventTypeUserPaid        = "user.paid"
)

// Event is a message delivered to every handler subscribed to its type.
type Event interface {
	Type() string
	Data() interface{}
	Timestamp() time.Time
	Source() string
}

// Handler processes one event. A returned error triggers a retry.
type Handler func(ctx context.Context, event Event) error

// Bus is the contract the modules depend on.
type Bus interface {
	Subscribe(eventType string, handler Handler)
	Publish(ctx context.Context, event Event) error
	PublishAndForget(ctx context.Context, event Event)
	Unsubscribe(eventType string)
	GetSubscriberCount(eventType string) int
	GetEventTypes() []string
}

// BusConfig holds configuration for the event bus
type BusConfig struct {
	AsyncProcessing bool
	MaxRetries      int
	RetryDelay      time.Duration
}

// DefaultBusConfig returns default configuration
func DefaultBusConfig() BusConfig {
	return BusConfig{
		MaxRetries: 2,
		RetryDelay: 50 * time.Millisecond,
	}
}

// EventBus is an in-process publish/subscribe bus.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   logger.Logger
	config   BusConfig
}

var _ Bus = (*EventBus)(nil)

func NewEventBus(log logger.Logger) *EventBus {
	return NewEventBusWithConfig(log, DefaultBusConfig())
}

func NewEventBusWithConfig(log logger.Logger, config BusConfig) *EventBus {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.WithComponent("eventbus"),
		config:   config,
	}
}

// Subscribe adds a handler for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.logger.Debugf("subscribed handler for %s", eventType)
}

// Publish delivers the event to every handler of its type and returns the
// first handler error after retries are exhausted.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	eb.mu.RLock()
	handlers := append([]Handler(nil), eb.handlers[event.Type()]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	if !eb.config.AsyncProcessing {
		for i, h := range handlers {
			if err := eb.deliver(ctx, event, h, i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	for i, h := range handlers {
		wg.Add(1)
		go func(h Handler, idx int) {
			defer wg.Done()
			if err := eb.deliver(ctx, event, h, idx); err != nil {
				once.Do(func() { firstErr = err })
			}
		}(h, i)
	}
	wg.Wait()
	return firstErr
}

func (eb *EventBus) deliver(ctx context.Context, event Event, handler Handler, idx int) error {
	var lastErr error
	for attempt := 0; attempt <= eb.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(eb.config.RetryDelay):
			}
		}
		if lastErr = handler(ctx, event); lastErr == nil {
			return nil
		}
		eb.logger.Warnf("handler %d for %s failed (attempt %d): %v", idx, event.Type(), attempt+1, lastErr)
	}
	return fmt.Errorf("handler %d for %s failed after %d attempts: %w",
		idx, event.Type(), eb.config.MaxRetries+1, lastErr)
}

// PublishAndForget publishes on a goroutine detached from the request
// context's cancellation.
func (eb *EventBus) PublishAndForget(ctx context.Context, event Event) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := eb.Publish(ctx, event); err != nil {
			eb.logger.Errorf("publish %s: %v", event.Type(), err)
		}
	}()
}

// Unsubscribe removes all handlers for a specific event type
func (eb *EventBus) Unsubscribe(eventType string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	delete(eb.handlers, eventType)
}

func (eb *EventBus) GetSubscriberCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.handlers[eventType])
}

// GetEventTypes returns the subscribed event types in sorted order.
func (eb *EventBus) GetEventTypes() []string {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	types := make([]string, 0, len(eb.handlers))
	for t := range eb.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// BasicEvent implements the Event interface
type BasicEvent struct {
	eventType string
	data      interface{}
	timestamp time.Time
	source    string
}

// NewEvent builds an event stamped with the current time.
func NewEvent(eventType, source string, data interface{}) Event {
	return &BasicEvent{
		eventType: eventType,
		data:      data,
		timestamp: time.Now(),
		source:    source,
	}
}

func (e *BasicEvent) Type() string         { return e.eventType }
func (e *BasicEvent) Data() interface{}    { return e.data }
func (e *BasicEvent) Timestamp() time.Time { return e.timestamp }
func (e *BasicEvent) Source() string       { return e.source }

// ExamDeleted is the payload of EventTypeExamDeleted.
type ExamDeleted struct {
	ExamID string
	Keys   []string
}

// QuestionDeleted is the payload of EventTypeQuestionDeleted.
type QuestionDeleted struct {
	QuestionID string
}

// QuizSubmitted is the payload of EventTypeQuizSubmitted.
type QuizSubmitted struct {
	UserID  string
	QuizID  string
	Program string
	Course  string
	Score   float64
}
