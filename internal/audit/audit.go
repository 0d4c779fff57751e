// Package audit records significant SDK events as structured log lines
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xld/xld-go/pkg/xld"
)

// Event types
const (
	EventAuthenticated  = "authenticated"
	EventSessionCleared = "session_cleared"
	EventRequestFailed  = "request_failed"
	EventRequestOK      = "request_succeeded"
	EventQuoteCreated   = "quote_created"
	EventPaymentSent    = "payment_confirmed"
	EventSettled        = "transaction_settled"
)

// Severity of an audit event
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// defaultCapacity is how many recent events a Service keeps in memory.
const defaultCapacity = 256

// Event is one significant occurrence
type Event struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Severity    Severity        `json:"severity"`
	Timestamp   time.Time       `json:"timestamp"`
	Route       string          `json:"route,omitempty"`
	StatusCode  int             `json:"status_code,omitempty"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
	Component   string          `json:"component"`
}

// Service provides audit logging functionality
type Service struct {
	logger zerolog.Logger

	mu       sync.Mutex
	recent   []Event
	capacity int
}

// New creates a new audit service
func New(logger zerolog.Logger) *Service {
	return &Service{logger: logger, capacity: defaultCapacity}
}

// LogEvent records a significant event
func (s *Service) LogEvent(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	entry := s.logger.WithLevel(level(event.Severity)).
		Str("audit_id", event.ID).
		Str("event", event.Type).
		Str("severity", string(event.Severity)).
		Time("timestamp", event.Timestamp).
		Str("component", event.Component)
	if event.Route != "" {
		entry = entry.Str("route", event.Route)
	}
	if event.StatusCode != 0 {
		entry = entry.Int("status", event.StatusCode)
	}
	if len(event.Data) > 0 {
		entry = entry.RawJSON("data", event.Data)
	}
	entry.Msg(event.Description)

	s.mu.Lock()
	s.recent = append(s.recent, *event)
	if len(s.recent) > s.capacity {
		s.recent = s.recent[len(s.recent)-s.capacity:]
	}
	s.mu.Unlock()

	if ctx == nil {
		return nil
	}
	return ctx.Err()
}

// Log is a convenience method for logging events
func (s *Service) Log(ctx context.Context, eventType string, severity Severity, description string, data interface{}, opts ...EventOption) error {
	event := &Event{
		ID:          uuid.New().String(),
		Type:        eventType,
		Severity:    severity,
		Timestamp:   time.Now().UTC(),
		Description: description,
		Component:   "xld-sdk",
	}

	var marshalErr error
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			marshalErr = fmt.Errorf("marshaling %s event data: %w", eventType, err)
		} else {
			event.Data = jsonData
		}
	}

	for _, opt := range opts {
		opt(event)
	}

	// The event is recorded without its data when the data cannot be encoded.
	if err := s.LogEvent(ctx, event); err != nil {
		return err
	}
	return marshalErr
}

// EventOption is a functional option for configuring audit events
type EventOption func(*Event)

// WithRoute sets the API route for the event
func WithRoute(route string) EventOption {
	return func(e *Event) {
		e.Route = route
	}
}

// WithStatus sets the HTTP status for the event
func WithStatus(statusCode int) EventOption {
	return func(e *Event) {
		e.StatusCode = statusCode
	}
}

// WithComponent sets the component for the event
func WithComponent(component string) EventOption {
	return func(e *Event) {
		e.Component = component
	}
}

// GetEvents returns recent events, newest first, with optional filtering
func (s *Service) GetEvents(filter *EventFilter) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 100
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}

	var events []Event
	for i := len(s.recent) - 1; i >= 0 && len(events) < limit; i-- {
		e := s.recent[i]
		if filter != nil && !filter.matches(e) {
			continue
		}
		events = append(events, e)
	}
	return events
}

// EventFilter defines criteria for filtering audit events
type EventFilter struct {
	Type  string
	Route string
	From  time.Time
	To    time.Time
	Limit int
}

func (f *EventFilter) matches(e Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Route != "" && e.Route != f.Route {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// Observer adapts the service to receive client events.
func (s *Service) Observer() xld.Observer {
	return xld.ObserverFunc(func(ctx context.Context, e xld.Event) {
		eventType, severity, description := describe(e)
		var data map[string]string
		if e.Err != nil {
			data = map[string]string{"error": e.Err.Error()}
		}
		if ctx == nil {
			ctx = context.Background()
		}
		// Record even when the call itself was cancelled.
		_ = s.Log(context.WithoutCancel(ctx), eventType, severity, description, data,
			WithRoute(e.Route), WithStatus(e.StatusCode))
	})
}

func describe(e xld.Event) (string, Severity, string) {
	switch e.Type {
	case xld.EventAuthenticated:
		return EventAuthenticated, SeverityInfo, "session authenticated"
	case xld.EventSessionCleared:
		return EventSessionCleared, SeverityWarning, "session token cleared"
	case xld.EventRequestFailed:
		return EventRequestFailed, SeverityError, "api request failed"
	}

	switch {
	case strings.HasPrefix(e.Route, "quote_"):
		return EventQuoteCreated, SeverityInfo, "transaction quote created"
	case strings.HasPrefix(e.Route, "confirm_"):
		return EventPaymentSent, SeverityInfo, "payment confirmation submitted"
	}
	return EventRequestOK, SeverityInfo, "api request succeeded"
}

func level(s Severity) zerolog.Level {
	switch s {
	case SeverityWarning:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
