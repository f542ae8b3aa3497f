package simplesorter

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful for production when you don't need event handling or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// OrderSaved does nothing and returns nil
func (n *NoopEventSink) OrderSaved(ctx context.Context, category string, itemIDs []uuid.UUID) error {
	return nil
}

// ItemRepositioned does nothing and returns nil
func (n *NoopEventSink) ItemRepositioned(ctx context.Context, result *RepositionResult) error {
	return nil
}

// LoggingEventSink writes every event to a slog logger
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs to logger,
// or to slog.Default() when logger is nil
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

func (l *LoggingEventSink) OrderSaved(ctx context.Context, category string, itemIDs []uuid.UUID) error {
	l.logger.InfoContext(ctx, "event: order saved", "category", category, "count", len(itemIDs))
	return nil
}

func (l *LoggingEventSink) ItemRepositioned(ctx context.Context, result *RepositionResult) error {
	l.logger.InfoContext(ctx, "event: item repositioned",
		"category", result.Category,
		"item_id", result.ItemID.String(),
		"new_order", result.NewOrder,
		"insert", result.IsInsert())
	return nil
}

// MultiEventSink fans events out to several sinks, returning the first error
type MultiEventSink []EventSink

func (m MultiEventSink) OrderSaved(ctx context.Context, category string, itemIDs []uuid.UUID) error {
	var first error
	for _, sink := range m {
		if err := sink.OrderSaved(ctx, category, itemIDs); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiEventSink) ItemRepositioned(ctx context.Context, result *RepositionResult) error {
	var first error
	for _, sink := range m {
		if err := sink.ItemRepositioned(ctx, result); err != nil && first == nil {
			first = err
		}
	}
	return first
}
