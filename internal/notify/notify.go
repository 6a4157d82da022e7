// Package notify carries user-facing cart outcomes to whatever surface shows them.
// Sinks must not block the caller.
package notify

import (
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	KindItemAdded          Kind = "item_added"
	KindQuantityUpdated    Kind = "quantity_updated"
	KindMaxQuantityReached Kind = "max_quantity_reached"
	KindItemRemoved        Kind = "item_removed"
	KindCartCleared        Kind = "cart_cleared"
	KindOrderPlaced        Kind = "order_placed"
	KindProductUpdated     Kind = "product_updated"
)

type Notification struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	At      time.Time `json:"at"`
}

type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notification)

func (f SinkFunc) Notify(n Notification) { f(n) }

// Discard drops everything.
var Discard Sink = SinkFunc(func(Notification) {})

type multi []Sink

// Multi fans a notification out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}

// LogSink writes notifications to a zap logger at debug level.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(n Notification) {
	s.logger.Debug("cart notification",
		zap.String("kind", string(n.Kind)),
		zap.String("message", n.Message),
		zap.String("detail", n.Detail),
	)
}
