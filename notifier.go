package authcore

import (
	"context"
	"log"
)

// Notifier delivers a security code to a user's destination. Implementations
// own the transport (mail relay, SMS gateway). Delivery is best effort: a
// failed delivery is logged and audited, and the account stays locked.
//
// Notifier instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Notifier interface {
	Deliver(ctx context.Context, destination, code string) error
}

// LogNotifier writes deliveries to the process log instead of sending them.
// It is the default notifier, suitable for development and demos.
type LogNotifier struct{}

// Deliver describes the deliver operation and its observable behavior.
//
// Deliver may return an error when input validation, dependency calls, or security checks fail.
// Deliver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (LogNotifier) Deliver(_ context.Context, destination, code string) error {
	log.Printf("authcore: security code for %s: %s", destination, code)
	return nil
}

// Delivery is one captured notification from a ChannelNotifier.
type Delivery struct {
	Destination string
	Code        string
}

// ChannelNotifier captures deliveries on a channel for tests and embedders
// that route codes themselves.
type ChannelNotifier struct {
	deliveries chan Delivery
}

// NewChannelNotifier describes the newchannelnotifier operation and its observable behavior.
//
// NewChannelNotifier may return an error when input validation, dependency calls, or security checks fail.
// NewChannelNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNotifier{
		deliveries: make(chan Delivery, buffer),
	}
}

// Deliver describes the deliver operation and its observable behavior.
//
// Deliver may return an error when input validation, dependency calls, or security checks fail.
// Deliver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *ChannelNotifier) Deliver(ctx context.Context, destination, code string) error {
	select {
	case n.deliveries <- Delivery{Destination: destination, Code: code}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliveries describes the deliveries operation and its observable behavior.
//
// Deliveries may return an error when input validation, dependency calls, or security checks fail.
// Deliveries does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *ChannelNotifier) Deliveries() <-chan Delivery {
	return n.deliveries
}
