// internal/app/queue/queue.go

// Package queue is the at-least-once transport between the dispatcher
// and the processor. The broker may redeliver and makes no ordering
// promise; everything downstream is written to tolerate both.
package queue

import (
	"context"
	"errors"
)

// Publisher places a serialized envelope on the queue. Publish blocks
// no longer than the context allows; a timeout is a transient failure
// the dispatcher recovers from by running the work inline.
type Publisher interface {
	Publish(ctx context.Context, data []byte) (string, error)
	Close() error
}

// Delivery is one received message. Ack removes it from the queue;
// Nak asks the broker to redeliver it later.
type Delivery struct {
	Data []byte
	Ack  func() error
	Nak  func() error
}

// Consumer hands deliveries to the worker pool. Fetch blocks until a
// message arrives, the context ends, or the consumer is closed.
type Consumer interface {
	Fetch(ctx context.Context) (Delivery, error)
	Close() error
}

// Transport is both ends of the queue plus a liveness probe for the
// health endpoint. The NATS and in-memory backends both satisfy it.
type Transport interface {
	Publisher
	Consumer
	Connected() bool
}

// ErrClosed is returned by Fetch after Close.
var ErrClosed = errors.New("queue: consumer closed")
