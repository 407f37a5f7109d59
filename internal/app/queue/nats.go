// internal/app/queue/nats.go
package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// NATS wires the Publisher and Consumer contracts to a JetStream
// stream. JetStream gives the at-least-once semantics the design
// needs: explicit acks, automatic redelivery of unacked messages, and
// durable cursors so a restarted worker resumes where it left off.
type NATS struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
	cons    jetstream.Consumer
	log     *zap.Logger
}

// NATSConfig carries the connection settings from app config.
type NATSConfig struct {
	URL     string
	Stream  string
	Subject string
	Durable string
}

// ConnectNATS connects, ensures the stream exists, and binds a durable
// pull consumer.
func ConnectNATS(ctx context.Context, cfg NATSConfig, logger *zap.Logger) (*NATS, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.Name("rollcall"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.Subject},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", cfg.Stream, err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:   cfg.Durable,
		AckPolicy: jetstream.AckExplicitPolicy,
		AckWait:   30 * time.Second,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer %s: %w", cfg.Durable, err)
	}

	logger.Info("nats connected",
		zap.String("url", cfg.URL),
		zap.String("stream", cfg.Stream),
		zap.String("subject", cfg.Subject))

	return &NATS{nc: nc, js: js, subject: cfg.Subject, cons: cons, log: logger}, nil
}

// Publish places data on the stream, bounded by ctx.
func (n *NATS) Publish(ctx context.Context, data []byte) (string, error) {
	ack, err := n.js.Publish(ctx, n.subject, data)
	if err != nil {
		return "", fmt.Errorf("nats publish: %w", err)
	}
	return strconv.FormatUint(ack.Sequence, 10), nil
}

// Fetch pulls the next message. It polls in short waits so Close and
// context cancellation are honored promptly.
func (n *NATS) Fetch(ctx context.Context) (Delivery, error) {
	for {
		if ctx.Err() != nil {
			return Delivery{}, ctx.Err()
		}
		batch, err := n.cons.Fetch(1, jetstream.FetchMaxWait(2*time.Second))
		if err != nil {
			return Delivery{}, fmt.Errorf("nats fetch: %w", err)
		}
		for msg := range batch.Messages() {
			m := msg
			return Delivery{
				Data: m.Data(),
				Ack:  m.Ack,
				Nak:  m.Nak,
			}, nil
		}
		if err := batch.Error(); err != nil {
			return Delivery{}, fmt.Errorf("nats fetch: %w", err)
		}
	}
}

// Connected reports whether the broker connection is up, for health
// checks.
func (n *NATS) Connected() bool {
	return n.nc.IsConnected()
}

func (n *NATS) Close() error {
	n.nc.Close()
	return nil
}

var (
	_ Publisher = (*NATS)(nil)
	_ Consumer  = (*NATS)(nil)
)
