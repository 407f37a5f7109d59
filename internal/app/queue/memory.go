// internal/app/queue/memory.go
package queue

import (
	"context"
	"strconv"
	"sync"
)

// Memory is a process-local queue used in tests and in single-process
// deployments that run without a broker. It keeps the same contract as
// the JetStream transport: unacked messages are redelivered on Nak.
type Memory struct {
	mu     sync.Mutex
	ch     chan []byte
	done   chan struct{}
	closed bool
	seq    uint64
}

func NewMemory(buffer int) *Memory {
	if buffer <= 0 {
		buffer = 256
	}
	return &Memory{ch: make(chan []byte, buffer), done: make(chan struct{})}
}

func (m *Memory) Publish(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrClosed
	}
	m.seq++
	id := m.seq
	m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)

	// Closure is signaled on done rather than by closing ch, so a
	// Publish blocked in this send cannot panic when Close races it.
	select {
	case m.ch <- cp:
		return strconv.FormatUint(id, 10), nil
	case <-m.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Memory) Fetch(ctx context.Context) (Delivery, error) {
	select {
	case data := <-m.ch:
		return Delivery{
			Data: data,
			Ack:  func() error { return nil },
			Nak: func() error {
				// Redeliver; drop if the queue is gone or full.
				m.mu.Lock()
				defer m.mu.Unlock()
				if m.closed {
					return ErrClosed
				}
				select {
				case m.ch <- data:
				default:
				}
				return nil
			},
		}, nil
	case <-m.done:
		return Delivery{}, ErrClosed
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	}
}

// Connected reports whether the queue still accepts messages.
func (m *Memory) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

// Len reports queued messages, for tests.
func (m *Memory) Len() int {
	return len(m.ch)
}

var (
	_ Publisher = (*Memory)(nil)
	_ Consumer  = (*Memory)(nil)
)
