package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_PublishFetch(t *testing.T) {
	q := NewMemory(4)
	ctx := context.Background()

	id, err := q.Publish(ctx, []byte("one"))
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if id == "" {
		t.Error("expected a message id")
	}

	d, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(d.Data) != "one" {
		t.Errorf("Data: got %q", d.Data)
	}
	if err := d.Ack(); err != nil {
		t.Errorf("Ack failed: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("queue should be empty, has %d", q.Len())
	}
}

func TestMemory_NakRedelivers(t *testing.T) {
	q := NewMemory(4)
	ctx := context.Background()

	if _, err := q.Publish(ctx, []byte("retry-me")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	d, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if err := d.Nak(); err != nil {
		t.Fatalf("Nak failed: %v", err)
	}

	again, err := q.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch after Nak failed: %v", err)
	}
	if string(again.Data) != "retry-me" {
		t.Errorf("redelivered data: got %q", again.Data)
	}
}

func TestMemory_PublishBlocksUntilContext(t *testing.T) {
	q := NewMemory(1)
	ctx := context.Background()

	if _, err := q.Publish(ctx, []byte("fills-buffer")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
	defer cancel()
	_, err := q.Publish(short, []byte("overflow"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded on full queue, got %v", err)
	}
}

func TestMemory_CloseUnblocksPendingPublish(t *testing.T) {
	q := NewMemory(1)
	ctx := context.Background()

	if _, err := q.Publish(ctx, []byte("fills-buffer")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Block a second Publish in the send, then close underneath it.
	// It must come back with ErrClosed, not crash the publisher.
	res := make(chan error, 1)
	go func() {
		_, err := q.Publish(ctx, []byte("blocked"))
		res <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	select {
	case err := <-res:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("blocked Publish after Close: got %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Publish still blocked after Close")
	}
}

func TestMemory_Close(t *testing.T) {
	q := NewMemory(4)
	ctx := context.Background()

	if !q.Connected() {
		t.Fatal("fresh queue should report connected")
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if q.Connected() {
		t.Error("closed queue should not report connected")
	}

	if _, err := q.Publish(ctx, []byte("late")); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after Close: got %v, want ErrClosed", err)
	}
	if _, err := q.Fetch(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Fetch after Close: got %v, want ErrClosed", err)
	}

	// Closing twice is fine.
	if err := q.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
