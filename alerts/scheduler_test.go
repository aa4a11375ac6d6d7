package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	err   error
	block chan struct{}
}

func (n *recordingNotifier) Send(ctx context.Context, text string) error {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return n.err
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.sent))
	copy(out, n.sent)
	return out
}

func TestScheduler_DeliversInOrder(t *testing.T) {
	notifier := &recordingNotifier{}
	scheduler := NewScheduler(notifier, nil)

	if !scheduler.Enqueue("first") {
		t.Fatalf("expected first enqueue to succeed")
	}
	if !scheduler.Enqueue("second") {
		t.Fatalf("expected second enqueue to succeed")
	}
	scheduler.Close()

	got := notifier.messages()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("expected ordered delivery, got %v", got)
	}
}

func TestScheduler_DropsWhenQueueFull(t *testing.T) {
	notifier := &recordingNotifier{block: make(chan struct{})}
	scheduler := NewScheduler(notifier, nil, WithQueueSize(1), WithSendTimeout(50*time.Millisecond))

	// First message occupies the worker, second fills the buffer.
	scheduler.Enqueue("busy")
	scheduler.Enqueue("buffered")

	dropped := false
	for i := 0; i < 20; i++ {
		if !scheduler.Enqueue("overflow") {
			dropped = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !dropped {
		t.Fatalf("expected overflow enqueue to report a drop")
	}

	close(notifier.block)
	scheduler.Close()
}

func TestScheduler_DeliveryFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("chat unavailable")}
	scheduler := NewScheduler(notifier, nil)

	scheduler.Enqueue("doomed")
	scheduler.Enqueue("still delivered")
	scheduler.Close()

	if got := notifier.messages(); len(got) != 2 {
		t.Fatalf("expected failures to not stop the worker, got %v", got)
	}
}

func TestScheduler_EnqueueAfterCloseIsDropped(t *testing.T) {
	scheduler := NewScheduler(&recordingNotifier{}, nil)
	scheduler.Close()

	if scheduler.Enqueue("late") {
		t.Fatalf("expected enqueue after close to report a drop")
	}
}

func TestScheduler_EmptyMessageIsDropped(t *testing.T) {
	scheduler := NewScheduler(&recordingNotifier{}, nil)
	defer scheduler.Close()

	if scheduler.Enqueue("") {
		t.Fatalf("expected empty message to be rejected")
	}
}
