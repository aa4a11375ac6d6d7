package alerts

import (
	"context"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/fleet-alerts/core"
)

const (
	defaultQueueSize   = 128
	defaultSendTimeout = 10 * time.Second
)

// Scheduler delivers alert messages asynchronously. A single worker drains a
// buffered queue so webhook handling never waits on the outbound chat API.
// Delivery is best effort: failures are logged, never retried, and a full
// queue drops the newest message.
type Scheduler struct {
	notifier    core.Notifier
	logger      glog.Logger
	sendTimeout time.Duration

	queue     chan string
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

type SchedulerOption func(*Scheduler)

func WithQueueSize(size int) SchedulerOption {
	return func(s *Scheduler) {
		if size > 0 {
			s.queue = make(chan string, size)
		}
	}
}

func WithSendTimeout(timeout time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if timeout > 0 {
			s.sendTimeout = timeout
		}
	}
}

func NewScheduler(notifier core.Notifier, logger glog.Logger, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		notifier:    notifier,
		logger:      glog.Ensure(logger),
		sendTimeout: defaultSendTimeout,
		queue:       make(chan string, defaultQueueSize),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	go s.run()
	return s
}

// Enqueue hands one message to the worker without blocking. It reports false
// when the queue is full or the scheduler is closed, and the message is
// dropped.
func (s *Scheduler) Enqueue(text string) bool {
	if s == nil || text == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- text:
		return true
	default:
		s.logger.Warn("alert dropped, delivery queue full",
			"text_code", core.ErrorDispatchFailed,
			"queue_size", cap(s.queue),
		)
		return false
	}
}

// Close stops accepting messages, drains what was already queued, and waits
// for the worker to exit.
func (s *Scheduler) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.queue)
	})
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	for text := range s.queue {
		s.deliver(text)
	}
}

func (s *Scheduler) deliver(text string) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.sendTimeout)
	defer cancel()
	if err := s.notifier.Send(ctx, text); err != nil {
		s.logger.Error("alert delivery failed",
			"text_code", core.ErrorDispatchFailed,
			"error", err.Error(),
		)
	}
}
