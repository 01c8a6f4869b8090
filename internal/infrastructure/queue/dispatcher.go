package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/contactdesk/leadgate/internal/core/ports"
	"github.com/contactdesk/leadgate/internal/metrics"
)

const (
	defaultWorkers     = 4
	channelBuffer      = 256
	defaultSendTimeout = 15 * time.Second
)

// OnceGuard records that a notification key was attempted. Claim returns
// false when the key was already claimed.
type OnceGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Dispatcher delivers notifications on a fixed set of workers. Jobs are
// sharded by lead id, so events of one lead keep their submission order.
// Delivery is attempted at most once and failures are only logged.
type Dispatcher struct {
	workers     []chan ports.Notification
	senders     map[ports.NotificationKind]ports.NotificationSender
	guard       OnceGuard
	sendTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithGuard enables the at-most-once claim before each send.
func WithGuard(g OnceGuard) Option {
	return func(d *Dispatcher) { d.guard = g }
}

// WithSendTimeout bounds a single delivery attempt.
func WithSendTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.sendTimeout = t
		}
	}
}

// WithSender registers the sender for kind, replacing any previous one.
func WithSender(kind ports.NotificationKind, s ports.NotificationSender) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.senders[kind] = s
		}
	}
}

// NewDispatcher creates a Dispatcher with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:     make([]chan ports.Notification, numWorkers),
		senders:     make(map[ports.NotificationKind]ports.NotificationSender),
		sendTimeout: defaultSendTimeout,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// notifications still queued at that point are dropped.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		i, ch := i, ch
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.runWorker(ctx, i, ch)
		}()
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Submit queues n on the worker responsible for its lead and returns
// immediately. It reports false when that worker's buffer is full.
func (d *Dispatcher) Submit(n ports.Notification) bool {
	idx := d.shardIndex(n.Lead.ID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
		d.log.Warn().
			Str("lead_id", n.Lead.ID).
			Str("kind", string(n.Kind)).
			Int("worker_id", idx).
			Msg("notification queue full, dropping")
		return false
	}
}

// shardIndex maps a lead id deterministically to a worker index.
func (d *Dispatcher) shardIndex(leadID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(leadID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, n ports.Notification) {
	kind := string(n.Kind)
	log := d.log.With().
		Str("lead_id", n.Lead.ID).
		Str("kind", kind).
		Int("worker_id", workerID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
			log.Error().Interface("panic", r).Msg("notification sender panicked")
		}
	}()

	sender, ok := d.senders[n.Kind]
	if !ok {
		metrics.NotificationsTotal.WithLabelValues(kind, "no_sender").Inc()
		log.Debug().Msg("no sender registered, notification skipped")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if d.guard != nil {
		claimed, err := d.guard.Claim(sendCtx, onceKey(n))
		if err != nil {
			log.Warn().Err(err).Msg("notification guard unavailable, sending anyway")
		} else if !claimed {
			metrics.NotificationsTotal.WithLabelValues(kind, "duplicate").Inc()
			log.Debug().Msg("notification already attempted, skipped")
			return
		}
	}

	start := time.Now()
	err := sender.Send(sendCtx, n)
	metrics.NotificationSendDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
		log.Error().Err(err).Msg("notification delivery failed")
		return
	}

	metrics.NotificationsTotal.WithLabelValues(kind, "sent").Inc()
	log.Debug().Msg("notification delivered")
}

// onceKey identifies a notification for the at-most-once guard. Mails are
// keyed by lead so one lead never produces a second admin notice or
// confirmation; events are keyed by their own id.
func onceKey(n ports.Notification) string {
	if n.Kind == ports.NotifyEvent {
		return fmt.Sprintf("%s:%s", n.Kind, n.ID)
	}
	return fmt.Sprintf("%s:%s", n.Kind, n.Lead.ID)
}
