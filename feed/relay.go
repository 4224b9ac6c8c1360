// Package feed fans ledger change notifications out to external consumers:
// websocket clients, a Kafka topic and a Redis channel.
package feed

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/insure-dao/metrics"
)

// Change is the message published for every collection update. Consumers
// refetch the named collection; no payload is carried.
type Change struct {
	Topic string    `json:"topic"`
	Seq   uint64    `json:"seq"`
	Time  time.Time `json:"time"`
}

// Source delivers synchronous change notifications per topic.
type Source interface {
	Subscribe(topic string, fn func()) func()
}

type Sink interface {
	Name() string
	Publish(ctx context.Context, c Change) error
}

const DefaultBuffer = 256

// Relay subscribes to a Source and forwards changes to sinks from its own
// goroutine so that notifying never blocks a ledger write. Changes that
// arrive while the buffer is full are dropped.
type Relay struct {
	sinks  []Sink
	log    *zap.Logger
	queue  chan Change
	seq    atomic.Uint64
	unsubs []func()
	now    func() time.Time
}

func NewRelay(log *zap.Logger, buffer int, sinks ...Sink) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Relay{
		sinks: sinks,
		log:   log,
		queue: make(chan Change, buffer),
		now:   time.Now,
	}
}

// Attach subscribes the relay to every topic on src.
func (r *Relay) Attach(src Source, topics []string) {
	for _, topic := range topics {
		r.unsubs = append(r.unsubs, src.Subscribe(topic, func() { r.enqueue(topic) }))
	}
}

func (r *Relay) enqueue(topic string) {
	c := Change{Topic: topic, Seq: r.seq.Add(1), Time: r.now()}
	select {
	case r.queue <- c:
	default:
		metrics.FeedPublishFailureTotal.WithLabelValues("relay", topic).Inc()
		r.log.Warn("feed buffer full, dropping change", zap.String("topic", topic), zap.Uint64("seq", c.Seq))
	}
}

// Run delivers queued changes until ctx is cancelled, then detaches from
// the source.
func (r *Relay) Run(ctx context.Context) {
	defer func() {
		for _, unsub := range r.unsubs {
			unsub()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-r.queue:
			r.deliver(ctx, c)
		}
	}
}

func (r *Relay) deliver(ctx context.Context, c Change) {
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, c); err != nil {
			metrics.FeedPublishFailureTotal.WithLabelValues(sink.Name(), c.Topic).Inc()
			r.log.Error("failed to publish change",
				zap.String("sink", sink.Name()),
				zap.String("topic", c.Topic),
				zap.Error(err),
			)
		}
	}
}
