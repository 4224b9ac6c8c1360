// Package ledger is the in-memory insurance DAO backend: users, policies,
// subscriptions, claims, proposals, investor deposits and the audit trail,
// together with the operations that mutate them.
//
// Every operation waits out a simulated network latency first and then runs
// its validation and mutation under a single lock, so a call either applies
// all of its changes or none. Rejections are reported in models.TxResult;
// the error return is reserved for cancellation and unexpected failures.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/insure-dao/blobstore"
	"github.com/yourusername/insure-dao/metrics"
	"github.com/yourusername/insure-dao/models"
)

const (
	day = 24 * time.Hour

	DefaultBaseLatency = 120 * time.Millisecond
	DefaultSlowLatency = 1200 * time.Millisecond

	PremiumInterval      = 7 * day
	GracePeriodDays      = 3
	PolicyVotingWindow   = 3 * day
	ClaimVotingWindow    = 2 * day
	ProposalVotingWindow = 2 * day
	DepositLockIn        = 30 * day

	FlakyReadRate     = 0.10
	DuplicateVoteRate = 0.02

	actorDAO = "DAO"
)

// AuditSink receives a copy of every audit event after it is recorded.
type AuditSink interface {
	Append(ctx context.Context, e models.AuditEvent) error
}

// Options configures a Service. Zero values select production defaults.
type Options struct {
	Now    func() time.Time
	Chance func(p float64) bool
	Sleep  func(ctx context.Context, d time.Duration) error
	Sender SenderFunc
	Logger *zap.Logger
	Blobs  blobstore.Store
	Audit  AuditSink

	// DaoMembers are added to the seeded member list, and survive Reset.
	DaoMembers []string

	Toggles     models.Toggles
	BaseLatency time.Duration
	SlowLatency time.Duration
}

type Service struct {
	mu sync.Mutex
	st *state

	tmu     sync.Mutex
	toggles models.Toggles

	bus *bus

	now         func() time.Time
	chance      func(p float64) bool
	sleep       func(ctx context.Context, d time.Duration) error
	sender      SenderFunc
	log         *zap.Logger
	blobs       blobstore.Store
	audit       AuditSink
	members     []string
	baseLatency time.Duration
	slowLatency time.Duration
}

// New builds a Service loaded with the seed dataset.
func New(opts Options) (*Service, error) {
	s := &Service{
		toggles:     opts.Toggles,
		bus:         newBus(),
		now:         opts.Now,
		chance:      opts.Chance,
		sleep:       opts.Sleep,
		sender:      opts.Sender,
		log:         opts.Logger,
		blobs:       opts.Blobs,
		audit:       opts.Audit,
		members:     slices.Clone(opts.DaoMembers),
		baseLatency: opts.BaseLatency,
		slowLatency: opts.SlowLatency,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.chance == nil {
		s.chance = func(p float64) bool { return rand.Float64() < p }
	}
	if s.sleep == nil {
		s.sleep = sleepContext
	}
	if s.sender == nil {
		s.sender = SenderFromContext
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.blobs == nil {
		s.blobs = blobstore.NewMemoryStore("mem://uploads")
	}
	if s.baseLatency == 0 {
		s.baseLatency = DefaultBaseLatency
	}
	if s.slowLatency == 0 {
		s.slowLatency = DefaultSlowLatency
	}

	st, err := loadSeed(s.now(), s.members)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}
	s.st = st
	return s, nil
}

// Reset discards all state and reloads the seed dataset. Id counters restart.
func (s *Service) Reset() error {
	st, err := loadSeed(s.now(), s.members)
	if err != nil {
		return fmt.Errorf("failed to load seed data: %w", err)
	}
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
	for _, topic := range Topics {
		s.bus.emit(topic)
	}
	return nil
}

// Subscribe registers fn for change notifications on topic and returns a
// function that removes it.
func (s *Service) Subscribe(topic string, fn func()) func() {
	return s.bus.subscribe(topic, fn)
}

func (s *Service) Toggles() models.Toggles {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	return s.toggles
}

func (s *Service) SetToggles(t models.Toggles) {
	s.tmu.Lock()
	s.toggles = t
	s.tmu.Unlock()
}

// consumeFailNext reports whether the one-shot failure flag was set and
// clears it.
func (s *Service) consumeFailNext() bool {
	s.tmu.Lock()
	defer s.tmu.Unlock()
	if !s.toggles.FailNextTx {
		return false
	}
	s.toggles.FailNextTx = false
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) delay(ctx context.Context) error {
	d := s.baseLatency
	if s.Toggles().SlowResponses {
		d = s.slowLatency
	}
	return s.sleep(ctx, d)
}

func (s *Service) observe(op, outcome string, start time.Time) {
	metrics.LedgerOperationsTotal.WithLabelValues(op, outcome).Inc()
	metrics.LedgerOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// read runs fn against the current state after the simulated latency.
func (s *Service) read(ctx context.Context, op string, fn func(st *state)) error {
	start := time.Now()
	if s.Toggles().NetworkFlaky && s.chance(FlakyReadRate) {
		s.observe(op, "error", start)
		return ErrNetwork
	}
	if err := s.delay(ctx); err != nil {
		s.observe(op, "error", start)
		return err
	}
	s.mu.Lock()
	fn(s.st)
	s.mu.Unlock()
	s.observe(op, "ok", start)
	return nil
}

// txn collects the effects of one write while the state lock is held.
type txn struct {
	s      *Service
	st     *state
	now    time.Time
	sender string
	id     string
	result models.TxResult
	events []models.AuditEvent
	topics []string
}

func (tx *txn) record(actor, event, details string) {
	e := models.AuditEvent{
		ID:      tx.st.nextID("evt"),
		Time:    tx.now,
		Event:   event,
		Details: details,
		Actor:   actor,
	}
	tx.st.audit = append([]models.AuditEvent{e}, tx.st.audit...)
	tx.events = append(tx.events, e)
}

func (tx *txn) touch(topics ...string) {
	tx.topics = append(tx.topics, topics...)
}

// write runs a mutating operation. When needSender is set the call fails
// with "No wallet connected" before fn runs if no identity is available.
func (s *Service) write(ctx context.Context, op string, needSender bool, fn func(tx *txn) error) (models.TxResult, error) {
	start := time.Now()
	if err := s.delay(ctx); err != nil {
		s.observe(op, "error", start)
		return models.TxResult{}, err
	}

	sender, ok := s.sender(ctx)
	if needSender && !ok {
		s.observe(op, "rejected", start)
		return models.TxResult{OK: false, Error: errNoWallet.Error(), Code: CodeOf(errNoWallet)}, nil
	}

	s.mu.Lock()
	tx := &txn{s: s, st: s.st, now: s.now(), sender: sender}
	tx.id = tx.st.nextID("tx")
	err := fn(tx)
	s.mu.Unlock()

	s.flush(ctx, tx)

	var txErr *TxError
	switch {
	case err == nil:
		res := tx.result
		res.OK = true
		res.TxID = tx.id
		s.observe(op, "ok", start)
		s.log.Info("ledger transaction",
			zap.String("op", op),
			zap.String("tx_id", tx.id),
			zap.String("sender", sender),
		)
		return res, nil
	case errors.As(err, &txErr):
		s.observe(op, "rejected", start)
		s.log.Warn("ledger transaction rejected",
			zap.String("op", op),
			zap.String("tx_id", tx.id),
			zap.String("sender", sender),
			zap.String("reason", txErr.Msg),
		)
		return models.TxResult{OK: false, TxID: tx.id, Error: txErr.Msg, Code: CodeOf(err)}, nil
	default:
		s.observe(op, "error", start)
		s.log.Error("ledger transaction failed",
			zap.String("op", op),
			zap.String("tx_id", tx.id),
			zap.Error(err),
		)
		return models.TxResult{OK: false, TxID: tx.id, Error: err.Error()}, fmt.Errorf("%s: %w", op, err)
	}
}

// flush forwards recorded audit events to the sink and delivers change
// notifications. It runs after the state lock is released.
func (s *Service) flush(ctx context.Context, tx *txn) {
	if s.audit != nil {
		for _, e := range tx.events {
			if err := s.audit.Append(ctx, e); err != nil {
				metrics.LedgerAuditSinkFailuresTotal.Inc()
				s.log.Error("failed to archive audit event", zap.String("event_id", e.ID), zap.Error(err))
			}
		}
	}
	if len(tx.events) > 0 {
		tx.touch(TopicAudit)
	}
	seen := make(map[string]bool, len(tx.topics))
	for _, topic := range tx.topics {
		if seen[topic] {
			continue
		}
		seen[topic] = true
		s.bus.emit(topic)
	}
}
