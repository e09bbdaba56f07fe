package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

// PositionUpdater is the single backend call a sender needs
type PositionUpdater interface {
	UpdatePlayerPosition(ctx context.Context, id model.PlayerID, x, y float64) error
}

// SendResult is the outcome of one flushed position
type SendResult struct {
	PlayerID model.PlayerID
	Position model.Position
	Attempts int
	Err      error
}

// ResultReporter receives the outcome of every position write
type ResultReporter interface {
	ReportSend(SendResult)
}

// PositionSender transmits flushed positions without blocking the caller
type PositionSender interface {
	Send(ctx context.Context, id model.PlayerID, pos model.Position)
	// Close waits for outstanding writes to finish
	Close()
}

// LogReporter logs failed writes at warn and successful ones at debug
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter writing to logger
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger.With(slog.String("component", "sender"))}
}

func (r *LogReporter) ReportSend(res SendResult) {
	attrs := []slog.Attr{
		slog.String("player_id", string(res.PlayerID)),
		slog.Float64("x", res.Position.X),
		slog.Float64("y", res.Position.Y),
		slog.Int("attempts", res.Attempts),
	}
	if res.Err != nil {
		attrs = append(attrs, slog.Any("error", res.Err))
		r.logger.LogAttrs(context.Background(), slog.LevelWarn, "position update failed", attrs...)
		return
	}
	r.logger.LogAttrs(context.Background(), slog.LevelDebug, "position sent", attrs...)
}

// BestEffortSender delivers writes from a single worker with no timeout and
// no retry. Failures are only reported. Writes reach the backend in the
// order they were sent; a position waiting behind a slow write is replaced
// by any later one, so the last flushed position is always the last written.
type BestEffortSender struct {
	backend  PositionUpdater
	reporter ResultReporter

	mu      sync.Mutex
	pending *pendingSend
	wake    chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

var _ PositionSender = (*BestEffortSender)(nil)

// NewBestEffortSender creates a fire-and-forget sender and starts its worker
func NewBestEffortSender(backend PositionUpdater, reporter ResultReporter) *BestEffortSender {
	s := &BestEffortSender{
		backend:  backend,
		reporter: reporter,
		wake:     make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Send queues the write and returns immediately. The write outlives
// cancellation of ctx so that tearing down the loop does not abort it.
func (s *BestEffortSender) Send(ctx context.Context, id model.PlayerID, pos model.Position) {
	s.mu.Lock()
	s.pending = &pendingSend{ctx: context.WithoutCancel(ctx), id: id, pos: pos}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close delivers any queued write, then stops the worker
func (s *BestEffortSender) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *BestEffortSender) run() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			s.deliverPending()
			return
		case <-s.wake:
			s.deliverPending()
		}
	}
}

func (s *BestEffortSender) deliverPending() {
	s.mu.Lock()
	next := s.pending
	s.pending = nil
	s.mu.Unlock()
	if next == nil {
		return
	}

	err := s.backend.UpdatePlayerPosition(next.ctx, next.id, next.pos.X, next.pos.Y)
	s.reporter.ReportSend(SendResult{PlayerID: next.id, Position: next.pos, Attempts: 1, Err: err})
}

// RetryConfig bounds the exponential backoff of a RetrySender
type RetryConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig returns the default retry settings
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

type pendingSend struct {
	ctx context.Context
	id  model.PlayerID
	pos model.Position
}

// RetrySender delivers writes from a single worker, retrying failures with
// exponential backoff. Only the newest unsent position is kept: a position
// queued behind a retry is replaced by any later one.
type RetrySender struct {
	backend  PositionUpdater
	reporter ResultReporter
	cfg      RetryConfig

	mu      sync.Mutex
	pending *pendingSend
	wake    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

var _ PositionSender = (*RetrySender)(nil)

// NewRetrySender creates a retrying sender and starts its worker
func NewRetrySender(backend PositionUpdater, cfg RetryConfig, reporter ResultReporter) *RetrySender {
	ctx, cancel := context.WithCancel(context.Background())
	s := &RetrySender{
		backend:  backend,
		reporter: reporter,
		cfg:      cfg,
		wake:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Send replaces any queued position and wakes the worker
func (s *RetrySender) Send(ctx context.Context, id model.PlayerID, pos model.Position) {
	s.mu.Lock()
	s.pending = &pendingSend{ctx: context.WithoutCancel(ctx), id: id, pos: pos}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker. A write still being retried is abandoned and
// reported with the cancellation error.
func (s *RetrySender) Close() {
	s.cancel()
	<-s.done
}

func (s *RetrySender) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}

		s.mu.Lock()
		next := s.pending
		s.pending = nil
		s.mu.Unlock()

		if next != nil {
			s.deliver(next)
		}
	}
}

func (s *RetrySender) deliver(p *pendingSend) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = s.cfg.MaxElapsedTime

	attempts := 0
	op := func() error {
		attempts++
		err := s.backend.UpdatePlayerPosition(p.ctx, p.id, p.pos.X, p.pos.Y)
		if err != nil && isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(b, s.ctx))
	if err != nil {
		err = fmt.Errorf("after %d attempts: %w", attempts, err)
	}
	s.reporter.ReportSend(SendResult{PlayerID: p.id, Position: p.pos, Attempts: attempts, Err: err})
}

// isPermanent reports errors that another attempt cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, model.ErrInvalidPosition) || errors.Is(err, model.ErrPlayerNotFound)
}
