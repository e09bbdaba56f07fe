package client

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/multiplayer-demo/internal/model"
)

func TestBestEffortSender_SendsOnce(t *testing.T) {
	backend := &fakeBackend{}
	reporter := &recordingReporter{}
	s := NewBestEffortSender(backend, reporter)

	s.Send(context.Background(), "p1", model.Position{X: 3, Y: 4})
	s.Close()

	assert.Equal(t, []positionCall{{ID: "p1", Pos: model.Position{X: 3, Y: 4}}}, backend.updateCalls())
	results := reporter.all()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].Attempts)
}

func TestBestEffortSender_FailureIsReportedNotRetried(t *testing.T) {
	backend := &fakeBackend{updateErr: []error{errors.New("boom")}}
	reporter := &recordingReporter{}
	s := NewBestEffortSender(backend, reporter)

	s.Send(context.Background(), "p1", model.Position{X: 1, Y: 1})
	s.Close()

	assert.Len(t, backend.updateCalls(), 1)
	results := reporter.all()
	require.Len(t, results, 1)
	assert.EqualError(t, results[0].Err, "boom")
}

func TestBestEffortSender_SurvivesCancelledContext(t *testing.T) {
	backend := &fakeBackend{}
	reporter := &recordingReporter{}
	s := NewBestEffortSender(backend, reporter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Send(ctx, "p1", model.Position{X: 1, Y: 1})
	s.Close()

	results := reporter.all()
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

// gatedUpdater holds its first call until release is closed
type gatedUpdater struct {
	mu      sync.Mutex
	calls   []model.Position
	last    model.Position
	started chan struct{}
	release chan struct{}
}

func newGatedUpdater() *gatedUpdater {
	return &gatedUpdater{started: make(chan struct{}), release: make(chan struct{})}
}

func (u *gatedUpdater) UpdatePlayerPosition(_ context.Context, _ model.PlayerID, x, y float64) error {
	u.mu.Lock()
	first := len(u.calls) == 0
	u.calls = append(u.calls, model.Position{X: x, Y: y})
	u.mu.Unlock()

	if first {
		close(u.started)
		<-u.release
	}

	u.mu.Lock()
	u.last = model.Position{X: x, Y: y}
	u.mu.Unlock()
	return nil
}

func TestBestEffortSender_LaterWriteNeverOvertaken(t *testing.T) {
	backend := newGatedUpdater()
	reporter := &recordingReporter{}
	s := NewBestEffortSender(backend, reporter)

	s.Send(context.Background(), "p1", model.Position{X: 10})
	<-backend.started
	s.Send(context.Background(), "p1", model.Position{X: 20})
	s.Send(context.Background(), "p1", model.Position{X: 30})
	close(backend.release)
	s.Close()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []model.Position{{X: 10}, {X: 30}}, backend.calls)
	assert.Equal(t, model.Position{X: 30}, backend.last)
	assert.Len(t, reporter.all(), 2)
}

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}
}

func TestRetrySender_RetriesUntilSuccess(t *testing.T) {
	backend := &fakeBackend{updateErr: []error{errors.New("flaky"), errors.New("flaky")}}
	reporter := &recordingReporter{}
	s := NewRetrySender(backend, fastRetryConfig(), reporter)
	defer s.Close()

	s.Send(context.Background(), "p1", model.Position{X: 7, Y: 8})

	require.Eventually(t, func() bool { return len(reporter.all()) == 1 }, time.Second, time.Millisecond)
	res := reporter.all()[0]
	assert.NoError(t, res.Err)
	assert.Equal(t, 3, res.Attempts)
	assert.Len(t, backend.updateCalls(), 3)
}

func TestRetrySender_PermanentErrorStops(t *testing.T) {
	backend := &fakeBackend{updateErr: []error{model.ErrInvalidPosition, errors.New("unused")}}
	reporter := &recordingReporter{}
	s := NewRetrySender(backend, fastRetryConfig(), reporter)
	defer s.Close()

	s.Send(context.Background(), "p1", model.Position{X: 7, Y: 8})

	require.Eventually(t, func() bool { return len(reporter.all()) == 1 }, time.Second, time.Millisecond)
	res := reporter.all()[0]
	assert.ErrorIs(t, res.Err, model.ErrInvalidPosition)
	assert.Equal(t, 1, res.Attempts)
}

func TestRetrySender_CloseAbandonsRetry(t *testing.T) {
	errs := make([]error, 1000)
	for i := range errs {
		errs[i] = errors.New("down")
	}
	backend := &fakeBackend{updateErr: errs}
	reporter := &recordingReporter{}
	s := NewRetrySender(backend, RetryConfig{
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		MaxElapsedTime:  time.Minute,
	}, reporter)

	s.Send(context.Background(), "p1", model.Position{X: 1, Y: 1})
	require.Eventually(t, func() bool { return len(backend.updateCalls()) >= 1 }, time.Second, time.Millisecond)
	s.Close()

	results := reporter.all()
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewLogReporter(logger)

	r.ReportSend(SendResult{PlayerID: "p1", Position: model.Position{X: 1, Y: 2}, Attempts: 1})
	r.ReportSend(SendResult{PlayerID: "p1", Attempts: 1, Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"position sent\"")
	assert.Contains(t, out, "level=WARN msg=\"position update failed\"")
	assert.Contains(t, out, "component=sender")
	assert.Contains(t, out, "error=boom")
}
