package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"jersey-storefront/internal/config"
	"jersey-storefront/internal/model"
	"jersey-storefront/internal/repository"
	"jersey-storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttributionClient struct {
	mu       sync.Mutex
	err      error
	payloads [][]byte
}

func (f *fakeAttributionClient) Configured() bool { return true }

func (f *fakeAttributionClient) SendOrder(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return f.err
}

func (f *fakeAttributionClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func newPoller(t *testing.T, sender *fakeAttributionClient, maxAttempts int) (*AttributionPoller, repository.AttributionForwardRepository) {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewAttributionForwardRepository(db)
	require.NoError(t, repo.Enqueue(context.Background(), db, 1, []byte(`{"orderId":"1"}`)))

	p := NewAttributionPoller(repo, sender, config.Attribution{
		PollInterval: 10 * time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  maxAttempts,
		BaseBackoff:  30 * time.Second,
		MaxBackoff:   time.Hour,
	}, slog.New(slog.DiscardHandler))
	p.now = func() time.Time { return time.Now().Add(time.Second) }
	return p, repo
}

func TestAttributionPoller_Sends(t *testing.T) {
	sender := &fakeAttributionClient{}
	p, repo := newPoller(t, sender, 3)

	p.processDue(context.Background())

	require.Equal(t, 1, sender.calls())
	assert.JSONEq(t, `{"orderId":"1"}`, string(sender.payloads[0]))

	row, err := repo.FindByOrderID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.ForwardStatusSent, row.Status)

	p.processDue(context.Background())
	assert.Equal(t, 1, sender.calls(), "sent rows are not delivered again")
}

func TestAttributionPoller_BacksOffThenDies(t *testing.T) {
	sender := &fakeAttributionClient{err: errors.New("utmify error 500: boom")}
	p, repo := newPoller(t, sender, 2)
	ctx := context.Background()

	p.processDue(ctx)
	row, err := repo.FindByOrderID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ForwardStatusPending, row.Status)
	assert.Equal(t, 1, row.Attempts)
	assert.Contains(t, row.LastError, "boom")

	// still backing off
	p.processDue(ctx)
	assert.Equal(t, 1, sender.calls())

	p.now = func() time.Time { return time.Now().Add(time.Minute) }
	p.processDue(ctx)
	assert.Equal(t, 2, sender.calls())

	row, err = repo.FindByOrderID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.ForwardStatusDead, row.Status)
	assert.Equal(t, 2, row.Attempts)

	p.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	p.processDue(ctx)
	assert.Equal(t, 2, sender.calls(), "dead rows are never retried")
}

func TestAttributionPoller_Backoff(t *testing.T) {
	p := &AttributionPoller{baseBackoff: 30 * time.Second, maxBackoff: 5 * time.Minute}

	assert.Equal(t, 30*time.Second, p.backoff(0))
	assert.Equal(t, time.Minute, p.backoff(1))
	assert.Equal(t, 2*time.Minute, p.backoff(2))
	assert.Equal(t, 4*time.Minute, p.backoff(3))
	assert.Equal(t, 5*time.Minute, p.backoff(4))
	assert.Equal(t, 5*time.Minute, p.backoff(40))
}

func TestAttributionPoller_RunStopsOnCancel(t *testing.T) {
	sender := &fakeAttributionClient{}
	p, _ := newPoller(t, sender, 3)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sender.calls() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}
