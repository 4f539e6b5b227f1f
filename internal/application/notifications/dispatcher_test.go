package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"profitshare-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu    sync.Mutex
	got   []*domain.Notification
	err   error
	block chan struct{}
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Deliver(_ context.Context, n *domain.Notification) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, n)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func event() Event {
	return Event{BatchID: "b", FundingRoundID: "r", BusinessName: "Acme", Amount: decimal.NewFromInt(1), Currency: "NGN"}
}

func TestDispatcher_DeliversToEverySinkAndDrainsOnClose(t *testing.T) {
	a := &recordingSink{}
	b := &recordingSink{err: errors.New("down")}
	d := NewDispatcher(16, time.Second, a, b)

	for i := 0; i < 10; i++ {
		require.NoError(t, d.Notify(context.Background(), "inv-1", event()))
	}
	require.NoError(t, d.Close())

	assert.Equal(t, 10, a.count())
	assert.Equal(t, 10, b.count())
}

func TestDispatcher_QueueFull(t *testing.T) {
	block := make(chan struct{})
	sink := &recordingSink{block: block}
	d := NewDispatcher(1, time.Second, sink)

	// First item is picked up by the worker and blocks; second fills the buffer.
	require.NoError(t, d.Notify(context.Background(), "inv-1", event()))
	require.Eventually(t, func() bool { return len(d.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, d.Notify(context.Background(), "inv-1", event()))

	err := d.Notify(context.Background(), "inv-1", event())
	assert.ErrorIs(t, err, ErrQueueFull)

	close(block)
	require.NoError(t, d.Close())
	assert.Equal(t, 2, sink.count())
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	d := NewDispatcher(4, time.Second)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	assert.ErrorIs(t, d.Notify(context.Background(), "inv-1", event()), ErrClosed)
}
