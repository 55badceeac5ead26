package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyflow/tally/internal/service"
)

func TestQueue_PublishAndProcess(t *testing.T) {
	var mu sync.Mutex
	var seen []service.Task

	q := NewQueue(10, 2, func(_ context.Context, task service.Task) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, task)
		return nil
	}, nil)

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, service.Task{Kind: KindGenerateInsight, StatementID: "stmt-1"}))
	require.NoError(t, q.Publish(ctx, service.Task{Kind: KindGenerateInsight, StatementID: "stmt-2"}))

	require.NoError(t, q.Close())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.NotEmpty(t, seen[0].ID, "queue assigns ids")
}

func TestQueue_HandlerFailureIsSwallowed(t *testing.T) {
	q := NewQueue(1, 1, func(context.Context, service.Task) error {
		return errors.New("insight generation blew up")
	}, nil)

	require.NoError(t, q.Publish(context.Background(), service.Task{Kind: KindGenerateInsight}))
	assert.NoError(t, q.Close(), "task failures never propagate")
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(1, 1, func(context.Context, service.Task) error { return nil }, nil)
	require.NoError(t, q.Close())

	err := q.Publish(context.Background(), service.Task{Kind: KindGenerateInsight})
	assert.Error(t, err)
}

func TestQueue_CloseWaitsForBuffered(t *testing.T) {
	done := make(chan struct{}, 4)
	q := NewQueue(4, 1, func(context.Context, service.Task) error {
		time.Sleep(10 * time.Millisecond)
		done <- struct{}{}
		return nil
	}, nil)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, q.Publish(ctx, service.Task{Kind: KindGenerateInsight}))
	}

	require.NoError(t, q.Close())
	assert.Len(t, done, 4, "buffered tasks run before shutdown")
}

func TestQueue_CloseTwice(t *testing.T) {
	q := NewQueue(1, 1, nil, nil)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())
}
