package hashcrack

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/dict-attack/internal/digest"
)

var identity = funcFactory{name: "identity", fn: func(s string) (string, error) { return s, nil }}

func TestPoolCallerRunsWhenQueueFull(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var executed atomic.Int64
	run := func(ctx context.Context, _ digest.Digester, b Batch) {
		if b.Start == 0 {
			close(started)
			<-release
		}
		executed.Add(1)
	}
	p := newPool(context.Background(), zerolog.Nop(), 1, 1, callerRuns, time.Second, identity, run)

	p.Submit(Batch{Start: 0, End: 1})
	<-started
	p.Submit(Batch{Start: 1, End: 2})
	p.Submit(Batch{Start: 2, End: 3})
	assert.EqualValues(t, 1, p.callerRuns.Load())
	assert.EqualValues(t, 1, executed.Load())

	close(release)
	require.NoError(t, p.Wait(context.Background()))
	p.Shutdown()
	assert.EqualValues(t, 3, executed.Load())
	assert.EqualValues(t, 3, p.submitted.Load())
}

func TestPoolBlockingSubmitKeepsOrder(t *testing.T) {
	var order []int
	run := func(ctx context.Context, _ digest.Digester, b Batch) {
		order = append(order, b.Start)
	}
	p := newPool(context.Background(), zerolog.Nop(), 1, 2, blockSubmit, time.Second, identity, run)
	for i := 0; i < 50; i++ {
		p.Submit(Batch{Start: i, End: i + 1})
	}
	require.NoError(t, p.Wait(context.Background()))
	p.Shutdown()

	require.Len(t, order, 50)
	for i, start := range order {
		assert.Equal(t, i, start)
	}
	assert.Zero(t, p.callerRuns.Load())
}

func TestPoolWaitCancelledTerminates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var executed atomic.Int64
	run := func(ctx context.Context, _ digest.Digester, b Batch) {
		if b.Start == 0 {
			close(started)
			<-ctx.Done()
			return
		}
		if ctx.Err() == nil {
			executed.Add(1)
		}
	}
	p := newPool(ctx, zerolog.Nop(), 1, 4, callerRuns, time.Second, identity, run)
	p.Submit(Batch{Start: 0, End: 1})
	<-started
	for i := 1; i <= 4; i++ {
		p.Submit(Batch{Start: i, End: i + 1})
	}

	time.AfterFunc(10*time.Millisecond, cancel)
	err := p.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, executed.Load())
}
