package hashcrack

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/ykhdr/dict-attack/internal/digest"
	"golang.org/x/sync/errgroup"
)

type taskFunc func(ctx context.Context, d digest.Digester, b Batch)

// backPressure decides what Submit does when the queue is full.
type backPressure int

const (
	// callerRuns makes the submitting goroutine execute the batch itself.
	callerRuns backPressure = iota
	// blockSubmit waits for a free queue slot.
	blockSubmit
)

func (bp backPressure) String() string {
	if bp == blockSubmit {
		return "block"
	}
	return "caller-runs"
}

// pool is a fixed set of workers fed by a bounded queue. Each worker, and
// the submitting goroutine, owns a private digester.
type pool struct {
	l       zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	queue   chan Batch
	run     taskFunc
	policy  backPressure
	caller  digest.Digester
	timeout time.Duration

	workers   errgroup.Group
	pending   sync.WaitGroup
	closeOnce sync.Once

	submitted  atomic.Int64
	callerRuns atomic.Int64
}

func newPool(
	ctx context.Context,
	l zerolog.Logger,
	workers, capacity int,
	policy backPressure,
	timeout time.Duration,
	factory digest.Factory,
	run taskFunc,
) *pool {
	ctx, cancel := context.WithCancel(ctx)
	p := &pool{
		l:       l,
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan Batch, capacity),
		run:     run,
		policy:  policy,
		caller:  factory.NewDigester(),
		timeout: timeout,
	}
	for i := 0; i < workers; i++ {
		d := factory.NewDigester()
		p.workers.Go(func() error {
			p.work(d)
			return nil
		})
	}
	return p
}

func (p *pool) work(d digest.Digester) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case b, ok := <-p.queue:
			if !ok {
				return
			}
			p.execute(d, b)
		}
	}
}

func (p *pool) execute(d digest.Digester, b Batch) {
	defer p.pending.Done()
	p.run(p.ctx, d, b)
}

// Submit hands b to the pool. It must only be called from one goroutine.
func (p *pool) Submit(b Batch) {
	p.pending.Add(1)
	p.submitted.Add(1)
	select {
	case p.queue <- b:
		return
	default:
	}
	switch p.policy {
	case blockSubmit:
		select {
		case p.queue <- b:
		case <-p.ctx.Done():
			p.pending.Done()
		}
	default:
		p.callerRuns.Add(1)
		p.execute(p.caller, b)
	}
}

// Wait blocks until every submitted batch has finished. If ctx ends first
// the pool is terminated and the context error returned.
func (p *pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		select {
		case <-done:
			return nil
		default:
		}
		p.Terminate()
		return ctx.Err()
	}
}

// Shutdown stops a drained pool. Workers get timeout to exit before their
// context is cancelled.
func (p *pool) Shutdown() {
	defer p.cancel()
	p.closeQueue()
	if !p.awaitWorkers(p.timeout) {
		p.l.Warn().Dur("timeout", p.timeout).Msg("workers did not stop in time, forcing termination")
	}
}

// Terminate cancels running batches and discards queued ones.
func (p *pool) Terminate() {
	p.cancel()
	p.closeQueue()
	discarded := 0
	for range p.queue {
		p.pending.Done()
		discarded++
	}
	if !p.awaitWorkers(p.timeout) {
		p.l.Error().Dur("timeout", p.timeout).Msg("workers ignored cancellation, abandoning them")
	}
	p.l.Debug().Int("discarded-batches", discarded).Msg("pool terminated")
}

func (p *pool) closeQueue() {
	p.closeOnce.Do(func() { close(p.queue) })
}

func (p *pool) awaitWorkers(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		_ = p.workers.Wait()
		close(done)
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
