// Package hashcrack runs a dictionary attack over a target index with a
// bounded worker pool.
package hashcrack

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/internal/digest"
	"github.com/ykhdr/dict-attack/internal/target"
)

const cancelCheckInterval = 256

var (
	ErrAttackInterrupted = errors.New("attack interrupted")
	ErrAlreadyStarted    = errors.New("engine already started")
)

// Engine hashes every candidate once and records which users it cracks.
// An Engine runs a single attack; counters may be read at any time.
type Engine struct {
	l          zerolog.Logger
	index      *target.Index
	candidates []string
	factory    digest.Factory
	cfg        Config

	cracked *xsync.MapOf[string, string]

	hashesComputed atomic.Int64
	passwordsFound atomic.Int64
	digestFailures atomic.Int64
	batchesDone    atomic.Int64
	callerRuns     atomic.Int64
	started        atomic.Bool
}

func NewEngine(index *target.Index, candidates []string, factory digest.Factory, cfg Config) *Engine {
	return &Engine{
		index:      index,
		candidates: candidates,
		factory:    factory,
		cfg:        cfg.normalize(len(candidates)),
		cracked:    xsync.NewMapOf[string, string](),
		l: log.With().
			Str("domain", "hashcrack").
			Str("digest", factory.Name()).
			Logger(),
	}
}

// RunAndWait processes the whole candidate list and returns once every
// batch is done and the pool is stopped. Cancelling ctx tears the pool down
// and returns an error matching ErrAttackInterrupted.
func (e *Engine) RunAndWait(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	batches := Partition(len(e.candidates), e.cfg.BatchSize)
	policy := callerRuns
	if e.cfg.Workers == 1 {
		// a lone worker keeps list order only if nobody else runs batches
		policy = blockSubmit
	}
	e.l.Debug().
		Int("candidates", len(e.candidates)).
		Int("batches", len(batches)).
		Int("workers", e.cfg.Workers).
		Int("batch-size", e.cfg.BatchSize).
		Int("queue-capacity", e.cfg.QueueCapacity).
		Stringer("back-pressure", policy).
		Msg("attack started")

	p := newPool(ctx, e.l, e.cfg.Workers, e.cfg.QueueCapacity, policy, e.cfg.ShutdownTimeout, e.factory, e.crackBatch)
	for _, b := range batches {
		if ctx.Err() != nil {
			break
		}
		p.Submit(b)
	}
	if err := p.Wait(ctx); err != nil {
		return e.interrupted(err)
	}
	p.Shutdown()
	e.callerRuns.Store(p.callerRuns.Load())

	if done := e.batchesDone.Load(); done < int64(len(batches)) {
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return e.interrupted(cause)
	}
	e.l.Debug().
		Int64("hashes-computed", e.hashesComputed.Load()).
		Int64("passwords-found", e.passwordsFound.Load()).
		Int64("digest-failures", e.digestFailures.Load()).
		Int64("caller-runs", e.callerRuns.Load()).
		Msg("attack finished")
	return nil
}

func (e *Engine) interrupted(cause error) error {
	e.l.Warn().
		Err(cause).
		Int64("hashes-computed", e.hashesComputed.Load()).
		Int64("passwords-found", e.passwordsFound.Load()).
		Msg("attack interrupted")
	return fmt.Errorf("%w: %w", ErrAttackInterrupted, cause)
}

// crackBatch is the task body. Counters are kept locally and folded into
// the shared ones once per batch.
func (e *Engine) crackBatch(ctx context.Context, d digest.Digester, b Batch) {
	var hashes, found, failures int64
	defer func() {
		e.hashesComputed.Add(hashes)
		e.passwordsFound.Add(found)
		if failures > 0 {
			e.digestFailures.Add(failures)
		}
	}()

	for i := b.Start; i < b.End; i++ {
		if (i-b.Start)%cancelCheckInterval == 0 && ctx.Err() != nil {
			return
		}
		candidate := e.candidates[i]
		h, err := safeDigest(d, candidate)
		if err != nil {
			if failures == 0 {
				e.l.Warn().Err(err).Int("index", i).Msg("digest failed, candidate treated as non-matching")
			}
			failures++
			continue
		}
		hashes++
		if !e.index.Contains(h) {
			continue
		}
		for _, username := range e.index.Usernames(h) {
			if _, loaded := e.cracked.LoadOrStore(username, candidate); !loaded {
				found++
				e.l.Debug().Str("username", username).Str("hash", h).Msg("password recovered")
			}
		}
	}
	e.batchesDone.Add(1)
}

func safeDigest(d digest.Digester, candidate string) (h string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("digest panic: %v", r)
		}
	}()
	return d.Digest(candidate)
}

func (e *Engine) HashesComputed() int64 {
	return e.hashesComputed.Load()
}

func (e *Engine) PasswordsFound() int64 {
	return e.passwordsFound.Load()
}

// DigestFailures counts candidates whose digest could not be computed.
func (e *Engine) DigestFailures() int64 {
	return e.digestFailures.Load()
}

// CallerRuns counts batches the submitting goroutine ran itself because the
// queue was full. It is set when RunAndWait completes.
func (e *Engine) CallerRuns() int64 {
	return e.callerRuns.Load()
}

// CrackedResults copies the username to password map. During a run the copy
// is a consistent-enough snapshot for display; after RunAndWait it is final.
func (e *Engine) CrackedResults() map[string]string {
	out := make(map[string]string, e.cracked.Size())
	e.cracked.Range(func(username, password string) bool {
		out[username] = password
		return true
	})
	return out
}

func (e *Engine) Cracked(username string) (string, bool) {
	return e.cracked.Load(username)
}

// Total is the number of candidates the run will hash.
func (e *Engine) Total() int64 {
	return int64(len(e.candidates))
}

// Config returns the tuning after defaults and clamps were applied.
func (e *Engine) Config() Config {
	return e.cfg
}
