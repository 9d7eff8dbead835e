// Package attack wires loading, cracking, progress and result sinks into one
// run.
package attack

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/internal/dictionary"
	"github.com/ykhdr/dict-attack/internal/digest"
	"github.com/ykhdr/dict-attack/internal/hashcrack"
	"github.com/ykhdr/dict-attack/internal/progress"
	"github.com/ykhdr/dict-attack/internal/results"
	"github.com/ykhdr/dict-attack/internal/target"
)

var ErrBusy = errors.New("an attack is already running")

type Request struct {
	TargetsPath    string
	DictionaryPath string
}

type Options struct {
	Algorithm *digest.Algorithm
	Engine    hashcrack.Config
	Progress  progress.Config
	// ShowProgress enables the live progress line on Out.
	ShowProgress bool
	// Dedup drops repeated dictionary words before the run.
	Dedup bool
	// Out receives progress lines and the final totals.
	Out   io.Writer
	Sinks results.Sink
}

type Service struct {
	l    zerolog.Logger
	opts Options
	now  func() time.Time

	m       sync.RWMutex
	running bool
	status  Status
	engine  *hashcrack.Engine
}

func NewService(opts Options) *Service {
	if opts.Algorithm == nil {
		opts.Algorithm = digest.Default()
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Service{
		opts:   opts,
		now:    time.Now,
		status: Status{State: StateIdle, Algorithm: opts.Algorithm.Name()},
		l: log.With().
			Str("domain", "attack").
			Str("algorithm", opts.Algorithm.Name()).
			Logger(),
	}
}

// Run performs one attack. On success the run is handed to the sinks before
// it is returned. An interrupted attack returns an error matching
// hashcrack.ErrAttackInterrupted and saves nothing.
func (s *Service) Run(ctx context.Context, req Request) (*results.Run, error) {
	if !s.begin() {
		return nil, ErrBusy
	}
	defer s.end()

	alg := s.opts.Algorithm
	s.l.Info().Str("implementation", alg.Implementation()).Msg("digest selected")

	index, err := target.LoadFile(ctx, req.TargetsPath)
	if err != nil {
		return nil, s.fail(err)
	}
	if n := index.CountHexLenMismatch(alg.HexLen()); n > 0 {
		s.l.Warn().Int("hashes", n).Int("expected-length", alg.HexLen()).
			Msg("target hashes with unexpected length can never match")
	}
	var dictOpts []dictionary.Option
	if s.opts.Dedup {
		dictOpts = append(dictOpts, dictionary.WithDedup())
	}
	candidates, err := dictionary.LoadFile(ctx, req.DictionaryPath, dictOpts...)
	if err != nil {
		return nil, s.fail(err)
	}
	s.l.Info().
		Int("targets", index.UserCount()).
		Int("distinct-hashes", index.Len()).
		Int("candidates", len(candidates)).
		Msg("inputs loaded")

	engine := hashcrack.NewEngine(index, candidates, alg, s.opts.Engine)
	run := results.NewRun(alg.Name(), s.now())
	run.DictionarySize = len(candidates)
	run.TargetCount = index.UserCount()
	s.track(run, engine)

	var reporter *progress.Reporter
	if s.opts.ShowProgress {
		reporter = progress.NewReporter(engine, int64(len(candidates)), s.opts.Out, s.opts.Progress)
		if err = reporter.Start(); err != nil {
			s.l.Warn().Err(err).Msg("progress reporter did not start")
		}
	}

	err = engine.RunAndWait(ctx)
	run.FinishedAt = s.now()
	if err != nil {
		if reporter != nil {
			reporter.Abort()
		}
		s.setState(StateInterrupted)
		return nil, err
	}
	if reporter != nil {
		reporter.Stop()
	}

	run.HashesComputed = engine.HashesComputed()
	run.PasswordsFound = engine.PasswordsFound()
	run.DigestFailures = engine.DigestFailures()
	run.Results = results.Collect(engine.CrackedResults(), alg)
	s.printTotals(run)
	s.setState(StateFinished)

	if s.opts.Sinks != nil {
		// a finished run is saved even if the caller is shutting down
		if err = s.opts.Sinks.Save(context.WithoutCancel(ctx), run); err != nil {
			return run, errors.Wrap(err, "failed to save results")
		}
	}
	s.l.Info().
		Str("run-id", run.ID).
		Int64("passwords-found", run.PasswordsFound).
		Int64("hashes-computed", run.HashesComputed).
		Int64("digest-failures", run.DigestFailures).
		Dur("elapsed", run.Elapsed()).
		Msg("attack finished")
	return run, nil
}

func (s *Service) printTotals(run *results.Run) {
	_, err := fmt.Fprintf(s.opts.Out,
		"Total passwords found: %d\nTotal hashes computed: %d\nTotal time spent (milliseconds): %d\n",
		run.PasswordsFound, run.HashesComputed, run.Elapsed().Milliseconds())
	if err != nil {
		s.l.Warn().Err(err).Msg("failed to print totals")
	}
}

func (s *Service) begin() bool {
	s.m.Lock()
	defer s.m.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.engine = nil
	s.status = Status{State: StateLoading, Algorithm: s.opts.Algorithm.Name()}
	return true
}

func (s *Service) end() {
	s.m.Lock()
	defer s.m.Unlock()
	s.running = false
}

func (s *Service) fail(err error) error {
	s.setState(StateFailed)
	return err
}

func (s *Service) track(run *results.Run, engine *hashcrack.Engine) {
	s.m.Lock()
	defer s.m.Unlock()
	s.engine = engine
	s.status.RunID = run.ID
	s.status.State = StateRunning
	s.status.StartedAt = run.StartedAt
}

func (s *Service) setState(state State) {
	s.m.Lock()
	defer s.m.Unlock()
	s.status.State = state
}
