// Package progress renders live attack progress on a terminal line.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultInterval      = 50 * time.Millisecond
	DefaultSettleTimeout = 250 * time.Millisecond

	timestampLayout = "2006-01-02 15:04:05"
)

var ErrReporterStopped = errors.New("reporter already stopped")

type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Config struct {
	Interval      time.Duration
	SettleTimeout time.Duration
	// Now overrides the clock used for line timestamps.
	Now func() time.Time
}

// Reporter periodically prints one progress line, overwriting it in place.
// It only reads the counters. A Reporter goes idle -> running -> stopped
// and cannot be restarted.
type Reporter struct {
	l        zerolog.Logger
	counters Counters
	total    int64
	out      io.Writer
	interval time.Duration
	settle   time.Duration
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failed   bool
	stopC    chan struct{}
	stoppedC chan struct{}
}

func NewReporter(counters Counters, total int64, out io.Writer, cfg Config) *Reporter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = DefaultSettleTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Reporter{
		counters: counters,
		total:    total,
		out:      out,
		interval: cfg.Interval,
		settle:   cfg.SettleTimeout,
		now:      cfg.Now,
		stopC:    make(chan struct{}),
		stoppedC: make(chan struct{}),
		l: log.With().
			Str("domain", "progress").
			Logger(),
	}
}

func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start prints the first line right away, so even runs shorter than one
// interval show up, then keeps refreshing it. Starting a running reporter
// is a no-op.
func (r *Reporter) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case StateRunning:
		return nil
	case StateStopped:
		return ErrReporterStopped
	}
	r.state = StateRunning
	r.print(Take(r.counters, r.total), false)
	go r.loop()
	return nil
}

// Stop halts the ticker and prints the final line at 100% followed by a
// newline. Stopping a reporter that is not running is a no-op.
func (r *Reporter) Stop() {
	if !r.halt() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.print(Take(r.counters, r.total).Completed(), true)
}

// Abort halts the ticker without claiming completion; the current line is
// only terminated.
func (r *Reporter) Abort() {
	if !r.halt() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write("\n")
}

func (r *Reporter) halt() bool {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return false
	}
	r.state = StateStopped
	close(r.stopC)
	r.mu.Unlock()

	timer := time.NewTimer(r.settle)
	defer timer.Stop()
	select {
	case <-r.stoppedC:
	case <-timer.C:
		r.l.Debug().Dur("timeout", r.settle).Msg("progress ticker did not settle in time")
	}
	return true
}

func (r *Reporter) loop() {
	defer close(r.stoppedC)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopC:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reporter) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning {
		return
	}
	r.print(Take(r.counters, r.total), false)
}

// print must be called with mu held.
func (r *Reporter) print(s Snapshot, last bool) {
	line := FormatLine(r.now(), s)
	if last {
		line += "\n"
	}
	r.write(line)
}

func (r *Reporter) write(s string) {
	if r.failed {
		return
	}
	if _, err := io.WriteString(r.out, s); err != nil {
		r.failed = true
		r.l.Warn().Err(err).Msg("progress output failed, disabling progress")
	}
}

// FormatLine renders one carriage-return-prefixed progress line.
func FormatLine(ts time.Time, s Snapshot) string {
	return fmt.Sprintf("\r[%s] %.2f%% complete | Passwords Found: %d | Tasks Remaining: %d",
		ts.Format(timestampLayout), s.Percent, s.PasswordsFound, s.Remaining)
}
