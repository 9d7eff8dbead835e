package attack

import (
	"time"

	"github.com/ykhdr/dict-attack/internal/progress"
)

type State string

const (
	StateIdle        State = "idle"
	StateLoading     State = "loading"
	StateRunning     State = "running"
	StateFinished    State = "finished"
	StateInterrupted State = "interrupted"
	StateFailed      State = "failed"
)

// Status is a point-in-time view of the current or last attack.
type Status struct {
	RunID     string    `json:"run_id,omitempty"`
	Algorithm string    `json:"algorithm"`
	State     State     `json:"state"`
	StartedAt time.Time `json:"started_at,omitzero"`
	progress.Snapshot
	DigestFailures int64 `json:"digest_failures"`
}

// Status samples the live counters. Values read while the attack runs are
// only eventually consistent.
func (s *Service) Status() Status {
	s.m.RLock()
	st, engine := s.status, s.engine
	s.m.RUnlock()
	if engine == nil {
		return st
	}
	st.Snapshot = progress.Take(engine, engine.Total())
	if st.State == StateFinished {
		st.Snapshot = st.Snapshot.Completed()
	}
	st.DigestFailures = engine.DigestFailures()
	return st
}
