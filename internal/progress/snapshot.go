package progress

// Counters is the read side of a running attack.
type Counters interface {
	HashesComputed() int64
	PasswordsFound() int64
}

type Snapshot struct {
	Total          int64   `json:"total"`
	HashesComputed int64   `json:"hashes_computed"`
	PasswordsFound int64   `json:"passwords_found"`
	Remaining      int64   `json:"remaining"`
	Percent        float64 `json:"percent"`
}

// Take samples c against total. Percent is clamped to [0, 100] and is 0 for
// an empty run.
func Take(c Counters, total int64) Snapshot {
	h := c.HashesComputed()
	s := Snapshot{
		Total:          total,
		HashesComputed: h,
		PasswordsFound: c.PasswordsFound(),
		Remaining:      max(0, total-h),
	}
	if total > 0 {
		s.Percent = min(100, max(0, float64(h)*100/float64(total)))
	}
	return s
}

// Completed reports the snapshot as finished regardless of the counters.
func (s Snapshot) Completed() Snapshot {
	s.Percent = 100
	s.Remaining = 0
	return s
}
