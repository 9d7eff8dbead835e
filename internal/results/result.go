package results

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/ykhdr/dict-attack/internal/digest"
)

// Result is one cracked account.
type Result struct {
	Username string `json:"username"`
	Hash     string `json:"hash"`
	Password string `json:"password"`
}

// Collect turns a username -> password map into results ordered by username.
// The hash is recomputed from the recovered password with alg.
func Collect(cracked map[string]string, alg *digest.Algorithm) []Result {
	out := make([]Result, 0, len(cracked))
	for user, pass := range cracked {
		out = append(out, Result{
			Username: user,
			Hash:     alg.Sum(pass),
			Password: pass,
		})
	}
	slices.SortFunc(out, func(a, b Result) int {
		return cmp.Compare(a.Username, b.Username)
	})
	return out
}

// Run records one finished attack.
type Run struct {
	ID             string    `json:"id" bson:"_id"`
	Algorithm      string    `json:"algorithm"`
	DictionarySize int       `json:"dictionary_size"`
	TargetCount    int       `json:"target_count"`
	HashesComputed int64     `json:"hashes_computed"`
	PasswordsFound int64     `json:"passwords_found"`
	DigestFailures int64     `json:"digest_failures"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Results        []Result  `json:"results"`
}

func NewRun(algorithm string, startedAt time.Time) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Algorithm: algorithm,
		StartedAt: startedAt,
	}
}

func (r *Run) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Run) Usernames() []string {
	names := make([]string, len(r.Results))
	for i, res := range r.Results {
		names[i] = res.Username
	}
	return names
}
