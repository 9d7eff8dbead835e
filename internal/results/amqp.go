package results

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/common/amqp/publisher"
)

// Summary is the broker message for a finished run. Recovered passwords are
// never published, only the usernames they belong to.
type Summary struct {
	RunID          string    `json:"run_id"`
	Algorithm      string    `json:"algorithm"`
	DictionarySize int       `json:"dictionary_size"`
	TargetCount    int       `json:"target_count"`
	HashesComputed int64     `json:"hashes_computed"`
	PasswordsFound int64     `json:"passwords_found"`
	DigestFailures int64     `json:"digest_failures"`
	ElapsedMs      int64     `json:"elapsed_ms"`
	FinishedAt     time.Time `json:"finished_at"`
	Cracked        []string  `json:"cracked"`
}

func (s Summary) MessageID() string {
	return s.RunID
}

func Summarize(run *Run) *Summary {
	return &Summary{
		RunID:          run.ID,
		Algorithm:      run.Algorithm,
		DictionarySize: run.DictionarySize,
		TargetCount:    run.TargetCount,
		HashesComputed: run.HashesComputed,
		PasswordsFound: run.PasswordsFound,
		DigestFailures: run.DigestFailures,
		ElapsedMs:      run.Elapsed().Milliseconds(),
		FinishedAt:     run.FinishedAt,
		Cracked:        run.Usernames(),
	}
}

type AmqpSink struct {
	pub publisher.Publisher[Summary]
	l   zerolog.Logger
}

func NewAmqpSink(pub publisher.Publisher[Summary]) *AmqpSink {
	return &AmqpSink{
		pub: pub,
		l:   log.With().Str("domain", "results").Str("sink", "amqp").Logger(),
	}
}

func (s *AmqpSink) Name() string {
	return "amqp"
}

func (s *AmqpSink) Save(ctx context.Context, run *Run) error {
	if err := s.pub.Publish(ctx, Summarize(run)); err != nil {
		return errors.Wrapf(err, "failed to publish run %s", run.ID)
	}
	s.l.Info().Str("run-id", run.ID).Msg("run summary published")
	return nil
}
