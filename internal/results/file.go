package results

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileSink writes `username,hash,password` lines to a file.
// The file is written to a temporary sibling and renamed into place.
type FileSink struct {
	path string
	l    zerolog.Logger
}

func NewFileSink(path string) *FileSink {
	return &FileSink{
		path: path,
		l:    log.With().Str("domain", "results").Str("sink", "file").Str("path", path).Logger(),
	}
}

func (s *FileSink) Name() string {
	return "file"
}

func (s *FileSink) Save(_ context.Context, run *Run) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create results file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err = Write(tmp, run.Results); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close results file")
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "failed to move results file into place")
	}
	s.l.Info().Int("results", len(run.Results)).Msg("results written")
	return nil
}

// Write emits one line per result.
func Write(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := bw.WriteString(r.Username + "," + r.Hash + "," + r.Password + "\n"); err != nil {
			return errors.Wrap(err, "failed to write result")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush results")
	}
	return nil
}
