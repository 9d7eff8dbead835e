package target

import (
	"bufio"
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	chunkLines    = 4096
	maxLineLength = 1 << 20
)

var (
	ErrMissingSeparator = errors.New("missing comma separator")
	ErrEmptyField       = errors.New("empty username or hash")
)

// ParseLine splits a "username,hash" line on its first comma. Both fields are
// trimmed and the hash is lower-cased.
func ParseLine(line string) (Entry, error) {
	username, hash, ok := strings.Cut(strings.TrimSpace(line), ",")
	if !ok {
		return Entry{}, ErrMissingSeparator
	}
	username = strings.TrimSpace(username)
	hash = strings.ToLower(strings.TrimSpace(hash))
	if username == "" || hash == "" {
		return Entry{}, ErrEmptyField
	}
	return Entry{Username: username, Hash: hash}, nil
}

func LoadFile(ctx context.Context, path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open targets file")
	}
	defer func() { _ = f.Close() }()
	idx, err := Load(ctx, f)
	if err != nil {
		return nil, errors.Wrapf(err, "load targets from %s", path)
	}
	return idx, nil
}

// Load reads target lines and builds an Index. Chunks of lines are parsed
// concurrently and merged back in input order. Malformed lines are logged
// and skipped.
func Load(ctx context.Context, r io.Reader) (*Index, error) {
	l := log.With().Str("domain", "target").Logger()
	chunks, err := readChunks(r)
	if err != nil {
		return nil, err
	}

	parsed := make([][]Entry, len(chunks))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			parsed[i] = parseChunk(l, chunk, i*chunkLines)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "parse targets")
	}

	total := 0
	for _, p := range parsed {
		total += len(p)
	}
	entries := make([]Entry, 0, total)
	for _, p := range parsed {
		entries = append(entries, p...)
	}
	idx := Build(entries)
	l.Debug().
		Int("users", idx.UserCount()).
		Int("hashes", idx.Len()).
		Msg("targets loaded")
	return idx, nil
}

func readChunks(r io.Reader) ([][]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	var chunks [][]string
	chunk := make([]string, 0, chunkLines)
	for sc.Scan() {
		chunk = append(chunk, sc.Text())
		if len(chunk) == chunkLines {
			chunks = append(chunks, chunk)
			chunk = make([]string, 0, chunkLines)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read targets")
	}
	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func parseChunk(l zerolog.Logger, lines []string, offset int) []Entry {
	entries := make([]Entry, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			l.Warn().
				Err(err).
				Int("line", offset+i+1).
				Str("content", line).
				Msg("malformed target line, skipping")
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
