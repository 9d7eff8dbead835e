// Package dictionary loads candidate wordlists.
package dictionary

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	maxLineLength = 1 << 20
	ctxCheckEvery = 1 << 16
)

type options struct {
	dedup bool
}

type Option func(*options)

// WithDedup drops repeated candidates, keeping the first occurrence.
func WithDedup() Option {
	return func(o *options) { o.dedup = true }
}

// LoadFile loads a wordlist from path. Files ending in .gz are decompressed.
func LoadFile(ctx context.Context, path string, opts ...Option) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dictionary file")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip dictionary")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	words, err := Load(ctx, r, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "load dictionary from %s", path)
	}
	return words, nil
}

// Load reads one candidate per line. Lines are trimmed, carriage returns are
// removed and empty lines are dropped; order is preserved.
func Load(ctx context.Context, r io.Reader, opts ...Option) ([]string, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var seen map[string]struct{}
	if o.dedup {
		seen = make(map[string]struct{})
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	var words []string
	lines, dropped := 0, 0
	for sc.Scan() {
		lines++
		if lines%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		w := Normalize(sc.Text())
		if w == "" {
			continue
		}
		if seen != nil {
			if _, dup := seen[w]; dup {
				dropped++
				continue
			}
			seen[w] = struct{}{}
		}
		words = append(words, w)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read dictionary")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Debug().
		Str("domain", "dictionary").
		Int("lines", lines).
		Int("candidates", len(words)).
		Int("duplicates", dropped).
		Msg("dictionary loaded")
	return words, nil
}

// Normalize trims a raw dictionary line and strips carriage returns.
func Normalize(line string) string {
	return strings.ReplaceAll(strings.TrimSpace(line), "\r", "")
}
