// Package digest provides the one-way functions candidates are hashed with.
// Every algorithm renders its output as lowercase hexadecimal text.
package digest

import (
	"encoding/hex"
	"hash"
	"io"

	"github.com/pkg/errors"
)

// Digester hashes one candidate at a time. A Digester owns a private
// working buffer and must not be shared between goroutines.
type Digester interface {
	Digest(candidate string) (string, error)
}

// Factory hands out independent digesters, one per worker.
type Factory interface {
	Name() string
	NewDigester() Digester
}

// Algorithm is a named hash function. It is immutable and safe for
// concurrent use; Sum allocates a fresh hash state per call.
type Algorithm struct {
	name    string
	impl    string
	size    int
	newHash func() hash.Hash
	encode  func(dst []byte, s string) []byte
}

var _ Factory = (*Algorithm)(nil)

func (a *Algorithm) Name() string {
	return a.name
}

// Implementation names the package that computes the digest.
func (a *Algorithm) Implementation() string {
	return a.impl
}

// HexLen is the length of the hexadecimal digest text.
func (a *Algorithm) HexLen() int {
	return hex.EncodedLen(a.size)
}

// Sum returns the hex digest of candidate.
func (a *Algorithm) Sum(candidate string) string {
	d := a.newDigester()
	out, err := d.Digest(candidate)
	if err != nil {
		// hash.Hash never reports write errors
		panic(err)
	}
	return out
}

func (a *Algorithm) NewDigester() Digester {
	return a.newDigester()
}

func (a *Algorithm) newDigester() *hasher {
	return &hasher{
		h:      a.newHash(),
		encode: a.encode,
		sum:    make([]byte, 0, a.size),
		out:    make([]byte, hex.EncodedLen(a.size)),
	}
}

type hasher struct {
	h      hash.Hash
	encode func(dst []byte, s string) []byte
	in     []byte
	sum    []byte
	out    []byte
}

func (d *hasher) Digest(candidate string) (string, error) {
	d.h.Reset()
	var err error
	if d.encode != nil {
		d.in = d.encode(d.in[:0], candidate)
		_, err = d.h.Write(d.in)
	} else {
		_, err = io.WriteString(d.h, candidate)
	}
	if err != nil {
		return "", errors.Wrap(err, "write candidate")
	}
	d.sum = d.h.Sum(d.sum[:0])
	n := hex.Encode(d.out, d.sum)
	return string(d.out[:n]), nil
}
