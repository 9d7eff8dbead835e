// Package target holds the set of hashes under attack and the usernames
// behind each of them.
package target

import (
	"github.com/rs/zerolog/log"
)

type Entry struct {
	Username string
	Hash     string
}

// Index maps target hashes to usernames. It is immutable once built and may
// be read from any number of goroutines.
type Index struct {
	hashSet         map[string]struct{}
	hashToUsernames map[string][]string
	userToHash      map[string]string
}

// Build indexes entries in order. A username that shows up again is
// skipped, so the first line for a user decides its hash.
func Build(entries []Entry) *Index {
	l := log.With().Str("domain", "target").Logger()
	idx := &Index{
		hashSet:         make(map[string]struct{}, len(entries)),
		hashToUsernames: make(map[string][]string, len(entries)),
		userToHash:      make(map[string]string, len(entries)),
	}
	for _, e := range entries {
		if prev, dup := idx.userToHash[e.Username]; dup {
			l.Warn().
				Str("username", e.Username).
				Str("hash", e.Hash).
				Str("kept-hash", prev).
				Msg("duplicate username, skipping")
			continue
		}
		idx.userToHash[e.Username] = e.Hash
		idx.hashSet[e.Hash] = struct{}{}
		idx.hashToUsernames[e.Hash] = append(idx.hashToUsernames[e.Hash], e.Username)
	}
	return idx
}

func (x *Index) Contains(hash string) bool {
	_, ok := x.hashSet[hash]
	return ok
}

// Usernames returns the users sharing hash in the order they were read.
// The slice belongs to the index and must not be modified.
func (x *Index) Usernames(hash string) []string {
	return x.hashToUsernames[hash]
}

func (x *Index) HashOf(username string) (string, bool) {
	h, ok := x.userToHash[username]
	return h, ok
}

// Len is the number of distinct target hashes.
func (x *Index) Len() int {
	return len(x.hashSet)
}

func (x *Index) UserCount() int {
	return len(x.userToHash)
}

// CountHexLenMismatch reports how many target hashes cannot have been
// produced by a digest with the given hex length.
func (x *Index) CountHexLenMismatch(hexLen int) int {
	n := 0
	for h := range x.hashSet {
		if len(h) != hexLen {
			n++
		}
	}
	return n
}
