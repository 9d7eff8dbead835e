package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha512"
	"hash"
	"maps"
	"slices"
	"strings"
	"unicode/utf16"

	sha256simd "github.com/minio/sha256-simd"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/md4"
	"golang.org/x/crypto/ripemd160"
	"golang.org/x/crypto/sha3"
)

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

const (
	MD5        = "md5"
	SHA1       = "sha1"
	SHA256     = "sha256"
	SHA512     = "sha512"
	SHA3_256   = "sha3-256"
	Keccak256  = "keccak256"
	Blake2b256 = "blake2b-256"
	Blake2s256 = "blake2s-256"
	MD4        = "md4"
	NTLM       = "ntlm"
	RIPEMD160  = "ripemd160"

	DefaultAlgorithm = SHA256
)

var algorithms = map[string]*Algorithm{}

func init() {
	register(MD5, "crypto/md5", md5.New, nil)
	register(SHA1, "crypto/sha1", sha1.New, nil)
	register(SHA256, "github.com/minio/sha256-simd", sha256simd.New, nil)
	register(SHA512, "crypto/sha512", sha512.New, nil)
	register(SHA3_256, "golang.org/x/crypto/sha3", sha3.New256, nil)
	register(Keccak256, "golang.org/x/crypto/sha3", sha3.NewLegacyKeccak256, nil)
	register(Blake2b256, "golang.org/x/crypto/blake2b", unkeyed(blake2b.New256), nil)
	register(Blake2s256, "golang.org/x/crypto/blake2s", unkeyed(blake2s.New256), nil)
	register(MD4, "golang.org/x/crypto/md4", md4.New, nil)
	register(NTLM, "golang.org/x/crypto/md4", md4.New, appendUTF16LE)
	register(RIPEMD160, "golang.org/x/crypto/ripemd160", ripemd160.New, nil)
}

func register(name, impl string, newHash func() hash.Hash, encode func([]byte, string) []byte) {
	algorithms[name] = &Algorithm{
		name:    name,
		impl:    impl,
		size:    newHash().Size(),
		newHash: newHash,
		encode:  encode,
	}
}

func unkeyed(newKeyed func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := newKeyed(nil)
		if err != nil {
			// only oversized keys are rejected
			panic(err)
		}
		return h
	}
}

// appendUTF16LE encodes s the way NT hashes expect their input.
func appendUTF16LE(dst []byte, s string) []byte {
	for _, r := range s {
		if r >= 0x10000 {
			r1, r2 := utf16.EncodeRune(r)
			dst = append(dst, byte(r1), byte(r1>>8), byte(r2), byte(r2>>8))
			continue
		}
		dst = append(dst, byte(r), byte(r>>8))
	}
	return dst
}

// ParseAlgorithm resolves an algorithm by name, ignoring case.
func ParseAlgorithm(name string) (*Algorithm, error) {
	if alg, ok := algorithms[strings.ToLower(strings.TrimSpace(name))]; ok {
		return alg, nil
	}
	return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", name)
}

func MustParseAlgorithm(name string) *Algorithm {
	alg, err := ParseAlgorithm(name)
	if err != nil {
		panic(err)
	}
	return alg
}

func Default() *Algorithm {
	return algorithms[DefaultAlgorithm]
}

// Names lists the registered algorithms in lexical order.
func Names() []string {
	return slices.Sorted(maps.Keys(algorithms))
}
