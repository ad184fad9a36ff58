package digest

import (
	_ "crypto/sha256" // registers SHA-256 for go-digest
	"fmt"
	"io"

	godigest "github.com/opencontainers/go-digest"

	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/internal/pool"
)

// Algorithm is the hash used for all manifest digests.
const Algorithm = godigest.SHA256

// EncodedLen is the length of a hex-encoded digest.
const EncodedLen = 64

var buffers = pool.NewBufferPool(pool.CopyBufferSize)

// FromBytes returns the hex digest of b.
func FromBytes(b []byte) string {
	return Algorithm.FromBytes(b).Encoded()
}

// FromReader returns the hex digest of everything read from r.
func FromReader(r io.Reader) (string, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	digester := Algorithm.Digester()
	if _, err := io.CopyBuffer(digester.Hash(), r, *buf); err != nil {
		return "", fmt.Errorf("digest: read: %w", err)
	}
	return digester.Digest().Encoded(), nil
}

// Validate reports whether s is a well-formed hex digest.
func Validate(s string) error {
	if err := godigest.NewDigestFromEncoded(Algorithm, s).Validate(); err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidInput, "malformed digest",
			map[string]interface{}{"digest": s})
	}
	return nil
}

// Equal reports whether a locally computed digest matches a declared one.
func Equal(local, declared string) bool {
	return local == declared
}

// MismatchError reports content whose digest differs from the declared one.
type MismatchError struct {
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("digest mismatch: expected %s, found %s", e.Expected, e.Actual)
}

// Verify checks data against the expected digest and returns a
// *MismatchError when they differ.
func Verify(expected string, data []byte) error {
	actual := FromBytes(data)
	if !Equal(actual, expected) {
		return &MismatchError{Expected: expected, Actual: actual}
	}
	return nil
}
