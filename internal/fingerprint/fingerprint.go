// Package fingerprint builds safety numbers: a displayable digit string and a
// scannable payload that two parties compare out of band to confirm they hold
// each other's current identity keys.
package fingerprint

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"

	"sendgate/internal/trustgate/models"
	id "sendgate/pkg/domain"
	dErrors "sendgate/pkg/domain-errors"
)

const (
	// scannableVersion prefixes the scannable payload.
	scannableVersion byte = 2

	defaultIterations = 5200

	// digestBytes is consumed as six 5-byte chunks, each rendered as five digits.
	digestBytes = 30
	chunkBytes  = 5
	groupDigits = 5
)

// Builder derives safety numbers between the local identity and a recipient.
type Builder struct {
	localID    string
	localKey   []byte
	iterations int
}

type Option func(*Builder)

// WithIterations overrides the hash iteration count.
func WithIterations(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.iterations = n
		}
	}
}

// New creates a Builder for the local identity.
func New(localID string, localKey []byte, opts ...Option) *Builder {
	b := &Builder{
		localID:    localID,
		localKey:   bytes.Clone(localKey),
		iterations: defaultIterations,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the safety number for the recipient's key. Both parties derive
// the same display text because the two halves are ordered before joining.
func (b *Builder) Build(ctx context.Context, recipientID id.RecipientID, key []byte) (*models.Fingerprint, error) {
	if len(key) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "identity key is required")
	}
	if len(b.localKey) == 0 {
		return nil, dErrors.New(dErrors.CodeInternal, "local identity key is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	local := b.digest(b.localID, b.localKey)
	remote := b.digest(recipientID.String(), key)

	localDigits, remoteDigits := displayDigits(local), displayDigits(remote)
	var joined string
	if localDigits <= remoteDigits {
		joined = localDigits + remoteDigits
	} else {
		joined = remoteDigits + localDigits
	}

	scannable := make([]byte, 0, 1+2*digestBytes)
	scannable = append(scannable, scannableVersion)
	scannable = append(scannable, local...)
	scannable = append(scannable, remote...)

	return &models.Fingerprint{
		RecipientID: recipientID,
		DisplayText: group(joined),
		Scannable:   scannable,
	}, nil
}

// MatchesScanned reports whether a payload scanned from the other party's
// device matches fp. The other side encodes the halves in the opposite order.
func MatchesScanned(fp *models.Fingerprint, scanned []byte) (bool, error) {
	if fp == nil || len(fp.Scannable) != 1+2*digestBytes {
		return false, dErrors.New(dErrors.CodeInvalidInput, "fingerprint is malformed")
	}
	if len(scanned) != 1+2*digestBytes {
		return false, dErrors.New(dErrors.CodeInvalidInput, "scanned payload has the wrong length")
	}
	if scanned[0] != scannableVersion {
		return false, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unsupported scannable version %d", scanned[0]))
	}
	ours := fp.Scannable[1:]
	theirs := scanned[1:]
	localMatches := subtle.ConstantTimeCompare(ours[:digestBytes], theirs[digestBytes:])
	remoteMatches := subtle.ConstantTimeCompare(ours[digestBytes:], theirs[:digestBytes])
	return localMatches&remoteMatches == 1, nil
}

func (b *Builder) digest(identifier string, key []byte) []byte {
	seed := make([]byte, 0, 2+len(key)+len(identifier))
	seed = append(seed, 0, 0)
	seed = append(seed, key...)
	seed = append(seed, identifier...)

	sum := blake2b.Sum512(seed)
	buf := make([]byte, 0, blake2b.Size+len(key))
	for i := 1; i < b.iterations; i++ {
		buf = append(buf[:0], sum[:]...)
		buf = append(buf, key...)
		sum = blake2b.Sum512(buf)
	}
	return append([]byte(nil), sum[:digestBytes]...)
}

func displayDigits(digest []byte) string {
	var sb strings.Builder
	for i := 0; i+chunkBytes <= len(digest); i += chunkBytes {
		var word [8]byte
		copy(word[8-chunkBytes:], digest[i:i+chunkBytes])
		fmt.Fprintf(&sb, "%05d", binary.BigEndian.Uint64(word[:])%100000)
	}
	return sb.String()
}

func group(digits string) string {
	groups := make([]string, 0, len(digits)/groupDigits)
	for i := 0; i < len(digits); i += groupDigits {
		end := min(i+groupDigits, len(digits))
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}
