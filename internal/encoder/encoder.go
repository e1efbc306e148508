package encoder

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"math"
)

// Dim is the embedding width produced by HashEncoder, one element per
// SHA-256 digest byte.
const Dim = sha256.Size

var (
	// ErrDigestSize is returned when the configured hash does not produce
	// exactly Dim bytes.
	ErrDigestSize = errors.New("hash digest size does not match embedding dimension")

	// ErrDimensionMismatch is returned when two embeddings of different
	// length are combined.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedding is a unit-norm vector representation of a text.
type Embedding []float32

// Encoder maps text to an Embedding.
type Encoder interface {
	Encode(ctx context.Context, text string) (Embedding, error)

	// Dimension reports the embedding width, or 0 when it is only known
	// after the first call.
	Dimension() int

	// Name identifies the encoder in logs and stored runs.
	Name() string
}

// HashEncoder is a deterministic stand-in for a semantic embedding model.
// It hashes the UTF-8 bytes of the text and normalizes the digest bytes to
// unit length. Similar sentences do not produce similar vectors; only
// identical strings are guaranteed to match.
type HashEncoder struct {
	newHash func() hash.Hash
}

// NewHashEncoder returns a HashEncoder backed by SHA-256.
func NewHashEncoder() *HashEncoder {
	return &HashEncoder{newHash: sha256.New}
}

// NewHashEncoderWith returns a HashEncoder using the given hash
// constructor. Encode fails with ErrDigestSize unless the hash produces
// Dim bytes.
func NewHashEncoderWith(newHash func() hash.Hash) *HashEncoder {
	return &HashEncoder{newHash: newHash}
}

// Encode returns the normalized digest embedding of text.
func (e *HashEncoder) Encode(_ context.Context, text string) (Embedding, error) {
	h := e.newHash()
	h.Write([]byte(text))
	digest := h.Sum(nil)
	if len(digest) != Dim {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrDigestSize, len(digest), Dim)
	}

	vec := make(Embedding, Dim)
	for i, b := range digest {
		vec[i] = float32(b)
	}
	return Normalize(vec), nil
}

func (e *HashEncoder) Dimension() int { return Dim }

func (e *HashEncoder) Name() string { return "sha256" }

// Normalize scales v to unit Euclidean norm in place and returns it.
// A zero vector is returned unchanged.
func Normalize(v Embedding) Embedding {
	n := Norm(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / n)
	}
	return v
}

// Norm returns the Euclidean norm of v.
func Norm(v Embedding) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of a and b.
func Dot(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}
