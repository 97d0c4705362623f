// Package hashing is an offline embedding backend built on feature hashing of
// words and character trigrams.
package hashing

import (
	"context"
	"hash"
	"hash/fnv"
	"strings"
	"unicode"
)

const (
	DefaultDimensions = 256
	wordWeight        = 1.0
	trigramWeight     = 0.5
)

// Embedder produces one non-negative vector per whitespace token.
type Embedder struct {
	dimensions int
	hasher     hash.Hash32
}

// New returns an Embedder with the given vector width, or the default width
// when dimensions is not positive.
func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dimensions: dimensions, hasher: fnv.New32a()}
}

func (e *Embedder) Dimensions() int { return e.dimensions }

// ConcurrencySafe is false since the hasher is reused across calls.
func (e *Embedder) ConcurrencySafe() bool { return false }

// Embed returns the token-level vectors for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := strings.Fields(text)
	rows := make([][]float32, 0, len(tokens))
	for _, token := range tokens {
		rows = append(rows, e.embedToken(normalize(token)))
	}
	return rows, nil
}

func (e *Embedder) embedToken(token string) []float32 {
	row := make([]float32, e.dimensions)
	row[e.bucket(token)] += wordWeight

	runes := []rune("^" + token + "$")
	for i := 0; i+3 <= len(runes); i++ {
		row[e.bucket(string(runes[i:i+3]))] += trigramWeight
	}
	return row
}

func (e *Embedder) bucket(feature string) int {
	e.hasher.Reset()
	_, _ = e.hasher.Write([]byte(feature))
	return int(e.hasher.Sum32() % uint32(e.dimensions))
}

func normalize(token string) string {
	lower := strings.ToLower(token)
	trimmed := strings.TrimFunc(lower, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	if trimmed == "" {
		return lower
	}
	return trimmed
}
