// Package similarity compares texts through an embedding backend.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/spigell/resume-analyzer/internal/utils"
	"go.uber.org/zap"
)

// ErrModelUnavailable is returned when the embedding backend cannot be loaded or queried.
var ErrModelUnavailable = errors.New("similarity model unavailable")

// Provider scores the semantic closeness of two texts in [0, 1].
type Provider interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// Embedder converts text into vectors. Token-level backends return one row per
// token; sentence-level backends return a single row.
type Embedder interface {
	Embed(ctx context.Context, text string) ([][]float32, error)
}

// Loader builds the embedder. It is called until it succeeds once.
type Loader func(ctx context.Context) (Embedder, error)

type concurrencySafe interface {
	ConcurrencySafe() bool
}

// Service is the Provider backed by a lazily loaded Embedder.
type Service struct {
	loader    Loader
	logger    *zap.Logger
	maxLogLen int

	loadMu    sync.Mutex
	embedder  Embedder
	serialize bool

	// callMu guards embedders that are not safe for parallel inference.
	callMu sync.Mutex
}

const defaultMaxLogLength = 120

// New returns a Service that loads its embedder on first use.
func New(loader Loader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		loader:    loader,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// SetMaxLogLength limits how much of each compared text debug logs carry.
// Non-positive values keep the default.
func (s *Service) SetMaxLogLength(n int) {
	if n > 0 {
		s.maxLogLen = n
	}
}

// Preload loads the embedder ahead of the first comparison.
func (s *Service) Preload(ctx context.Context) error {
	_, err := s.load(ctx)
	return err
}

// Similarity returns the cosine similarity of the mean-pooled embeddings of a
// and b. Blank input yields 0 without touching the backend.
func (s *Service) Similarity(ctx context.Context, a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, nil
	}

	embedder, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	va, err := s.embed(ctx, embedder, a)
	if err != nil {
		return 0, err
	}

	vb, err := s.embed(ctx, embedder, b)
	if err != nil {
		return 0, err
	}

	if len(va) != len(vb) {
		return 0, fmt.Errorf("%w: embedding dimensions differ (%d vs %d)", ErrModelUnavailable, len(va), len(vb))
	}

	score := clamp(Cosine(va, vb))

	s.logger.Debug("similarity computed",
		zap.String("text_a_preview", utils.TruncateForLog(a, s.maxLogLen)),
		zap.Int("text_a_length", utf8.RuneCountInString(a)),
		zap.String("text_b_preview", utils.TruncateForLog(b, s.maxLogLen)),
		zap.Int("text_b_length", utf8.RuneCountInString(b)),
		zap.Float64("similarity", score),
	)

	return score, nil
}

func (s *Service) load(ctx context.Context) (Embedder, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.embedder != nil {
		return s.embedder, nil
	}

	if s.loader == nil {
		return nil, fmt.Errorf("%w: no embedding backend configured", ErrModelUnavailable)
	}

	embedder, err := s.loader(ctx)
	if err != nil {
		return nil, backendError(ctx, "load embedding backend", err)
	}
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedding backend loader returned nothing", ErrModelUnavailable)
	}

	safe, ok := embedder.(concurrencySafe)
	s.serialize = !ok || !safe.ConcurrencySafe()
	s.embedder = embedder

	s.logger.Info("embedding backend loaded", zap.Bool("serialized", s.serialize))

	return embedder, nil
}

func (s *Service) embed(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	if s.serialize {
		s.callMu.Lock()
		defer s.callMu.Unlock()
	}

	rows, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, backendError(ctx, "embed text", err)
	}

	vector := MeanPool(rows)
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: backend returned an empty embedding", ErrModelUnavailable)
	}

	return vector, nil
}

// backendError reports a caller deadline or cancellation as the context error
// itself. Anything else means the backend could not serve the call.
func backendError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrModelUnavailable, err)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
