package similarity

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/resume-analyzer/internal/similarity/hashing"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	safe    bool

	inflight   atomic.Int32
	overlapped atomic.Bool
	calls      atomic.Int32
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([][]float32, error) {
	f.calls.Add(1)
	if f.inflight.Add(1) > 1 {
		f.overlapped.Store(true)
	}
	defer f.inflight.Add(-1)

	time.Sleep(time.Millisecond)

	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return [][]float32{v}, nil
	}
	return [][]float32{{1, 0}}, nil
}

func (f *fakeEmbedder) ConcurrencySafe() bool { return f.safe }

func staticLoader(e Embedder, calls *atomic.Int32) Loader {
	return func(context.Context) (Embedder, error) {
		if calls != nil {
			calls.Add(1)
		}
		return e, nil
	}
}

func TestSimilarityBlankInputSkipsBackend(t *testing.T) {
	t.Parallel()

	var loads atomic.Int32
	svc := New(staticLoader(&fakeEmbedder{}, &loads), nil)

	cases := [][2]string{{"", "anything"}, {"anything", ""}, {"   \n\t", "text"}, {"", ""}}
	for _, c := range cases {
		got, err := svc.Similarity(context.Background(), c[0], c[1])
		if err != nil {
			t.Fatalf("unexpected error for %q/%q: %v", c[0], c[1], err)
		}
		if got != 0 {
			t.Fatalf("expected 0 for %q/%q, got %v", c[0], c[1], got)
		}
	}

	if loads.Load() != 0 {
		t.Fatalf("expected loader not to be called, got %d calls", loads.Load())
	}
}

func TestSimilaritySymmetricAndReflexive(t *testing.T) {
	t.Parallel()

	svc := New(staticLoader(hashing.New(128), nil), nil)
	ctx := context.Background()

	texts := []string{
		"Go developer with Kubernetes experience",
		"Python, SQL and data pipelines",
		"BSc in Computer Science",
	}

	for _, a := range texts {
		self, err := svc.Similarity(ctx, a, a)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(self-1) > 1e-6 {
			t.Fatalf("expected self similarity close to 1 for %q, got %v", a, self)
		}

		for _, b := range texts {
			ab, err := svc.Similarity(ctx, a, b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ba, err := svc.Similarity(ctx, b, a)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ab != ba {
				t.Fatalf("expected symmetry for %q/%q: %v != %v", a, b, ab, ba)
			}
			if ab < 0 || ab > 1 {
				t.Fatalf("similarity out of range: %v", ab)
			}
		}
	}
}

func TestSimilarityClampsNegativeCosine(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"up":   {1, 0},
		"down": {-1, 0},
	}}
	svc := New(staticLoader(embedder, nil), nil)

	got, err := svc.Similarity(context.Background(), "up", "down")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected negative cosine clamped to 0, got %v", got)
	}
}

func TestSimilarityLoadsOnce(t *testing.T) {
	var loads atomic.Int32
	svc := New(staticLoader(&fakeEmbedder{safe: true}, &loads), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Similarity(context.Background(), "a", "b"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Fatalf("expected a single load, got %d", loads.Load())
	}
}

func TestSimilaritySerializesUnsafeBackend(t *testing.T) {
	embedder := &fakeEmbedder{safe: false}
	svc := New(staticLoader(embedder, nil), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Similarity(context.Background(), "left", "right"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if embedder.overlapped.Load() {
		t.Fatalf("expected calls into an unsafe backend to be serialized")
	}
	if embedder.calls.Load() != 16 {
		t.Fatalf("expected 16 embed calls, got %d", embedder.calls.Load())
	}
}

func TestSimilarityLoaderFailure(t *testing.T) {
	var attempts atomic.Int32
	loadErr := errors.New("weights not found")
	svc := New(func(context.Context) (Embedder, error) {
		if attempts.Add(1) == 1 {
			return nil, loadErr
		}
		return &fakeEmbedder{}, nil
	}, nil)

	_, err := svc.Similarity(context.Background(), "a", "b")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}

	if _, err := svc.Similarity(context.Background(), "a", "b"); err != nil {
		t.Fatalf("expected second call to load successfully, got %v", err)
	}
	if _, err := svc.Similarity(context.Background(), "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts.Load() != 2 {
		t.Fatalf("expected 2 load attempts, got %d", attempts.Load())
	}
}

func TestSimilarityBackendErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		loader Loader
	}{
		{
			name:   "no loader",
			loader: nil,
		},
		{
			name:   "embed failure",
			loader: staticLoader(&fakeEmbedder{err: errors.New("backend down")}, nil),
		},
		{
			name: "empty embedding",
			loader: staticLoader(&fakeEmbedder{vectors: map[string][]float32{
				"a": {},
				"b": {},
			}}, nil),
		},
		{
			name: "dimension mismatch",
			loader: staticLoader(&fakeEmbedder{vectors: map[string][]float32{
				"a": {1, 2},
				"b": {1, 2, 3},
			}}, nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.loader, nil)
			_, err := svc.Similarity(context.Background(), "a", "b")
			if !errors.Is(err, ErrModelUnavailable) {
				t.Fatalf("expected ErrModelUnavailable, got %v", err)
			}
		})
	}
}

func TestPreload(t *testing.T) {
	var loads atomic.Int32
	svc := New(staticLoader(&fakeEmbedder{}, &loads), nil)

	if err := svc.Preload(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Similarity(context.Background(), "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loads.Load() != 1 {
		t.Fatalf("expected preload to be reused, got %d loads", loads.Load())
	}
}

func TestSimilarityLogsDebugEntry(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	svc := New(staticLoader(&fakeEmbedder{}, nil), zap.New(core))

	if _, err := svc.Similarity(context.Background(), "first text", "second text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("similarity computed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 similarity entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["text_a_preview"] != "first text" {
		t.Fatalf("unexpected preview field: %v", ctx["text_a_preview"])
	}
	if ctx["similarity"] != 1.0 {
		t.Fatalf("expected similarity 1, got %v", ctx["similarity"])
	}
}

func TestSetMaxLogLength(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	svc := New(staticLoader(&fakeEmbedder{}, nil), zap.New(core))
	svc.SetMaxLogLength(0)
	svc.SetMaxLogLength(5)

	if _, err := svc.Similarity(context.Background(), "first text", "second text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("similarity computed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 similarity entry, got %d", len(entries))
	}
	preview, _ := entries[0].ContextMap()["text_a_preview"].(string)
	if !strings.HasPrefix(preview, "first") || preview == "first text" {
		t.Fatalf("expected truncated preview, got %q", preview)
	}
}

func TestSimilarityReportsCallerDeadline(t *testing.T) {
	t.Parallel()

	svc := New(staticLoader(hashing.New(32), nil), nil)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Similarity(ctx, "go developer", "go engineer")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("deadline must not be reported as an unavailable model: %v", err)
	}
}
