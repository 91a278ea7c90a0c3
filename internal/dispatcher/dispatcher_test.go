package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dshills/gocodequality/internal/chunker"
	"github.com/dshills/gocodequality/internal/evaluator"
	"github.com/dshills/gocodequality/internal/fingerprint"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stubPayload = `{"s1_a": 9, "s2_b": 7}`

// stubEvaluator always succeeds with a fixed payload
type stubEvaluator struct {
	payload string
	err     error
	calls   atomic.Int32
	onCall  func()
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ types.Chunk) (types.EvaluationResult, error) {
	s.calls.Add(1)
	if s.onCall != nil {
		s.onCall()
	}
	if s.err != nil {
		return types.EvaluationResult{}, s.err
	}
	if s.payload == "" {
		return types.Failed(), nil
	}
	return types.EvaluationResult{Success: true, Payload: s.payload}, nil
}

// brokenStore fails every lookup
type brokenStore struct{ storage.CacheStore }

func (brokenStore) Lookup(context.Context, types.Namespace, string) (string, bool, error) {
	return "", false, fmt.Errorf("%w: disk on fire", types.ErrStoreFailure)
}

func smallDoc() types.Document {
	return types.Document{Path: "Small.cs", Content: "public class A {\n  int x;\n}"}
}

func multiChunkDoc(lines int) types.Document {
	var sb strings.Builder
	for i := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "var value%03d = compute(%03d);", i, i)
	}
	return types.Document{Path: "Big.cs", Content: sb.String()}
}

func smallSettings() chunker.Settings {
	return chunker.Settings{SoftLimit: 100, HardLimit: 200}
}

func TestEvaluateDocument_EmptyCacheThenCached(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	stub := &stubEvaluator{payload: stubPayload}
	doc := smallDoc()

	results, err := New(stub, store).EvaluateAll(ctx, doc, chunker.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Success)
	assert.Equal(t, stubPayload, results[0].Result.Payload)
	assert.False(t, results[0].CacheHit)
	assert.Equal(t, int32(1), stub.calls.Load())

	// Pre-populate the cache at the chunk's fingerprint
	const cachedPayload = `{"s1_a": 1}`
	key := fingerprint.Code(results[0].Chunk.Code)
	require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, key, cachedPayload))

	results, err = New(stub, store).EvaluateAll(ctx, doc, chunker.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Success)
	assert.Equal(t, cachedPayload, results[0].Result.Payload)
	assert.True(t, results[0].CacheHit)
	assert.Equal(t, int32(1), stub.calls.Load(), "stub must not be invoked on a cache hit")
}

func TestEvaluateDocument_CacheIgnoresWhitespace(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	stub := &stubEvaluator{payload: stubPayload}

	require.NoError(t, store.Store(ctx, types.NamespaceChunkResult, fingerprint.Code("publicclassA{intx;}"), "{}"))

	results, err := New(stub, store).EvaluateAll(ctx, smallDoc(), chunker.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].CacheHit)
	assert.Zero(t, stub.calls.Load())
}

func TestEvaluateDocument_Order(t *testing.T) {
	stub := &stubEvaluator{payload: stubPayload}
	results, err := New(stub, storage.NewMemoryStorage()).EvaluateAll(context.Background(), multiChunkDoc(30), smallSettings())
	require.NoError(t, err)
	require.Greater(t, len(results), 3)

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[i-1].Chunk.EndLine, results[i].Chunk.StartLine)
	}
	assert.Equal(t, 0, results[0].Chunk.StartLine)
	assert.Equal(t, 30, results[len(results)-1].Chunk.EndLine)
	assert.Equal(t, int32(len(results)), stub.calls.Load())
}

func TestEvaluateDocument_FailedResultPassesThrough(t *testing.T) {
	stub := &stubEvaluator{}
	results, err := New(stub, storage.NewMemoryStorage(), WithWriteThrough(true)).
		EvaluateAll(context.Background(), smallDoc(), chunker.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Result.Success)
	assert.Equal(t, -1.0, results[0].Score())
}

func TestEvaluateDocument_InvalidSettings(t *testing.T) {
	stub := &stubEvaluator{payload: stubPayload}
	_, err := New(stub, storage.NewMemoryStorage()).EvaluateDocument(context.Background(), smallDoc(), chunker.Settings{SoftLimit: 0, HardLimit: 10})
	assert.ErrorIs(t, err, types.ErrInvalidSettings)
	assert.ErrorIs(t, err, types.ErrConfiguration)
	assert.Zero(t, stub.calls.Load())
}

func TestEvaluateDocument_WriteThrough(t *testing.T) {
	ctx := context.Background()
	doc := smallDoc()

	t.Run("disabled by default", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		results, err := New(&stubEvaluator{payload: stubPayload}, store).EvaluateAll(ctx, doc, chunker.DefaultSettings())
		require.NoError(t, err)

		_, found, err := store.Lookup(ctx, types.NamespaceChunkResult, fingerprint.Code(results[0].Chunk.Code))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("enabled", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		stub := &stubEvaluator{payload: stubPayload}
		d := New(stub, store, WithWriteThrough(true))

		results, err := d.EvaluateAll(ctx, doc, chunker.DefaultSettings())
		require.NoError(t, err)

		cached, found, err := store.Lookup(ctx, types.NamespaceChunkResult, fingerprint.Code(results[0].Chunk.Code))
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, stubPayload, cached)

		results, err = d.EvaluateAll(ctx, doc, chunker.DefaultSettings())
		require.NoError(t, err)
		assert.True(t, results[0].CacheHit)
		assert.Equal(t, int32(1), stub.calls.Load())
	})

	t.Run("failures are not stored", func(t *testing.T) {
		store := storage.NewMemoryStorage()
		_, err := New(&stubEvaluator{}, store, WithWriteThrough(true)).EvaluateAll(ctx, doc, chunker.DefaultSettings())
		require.NoError(t, err)

		stats, err := store.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.Total())
	})
}

func TestEvaluateDocument_StoreFailure(t *testing.T) {
	stub := &stubEvaluator{payload: stubPayload}
	results, err := New(stub, brokenStore{}).EvaluateAll(context.Background(), multiChunkDoc(30), smallSettings())
	assert.ErrorIs(t, err, types.ErrStoreFailure)
	assert.Empty(t, results)
	assert.Zero(t, stub.calls.Load())
}

func TestEvaluateDocument_EvaluatorErrorStops(t *testing.T) {
	stub := &stubEvaluator{err: fmt.Errorf("%w: gave up", types.ErrServiceUnavailable)}
	results, err := New(stub, storage.NewMemoryStorage()).EvaluateAll(context.Background(), multiChunkDoc(30), smallSettings())
	assert.ErrorIs(t, err, types.ErrServiceUnavailable)
	assert.Empty(t, results)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestEvaluateDocument_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubEvaluator{payload: stubPayload}
	stub.onCall = func() {
		if stub.calls.Load() == 2 {
			cancel()
		}
	}

	store := storage.NewMemoryStorage()
	results, err := New(stub, store, WithWriteThrough(true)).EvaluateAll(ctx, multiChunkDoc(30), smallSettings())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(2), stub.calls.Load())

	// Only the chunk finished before cancellation was cached
	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries[types.NamespaceChunkResult])
}

func TestEvaluateDocument_EarlyBreak(t *testing.T) {
	stub := &stubEvaluator{payload: stubPayload}
	seq, err := New(stub, storage.NewMemoryStorage()).EvaluateDocument(context.Background(), multiChunkDoc(30), smallSettings())
	require.NoError(t, err)
	assert.Zero(t, stub.calls.Load(), "evaluation starts on iteration")

	for _, err := range seq {
		require.NoError(t, err)
		break
	}
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestEvaluateDocument_WithMockEvaluator(t *testing.T) {
	tmpl, err := evaluator.NewPromptTemplate("Rate this.{ROLE}{CODE}")
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	ev, err := evaluator.NewMock(tmpl, evaluator.WithStore(store))
	require.NoError(t, err)

	results, err := New(ev, store).EvaluateAll(context.Background(), smallDoc(), chunker.DefaultSettings())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Result.Payload, evaluator.MockResultContains)
	assert.InDelta(t, 86.92, results[0].Score(), 0.01)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries[types.NamespaceRawAPIResponse])
}

func TestEvaluateDocument_ErrorIsNotWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	_, err := New(&stubEvaluator{err: sentinel}, storage.NewMemoryStorage()).
		EvaluateAll(context.Background(), smallDoc(), chunker.DefaultSettings())
	assert.ErrorIs(t, err, sentinel)
}
