package dispatcher

import (
	"context"
	"iter"

	"github.com/dshills/gocodequality/internal/chunker"
	"github.com/dshills/gocodequality/internal/evaluator"
	"github.com/dshills/gocodequality/internal/fingerprint"
	"github.com/dshills/gocodequality/internal/logger"
	"github.com/dshills/gocodequality/internal/storage"
	"github.com/dshills/gocodequality/pkg/types"
)

// Dispatcher evaluates documents chunk by chunk
type Dispatcher struct {
	evaluator    evaluator.Evaluator
	store        storage.CacheStore
	writeThrough bool
	log          *logger.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithWriteThrough stores successful evaluator results in the chunk result
// cache. Off by default.
func WithWriteThrough(enabled bool) Option {
	return func(d *Dispatcher) { d.writeThrough = enabled }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// New creates a dispatcher
func New(ev evaluator.Evaluator, store storage.CacheStore, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		evaluator: ev,
		store:     store,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = logger.OrNop(d.log)
	return d
}

// EvaluateDocument partitions doc with settings and returns a sequence of
// evaluated chunks in document order.
//
// Invalid settings are reported before any work is done. Once iterating, a
// cache or evaluator error is yielded with a zero EvaluatedChunk and ends the
// sequence. Cancelling ctx ends the sequence with ctx.Err() before the next
// chunk is started.
func (d *Dispatcher) EvaluateDocument(ctx context.Context, doc types.Document, settings chunker.Settings) (iter.Seq2[types.EvaluatedChunk, error], error) {
	chunks, err := chunker.Partition(doc, settings)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithDocument(ctx, doc.Path)
	log := logger.C(ctx, d.log)

	return func(yield func(types.EvaluatedChunk, error) bool) {
		for chunk := range chunks {
			if err := ctx.Err(); err != nil {
				yield(types.EvaluatedChunk{}, err)
				return
			}

			evaluated, err := d.evaluateChunk(ctx, log, chunk)
			if err != nil {
				yield(types.EvaluatedChunk{}, err)
				return
			}
			if !yield(evaluated, nil) {
				return
			}
		}
	}, nil
}

// EvaluateAll evaluates every chunk of doc and collects the results
func (d *Dispatcher) EvaluateAll(ctx context.Context, doc types.Document, settings chunker.Settings) ([]types.EvaluatedChunk, error) {
	seq, err := d.EvaluateDocument(ctx, doc, settings)
	if err != nil {
		return nil, err
	}

	var results []types.EvaluatedChunk
	for evaluated, err := range seq {
		if err != nil {
			return results, err
		}
		results = append(results, evaluated)
	}
	return results, nil
}

func (d *Dispatcher) evaluateChunk(ctx context.Context, log *logger.Logger, chunk types.Chunk) (types.EvaluatedChunk, error) {
	key := fingerprint.Code(chunk.Code)

	cached, found, err := d.store.Lookup(ctx, types.NamespaceChunkResult, key)
	if err != nil {
		return types.EvaluatedChunk{}, err
	}
	if found {
		log.Debug().
			Str("key", key).
			Int("start_line", chunk.StartLine).
			Msg("chunk result cache hit")
		return types.EvaluatedChunk{
			Chunk:    chunk,
			Result:   types.EvaluationResult{Success: true, Payload: cached},
			CacheHit: true,
		}, nil
	}

	log.Debug().
		Str("key", key).
		Int("start_line", chunk.StartLine).
		Int("end_line", chunk.EndLine).
		Msg("evaluating chunk")

	result, err := d.evaluator.Evaluate(ctx, chunk)
	if err != nil {
		return types.EvaluatedChunk{}, err
	}

	// A chunk whose evaluation straddled cancellation is discarded
	if err := ctx.Err(); err != nil {
		return types.EvaluatedChunk{}, err
	}

	if d.writeThrough && result.Success {
		if err := d.store.Store(ctx, types.NamespaceChunkResult, key, result.Payload); err != nil {
			return types.EvaluatedChunk{}, err
		}
	}

	return types.EvaluatedChunk{Chunk: chunk, Result: result}, nil
}
