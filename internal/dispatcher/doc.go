// Package dispatcher drives the evaluation of one document.
//
// A document is partitioned into chunks and each chunk is either served from
// the chunk result cache or sent to an evaluator. Chunks are processed one
// at a time, in document order, and results are produced lazily as an
// iter.Seq2 so a caller can stop early without paying for the rest.
//
// The cache key of a chunk is its whitespace-insensitive fingerprint, so a
// chunk that differs from a cached one only in indentation or line breaks is
// a cache hit.
package dispatcher
