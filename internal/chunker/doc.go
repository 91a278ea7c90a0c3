// Package chunker partitions source documents into bounded, line-aligned
// chunks for evaluation.
//
// # Basic Usage
//
//	c, err := chunker.New(chunker.Settings{SoftLimit: 2048, HardLimit: 3000})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for chunk := range c.Partition(doc) {
//	    fmt.Printf("lines %d-%d: %d chars\n",
//	        chunk.StartLine, chunk.EndLine, chunk.Length())
//	}
//
// # Chunk Sizing
//
// Chunks grow one line at a time while they stay strictly below SoftLimit.
// The line that would reach the soft limit starts the next chunk. Lines are
// joined with "\n" and the separators count toward the length. Lengths are
// measured in characters (runes), not bytes.
//
// HardLimit bounds every chunk except one made of a single line that is
// longer than the limit on its own. Such a line is emitted unmodified;
// lines are never split.
//
// # Line Numbers
//
// StartLine is the 0-based index of the first line in the chunk and EndLine
// is the index one past the last line. Without overlap the chunks are
// contiguous and disjoint: the first starts at 0, each starts where the
// previous ended, and the last ends at the document line count.
//
// # Overlap
//
// With AllowOverlap set, each chunk after the first re-includes the last
// floor(span * OverlapRatio) lines of the previous chunk, where span is the
// previous chunk's line count. The ratio applies to lines, not characters.
// A start line is never reused: if the computed start already began a
// chunk, it moves forward to the next unused line.
//
//	c, _ := chunker.New(chunker.Settings{
//	    SoftLimit:    2048,
//	    HardLimit:    3000,
//	    AllowOverlap: true,
//	    OverlapRatio: 0.5,
//	})
//
// # Laziness
//
// Partition returns an iter.Seq. Nothing is computed until the sequence is
// ranged over, and stopping early ends the pass. Ranging again starts a new
// pass from the first line.
package chunker
