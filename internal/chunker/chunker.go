package chunker

import (
	"fmt"
	"iter"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dshills/gocodequality/pkg/types"
)

const (
	// DefaultSoftLimit is the preferred maximum chunk length in characters
	DefaultSoftLimit = 2048

	// DefaultHardLimit is the absolute maximum chunk length in characters
	DefaultHardLimit = 2800

	// lineSeparator joins chunk lines and counts toward chunk length
	lineSeparator = "\n"
)

// Settings controls how documents are partitioned
type Settings struct {
	SoftLimit    int     // Crossing it emits the chunk at the next line boundary
	HardLimit    int     // No chunk exceeds it unless a single line does
	AllowOverlap bool    // Re-include the tail of each emitted chunk in the next one
	OverlapRatio float64 // Fraction of the previous chunk's lines to re-include, 0..1
}

// DefaultSettings returns non-overlapping settings with the default limits
func DefaultSettings() Settings {
	return Settings{
		SoftLimit: DefaultSoftLimit,
		HardLimit: DefaultHardLimit,
	}
}

// Validate checks HardLimit >= SoftLimit >= 1 and the overlap ratio range
func (s Settings) Validate() error {
	if s.SoftLimit < 1 {
		return fmt.Errorf("%w: soft limit must be at least 1, got %d", types.ErrInvalidSettings, s.SoftLimit)
	}

	if s.HardLimit < s.SoftLimit {
		return fmt.Errorf("%w: hard limit %d is below soft limit %d", types.ErrInvalidSettings, s.HardLimit, s.SoftLimit)
	}

	if s.OverlapRatio < 0 || s.OverlapRatio > 1 {
		return fmt.Errorf("%w: overlap ratio must be within [0, 1], got %g", types.ErrInvalidSettings, s.OverlapRatio)
	}

	return nil
}

// Chunker partitions documents into line-aligned chunks bounded by the
// soft and hard limits
type Chunker struct {
	settings Settings
}

// New creates a Chunker. Invalid settings are rejected here so iteration
// never fails.
func New(settings Settings) (*Chunker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Chunker{settings: settings}, nil
}

// Settings returns the settings the chunker was created with
func (c *Chunker) Settings() Settings {
	return c.settings
}

// Partition validates settings and returns the chunk sequence for doc
func Partition(doc types.Document, settings Settings) (iter.Seq[types.Chunk], error) {
	c, err := New(settings)
	if err != nil {
		return nil, err
	}
	return c.Partition(doc), nil
}

// Partition returns the chunks of doc in document order.
//
// Lines are accumulated greedily while the chunk stays strictly below the
// soft limit. When the next line would reach it, the chunk is emitted and a
// new one starts with that line. Lines are never split: a line longer than
// the hard limit becomes a chunk of its own, unmodified.
//
// With overlap enabled the next chunk starts floor(span*OverlapRatio) lines
// before the end of the emitted chunk, moved forward past any line already
// used as a chunk start. A chunk that begins on the final line carries no
// overlap. The carried lines are dropped from the front if
// keeping them would push the new chunk past the hard limit.
//
// The trailing chunk is always emitted, so the sequence is never empty and
// the last EndLine equals the document line count. Each call starts a fresh
// pass over the document.
func (c *Chunker) Partition(doc types.Document) iter.Seq[types.Chunk] {
	return func(yield func(types.Chunk) bool) {
		lines := strings.Split(doc.Content, lineSeparator)
		p := newPass(lines, c.settings)

		for i := 1; i < len(lines); i++ {
			if p.size+1+p.lengths[i] < c.settings.SoftLimit {
				p.size += 1 + p.lengths[i]
				continue
			}

			if !yield(p.chunk(doc, i)) {
				return
			}
			p.restart(i)
		}

		yield(p.chunk(doc, len(lines)))
	}
}

// ChunkFile reads a file from disk and partitions it. relPath is recorded
// as the document path.
func (c *Chunker) ChunkFile(filePath, relPath string) ([]types.Chunk, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc := types.Document{Path: relPath, Content: string(content)}
	return slices.Collect(c.Partition(doc)), nil
}

// pass holds the state of one partitioning run over a document
type pass struct {
	lines    []string
	lengths  []int // Rune length of each line
	settings Settings

	start      int              // First line of the current chunk
	size       int              // Rune length of the current chunk including separators
	usedStarts map[int]struct{} // Lines that already began a chunk
}

func newPass(lines []string, settings Settings) *pass {
	lengths := make([]int, len(lines))
	for i, line := range lines {
		lengths[i] = utf8.RuneCountInString(line)
	}

	return &pass{
		lines:      lines,
		lengths:    lengths,
		settings:   settings,
		size:       lengths[0],
		usedStarts: map[int]struct{}{0: {}},
	}
}

// chunk builds the chunk covering [p.start, end)
func (p *pass) chunk(doc types.Document, end int) types.Chunk {
	return types.Chunk{
		Code:      strings.Join(p.lines[p.start:end], lineSeparator),
		Document:  doc,
		StartLine: p.start,
		EndLine:   end,
	}
}

// restart begins a new chunk ending with line i, after the chunk
// [p.start, i) has been emitted. The final line never carries overlap.
func (p *pass) restart(i int) {
	next := i

	if p.settings.AllowOverlap && i < len(p.lines)-1 {
		backtrack := int(float64(i-p.start) * p.settings.OverlapRatio)
		if backtrack > 0 {
			next = i - backtrack
			for p.isUsed(next) {
				next++
			}
		}
	}

	size := p.spanSize(next, i+1)
	for next < i && size > p.settings.HardLimit {
		size -= p.lengths[next] + 1
		next++
	}

	p.start = next
	p.size = size
	p.usedStarts[next] = struct{}{}
}

func (p *pass) isUsed(line int) bool {
	_, ok := p.usedStarts[line]
	return ok
}

// spanSize is the rune length of lines [from, to) joined by separators
func (p *pass) spanSize(from, to int) int {
	size := to - from - 1
	for _, n := range p.lengths[from:to] {
		size += n
	}
	return size
}
