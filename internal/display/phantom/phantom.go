package phantom

import (
	"sort"
	"strings"

	"github.com/kestrel-edit/kestrel/internal/display/diagnostic"
	"github.com/kestrel-edit/kestrel/internal/display/interval"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Kind discriminates span variants in a rendered line.
type Kind uint8

const (
	// KindContent covers real buffer text.
	KindContent Kind = iota
	// KindPhantom covers inserted virtual text.
	KindPhantom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindPhantom:
		return "phantom"
	default:
		return "unknown"
	}
}

// Source identifies which producer contributed a phantom span.
type Source uint8

const (
	// SourceContent marks content spans, which have no producer.
	SourceContent Source = iota
	// SourceDiagnostic marks inline diagnostic trailers.
	SourceDiagnostic
	// SourceInlay marks inlay hints.
	SourceInlay
	// SourcePreedit marks the IME preedit string.
	SourcePreedit
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceContent:
		return "content"
	case SourceDiagnostic:
		return "diagnostic"
	case SourceInlay:
		return "inlay"
	case SourcePreedit:
		return "preedit"
	default:
		return "unknown"
	}
}

// ColRange is a half-open column range within a single line, in bytes.
type ColRange struct {
	Start uint32
	End   uint32
}

// Len returns the range width in bytes.
func (c ColRange) Len() uint32 { return c.End - c.Start }

// Span is one segment of a rendered line. Content spans reference real
// buffer text through Origin; phantom spans anchor at a single origin
// column (Origin.Start == Origin.End) and carry their own Text. Final is
// the span's byte range in the rendered string. Concatenating the Text of
// all spans for a line reproduces its rendered string.
type Span struct {
	Kind     Kind
	Source   Source
	Origin   ColRange
	Final    ColRange
	Text     string
	Severity diagnostic.Severity
}

// Hint is an inlay hint anchored at a buffer offset.
type Hint struct {
	Offset buffer.ByteOffset
	Text   string
}

type preedit struct {
	offset buffer.ByteOffset
	text   string
}

// Index tracks all virtual text producers and answers per-line span and
// column mapping queries against a buffer snapshot.
type Index struct {
	diags     *diagnostic.Set
	showDiags bool
	hints     []Hint
	pre       *preedit
}

// NewIndex returns an empty index with inline diagnostics enabled.
func NewIndex() *Index {
	return &Index{showDiags: true}
}

// SetDiagnostics installs the diagnostic set whose spans render as inline
// trailers at each diagnostic's end position. The set is shared, not
// copied; callers route buffer edits to it separately.
func (ix *Index) SetDiagnostics(set *diagnostic.Set) {
	ix.diags = set
}

// SetShowDiagnostics toggles inline diagnostic trailers without
// discarding the installed set.
func (ix *Index) SetShowDiagnostics(show bool) {
	ix.showDiags = show
}

// SetInlayHints replaces all inlay hints. Hints with empty text are
// ignored. Slice order is the registration order used to break ties
// between hints sharing an anchor.
func (ix *Index) SetInlayHints(hints []Hint) {
	kept := make([]Hint, 0, len(hints))
	for _, h := range hints {
		if h.Text == "" {
			continue
		}
		kept = append(kept, h)
	}
	ix.hints = kept
}

// SetPreedit installs the active IME preedit string at offset. An empty
// text clears it.
func (ix *Index) SetPreedit(offset buffer.ByteOffset, text string) {
	if text == "" {
		ix.pre = nil
		return
	}
	ix.pre = &preedit{offset: offset, text: text}
}

// ClearPreedit removes the active preedit, if any.
func (ix *Index) ClearPreedit() {
	ix.pre = nil
}

// ApplyEdit shifts inlay hint and preedit anchors across a buffer edit.
// Anchors strictly inside a deleted range are dropped. The diagnostic set
// maintains its own positions and is not touched here.
func (ix *Index) ApplyEdit(res buffer.EditResult) {
	kept := ix.hints[:0]
	for _, h := range ix.hints {
		off, inside := interval.ShiftOffset(h.Offset, res)
		if inside {
			continue
		}
		h.Offset = off
		kept = append(kept, h)
	}
	ix.hints = kept
	if ix.pre != nil {
		off, inside := interval.ShiftOffset(ix.pre.offset, res)
		if inside {
			ix.pre = nil
		} else {
			ix.pre.offset = off
		}
	}
}

// item is a phantom insertion resolved to a column on one line.
type item struct {
	col      uint32
	text     string
	source   Source
	seq      int
	severity diagnostic.Severity
}

// itemsForLine collects phantom insertions anchored on line, ordered by
// column, then producer priority, then registration order.
func (ix *Index) itemsForLine(buf *buffer.Buffer, line uint32) ([]item, error) {
	start, err := buf.LineStartOffset(line)
	if err != nil {
		return nil, err
	}
	end, err := buf.LineEndOffset(line)
	if err != nil {
		return nil, err
	}
	lineLen := uint32(end - start)

	var items []item
	add := func(off buffer.ByteOffset, text string, src Source, seq int, sev diagnostic.Severity) {
		col := uint32(off - start)
		if col > lineLen {
			col = lineLen
		}
		items = append(items, item{col: col, text: text, source: src, seq: seq, severity: sev})
	}

	if ix.showDiags && ix.diags != nil {
		for i, d := range ix.diags.Spans() {
			p, err := buf.OffsetToPoint(d.Range.End)
			if err != nil {
				continue
			}
			if p.Line != line {
				continue
			}
			add(d.Range.End, "  "+d.Message, SourceDiagnostic, i, d.Severity)
		}
	}
	for i, h := range ix.hints {
		p, err := buf.OffsetToPoint(h.Offset)
		if err != nil || p.Line != line {
			continue
		}
		add(h.Offset, h.Text, SourceInlay, i, 0)
	}
	if ix.pre != nil {
		p, err := buf.OffsetToPoint(ix.pre.offset)
		if err == nil && p.Line == line {
			add(ix.pre.offset, ix.pre.text, SourcePreedit, 0, 0)
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].col != items[b].col {
			return items[a].col < items[b].col
		}
		if items[a].source != items[b].source {
			return items[a].source < items[b].source
		}
		return items[a].seq < items[b].seq
	})
	return items, nil
}

// SpansForLine returns the ordered spans composing the rendered form of
// line. A line with no phantom text yields a single content span. An
// empty line with phantoms yields only phantom spans.
func (ix *Index) SpansForLine(buf *buffer.Buffer, line uint32) ([]Span, error) {
	text, err := buf.LineText(line)
	if err != nil {
		return nil, err
	}
	items, err := ix.itemsForLine(buf, line)
	if err != nil {
		return nil, err
	}

	var spans []Span
	var originCol, finalCol uint32
	content := func(to uint32) {
		if to <= originCol {
			return
		}
		seg := text[originCol:to]
		spans = append(spans, Span{
			Kind:   KindContent,
			Source: SourceContent,
			Origin: ColRange{Start: originCol, End: to},
			Final:  ColRange{Start: finalCol, End: finalCol + uint32(len(seg))},
			Text:   seg,
		})
		finalCol += uint32(len(seg))
		originCol = to
	}
	for _, it := range items {
		content(it.col)
		n := uint32(len(it.text))
		spans = append(spans, Span{
			Kind:     KindPhantom,
			Source:   it.source,
			Origin:   ColRange{Start: it.col, End: it.col},
			Final:    ColRange{Start: finalCol, End: finalCol + n},
			Text:     it.text,
			Severity: it.severity,
		})
		finalCol += n
	}
	content(uint32(len(text)))
	if len(spans) == 0 {
		spans = append(spans, Span{
			Kind:   KindContent,
			Source: SourceContent,
			Text:   "",
		})
	}
	return spans, nil
}

// RenderedLine returns the line's text with all phantom insertions
// applied.
func (ix *Index) RenderedLine(buf *buffer.Buffer, line uint32) (string, error) {
	spans, err := ix.SpansForLine(buf, line)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String(), nil
}

// OriginToFinal maps a column in the origin line to its column in the
// rendered line, accumulating the lengths of phantom text inserted
// strictly before it. A cursor at a phantom's anchor stays before the
// phantom.
func (ix *Index) OriginToFinal(buf *buffer.Buffer, line, originCol uint32) (uint32, error) {
	items, err := ix.itemsForLine(buf, line)
	if err != nil {
		return 0, err
	}
	final := originCol
	for _, it := range items {
		if it.col < originCol {
			final += uint32(len(it.text))
		}
	}
	return final, nil
}

// FinalToOrigin maps a rendered-line column back to an origin column. A
// column inside phantom text collapses to the phantom's anchor.
func (ix *Index) FinalToOrigin(buf *buffer.Buffer, line, finalCol uint32) (uint32, error) {
	spans, err := ix.SpansForLine(buf, line)
	if err != nil {
		return 0, err
	}
	for _, s := range spans {
		if finalCol >= s.Final.End {
			continue
		}
		if s.Kind == KindPhantom {
			return s.Origin.Start, nil
		}
		return s.Origin.Start + (finalCol - s.Final.Start), nil
	}
	if n := len(spans); n > 0 {
		last := spans[n-1]
		if last.Kind == KindPhantom {
			return last.Origin.Start, nil
		}
		return last.Origin.End, nil
	}
	return 0, nil
}
