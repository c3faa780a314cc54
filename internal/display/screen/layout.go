package screen

import (
	"sort"
	"strings"

	"github.com/kestrel-edit/kestrel/internal/display/phantom"
	"github.com/kestrel-edit/kestrel/internal/display/wrap"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// segment is one piece of a folded line's rendered string. Content
// segments map bytes one to one starting at origin; phantom segments
// collapse to their anchor offset.
type segment struct {
	text    string
	origin  buffer.ByteOffset
	phantom bool
}

// lineLayout is the cached geometry of one folded line.
type lineLayout struct {
	folded      uint32
	origin      uint32
	segs        []segment
	rendered    string
	rows        []wrap.Row
	firstVisual int
}

// closedSpans returns the hidden byte interiors of all closed folds as
// sorted, merged offset ranges. Boundary offsets remain visible.
func (ln *Lines) closedSpans() []buffer.Range {
	var spans []buffer.Range
	for _, r := range ln.folds.Ranges() {
		if r.Open {
			continue
		}
		start, err := ln.buf.PointToOffset(r.Start)
		if err != nil {
			continue
		}
		end, err := ln.buf.PointToOffset(r.End)
		if err != nil || end <= start {
			continue
		}
		spans = append(spans, buffer.Range{Start: start, End: end})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := spans[:0]
	for _, sp := range spans {
		if n := len(merged); n > 0 && merged[n-1].Overlaps(sp) {
			merged[n-1] = merged[n-1].Union(sp)
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

// contentSegs emits the rendered segments for the [from, to) slice of an
// origin line, merging in phantom text anchored there.
func (ln *Lines) contentSegs(line uint32, from, to buffer.ByteOffset) ([]segment, error) {
	start, err := ln.buf.LineStartOffset(line)
	if err != nil {
		return nil, err
	}
	c1 := uint32(from - start)
	c2 := uint32(to - start)
	spans, err := ln.phantoms.SpansForLine(ln.buf, line)
	if err != nil {
		return nil, err
	}

	var segs []segment
	for _, s := range spans {
		switch s.Kind {
		case phantom.KindContent:
			o1, o2 := s.Origin.Start, s.Origin.End
			if o1 < c1 {
				o1 = c1
			}
			if o2 > c2 {
				o2 = c2
			}
			if o1 >= o2 {
				continue
			}
			segs = append(segs, segment{
				text:   s.Text[o1-s.Origin.Start : o2-s.Origin.Start],
				origin: start + buffer.ByteOffset(o1),
			})
		case phantom.KindPhantom:
			// A line is sliced at most once per layout, so accepting the
			// window's end column cannot emit an anchor twice. An anchor at
			// a seam's start is visible and renders before the fold tail.
			a := s.Origin.Start
			if a >= c1 && a <= c2 {
				segs = append(segs, segment{
					text:    s.Text,
					origin:  start + buffer.ByteOffset(a),
					phantom: true,
				})
			}
		}
	}
	return segs, nil
}

// buildSegs walks one folded line, jumping over closed fold interiors.
func (ln *Lines) buildSegs(origin uint32, spans []buffer.Range) ([]segment, error) {
	p, err := ln.buf.LineStartOffset(origin)
	if err != nil {
		return nil, err
	}
	line := origin
	var segs []segment
	for {
		end, err := ln.buf.LineEndOffset(line)
		if err != nil {
			return nil, err
		}
		var seam *buffer.Range
		for i := range spans {
			if spans[i].Start >= p && spans[i].Start < end {
				seam = &spans[i]
				break
			}
		}
		if seam == nil {
			more, err := ln.contentSegs(line, p, end)
			if err != nil {
				return nil, err
			}
			return append(segs, more...), nil
		}
		more, err := ln.contentSegs(line, p, seam.Start)
		if err != nil {
			return nil, err
		}
		segs = append(segs, more...)
		p = seam.End
		if line, err = ln.buf.LineOf(p); err != nil {
			return nil, err
		}
	}
}

// layouts returns the per-folded-line geometry, recomputing when dirty.
func (ln *Lines) layouts() ([]lineLayout, error) {
	if !ln.dirty && ln.cache != nil {
		return ln.cache, nil
	}
	spans := ln.closedSpans()
	visible := int(ln.buf.LineCount()) - ln.folds.FoldedLineCount()
	out := make([]lineLayout, 0, visible)
	visual := 0
	for f := 0; f < visible; f++ {
		origin := ln.folds.OriginOfFolded(uint32(f))
		segs, err := ln.buildSegs(origin, spans)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		for _, s := range segs {
			sb.WriteString(s.text)
		}
		rendered := sb.String()
		rows := ln.engine.Layout(rendered, ln.style, ln.viewportWidth)
		out = append(out, lineLayout{
			folded:      uint32(f),
			origin:      origin,
			segs:        segs,
			rendered:    rendered,
			rows:        rows,
			firstVisual: visual,
		})
		visual += len(rows)
	}
	ln.cache = out
	ln.dirty = false
	return out, nil
}

// VisualCount returns the total number of visual rows in the document.
func (ln *Lines) VisualCount() (int, error) {
	lls, err := ln.layouts()
	if err != nil {
		return 0, err
	}
	if len(lls) == 0 {
		return 0, nil
	}
	last := lls[len(lls)-1]
	return last.firstVisual + len(last.rows), nil
}

// colOf maps a buffer offset to its byte column in the rendered string.
// Offsets hidden inside a closed fold collapse to the seam column. An
// offset at a content segment's end resolves before any phantom that
// follows it.
func colOf(segs []segment, off buffer.ByteOffset) uint32 {
	var col, best uint32
	for _, s := range segs {
		n := uint32(len(s.text))
		if s.phantom {
			if off <= s.origin {
				return col
			}
		} else {
			segEnd := s.origin + buffer.ByteOffset(n)
			if off >= s.origin && off <= segEnd {
				return col + uint32(off-s.origin)
			}
			if off > segEnd {
				best = col + n
			}
		}
		col += n
	}
	return best
}

// offsetAtCol maps a rendered byte column back to a buffer offset.
// Columns inside phantom text collapse to the phantom's anchor.
func offsetAtCol(segs []segment, col uint32) buffer.ByteOffset {
	var c uint32
	var last buffer.ByteOffset
	for _, s := range segs {
		n := uint32(len(s.text))
		if col < c+n {
			if s.phantom {
				return s.origin
			}
			return s.origin + buffer.ByteOffset(col-c)
		}
		c += n
		if s.phantom {
			last = s.origin
		} else {
			last = s.origin + buffer.ByteOffset(n)
		}
	}
	return last
}

// layoutFor returns the layout of the folded line containing offset.
func (ln *Lines) layoutFor(off buffer.ByteOffset) (*lineLayout, error) {
	lls, err := ln.layouts()
	if err != nil {
		return nil, err
	}
	origin, err := ln.buf.LineOf(off)
	if err != nil {
		return nil, err
	}
	folded := ln.folds.FoldedIndex(origin)
	if int(folded) >= len(lls) {
		folded = uint32(len(lls) - 1)
	}
	return &lls[folded], nil
}

// layoutAtVisual returns the layout and row index at a global visual row,
// clamped to the document.
func (ln *Lines) layoutAtVisual(v int) (*lineLayout, int, error) {
	lls, err := ln.layouts()
	if err != nil {
		return nil, 0, err
	}
	if len(lls) == 0 {
		return nil, 0, buffer.ErrLineOutOfRange
	}
	if v < 0 {
		v = 0
	}
	i := sort.Search(len(lls), func(i int) bool {
		return lls[i].firstVisual+len(lls[i].rows) > v
	})
	if i >= len(lls) {
		last := &lls[len(lls)-1]
		return last, len(last.rows) - 1, nil
	}
	return &lls[i], v - lls[i].firstVisual, nil
}
