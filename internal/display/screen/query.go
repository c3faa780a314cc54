package screen

import (
	"math"

	"github.com/rivo/uniseg"

	"github.com/kestrel-edit/kestrel/internal/display/wrap"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Position is a resolved screen location for a buffer offset.
type Position struct {
	Visual int
	Folded uint32
	Sub    int
	X      float64
	Y      float64
}

// VisualLine is one rendered screen row.
type VisualLine struct {
	Folded uint32
	Sub    int
	Origin uint32
	Y      float64
	Height float64
	Text   string
	Width  float64
}

// Snapshot is the ordered visible window produced by Compute.
type Snapshot struct {
	Lines       []VisualLine
	TotalHeight float64
}

// checkOffset validates an offset against the current buffer.
func (ln *Lines) checkOffset(off buffer.ByteOffset) error {
	if off < 0 || off > ln.buf.Len() {
		return buffer.ErrOffsetOutOfRange
	}
	return nil
}

// PointAtOffset resolves an offset to a screen position. At a wrap seam
// the affinity picks the row: Backward yields the end of the prior row
// at that row's full width, absorbed trailing whitespace included;
// Forward yields x zero on the next row. Offsets hidden inside a closed
// fold resolve to the fold seam.
func (ln *Lines) PointAtOffset(off buffer.ByteOffset, aff Affinity) (Position, error) {
	if err := ln.checkOffset(off); err != nil {
		return Position{}, err
	}
	ll, err := ln.layoutFor(off)
	if err != nil {
		return Position{}, err
	}
	col := colOf(ll.segs, off)
	i := wrap.RowAt(ll.rows, col)
	var x float64
	if aff == AffinityBackward && i > 0 && col == ll.rows[i].Start {
		i--
		x = ll.rows[i].Width
	} else {
		row := ll.rows[i]
		x = ln.engine.MeasureAt(ll.rendered[row.Start:col], 0)
	}
	v := ll.firstVisual + i
	return Position{
		Visual: v,
		Folded: ll.folded,
		Sub:    i,
		X:      x,
		Y:      float64(v) * ln.lineHeight,
	}, nil
}

// OffsetAtVisual hit-tests x within a global visual row: the glyph whose
// span contains x resolves to its nearest boundary, Backward before the
// midpoint, Forward at or past it. Past the row end it resolves to the
// row's last boundary.
func (ln *Lines) OffsetAtVisual(v int, x float64) (buffer.ByteOffset, Affinity, error) {
	ll, sub, err := ln.layoutAtVisual(v)
	if err != nil {
		return 0, AffinityBackward, err
	}
	row := ll.rows[sub]
	text := ll.rendered[row.Start:row.End]
	m := ln.engine.Metrics()

	gx := 0.0
	pos := row.Start
	state := -1
	for len(text) > 0 {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(text, state)
		w := m.Advance(cluster, gx)
		if x < gx+w/2 {
			return offsetAtCol(ll.segs, pos), AffinityBackward, nil
		}
		if x < gx+w {
			return offsetAtCol(ll.segs, pos+uint32(len(cluster))), AffinityForward, nil
		}
		gx += w
		pos += uint32(len(cluster))
		text = rest
		state = next
	}
	return offsetAtCol(ll.segs, row.End), AffinityBackward, nil
}

// OffsetAtPoint hit-tests an absolute screen point.
func (ln *Lines) OffsetAtPoint(x, y float64) (buffer.ByteOffset, Affinity, error) {
	v := int(math.Floor(y / ln.lineHeight))
	return ln.OffsetAtVisual(v, x)
}

// Compute lays out the visual rows intersecting the viewport band
// [top, top+height) with their absolute y coordinates.
func (ln *Lines) Compute(top, height float64) (Snapshot, error) {
	lls, err := ln.layouts()
	if err != nil {
		return Snapshot{}, err
	}
	total, err := ln.VisualCount()
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{TotalHeight: float64(total) * ln.lineHeight}
	for _, ll := range lls {
		for i, row := range ll.rows {
			y := float64(ll.firstVisual+i) * ln.lineHeight
			if y+ln.lineHeight <= top {
				continue
			}
			if y >= top+height {
				return snap, nil
			}
			snap.Lines = append(snap.Lines, VisualLine{
				Folded: ll.folded,
				Sub:    i,
				Origin: ll.origin,
				Y:      y,
				Height: ln.lineHeight,
				Text:   ll.rendered[row.Start:row.End],
				Width:  row.Width,
			})
		}
	}
	return snap, nil
}
