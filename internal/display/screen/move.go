package screen

import (
	"math"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// ColKind discriminates how a sticky column is expressed.
type ColKind uint8

const (
	// ColExact is a character cell column.
	ColExact ColKind = iota
	// ColPixel is a horizontal pixel position.
	ColPixel
)

// ColPosition preserves the visual column across vertical moves through
// lines of differing fold and wrap shape.
type ColPosition struct {
	Kind ColKind
	Col  uint32
	X    float64
}

// Col returns an exact-column position.
func Col(n uint32) ColPosition {
	return ColPosition{Kind: ColExact, Col: n}
}

// PixelX returns a pixel position.
func PixelX(x float64) ColPosition {
	return ColPosition{Kind: ColPixel, X: x}
}

// colX converts a sticky column to an x position under the current
// metrics.
func (ln *Lines) colX(c ColPosition) float64 {
	if c.Kind == ColExact {
		return ln.engine.Metrics().ColumnWidth(c.Col)
	}
	return c.X
}

// colFromX derives a sticky column from an x position, preferring exact
// cell columns whenever the metrics define a positive cell unit.
func (ln *Lines) colFromX(x float64) ColPosition {
	if cw := ln.engine.Metrics().ColumnWidth(1); cw > 0 {
		return Col(uint32(math.Round(x / cw)))
	}
	return PixelX(x)
}

// nextClusterStart returns the offset after the grapheme cluster at off.
func nextClusterStart(text string, off buffer.ByteOffset) buffer.ByteOffset {
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(text[off:], -1)
	return off + buffer.ByteOffset(len(cluster))
}

// prevClusterStart returns the start offset of the grapheme cluster
// ending at off.
func prevClusterStart(text string, off buffer.ByteOffset) buffer.ByteOffset {
	if off <= 0 {
		return 0
	}
	if text[off-1] == '\n' {
		if off >= 2 && text[off-2] == '\r' {
			return off - 2
		}
		return off - 1
	}
	start := buffer.ByteOffset(strings.LastIndexByte(text[:off], '\n') + 1)
	rest := text[start:off]
	state := -1
	for len(rest) > 0 {
		cluster, tail, _, next := uniseg.FirstGraphemeClusterInString(rest, state)
		if start+buffer.ByteOffset(len(cluster)) >= off {
			break
		}
		start += buffer.ByteOffset(len(cluster))
		rest = tail
		state = next
	}
	return start
}

// MoveRight advances one grapheme cluster. When the advance lands inside
// a closed fold's hidden interior the cursor jumps to the fold's end
// offset, landing just after the collapsed region. At end of buffer the
// position is returned unchanged.
func (ln *Lines) MoveRight(off buffer.ByteOffset, aff Affinity) (buffer.ByteOffset, Affinity, error) {
	if err := ln.checkOffset(off); err != nil {
		return 0, aff, err
	}
	if off >= ln.buf.Len() {
		return off, aff, nil
	}
	next := nextClusterStart(ln.buf.Text(), off)
	for _, sp := range ln.closedSpans() {
		if next > sp.Start && next < sp.End {
			next = sp.End
			break
		}
	}
	return next, AffinityBackward, nil
}

// MoveLeft retreats one grapheme cluster. Entering a closed fold from
// the right lands just before the fold's start offset. At the start of
// the buffer the position is returned unchanged.
func (ln *Lines) MoveLeft(off buffer.ByteOffset, aff Affinity) (buffer.ByteOffset, Affinity, error) {
	if err := ln.checkOffset(off); err != nil {
		return 0, aff, err
	}
	if off == 0 {
		return off, aff, nil
	}
	prev := prevClusterStart(ln.buf.Text(), off)
	for _, sp := range ln.closedSpans() {
		if prev > sp.Start && prev < sp.End {
			prev = sp.Start
			break
		}
	}
	return prev, AffinityForward, nil
}

// MoveUp moves count visual rows up, tracking the sticky column.
func (ln *Lines) MoveUp(off buffer.ByteOffset, aff Affinity, pref *ColPosition, mode Mode, count int) (buffer.ByteOffset, ColPosition, Affinity, error) {
	return ln.vertical(off, aff, pref, mode, count, -1)
}

// MoveDown moves count visual rows down, tracking the sticky column.
func (ln *Lines) MoveDown(off buffer.ByteOffset, aff Affinity, pref *ColPosition, mode Mode, count int) (buffer.ByteOffset, ColPosition, Affinity, error) {
	return ln.vertical(off, aff, pref, mode, count, 1)
}

// vertical resolves a move of count rows in direction dir. The sticky
// column comes from pref when present, otherwise from the current
// position, and is returned for the caller to reuse on the next move.
// Rows clamp at the document extremities.
func (ln *Lines) vertical(off buffer.ByteOffset, aff Affinity, pref *ColPosition, mode Mode, count, dir int) (buffer.ByteOffset, ColPosition, Affinity, error) {
	if err := ln.checkOffset(off); err != nil {
		return 0, ColPosition{}, aff, err
	}
	if count < 1 {
		count = 1
	}
	pos, err := ln.PointAtOffset(off, aff)
	if err != nil {
		return 0, ColPosition{}, aff, err
	}
	col := ln.colFromX(pos.X)
	if pref != nil {
		col = *pref
	}
	total, err := ln.VisualCount()
	if err != nil {
		return 0, ColPosition{}, aff, err
	}
	target := pos.Visual + dir*count
	if target < 0 {
		target = 0
	}
	if target >= total {
		target = total - 1
	}
	newOff, newAff, err := ln.OffsetAtVisual(target, ln.colX(col))
	if err != nil {
		return 0, ColPosition{}, aff, err
	}
	if mode == ModeNormal {
		newOff, newAff = ln.clampToLastGlyph(newOff, newAff)
	}
	return newOff, col, newAff, nil
}

// clampToLastGlyph keeps a normal-mode cursor on the last glyph of its
// line instead of past it.
func (ln *Lines) clampToLastGlyph(off buffer.ByteOffset, aff Affinity) (buffer.ByteOffset, Affinity) {
	line, err := ln.buf.LineOf(off)
	if err != nil {
		return off, aff
	}
	start, err := ln.buf.LineStartOffset(line)
	if err != nil {
		return off, aff
	}
	end, err := ln.buf.LineEndOffset(line)
	if err != nil {
		return off, aff
	}
	if off == end && end > start {
		return prevClusterStart(ln.buf.Text(), off), AffinityBackward
	}
	return off, aff
}
