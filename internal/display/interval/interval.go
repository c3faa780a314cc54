// Package interval transforms stored positions and ranges across a buffer
// edit. Folding ranges, phantom anchors, and diagnostic spans are all
// interval sets over the buffer's offset space; this package implements the
// one shift/clamp/drop policy they share, so the three components cannot
// diverge on edit semantics.
package interval

import (
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Outcome categorizes what an edit did to a transformed range.
type Outcome uint8

const (
	// OutcomeShifted means the range survived, possibly at new offsets.
	OutcomeShifted Outcome = iota

	// OutcomeClamped means one boundary fell inside the replaced region and
	// was moved to the nearest surviving boundary.
	OutcomeClamped

	// OutcomeDropped means the range's interior was removed entirely.
	OutcomeDropped
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeShifted:
		return "shifted"
	case OutcomeClamped:
		return "clamped"
	case OutcomeDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// ShiftOffset maps an offset from the pre-edit offset space into the
// post-edit space. The second return reports whether the offset fell strictly
// inside the replaced region; such offsets collapse to the edit point.
func ShiftOffset(off buffer.ByteOffset, res buffer.EditResult) (buffer.ByteOffset, bool) {
	if off <= res.OldRange.Start {
		return off, false
	}
	if off >= res.OldRange.End {
		return off + buffer.ByteOffset(res.Delta), false
	}
	return res.OldRange.Start, true
}

// TransformRange maps a range from the pre-edit offset space into the
// post-edit space. A range whose interior is removed entirely reports
// OutcomeDropped; a range with one boundary inside the replaced region is
// clamped and reports OutcomeClamped.
func TransformRange(r buffer.Range, res buffer.EditResult) (buffer.Range, Outcome) {
	// Ranges entirely after the replaced region shift as a unit. Strictly
	// after: a range starting at an insertion point stays put.
	if r.Start >= res.OldRange.End && r.Start > res.OldRange.Start {
		return r.Shift(buffer.ByteOffset(res.Delta)), OutcomeShifted
	}
	start, startIn := ShiftOffset(r.Start, res)
	end, endIn := ShiftOffset(r.End, res)

	out := buffer.Range{Start: start, End: end}
	if !r.IsEmpty() && out.IsEmpty() {
		return out, OutcomeDropped
	}
	if startIn || endIn {
		return out, OutcomeClamped
	}
	return out, OutcomeShifted
}
