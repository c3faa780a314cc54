// Package folding tracks fold ranges and their open/closed state, and maps
// origin line numbers to folded line indices.
//
// A closed fold collapses the lines Start.Line+1 through End.Line; the start
// line survives as the representative line of the collapsed region. Hidden
// origin lines map to the representative's folded index, which keeps the
// origin-to-folded mapping monotonic non-decreasing.
//
// The Table absorbs buffer edits through ApplyEdit: ranges shift with the
// text they annotate, a range whose interior is deleted is removed, and a
// range with a split boundary is clamped to the nearest surviving position.
package folding
