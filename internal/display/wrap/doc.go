// Package wrap lays rendered line text out into visual rows.
//
// The engine breaks at the last whitespace boundary that fits, falling
// back to a hard break at a grapheme cluster boundary when a single word
// overflows. Whitespace at a soft break is absorbed into the earlier row,
// bytes and width both, so rows always cover the rendered string exactly.
// Widths come from a pluggable Metrics; the default models a monospace
// grid with tab stops.
package wrap
