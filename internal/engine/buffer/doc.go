// Package buffer provides the text storage collaborator of the display
// engine: an immutable-snapshot buffer over a string with a newline index
// for byte-offset and line lookups.
//
// A Buffer never mutates in place. Apply returns the successor snapshot
// together with an EditResult describing the transition; overlay structures
// (folding ranges, phantom anchors, diagnostics) consume the EditResult to
// shift their positions from one snapshot's offset space to the next.
//
// Offsets are byte offsets. Valid query range is [0, Len()]; lookups outside
// it return ErrOffsetOutOfRange rather than clamping. Line endings are kept
// as found in the source text: both LF and CRLF content is navigable, and
// LineEndOffset always points before the line terminator.
package buffer
