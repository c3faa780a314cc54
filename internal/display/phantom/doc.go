// Package phantom merges virtual text into rendered lines.
//
// Phantom text is view-only: diagnostic trailers, inlay hints and IME
// preedit strings render inline but occupy no buffer offsets. The Index
// keeps the per-line mapping between a real character's origin column and
// its final column after virtual insertions, in both directions.
//
// Producer priority at a shared anchor column is fixed: diagnostics render
// before inlay hints, inlay hints before preedit. Within one producer,
// registration order wins.
package phantom
