// Package diff aligns two versions of a document for side-by-side views.
//
// An Overlay is an ordered run of sections: Both sections pair equal line
// ranges from the left and right versions, optionally eliding a skip
// region from display; Left and Right sections hold lines present on only
// one side. Section coverage on each side must be contiguous from line
// zero, validated at construction.
package diff
