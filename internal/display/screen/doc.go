// Package screen composes folding, phantom text and wrapping into the
// ordered sequence of visual lines a renderer draws.
//
// Lines is the composition root. Mutations (buffer edits, fold toggles,
// diagnostic or hint updates, style changes) mark it dirty; layout is
// pulled lazily on the next query, so a query issued after a mutation
// always observes it. All offset to point mapping, hit testing and
// cursor movement run through here, including the affinity handling for
// offsets that sit exactly on a wrap or fold seam.
package screen
