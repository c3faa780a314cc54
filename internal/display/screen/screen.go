package screen

import (
	"github.com/kestrel-edit/kestrel/internal/display/diagnostic"
	"github.com/kestrel-edit/kestrel/internal/display/diff"
	"github.com/kestrel-edit/kestrel/internal/display/folding"
	"github.com/kestrel-edit/kestrel/internal/display/phantom"
	"github.com/kestrel-edit/kestrel/internal/display/wrap"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Affinity resolves which side of a wrap or fold seam an offset binds
// to: Backward the end of the prior row, Forward the start of the next.
type Affinity uint8

const (
	// AffinityBackward binds to the end of the prior visual row.
	AffinityBackward Affinity = iota
	// AffinityForward binds to the start of the next visual row.
	AffinityForward
)

// String returns the affinity name.
func (a Affinity) String() string {
	if a == AffinityBackward {
		return "backward"
	}
	return "forward"
}

// Mode selects cursor placement rules for vertical movement.
type Mode uint8

const (
	// ModeInsert allows the cursor past the last glyph of a line.
	ModeInsert Mode = iota
	// ModeNormal keeps the cursor on the last glyph of a line.
	ModeNormal
)

// Lines turns a buffer plus its overlays into addressable visual rows.
// All methods must be called from the owning goroutine; there is no
// internal locking.
type Lines struct {
	buf      *buffer.Buffer
	folds    *folding.Table
	diags    *diagnostic.Set
	phantoms *phantom.Index
	overlay  *diff.Overlay
	engine   *wrap.Engine

	style         wrap.Style
	lineHeight    float64
	viewportWidth float64

	dirty bool
	cache []lineLayout
}

// Option configures Lines at construction.
type Option func(*Lines)

// WithWrapStyle sets the wrap policy.
func WithWrapStyle(style wrap.Style) Option {
	return func(ln *Lines) { ln.style = style }
}

// WithLineHeight sets the height of one visual row.
func WithLineHeight(h float64) Option {
	return func(ln *Lines) { ln.lineHeight = h }
}

// WithViewportWidth sets the width used by editor-width wrapping.
func WithViewportWidth(w float64) Option {
	return func(ln *Lines) { ln.viewportWidth = w }
}

// WithMetrics overrides the wrap engine's text metrics.
func WithMetrics(m wrap.Metrics) Option {
	return func(ln *Lines) { ln.engine = wrap.NewEngine(wrap.WithMetrics(m)) }
}

// New builds a Lines over the given text with empty overlays.
func New(text string, opts ...Option) *Lines {
	ln := &Lines{
		buf:        buffer.New(text),
		folds:      folding.NewTable(),
		diags:      diagnostic.NewSet(),
		phantoms:   phantom.NewIndex(),
		engine:     wrap.NewEngine(),
		lineHeight: 20,
		dirty:      true,
	}
	ln.phantoms.SetDiagnostics(ln.diags)
	for _, opt := range opts {
		opt(ln)
	}
	return ln
}

// Buffer returns the current buffer snapshot.
func (ln *Lines) Buffer() *buffer.Buffer { return ln.buf }

// Folding returns the fold table.
func (ln *Lines) Folding() *folding.Table { return ln.folds }

// Diagnostics returns the diagnostic set.
func (ln *Lines) Diagnostics() *diagnostic.Set { return ln.diags }

// Phantoms returns the phantom text index.
func (ln *Lines) Phantoms() *phantom.Index { return ln.phantoms }

// DiffOverlay returns the installed overlay, nil outside diff view.
func (ln *Lines) DiffOverlay() *diff.Overlay { return ln.overlay }

// LineHeight returns the height of one visual row.
func (ln *Lines) LineHeight() float64 { return ln.lineHeight }

// Apply routes an edit through the buffer and shape-adjusts every
// overlay, so their ranges keep pointing at the content they pointed at
// before the edit.
func (ln *Lines) Apply(edit buffer.Edit) (buffer.EditResult, error) {
	next, res, err := ln.buf.Apply(edit)
	if err != nil {
		return buffer.EditResult{}, err
	}
	if err := ln.folds.ApplyEdit(ln.buf, next, res); err != nil {
		return buffer.EditResult{}, err
	}
	ln.diags.ApplyEdit(res)
	ln.phantoms.ApplyEdit(res)
	ln.buf = next
	ln.dirty = true
	return res, nil
}

// UpdateFolding applies a fold operation.
func (ln *Lines) UpdateFolding(op folding.Op) error {
	if err := ln.folds.Update(op, ln.buf); err != nil {
		return err
	}
	ln.dirty = true
	return nil
}

// SetDiagnostics replaces the diagnostic spans.
func (ln *Lines) SetDiagnostics(spans []diagnostic.Span) {
	ln.diags.Replace(spans)
	ln.dirty = true
}

// SetInlayHints replaces the inlay hints.
func (ln *Lines) SetInlayHints(hints []phantom.Hint) {
	ln.phantoms.SetInlayHints(hints)
	ln.dirty = true
}

// SetPreedit installs the IME preedit string.
func (ln *Lines) SetPreedit(offset buffer.ByteOffset, text string) {
	ln.phantoms.SetPreedit(offset, text)
	ln.dirty = true
}

// SetWrapStyle replaces the wrap policy.
func (ln *Lines) SetWrapStyle(style wrap.Style) {
	ln.style = style
	ln.dirty = true
}

// SetViewportWidth updates the width used by editor-width wrapping.
func (ln *Lines) SetViewportWidth(w float64) {
	ln.viewportWidth = w
	ln.dirty = true
}

// SetDiffOverlay installs or clears the diff overlay.
func (ln *Lines) SetDiffOverlay(o *diff.Overlay) {
	ln.overlay = o
	ln.dirty = true
}
