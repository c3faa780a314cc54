package wrap

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Mode selects how a line's wrap limit is chosen.
type Mode uint8

const (
	// ModeNone disables wrapping; every line is a single row.
	ModeNone Mode = iota
	// ModeEditorWidth wraps at the viewport width.
	ModeEditorWidth
	// ModeFixedColumn wraps at a fixed column count.
	ModeFixedColumn
	// ModeFixedWidth wraps at a fixed advance width.
	ModeFixedWidth
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeEditorWidth:
		return "editor-width"
	case ModeFixedColumn:
		return "fixed-column"
	case ModeFixedWidth:
		return "fixed-width"
	default:
		return "unknown"
	}
}

// Style pairs a wrap mode with its parameter. Column applies to
// ModeFixedColumn, Width to ModeFixedWidth.
type Style struct {
	Mode   Mode
	Column uint32
	Width  float64
}

// Row is one visual row of a rendered line: a half-open byte range into
// the rendered string and the advance width of those bytes, absorbed
// trailing whitespace included.
type Row struct {
	Start uint32
	End   uint32
	Width float64
}

// Len returns the row's byte length.
func (r Row) Len() uint32 { return r.End - r.Start }

// Metrics measures grapheme cluster advances. Advance may depend on the
// x position already consumed, which is how tabs reach the next stop.
type Metrics interface {
	Advance(cluster string, x float64) float64
	ColumnWidth(cols uint32) float64
}

// Monospace is the default metrics: every cluster occupies a whole number
// of equally wide cells, tabs advance to the next TabWidth-cell stop.
type Monospace struct {
	CellWidth float64
	TabWidth  int
}

// NewMonospace returns metrics with one-unit cells and four-cell tabs.
func NewMonospace() Monospace {
	return Monospace{CellWidth: 1, TabWidth: 4}
}

// Advance returns the width of cluster when placed at x.
func (m Monospace) Advance(cluster string, x float64) float64 {
	if cluster == "\t" {
		stop := m.CellWidth * float64(m.TabWidth)
		return (math.Floor(x/stop)+1)*stop - x
	}
	w := runewidth.StringWidth(cluster)
	if w < 1 {
		w = 1
	}
	return float64(w) * m.CellWidth
}

// ColumnWidth returns the advance width of cols cells.
func (m Monospace) ColumnWidth(cols uint32) float64 {
	return float64(cols) * m.CellWidth
}

// Engine lays out rendered lines under a metrics.
type Engine struct {
	metrics Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics overrides the default monospace metrics.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine returns an engine with monospace metrics unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{metrics: NewMonospace()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the engine's metrics.
func (e *Engine) Metrics() Metrics { return e.metrics }

// limit resolves a style against the viewport width. Zero means no
// limit.
func (e *Engine) limit(style Style, viewport float64) float64 {
	switch style.Mode {
	case ModeEditorWidth:
		return viewport
	case ModeFixedColumn:
		return e.metrics.ColumnWidth(style.Column)
	case ModeFixedWidth:
		return style.Width
	default:
		return 0
	}
}

func isSpace(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	return unicode.IsSpace(r)
}

// Layout splits text into rows under style. The rows partition text:
// row N+1 starts where row N ends, the first row starts at byte zero and
// the last ends at len(text). An empty text yields one empty row.
func (e *Engine) Layout(text string, style Style, viewport float64) []Row {
	limit := e.limit(style, viewport)
	if limit <= 0 {
		return []Row{{Start: 0, End: uint32(len(text)), Width: e.MeasureAt(text, 0)}}
	}

	var rows []Row
	pos := 0
	for {
		x := 0.0
		i := pos
		state := -1
		breakPos := -1
		breakWidth := 0.0
		prevSpace := false
		rest := text[pos:]
		for len(rest) > 0 {
			cluster, tail, _, nextState := uniseg.FirstGraphemeClusterInString(rest, state)
			w := e.metrics.Advance(cluster, x)
			sp := isSpace(cluster)
			if !sp && prevSpace {
				breakPos = i
				breakWidth = x
			}
			if x+w > limit && i > pos {
				if sp {
					// Absorb the trailing whitespace run into this row.
					for {
						x += w
						i += len(cluster)
						rest = tail
						state = nextState
						if len(rest) == 0 {
							break
						}
						cluster, tail, _, nextState = uniseg.FirstGraphemeClusterInString(rest, state)
						if !isSpace(cluster) {
							break
						}
						w = e.metrics.Advance(cluster, x)
					}
					breakPos = i
					breakWidth = x
				}
				break
			}
			x += w
			i += len(cluster)
			rest = tail
			state = nextState
			prevSpace = sp
		}
		if len(rest) == 0 && i == len(text) {
			rows = append(rows, Row{Start: uint32(pos), End: uint32(len(text)), Width: x})
			break
		}
		cut, cutWidth := i, x
		if breakPos > pos {
			cut, cutWidth = breakPos, breakWidth
		}
		rows = append(rows, Row{Start: uint32(pos), End: uint32(cut), Width: cutWidth})
		pos = cut
	}
	return rows
}

// MeasureAt returns the advance width of text starting at x.
func (e *Engine) MeasureAt(text string, x float64) float64 {
	start := x
	state := -1
	for len(text) > 0 {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(text, state)
		x += e.metrics.Advance(cluster, x)
		text = rest
		state = next
	}
	return x - start
}

// RowAt returns the index of the row containing byte col, treating each
// row's end as exclusive except the last.
func RowAt(rows []Row, col uint32) int {
	for i, r := range rows {
		if col < r.End {
			return i
		}
	}
	if n := len(rows); n > 0 {
		return n - 1
	}
	return 0
}
