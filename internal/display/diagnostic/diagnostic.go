// Package diagnostic maintains the diagnostic spans of one buffer and
// answers severity queries against them. Spans live in the buffer's byte
// offset space and are shape-adjusted across edits, so producers only need
// to republish when their analysis actually reruns.
package diagnostic

import (
	"fmt"
	"sort"

	"github.com/kestrel-edit/kestrel/internal/display/interval"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Severity is a diagnostic severity level. Lower values are more severe,
// matching the LSP numbering.
type Severity uint8

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MoreSevere returns true if s ranks above other.
func (s Severity) MoreSevere(other Severity) bool {
	return s < other
}

// Span is one diagnostic over a byte range.
type Span struct {
	Range    buffer.Range
	Severity Severity
	Message  string
}

// String returns a human-readable representation of the span.
func (d Span) String() string {
	return fmt.Sprintf("%s%s: %s", d.Severity, d.Range, d.Message)
}

// Counts aggregates diagnostics by severity.
type Counts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
}

// Total returns the total number of diagnostics counted.
func (c Counts) Total() int {
	return c.Errors + c.Warnings + c.Infos + c.Hints
}

// Set holds the diagnostics of one buffer, ordered by range start.
type Set struct {
	spans []Span
}

// NewSet creates an empty diagnostic set.
func NewSet() *Set {
	return &Set{}
}

// Replace installs a new slice of diagnostics, replacing all previous ones.
// Publication order is preserved for spans starting at the same offset.
func (s *Set) Replace(spans []Span) {
	s.spans = make([]Span, len(spans))
	copy(s.spans, spans)
	sort.SliceStable(s.spans, func(i, j int) bool {
		return s.spans[i].Range.Start < s.spans[j].Range.Start
	})
}

// Spans returns the diagnostics ordered by range start.
// The slice is a copy; mutating it does not affect the set.
func (s *Set) Spans() []Span {
	out := make([]Span, len(s.spans))
	copy(out, s.spans)
	return out
}

// Len returns the number of diagnostics.
func (s *Set) Len() int {
	return len(s.spans)
}

// touches reports whether a diagnostic touches an offset. A diagnostic
// touches both its boundaries, so a caret sitting right after the
// highlighted text still sees it.
func touches(d Span, offset buffer.ByteOffset) bool {
	return offset >= d.Range.Start && offset <= d.Range.End
}

// At returns every diagnostic touching the given offset.
func (s *Set) At(offset buffer.ByteOffset) []Span {
	var out []Span
	for _, d := range s.spans {
		if touches(d, offset) {
			out = append(out, d)
		}
	}
	return out
}

// MostSevereAt returns the most severe diagnostic touching the offset.
func (s *Set) MostSevereAt(offset buffer.ByteOffset) (Span, bool) {
	var best Span
	found := false
	for _, d := range s.spans {
		if !touches(d, offset) {
			continue
		}
		if !found || d.Severity.MoreSevere(best.Severity) {
			best = d
			found = true
		}
	}
	return best, found
}

// MostSevereInRange returns the most severe diagnostic overlapping the range.
// An empty query range behaves like MostSevereAt on its position.
func (s *Set) MostSevereInRange(r buffer.Range) (Span, bool) {
	if r.IsEmpty() {
		return s.MostSevereAt(r.Start)
	}
	var best Span
	found := false
	for _, d := range s.spans {
		if !d.Range.Overlaps(r) && !touches(d, r.Start) {
			continue
		}
		if !found || d.Severity.MoreSevere(best.Severity) {
			best = d
			found = true
		}
	}
	return best, found
}

// OnLine returns the diagnostics whose range touches the given line.
func (s *Set) OnLine(buf *buffer.Buffer, line uint32) ([]Span, error) {
	start, err := buf.LineStartOffset(line)
	if err != nil {
		return nil, err
	}
	end, err := buf.LineEndOffset(line)
	if err != nil {
		return nil, err
	}
	var out []Span
	for _, d := range s.spans {
		if d.Range.Start > end || d.Range.End < start {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// Counts returns per-severity totals for gutter and statusline consumers.
func (s *Set) Counts() Counts {
	var c Counts
	for _, d := range s.spans {
		switch d.Severity {
		case SeverityError:
			c.Errors++
		case SeverityWarning:
			c.Warnings++
		case SeverityInformation:
			c.Infos++
		case SeverityHint:
			c.Hints++
		}
	}
	return c
}

// ApplyEdit shifts every diagnostic across a buffer edit. Diagnostics whose
// range is deleted entirely are dropped.
func (s *Set) ApplyEdit(res buffer.EditResult) {
	kept := s.spans[:0]
	for _, d := range s.spans {
		moved, outcome := interval.TransformRange(d.Range, res)
		if outcome == interval.OutcomeDropped {
			continue
		}
		d.Range = moved
		kept = append(kept, d)
	}
	s.spans = kept
}
