package folding

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kestrel-edit/kestrel/internal/display/interval"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// Errors returned by folding operations.
var (
	// ErrFoldRangeInvalid indicates a malformed start/end pair.
	ErrFoldRangeInvalid = errors.New("invalid fold range")
)

// RangeID identifies a fold range within its owning table.
// IDs are arena indices scoped to the table, not process-wide.
type RangeID uint32

// Range is a foldable region of the buffer.
type Range struct {
	ID    RangeID
	Start buffer.Point
	End   buffer.Point

	// Open is true when the range is expanded. A closed range hides the
	// origin lines Start.Line+1 through End.Line.
	Open bool
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	state := "closed"
	if r.Open {
		state = "open"
	}
	return fmt.Sprintf("fold#%d %s..%s (%s)", r.ID, r.Start, r.End, state)
}

// isValid reports whether the range's end comes after its start.
func (r Range) isValid() bool {
	return r.Start.Before(r.End)
}

// lineSpan is an inclusive run of hidden origin lines.
type lineSpan struct {
	first uint32
	last  uint32
}

// Table holds the fold ranges of one document.
type Table struct {
	ranges []Range // sorted by Start, then End
	nextID RangeID
}

// NewTable creates an empty fold table.
func NewTable() *Table {
	return &Table{}
}

// Ranges returns the table's ranges sorted by position.
// The slice is a copy; mutating it does not affect the table.
func (t *Table) Ranges() []Range {
	out := make([]Range, len(t.ranges))
	copy(out, t.ranges)
	return out
}

// Len returns the number of fold ranges.
func (t *Table) Len() int {
	return len(t.ranges)
}

func (t *Table) sortRanges() {
	sort.SliceStable(t.ranges, func(i, j int) bool {
		if c := t.ranges[i].Start.Compare(t.ranges[j].Start); c != 0 {
			return c < 0
		}
		return t.ranges[i].End.Before(t.ranges[j].End)
	})
}

// hiddenSpans returns the merged, sorted runs of hidden origin lines.
func (t *Table) hiddenSpans() []lineSpan {
	var spans []lineSpan
	for _, r := range t.ranges {
		if r.Open || r.End.Line <= r.Start.Line {
			continue
		}
		spans = append(spans, lineSpan{first: r.Start.Line + 1, last: r.End.Line})
	}
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].first < spans[j].first })

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.first <= last.last+1 {
			if s.last > last.last {
				last.last = s.last
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// representative resolves an origin line to the visible line that stands in
// for it: the line itself when visible, else the start line of the innermost
// chain of closed folds hiding it.
func (t *Table) representative(origin uint32) uint32 {
	for changed := true; changed; {
		changed = false
		for _, r := range t.ranges {
			if r.Open {
				continue
			}
			if origin > r.Start.Line && origin <= r.End.Line {
				origin = r.Start.Line
				changed = true
			}
		}
	}
	return origin
}

// IsLineHidden reports whether an origin line is hidden by a closed fold.
func (t *Table) IsLineHidden(origin uint32) bool {
	return t.representative(origin) != origin
}

// FoldedIndex maps an origin line to its folded line index. Hidden origin
// lines map to the folded index of their fold's representative line, so the
// mapping is monotonic non-decreasing over origin lines.
func (t *Table) FoldedIndex(origin uint32) uint32 {
	rep := t.representative(origin)
	hidden := uint32(0)
	for _, s := range t.hiddenSpans() {
		if s.first >= rep {
			break
		}
		last := s.last
		if last >= rep {
			last = rep - 1
		}
		hidden += last - s.first + 1
	}
	return rep - hidden
}

// OriginOfFolded maps a folded line index back to the origin line it renders.
// It is the exact inverse of FoldedIndex over visible origin lines.
func (t *Table) OriginOfFolded(folded uint32) uint32 {
	origin := folded
	for _, s := range t.hiddenSpans() {
		if s.first > origin {
			break
		}
		origin += s.last - s.first + 1
	}
	return origin
}

// FoldedLineCount returns the number of origin lines currently hidden by
// closed folds.
func (t *Table) FoldedLineCount() int {
	n := 0
	for _, s := range t.hiddenSpans() {
		n += int(s.last - s.first + 1)
	}
	return n
}

// InnermostClosedAt returns the innermost closed range whose hidden region
// (Start, End) contains the given position, or false when the position is
// visible. The boundary positions themselves are visible: Start is the last
// position before the collapse, End the first position after it.
func (t *Table) InnermostClosedAt(p buffer.Point) (Range, bool) {
	var best Range
	found := false
	for _, r := range t.ranges {
		if r.Open {
			continue
		}
		if p.After(r.Start) && p.Before(r.End) {
			if !found || r.Start.After(best.Start) {
				best = r
				found = true
			}
		}
	}
	return best, found
}

// ApplyEdit shifts every range across a buffer edit. Point positions are
// mapped through the old snapshot's offset space, transformed, and mapped
// back through the new snapshot. Ranges whose interior is deleted entirely
// are dropped; ranges with a boundary inside the replaced region are clamped.
func (t *Table) ApplyEdit(old, new *buffer.Buffer, res buffer.EditResult) error {
	kept := t.ranges[:0]
	for _, r := range t.ranges {
		start, err := old.PointToOffset(r.Start)
		if err != nil {
			return fmt.Errorf("fold range %v: %w", r, err)
		}
		end, err := old.PointToOffset(r.End)
		if err != nil {
			return fmt.Errorf("fold range %v: %w", r, err)
		}

		moved, outcome := interval.TransformRange(buffer.NewRange(start, end), res)
		if outcome == interval.OutcomeDropped {
			continue
		}

		r.Start, err = new.OffsetToPoint(moved.Start)
		if err != nil {
			return fmt.Errorf("fold range %v: %w", r, err)
		}
		r.End, err = new.OffsetToPoint(moved.End)
		if err != nil {
			return fmt.Errorf("fold range %v: %w", r, err)
		}
		if !r.isValid() {
			continue
		}
		kept = append(kept, r)
	}
	t.ranges = kept
	t.sortRanges()
	return nil
}
