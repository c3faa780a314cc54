package diff

import (
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// ErrInconsistent reports sections whose line coverage has gaps, overlaps
// or mismatched pair lengths.
var ErrInconsistent = errors.New("diff: inconsistent sections")

// Side selects one of the two compared documents.
type Side uint8

const (
	// SideLeft is the old version.
	SideLeft Side = iota
	// SideRight is the new version.
	SideRight
)

// String returns the side name.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// LineRange is a half-open range of line numbers.
type LineRange struct {
	Start uint32
	End   uint32
}

// Len returns the number of lines covered.
func (r LineRange) Len() uint32 { return r.End - r.Start }

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line uint32) bool {
	return line >= r.Start && line < r.End
}

// SectionKind discriminates section variants.
type SectionKind uint8

const (
	// SectionBoth pairs equal-length line ranges from both sides.
	SectionBoth SectionKind = iota
	// SectionLeft holds lines deleted from the left side.
	SectionLeft
	// SectionRight holds lines added on the right side.
	SectionRight
)

// String returns the kind name.
func (k SectionKind) String() string {
	switch k {
	case SectionBoth:
		return "both"
	case SectionLeft:
		return "left"
	case SectionRight:
		return "right"
	default:
		return "unknown"
	}
}

// Section is one aligned run of lines. Left is set for Both and Left
// kinds, Right for Both and Right kinds. Skip, when present on a Both
// section, is a sub-range relative to the section start that a renderer
// elides behind a fold marker.
type Section struct {
	Kind  SectionKind
	Left  LineRange
	Right LineRange
	Skip  *LineRange
}

// Overlay is a validated alignment of two document versions.
type Overlay struct {
	sections   []Section
	leftCount  uint32
	rightCount uint32
}

// New validates sections and builds an overlay. Coverage on each side
// must start at line zero and be contiguous, Both sections must pair
// ranges of equal length, and a Skip must lie within its section.
func New(sections []Section) (*Overlay, error) {
	var left, right uint32
	for i, s := range sections {
		switch s.Kind {
		case SectionBoth:
			if s.Left.Len() != s.Right.Len() {
				return nil, fmt.Errorf("%w: section %d pairs %d left lines with %d right", ErrInconsistent, i, s.Left.Len(), s.Right.Len())
			}
			if s.Left.Start != left || s.Right.Start != right {
				return nil, fmt.Errorf("%w: section %d starts at %d/%d, expected %d/%d", ErrInconsistent, i, s.Left.Start, s.Right.Start, left, right)
			}
			if s.Skip != nil && (s.Skip.Start > s.Skip.End || s.Skip.End > s.Left.Len()) {
				return nil, fmt.Errorf("%w: section %d skip [%d,%d) exceeds length %d", ErrInconsistent, i, s.Skip.Start, s.Skip.End, s.Left.Len())
			}
			left = s.Left.End
			right = s.Right.End
		case SectionLeft:
			if s.Left.Start != left {
				return nil, fmt.Errorf("%w: section %d starts at left %d, expected %d", ErrInconsistent, i, s.Left.Start, left)
			}
			left = s.Left.End
		case SectionRight:
			if s.Right.Start != right {
				return nil, fmt.Errorf("%w: section %d starts at right %d, expected %d", ErrInconsistent, i, s.Right.Start, right)
			}
			right = s.Right.End
		default:
			return nil, fmt.Errorf("%w: section %d has unknown kind %d", ErrInconsistent, i, s.Kind)
		}
	}
	out := make([]Section, len(sections))
	copy(out, sections)
	return &Overlay{sections: out, leftCount: left, rightCount: right}, nil
}

// Sections returns a copy of the aligned sections in order.
func (o *Overlay) Sections() []Section {
	out := make([]Section, len(o.sections))
	copy(out, o.sections)
	return out
}

// LineCount returns the number of lines covered on one side.
func (o *Overlay) LineCount(side Side) uint32 {
	if side == SideLeft {
		return o.leftCount
	}
	return o.rightCount
}

// SectionAt returns the section covering a line on the given side.
func (o *Overlay) SectionAt(side Side, line uint32) (Section, bool) {
	for _, s := range o.sections {
		switch s.Kind {
		case SectionBoth:
			if side == SideLeft && s.Left.Contains(line) {
				return s, true
			}
			if side == SideRight && s.Right.Contains(line) {
				return s, true
			}
		case SectionLeft:
			if side == SideLeft && s.Left.Contains(line) {
				return s, true
			}
		case SectionRight:
			if side == SideRight && s.Right.Contains(line) {
				return s, true
			}
		}
	}
	return Section{}, false
}

// IsChanged reports whether a line exists only on the given side.
func (o *Overlay) IsChanged(side Side, line uint32) bool {
	s, ok := o.SectionAt(side, line)
	return ok && s.Kind != SectionBoth
}

// Changes returns the line ranges unique to the given side, in order.
func (o *Overlay) Changes(side Side) []LineRange {
	var out []LineRange
	for _, s := range o.sections {
		if side == SideLeft && s.Kind == SectionLeft {
			out = append(out, s.Left)
		}
		if side == SideRight && s.Kind == SectionRight {
			out = append(out, s.Right)
		}
	}
	return out
}

// Translate maps a line number from one side to the corresponding line on
// the other side. Lines inside a Both section map exactly and return
// true. Lines unique to the given side map to the opposite side's
// position at that point and return false.
func (o *Overlay) Translate(side Side, line uint32) (uint32, bool) {
	var otherPos uint32
	for _, s := range o.sections {
		switch s.Kind {
		case SectionBoth:
			if side == SideLeft {
				if s.Left.Contains(line) {
					return s.Right.Start + (line - s.Left.Start), true
				}
				otherPos = s.Right.End
			} else {
				if s.Right.Contains(line) {
					return s.Left.Start + (line - s.Right.Start), true
				}
				otherPos = s.Left.End
			}
		case SectionLeft:
			if side == SideLeft && s.Left.Contains(line) {
				return otherPos, false
			}
		case SectionRight:
			if side == SideRight && s.Right.Contains(line) {
				return otherPos, false
			}
		}
	}
	return otherPos, false
}

// TranslateOffset maps a byte offset in one side's buffer to the
// corresponding offset in the other side's buffer, translating the line
// and clamping the column. The bool is false when no correspondent
// exists: the line is unique to the given side or sits inside a Both
// section's skip region.
func (o *Overlay) TranslateOffset(side Side, from, to *buffer.Buffer, off buffer.ByteOffset) (buffer.ByteOffset, bool, error) {
	p, err := from.OffsetToPoint(off)
	if err != nil {
		return 0, false, err
	}
	for _, s := range o.sections {
		switch s.Kind {
		case SectionBoth:
			var rel uint32
			switch {
			case side == SideLeft && s.Left.Contains(p.Line):
				rel = p.Line - s.Left.Start
			case side == SideRight && s.Right.Contains(p.Line):
				rel = p.Line - s.Right.Start
			default:
				continue
			}
			if s.Skip != nil && rel >= s.Skip.Start && rel < s.Skip.End {
				return 0, false, nil
			}
			line := s.Left.Start + rel
			if side == SideLeft {
				line = s.Right.Start + rel
			}
			if line >= to.LineCount() {
				return 0, false, nil
			}
			mapped, err := to.PointToOffset(buffer.Point{Line: line, Column: p.Column})
			if err != nil {
				return 0, false, err
			}
			return mapped, true, nil
		case SectionLeft:
			if side == SideLeft && s.Left.Contains(p.Line) {
				return 0, false, nil
			}
		case SectionRight:
			if side == SideRight && s.Right.Contains(p.Line) {
				return 0, false, nil
			}
		}
	}
	return 0, false, nil
}

// FromLines diffs two documents given as line slices and builds an
// overlay. Unchanged runs longer than 2*context+1 lines receive a Skip
// covering everything but context lines on each edge.
func FromLines(left, right []string, context uint32) (*Overlay, error) {
	m := difflib.NewMatcher(left, right)
	var sections []Section
	for _, op := range m.GetOpCodes() {
		l := LineRange{Start: uint32(op.I1), End: uint32(op.I2)}
		r := LineRange{Start: uint32(op.J1), End: uint32(op.J2)}
		switch op.Tag {
		case 'e':
			s := Section{Kind: SectionBoth, Left: l, Right: r}
			if n := l.Len(); n > 2*context+1 {
				s.Skip = &LineRange{Start: context, End: n - context}
			}
			sections = append(sections, s)
		case 'r':
			sections = append(sections,
				Section{Kind: SectionLeft, Left: l},
				Section{Kind: SectionRight, Right: r})
		case 'd':
			sections = append(sections, Section{Kind: SectionLeft, Left: l})
		case 'i':
			sections = append(sections, Section{Kind: SectionRight, Right: r})
		}
	}
	return New(sections)
}
