package folding

import (
	"fmt"

	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// OpKind identifies a fold operation.
type OpKind uint8

const (
	// OpToggleByRange toggles the range matching the given start/end pair,
	// inserting it closed when it is not yet tracked.
	OpToggleByRange OpKind = iota

	// OpByItem applies a gutter display item (fold / unfold-start /
	// unfold-end marker) at a position.
	OpByItem

	// OpByPhantomAnchor toggles the range whose start sits at the given
	// byte offset, as anchored by a fold placeholder phantom.
	OpByPhantomAnchor

	// OpReplace replaces the whole range set.
	OpReplace

	// OpFoldAtOffset closes the innermost range containing the offset.
	OpFoldAtOffset

	// OpUnfoldContaining opens every range containing the offset.
	OpUnfoldContaining
)

// String returns a human-readable representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpToggleByRange:
		return "toggle-by-range"
	case OpByItem:
		return "by-item"
	case OpByPhantomAnchor:
		return "by-phantom-anchor"
	case OpReplace:
		return "replace"
	case OpFoldAtOffset:
		return "fold-at-offset"
	case OpUnfoldContaining:
		return "unfold-containing"
	default:
		return "unknown"
	}
}

// ItemKind identifies the marker carried by a DisplayItem.
type ItemKind uint8

const (
	// ItemUnfoldStart opens the closed range starting at the item position.
	ItemUnfoldStart ItemKind = iota

	// ItemUnfoldEnd opens the closed range ending at the item position.
	ItemUnfoldEnd

	// ItemFold closes the range starting at the item position.
	ItemFold
)

// DisplayItem is a fold marker as rendered in a gutter: a position, the
// marker's y coordinate, and what clicking it does.
type DisplayItem struct {
	Position buffer.Point
	Y        float64
	Kind     ItemKind
}

// Op is one fold mutation. Exactly the fields implied by Kind are read.
type Op struct {
	Kind   OpKind
	Range  Range        // OpToggleByRange
	Item   DisplayItem  // OpByItem
	Offset buffer.ByteOffset // OpByPhantomAnchor, OpFoldAtOffset, OpUnfoldContaining
	Ranges []Range      // OpReplace
}

// ToggleByRange builds an OpToggleByRange.
func ToggleByRange(start, end buffer.Point) Op {
	return Op{Kind: OpToggleByRange, Range: Range{Start: start, End: end}}
}

// ByItem builds an OpByItem.
func ByItem(item DisplayItem) Op {
	return Op{Kind: OpByItem, Item: item}
}

// ByPhantomAnchor builds an OpByPhantomAnchor.
func ByPhantomAnchor(offset buffer.ByteOffset) Op {
	return Op{Kind: OpByPhantomAnchor, Offset: offset}
}

// Replace builds an OpReplace.
func Replace(ranges []Range) Op {
	return Op{Kind: OpReplace, Ranges: ranges}
}

// FoldAtOffset builds an OpFoldAtOffset.
func FoldAtOffset(offset buffer.ByteOffset) Op {
	return Op{Kind: OpFoldAtOffset, Offset: offset}
}

// UnfoldContaining builds an OpUnfoldContaining.
func UnfoldContaining(offset buffer.ByteOffset) Op {
	return Op{Kind: OpUnfoldContaining, Offset: offset}
}

// Update applies one fold operation. Operations referencing already-consistent
// state (folding a closed range, unfolding an open one) are no-ops, not
// errors. The buffer is needed for offset-addressed operations.
func (t *Table) Update(op Op, buf *buffer.Buffer) error {
	switch op.Kind {
	case OpToggleByRange:
		return t.toggleByRange(op.Range)
	case OpByItem:
		return t.applyItem(op.Item)
	case OpByPhantomAnchor:
		return t.toggleByAnchor(op.Offset, buf)
	case OpReplace:
		return t.replaceAll(op.Ranges)
	case OpFoldAtOffset:
		return t.foldAtOffset(op.Offset, buf)
	case OpUnfoldContaining:
		return t.unfoldContaining(op.Offset, buf)
	default:
		return fmt.Errorf("fold op %d: %w", op.Kind, ErrFoldRangeInvalid)
	}
}

func (t *Table) toggleByRange(r Range) error {
	if !r.isValid() {
		return fmt.Errorf("%w: %v..%v", ErrFoldRangeInvalid, r.Start, r.End)
	}
	for i := range t.ranges {
		if t.ranges[i].Start == r.Start && t.ranges[i].End == r.End {
			t.ranges[i].Open = !t.ranges[i].Open
			return nil
		}
	}
	r.ID = t.nextID
	t.nextID++
	r.Open = false
	t.ranges = append(t.ranges, r)
	t.sortRanges()
	return nil
}

func (t *Table) applyItem(item DisplayItem) error {
	for i := range t.ranges {
		r := &t.ranges[i]
		switch item.Kind {
		case ItemFold:
			if r.Start == item.Position {
				r.Open = false
				return nil
			}
		case ItemUnfoldStart:
			if r.Start == item.Position {
				r.Open = true
				return nil
			}
		case ItemUnfoldEnd:
			if r.End == item.Position {
				r.Open = true
				return nil
			}
		}
	}
	return nil
}

func (t *Table) toggleByAnchor(offset buffer.ByteOffset, buf *buffer.Buffer) error {
	p, err := buf.OffsetToPoint(offset)
	if err != nil {
		return err
	}
	for i := range t.ranges {
		if t.ranges[i].Start == p {
			t.ranges[i].Open = !t.ranges[i].Open
			return nil
		}
	}
	return nil
}

func (t *Table) replaceAll(ranges []Range) error {
	for _, r := range ranges {
		if !r.isValid() {
			return fmt.Errorf("%w: %v..%v", ErrFoldRangeInvalid, r.Start, r.End)
		}
	}
	t.ranges = make([]Range, len(ranges))
	copy(t.ranges, ranges)
	for i := range t.ranges {
		t.ranges[i].ID = t.nextID
		t.nextID++
	}
	t.sortRanges()
	return nil
}

func (t *Table) foldAtOffset(offset buffer.ByteOffset, buf *buffer.Buffer) error {
	p, err := buf.OffsetToPoint(offset)
	if err != nil {
		return err
	}
	// Innermost containing range: the last sorted range whose span covers p.
	best := -1
	for i, r := range t.ranges {
		if !p.Before(r.Start) && !p.After(r.End) {
			if best < 0 || r.Start.After(t.ranges[best].Start) {
				best = i
			}
		}
	}
	if best >= 0 {
		t.ranges[best].Open = false
	}
	return nil
}

func (t *Table) unfoldContaining(offset buffer.ByteOffset, buf *buffer.Buffer) error {
	p, err := buf.OffsetToPoint(offset)
	if err != nil {
		return err
	}
	for i := range t.ranges {
		r := t.ranges[i]
		if !p.Before(r.Start) && !p.After(r.End) {
			t.ranges[i].Open = true
		}
	}
	return nil
}
