package buffer

import "fmt"

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset ByteOffset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end ByteOffset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	switch {
	case e.IsNoOp():
		return fmt.Sprintf("NoOp(%d)", e.Range.Start)
	case e.IsInsert():
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	case e.IsDelete():
		return fmt.Sprintf("Delete%s", e.Range.String())
	default:
		return fmt.Sprintf("Replace%s with %q", e.Range.String(), e.NewText)
	}
}

// IsInsert returns true if this is a pure insertion (empty range).
func (e Edit) IsInsert() bool {
	return e.Range.IsEmpty() && e.NewText != ""
}

// IsDelete returns true if this is a pure deletion (empty replacement).
func (e Edit) IsDelete() bool {
	return !e.Range.IsEmpty() && e.NewText == ""
}

// IsNoOp returns true if this edit does nothing.
func (e Edit) IsNoOp() bool {
	return e.Range.IsEmpty() && e.NewText == ""
}

// Delta returns the change in buffer length caused by this edit.
func (e Edit) Delta() ByteOffset {
	return ByteOffset(len(e.NewText)) - e.Range.Len()
}

// EditResult describes the transition from one buffer snapshot to its
// successor. Overlay structures use it to shift their stored positions.
type EditResult struct {
	OldRange Range  // The range that was replaced, in the old offset space
	NewRange Range  // The resulting range, in the new offset space
	OldText  string // The text that was replaced (if any)
	Delta    int64  // Change in buffer length
}
