package interval

import (
	"testing"

	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

// apply builds the EditResult for an edit against the given text.
func apply(t *testing.T, text string, edit buffer.Edit) buffer.EditResult {
	t.Helper()
	_, res, err := buffer.New(text).Apply(edit)
	if err != nil {
		t.Fatalf("apply %v: %v", edit, err)
	}
	return res
}

func TestShiftOffset(t *testing.T) {
	text := "0123456789"

	tests := []struct {
		name   string
		edit   buffer.Edit
		off    buffer.ByteOffset
		want   buffer.ByteOffset
		inside bool
	}{
		{"before insert", buffer.NewInsert(5, "xx"), 3, 3, false},
		{"at insert point", buffer.NewInsert(5, "xx"), 5, 5, false},
		{"after insert", buffer.NewInsert(5, "xx"), 7, 9, false},
		{"before delete", buffer.NewDelete(4, 7), 2, 2, false},
		{"at delete start", buffer.NewDelete(4, 7), 4, 4, false},
		{"inside delete", buffer.NewDelete(4, 7), 5, 4, true},
		{"at delete end", buffer.NewDelete(4, 7), 7, 4, false},
		{"after delete", buffer.NewDelete(4, 7), 9, 6, false},
		{"inside replace", buffer.NewEdit(buffer.NewRange(2, 6), "ab"), 4, 2, true},
		{"after replace", buffer.NewEdit(buffer.NewRange(2, 6), "ab"), 8, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apply(t, text, tt.edit)
			got, inside := ShiftOffset(tt.off, res)
			if got != tt.want || inside != tt.inside {
				t.Errorf("ShiftOffset(%d) = (%d, %v), want (%d, %v)",
					tt.off, got, inside, tt.want, tt.inside)
			}
		})
	}
}

func TestTransformRange(t *testing.T) {
	text := "0123456789abcdef"

	tests := []struct {
		name    string
		edit    buffer.Edit
		r       buffer.Range
		want    buffer.Range
		outcome Outcome
	}{
		{"untouched before", buffer.NewInsert(10, "x"), buffer.NewRange(2, 6), buffer.NewRange(2, 6), OutcomeShifted},
		{"shifted after", buffer.NewInsert(1, "xyz"), buffer.NewRange(4, 8), buffer.NewRange(7, 11), OutcomeShifted},
		{"grows around insert", buffer.NewInsert(5, "xx"), buffer.NewRange(2, 9), buffer.NewRange(2, 11), OutcomeShifted},
		{"interior deleted", buffer.NewDelete(3, 9), buffer.NewRange(4, 8), buffer.NewRange(3, 3), OutcomeDropped},
		{"exactly deleted", buffer.NewDelete(4, 8), buffer.NewRange(4, 8), buffer.NewRange(4, 4), OutcomeDropped},
		{"start clamped", buffer.NewDelete(2, 6), buffer.NewRange(4, 10), buffer.NewRange(2, 6), OutcomeClamped},
		{"end clamped", buffer.NewDelete(6, 12), buffer.NewRange(2, 8), buffer.NewRange(2, 6), OutcomeClamped},
		{"straddles replace", buffer.NewEdit(buffer.NewRange(4, 8), "zz"), buffer.NewRange(2, 10), buffer.NewRange(2, 8), OutcomeShifted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := apply(t, text, tt.edit)
			got, outcome := TransformRange(tt.r, res)
			if got != tt.want || outcome != tt.outcome {
				t.Errorf("TransformRange(%v) = (%v, %v), want (%v, %v)",
					tt.r, got, outcome, tt.want, tt.outcome)
			}
		})
	}
}

// Ranges must keep pointing at the same content after an unrelated edit.
func TestTransformPreservesContent(t *testing.T) {
	text := "alpha beta gamma delta"
	b := buffer.New(text)

	r := buffer.NewRange(6, 10) // "beta"
	edits := []buffer.Edit{
		buffer.NewInsert(0, ">> "),
		buffer.NewDelete(0, 2),
		buffer.NewEdit(buffer.NewRange(0, 5), "ALPHA"),
	}

	for _, edit := range edits {
		next, res, err := b.Apply(edit)
		if err != nil {
			t.Fatalf("apply %v: %v", edit, err)
		}
		moved, outcome := TransformRange(r, res)
		if outcome == OutcomeDropped {
			t.Fatalf("edit %v should not drop %v", edit, r)
		}
		got, err := next.Slice(moved.Start, moved.End)
		if err != nil {
			t.Fatalf("slice %v: %v", moved, err)
		}
		if got != "beta" {
			t.Errorf("after %v range %v holds %q, want %q", edit, moved, got, "beta")
		}
		b, r = next, moved
	}
}
