package buffer

import (
	"errors"
	"testing"
)

func TestNewEmptyBuffer(t *testing.T) {
	b := New("")
	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	text, err := b.LineText(0)
	if err != nil {
		t.Fatalf("LineText(0) failed: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty line, got %q", text)
	}
}

func TestLineOffsets(t *testing.T) {
	b := New("one\ntwo\nthree")

	tests := []struct {
		line  uint32
		start ByteOffset
		end   ByteOffset
		text  string
	}{
		{0, 0, 3, "one"},
		{1, 4, 7, "two"},
		{2, 8, 13, "three"},
	}

	for _, tt := range tests {
		start, err := b.LineStartOffset(tt.line)
		if err != nil {
			t.Fatalf("LineStartOffset(%d) failed: %v", tt.line, err)
		}
		if start != tt.start {
			t.Errorf("line %d start: got %d, want %d", tt.line, start, tt.start)
		}
		end, err := b.LineEndOffset(tt.line)
		if err != nil {
			t.Fatalf("LineEndOffset(%d) failed: %v", tt.line, err)
		}
		if end != tt.end {
			t.Errorf("line %d end: got %d, want %d", tt.line, end, tt.end)
		}
		text, err := b.LineText(tt.line)
		if err != nil {
			t.Fatalf("LineText(%d) failed: %v", tt.line, err)
		}
		if text != tt.text {
			t.Errorf("line %d text: got %q, want %q", tt.line, text, tt.text)
		}
	}
}

func TestLineOffsetsCRLF(t *testing.T) {
	b := New("one\r\ntwo\r\n")

	if b.LineCount() != 3 {
		t.Fatalf("expected 3 lines, got %d", b.LineCount())
	}

	end, err := b.LineEndOffset(0)
	if err != nil {
		t.Fatalf("LineEndOffset(0) failed: %v", err)
	}
	if end != 3 {
		t.Errorf("line 0 should end before CR at 3, got %d", end)
	}

	text, err := b.LineText(1)
	if err != nil {
		t.Fatalf("LineText(1) failed: %v", err)
	}
	if text != "two" {
		t.Errorf("line 1: got %q, want %q", text, "two")
	}

	// Trailing newline opens an empty final line.
	text, err = b.LineText(2)
	if err != nil {
		t.Fatalf("LineText(2) failed: %v", err)
	}
	if text != "" {
		t.Errorf("line 2 should be empty, got %q", text)
	}
}

func TestLineOutOfRange(t *testing.T) {
	b := New("one")
	if _, err := b.LineText(1); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("expected ErrLineOutOfRange, got %v", err)
	}
	if _, err := b.LineStartOffset(5); !errors.Is(err, ErrLineOutOfRange) {
		t.Errorf("expected ErrLineOutOfRange, got %v", err)
	}
}

func TestOffsetToPoint(t *testing.T) {
	b := New("ab\ncde\n")

	tests := []struct {
		offset ByteOffset
		want   Point
	}{
		{0, Point{0, 0}},
		{2, Point{0, 2}},
		{3, Point{1, 0}},
		{6, Point{1, 3}},
		{7, Point{2, 0}},
	}

	for _, tt := range tests {
		got, err := b.OffsetToPoint(tt.offset)
		if err != nil {
			t.Fatalf("OffsetToPoint(%d) failed: %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("OffsetToPoint(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}

	if _, err := b.OffsetToPoint(8); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if _, err := b.OffsetToPoint(-1); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange for negative offset, got %v", err)
	}
}

func TestPointToOffsetRoundTrip(t *testing.T) {
	b := New("alpha\nbeta\r\ngamma")

	for off := ByteOffset(0); off <= b.Len(); off++ {
		p, err := b.OffsetToPoint(off)
		if err != nil {
			t.Fatalf("OffsetToPoint(%d) failed: %v", off, err)
		}
		back, err := b.PointToOffset(p)
		if err != nil {
			t.Fatalf("PointToOffset(%v) failed: %v", p, err)
		}
		if back != off {
			t.Errorf("round trip %d -> %v -> %d", off, p, back)
		}
	}
}

func TestRuneAt(t *testing.T) {
	b := New("aéz") // 'é' is two bytes

	r, size := b.RuneAt(1)
	if r != 'é' || size != 2 {
		t.Errorf("RuneAt(1) = %q size %d, want é size 2", r, size)
	}

	_, size = b.RuneAt(b.Len())
	if size != 0 {
		t.Errorf("RuneAt at end should report size 0, got %d", size)
	}
}

func TestApplyInsert(t *testing.T) {
	b := New("hello world")
	next, res, err := b.Apply(NewInsert(5, ","))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if next.Text() != "hello, world" {
		t.Errorf("got %q, want %q", next.Text(), "hello, world")
	}
	if b.Text() != "hello world" {
		t.Errorf("receiver mutated: %q", b.Text())
	}
	if res.Delta != 1 {
		t.Errorf("delta: got %d, want 1", res.Delta)
	}
	if res.NewRange != (Range{Start: 5, End: 6}) {
		t.Errorf("new range: got %v", res.NewRange)
	}
	if next.Revision() != b.Revision()+1 {
		t.Errorf("revision should increment")
	}
}

func TestApplyDeleteAcrossLines(t *testing.T) {
	b := New("one\ntwo\nthree")
	next, res, err := b.Apply(NewDelete(2, 9))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if next.Text() != "onhree" {
		t.Errorf("got %q, want %q", next.Text(), "onhree")
	}
	if next.LineCount() != 1 {
		t.Errorf("expected 1 line after delete, got %d", next.LineCount())
	}
	if res.OldText != "e\ntwo\nt" {
		t.Errorf("old text: got %q", res.OldText)
	}
	if res.Delta != -7 {
		t.Errorf("delta: got %d, want -7", res.Delta)
	}
}

func TestApplyNoOp(t *testing.T) {
	b := New("one\ntwo\n")
	next, res, err := b.Apply(NewDelete(3, 3))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if next != b {
		t.Error("no-op edit should return the same snapshot")
	}
	if res.Delta != 0 || res.OldText != "" {
		t.Errorf("no-op result = %+v", res)
	}
	if res.OldRange != (Range{Start: 3, End: 3}) || res.NewRange != res.OldRange {
		t.Errorf("no-op ranges = %+v", res)
	}
}

func TestApplyInvalidRange(t *testing.T) {
	b := New("abc")
	if _, _, err := b.Apply(NewDelete(2, 9)); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
	if _, _, err := b.Apply(NewDelete(2, 1)); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid for inverted range, got %v", err)
	}
}

func TestRangeOperations(t *testing.T) {
	a := NewRange(2, 8)
	b := NewRange(5, 12)

	if !a.Overlaps(b) {
		t.Error("ranges should overlap")
	}
	if got := a.Union(b); got != (Range{Start: 2, End: 12}) {
		t.Errorf("union: got %v", got)
	}
	if !a.Contains(2) || a.Contains(8) {
		t.Error("Contains should be inclusive of start, exclusive of end")
	}
}
