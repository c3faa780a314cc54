package diagnostic

import (
	"testing"

	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

func sampleSet() *Set {
	s := NewSet()
	s.Replace([]Span{
		{Range: buffer.NewRange(20, 30), Severity: SeverityHint, Message: "unused parameter"},
		{Range: buffer.NewRange(4, 10), Severity: SeverityWarning, Message: "deprecated call"},
		{Range: buffer.NewRange(6, 8), Severity: SeverityError, Message: "undefined name"},
	})
	return s
}

func TestReplaceSortsByStart(t *testing.T) {
	s := sampleSet()
	spans := s.Spans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Range.Start > spans[i].Range.Start {
			t.Errorf("spans not ordered: %v before %v", spans[i-1], spans[i])
		}
	}
}

func TestMostSevereAt(t *testing.T) {
	s := sampleSet()

	tests := []struct {
		offset   buffer.ByteOffset
		severity Severity
		found    bool
	}{
		{5, SeverityWarning, true},
		{7, SeverityError, true},
		{8, SeverityError, true}, // touching the error's end
		{10, SeverityWarning, true},
		{15, 0, false},
		{25, SeverityHint, true},
	}

	for _, tt := range tests {
		got, found := s.MostSevereAt(tt.offset)
		if found != tt.found {
			t.Errorf("MostSevereAt(%d) found = %v, want %v", tt.offset, found, tt.found)
			continue
		}
		if found && got.Severity != tt.severity {
			t.Errorf("MostSevereAt(%d) = %s, want %s", tt.offset, got.Severity, tt.severity)
		}
	}
}

func TestMostSevereInRange(t *testing.T) {
	s := sampleSet()

	got, found := s.MostSevereInRange(buffer.NewRange(0, 50))
	if !found || got.Severity != SeverityError {
		t.Errorf("full range: got %v found=%v, want error", got, found)
	}

	got, found = s.MostSevereInRange(buffer.NewRange(12, 25))
	if !found || got.Severity != SeverityHint {
		t.Errorf("tail range: got %v found=%v, want hint", got, found)
	}

	if _, found = s.MostSevereInRange(buffer.NewRange(12, 18)); found {
		t.Error("range without diagnostics should find nothing")
	}
}

func TestOnLine(t *testing.T) {
	buf := buffer.New("aaaa\nbbbb\ncccc")
	s := NewSet()
	s.Replace([]Span{
		{Range: buffer.NewRange(2, 7), Severity: SeverityError, Message: "spans two lines"},
		{Range: buffer.NewRange(11, 13), Severity: SeverityHint, Message: "third line"},
	})

	spans, err := s.OnLine(buf, 1)
	if err != nil {
		t.Fatalf("OnLine failed: %v", err)
	}
	if len(spans) != 1 || spans[0].Severity != SeverityError {
		t.Errorf("line 1: got %v, want the spanning error", spans)
	}

	if _, err := s.OnLine(buf, 9); err == nil {
		t.Error("expected error for out-of-range line")
	}
}

func TestCounts(t *testing.T) {
	s := sampleSet()
	c := s.Counts()
	want := Counts{Errors: 1, Warnings: 1, Hints: 1}
	if c != want {
		t.Errorf("Counts = %+v, want %+v", c, want)
	}
	if c.Total() != 3 {
		t.Errorf("Total = %d, want 3", c.Total())
	}
}

func TestApplyEditShiftsAndDrops(t *testing.T) {
	buf := buffer.New("0123456789abcdefghij0123456789")
	s := sampleSet()

	// Delete the error's range entirely; the others shift.
	next, res, err := buf.Apply(buffer.NewDelete(5, 9))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	_ = next
	s.ApplyEdit(res)

	if s.Len() != 2 {
		t.Fatalf("expected deleted diagnostic to drop, have %d", s.Len())
	}
	spans := s.Spans()
	if spans[0].Range != buffer.NewRange(4, 6) {
		t.Errorf("warning range: got %v, want [4:6)", spans[0].Range)
	}
	if spans[1].Range != buffer.NewRange(16, 26) {
		t.Errorf("hint range: got %v, want [16:26)", spans[1].Range)
	}
}
