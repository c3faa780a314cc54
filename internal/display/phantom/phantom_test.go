package phantom

import (
	"testing"

	"github.com/kestrel-edit/kestrel/internal/display/diagnostic"
	"github.com/kestrel-edit/kestrel/internal/engine/buffer"
)

func testBuffer(t *testing.T) *buffer.Buffer {
	t.Helper()
	return buffer.New("let x = compute(a, b)\nnext line\n")
}

func TestRenderedLineWithInlayHint(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()
	ix.SetInlayHints([]Hint{{Offset: 5, Text: ": i32"}})

	got, err := ix.RenderedLine(buf, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	want := "let x: i32 = compute(a, b)"
	if got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
}

func TestSpansForLineSegments(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()
	ix.SetInlayHints([]Hint{{Offset: 5, Text: ": i32"}})

	spans, err := ix.SpansForLine(buf, 0)
	if err != nil {
		t.Fatalf("SpansForLine: %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("span count = %d, want 3", len(spans))
	}
	if spans[0].Kind != KindContent || spans[0].Text != "let x" {
		t.Errorf("span 0 = %v %q", spans[0].Kind, spans[0].Text)
	}
	if spans[1].Kind != KindPhantom || spans[1].Source != SourceInlay || spans[1].Text != ": i32" {
		t.Errorf("span 1 = %v %v %q", spans[1].Kind, spans[1].Source, spans[1].Text)
	}
	if spans[1].Origin.Start != 5 || spans[1].Origin.End != 5 {
		t.Errorf("phantom origin = %v, want anchor at 5", spans[1].Origin)
	}
	if spans[1].Final.Start != 5 || spans[1].Final.End != 10 {
		t.Errorf("phantom final = %v, want [5,10)", spans[1].Final)
	}
	if spans[2].Kind != KindContent || spans[2].Origin.Start != 5 {
		t.Errorf("span 2 = %v origin %v", spans[2].Kind, spans[2].Origin)
	}
}

func TestSpansForLineNoPhantoms(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()

	spans, err := ix.SpansForLine(buf, 1)
	if err != nil {
		t.Fatalf("SpansForLine: %v", err)
	}
	if len(spans) != 1 {
		t.Fatalf("span count = %d, want 1", len(spans))
	}
	if spans[0].Kind != KindContent || spans[0].Text != "next line" {
		t.Fatalf("span = %v %q", spans[0].Kind, spans[0].Text)
	}
}

func TestColumnMapping(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()
	ix.SetInlayHints([]Hint{{Offset: 5, Text: ": i32"}})

	tests := []struct {
		name      string
		originCol uint32
		wantFinal uint32
	}{
		{"before anchor", 3, 3},
		{"at anchor stays before phantom", 5, 5},
		{"after anchor shifts by phantom length", 6, 11},
		{"line end", 21, 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.OriginToFinal(buf, 0, tt.originCol)
			if err != nil {
				t.Fatalf("OriginToFinal: %v", err)
			}
			if got != tt.wantFinal {
				t.Fatalf("OriginToFinal(%d) = %d, want %d", tt.originCol, got, tt.wantFinal)
			}
		})
	}

	back := []struct {
		name       string
		finalCol   uint32
		wantOrigin uint32
	}{
		{"content before phantom", 3, 3},
		{"inside phantom collapses to anchor", 7, 5},
		{"content after phantom", 11, 6},
		{"past rendered end", 40, 21},
	}
	for _, tt := range back {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ix.FinalToOrigin(buf, 0, tt.finalCol)
			if err != nil {
				t.Fatalf("FinalToOrigin: %v", err)
			}
			if got != tt.wantOrigin {
				t.Fatalf("FinalToOrigin(%d) = %d, want %d", tt.finalCol, got, tt.wantOrigin)
			}
		})
	}
}

func TestProducerPriorityAtSharedAnchor(t *testing.T) {
	buf := testBuffer(t)
	set := diagnostic.NewSet()
	set.Replace([]diagnostic.Span{
		{Range: buffer.NewRange(0, 5), Severity: diagnostic.SeverityWarning, Message: "w"},
	})

	ix := NewIndex()
	ix.SetDiagnostics(set)
	ix.SetInlayHints([]Hint{{Offset: 5, Text: "<h>"}})
	ix.SetPreedit(5, "<p>")

	got, err := ix.RenderedLine(buf, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	want := "let x  w<h><p> = compute(a, b)"
	if got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
}

func TestInlayRegistrationOrder(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()
	ix.SetInlayHints([]Hint{
		{Offset: 5, Text: "first"},
		{Offset: 5, Text: "second"},
	})

	got, err := ix.RenderedLine(buf, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	want := "let xfirstsecond = compute(a, b)"
	if got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
}

func TestDiagnosticTrailerAtEndPosition(t *testing.T) {
	buf := testBuffer(t)
	set := diagnostic.NewSet()
	set.Replace([]diagnostic.Span{
		{Range: buffer.NewRange(8, 15), Severity: diagnostic.SeverityError, Message: "undefined"},
	})

	ix := NewIndex()
	ix.SetDiagnostics(set)

	got, err := ix.RenderedLine(buf, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	want := "let x = compute  undefined(a, b)"
	if got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}

	ix.SetShowDiagnostics(false)
	got, err = ix.RenderedLine(buf, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	if got != "let x = compute(a, b)" {
		t.Fatalf("rendered with trailers off = %q", got)
	}
}

func TestApplyEditShiftsAndDropsAnchors(t *testing.T) {
	buf := testBuffer(t)
	ix := NewIndex()
	ix.SetInlayHints([]Hint{
		{Offset: 5, Text: "a"},
		{Offset: 18, Text: "b"},
	})
	ix.SetPreedit(10, "p")

	// Delete "x = " at [4,8).
	next, res, err := buf.Apply(buffer.NewDelete(4, 8))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ix.ApplyEdit(res)

	if len(ix.hints) != 1 {
		t.Fatalf("hint count = %d, want 1 after interior drop", len(ix.hints))
	}
	if ix.hints[0].Offset != 14 {
		t.Errorf("hint offset = %d, want 14", ix.hints[0].Offset)
	}
	if ix.pre == nil || ix.pre.offset != 6 {
		t.Errorf("preedit = %+v, want offset 6", ix.pre)
	}

	got, err := ix.RenderedLine(next, 0)
	if err != nil {
		t.Fatalf("RenderedLine: %v", err)
	}
	want := "let copmpute(a,b b)"
	if got != want {
		t.Fatalf("rendered = %q, want %q", got, want)
	}
}
