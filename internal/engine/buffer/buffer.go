package buffer

import (
	"errors"
	"sort"
	"unicode/utf8"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrLineOutOfRange   = errors.New("line out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Buffer is an immutable snapshot of text with a newline index.
// All read operations are safe for concurrent use; Apply returns a new
// snapshot and never modifies the receiver.
type Buffer struct {
	text string

	// lineStarts[i] is the byte offset where line i begins.
	// lineStarts[0] is always 0; a trailing newline opens a final empty line.
	lineStarts []ByteOffset

	revision uint64
}

// New creates a buffer snapshot from the given text.
func New(text string) *Buffer {
	return &Buffer{
		text:       text,
		lineStarts: indexLines(text),
	}
}

// indexLines records the start offset of every line.
func indexLines(text string) []ByteOffset {
	starts := make([]ByteOffset, 1, 16)
	starts[0] = 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	return starts
}

// Text returns the full buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	return ByteOffset(len(b.text))
}

// Revision returns the snapshot's revision number. It increments by one on
// every Apply along a snapshot chain.
func (b *Buffer) Revision() uint64 {
	return b.revision
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	return uint32(len(b.lineStarts))
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) (ByteOffset, error) {
	if int(line) >= len(b.lineStarts) {
		return 0, ErrLineOutOfRange
	}
	return b.lineStarts[line], nil
}

// LineEndOffset returns the byte offset of the end of a line, before its
// line terminator (LF or CRLF).
func (b *Buffer) LineEndOffset(line uint32) (ByteOffset, error) {
	if int(line) >= len(b.lineStarts) {
		return 0, ErrLineOutOfRange
	}
	if int(line) == len(b.lineStarts)-1 {
		return ByteOffset(len(b.text)), nil
	}
	end := b.lineStarts[line+1] - 1 // before '\n'
	if end > b.lineStarts[line] && b.text[end-1] == '\r' {
		end-- // before '\r' of a CRLF pair
	}
	return end, nil
}

// LineText returns the text of a line without its line terminator.
func (b *Buffer) LineText(line uint32) (string, error) {
	start, err := b.LineStartOffset(line)
	if err != nil {
		return "", err
	}
	end, err := b.LineEndOffset(line)
	if err != nil {
		return "", err
	}
	return b.text[start:end], nil
}

// LineOf returns the line containing the given offset.
// Len() belongs to the last line.
func (b *Buffer) LineOf(offset ByteOffset) (uint32, error) {
	if offset < 0 || offset > ByteOffset(len(b.text)) {
		return 0, ErrOffsetOutOfRange
	}
	// First line start strictly greater than offset; the line is the one before it.
	i := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	})
	return uint32(i - 1), nil
}

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) (Point, error) {
	line, err := b.LineOf(offset)
	if err != nil {
		return Point{}, err
	}
	return Point{Line: line, Column: uint32(offset - b.lineStarts[line])}, nil
}

// PointToOffset converts line/column to a byte offset.
// The column is clamped to the line's length including its terminator.
func (b *Buffer) PointToOffset(p Point) (ByteOffset, error) {
	start, err := b.LineStartOffset(p.Line)
	if err != nil {
		return 0, err
	}
	var lineLen ByteOffset
	if int(p.Line) == len(b.lineStarts)-1 {
		lineLen = ByteOffset(len(b.text)) - start
	} else {
		lineLen = b.lineStarts[p.Line+1] - start
	}
	col := ByteOffset(p.Column)
	if col > lineLen {
		col = lineLen
	}
	return start + col, nil
}

// Slice returns the text in [start, end).
func (b *Buffer) Slice(start, end ByteOffset) (string, error) {
	if start < 0 || start > end || end > ByteOffset(len(b.text)) {
		return "", ErrRangeInvalid
	}
	return b.text[start:end], nil
}

// RuneAt returns the rune at the given byte offset and its byte size.
// Returns utf8.RuneError and size 0 if the offset is out of range.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int) {
	if offset < 0 || offset >= ByteOffset(len(b.text)) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(b.text[offset:])
}

// Apply applies an edit and returns the successor snapshot together with the
// EditResult describing the transition. The receiver is unchanged.
func (b *Buffer) Apply(edit Edit) (*Buffer, EditResult, error) {
	r := edit.Range
	if r.Start < 0 || r.Start > r.End || r.End > ByteOffset(len(b.text)) {
		return nil, EditResult{}, ErrRangeInvalid
	}
	if edit.IsNoOp() {
		return b, EditResult{OldRange: r, NewRange: r}, nil
	}

	oldText := b.text[r.Start:r.End]
	next := &Buffer{
		text:     b.text[:r.Start] + edit.NewText + b.text[r.End:],
		revision: b.revision + 1,
	}
	next.lineStarts = indexLines(next.text)

	res := EditResult{
		OldRange: r,
		NewRange: Range{Start: r.Start, End: r.Start + ByteOffset(len(edit.NewText))},
		OldText:  oldText,
		Delta:    edit.Delta(),
	}
	return next, res, nil
}
