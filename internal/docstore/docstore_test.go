package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndGet(t *testing.T) {
	s := New()
	s.Open("file:///a.rs", "fn main() {}\n", 1, "rust")

	doc, ok := s.Get("file:///a.rs")
	require.True(t, ok)
	assert.Equal(t, int32(1), doc.Version)
	assert.Equal(t, "rust", doc.LanguageID)
	assert.Equal(t, "fn main() {}\n", doc.Text)
}

func TestGetUnknownURI(t *testing.T) {
	s := New()
	_, ok := s.Get("file:///missing.rs")
	assert.False(t, ok)
}

func TestApplyChangesFullReplace(t *testing.T) {
	s := New()
	s.Open("file:///a.rs", "old", 1, "rust")

	s.ApplyChanges("file:///a.rs", 2, []ContentChange{{HasRange: false, Text: "new"}})

	doc, ok := s.Get("file:///a.rs")
	require.True(t, ok)
	assert.Equal(t, int32(2), doc.Version)
	assert.Equal(t, "new", doc.Text)
}

func TestApplyChangesRanged(t *testing.T) {
	s := New()
	s.Open("file:///a.rs", "line0\nline1\nline2\n", 1, "rust")

	s.ApplyChanges("file:///a.rs", 2, []ContentChange{{
		HasRange:  true,
		StartLine: 1, StartChar: 0,
		EndLine: 1, EndChar: 5,
		Text: "LINE1",
	}})

	doc, ok := s.Get("file:///a.rs")
	require.True(t, ok)
	assert.Equal(t, "line0\nLINE1\nline2\n", doc.Text)
}

func TestApplyChangesUnknownURIIsNoop(t *testing.T) {
	s := New()
	assert.NotPanics(t, func() {
		s.ApplyChanges("file:///missing.rs", 2, []ContentChange{{HasRange: false, Text: "x"}})
	})
}

func TestPositionToOffsetClampsOutOfRange(t *testing.T) {
	text := "abc\ndef\n"
	assert.Equal(t, len(text), positionToOffset(text, 99, 99))
	assert.Equal(t, 3, positionToOffset(text, 0, 99))
	assert.Equal(t, 0, positionToOffset(text, 0, -5))
}

func TestApplyChangesMultipleInOrder(t *testing.T) {
	s := New()
	s.Open("file:///a.rs", "abc", 1, "rust")

	s.ApplyChanges("file:///a.rs", 2, []ContentChange{
		{HasRange: true, StartLine: 0, StartChar: 0, EndLine: 0, EndChar: 1, Text: "X"},
		{HasRange: true, StartLine: 0, StartChar: 1, EndLine: 0, EndChar: 2, Text: "Y"},
	})

	doc, ok := s.Get("file:///a.rs")
	require.True(t, ok)
	assert.Equal(t, "XYc", doc.Text)
}
