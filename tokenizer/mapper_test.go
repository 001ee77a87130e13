package tokenizer

import (
	"slices"
	"testing"
)

func testVocabForMapper() *Vocabulary {
	return NewVocabulary(map[string]int32{
		"a": 1,
		"b": 2,
	}, nil, nil)
}

func TestMapToIDsUnknownFallback(t *testing.T) {
	vocab := testVocabForMapper()
	got := mapToIDs(vocab, []string{"a", "z", "b"})
	want := []int32{1, unknownID, 2}
	if !slices.Equal(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestDecodePiecesSkipsOutOfRangeAndEmpty(t *testing.T) {
	vocab := testVocabForMapper()
	// ID 0 is inside the reverse vocabulary but holds an empty piece.
	got := decodePieces(vocab, []int32{1, 99, -1, 0, 2}, "", nil)
	want := "ab"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodePiecesAppliesReverseSubstitution(t *testing.T) {
	vocab := NewVocabulary(map[string]int32{"x": 1}, nil, nil)
	reverse := sortedSubstitutions(map[string]string{"x": "hello"})

	got := decodePieces(vocab, []int32{1}, "", reverse)
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestDecodePiecesExpandsSentinelToSpace(t *testing.T) {
	vocab := NewVocabulary(map[string]int32{"▁a▁b": 1}, nil, nil)

	got := decodePieces(vocab, []int32{1}, "▁", nil)
	if got != " a b" {
		t.Errorf("got %q, want %q", got, " a b")
	}
}
