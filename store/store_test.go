package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexigo/spmbpe/tokenizer"
)

func testConfig() *tokenizer.Config {
	return &tokenizer.Config{
		BPERanks: map[[2]string]int{
			{"a", "b"}: 0,
			{"b", "c"}: 1,
		},
		Vocab: map[string]int32{
			"a": 1,
			"b": 2,
			"c": 3,
			"ab": 4,
		},
		AddedVocab:             []string{"xyz"},
		Sentinel:               "_",
		TokenReplaceMap:        map[string]string{"foo": "bar"},
		ReverseTokenReplaceMap: map[string]string{"bar": "foo"},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spmbpe.db")

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	want := testConfig()
	require.NoError(t, st.Save(want))

	got, err := st.Load()
	require.NoError(t, err)

	require.Equal(t, want.BPERanks, got.BPERanks)
	require.Equal(t, want.Vocab, got.Vocab)
	require.Equal(t, want.AddedVocab, got.AddedVocab)
	require.Equal(t, want.Sentinel, got.Sentinel)
	require.Equal(t, want.DisableSentinel, got.DisableSentinel)
	require.Equal(t, want.TokenReplaceMap, got.TokenReplaceMap)
	require.Equal(t, want.ReverseTokenReplaceMap, got.ReverseTokenReplaceMap)
}

func TestSaveOverwritesPreviousConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spmbpe.db")

	st, err := Open(path)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Save(testConfig()))

	second := &tokenizer.Config{
		Vocab: map[string]int32{"z": 1},
	}
	require.NoError(t, st.Save(second))

	got, err := st.Load()
	require.NoError(t, err)
	require.Equal(t, map[string]int32{"z": 1}, got.Vocab)
	require.Empty(t, got.AddedVocab)
}

func TestOpenCreatesSchemaIdempotently(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spmbpe.db")

	st1, err := Open(path)
	require.NoError(t, err)
	st1.Close()

	st2, err := Open(path)
	require.NoError(t, err)
	defer st2.Close()
}
