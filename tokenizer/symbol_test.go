package tokenizer

import (
	"slices"
	"testing"
)

func TestNewSymbolChainLinks(t *testing.T) {
	symbols := newSymbolChain([]string{"a", "b", "c"})

	if symbols[0].prev != sentinelIndex {
		t.Errorf("head prev = %d, want sentinel", symbols[0].prev)
	}
	if symbols[len(symbols)-1].next != sentinelIndex {
		t.Errorf("tail next = %d, want sentinel", symbols[len(symbols)-1].next)
	}
	if symbols[1].prev != 0 || symbols[1].next != 2 {
		t.Errorf("middle symbol links = (%d, %d), want (0, 2)", symbols[1].prev, symbols[1].next)
	}
}

func TestLiveGatherSkipsEmptied(t *testing.T) {
	symbols := newSymbolChain([]string{"a", "b", "c"})
	symbols[1].piece = ""
	symbols[0].next = 2
	symbols[2].prev = 0

	got := liveGather(symbols)
	want := []string{"a", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}
}

func TestLiveGatherEmptyChain(t *testing.T) {
	if got := liveGather(nil); got != nil {
		t.Errorf("got %#v, want nil", got)
	}
}
