package tokenizer

// sentinelIndex marks "no such index" for prev/next links, matching the
// teacher's convention of using -1 rather than a boxed option type.
const sentinelIndex = -1

// symbol is one entry of the index-linked sequence shared by the
// Added-Vocabulary Merger and the Merge Engine. Removing a symbol is done
// by clearing piece and relinking its neighbors — the backing array never
// shrinks, so indices recorded earlier (e.g. in a Candidate) stay valid for
// the staleness check even after the symbol they named is gone.
type symbol struct {
	piece      string
	prev, next int
	frozen     bool
}

// newSymbolChain lays pieces out as a doubly linked chain of symbols with
// sequential indices, none frozen.
func newSymbolChain(pieces []string) []symbol {
	symbols := make([]symbol, len(pieces))
	for i, p := range pieces {
		symbols[i] = symbol{
			piece: p,
			prev:  i - 1,
			next:  i + 1,
		}
	}
	if n := len(symbols); n > 0 {
		symbols[0].prev = sentinelIndex
		symbols[n-1].next = sentinelIndex
	}
	return symbols
}

// liveGather walks the chain from index 0 — which, since nothing ever links
// to it as a right-hand operand, always holds a live piece for as long as
// the chain is non-empty — and returns the surviving pieces in order.
func liveGather(symbols []symbol) []string {
	if len(symbols) == 0 {
		return nil
	}
	out := make([]string, 0, len(symbols))
	for idx := 0; idx != sentinelIndex; idx = symbols[idx].next {
		if symbols[idx].piece != "" {
			out = append(out, symbols[idx].piece)
		}
	}
	return out
}
