package tokenizer

import "strings"

// mergeAddedVocab greedily collapses every maximal-left, non-overlapping
// occurrence of each added-vocabulary literal into a single piece, longest
// literal first. It is the added-vocabulary counterpart to the Merge
// Engine: both operate over the same index-linked symbol array rather than
// a pointer-based linked list, per the design notes.
func mergeAddedVocab(pieces []string, addedVocab []string) []string {
	if len(addedVocab) == 0 || len(pieces) == 0 {
		return pieces
	}

	symbols := newSymbolChain(pieces)
	for _, entry := range addedVocab {
		codepoints := splitUTF8(entry)
		if len(codepoints) < 2 {
			// A single-codepoint entry has nothing to collapse.
			continue
		}
		collapseOccurrences(symbols, codepoints)
	}

	return liveGather(symbols)
}

// collapseOccurrences performs one left-to-right pass over symbols,
// replacing every maximal run of nodes whose pieces equal codepoints, in
// order, with a single node holding their concatenation. Matched nodes are
// never rescanned: the walk resumes at the node immediately following a
// replaced run.
func collapseOccurrences(symbols []symbol, codepoints []string) {
	want := len(codepoints)
	current := 0
	for current != sentinelIndex {
		match := current
		i := 0
		for i < want && match != sentinelIndex && symbols[match].piece == codepoints[i] {
			match = symbols[match].next
			i++
		}

		if i == want {
			current = spliceRun(symbols, current, match, codepoints)
		} else {
			current = symbols[current].next
		}
	}
}

// spliceRun collapses the run [start, end) into a single node at start
// holding the concatenation of codepoints, frees the interior nodes, and
// returns end — the node to resume scanning from.
func spliceRun(symbols []symbol, start, end int, codepoints []string) int {
	var sb strings.Builder
	for _, cp := range codepoints {
		sb.WriteString(cp)
	}

	for idx := symbols[start].next; idx != end; {
		next := symbols[idx].next
		symbols[idx].piece = ""
		symbols[idx].prev = sentinelIndex
		symbols[idx].next = sentinelIndex
		idx = next
	}

	symbols[start].piece = sb.String()
	symbols[start].next = end
	if end != sentinelIndex {
		symbols[end].prev = start
	}

	return end
}
