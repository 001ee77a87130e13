package tokenizer

import (
	"math/rand/v2"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/emirpasic/gods/utils"
)

// candidate is one agenda entry: a proposed merge of the symbols at left and
// right, with the rank it would merge at and the byte length the merged
// piece must still have for this candidate to be valid (the staleness
// check). mergedLen doubles as the size recorded at enqueue time so a pop
// can detect that left or right has since grown or shrunk underneath it.
type candidate struct {
	left, right int
	rank        int
	mergedLen   int
}

func candidateComparator(a, b interface{}) int {
	ca, cb := a.(*candidate), b.(*candidate)
	if ca.rank != cb.rank {
		return ca.rank - cb.rank
	}
	// Tie-break: leftmost merge wins, so it must pop first out of a
	// min-ordered heap.
	return ca.left - cb.left
}

// runMergeEngine drives the priority-queue BPE main loop described in the
// Merge Engine component: it repeatedly pops the highest-ranked live
// adjacent pair, merges it (unless dropped by dropout), and re-enqueues the
// pairs newly made adjacent by that merge. It returns the final piece
// sequence after out-of-vocabulary re-segmentation.
func runMergeEngine(vocab *Vocabulary, symbols []symbol, alpha float32, rng *rand.Rand) []string {
	if len(symbols) == 0 {
		return nil
	}

	reverseMerge := make(map[string][2]string)
	agenda := binaryheap.NewWith(utils.Comparator(candidateComparator))

	maybeEnqueue := func(left, right int) {
		if left == sentinelIndex || right == sentinelIndex {
			return
		}
		if symbols[left].frozen || symbols[right].frozen {
			return
		}
		l, r := symbols[left].piece, symbols[right].piece
		if l == "" || r == "" {
			return
		}
		merged := l + r
		rank, ok := vocab.MergeRank(l, r)
		if !ok {
			return
		}

		agenda.Push(&candidate{left: left, right: right, rank: rank, mergedLen: len(merged)})

		if id := vocab.Encode(merged); !vocab.Used(id) {
			reverseMerge[merged] = [2]string{l, r}
		}
	}

	for i := 0; i+1 < len(symbols); i++ {
		maybeEnqueue(i, i+1)
	}

	for !agenda.Empty() {
		top, _ := agenda.Pop()
		c := top.(*candidate)
		L, R := c.left, c.right

		left, right := symbols[L].piece, symbols[R].piece
		if left == "" || right == "" || len(left)+len(right) != c.mergedLen {
			continue // stale
		}

		if skipMerge(alpha, rng) {
			continue
		}

		symbols[L].piece = left + right
		symbols[R].piece = ""

		prev, next := symbols[L].prev, symbols[R].next
		symbols[L].next = next
		if next != sentinelIndex {
			symbols[next].prev = L
		}

		maybeEnqueue(prev, L)
		maybeEnqueue(L, next)
	}

	result := make([]string, 0, len(symbols))
	for _, piece := range liveGather(symbols) {
		resegment(vocab, reverseMerge, piece, &result)
	}
	return result
}

// skipMerge implements the BPE-dropout decision: never skip at alpha<=0,
// always skip at alpha>=1, otherwise skip with probability alpha.
func skipMerge(alpha float32, rng *rand.Rand) bool {
	switch {
	case alpha <= 0:
		return false
	case alpha >= 1:
		return true
	default:
		return rng.Float64() < float64(alpha)
	}
}

// resegment recursively breaks a piece that fell outside the active
// vocabulary back along the last merge that produced it, appending only
// known or irreducible pieces to out.
func resegment(vocab *Vocabulary, reverseMerge map[string][2]string, piece string, out *[]string) {
	if id := vocab.Encode(piece); vocab.Used(id) {
		*out = append(*out, piece)
		return
	}

	halves, ok := reverseMerge[piece]
	if !ok {
		*out = append(*out, piece)
		return
	}

	resegment(vocab, reverseMerge, halves[0], out)
	resegment(vocab, reverseMerge, halves[1], out)
}
