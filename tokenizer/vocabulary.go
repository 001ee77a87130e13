package tokenizer

import "sort"

// unknownID is the conventional ID emitted for any piece that cannot be
// mapped to the vocabulary. Callers must reserve ID 0 for it.
const unknownID int32 = 0

// Vocabulary maps subword pieces to integer IDs and holds the merge-rank
// table used by the Merge Engine. It is built once and read by every
// Encode/Decode call; nothing here mutates after construction.
type Vocabulary struct {
	size int

	byPiece map[string]int32
	byID    []string

	// mergeRank maps the concatenation of a pair's two pieces to the rank
	// at which they merge. Lower rank merges earlier.
	mergeRank map[string]int

	addedVocab []string // sorted descending by byte length, longest first
}

// NewVocabulary builds a Vocabulary from a piece->id map and a bpe_ranks
// table keyed by the ordered (left, right) pair. addedVocab is copied and
// sorted by descending byte length so the longest literal always wins.
func NewVocabulary(vocab map[string]int32, bpeRanks map[[2]string]int, addedVocab []string) *Vocabulary {
	byID := make([]string, 0, len(vocab))
	maxID := int32(-1)
	for _, id := range vocab {
		if id > maxID {
			maxID = id
		}
	}
	if maxID >= 0 {
		byID = make([]string, maxID+1)
		for piece, id := range vocab {
			if id >= 0 {
				byID[id] = piece
			}
		}
	}

	byPiece := make(map[string]int32, len(vocab))
	for piece, id := range vocab {
		byPiece[piece] = id
	}

	mergeRank := make(map[string]int, len(bpeRanks))
	for pair, rank := range bpeRanks {
		mergeRank[pair[0]+pair[1]] = rank
	}

	av := append([]string(nil), addedVocab...)
	sort.SliceStable(av, func(i, j int) bool { return len(av[i]) > len(av[j]) })

	return &Vocabulary{
		size:       len(vocab),
		byPiece:    byPiece,
		byID:       byID,
		mergeRank:  mergeRank,
		addedVocab: av,
	}
}

// Size returns the vocabulary size V used to classify IDs as used/unused.
func (v *Vocabulary) Size() int { return v.size }

// Encode returns the ID for piece, or -1 if piece is not in the vocabulary.
func (v *Vocabulary) Encode(piece string) int32 {
	if id, ok := v.byPiece[piece]; ok {
		return id
	}
	return -1
}

// Decode returns the piece for id, or "" and false if id is out of range.
func (v *Vocabulary) Decode(id int32) (string, bool) {
	if id < 0 || int(id) >= len(v.byID) {
		return "", false
	}
	return v.byID[id], true
}

// Used reports whether id falls inside [0, V) — the classification the
// merge engine and re-segmentation use to decide whether a merged piece is
// directly emittable or must be broken apart further.
func (v *Vocabulary) Used(id int32) bool {
	return id >= 0 && int(id) < v.size
}

// MergeRank returns the rank of the pair (left, right) and whether it is a
// known merge. The key is the concatenation left+right, per the data model.
func (v *Vocabulary) MergeRank(left, right string) (int, bool) {
	rank, ok := v.mergeRank[left+right]
	return rank, ok
}

// AddedVocab returns the added-vocabulary literals in merge order (longest
// byte length first).
func (v *Vocabulary) AddedVocab() []string {
	return v.addedVocab
}

// MergeCount returns the number of entries in the merge table.
func (v *Vocabulary) MergeCount() int {
	return len(v.mergeRank)
}

// AddedVocabCount returns the number of added-vocabulary literals.
func (v *Vocabulary) AddedVocabCount() int {
	return len(v.addedVocab)
}
