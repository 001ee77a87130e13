package tokenizer

import "strings"

// mapToIDs translates the final piece sequence to IDs: each piece is looked
// up in the vocabulary and its ID emitted on a hit, regardless of whether
// that ID falls inside [0,V) — a piece can be a genuine vocabulary entry
// with an ID the active V happens to exclude, and it still must round-trip.
// unknownID is reserved for pieces absent from the vocabulary entirely.
func mapToIDs(vocab *Vocabulary, pieces []string) []int32 {
	ids := make([]int32, len(pieces))
	for i, p := range pieces {
		if id := vocab.Encode(p); id != -1 {
			ids[i] = id
		} else {
			ids[i] = unknownID
		}
	}
	return ids
}

// decodePieces walks ids through the reverse vocabulary, applies the
// reverse-substitution map per piece, then reverses the sentinel
// substitution, and concatenates everything with no separator. IDs outside
// [0, len(reverse vocab)) and pieces that decode to "" are skipped silently.
func decodePieces(vocab *Vocabulary, ids []int32, sentinel string, reverse []substitution) string {
	var sb strings.Builder
	for _, id := range ids {
		piece, ok := vocab.Decode(id)
		if !ok || piece == "" {
			continue
		}
		piece = applyReverseSubstitution(piece, reverse)
		writeSentinelExpanded(&sb, piece, sentinel)
	}
	return sb.String()
}

// applyReverseSubstitution replaces piece wholesale by its mapped value if
// piece, taken as a whole, is a key in reverse.
func applyReverseSubstitution(piece string, reverse []substitution) string {
	for _, sub := range reverse {
		if sub.original == piece {
			return sub.replacement
		}
	}
	return piece
}

// writeSentinelExpanded writes piece to sb, replacing every occurrence of
// sentinel with a single ASCII space.
func writeSentinelExpanded(sb *strings.Builder, piece, sentinel string) {
	if sentinel == "" {
		sb.WriteString(piece)
		return
	}
	for {
		idx := strings.Index(piece, sentinel)
		if idx < 0 {
			sb.WriteString(piece)
			return
		}
		sb.WriteString(piece[:idx])
		sb.WriteByte(' ')
		piece = piece[idx+len(sentinel):]
	}
}
