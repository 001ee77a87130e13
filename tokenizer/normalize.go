package tokenizer

import (
	"sort"
	"strings"
)

// defaultSentinel is U+2581 LOWER ONE EIGHTH BLOCK, "▁", the conventional
// SentencePiece stand-in for ASCII space.
const defaultSentinel = "\xE2\x96\x81"

// substitution is one (original, replacement) entry from a forward or
// reverse replace map, pre-sorted so the longest original wins first.
type substitution struct {
	original    string
	replacement string
}

func sortedSubstitutions(m map[string]string) []substitution {
	subs := make([]substitution, 0, len(m))
	for k, v := range m {
		subs = append(subs, substitution{original: k, replacement: v})
	}
	sort.Slice(subs, func(i, j int) bool {
		if len(subs[i].original) != len(subs[j].original) {
			return len(subs[i].original) > len(subs[j].original)
		}
		return subs[i].original < subs[j].original
	})
	return subs
}

// normalize replaces ASCII spaces with sentinel, then applies each forward
// substitution in descending key-length order. Replacements within one
// substitution's pass are non-overlapping and left-to-right.
func normalize(text, sentinel string, forward []substitution) string {
	if sentinel != "" {
		text = strings.ReplaceAll(text, " ", sentinel)
	}
	for _, sub := range forward {
		text = strings.ReplaceAll(text, sub.original, sub.replacement)
	}
	return text
}
