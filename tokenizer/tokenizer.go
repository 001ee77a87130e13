// Package tokenizer implements a SentencePiece-style byte-pair-encoding
// subword tokenizer: UTF-8 splitting, whitespace/character normalization,
// greedy added-vocabulary pre-merging, a priority-queue BPE merge engine
// with optional dropout, and ID<->piece mapping for encode/decode.
package tokenizer

import (
	"context"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/lexigo/spmbpe/logutil"
)

// Config is the full set of constructor inputs: the immutable tables a
// Tokenizer owns for the lifetime of the process.
type Config struct {
	BPERanks   map[[2]string]int
	Vocab      map[string]int32
	AddedVocab []string

	// Sentinel defaults to U+2581 ("▁") when left empty; pass an explicit
	// empty-string sentinel by setting DisableSentinel instead.
	Sentinel        string
	DisableSentinel bool

	TokenReplaceMap        map[string]string
	ReverseTokenReplaceMap map[string]string
}

// Tokenizer is the façade: it owns the immutable tables and exposes the
// encode/decode surface. A Tokenizer is safe for unsynchronized concurrent
// use by multiple goroutines once constructed.
type Tokenizer struct {
	vocab    *Vocabulary
	sentinel string

	forward []substitution
	reverse []substitution
}

// New builds a Tokenizer from cfg. The merge table, vocabulary, and
// added-vocabulary list are copied into immutable lookup structures; nothing
// about cfg is retained by reference after this call returns.
func New(cfg Config) *Tokenizer {
	sentinel := cfg.Sentinel
	if sentinel == "" && !cfg.DisableSentinel {
		sentinel = defaultSentinel
	}

	return &Tokenizer{
		vocab:    NewVocabulary(cfg.Vocab, cfg.BPERanks, cfg.AddedVocab),
		sentinel: sentinel,
		forward:  sortedSubstitutions(cfg.TokenReplaceMap),
		reverse:  sortedSubstitutions(cfg.ReverseTokenReplaceMap),
	}
}

// Encode runs the full pipeline: normalize, split, merge added vocabulary,
// run the BPE merge engine with dropout parameter alpha, and map the result
// to pieces or IDs depending on tokenize. alpha <= 0 disables dropout and
// makes the call deterministic; alpha >= 1 applies zero merges.
//
// When tokenize is false, ids is nil and pieces holds the final piece
// sequence with no ID mapping applied.
func (t *Tokenizer) Encode(text string, alpha float32, tokenize bool) (pieces []string, ids []int32, err error) {
	pieces = t.runPipeline(text, alpha, newRNG())
	if !tokenize {
		logutil.Trace("encoded", "string", text, "pieces", pieces)
		return pieces, nil, nil
	}
	ids = mapToIDs(t.vocab, pieces)
	logutil.Trace("encoded", "string", text, "pieces", pieces, "ids", ids)
	return pieces, ids, nil
}

// EncodeSeeded behaves like Encode but draws dropout decisions from a
// deterministic RNG seeded from seed1 and seed2, for reproducible encoding.
func (t *Tokenizer) EncodeSeeded(text string, alpha float32, seed1, seed2 uint64) (pieces []string, ids []int32, err error) {
	pieces = t.runPipeline(text, alpha, newSeededRNG(seed1, seed2))
	return pieces, mapToIDs(t.vocab, pieces), nil
}

func (t *Tokenizer) runPipeline(text string, alpha float32, rng *rand.Rand) []string {
	normalized := normalize(text, t.sentinel, t.forward)
	if normalized == "" {
		return nil
	}

	codepoints := splitUTF8(normalized)
	merged := mergeAddedVocab(codepoints, t.vocab.AddedVocab())
	symbols := newSymbolChain(merged)
	return runMergeEngine(t.vocab, symbols, alpha, rng)
}

// Decode reverses the ID mapping: each ID is looked up in the reverse
// vocabulary, passed through the reverse-substitution map, and has the
// whitespace sentinel expanded back to a literal space. Out-of-range IDs
// and empty pieces are skipped silently; there is no BPE inversion.
func (t *Tokenizer) Decode(ids []int32) (string, error) {
	text := decodePieces(t.vocab, ids, t.sentinel, t.reverse)
	logutil.Trace("decoded", "ids", ids, "string", text)
	return text, nil
}

// EncodeBatch runs Encode over texts concurrently, one goroutine per text,
// and returns their ID sequences in the same order as the input. Each call
// gets its own RNG and transient state; nothing is shared across texts
// beyond the immutable tables, so this parallelizes cleanly. The context is
// checked before each encode starts; cancellation stops launching further
// work and returns ctx.Err().
func (t *Tokenizer) EncodeBatch(ctx context.Context, texts []string, alpha float32) ([][]int32, error) {
	results := make([][]int32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, ids, err := t.Encode(text, alpha, true)
			if err != nil {
				return err
			}
			results[i] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// VocabSize returns the number of pieces in the active vocabulary.
func (t *Tokenizer) VocabSize() int { return t.vocab.Size() }

// MergeCount returns the number of entries in the merge table.
func (t *Tokenizer) MergeCount() int { return t.vocab.MergeCount() }

// AddedVocabCount returns the number of added-vocabulary literals.
func (t *Tokenizer) AddedVocabCount() int { return t.vocab.AddedVocabCount() }
