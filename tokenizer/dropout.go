package tokenizer

import (
	cryptorand "crypto/rand"
	"math/rand/v2"
	"time"
)

// newRNG returns a dropout source seeded from platform entropy, mirroring
// the source's std::random_device-seeded std::mt19937. No third-party RNG
// package appears anywhere in the corpus for this purpose, so this stays on
// the standard library's ChaCha8 source rather than reaching for one.
func newRNG() *rand.Rand {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// Platform entropy is unavailable; fall back to a time-derived
		// seed rather than let a pure function panic.
		now := uint64(time.Now().UnixNano())
		for i := 0; i < 4; i++ {
			seed[i] = byte(now >> (8 * i))
		}
	}
	return rand.New(rand.NewChaCha8(seed))
}

// newSeededRNG returns a deterministic dropout source for reproducible
// encoding, resolving the open question in the design notes.
func newSeededRNG(seed1, seed2 uint64) *rand.Rand {
	var seed [32]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(seed1 >> (8 * i))
		seed[8+i] = byte(seed2 >> (8 * i))
	}
	return rand.New(rand.NewChaCha8(seed))
}
