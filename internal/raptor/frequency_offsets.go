package raptor

import "math/rand"

// frequencyKey identifies one frequency entry: a (pattern, trip-within-
// pattern) pair, since a pattern may combine several frequency blocks.
type frequencyKey struct {
	pattern int
	trip    int
}

// FrequencyOffsets draws a deterministic-per-seed random phase for every
// frequency entry at the start of each Monte Carlo sub-iteration.
// Determinism follows from seeding the underlying generator once per
// search and drawing phases in a fixed order (pattern, then trip index
// within the pattern) on every call to Redraw.
type FrequencyOffsets struct {
	rng     *rand.Rand
	offsets map[frequencyKey]int
}

// NewFrequencyOffsets creates an offset generator seeded for one search.
// Callers needing reproducible Monte Carlo output must pass the same
// seed across runs.
func NewFrequencyOffsets(seed int64) *FrequencyOffsets {
	return &FrequencyOffsets{rng: rand.New(rand.NewSource(seed))}
}

// Redraw generates a fresh phase for every frequency entry across the given
// originally-indexed frequency patterns, in pattern-then-trip order.
func (fo *FrequencyOffsets) Redraw(network Network, frequencyPatternsOriginal []int) {
	fo.offsets = make(map[frequencyKey]int)
	for _, original := range frequencyPatternsOriginal {
		pattern := network.Pattern(original)
		for tripIdx, ts := range pattern.TripSchedules {
			if ts.Frequency == nil {
				continue
			}
			phase := fo.rng.Intn(ts.Frequency.HeadwaySeconds)
			fo.offsets[frequencyKey{original, tripIdx}] = phase
		}
	}
}

// PhaseFor returns the currently drawn phase for a frequency entry.
func (fo *FrequencyOffsets) PhaseFor(pattern, tripIndex int) int {
	return fo.offsets[frequencyKey{pattern, tripIndex}]
}
