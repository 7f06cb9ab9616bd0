package raptor

// PatternFilter is the output of the pattern prefilter: two compact,
// per-search lists of pattern indices along with the bidirectional
// maps between original and filtered indices that the rest of the search
// uses to stay off the full pattern set.
type PatternFilter struct {
	ScheduledOriginal  []int // filtered index -> original pattern index
	FrequencyOriginal  []int
	scheduledForOrig   []int // original pattern index -> filtered index, or -1
	frequencyForOrig   []int
}

// ScheduledIndexForOriginal returns the filtered scheduled index for an
// original pattern index, or -1 if that pattern has no scheduled trips
// active for this search.
func (f *PatternFilter) ScheduledIndexForOriginal(original int) int {
	return f.scheduledForOrig[original]
}

// FrequencyIndexForOriginal returns the filtered frequency index for an
// original pattern index, or -1 if that pattern has no frequency trips
// active for this search.
func (f *PatternFilter) FrequencyIndexForOriginal(original int) int {
	return f.frequencyForOrig[original]
}

// PrefilterPatterns partitions a network's patterns into the scheduled and
// frequency subsets active for the given date's service bitset and the
// requested transit modes. A pattern is kept in a subset iff at least
// one of its service codes is active today and its mode is requested; a
// mixed pattern with both schedules and frequencies can appear in both
// subsets.
func PrefilterPatterns(network Network, servicesActive *Bitset, modes map[string]bool) *PatternFilter {
	patternCount := network.PatternCount()
	filter := &PatternFilter{
		scheduledForOrig: make([]int, patternCount),
		frequencyForOrig: make([]int, patternCount),
	}
	for i := range filter.scheduledForOrig {
		filter.scheduledForOrig[i] = -1
		filter.frequencyForOrig[i] = -1
	}

	for original := 0; original < patternCount; original++ {
		pattern := network.Pattern(original)
		if !pattern.ServicesActive().Intersects(servicesActive) {
			continue
		}
		if len(modes) > 0 && !modes[pattern.Mode] {
			continue
		}
		if pattern.HasFrequencies {
			filter.frequencyForOrig[original] = len(filter.FrequencyOriginal)
			filter.FrequencyOriginal = append(filter.FrequencyOriginal, original)
		}
		if pattern.HasSchedules {
			filter.scheduledForOrig[original] = len(filter.ScheduledOriginal)
			filter.ScheduledOriginal = append(filter.ScheduledOriginal, original)
		}
	}

	return filter
}
