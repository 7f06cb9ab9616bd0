package raptor

// effectiveDeparture computes the departure at a stop position for one
// frequency entry given the current Monte Carlo phase:
//
//	windowStart + phase + ceil((earliestBoardTime - windowStart - phase) / headway) * headway + relativeDeparture[p]
//
// constrained to the entry's [EntryStart, EntryEnd] window (applied to the
// virtual trip's start instant, before relativeDeparture is added). Returns
// the departure and whether it falls within the entry's active window.
func effectiveDeparture(entry *FrequencyBlock, relativeDeparture, phase, earliestBoardTime int) (int, bool) {
	diff := earliestBoardTime - entry.EntryStart - phase
	n := 0
	if diff > 0 {
		n = (diff + entry.HeadwaySeconds - 1) / entry.HeadwaySeconds
	}
	instanceStart := entry.EntryStart + phase + n*entry.HeadwaySeconds
	if instanceStart < entry.EntryStart || instanceStart > entry.EntryEnd {
		return 0, false
	}
	return instanceStart + relativeDeparture, true
}

// RunFrequencyRound overlays frequency patterns onto the scheduled upper
// bound already present in output: for every touched stop
// on a frequency pattern, it evaluates every frequency entry on that
// pattern against the current offsets and keeps the earliest valid board,
// the same way RunScheduledRound keeps the earliest qualifying discrete
// trip. Because the departure formula directly yields the earliest
// boardable instant for a given earliestBoardTime, there is no separate
// "back up" search: re-evaluating with a newer (earlier) earliestBoardTime
// is itself the back-up step.
func RunFrequencyRound(network Network, filter *PatternFilter, input, output *RoundState, offsets *FrequencyOffsets) {
	for _, filteredIdx := range touchedFrequencyPatterns(network, filter, input) {
		original := filter.FrequencyOriginal[filteredIdx]
		pattern := network.Pattern(original)

		onEntry := -1
		var waitTime, boardTime, boardStop, instanceStart int

		for pos, stop := range pattern.Stops {
			if onEntry > -1 {
				schedule := &pattern.TripSchedules[onEntry]
				alightTime := instanceStart + schedule.Arrivals[pos]
				inVehicleTime := alightTime - boardTime

				if output.Logger != nil && waitTime+inVehicleTime+input.BestTimes[boardStop] > alightTime {
					output.Logger.Warn("frequency round: components larger than total",
						"pattern", original, "stop", stop)
				}

				output.SetTimeAtStop(stop, alightTime, original, boardStop, waitTime, inVehicleTime, false, onEntry, boardTime, -1)
			}

			source := sourcePatternForStop(input, stop)
			if !input.BestStopsTouched.Get(stop) || source == original {
				continue
			}

			earliestBoardTime := input.BestTimes[stop] + MinimumBoardWaitSeconds

			bestEntry, bestStart, bestDeparture := -1, 0, 0
			for entryIdx, ts := range pattern.TripSchedules {
				if ts.Frequency == nil {
					continue
				}
				phase := offsets.PhaseFor(original, entryIdx)
				departure, ok := effectiveDeparture(ts.Frequency, ts.Departures[pos], phase, earliestBoardTime)
				if !ok {
					continue
				}
				if bestEntry == -1 || departure < bestDeparture {
					bestEntry = entryIdx
					bestDeparture = departure
					bestStart = departure - ts.Departures[pos]
				}
			}

			if bestEntry == -1 {
				continue
			}
			if onEntry != -1 && bestDeparture >= boardTime {
				// Only replace an existing board with a strictly earlier one.
				continue
			}
			onEntry = bestEntry
			instanceStart = bestStart
			boardTime = bestDeparture
			waitTime = boardTime - input.BestTimes[stop]
			boardStop = stop
		}
	}
}

// touchedFrequencyPatterns mirrors touchedScheduledPatterns for the
// frequency pattern subset.
func touchedFrequencyPatterns(network Network, filter *PatternFilter, input *RoundState) []int {
	touched := NewBitset(len(filter.FrequencyOriginal))
	input.BestStopsTouched.Each(func(stop int) {
		source := sourcePatternForStop(input, stop)
		for _, original := range network.PatternsForStop(stop) {
			filtered := filter.FrequencyIndexForOriginal(original)
			if filtered < 0 {
				continue
			}
			if original == source {
				continue
			}
			touched.Set(filtered)
		}
	})
	var out []int
	touched.Each(func(i int) { out = append(out, i) })
	return out
}
