package raptor

// touchedScheduledPatterns returns the filtered scheduled pattern indices
// that must be re-explored this round: the union, over every stop touched
// in the input round, of the patterns serving that stop, excluding
// whichever pattern reached the stop in the immediately preceding round.
func touchedScheduledPatterns(network Network, filter *PatternFilter, input *RoundState) []int {
	touched := NewBitset(len(filter.ScheduledOriginal))
	input.BestStopsTouched.Each(func(stop int) {
		source := sourcePatternForStop(input, stop)
		for _, original := range network.PatternsForStop(stop) {
			filtered := filter.ScheduledIndexForOriginal(original)
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

// RunScheduledRound performs one RAPTOR round over scheduled patterns:
// it scans every touched pattern in stop-position order,
// alighting from a boarded trip at each stop and then either boarding the
// earliest qualifying trip or backing up to an earlier one if the stop was
// touched earlier than the trip currently held.
func RunScheduledRound(network Network, filter *PatternFilter, input, output *RoundState, servicesActive *Bitset) {
	for _, filteredIdx := range touchedScheduledPatterns(network, filter, input) {
		original := filter.ScheduledOriginal[filteredIdx]
		pattern := network.Pattern(original)

		onTrip := -1
		var waitTime, boardTime, boardStop int

		for pos, stop := range pattern.Stops {
			if onTrip > -1 {
				schedule := &pattern.TripSchedules[onTrip]
				alightTime := schedule.Arrivals[pos]
				inVehicleTime := alightTime - boardTime

				if output.Logger != nil && waitTime+inVehicleTime+input.BestTimes[boardStop] > alightTime {
					output.Logger.Warn("scheduled round: components larger than total",
						"pattern", original, "stop", stop)
				}

				output.SetTimeAtStop(stop, alightTime, original, boardStop, waitTime, inVehicleTime, false, onTrip, boardTime, -1)
			}

			source := sourcePatternForStop(input, stop)
			if !input.BestStopsTouched.Get(stop) || source == original {
				continue
			}

			earliestBoardTime := input.BestTimes[stop] + BoardSlackSeconds
			var upperBound int
			if onTrip == -1 {
				upperBound = len(pattern.TripSchedules)
			} else {
				upperBound = onTrip
			}

			boarded := findEarliestBoardableTrip(pattern, pos, upperBound, earliestBoardTime, servicesActive)
			if boarded == -1 {
				continue
			}
			onTrip = boarded
			schedule := &pattern.TripSchedules[onTrip]
			boardTime = schedule.Departures[pos]
			waitTime = boardTime - input.BestTimes[stop]
			boardStop = stop
		}
	}
}
