package raptor

// findEarliestBoardableTrip implements the hybrid trip boarding search:
// given a pattern, a stop position, an exclusive upper bound on
// trip index, and an earliest-board time, it returns the index of the
// earliest scheduled (non-frequency), in-service trip whose departure at
// that position is strictly later than earliestBoardTime, or -1 if none
// qualifies.
//
// Used both for the initial board search (upperBound == len(tripSchedules))
// and the "back up to an earlier trip" search (upperBound == the trip
// currently boarded), since both reduce to the same question: what is the
// earliest qualifying trip below this index?
func findEarliestBoardableTrip(pattern *TripPattern, stopPosition, upperBound, earliestBoardTime int, servicesActive *Bitset) int {
	if upperBound <= 0 {
		return -1
	}
	if upperBound <= TripSearchBinaryThreshold {
		return linearBackwardBoardingScan(pattern, stopPosition, 0, upperBound, earliestBoardTime, servicesActive)
	}
	return binaryThenLinearBoardingScan(pattern, stopPosition, upperBound, earliestBoardTime, servicesActive)
}

// linearBackwardBoardingScan scans trip indices [lowerBound, upperBound)
// from the top down. A trip is skipped (does not end the scan) if it is a
// frequency trip or its service is not active today. The scan ends the
// first time it hits an in-service, non-frequency trip whose departure is
// at or before earliestBoardTime; the last qualifying trip seen before that
// point — necessarily the smallest index still satisfying the departure
// condition, since trips are sorted ascending — is the answer.
func linearBackwardBoardingScan(pattern *TripPattern, stopPosition, lowerBound, upperBound, earliestBoardTime int, servicesActive *Bitset) int {
	candidate := -1
	for i := upperBound - 1; i >= lowerBound; i-- {
		ts := &pattern.TripSchedules[i]
		if ts.Frequency != nil || !servicesActive.Get(ts.ServiceCode) {
			continue
		}
		if ts.Departures[stopPosition] > earliestBoardTime {
			candidate = i
			continue
		}
		break
	}
	return candidate
}

// binaryThenLinearBoardingScan narrows hi to within 10 of the smallest
// index whose Departures[0] is strictly later than earliestBoardTime,
// using binary search (a valid proxy for departure order at any stop
// position, since the pattern invariant says trips never overtake one
// another), then falls back to the same linear scan logic over [0, hi).
//
// hi is kept as an exclusive upper bound that always remains strictly
// above that threshold index: whenever Departures[0][mid] qualifies,
// hi becomes mid+1 so mid itself stays inside the scanned range. Since
// departures are sorted ascending across the whole pattern (frequency
// trips included), the threshold index is the same regardless of the
// skip-predicate, so the downward-only scan starting at hi-1 always
// reaches it — no upward continuation past hi is ever needed.
func binaryThenLinearBoardingScan(pattern *TripPattern, stopPosition, upperBound, earliestBoardTime int, servicesActive *Bitset) int {
	lo, hi := 0, upperBound
	for hi-lo > 10 {
		mid := (lo + hi) / 2
		if pattern.TripSchedules[mid].Departures[0] > earliestBoardTime {
			hi = mid + 1
		} else {
			lo = mid
		}
	}
	return linearBackwardBoardingScan(pattern, stopPosition, 0, hi, earliestBoardTime, servicesActive)
}
