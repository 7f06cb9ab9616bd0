package raptor

// LegKind distinguishes a scheduled/frequency ride from a walking transfer
// within a reconstructed Path.
type LegKind int

const (
	LegRide LegKind = iota
	LegTransfer
)

// Leg is one step of a reconstructed journey. Pattern and Trip are -1 for
// a LegTransfer.
type Leg struct {
	Kind                 LegKind
	FromStop, ToStop     int
	Pattern, Trip        int
	DepartTime, ArriveTime int
}

// Path is the full journey to one stop, in travel order (earliest leg
// first). Legs is nil when the stop was never reached.
type Path struct {
	Stop int
	Legs []Leg
}

// PathToEachStop reconstructs a Path for every stop reachable in state, by
// walking each stop's provenance backward to round 0. Callers
// that need a path to outlive further mutation of state's round chain
// (e.g. across a Monte Carlo sub-iteration) must call this before the next
// mutation, or retain a RoundState.DeepCopy of the chain instead.
func PathToEachStop(state *RoundState) []Path {
	paths := make([]Path, len(state.BestTimes))
	for stop := range state.BestTimes {
		paths[stop] = reconstructPath(state, stop)
	}
	return paths
}

// reconstructPath walks backward from stop in round state, alternating
// between an optional transfer leg and the ride leg that fed it, moving to
// state.Previous once per ride leg consumed. It terminates at a stop whose
// PreviousPattern is -1: either the access-walk origin seeded at round 0,
// or a stop never improved beyond its access arrival.
func reconstructPath(state *RoundState, stop int) Path {
	if state.BestTimes[stop] == Unreached {
		return Path{Stop: stop}
	}

	var legs []Leg
	cur := state
	curStop := stop

	for cur != nil {
		if cur.TransferStop[curStop] != -1 {
			from := cur.TransferStop[curStop]
			legs = append(legs, Leg{
				Kind:       LegTransfer,
				FromStop:   from,
				ToStop:     curStop,
				Pattern:    -1,
				Trip:       -1,
				ArriveTime: cur.BestTimes[curStop],
				DepartTime: cur.BestTimes[curStop] - cur.TransferTime[curStop],
			})
			curStop = from
			continue
		}

		pattern := cur.PreviousPattern[curStop]
		if pattern == -1 {
			break
		}

		from := cur.PreviousStop[curStop]
		legs = append(legs, Leg{
			Kind:       LegRide,
			FromStop:   from,
			ToStop:     curStop,
			Pattern:    pattern,
			Trip:       cur.PreviousTrip[curStop],
			DepartTime: cur.BoardTime[curStop],
			ArriveTime: cur.BestNonTransferTimes[curStop],
		})
		curStop = from
		cur = cur.Previous
	}

	for i, j := 0, len(legs)-1; i < j; i, j = i+1, j-1 {
		legs[i], legs[j] = legs[j], legs[i]
	}
	return Path{Stop: stop, Legs: legs}
}
