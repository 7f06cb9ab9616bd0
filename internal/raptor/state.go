package raptor

import "log/slog"

// RoundState is the per-round arrival-time table with provenance. One
// array of these is allocated per search (maxRides+1 entries); between
// departure minutes the arrays are reused,
// not reallocated, so that Range-RAPTOR can carry improvements forward —
// only the touched bitsets are cleared at each minute boundary.
type RoundState struct {
	DepartureTime int

	BestTimes            []int
	BestNonTransferTimes []int

	PreviousPattern []int
	PreviousTrip    []int
	PreviousStop    []int
	BoardTime       []int

	TransferStop []int
	TransferTime []int

	NonTransferWaitTime            []int
	NonTransferInVehicleTravelTime []int

	BestStopsTouched        *Bitset
	NonTransferStopsTouched *Bitset
	StopTimesImproved       *Bitset

	MaxDurationSeconds int

	// Previous is the round with one fewer transfer, an index-shaped
	// back-reference (not an owning reference): round k's provenance
	// chain through k-1, k-2, ... lets setTimeAtStop recover cumulative
	// wait/in-vehicle time without each round storing the whole history.
	Previous *RoundState

	// waitTimeAdjustment corrects previously-stored cumulative wait time
	// for the delta between this round's current departure minute and the
	// one it was computed under, so Range-RAPTOR reuse of a later minute's
	// arrivals keeps correct wait-time accounting.
	waitTimeAdjustment int

	Logger *slog.Logger
}

// NewRoundState allocates a RoundState for a network with nStops stops and
// the given maximum trip duration in seconds.
func NewRoundState(nStops, maxDurationSeconds int, logger *slog.Logger) *RoundState {
	s := &RoundState{
		BestTimes:                      make([]int, nStops),
		BestNonTransferTimes:           make([]int, nStops),
		PreviousPattern:                make([]int, nStops),
		PreviousTrip:                   make([]int, nStops),
		PreviousStop:                   make([]int, nStops),
		BoardTime:                      make([]int, nStops),
		TransferStop:                   make([]int, nStops),
		TransferTime:                   make([]int, nStops),
		NonTransferWaitTime:            make([]int, nStops),
		NonTransferInVehicleTravelTime: make([]int, nStops),
		BestStopsTouched:               NewBitset(nStops),
		NonTransferStopsTouched:        NewBitset(nStops),
		StopTimesImproved:              NewBitset(nStops),
		MaxDurationSeconds:             maxDurationSeconds,
		Logger:                         logger,
	}
	for i := 0; i < nStops; i++ {
		s.BestTimes[i] = Unreached
		s.BestNonTransferTimes[i] = Unreached
		s.PreviousPattern[i] = -1
		s.PreviousTrip[i] = -1
		s.PreviousStop[i] = -1
		s.BoardTime[i] = -1
		s.TransferStop[i] = -1
		s.TransferTime[i] = -1
	}
	return s
}

// SetTimeAtStop applies the arrival-time update rule: bestNonTransferTimes
// is improved (strictly) when transfer is false, bestTimes is improved
// (strictly) independent of that, and times beyond departureTime +
// maxDurationSeconds are rejected outright. Returns whether anything
// changed.
func (s *RoundState) SetTimeAtStop(
	stop, t, fromPattern, fromStop, waitTime, inVehicleTime int,
	transfer bool,
	tripIndex, boardTime, transferTime int,
) bool {
	if t > s.DepartureTime+s.MaxDurationSeconds {
		return false
	}

	optimal := false

	if !transfer && t < s.BestNonTransferTimes[stop] {
		s.StopTimesImproved.Set(stop)
		s.BestNonTransferTimes[stop] = t
		s.NonTransferStopsTouched.Set(stop)
		s.PreviousPattern[stop] = fromPattern
		s.PreviousTrip[stop] = tripIndex
		s.BoardTime[stop] = boardTime
		s.PreviousStop[stop] = fromStop

		var totalWait, totalInVehicle int
		if s.Previous == nil {
			totalWait = waitTime
			totalInVehicle = inVehicleTime
		} else if preTransfer := s.Previous.TransferStop[fromStop]; preTransfer != -1 {
			// fromStop's own best arrival is a transfer: the wait/in-vehicle
			// carried forward belongs to the stop transferred from, not to
			// fromStop itself, which has none of its own.
			totalWait = s.Previous.NonTransferWaitTime[preTransfer] + waitTime
			totalInVehicle = s.Previous.NonTransferInVehicleTravelTime[preTransfer] + inVehicleTime
		} else {
			totalWait = s.Previous.NonTransferWaitTime[fromStop] + waitTime
			totalInVehicle = s.Previous.NonTransferInVehicleTravelTime[fromStop] + inVehicleTime
		}

		if s.Logger != nil && totalInVehicle+totalWait > t-s.DepartureTime {
			s.Logger.Warn("components of travel time larger than total time",
				"stop", stop, "wait", totalWait, "inVehicle", totalInVehicle, "total", t-s.DepartureTime)
		}

		s.NonTransferWaitTime[stop] = totalWait
		s.NonTransferInVehicleTravelTime[stop] = totalInVehicle
		optimal = true
	}

	if t < s.BestTimes[stop] {
		s.StopTimesImproved.Set(stop)
		s.BestTimes[stop] = t
		s.BestStopsTouched.Set(stop)
		if transfer {
			// fromStop == -1 marks the access-walk seeding convention
			// (the scheduled search's per-minute access pass), not a
			// real transfer; -1 is its transferTime sentinel, not an
			// invariant violation.
			if fromStop != -1 && transferTime < 0 && s.Logger != nil {
				s.Logger.Warn("negative transfer time", "stop", stop, "transferTime", transferTime)
			}
			s.TransferStop[stop] = fromStop
			s.TransferTime[stop] = transferTime
		} else {
			s.TransferStop[stop] = -1
		}
		optimal = true
	}

	return optimal
}

// Min folds other's improved stops (those in other.StopTimesImproved) into
// this round, preferring other's values on ties. Engine.Route calls it with
// other = round k-1 of the same departure minute, so ties go to the
// solution with fewer transfers. Carried wait time is shifted by the
// difference between the two rounds' departure times (zero when both share
// a minute).
func (s *RoundState) Min(other *RoundState) {
	// Deliberately does not mark BestStopsTouched/NonTransferStopsTouched:
	// those must reflect only what *this* round's own scheduled/frequency
	// processing advances this minute, since the next round's touched-
	// pattern scan reads them to decide what to re-explore. Carrying a bit
	// over from a cheaper round via min() would make the next round
	// re-scan patterns it never actually improved into.
	other.StopTimesImproved.Each(func(stop int) {
		if other.BestTimes[stop] <= s.BestTimes[stop] {
			s.StopTimesImproved.Set(stop)
			s.BestTimes[stop] = other.BestTimes[stop]
			s.TransferStop[stop] = other.TransferStop[stop]
			s.TransferTime[stop] = other.TransferTime[stop]
		}
		if other.BestNonTransferTimes[stop] <= s.BestNonTransferTimes[stop] {
			s.StopTimesImproved.Set(stop)
			s.BestNonTransferTimes[stop] = other.BestNonTransferTimes[stop]
			s.PreviousPattern[stop] = other.PreviousPattern[stop]
			s.PreviousTrip[stop] = other.PreviousTrip[stop]
			s.PreviousStop[stop] = other.PreviousStop[stop]
			s.BoardTime[stop] = other.BoardTime[stop]
			s.NonTransferInVehicleTravelTime[stop] = other.NonTransferInVehicleTravelTime[stop]
			s.NonTransferWaitTime[stop] = other.NonTransferWaitTime[stop] + (other.DepartureTime - s.DepartureTime)
		}
	})
}

// SetDepartureTime records the new departure minute and the offset later
// applied when reporting cumulative wait time, so wait-time accounting
// stays correct when an earlier minute inherits arrivals computed under a
// later one.
func (s *RoundState) SetDepartureTime(t int) {
	s.waitTimeAdjustment = s.DepartureTime - t
	s.DepartureTime = t
}

// NonTransferWaitTimeAt returns the cumulative wait time for the best path
// to stop, adjusted for any Range-RAPTOR departure-time carry.
func (s *RoundState) NonTransferWaitTimeAt(stop int) int {
	return s.NonTransferWaitTime[stop] + s.waitTimeAdjustment
}

// ClearTouched clears the touched bitsets at the start of a new minute,
// without disturbing the arrival-time arrays Range-RAPTOR is reusing.
func (s *RoundState) ClearTouched() {
	s.BestStopsTouched.ClearAll()
	s.NonTransferStopsTouched.ClearAll()
	s.StopTimesImproved.ClearAll()
}

// Copy makes a protective copy of this round only, used by Monte Carlo
// frequency sub-searches so they can overlay a scheduled result without
// mutating the range-RAPTOR state the outer minute loop is reusing. The
// touched bitsets are cloned, not reset: a frequency round reads the
// copy's BestStopsTouched to find the same stops the scheduled round just
// advanced through.
func (s *RoundState) Copy() *RoundState {
	c := &RoundState{
		DepartureTime:                  s.DepartureTime,
		BestTimes:                      append([]int(nil), s.BestTimes...),
		BestNonTransferTimes:           append([]int(nil), s.BestNonTransferTimes...),
		PreviousPattern:                append([]int(nil), s.PreviousPattern...),
		PreviousTrip:                   append([]int(nil), s.PreviousTrip...),
		PreviousStop:                   append([]int(nil), s.PreviousStop...),
		BoardTime:                      append([]int(nil), s.BoardTime...),
		TransferStop:                   append([]int(nil), s.TransferStop...),
		TransferTime:                   append([]int(nil), s.TransferTime...),
		NonTransferWaitTime:            append([]int(nil), s.NonTransferWaitTime...),
		NonTransferInVehicleTravelTime: append([]int(nil), s.NonTransferInVehicleTravelTime...),
		BestStopsTouched:               s.BestStopsTouched.Clone(),
		NonTransferStopsTouched:        s.NonTransferStopsTouched.Clone(),
		StopTimesImproved:              s.StopTimesImproved.Clone(),
		MaxDurationSeconds:             s.MaxDurationSeconds,
		Previous:                       s.Previous,
		waitTimeAdjustment:             s.waitTimeAdjustment,
		Logger:                         s.Logger,
	}
	return c
}

// DeepCopy clones this round and every ancestor round by index, so a
// reconstructed path can outlive the next minute's mutation of the live
// range-RAPTOR state chain.
func (s *RoundState) DeepCopy() *RoundState {
	root := s.Copy()
	cur := root
	src := s.Previous
	for src != nil {
		cur.Previous = src.Copy()
		cur.Previous.Previous = nil
		cur = cur.Previous
		src = src.Previous
	}
	return root
}
