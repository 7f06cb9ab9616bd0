package raptor

import "log/slog"

// Label is one Pareto-optimal journey summary to a stop: arrival time,
// number of vehicle boardings (stored in Transfers, which an access-walk
// label starts at 0 and every ride increments), cumulative wait, and
// cumulative in-vehicle time, plus
// enough provenance to reconstruct the journey. A stop's label
// set holds only mutually non-dominated labels — unlike RoundState's
// scalar bestTimes, a later label does not replace an earlier one unless
// it dominates it.
//
// FromPattern on a transfer label is propagated from the label it was
// produced from, not looked up through a transfer-stop indirection: since
// each label already carries its own provenance, there is no need for
// RoundState's sourcePatternForStop lookup (see provenance.go) to recover
// "the pattern this journey was last riding" through a transfer.
type Label struct {
	Arrival   int
	Transfers int
	Wait      int
	InVehicle int

	FromPattern  int
	FromTrip     int
	FromStop     int
	BoardTime    int
	IsTransfer   bool
	TransferTime int
}

// dominates reports whether a is at least as good as b on every criterion
// and strictly better on at least one.
func (a Label) dominates(b Label) bool {
	if a.Arrival > b.Arrival || a.Transfers > b.Transfers || a.Wait > b.Wait || a.InVehicle > b.InVehicle {
		return false
	}
	return a.Arrival < b.Arrival || a.Transfers < b.Transfers || a.Wait < b.Wait || a.InVehicle < b.InVehicle
}

// McRoundState holds, per stop, the Pareto frontier accumulated through
// round k of a multi-criteria search. Like RoundState, one McRoundState is
// allocated per round; FoldFrom carries the previous round's labels into
// it first, so a later round only adds labels reached with one more ride
// and never discards a non-dominated label an earlier round already found.
type McRoundState struct {
	Labels             [][]Label
	BestStopsTouched   *Bitset
	DepartureTime      int
	MaxDurationSeconds int
	Logger             *slog.Logger
}

// NewMcRoundState allocates an McRoundState for a network with nStops stops.
func NewMcRoundState(nStops, maxDurationSeconds int, logger *slog.Logger) *McRoundState {
	return &McRoundState{
		Labels:             make([][]Label, nStops),
		BestStopsTouched:   NewBitset(nStops),
		MaxDurationSeconds: maxDurationSeconds,
		Logger:             logger,
	}
}

// SetInitialLabel seeds a stop with a single access-walk label, discarding
// any prior frontier. RunMultiCriteriaSearch does not call it: it seeds
// round 0 through Insert.
func (s *McRoundState) SetInitialLabel(stop, t int) {
	s.Labels[stop] = []Label{{Arrival: t, FromPattern: -1, FromTrip: -1, FromStop: -1, BoardTime: -1}}
	s.BestStopsTouched.Set(stop)
}

// Insert adds label to stop's Pareto frontier, discarding it if an existing
// label already dominates it, and otherwise pruning every label it
// dominates in turn. Reports whether the frontier changed.
func (s *McRoundState) Insert(stop int, label Label) bool {
	if label.Arrival > s.DepartureTime+s.MaxDurationSeconds {
		return false
	}
	if !s.merge(stop, label) {
		return false
	}
	s.BestStopsTouched.Set(stop)
	return true
}

// merge applies the dominance-pruned insert without touching the touched
// bitset, shared by Insert and FoldFrom.
func (s *McRoundState) merge(stop int, label Label) bool {
	existing := s.Labels[stop]
	for _, l := range existing {
		if l.dominates(label) {
			return false
		}
	}
	kept := existing[:0]
	for _, l := range existing {
		if !label.dominates(l) {
			kept = append(kept, l)
		}
	}
	s.Labels[stop] = append(kept, label)
	return true
}

// FoldFrom carries every label of a round with one fewer transfer forward
// into s before s's own pattern scan, mirroring RoundState.Min. Like Min,
// it deliberately does not mark BestStopsTouched: a label folded forward
// unchanged was not newly reached by this round's own scan, so it must not
// trigger a rescan of the pattern that already produced it.
func (s *McRoundState) FoldFrom(other *McRoundState) {
	for stop, labels := range other.Labels {
		for _, l := range labels {
			s.merge(stop, l)
		}
	}
}

// ClearTouched clears the touched bitset at the start of a new round,
// leaving every stop's accumulated Pareto frontier untouched.
func (s *McRoundState) ClearTouched() {
	s.BestStopsTouched.ClearAll()
}

// mcThread is one boarded-trip instance carried forward through a pattern
// scan: the journey up to and including boarding tripIdx at boardPos, with
// enough of the originating label's criteria to extend into a new Label at
// every later stop the trip serves. Bounding thread count per trip index
// to non-dominated (transfers, wait-at-board, in-vehicle-at-board) triples
// keeps the per-pattern fan-out bounded without losing a genuine Pareto
// alternative: two threads boarding the same trip at the same position
// produce identical arrivals downstream, differing only in how much of the
// ride is counted as wait versus in-vehicle time.
type mcThread struct {
	tripIdx            int
	boardPos           int
	boardStop          int
	boardTime          int
	transfers          int
	waitAtBoard        int
	inVehicleAtBoard   int
}

func (t mcThread) dominatesAtBoard(other mcThread) bool {
	if t.transfers > other.transfers || t.waitAtBoard > other.waitAtBoard || t.inVehicleAtBoard > other.inVehicleAtBoard {
		return false
	}
	return t.transfers < other.transfers || t.waitAtBoard < other.waitAtBoard || t.inVehicleAtBoard < other.inVehicleAtBoard
}

// RunMcScheduledRound advances every Pareto frontier by one more ride,
// sharing the pattern-scan skeleton and trip-boarding search (see
// boarding.go) unchanged from the scalar engine.
func RunMcScheduledRound(network Network, filter *PatternFilter, input, output *McRoundState, servicesActive *Bitset) {
	for _, filteredIdx := range touchedMcScheduledPatterns(network, filter, input) {
		original := filter.ScheduledOriginal[filteredIdx]
		pattern := network.Pattern(original)

		var threads []mcThread

		for pos, stop := range pattern.Stops {
			for _, th := range threads {
				schedule := &pattern.TripSchedules[th.tripIdx]
				alightTime := schedule.Arrivals[pos]
				inVehicle := th.inVehicleAtBoard + (alightTime - schedule.Departures[th.boardPos])

				if output.Logger != nil && th.waitAtBoard+inVehicle > alightTime-output.DepartureTime {
					output.Logger.Warn("multi-criteria round: components larger than total",
						"pattern", original, "stop", stop)
				}

				output.Insert(stop, Label{
					Arrival:     alightTime,
					Transfers:   th.transfers,
					Wait:        th.waitAtBoard,
					InVehicle:   inVehicle,
					FromPattern: original,
					FromTrip:    th.tripIdx,
					FromStop:    th.boardStop,
					BoardTime:   th.boardTime,
				})
			}

			if !input.BestStopsTouched.Get(stop) {
				continue
			}

			for _, label := range input.Labels[stop] {
				if label.FromPattern == original {
					continue
				}
				earliestBoardTime := label.Arrival + BoardSlackSeconds
				tripIdx := findEarliestBoardableTrip(pattern, pos, len(pattern.TripSchedules), earliestBoardTime, servicesActive)
				if tripIdx == -1 {
					continue
				}
				schedule := &pattern.TripSchedules[tripIdx]
				candidate := mcThread{
					tripIdx:          tripIdx,
					boardPos:         pos,
					boardStop:        stop,
					boardTime:        schedule.Departures[pos],
					transfers:        label.Transfers + 1,
					waitAtBoard:      label.Wait + (schedule.Departures[pos] - label.Arrival),
					inVehicleAtBoard: label.InVehicle,
				}
				threads = appendNonDominatedThread(threads, candidate)
			}
		}
	}
}

// appendNonDominatedThread inserts candidate into threads for the same
// trip index, pruning any thread it dominates and skipping insertion if
// an existing thread already dominates it.
func appendNonDominatedThread(threads []mcThread, candidate mcThread) []mcThread {
	kept := threads[:0]
	for _, t := range threads {
		if t.tripIdx != candidate.tripIdx {
			kept = append(kept, t)
			continue
		}
		if t.dominatesAtBoard(candidate) {
			return threads
		}
		if !candidate.dominatesAtBoard(t) {
			kept = append(kept, t)
		}
	}
	return append(kept, candidate)
}

// RunMcTransferRelaxation appends a transfer label for every non-transfer
// label newly reached this round, mirroring RunTransferRelaxation: a
// transfer label propagates the originating label's FromPattern, so a
// later round's re-board check still recognizes "the pattern this
// journey was last riding" across the transfer.
func RunMcTransferRelaxation(network Network, state *McRoundState, walkSpeedMetersPerSecond float64, maxWalkMinutes int) {
	maxDistanceMillimeters := int(walkSpeedMetersPerSecond * float64(maxWalkMinutes) * 60 * 1000)

	type pending struct {
		stop  int
		label Label
	}
	var toAdd []pending

	for stop := range state.Labels {
		if !state.BestStopsTouched.Get(stop) {
			continue
		}
		for _, label := range state.Labels[stop] {
			if label.IsTransfer {
				continue
			}
			for _, t := range network.TransfersForStop(stop) {
				if int(t.DistanceMillimeters) >= maxDistanceMillimeters {
					continue
				}
				walkSeconds := int(float64(t.DistanceMillimeters) / 1000 / walkSpeedMetersPerSecond)
				toAdd = append(toAdd, pending{stop: t.TargetStop, label: Label{
					Arrival:      label.Arrival + walkSeconds,
					Transfers:    label.Transfers,
					Wait:         label.Wait,
					InVehicle:    label.InVehicle,
					FromPattern:  label.FromPattern,
					FromTrip:     label.FromTrip,
					FromStop:     stop,
					BoardTime:    label.BoardTime,
					IsTransfer:   true,
					TransferTime: walkSeconds,
				}})
			}
		}
	}

	for _, p := range toAdd {
		state.Insert(p.stop, p.label)
	}
}

// touchedMcScheduledPatterns mirrors touchedScheduledPatterns for the
// label-set representation: a pattern is touched if any of its stops was
// touched this round and holds at least one label (newly inserted or not)
// that did not arrive via that same pattern.
func touchedMcScheduledPatterns(network Network, filter *PatternFilter, input *McRoundState) []int {
	touched := NewBitset(len(filter.ScheduledOriginal))
	input.BestStopsTouched.Each(func(stop int) {
		for _, label := range input.Labels[stop] {
			for _, original := range network.PatternsForStop(stop) {
				if original == label.FromPattern {
					continue
				}
				if filtered := filter.ScheduledIndexForOriginal(original); filtered >= 0 {
					touched.Set(filtered)
				}
			}
		}
	})
	var out []int
	touched.Each(func(i int) { out = append(out, i) })
	return out
}
