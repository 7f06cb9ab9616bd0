package raptor

import "log/slog"

// AccessTable maps a stop index to seconds of initial walking from the
// search's origin. Stops absent from the table are unreachable at the
// start of every minute.
type AccessTable map[int]int

// Engine drives the outer Range-RAPTOR loop: stepping backward over the
// departure window, reusing state across minutes, and running Monte
// Carlo sub-iterations over frequency offsets. A single Engine.Route
// call is sequential and touches no package-level mutable state, so
// independent Engines may run concurrently over the same immutable
// Network.
type Engine struct {
	Network Network
	Request *Request
	Access  AccessTable
	Logger  *slog.Logger

	filter         *PatternFilter
	servicesActive *Bitset
	rounds         []*RoundState
	offsets        *FrequencyOffsets

	// PathsPerIteration holds one Path slice per output iteration when
	// Request.RetainPaths is set, parallel to Route's return value.
	PathsPerIteration [][]Path
}

// NewEngine validates the request and constructs an Engine. Returns a
// *ConfigError for a malformed request before any search work happens.
func NewEngine(network Network, request *Request, access AccessTable, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var knownModes map[string]bool
	if network != nil {
		knownModes = network.Modes()
	}
	if err := request.Validate(network, knownModes); err != nil {
		return nil, err
	}
	return &Engine{Network: network, Request: request, Access: access, Logger: logger}, nil
}

// Route runs the full Range-RAPTOR / Monte Carlo search and returns
// int[iterations][stopCount] travel times in seconds, taken from the final
// round's BestNonTransferTimes: a stop reached only by access walk or by a
// transfer, or not reached at all, reports Unreached. Iterations are
// ordered latest-minute-first, then by Monte Carlo draw.
func (e *Engine) Route() [][]int {
	e.servicesActive = e.Network.ActiveServicesForDate(e.Request.Date)
	e.filter = PrefilterPatterns(e.Network, e.servicesActive, e.Request.TransitModes)
	e.offsets = NewFrequencyOffsets(e.Request.Seed)

	nStops := e.Network.StopCount()
	maxDurationSeconds := e.Request.MaxTripDurationMinutes * 60

	e.rounds = make([]*RoundState, e.Request.MaxRides+1)
	for i := range e.rounds {
		e.rounds[i] = NewRoundState(nStops, maxDurationSeconds, e.Logger)
	}
	for i := 1; i < len(e.rounds); i++ {
		e.rounds[i].Previous = e.rounds[i-1]
	}

	nMinutes := e.Request.timeWindowLengthMinutes()
	drawsPerMinute := e.Request.MonteCarloDrawsPerMinute
	hasFrequencies := len(e.filter.FrequencyOriginal) > 0

	results := make([][]int, 0, nMinutes*drawsPerMinute)
	if e.Request.RetainPaths {
		e.PathsPerIteration = make([][]Path, 0, nMinutes*drawsPerMinute)
	}

	for departureTime := e.Request.ToTime - DepartureStepSeconds; departureTime >= e.Request.FromTime; departureTime -= DepartureStepSeconds {
		e.advanceToMinute(departureTime)

		for round := 1; round <= e.Request.MaxRides; round++ {
			e.rounds[round].Min(e.rounds[round-1])
			RunScheduledRound(e.Network, e.filter, e.rounds[round-1], e.rounds[round], e.servicesActive)
			RunTransferRelaxation(e.Network, e.rounds[round], e.Request.WalkSpeedMetersPerSecond, e.Request.MaxWalkMinutes)
		}

		final := e.rounds[e.Request.MaxRides]
		var scheduledPaths []Path
		if e.Request.RetainPaths {
			scheduledPaths = PathToEachStop(final)
		}

		for draw := 0; draw < drawsPerMinute; draw++ {
			if !hasFrequencies {
				results = append(results, snapshotTravelTimes(final, departureTime))
				if e.Request.RetainPaths {
					e.PathsPerIteration = append(e.PathsPerIteration, scheduledPaths)
				}
				continue
			}

			e.offsets.Redraw(e.Network, e.filter.FrequencyOriginal)
			mc := copyRoundChain(e.rounds)
			for round := 1; round <= e.Request.MaxRides; round++ {
				RunFrequencyRound(e.Network, e.filter, mc[round-1], mc[round], e.offsets)
				RunTransferRelaxation(e.Network, mc[round], e.Request.WalkSpeedMetersPerSecond, e.Request.MaxWalkMinutes)
			}
			mcFinal := mc[e.Request.MaxRides]
			results = append(results, snapshotTravelTimes(mcFinal, departureTime))
			if e.Request.RetainPaths {
				e.PathsPerIteration = append(e.PathsPerIteration, PathToEachStop(mcFinal))
			}
		}
	}

	return results
}

// advanceToMinute resets every round's touched bitsets and departure time,
// then re-seeds round 0 with access-walk arrivals at the new minute. This
// is the only place round-state arrays are reset between minutes; the
// arrival-time arrays themselves carry forward untouched, which is what
// lets Range-RAPTOR reuse later-minute results.
func (e *Engine) advanceToMinute(departureTime int) {
	for _, r := range e.rounds {
		r.SetDepartureTime(departureTime)
		r.ClearTouched()
	}
	initial := e.rounds[0]
	for stop, accessSeconds := range e.Access {
		initial.SetTimeAtStop(stop, accessSeconds+departureTime, -1, -1, 0, 0, true, -1, -1, -1)
	}
}

// copyRoundChain makes an independent shallow copy of every round in
// rounds and relinks their Previous pointers to the new copies, so a Monte
// Carlo sub-iteration can mutate its own chain without disturbing the
// live Range-RAPTOR state the outer minute loop is still reusing. This is
// the array-wide form of RoundState.Copy/DeepCopy: a single round's
// DeepCopy cannot be used here because a later round's Previous must
// observe this draw's mutations to the earlier round, not the original's.
func copyRoundChain(rounds []*RoundState) []*RoundState {
	out := make([]*RoundState, len(rounds))
	for i, r := range rounds {
		out[i] = r.Copy()
	}
	for i := 1; i < len(out); i++ {
		out[i].Previous = out[i-1]
	}
	return out
}

// snapshotTravelTimes converts a round's bestNonTransferTimes into travel
// times relative to departureTime, copying the slice so later minutes'
// mutation of the shared round-state arrays cannot retroactively change
// an already-emitted result.
func snapshotTravelTimes(state *RoundState, departureTime int) []int {
	out := make([]int, len(state.BestNonTransferTimes))
	for i, t := range state.BestNonTransferTimes {
		if t == Unreached {
			out[i] = Unreached
		} else {
			out[i] = t - departureTime
		}
	}
	return out
}
