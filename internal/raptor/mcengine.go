package raptor

// RunMultiCriteriaSearch is the alternate entry point that keeps
// Pareto-optimal (arrival, transfers, wait, in-vehicle) labels instead of
// a scalar best, sharing the pattern-scan skeleton and trip-boarding
// search unchanged from Engine.Route.
//
// Unlike Engine.Route it runs a single fixed-departure search rather than
// a Range-RAPTOR sweep: a later minute's frontier is not a valid upper
// bound for an earlier minute's on every criterion at once (arriving
// later can still win on transfers or wait), so the minute-reuse trick
// that makes Range-RAPTOR sound for a scalar arrival time does not carry
// over to a Pareto set. Request.ToTime/MonteCarloDrawsPerMinute/RetainPaths
// are unused here; Request.FromTime is the single departure instant.
func RunMultiCriteriaSearch(network Network, request *Request, access AccessTable) [][]Label {
	servicesActive := network.ActiveServicesForDate(request.Date)
	filter := PrefilterPatterns(network, servicesActive, request.TransitModes)

	nStops := network.StopCount()
	maxDurationSeconds := request.MaxTripDurationMinutes * 60

	rounds := make([]*McRoundState, request.MaxRides+1)
	for i := range rounds {
		rounds[i] = NewMcRoundState(nStops, maxDurationSeconds, nil)
		rounds[i].DepartureTime = request.FromTime
	}
	for stop, accessSeconds := range access {
		rounds[0].Insert(stop, Label{
			Arrival:     accessSeconds + request.FromTime,
			FromPattern: -1,
			FromTrip:    -1,
			FromStop:    -1,
			BoardTime:   -1,
		})
	}

	for round := 1; round <= request.MaxRides; round++ {
		rounds[round].FoldFrom(rounds[round-1])
		RunMcScheduledRound(network, filter, rounds[round-1], rounds[round], servicesActive)
		RunMcTransferRelaxation(network, rounds[round], request.WalkSpeedMetersPerSecond, request.MaxWalkMinutes)
	}

	final := rounds[request.MaxRides]
	out := make([][]Label, nStops)
	for stop := 0; stop < nStops; stop++ {
		out[stop] = append([]Label(nil), final.Labels[stop]...)
	}
	return out
}
