package raptor

// RunTransferRelaxation walks transfer edges from every stop reached by
// transit this round. Transfers are appended to the round in which the
// vehicle arrived; they never form their own round.
func RunTransferRelaxation(network Network, state *RoundState, walkSpeedMetersPerSecond float64, maxWalkMinutes int) {
	maxWalkMillimeters := walkSpeedMetersPerSecond * float64(maxWalkMinutes) * 60 * 1000

	state.NonTransferStopsTouched.Each(func(stop int) {
		for _, transfer := range network.TransfersForStop(stop) {
			if float64(transfer.DistanceMillimeters) >= maxWalkMillimeters {
				continue
			}
			walkSeconds := int(float64(transfer.DistanceMillimeters) / (walkSpeedMetersPerSecond * 1000))
			arrival := state.BestNonTransferTimes[stop] + walkSeconds
			state.SetTimeAtStop(transfer.TargetStop, arrival, -1, stop, 0, 0, true, -1, -1, walkSeconds)
		}
	})
}
