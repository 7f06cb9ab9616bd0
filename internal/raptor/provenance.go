package raptor

// sourcePatternForStop decides which pattern counts as "the one that
// reached this stop", for the purpose of forbidding an immediate
// re-board of the same pattern. When the stop's current best arrival is
// a transfer, the relevant pattern is the one that reached the
// *pre-transfer* stop, since the transfer target itself was never
// boarded from any pattern. When it is not a transfer, it is simply the
// pattern recorded for the stop's own best non-transfer arrival.
func sourcePatternForStop(state *RoundState, stop int) int {
	if preTransfer := state.TransferStop[stop]; preTransfer != -1 {
		return state.PreviousPattern[preTransfer]
	}
	return state.PreviousPattern[stop]
}
