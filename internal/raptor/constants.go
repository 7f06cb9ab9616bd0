package raptor

// Core constants, bit-exact per the routing engine's external contract.
// These are compile-time constants, not runtime-tunable configuration:
// changing the boarding search's break-even point or the slack windows
// changes search semantics, not just performance.
const (
	// Unreached stands in for +Infinity for arrival times. It equals
	// MaxInt32, far below the 64-bit int range, so propagation math (adding
	// walk or wait time to it) never overflows a 64-bit int.
	Unreached = 1<<31 - 1

	// BoardSlackSeconds is the minimum slack enforced between an arrival at
	// a stop and the board search's earliestBoardTime in the scheduled
	// round.
	BoardSlackSeconds = 60

	// MinimumBoardWaitSeconds plays the same role as BoardSlackSeconds but
	// for the frequency round's earliest-board computation, kept as a
	// separately named constant because the two searches address it in
	// different contexts even though both are 60s today.
	MinimumBoardWaitSeconds = 60

	// DepartureStepSeconds is the Range-RAPTOR minute step.
	DepartureStepSeconds = 60

	// TripSearchBinaryThreshold is the trip-count break-even point between
	// the linear backward scan and the binary-then-linear scan in the trip
	// boarding search.
	TripSearchBinaryThreshold = 46
)
