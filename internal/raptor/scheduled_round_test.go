package raptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccess(round *RoundState, access map[int]int, departureTime int) {
	for stop, seconds := range access {
		round.SetTimeAtStop(stop, departureTime+seconds, -1, -1, 0, 0, true, -1, -1, -1)
	}
}

// One scheduled trip A(08:05)->B(08:15), access A=60s, a single
// departure minute 08:00, maxRides=1: arrival(B) must be 08:15, a 900s
// travel time.
func TestScheduledRoundSingleRideWorkedExample(t *testing.T) {
	network := newFakeNetwork(2)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})
	filter := PrefilterPatterns(network, allActive(1), nil)

	round0 := NewRoundState(2, 3600, nil)
	round0.SetDepartureTime(secondsOfDay(8, 0))
	seedAccess(round0, map[int]int{0: 60}, secondsOfDay(8, 0))

	round1 := NewRoundState(2, 3600, nil)
	round1.SetDepartureTime(secondsOfDay(8, 0))
	round1.Previous = round0

	RunScheduledRound(network, filter, round0, round1, allActive(1))

	require.Equal(t, secondsOfDay(8, 15), round1.BestNonTransferTimes[1])
	assert.Equal(t, 900, round1.BestNonTransferTimes[1]-secondsOfDay(8, 0))
}

// As the single-ride case plus a 120s transfer B->C: arrival(C) = 08:17
// with transferStop[C] = B.
func TestScheduledRoundPlusTransferWorkedExample(t *testing.T) {
	network := newFakeNetwork(3)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})
	network.addTransfer(1, 2, 120*1000) // 120 s at 1 m/s

	filter := PrefilterPatterns(network, allActive(1), nil)

	round0 := NewRoundState(3, 3600, nil)
	round0.SetDepartureTime(secondsOfDay(8, 0))
	seedAccess(round0, map[int]int{0: 60}, secondsOfDay(8, 0))

	round1 := NewRoundState(3, 3600, nil)
	round1.SetDepartureTime(secondsOfDay(8, 0))
	round1.Previous = round0

	RunScheduledRound(network, filter, round0, round1, allActive(1))
	RunTransferRelaxation(network, round1, 1.0, 15)

	require.Equal(t, secondsOfDay(8, 15)+120, round1.BestTimes[2])
	assert.Equal(t, 1, round1.TransferStop[2])
}

// Two patterns chained over two rounds, A->B dep 08:05 arr 08:15, then
// B->C dep 08:20 arr 08:30 with maxRides=2: arrival(C)=08:30 via exactly
// two ride legs.
func TestScheduledRoundTwoPatternsTwoRoundsWorkedExample(t *testing.T) {
	network := newFakeNetwork(3)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})
	network.addPattern([]int{1, 2}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 20), 0},
		Arrivals:   []int{0, secondsOfDay(8, 30)},
	})
	filter := PrefilterPatterns(network, allActive(1), nil)

	round0 := NewRoundState(3, 3600, nil)
	round0.SetDepartureTime(secondsOfDay(8, 0))
	seedAccess(round0, map[int]int{0: 60}, secondsOfDay(8, 0))

	round1 := NewRoundState(3, 3600, nil)
	round1.SetDepartureTime(secondsOfDay(8, 0))
	round1.Previous = round0
	RunScheduledRound(network, filter, round0, round1, allActive(1))
	RunTransferRelaxation(network, round1, 1.0, 15)

	round2 := NewRoundState(3, 3600, nil)
	round2.SetDepartureTime(secondsOfDay(8, 0))
	round2.Previous = round1
	round2.Min(round1)
	RunScheduledRound(network, filter, round1, round2, allActive(1))
	RunTransferRelaxation(network, round2, 1.0, 15)

	require.Equal(t, secondsOfDay(8, 30), round2.BestNonTransferTimes[2])

	path := reconstructPath(round2, 2)
	require.Len(t, path.Legs, 2)
	assert.Equal(t, LegRide, path.Legs[0].Kind)
	assert.Equal(t, LegRide, path.Legs[1].Kind)
	assert.Equal(t, 0, path.Legs[0].FromStop)
	assert.Equal(t, 1, path.Legs[0].ToStop)
	assert.Equal(t, 1, path.Legs[1].FromStop)
	assert.Equal(t, 2, path.Legs[1].ToStop)
}

// A pattern whose only service is inactive today must never be
// boarded, even though its stops are touched by access.
func TestScheduledRoundNeverBoardsInactiveServicePattern(t *testing.T) {
	network := newFakeNetwork(2)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures:  []int{secondsOfDay(8, 5), 0},
		Arrivals:    []int{0, secondsOfDay(8, 15)},
		ServiceCode: 0,
	})

	// Service 0 is never marked active today.
	servicesActiveToday := NewBitset(network.maxServiceCode + 1)
	filter := PrefilterPatterns(network, servicesActiveToday, nil)
	assert.Empty(t, filter.ScheduledOriginal, "the prefilter must drop a pattern with no active service")

	round0 := NewRoundState(2, 3600, nil)
	round0.SetDepartureTime(secondsOfDay(8, 0))
	seedAccess(round0, map[int]int{0: 60}, secondsOfDay(8, 0))

	round1 := NewRoundState(2, 3600, nil)
	round1.SetDepartureTime(secondsOfDay(8, 0))
	round1.Previous = round0
	RunScheduledRound(network, filter, round0, round1, servicesActiveToday)

	assert.Equal(t, Unreached, round1.BestNonTransferTimes[1])
}
