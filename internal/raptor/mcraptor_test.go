package raptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelDominates(t *testing.T) {
	better := Label{Arrival: 100, Transfers: 1, Wait: 10, InVehicle: 50}
	worse := Label{Arrival: 120, Transfers: 1, Wait: 10, InVehicle: 50}
	assert.True(t, better.dominates(worse))
	assert.False(t, worse.dominates(better))

	// Neither dominates when each wins on a different criterion.
	fewerTransfers := Label{Arrival: 130, Transfers: 0, Wait: 10, InVehicle: 50}
	assert.False(t, better.dominates(fewerTransfers))
	assert.False(t, fewerTransfers.dominates(better))

	identical := Label{Arrival: 100, Transfers: 1, Wait: 10, InVehicle: 50}
	assert.False(t, better.dominates(identical), "a label never dominates an identical one")
}

func TestMcRoundStateInsertPrunesDominatedLabels(t *testing.T) {
	s := NewMcRoundState(1, 3600, nil)
	s.DepartureTime = 0

	inserted := s.Insert(0, Label{Arrival: 200, Transfers: 1, Wait: 20, InVehicle: 80})
	require.True(t, inserted)

	dominated := s.Insert(0, Label{Arrival: 250, Transfers: 1, Wait: 20, InVehicle: 80})
	assert.False(t, dominated)
	assert.Len(t, s.Labels[0], 1)

	dominating := s.Insert(0, Label{Arrival: 150, Transfers: 1, Wait: 20, InVehicle: 80})
	assert.True(t, dominating)
	require.Len(t, s.Labels[0], 1)
	assert.Equal(t, 150, s.Labels[0][0].Arrival)

	incomparable := s.Insert(0, Label{Arrival: 300, Transfers: 0, Wait: 20, InVehicle: 80})
	assert.True(t, incomparable)
	assert.Len(t, s.Labels[0], 2)
}

func TestMcRoundStateInsertRejectsBeyondMaxDuration(t *testing.T) {
	s := NewMcRoundState(1, 600, nil)
	s.DepartureTime = 0
	ok := s.Insert(0, Label{Arrival: 900})
	assert.False(t, ok)
	assert.Empty(t, s.Labels[0])
}

func TestMcRoundStateFoldFromDoesNotMarkTouched(t *testing.T) {
	earlier := NewMcRoundState(2, 3600, nil)
	earlier.DepartureTime = 0
	earlier.Insert(1, Label{Arrival: 500, Transfers: 0})
	earlier.ClearTouched()

	later := NewMcRoundState(2, 3600, nil)
	later.DepartureTime = 0
	later.FoldFrom(earlier)

	require.Len(t, later.Labels[1], 1)
	assert.False(t, later.BestStopsTouched.Get(1))
}

func TestRunMultiCriteriaSearchFindsParetoAlternatives(t *testing.T) {
	// A direct, slower single-ride BUS and a faster two-ride RAIL+BUS chain:
	// the direct ride wins on boarding count, the chain wins on arrival, so
	// neither dominates and both must survive to stop 2's frontier.
	network := newFakeNetwork(3)
	network.addPattern([]int{0, 2}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 50)},
	})
	network.addPattern([]int{0, 1}, "RAIL", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 10)},
	})
	network.addPattern([]int{1, 2}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 20), 0},
		Arrivals:   []int{0, secondsOfDay(8, 30)},
	})

	request := &Request{
		FromTime:                 secondsOfDay(8, 0),
		ToTime:                   secondsOfDay(8, 0),
		MaxRides:                 2,
		MaxTripDurationMinutes:   120,
		MaxWalkMinutes:           15,
		WalkSpeedMetersPerSecond: 1.0,
		Date:                     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MonteCarloDrawsPerMinute: 1,
	}

	labels := RunMultiCriteriaSearch(network, request, AccessTable{0: 0})
	require.NotEmpty(t, labels[2])

	var sawDirect, sawChain bool
	for _, l := range labels[2] {
		if l.Transfers == 1 && l.Arrival == secondsOfDay(8, 50) {
			sawDirect = true
		}
		if l.Transfers == 2 && l.Arrival == secondsOfDay(8, 30) {
			sawChain = true
		}
	}
	assert.True(t, sawDirect, "the one-ride direct journey must survive on boarding count")
	assert.True(t, sawChain, "the two-ride chain must survive on arrival time")
}

// RunMcTransferRelaxation propagates a label's own FromPattern and transfer
// count unchanged across a walk leg, only adding TransferTime/IsTransfer.
func TestRunMcTransferRelaxationPropagatesProvenanceAcrossWalk(t *testing.T) {
	network := newFakeNetwork(2)
	network.addTransfer(0, 1, 60*1000)

	state := NewMcRoundState(2, 3600, nil)
	state.DepartureTime = secondsOfDay(8, 0)
	state.Insert(0, Label{Arrival: secondsOfDay(8, 10), Transfers: 1, FromPattern: 3, FromTrip: 2, BoardTime: secondsOfDay(8, 0)})

	RunMcTransferRelaxation(network, state, 1.0, 15)

	require.Len(t, state.Labels[1], 1)
	got := state.Labels[1][0]
	assert.True(t, got.IsTransfer)
	assert.Equal(t, 1, got.Transfers)
	assert.Equal(t, 3, got.FromPattern)
	assert.Equal(t, secondsOfDay(8, 10)+60, got.Arrival)
	assert.Equal(t, 60, got.TransferTime)
}
