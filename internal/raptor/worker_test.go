package raptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleRideNetwork() *fakeNetwork {
	network := newFakeNetwork(2)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})
	return network
}

func TestEngineRouteEndToEndSingleRide(t *testing.T) {
	network := singleRideNetwork()
	request := &Request{
		FromTime:                 secondsOfDay(8, 0),
		ToTime:                   secondsOfDay(8, 1),
		MaxRides:                 1,
		MaxTripDurationMinutes:   60,
		MaxWalkMinutes:           15,
		WalkSpeedMetersPerSecond: 1.0,
		Date:                     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MonteCarloDrawsPerMinute: 1,
		Seed:                     1,
	}
	engine, err := NewEngine(network, request, AccessTable{0: 60}, nil)
	require.NoError(t, err)

	results := engine.Route()
	require.Len(t, results, 1)
	assert.Equal(t, 900, results[0][1])
}

// Running the engine twice with identical seed yields identical
// matrices.
func TestEngineRouteIsDeterministicForIdenticalSeed(t *testing.T) {
	network := newFakeNetwork(3)
	network.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{0, 600},
		Arrivals:   []int{0, 600},
		Frequency:  &FrequencyBlock{HeadwaySeconds: 300, EntryStart: 0, EntryEnd: secondsOfDay(23, 0)},
	})
	request := &Request{
		FromTime:                 secondsOfDay(8, 0),
		ToTime:                   secondsOfDay(8, 3),
		MaxRides:                 1,
		MaxTripDurationMinutes:   60,
		MaxWalkMinutes:           15,
		WalkSpeedMetersPerSecond: 1.0,
		Date:                     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MonteCarloDrawsPerMinute: 2,
		Seed:                     7,
	}

	engineA, err := NewEngine(network, request, AccessTable{0: 0}, nil)
	require.NoError(t, err)
	resultsA := engineA.Route()

	engineB, err := NewEngine(network, request, AccessTable{0: 0}, nil)
	require.NoError(t, err)
	resultsB := engineB.Route()

	assert.Equal(t, resultsA, resultsB)
}

// With frequency patterns filtered out and drawsPerMinute=1, the result
// is exactly the scheduled-only baseline repeated drawsPerMinute times —
// here, trivially, just the scheduled-only result itself.
func TestEngineRouteFrequencyDisabledMatchesScheduledOnlyBaseline(t *testing.T) {
	mixed := newFakeNetwork(2)
	mixed.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})
	mixed.addPattern([]int{0, 1}, "RAIL", TripSchedule{
		Departures: []int{0, 600},
		Arrivals:   []int{0, 600},
		Frequency:  &FrequencyBlock{HeadwaySeconds: 300, EntryStart: 0, EntryEnd: secondsOfDay(23, 0)},
	})

	scheduledOnly := newFakeNetwork(2)
	scheduledOnly.addPattern([]int{0, 1}, "BUS", TripSchedule{
		Departures: []int{secondsOfDay(8, 5), 0},
		Arrivals:   []int{0, secondsOfDay(8, 15)},
	})

	request := &Request{
		FromTime:                 secondsOfDay(8, 0),
		ToTime:                   secondsOfDay(8, 1),
		MaxRides:                 1,
		MaxTripDurationMinutes:   60,
		MaxWalkMinutes:           15,
		WalkSpeedMetersPerSecond: 1.0,
		Date:                     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MonteCarloDrawsPerMinute: 1,
		Seed:                     1,
		TransitModes:             map[string]bool{"BUS": true},
	}

	mixedEngine, err := NewEngine(mixed, request, AccessTable{0: 60}, nil)
	require.NoError(t, err)
	mixedResults := mixedEngine.Route()

	baselineRequest := *request
	baselineRequest.TransitModes = nil
	baselineEngine, err := NewEngine(scheduledOnly, &baselineRequest, AccessTable{0: 60}, nil)
	require.NoError(t, err)
	baselineResults := baselineEngine.Route()

	assert.Equal(t, baselineResults, mixedResults)
}

func TestNewEngineRejectsMalformedRequest(t *testing.T) {
	network := singleRideNetwork()
	request := &Request{
		FromTime:                 secondsOfDay(8, 1),
		ToTime:                   secondsOfDay(8, 0), // ToTime before FromTime
		MaxRides:                 1,
		MaxTripDurationMinutes:   60,
		MaxWalkMinutes:           15,
		WalkSpeedMetersPerSecond: 1.0,
		Date:                     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		MonteCarloDrawsPerMinute: 1,
	}
	_, err := NewEngine(network, request, AccessTable{0: 0}, nil)
	require.Error(t, err)
	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
}
