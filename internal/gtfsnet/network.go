// Package gtfsnet is the reference network loader: it turns a zipped
// static GTFS feed into the raptor.Network view the routing core
// consumes, using github.com/OneBusAway/go-gtfs for parsing and a
// github.com/tidwall/rtree spatial index to build the walking-transfer
// table. It produces a read-only raptor.Network rather than a live,
// hot-swappable data source: GTFS parsing and pattern grouping are kept
// out of internal/raptor itself.
package gtfsnet

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	gtfs "github.com/OneBusAway/go-gtfs"
	"github.com/tidwall/rtree"

	"github.com/SuicideSin/raptor/internal/raptor"
)

// LatLon is a stop's geographic position, kept in a side table rather than
// on a raptor stop index, since the routing core never depends on
// geometry.
type LatLon struct {
	Lat, Lon float64
}

// Network is a raptor.Network backed by a parsed static GTFS feed. All
// fields are populated once by Load and never mutated afterward, so a
// Network is safe to share across concurrent searches.
type Network struct {
	stopIDs       []string
	stopIndex     map[string]int
	patterns      []raptor.TripPattern
	patternsFor   [][]int
	transfersFor  [][]raptor.Transfer
	serviceDates  map[string]map[string]bool // serviceID -> "2006-01-02" -> active
	serviceCodes  map[string]int
	maxServiceCode int
	modes         map[string]bool

	StopLocations []LatLon
}

// StopCount, PatternCount, Pattern, PatternsForStop, TransfersForStop and
// MaxServiceCode implement raptor.Network directly off the precomputed
// slices; ActiveServicesForDate is the only query requiring per-call work.
func (n *Network) StopCount() int      { return len(n.stopIDs) }
func (n *Network) PatternCount() int   { return len(n.patterns) }
func (n *Network) MaxServiceCode() int { return n.maxServiceCode }

// Modes returns the set of GTFS route types any pattern in the feed
// actually serves, computed once by buildPatterns.
func (n *Network) Modes() map[string]bool { return n.modes }

func (n *Network) Pattern(originalPatternIndex int) *raptor.TripPattern {
	return &n.patterns[originalPatternIndex]
}

func (n *Network) PatternsForStop(stop int) []int {
	return n.patternsFor[stop]
}

func (n *Network) TransfersForStop(stop int) []raptor.Transfer {
	return n.transfersFor[stop]
}

// ActiveServicesForDate builds the bitset of service codes running on
// date, consulting each service's calendar/calendar_dates-derived active
// set. It is the only Network method not precomputed at load time, since
// the set of active services is a function of the query date.
func (n *Network) ActiveServicesForDate(date time.Time) *raptor.Bitset {
	key := date.Format("2006-01-02")
	b := raptor.NewBitset(n.maxServiceCode + 1)
	for serviceID, dates := range n.serviceDates {
		if dates[key] {
			b.Set(n.serviceCodes[serviceID])
		}
	}
	return b
}

// StopID returns the GTFS stop_id for a raptor stop index, for presenting
// results to a caller.
func (n *Network) StopID(stop int) string {
	return n.stopIDs[stop]
}

// Load parses a zipped GTFS feed at path into a Network: stops become
// dense int indices, trips are grouped into patterns by identical stop
// sequence, and a walking transfer table is built from a radius search
// over an rtree spatial index of stop locations.
func Load(path string, maxWalkTransferMeters float64) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gtfsnet: reading %s: %w", path, err)
	}
	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("gtfsnet: parsing %s: %w", path, err)
	}

	n := &Network{
		stopIndex:    make(map[string]int, len(static.Stops)),
		serviceDates: make(map[string]map[string]bool),
		serviceCodes: make(map[string]int),
		modes:        make(map[string]bool),
	}

	for _, stop := range static.Stops {
		n.stopIndex[stop.Id] = len(n.stopIDs)
		n.stopIDs = append(n.stopIDs, stop.Id)
		n.StopLocations = append(n.StopLocations, LatLon{Lat: *stop.Latitude, Lon: *stop.Longitude})
	}
	n.patternsFor = make([][]int, len(n.stopIDs))
	n.transfersFor = make([][]raptor.Transfer, len(n.stopIDs))

	n.buildServiceCalendar(static)
	n.buildPatterns(static)
	n.buildTransferTable(maxWalkTransferMeters)

	for i := range n.patterns {
		n.patterns[i].BuildServicesActive(n.maxServiceCode)
	}

	return n, nil
}

// serviceCodeFor assigns a dense int code to a GTFS service_id the first
// time it is seen, the way Network.ActiveServicesForDate expects.
func (n *Network) serviceCodeFor(serviceID string) int {
	if code, ok := n.serviceCodes[serviceID]; ok {
		return code
	}
	code := len(n.serviceCodes)
	n.serviceCodes[serviceID] = code
	if code > n.maxServiceCode {
		n.maxServiceCode = code
	}
	return code
}

func (n *Network) buildServiceCalendar(static *gtfs.Static) {
	for _, svc := range static.Services {
		n.serviceCodeFor(svc.Id)
		dates := make(map[string]bool, len(svc.AddedDates)+len(svc.RemovedDates))
		for _, d := range svc.AddedDates {
			dates[d.Format("2006-01-02")] = true
		}
		for _, d := range svc.RemovedDates {
			dates[d.Format("2006-01-02")] = false
		}
		n.serviceDates[svc.Id] = dates
	}
}

// patternKey identifies a pattern by its ordered stop sequence and
// route, since two routes sharing an identical stop sequence are still
// distinct services: a pattern groups trips of the same route that stop
// at the same stops in the same order.
type patternKey struct {
	route string
	stops string
}

// buildPatterns groups trips into patterns by identical (route, stop
// sequence) and converts each GTFS stop_time sequence into the parallel
// Arrivals/Departures arrays raptor.TripSchedule expects, in seconds since
// midnight (GTFS's own representation, which already permits values past
// 24:00:00 for a service day's overnight trips).
func (n *Network) buildPatterns(static *gtfs.Static) {
	byKey := make(map[patternKey]int)

	routeIndex := make(map[string]int, len(static.Routes))
	for i, route := range static.Routes {
		routeIndex[route.Id] = i
	}

	for _, trip := range static.Trips {
		if len(trip.StopTimes) == 0 {
			continue
		}
		stopSeq := make([]int, len(trip.StopTimes))
		arrivals := make([]int, len(trip.StopTimes))
		departures := make([]int, len(trip.StopTimes))
		for i, st := range trip.StopTimes {
			stopSeq[i] = n.stopIndex[st.Stop.Id]
			arrivals[i] = int(st.ArrivalTime.Seconds())
			departures[i] = int(st.DepartureTime.Seconds())
		}

		key := patternKey{route: trip.Route.Id, stops: fmt.Sprint(stopSeq)}
		patternIdx, ok := byKey[key]
		if !ok {
			patternIdx = len(n.patterns)
			byKey[key] = patternIdx
			mode := ""
			if idx, ok := routeIndex[trip.Route.Id]; ok {
				mode = string(static.Routes[idx].Type)
			}
			n.modes[mode] = true
			n.patterns = append(n.patterns, raptor.TripPattern{
				Stops:        stopSeq,
				HasSchedules: true,
				RouteIndex:   routeIndex[trip.Route.Id],
				Mode:         mode,
			})
			for _, stop := range stopSeq {
				n.patternsFor[stop] = append(n.patternsFor[stop], patternIdx)
			}
		}

		n.patterns[patternIdx].TripSchedules = append(n.patterns[patternIdx].TripSchedules, raptor.TripSchedule{
			Arrivals:    arrivals,
			Departures:  departures,
			ServiceCode: n.serviceCodeFor(trip.Service.Id),
		})
	}

	for i := range n.patterns {
		sort.Slice(n.patterns[i].TripSchedules, func(a, b int) bool {
			return n.patterns[i].TripSchedules[a].Departures[0] < n.patterns[i].TripSchedules[b].Departures[0]
		})
	}
	for stop := range n.patternsFor {
		sort.Ints(n.patternsFor[stop])
	}
}

// buildTransferTable constructs the walking-transfer table via an rtree
// spatial index over stop locations, replacing any in-feed transfers.txt
// entries with a radius search so every stop gets a consistent
// walk-distance table.
func (n *Network) buildTransferTable(maxWalkTransferMeters float64) {
	index := &rtree.RTree{}
	for i, loc := range n.StopLocations {
		index.Insert([2]float64{loc.Lon, loc.Lat}, [2]float64{loc.Lon, loc.Lat}, i)
	}

	degreesRadius := maxWalkTransferMeters / 111_000.0

	for stop, origin := range n.StopLocations {
		min := [2]float64{origin.Lon - degreesRadius, origin.Lat - degreesRadius}
		max := [2]float64{origin.Lon + degreesRadius, origin.Lat + degreesRadius}
		index.Search(min, max, func(_, _ [2]float64, value any) bool {
			target := value.(int)
			if target == stop {
				return true
			}
			distanceMeters := haversineMeters(origin, n.StopLocations[target])
			if distanceMeters > maxWalkTransferMeters {
				return true
			}
			n.transfersFor[stop] = append(n.transfersFor[stop], raptor.Transfer{
				TargetStop:          target,
				DistanceMillimeters: int32(distanceMeters * 1000),
			})
			return true
		})
	}
}

const earthRadiusMeters = 6371000.0

func haversineMeters(a, b LatLon) float64 {
	lat1, lat2 := a.Lat*math.Pi/180, b.Lat*math.Pi/180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
