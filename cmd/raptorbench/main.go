// Command raptorbench runs one Range-RAPTOR / Monte Carlo search against a
// static GTFS feed and prints its result: a one-shot CLI benchmark and
// debugging tool rather than a long-running REST server, since this
// engine's scope does not include an HTTP server.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/twpayne/go-polyline"

	"github.com/SuicideSin/raptor/internal/gtfsnet"
	"github.com/SuicideSin/raptor/internal/raptor"
	"github.com/SuicideSin/raptor/internal/raptorconf"
	"github.com/SuicideSin/raptor/internal/raptorlog"
	"github.com/SuicideSin/raptor/internal/searchcache"
)

func main() {
	networkPath := flag.String("network", "", "path to a zipped static GTFS feed")
	configPath := flag.String("config", "", "path to a YAML config file")
	envPath := flag.String("env", "", "path to a .env file")
	logFile := flag.String("log-file", "", "rotated log file path (stdout only if empty)")
	originStopID := flag.String("origin", "", "GTFS stop_id to depart from")
	dateFlag := flag.String("date", "", "search date, YYYY-MM-DD (defaults to today)")
	fromTime := flag.Int("from", 6*3600, "earliest departure, seconds since midnight")
	toTime := flag.Int("to", 10*3600, "latest departure, seconds since midnight")
	maxRides := flag.Int("max-rides", 0, "override the config's default max rides (0 = use config)")
	seed := flag.Int64("seed", 1, "Monte Carlo seed")
	drawPath := flag.Bool("draw-path", false, "print an encoded polyline for the best path to every stop")
	flag.Parse()

	if *networkPath == "" || *originStopID == "" {
		fmt.Fprintln(os.Stderr, "raptorbench: -network and -origin are required")
		os.Exit(2)
	}

	cfg, err := raptorconf.Load(*configPath, *envPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "raptorbench:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	_ = level.UnmarshalText([]byte(cfg.LogLevel))
	logger := raptorlog.NewStructuredLogger(os.Stdout, level)
	if *logFile != "" {
		logger = raptorlog.NewMultiLogger(*logFile, level)
	}

	maxWalkTransferMeters := cfg.DefaultWalkSpeedMetersPerSecond * float64(cfg.DefaultMaxWalkMinutes) * 60
	network, err := gtfsnet.Load(*networkPath, maxWalkTransferMeters)
	if err != nil {
		raptorlog.LogError(logger, "failed to load network", err, "path", *networkPath)
		os.Exit(1)
	}
	raptorlog.LogOperation(logger, "network_loaded",
		"stops", network.StopCount(), "patterns", network.PatternCount())

	date := time.Now()
	if *dateFlag != "" {
		date, err = time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "raptorbench: invalid -date:", err)
			os.Exit(2)
		}
	}

	originStop, ok := resolveStop(network, *originStopID)
	if !ok {
		fmt.Fprintf(os.Stderr, "raptorbench: unknown origin stop %q\n", *originStopID)
		os.Exit(2)
	}

	effectiveMaxRides := cfg.DefaultMaxRides
	if *maxRides > 0 {
		effectiveMaxRides = *maxRides
	}

	request := &raptor.Request{
		FromTime:                 *fromTime,
		ToTime:                   *toTime,
		MaxRides:                 effectiveMaxRides,
		MaxTripDurationMinutes:   cfg.DefaultMaxTripDurationMinutes,
		MaxWalkMinutes:           cfg.DefaultMaxWalkMinutes,
		WalkSpeedMetersPerSecond: cfg.DefaultWalkSpeedMetersPerSecond,
		Date:                     date,
		MonteCarloDrawsPerMinute: cfg.DefaultMonteCarloDraws,
		RetainPaths:              *drawPath,
		Seed:                     *seed,
	}

	access := raptor.AccessTable{originStop: 0}

	var cache *searchcache.Cache
	var cacheKey searchcache.Key
	if cfg.CachePath != "" {
		cache, err = searchcache.Open(cfg.CachePath)
		if err != nil {
			raptorlog.LogError(logger, "failed to open search cache", err, "path", cfg.CachePath)
			os.Exit(1)
		}
		defer cache.Close()
		cacheKey = searchcache.Key{
			AccessHash: searchcache.HashAccessTable(access),
			Date:       date.Format("2006-01-02"),
			FromTime:   *fromTime,
			ToTime:     *toTime,
			Seed:       *seed,
		}
	}

	var results [][]int
	if cache != nil && !*drawPath {
		if cached, ok := cache.Get(cacheKey); ok {
			raptorlog.LogOperation(logger, "search_cache_hit", "iterations", len(cached))
			results = cached
		}
	}

	var engine *raptor.Engine
	if results == nil {
		engine, err = raptor.NewEngine(network, request, access, logger)
		if err != nil {
			raptorlog.LogError(logger, "invalid request", err)
			os.Exit(1)
		}

		results = engine.Route()
		raptorlog.LogOperation(logger, "search_complete", "iterations", len(results))

		if cache != nil {
			if err := cache.Put(cacheKey, results); err != nil {
				raptorlog.LogError(logger, "failed to write search cache", err)
			}
		}
	}

	if *drawPath && len(engine.PathsPerIteration) > 0 {
		printEncodedPaths(network, engine.PathsPerIteration[0])
		return
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		raptorlog.LogError(logger, "failed to encode results", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

func resolveStop(network *gtfsnet.Network, stopID string) (int, bool) {
	for i := 0; i < network.StopCount(); i++ {
		if network.StopID(i) == stopID {
			return i, true
		}
	}
	return 0, false
}

// printEncodedPaths emits one polyline-encoded string per reached stop's
// best path, tracing through every leg's endpoint coordinates.
func printEncodedPaths(network *gtfsnet.Network, paths []raptor.Path) {
	for _, path := range paths {
		if len(path.Legs) == 0 {
			continue
		}
		coords := make([][]float64, 0, len(path.Legs)+1)
		first := path.Legs[0]
		loc := network.StopLocations[first.FromStop]
		coords = append(coords, []float64{loc.Lat, loc.Lon})
		for _, leg := range path.Legs {
			loc := network.StopLocations[leg.ToStop]
			coords = append(coords, []float64{loc.Lat, loc.Lon})
		}
		fmt.Printf("%s %s\n", network.StopID(path.Stop), string(polyline.EncodeCoords(coords)))
	}
}
