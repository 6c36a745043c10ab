// Package raptor implements the RAPTOR (Round-bAsed Public Transit
// Optimized Router) engine: given a frozen GTFS feed, it builds the
// read-only schedule index, stop projection and footpath graph once,
// then answers earliest-arrival queries against them.
package raptor

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/yongjun0702/krri-raptor/footpath"
	"github.com/yongjun0702/krri-raptor/geo"
	"github.com/yongjun0702/krri-raptor/gtfs"
	"github.com/yongjun0702/krri-raptor/schedule"
)

// Engine wires together everything a query needs and holds it
// read-only; Feed, Schedule, Projection and Footpath are built once at
// startup and shared by reference across concurrent queries.
type Engine struct {
	Feed       *gtfs.Feed
	Schedule   *schedule.Index
	Projection *geo.Projection
	Spatial    *geo.Index
	Footpath   *footpath.Graph
	Metadata   map[string]gtfs.Metadata
	Config     Config
}

// NewEngine builds the schedule index (E), stop projection and spatial
// index (C), footpath graph (F) and station metadata (D) from a frozen
// feed (B). A non-positive walking speed, footpath radius or search
// horizon, or a negative MaxTransfers, falls back to DefaultConfig's
// value; a zero-valued Logger becomes a no-op logger.
func NewEngine(feed *gtfs.Feed, cfg Config) *Engine {
	cfg = fillDefaults(cfg)

	lats := make([]float64, len(feed.Stops))
	lons := make([]float64, len(feed.Stops))
	for i, stop := range feed.Stops {
		lats[i] = stop.Lat
		lons[i] = stop.Lon
	}
	projection := geo.NewProjection(lats, lons)
	spatial := geo.BuildIndex(projection)

	scheduleIndex := schedule.Build(feed, cfg.Logger)
	footpathGraph := footpath.Build(projection, spatial, cfg.FootpathRadiusM, cfg.WalkingSpeedMPS)
	metadata := gtfs.BuildStationMetadata(feed)

	return &Engine{
		Feed:       feed,
		Schedule:   scheduleIndex,
		Projection: projection,
		Spatial:    spatial,
		Footpath:   footpathGraph,
		Metadata:   metadata,
		Config:     cfg,
	}
}

func fillDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.WalkingSpeedMPS <= 0 {
		cfg.WalkingSpeedMPS = defaults.WalkingSpeedMPS
	}
	if cfg.FootpathRadiusM <= 0 {
		cfg.FootpathRadiusM = defaults.FootpathRadiusM
	}
	if cfg.TripSearchHorizonS <= 0 {
		cfg.TripSearchHorizonS = defaults.TripSearchHorizonS
	}
	if cfg.MaxTransfers < 0 {
		cfg.MaxTransfers = defaults.MaxTransfers
	}
	if reflect.DeepEqual(cfg.Logger, zerolog.Logger{}) {
		cfg.Logger = zerolog.Nop()
	}
	return cfg
}
