package raptor

import "github.com/rs/zerolog"

// Config holds engine-wide tunables. All four have defaults; Logger
// defaults to a no-op logger when left zero-valued.
type Config struct {
	// WalkingSpeedMPS is the divisor when converting footpath distance
	// to a walking time.
	WalkingSpeedMPS float64
	// FootpathRadiusM is the maximum allowed walking edge length.
	FootpathRadiusM float64
	// TripSearchHorizonS is the maximum wait the route-relaxation step
	// will consider when looking for a boardable trip.
	TripSearchHorizonS float64
	// MaxTransfers is the configured round count K. FindRoutes does not
	// read it: each query passes its own K as an argument.
	MaxTransfers int
	// Logger receives round-by-round diagnostics and data-inconsistency
	// warnings surfaced while building the engine.
	Logger zerolog.Logger
}

// DefaultConfig returns the engine's built-in configuration defaults.
func DefaultConfig() Config {
	return Config{
		WalkingSpeedMPS:    1.4,
		FootpathRadiusM:    320,
		TripSearchHorizonS: 10800,
		MaxTransfers:       3,
		Logger:             zerolog.Nop(),
	}
}
