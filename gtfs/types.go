// Package gtfs normalizes raw GTFS-shaped tabular rows into the frozen
// tables the rest of the engine operates on: service-day filtering,
// textual-time conversion, and per-stop display metadata.
package gtfs

/**
 * raw row shapes as they arrive from whatever upstream process decompressed
 * the GTFS archive and parsed its CSVs - that decoding step itself is out
 * of scope here, only the tabular rows are
 */

// StopRow is a single row of stops.txt.
type StopRow struct {
	StopID   string
	StopName string
	StopLat  float64
	StopLon  float64
}

// TripRow is a single row of trips.txt.
type TripRow struct {
	TripID    string
	RouteID   string
	ServiceID string
}

// RouteRow is a single row of routes.txt.
type RouteRow struct {
	RouteID        string
	RouteShortName string
	AgencyID       string
}

// StopTimeRow is a single row of stop_times.txt. ArrivalTime and
// DepartureTime are still textual (HH:MM[:SS]) at this layer.
type StopTimeRow struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   string
	DepartureTime string
}

/** normalized, frozen tables - produced by LoadFeed, read-only thereafter */

// Stop is an immutable, load-time record for one stop_id.
type Stop struct {
	StopID   string
	StopName string
	Lat      float64
	Lon      float64
}

// Route carries display-only route metadata.
type Route struct {
	RouteID        string
	RouteShortName string
	AgencyID       string
}

// StopTimeEntry is one scheduled visit of a trip to a stop, times already
// converted to integer-valued seconds-of-day (held as float64 so they
// compare directly with the solver's arrival labels, which also carry
// fractional walking times).
type StopTimeEntry struct {
	TripID        string
	StopID        string
	StopSequence  int
	ArrivalTime   float64
	DepartureTime float64
}

// Trip is a single scheduled run, StopTimes kept in input order (the
// schedule index is responsible for sorting/validating sequence order).
type Trip struct {
	TripID    string
	RouteID   string
	StopTimes []StopTimeEntry
}

// Feed is the frozen, normalized result of LoadFeed. Safe to share by
// reference across concurrent queries; nothing in it is mutated again.
type Feed struct {
	ServiceDate string
	Stops       []Stop
	Routes      []Route
	Trips       []Trip
	StopTimes   []StopTimeEntry
}
