package gtfs

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// FeedInput is the full set of contractual input tables, plus a
// pre-expanded calendar: date (caller-defined format, compared only for
// ordering/equality) -> active service_ids on that date. Expanding
// calendar.txt/calendar_dates.txt into this map is itself CSV/rule
// parsing, out of scope for the core the same way stop_times' raw text
// is - the caller is expected to hand over an already-expanded index.
type FeedInput struct {
	Stops                []StopRow
	Trips                []TripRow
	Routes               []RouteRow
	StopTimes            []StopTimeRow
	ActiveServicesByDate map[string][]string
}

// LoadFeed selects the busiest service day, restricts trips to the
// services active that day, and converts stop_times' textual time
// columns to integer seconds. The returned Feed is frozen: callers must
// not mutate its slices afterward.
func LoadFeed(input FeedInput, logger zerolog.Logger) (*Feed, error) {
	date, serviceIDs := busiestDate(input.ActiveServicesByDate)
	active := make(map[string]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		active[id] = true
	}

	keptTrips := make(map[string]TripRow, len(input.Trips))
	for _, trip := range input.Trips {
		if active[trip.ServiceID] {
			keptTrips[trip.TripID] = trip
		}
	}

	stops := make([]Stop, 0, len(input.Stops))
	for _, row := range input.Stops {
		stops = append(stops, Stop{StopID: row.StopID, StopName: row.StopName, Lat: row.StopLat, Lon: row.StopLon})
	}

	routes := make([]Route, 0, len(input.Routes))
	for _, row := range input.Routes {
		routes = append(routes, Route{RouteID: row.RouteID, RouteShortName: row.RouteShortName, AgencyID: row.AgencyID})
	}

	stop_times_by_trip := map[string][]StopTimeEntry{}
	trip_order := make([]string, 0, len(keptTrips))
	flat_stop_times := make([]StopTimeEntry, 0, len(input.StopTimes))

	for _, row := range input.StopTimes {
		if _, is_kept := keptTrips[row.TripID]; !is_kept {
			continue
		}

		arrival, err := ParseTime(row.ArrivalTime)
		if err != nil {
			logger.Warn().Str("trip_id", row.TripID).Str("stop_id", row.StopID).Str("field", "arrival_time").Msg("gtfs: skipping stop_time row, bad time format")
			continue
		}
		departure, err := ParseTime(row.DepartureTime)
		if err != nil {
			logger.Warn().Str("trip_id", row.TripID).Str("stop_id", row.StopID).Str("field", "departure_time").Msg("gtfs: skipping stop_time row, bad time format")
			continue
		}
		if arrival > departure {
			logger.Warn().Str("trip_id", row.TripID).Str("stop_id", row.StopID).Msg("gtfs: skipping stop_time row, arrival after departure")
			continue
		}

		entry := StopTimeEntry{
			TripID:        row.TripID,
			StopID:        row.StopID,
			StopSequence:  row.StopSequence,
			ArrivalTime:   arrival,
			DepartureTime: departure,
		}
		if _, seen := stop_times_by_trip[row.TripID]; !seen {
			trip_order = append(trip_order, row.TripID)
		}
		stop_times_by_trip[row.TripID] = append(stop_times_by_trip[row.TripID], entry)
		flat_stop_times = append(flat_stop_times, entry)
	}

	trips := make([]Trip, 0, len(trip_order))
	for _, trip_id := range trip_order {
		trip_row := keptTrips[trip_id]
		trips = append(trips, Trip{TripID: trip_id, RouteID: trip_row.RouteID, StopTimes: stop_times_by_trip[trip_id]})
	}

	if len(stops) == 0 {
		return nil, errors.New("gtfs: feed has no stops")
	}

	return &Feed{
		ServiceDate: date,
		Stops:       stops,
		Routes:      routes,
		Trips:       trips,
		StopTimes:   flat_stop_times,
	}, nil
}

// busiestDate picks the calendar date with the largest set of active
// service_ids. Ties are broken by the lexicographically smallest date
// string, so the choice is deterministic across runs.
func busiestDate(activeServicesByDate map[string][]string) (string, []string) {
	dates := make([]string, 0, len(activeServicesByDate))
	for date := range activeServicesByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	best_date := ""
	var best_services []string
	for _, date := range dates {
		services := activeServicesByDate[date]
		if len(services) > len(best_services) {
			best_date = date
			best_services = services
		}
	}
	return best_date, best_services
}
