package gtfs

// Metadata is purpose-built for display; the RAPTOR solver never reads
// it. Fields absent in the source tables surface as "Unknown".
type Metadata struct {
	StopName string
	Operator string
	Line     string
	LineInfo string
}

const unknownField = "Unknown"

// BuildStationMetadata left-joins stop_times -> trips -> routes -> stops
// and groups by stop_id, keeping the first observed (agency_id,
// route_short_name, stop_name) for each stop.
func BuildStationMetadata(feed *Feed) map[string]Metadata {
	routes_by_id := make(map[string]Route, len(feed.Routes))
	for _, route := range feed.Routes {
		routes_by_id[route.RouteID] = route
	}
	trips_by_id := make(map[string]Trip, len(feed.Trips))
	for _, trip := range feed.Trips {
		trips_by_id[trip.TripID] = trip
	}
	stop_names_by_id := make(map[string]string, len(feed.Stops))
	for _, stop := range feed.Stops {
		stop_names_by_id[stop.StopID] = stop.StopName
	}

	result := make(map[string]Metadata, len(feed.Stops))
	for _, entry := range feed.StopTimes {
		if _, already := result[entry.StopID]; already {
			continue
		}

		meta := Metadata{StopName: unknownField, Operator: unknownField, Line: unknownField, LineInfo: unknownField}
		if name, ok := stop_names_by_id[entry.StopID]; ok && name != "" {
			meta.StopName = name
		}
		if trip, ok := trips_by_id[entry.TripID]; ok {
			if route, ok := routes_by_id[trip.RouteID]; ok {
				if route.AgencyID != "" {
					meta.Operator = route.AgencyID
				}
				if route.RouteShortName != "" {
					meta.Line = route.RouteShortName
					meta.LineInfo = route.RouteShortName
				}
			}
		}
		result[entry.StopID] = meta
	}

	/* stops with no scheduled service still get a metadata row, name only */
	for _, stop := range feed.Stops {
		if _, already := result[stop.StopID]; already {
			continue
		}
		name := unknownField
		if stop.StopName != "" {
			name = stop.StopName
		}
		result[stop.StopID] = Metadata{StopName: name, Operator: unknownField, Line: unknownField, LineInfo: unknownField}
	}

	return result
}
