// Package schedule builds the two derived indices the RAPTOR solver
// scans every round: stops ordered by departure, and trips ordered by
// stop sequence. Both are built once from a frozen gtfs.Feed and are
// safe for concurrent read-only use by multiple queries.
package schedule

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/yongjun0702/krri-raptor/gtfs"
)

// ByStopEntry is one boardable departure at a stop: which trip, when it
// leaves, and where in that trip's ByTrip arrays this stop sits (so the
// solver can jump straight to the forward scan without a second
// lookup).
type ByStopEntry struct {
	TripIdx       int
	TripID        string
	DepartureTime float64
	Pos           int
}

// TripArrays are a trip's stop_times, flattened to parallel slices
// sorted by stop_sequence, per the "don't reconstruct per-trip views on
// the fly" design note.
type TripArrays struct {
	StopIdx       []int
	StopSeq       []int
	ArrivalTime   []float64
	DepartureTime []float64
}

// Len returns how many stops this trip visits.
func (t TripArrays) Len() int {
	return len(t.StopIdx)
}

// Index is the frozen, read-only schedule index. Stop and trip indices
// are dense: a stop's index is its position in the feed's Stops slice,
// a trip's index is its position in the feed's Trips slice.
type Index struct {
	NumStops      int
	StopIndexByID map[string]int
	StopIDByIndex []string
	TripIndexByID map[string]int
	TripIDByIndex []string
	ByStop        [][]ByStopEntry
	ByTrip        []TripArrays
}

// Build constructs ByStopIndex and ByTripIndex in a single pass each
// over feed.Trips. A trip whose stop_sequence is not strictly increasing
// is logged and skipped entirely; a stop_time referencing an unknown
// stop_id is logged and skipped as a single row.
func Build(feed *gtfs.Feed, logger zerolog.Logger) *Index {
	stop_index_by_id := make(map[string]int, len(feed.Stops))
	stop_id_by_index := make([]string, len(feed.Stops))
	for i, stop := range feed.Stops {
		stop_index_by_id[stop.StopID] = i
		stop_id_by_index[i] = stop.StopID
	}

	trip_index_by_id := make(map[string]int, len(feed.Trips))
	trip_id_by_index := make([]string, len(feed.Trips))
	for i, trip := range feed.Trips {
		trip_index_by_id[trip.TripID] = i
		trip_id_by_index[i] = trip.TripID
	}

	by_stop := make([][]ByStopEntry, len(feed.Stops))
	by_trip := make([]TripArrays, len(feed.Trips))

	for trip_idx, trip := range feed.Trips {
		stop_times := make([]gtfs.StopTimeEntry, len(trip.StopTimes))
		copy(stop_times, trip.StopTimes)
		sort.SliceStable(stop_times, func(a, b int) bool {
			return stop_times[a].StopSequence < stop_times[b].StopSequence
		})

		monotone := true
		for k := 1; k < len(stop_times); k++ {
			if stop_times[k].StopSequence <= stop_times[k-1].StopSequence {
				monotone = false
				break
			}
		}
		if !monotone {
			logger.Warn().Str("trip_id", trip.TripID).Msg("schedule: non-monotone stop_sequence, skipping trip")
			continue
		}

		var arrays TripArrays
		for _, entry := range stop_times {
			stop_idx, known := stop_index_by_id[entry.StopID]
			if !known {
				logger.Warn().Str("trip_id", trip.TripID).Str("stop_id", entry.StopID).Msg("schedule: stop_time references unknown stop, skipping row")
				continue
			}

			pos := len(arrays.StopIdx)
			arrays.StopIdx = append(arrays.StopIdx, stop_idx)
			arrays.StopSeq = append(arrays.StopSeq, entry.StopSequence)
			arrays.ArrivalTime = append(arrays.ArrivalTime, entry.ArrivalTime)
			arrays.DepartureTime = append(arrays.DepartureTime, entry.DepartureTime)

			by_stop[stop_idx] = append(by_stop[stop_idx], ByStopEntry{
				TripIdx:       trip_idx,
				TripID:        trip.TripID,
				DepartureTime: entry.DepartureTime,
				Pos:           pos,
			})
		}
		by_trip[trip_idx] = arrays
	}

	for stop_idx := range by_stop {
		entries := by_stop[stop_idx]
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].DepartureTime != entries[b].DepartureTime {
				return entries[a].DepartureTime < entries[b].DepartureTime
			}
			/* stable, deterministic tie-break across otherwise-equal departures (S6) */
			return entries[a].TripID < entries[b].TripID
		})
	}

	return &Index{
		NumStops:      len(feed.Stops),
		StopIndexByID: stop_index_by_id,
		StopIDByIndex: stop_id_by_index,
		TripIndexByID: trip_index_by_id,
		TripIDByIndex: trip_id_by_index,
		ByStop:        by_stop,
		ByTrip:        by_trip,
	}
}
