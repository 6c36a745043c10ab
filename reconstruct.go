package raptor

import (
	"math"

	"github.com/yongjun0702/krri-raptor/schedule"
)

// Reconstruct walks parent pointers from destIdx back to the origin.
// It picks best_round = argmin_r arrivals[r][dest]; a destination whose
// best arrival is still infinite after every round is unreachable and
// the second return value is false.
//
// A visited (stop, round) set guards against cycles in (possibly
// corrupted) parent data; reconstruction always terminates, taking the
// guard path rather than looping forever.
func Reconstruct(idx *schedule.Index, labels *Labels, departureSeconds float64, destIdx int) (*JourneyResult, bool) {
	best_round := -1
	best_arrival := math.Inf(1)
	for r := 0; r < labels.Rounds; r++ {
		arrival := labels.Arrival(r, destIdx)
		if arrival < best_arrival {
			best_arrival = arrival
			best_round = r
		}
	}
	if math.IsInf(best_arrival, 1) {
		return nil, false
	}

	type visitKey struct {
		stop  int
		round int
	}
	visited := map[visitKey]bool{}

	var path_stops []string
	var schedule_data []ScheduleStep

	current_stop, current_round := destIdx, best_round
	for {
		key := visitKey{current_stop, current_round}
		if visited[key] {
			break
		}
		visited[key] = true

		path_stops = append(path_stops, idx.StopIDByIndex[current_stop])
		parent := labels.Parent(current_round, current_stop)

		if !parent.Valid {
			base_time := labels.Arrival(current_round, current_stop)
			schedule_data = append(schedule_data, ScheduleStep{
				StopID:        idx.StopIDByIndex[current_stop],
				ArrivalAtStop: base_time,
				LegStartTime:  base_time,
				LegDuration:   0,
				Mode:          ModeNone,
			})
			break
		}

		trip_id := ""
		if parent.Mode == ModeTrip {
			trip_id = idx.TripIDByIndex[parent.TripIdx]
		}
		schedule_data = append(schedule_data, ScheduleStep{
			StopID:        idx.StopIDByIndex[current_stop],
			ArrivalAtStop: labels.Arrival(current_round, current_stop),
			LegStartTime:  parent.StartTime,
			LegDuration:   parent.LegDuration,
			Mode:          parent.Mode,
			TripID:        trip_id,
		})

		current_stop, current_round = parent.PrevStopIdx, parent.PrevRound
	}

	reverseStrings(path_stops)
	reverseSteps(schedule_data)

	return &JourneyResult{
		TotalTime:    best_arrival - departureSeconds,
		PathStops:    path_stops,
		ScheduleData: schedule_data,
	}, true
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseSteps(s []ScheduleStep) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
