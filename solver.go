package raptor

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

/**
 * the multi-round label-setting algorithm: each round first relaxes
 * intra-round footpaths to a fixed point, then (unless this is the last
 * round) relaxes the earliest boardable departure of each trip at every
 * updated stop into the next round
 */

// FindRoutes runs the RAPTOR search from originStopID at
// departureSeconds for up to maxTransfers+1 rounds (rounds 0 through
// maxTransfers, so at most maxTransfers trips are boarded). It fails only with
// ErrOriginUnknown; unreachable destinations are simply absent from the
// returned Result's FinalResult. ctx is polled at round boundaries -
// cancellation or deadline produces a partial Result with
// Incomplete == true rather than an error.
func (e *Engine) FindRoutes(ctx context.Context, originStopID string, departureSeconds float64, maxTransfers int) (*Result, error) {
	origin_idx, known := e.Schedule.StopIndexByID[originStopID]
	if !known {
		return nil, ErrOriginUnknown
	}
	if maxTransfers < 0 {
		maxTransfers = 0
	}

	rounds := maxTransfers + 1
	num_stops := e.Schedule.NumStops
	labels := newLabels(rounds, num_stops)
	labels.setArrival(0, origin_idx, departureSeconds)

	updated := make([]map[int]bool, rounds)
	updated[0] = map[int]bool{origin_idx: true}

	query_id := uuid.New().String()
	rounds_stats := make([]RoundStat, 0, rounds)
	incomplete := false

	for r := 0; r < rounds; r++ {
		if ctx.Err() != nil {
			incomplete = true
			break
		}
		round_start := time.Now()

		foot_updates := e.relaxWalk(labels, r, updated[r])

		route_updates := 0
		if r < rounds-1 {
			next_updated, n := e.relaxRoute(labels, r, updated[r])
			route_updates = n
			updated[r+1] = next_updated
		}

		reached := countReached(labels, r, num_stops)
		elapsed := time.Since(round_start).Seconds()
		stat := RoundStat{Round: r, ReachedStops: reached, FootUpdates: foot_updates, RouteUpdates: route_updates, ElapsedSeconds: elapsed}
		rounds_stats = append(rounds_stats, stat)

		e.Config.Logger.Info().
			Str("query_id", query_id).
			Int("round", r).
			Int("reached_stops", reached).
			Int("foot_updates", foot_updates).
			Int("route_updates", route_updates).
			Msg("raptor round complete")

		if r < rounds-1 && len(updated[r+1]) == 0 {
			break
		}
	}

	result := &Result{
		QueryID:          query_id,
		OriginStopID:     originStopID,
		DepartureSeconds: departureSeconds,
		MaxTransfers:     maxTransfers,
		Incomplete:       incomplete,
		Labels:           labels,
		RoundsStats:      rounds_stats,
		FinalResult:      map[string]JourneyResult{},
	}

	for stop_idx := 0; stop_idx < num_stops; stop_idx++ {
		journey, reachable := Reconstruct(e.Schedule, labels, departureSeconds, stop_idx)
		if reachable {
			result.FinalResult[e.Schedule.StopIDByIndex[stop_idx]] = *journey
		}
	}

	return result, nil
}

// relaxWalk relaxes intra-round footpaths to a fixed point: stops
// reached on foot are folded into the same worklist so further walking
// from them is considered within the same round, rather than deferred
// to the next. Walking never consumes a transfer.
func (e *Engine) relaxWalk(labels *Labels, round int, updated map[int]bool) int {
	foot_updates := 0

	queue := make([]int, 0, len(updated))
	for stop := range updated {
		queue = append(queue, stop)
	}
	/* deterministic visiting order so Incomplete runs still diagnose the same way */
	sort.Ints(queue)

	for i := 0; i < len(queue); i++ {
		from_stop := queue[i]
		base_time := labels.Arrival(round, from_stop)
		if math.IsInf(base_time, 1) {
			continue
		}

		for _, edge := range e.Footpath.Neighbors(from_stop) {
			candidate := base_time + edge.WalkSeconds
			if candidate < labels.Arrival(round, edge.To) {
				labels.setArrival(round, edge.To, candidate)
				labels.setParent(round, edge.To, ParentRecord{
					Valid:       true,
					PrevStopIdx: from_stop,
					PrevRound:   round,
					Mode:        ModeWalk,
					StartTime:   base_time,
					ArriveTime:  candidate,
					LegDuration: edge.WalkSeconds,
				})
				foot_updates++
				updated[edge.To] = true
				/* re-queue even if edge.To was already visited: its
				   arrival just improved, so its own outgoing edges must
				   be re-relaxed against the new value to reach a true
				   fixed point rather than stopping at first discovery */
				queue = append(queue, edge.To)
			}
		}
	}

	return foot_updates
}

// relaxRoute relaxes one boardable trip per distinct trip_id per stop
// into the next round. For each s in updated, it locates
// by-stop entries departing in [t_base, t_base + horizon], takes the
// earliest qualifying departure per trip_id, and scans that trip
// forward from the boarding position to the end, improving every
// downstream stop's next-round arrival.
func (e *Engine) relaxRoute(labels *Labels, round int, updated map[int]bool) (map[int]bool, int) {
	route_updates := 0
	next_updated := map[int]bool{}
	horizon := e.Config.TripSearchHorizonS

	stops := make([]int, 0, len(updated))
	for stop := range updated {
		stops = append(stops, stop)
	}
	sort.Ints(stops)

	for _, from_stop := range stops {
		t_base := labels.Arrival(round, from_stop)
		if math.IsInf(t_base, 1) {
			continue
		}

		entries := e.Schedule.ByStop[from_stop]
		start := sort.Search(len(entries), func(i int) bool {
			return entries[i].DepartureTime >= t_base
		})

		seen_trip := map[int]bool{}
		for i := start; i < len(entries); i++ {
			entry := entries[i]
			if entry.DepartureTime > t_base+horizon {
				break
			}
			if seen_trip[entry.TripIdx] {
				continue
			}
			seen_trip[entry.TripIdx] = true

			wait := entry.DepartureTime - t_base
			trip := e.Schedule.ByTrip[entry.TripIdx]

			for pos := entry.Pos; pos < trip.Len(); pos++ {
				dest_idx := trip.StopIdx[pos]
				candidate_arrival := trip.ArrivalTime[pos]
				if candidate_arrival < labels.Arrival(round+1, dest_idx) {
					labels.setArrival(round+1, dest_idx, candidate_arrival)
					labels.setParent(round+1, dest_idx, ParentRecord{
						Valid:       true,
						PrevStopIdx: from_stop,
						PrevRound:   round,
						Mode:        ModeTrip,
						TripIdx:     entry.TripIdx,
						StartTime:   entry.DepartureTime,
						ArriveTime:  candidate_arrival,
						LegDuration: wait,
					})
					next_updated[dest_idx] = true
					route_updates++
				}
			}
		}
	}

	return next_updated, route_updates
}

func countReached(labels *Labels, round, numStops int) int {
	count := 0
	for s := 0; s < numStops; s++ {
		if !math.IsInf(labels.Arrival(round, s), 1) {
			count++
		}
	}
	return count
}
