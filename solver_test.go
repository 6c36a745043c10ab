package raptor

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yongjun0702/krri-raptor/footpath"
	"github.com/yongjun0702/krri-raptor/gtfs"
)

const metersPerDegreeLat = 111320.0

func degLatFor(meters float64) float64 {
	return meters / metersPerDegreeLat
}

func secText(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

type fixtureStop struct {
	id       string
	latDelta float64
}

type fixtureStopTime struct {
	tripID   string
	stopID   string
	sequence int
	arrival  int
	depart   int
}

func buildEngine(t *testing.T, stops []fixtureStop, tripIDs []string, times []fixtureStopTime) *Engine {
	t.Helper()

	stopRows := make([]gtfs.StopRow, len(stops))
	for i, s := range stops {
		stopRows[i] = gtfs.StopRow{StopID: s.id, StopName: s.id, StopLat: s.latDelta, StopLon: 0}
	}

	tripRows := make([]gtfs.TripRow, len(tripIDs))
	for i, id := range tripIDs {
		tripRows[i] = gtfs.TripRow{TripID: id, RouteID: "R", ServiceID: "weekday"}
	}

	stopTimeRows := make([]gtfs.StopTimeRow, len(times))
	for i, ent := range times {
		stopTimeRows[i] = gtfs.StopTimeRow{
			TripID:        ent.tripID,
			StopID:        ent.stopID,
			StopSequence:  ent.sequence,
			ArrivalTime:   secText(ent.arrival),
			DepartureTime: secText(ent.depart),
		}
	}

	input := gtfs.FeedInput{
		Stops:                stopRows,
		Trips:                tripRows,
		StopTimes:            stopTimeRows,
		ActiveServicesByDate: map[string][]string{"service-day": {"weekday"}},
	}

	feed, err := gtfs.LoadFeed(input, zerolog.Nop())
	require.NoError(t, err)

	cfg := DefaultConfig()
	return NewEngine(feed, cfg)
}

func TestScenarioS1SingleStopNoTrips(t *testing.T) {
	engine := buildEngine(t, []fixtureStop{{id: "A"}}, nil, nil)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 0)
	require.NoError(t, err)

	journey, ok := result.FinalResult["A"]
	require.True(t, ok)
	require.Equal(t, 0.0, journey.TotalTime)
	require.Equal(t, []string{"A"}, journey.PathStops)
	require.Equal(t, []ScheduleStep{
		{StopID: "A", ArrivalAtStop: 28800, LegStartTime: 28800, LegDuration: 0, Mode: ModeNone},
	}, journey.ScheduleData)
}

func TestScenarioS2TwoStopsOneTrip(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(5000)}}
	times := []fixtureStopTime{
		{tripID: "T", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T", stopID: "B", sequence: 2, arrival: 29100, depart: 29100},
	}
	engine := buildEngine(t, stops, []string{"T"}, times)

	// max_transfers=0 bounds the number of route-relaxation passes to
	// zero (see DESIGN.md); boarding a single trip needs max_transfers=1.
	result, err := engine.FindRoutes(context.Background(), "A", 28800, 1)
	require.NoError(t, err)

	journey, ok := result.FinalResult["B"]
	require.True(t, ok)
	require.Equal(t, 300.0, journey.TotalTime)
	require.Equal(t, []string{"A", "B"}, journey.PathStops)
	require.Equal(t, []ScheduleStep{
		{StopID: "A", ArrivalAtStop: 28800, LegStartTime: 28800, LegDuration: 0, Mode: ModeNone},
		{StopID: "B", ArrivalAtStop: 29100, LegStartTime: 28800, LegDuration: 0, Mode: ModeTrip, TripID: "T"},
	}, journey.ScheduleData)
}

func TestScenarioS3WalkingPreferredToWaiting(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(140)}}
	times := []fixtureStopTime{
		{tripID: "T", stopID: "A", sequence: 1, arrival: 29400, depart: 29400},
		{tripID: "T", stopID: "B", sequence: 2, arrival: 29700, depart: 29700},
	}
	engine := buildEngine(t, stops, []string{"T"}, times)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 0)
	require.NoError(t, err)

	journey, ok := result.FinalResult["B"]
	require.True(t, ok)
	require.InDelta(t, 100, journey.TotalTime, 1)

	bStep := journey.ScheduleData[len(journey.ScheduleData)-1]
	require.Equal(t, ModeWalk, bStep.Mode)
}

func TestScenarioS4OneTransferRequired(t *testing.T) {
	stops := []fixtureStop{
		{id: "A"},
		{id: "C", latDelta: degLatFor(5000)},
		{id: "B", latDelta: degLatFor(10000)},
	}
	times := []fixtureStopTime{
		{tripID: "T1", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T1", stopID: "C", sequence: 2, arrival: 29100, depart: 29100},
		{tripID: "T2", stopID: "C", sequence: 1, arrival: 29200, depart: 29200},
		{tripID: "T2", stopID: "B", sequence: 2, arrival: 29500, depart: 29500},
	}
	engine := buildEngine(t, stops, []string{"T1", "T2"}, times)

	zeroTransfer, err := engine.FindRoutes(context.Background(), "A", 28800, 0)
	require.NoError(t, err)
	_, reachable := zeroTransfer.FinalResult["B"]
	require.False(t, reachable)

	// Boarding T1 then T2 is two route-relaxation passes; max_transfers=2
	// (see DESIGN.md's note on the param's off-by-one against boarding count).
	twoTrips, err := engine.FindRoutes(context.Background(), "A", 28800, 2)
	require.NoError(t, err)
	journey, reachable := twoTrips.FinalResult["B"]
	require.True(t, reachable)

	var tripModes []Mode
	var tripIDs []string
	for _, step := range journey.ScheduleData {
		if step.Mode == ModeTrip {
			tripModes = append(tripModes, step.Mode)
			tripIDs = append(tripIDs, step.TripID)
		}
	}
	require.Equal(t, []Mode{ModeTrip, ModeTrip}, tripModes)
	require.Equal(t, []string{"T1", "T2"}, tripIDs)
}

func TestScenarioS5Unreachable(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(50000)}}
	engine := buildEngine(t, stops, nil, nil)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 3)
	require.NoError(t, err)

	_, reachable := result.FinalResult["B"]
	require.False(t, reachable)
}

func TestScenarioS6TieBreakPicksLexicographicallyFirstTrip(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(5000)}}
	times := []fixtureStopTime{
		{tripID: "T2", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T2", stopID: "B", sequence: 2, arrival: 29100, depart: 29100},
		{tripID: "T1", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T1", stopID: "B", sequence: 2, arrival: 29100, depart: 29100},
	}
	engine := buildEngine(t, stops, []string{"T2", "T1"}, times)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 1)
	require.NoError(t, err)

	journey := result.FinalResult["B"]
	last := journey.ScheduleData[len(journey.ScheduleData)-1]
	require.Equal(t, "T1", last.TripID)
}

// TestRelaxWalkReachesFixedPointAcrossMultiHopFootpaths guards against a
// regression where a stop discovered early via a longer chain is never
// revisited once a shorter chain later lowers its arrival, leaving a
// downstream neighbor relaxed against the stale value. Layout:
//
//	A --100s--> M1 --500s--> B --100s--> F   (2-hop: A-M1-B = 600s)
//	A --100s--> M2 --100s--> M3 --50s--> B   (3-hop: A-M2-M3-B = 250s)
//
// B is reached via M1 first (discovered before M2's chain completes), so
// F gets relaxed off that 600s arrival before the 250s alternative through
// M3 corrects B. A fixed-point relaxation must re-walk B's neighbors once
// B improves, or F ends up violating arrivals[r][F] <= arrivals[r][B] + walk(B,F).
func TestRelaxWalkReachesFixedPointAcrossMultiHopFootpaths(t *testing.T) {
	const (
		stopA = iota
		stopM1
		stopB
		stopM2
		stopM3
		stopF
		numStops
	)

	graph := &footpath.Graph{Edges: make([][]footpath.Edge, numStops)}
	graph.Edges[stopA] = []footpath.Edge{{To: stopM1, WalkSeconds: 100}, {To: stopM2, WalkSeconds: 100}}
	graph.Edges[stopM1] = []footpath.Edge{{To: stopB, WalkSeconds: 500}}
	graph.Edges[stopM2] = []footpath.Edge{{To: stopM3, WalkSeconds: 100}}
	graph.Edges[stopM3] = []footpath.Edge{{To: stopB, WalkSeconds: 50}}
	graph.Edges[stopB] = []footpath.Edge{{To: stopF, WalkSeconds: 100}}

	engine := &Engine{Footpath: graph}
	labels := newLabels(1, numStops)
	const departure = 28800.0
	labels.setArrival(0, stopA, departure)

	engine.relaxWalk(labels, 0, map[int]bool{stopA: true})

	require.Equal(t, departure+250, labels.Arrival(0, stopB), "shorter 3-hop chain through M2/M3 must win")

	bArrival := labels.Arrival(0, stopB)
	fArrival := labels.Arrival(0, stopF)
	walkBF := 100.0
	require.LessOrEqualf(t, fArrival, bArrival+walkBF,
		"property 1 violated: arrivals[F]=%v > arrivals[B]=%v + walk(B,F)=%v", fArrival, bArrival, walkBF)
}

func TestParentConsistencyAcrossAllRounds(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "C", latDelta: degLatFor(5000)}, {id: "B", latDelta: degLatFor(10000)}}
	times := []fixtureStopTime{
		{tripID: "T1", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T1", stopID: "C", sequence: 2, arrival: 29100, depart: 29100},
		{tripID: "T2", stopID: "C", sequence: 1, arrival: 29200, depart: 29200},
		{tripID: "T2", stopID: "B", sequence: 2, arrival: 29500, depart: 29500},
	}
	engine := buildEngine(t, stops, []string{"T1", "T2"}, times)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 2)
	require.NoError(t, err)

	labels := result.Labels
	for r := 0; r < labels.Rounds; r++ {
		for s := 0; s < labels.NumStops; s++ {
			arrival := labels.Arrival(r, s)
			if math.IsInf(arrival, 1) {
				continue
			}
			parent := labels.Parent(r, s)
			if !parent.Valid {
				continue
			}
			require.Equal(t, arrival, parent.ArriveTime)
			require.GreaterOrEqual(t, parent.ArriveTime-parent.StartTime, 0.0)
			switch parent.Mode {
			case ModeWalk:
				require.Equal(t, r, parent.PrevRound)
			case ModeTrip:
				require.Equal(t, r-1, parent.PrevRound)
			}
		}
	}
}

func TestReconstructionTerminatesAndEndsAtOrigin(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "C", latDelta: degLatFor(5000)}, {id: "B", latDelta: degLatFor(10000)}}
	times := []fixtureStopTime{
		{tripID: "T1", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T1", stopID: "C", sequence: 2, arrival: 29100, depart: 29100},
		{tripID: "T2", stopID: "C", sequence: 1, arrival: 29200, depart: 29200},
		{tripID: "T2", stopID: "B", sequence: 2, arrival: 29500, depart: 29500},
	}
	engine := buildEngine(t, stops, []string{"T1", "T2"}, times)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 2)
	require.NoError(t, err)

	journey := result.FinalResult["B"]
	maxSteps := (result.MaxTransfers + 1) * engine.Schedule.NumStops
	require.LessOrEqual(t, len(journey.PathStops), maxSteps)
	require.Equal(t, "A", journey.PathStops[0])
}

func TestNoNegativeTravelTime(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(5000)}}
	times := []fixtureStopTime{
		{tripID: "T", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T", stopID: "B", sequence: 2, arrival: 29100, depart: 29100},
	}
	engine := buildEngine(t, stops, []string{"T"}, times)

	result, err := engine.FindRoutes(context.Background(), "A", 28800, 1)
	require.NoError(t, err)

	for stopID, journey := range result.FinalResult {
		require.GreaterOrEqual(t, journey.TotalTime, 0.0)
		if stopID == "A" {
			require.Equal(t, 0.0, journey.TotalTime)
		} else {
			require.Greater(t, journey.TotalTime, 0.0)
		}
	}
}

func TestFindRoutesIsIdempotent(t *testing.T) {
	stops := []fixtureStop{{id: "A"}, {id: "C", latDelta: degLatFor(5000)}, {id: "B", latDelta: degLatFor(10000)}}
	times := []fixtureStopTime{
		{tripID: "T1", stopID: "A", sequence: 1, arrival: 28800, depart: 28800},
		{tripID: "T1", stopID: "C", sequence: 2, arrival: 29100, depart: 29100},
		{tripID: "T2", stopID: "C", sequence: 1, arrival: 29200, depart: 29200},
		{tripID: "T2", stopID: "B", sequence: 2, arrival: 29500, depart: 29500},
	}
	engine := buildEngine(t, stops, []string{"T1", "T2"}, times)

	first, err := engine.FindRoutes(context.Background(), "A", 28800, 2)
	require.NoError(t, err)
	second, err := engine.FindRoutes(context.Background(), "A", 28800, 2)
	require.NoError(t, err)

	require.Equal(t, first.FinalResult, second.FinalResult)
}

func TestFindRoutesRejectsUnknownOrigin(t *testing.T) {
	engine := buildEngine(t, []fixtureStop{{id: "A"}}, nil, nil)

	_, err := engine.FindRoutes(context.Background(), "ghost", 28800, 0)
	require.ErrorIs(t, err, ErrOriginUnknown)
}

func TestFindRoutesMarksIncompleteOnCancelledContext(t *testing.T) {
	engine := buildEngine(t, []fixtureStop{{id: "A"}, {id: "B", latDelta: degLatFor(5000)}}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.FindRoutes(ctx, "A", 28800, 2)
	require.NoError(t, err)
	require.True(t, result.Incomplete)
}
