package raptor

import "math"

/**
 * the source keys arrivals/parents by stop_id in hashed maps; here every
 * stop_id and trip_id is interned to a dense index at load time (see
 * package schedule) and arrivals/parents are flat arrays of length
 * (K+1) * len(stops) - see the design notes for why
 */

// ParentRecord is a single backpointer: how a round's label at some
// stop was produced. A zero-value ParentRecord with Valid == false is
// the ⊥ sentinel terminating backtracking at the origin.
type ParentRecord struct {
	Valid        bool
	PrevStopIdx  int
	PrevRound    int
	Mode         Mode
	TripIdx      int /* meaningful only when Mode == ModeTrip */
	StartTime    float64
	ArriveTime   float64
	LegDuration  float64
}

// Labels is a query's own round-indexed arrival/parent tables,
// allocated per query and discarded (or pooled) after reconstruction.
type Labels struct {
	Rounds   int
	NumStops int
	Arrivals []float64
	Parents  []ParentRecord
}

func newLabels(rounds, numStops int) *Labels {
	arrivals := make([]float64, rounds*numStops)
	for i := range arrivals {
		arrivals[i] = math.Inf(1)
	}
	return &Labels{
		Rounds:   rounds,
		NumStops: numStops,
		Arrivals: arrivals,
		Parents:  make([]ParentRecord, rounds*numStops),
	}
}

func (l *Labels) index(round, stop int) int {
	return round*l.NumStops + stop
}

// Arrival returns arrivals[round][stop].
func (l *Labels) Arrival(round, stop int) float64 {
	return l.Arrivals[l.index(round, stop)]
}

func (l *Labels) setArrival(round, stop int, value float64) {
	l.Arrivals[l.index(round, stop)] = value
}

// Parent returns parents[round][stop].
func (l *Labels) Parent(round, stop int) ParentRecord {
	return l.Parents[l.index(round, stop)]
}

func (l *Labels) setParent(round, stop int, p ParentRecord) {
	l.Parents[l.index(round, stop)] = p
}

// RoundStat is one round's diagnostic summary.
type RoundStat struct {
	Round          int
	ReachedStops   int
	FootUpdates    int
	RouteUpdates   int
	ElapsedSeconds float64
}

// ScheduleStep is one hop of a reconstructed journey: arrival at Stop,
// and how the leg into it was taken.
type ScheduleStep struct {
	StopID        string
	ArrivalAtStop float64
	LegStartTime  float64
	LegDuration   float64
	Mode          Mode
	TripID        string /* set only when Mode == ModeTrip */
}

// JourneyResult is the reconstructed path to one destination stop.
type JourneyResult struct {
	TotalTime    float64
	PathStops    []string
	ScheduleData []ScheduleStep
}

// Result is everything FindRoutes produces: the final per-destination
// journeys, the raw round-indexed labels for diagnostics, and
// per-round statistics.
type Result struct {
	QueryID          string
	OriginStopID     string
	DepartureSeconds float64
	MaxTransfers     int
	Incomplete       bool

	Labels      *Labels
	FinalResult map[string]JourneyResult
	RoundsStats []RoundStat
}
