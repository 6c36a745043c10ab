package raptor

import "github.com/pkg/errors"

// ErrOriginUnknown is returned by FindRoutes when origin_stop_id is not
// present in the engine's stops set.
var ErrOriginUnknown = errors.New("raptor: origin stop unknown")

// Mode tags how a ParentRecord's stop was reached: on foot, or aboard a
// trip. The zero value, ModeNone, marks the sentinel "no parent" record
// at the origin.
type Mode int

const (
	ModeNone Mode = iota
	ModeWalk
	ModeTrip
)

func (m Mode) String() string {
	switch m {
	case ModeWalk:
		return "walk"
	case ModeTrip:
		return "trip"
	default:
		return "none"
	}
}
