package gtfs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadTimeFormat is returned by ParseTime when the input text does not
// match GTFS's H[H]:MM[:SS] convention.
var ErrBadTimeFormat = errors.New("gtfs: bad time format")

// ParseTime converts a GTFS time-of-day string to seconds since midnight.
// Accepts "H:MM", "HH:MM" and "HH:MM:SS"; the hour component may exceed 23
// to express post-midnight continuations of the previous service day, per
// GTFS convention.
func ParseTime(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, errors.Wrapf(ErrBadTimeFormat, "%q", text)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, errors.Wrapf(ErrBadTimeFormat, "%q", text)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, errors.Wrapf(ErrBadTimeFormat, "%q", text)
	}

	seconds := 0
	if len(parts) == 3 {
		seconds, err = strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, errors.Wrapf(ErrBadTimeFormat, "%q", text)
		}
	}

	total := hours*3600 + minutes*60 + seconds
	return float64(total), nil
}

// FormatTime renders seconds-since-midnight as "HH:MM", truncating any
// sub-minute remainder. Values above 86400 are rendered as-is (e.g.
// "25:10") rather than wrapped modulo 24h - this is a display boundary
// concern, the engine itself only ever consumes integer seconds.
func FormatTime(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	return fmt.Sprintf("%02d:%02d", hours, minutes)
}
