package ttime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/tempus/errs"
)

// Interval is a calendar duration carrying separate month, day and
// microsecond components.
//
// Bucketing requires a fixed-length duration, so Units rejects intervals
// with a month component; days fold into microseconds at the fixed rate
// of 24 hours per day.
type Interval struct {
	Months int32
	Days   int32
	Micros int64
}

// Units folds the interval into a single microsecond count.
// Intervals with a month component have no fixed length and fail with
// errs.ErrRangeOverflow.
func (iv Interval) Units() (int64, error) {
	if iv.Months != 0 {
		return 0, fmt.Errorf("%w: interval with month component cannot be converted to units", errs.ErrRangeOverflow)
	}

	return iv.Micros + int64(iv.Days)*MicrosPerDay, nil
}

// IsZero reports whether all components are zero.
func (iv Interval) IsZero() bool {
	return iv.Months == 0 && iv.Days == 0 && iv.Micros == 0
}

// String formats the interval listing its non-zero components.
func (iv Interval) String() string {
	var parts []string
	if iv.Months != 0 {
		parts = append(parts, fmt.Sprintf("%d mons", iv.Months))
	}
	if iv.Days != 0 {
		parts = append(parts, fmt.Sprintf("%d days", iv.Days))
	}
	if iv.Micros != 0 || len(parts) == 0 {
		secs := float64(iv.Micros) / float64(MicrosPerSecond)
		parts = append(parts, strconv.FormatFloat(secs, 'g', -1, 64)+" secs")
	}

	return strings.Join(parts, " ")
}

// ParseInterval parses simple interval expressions of the form
// "<n> <unit>" where unit is one of microsecond(s), millisecond(s),
// second(s), minute(s), hour(s), day(s), week(s), month(s), year(s).
func ParseInterval(s string) (Interval, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return Interval{}, fmt.Errorf("cannot parse interval %q", s)
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Interval{}, fmt.Errorf("cannot parse interval %q: %w", s, err)
	}

	unit := strings.TrimSuffix(fields[1], "s")
	switch unit {
	case "microsecond", "us":
		return Interval{Micros: n}, nil
	case "millisecond", "ms":
		return Interval{Micros: n * 1000}, nil
	case "second", "sec":
		return Interval{Micros: n * MicrosPerSecond}, nil
	case "minute", "min":
		return Interval{Micros: n * MicrosPerMinute}, nil
	case "hour":
		return Interval{Micros: n * MicrosPerHour}, nil
	case "day":
		return Interval{Days: int32(n)}, nil
	case "week":
		return Interval{Days: int32(n) * 7}, nil
	case "month", "mon":
		return Interval{Months: int32(n)}, nil
	case "year":
		return Interval{Months: int32(n) * 12}, nil
	default:
		return Interval{}, fmt.Errorf("cannot parse interval %q: unknown unit", s)
	}
}
