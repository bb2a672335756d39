// Package ttime provides the time primitives of the tempus library:
// microsecond-precision timestamps, intervals, and time bucketing.
//
// A Timestamp is a 64-bit signed count of microseconds since the epoch
// 2000-01-01 00:00:00 UTC. The extreme values of the representation are
// reserved as the NoBegin and NoEnd sentinels denoting negative and
// positive temporal infinity; they compare below and above every finite
// timestamp and are never produced by arithmetic.
package ttime

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/tempus/errs"
)

// Timestamp is a count of microseconds since 2000-01-01 00:00:00 UTC.
type Timestamp int64

const (
	// NoBegin is the negative-infinity timestamp sentinel.
	NoBegin Timestamp = math.MinInt64
	// NoEnd is the positive-infinity timestamp sentinel.
	NoEnd Timestamp = math.MaxInt64
)

// epochOffsetMicro is the offset between the Unix epoch and the tempus
// epoch (2000-01-01 00:00:00 UTC) in microseconds.
const epochOffsetMicro int64 = 946684800000000

const (
	// MicrosPerSecond is the number of microseconds in one second.
	MicrosPerSecond int64 = 1000000
	// MicrosPerMinute is the number of microseconds in one minute.
	MicrosPerMinute int64 = 60 * MicrosPerSecond
	// MicrosPerHour is the number of microseconds in one hour.
	MicrosPerHour int64 = 60 * MicrosPerMinute
	// MicrosPerDay is the number of microseconds in one day.
	MicrosPerDay int64 = 24 * MicrosPerHour
)

// FromTime converts a time.Time into a Timestamp, truncating to
// microsecond precision.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixMicro() - epochOffsetMicro)
}

// FromUnixMicro converts a Unix-epoch microsecond count into a Timestamp.
func FromUnixMicro(us int64) Timestamp {
	return Timestamp(us - epochOffsetMicro)
}

// ToTime converts the timestamp into a time.Time in UTC.
// The sentinels map to the extreme representable times.
func (t Timestamp) ToTime() time.Time {
	switch t {
	case NoBegin:
		return time.UnixMicro(math.MinInt64).UTC()
	case NoEnd:
		return time.UnixMicro(math.MaxInt64).UTC()
	}

	return time.UnixMicro(int64(t) + epochOffsetMicro).UTC()
}

// UnixMicro returns the timestamp as a Unix-epoch microsecond count.
func (t Timestamp) UnixMicro() int64 {
	return int64(t) + epochOffsetMicro
}

// IsFinite reports whether the timestamp is neither NoBegin nor NoEnd.
func (t Timestamp) IsFinite() bool {
	return t != NoBegin && t != NoEnd
}

// String formats the timestamp in UTC using a SQL-style layout.
// The sentinels format as "-infinity" and "infinity".
func (t Timestamp) String() string {
	switch t {
	case NoBegin:
		return "-infinity"
	case NoEnd:
		return "infinity"
	}

	return t.ToTime().Format("2006-01-02 15:04:05.999999+00")
}

// Parse parses a timestamp in the layouts emitted by String, plus the
// bare date form "2006-01-02".
func Parse(s string) (Timestamp, error) {
	switch s {
	case "-infinity":
		return NoBegin, nil
	case "infinity":
		return NoEnd, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05.999999+00",
		"2006-01-02 15:04:05+00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return FromTime(tm), nil
		}
	}

	return 0, fmt.Errorf("cannot parse timestamp %q", s)
}

// Bucket returns the start of the bucket of the given size that contains
// the timestamp, with buckets aligned to origin.
//
// The division floors toward negative infinity, so timestamps before the
// origin land in the bucket whose start precedes them. The shift by
// origin is overflow-checked: when it would cross the NoBegin/NoEnd
// sentinels the function fails with errs.ErrRangeOverflow.
func Bucket(t Timestamp, size int64, origin Timestamp) (Timestamp, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: bucket size must be positive, got %d", errs.ErrRangeOverflow, size)
	}
	if !t.IsFinite() {
		return t, nil
	}

	ts := int64(t)
	offset := int64(origin)
	if offset != 0 {
		offset %= size
		if (offset > 0 && ts < math.MinInt64+offset) ||
			(offset < 0 && ts > math.MaxInt64+offset) {
			return 0, fmt.Errorf("%w: timestamp out of range", errs.ErrRangeOverflow)
		}
		ts -= offset
	}

	result := (ts / size) * size
	if ts < 0 && ts%size != 0 {
		// Integer division truncates toward zero; shift one bucket down
		// for negative timestamps with a remainder.
		if result < math.MinInt64+size {
			return 0, fmt.Errorf("%w: timestamp out of range", errs.ErrRangeOverflow)
		}
		result -= size
	}
	result += offset

	return Timestamp(result), nil
}
