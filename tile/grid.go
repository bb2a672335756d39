package tile

import (
	"fmt"

	"github.com/arloliu/tempus/box"
	"github.com/arloliu/tempus/datum"
	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// Grid iterates the value-by-time tiles covering a bounding box. Tiles
// are visited in row-major order: all value buckets of the first time
// bucket, then the next time bucket.
type Grid struct {
	valueSize  float64
	timeUnits  int64
	valueStart float64
	valueEnd   float64
	timeStart  ttime.Timestamp
	timeEnd    ttime.Timestamp
	curValue   float64
	curTime    ttime.Timestamp
	exhausted  bool
}

// NewGrid builds the tile grid covering the given box with the given
// tile extents.
func NewGrid(b box.TBox, valueSize float64, timeSize ttime.Interval,
	valueOrigin float64, timeOrigin ttime.Timestamp,
) (*Grid, error) {
	if !b.HasX || !b.HasT {
		return nil, fmt.Errorf("%w: grid requires both box dimensions", errs.ErrTypeMismatch)
	}
	units, err := timeSize.Units()
	if err != nil {
		return nil, err
	}
	if valueSize <= 0 || units <= 0 {
		return nil, fmt.Errorf("%w: tile extents must be positive", errs.ErrRangeOverflow)
	}

	vStart, err := FloatBucket(b.Span.Lower.Float64(), valueSize, valueOrigin)
	if err != nil {
		return nil, err
	}
	tStart, err := ttime.Bucket(b.Period.Lower.TimestampVal(), units, timeOrigin)
	if err != nil {
		return nil, err
	}

	return &Grid{
		valueSize:  valueSize,
		timeUnits:  units,
		valueStart: vStart,
		valueEnd:   b.Span.Upper.Float64(),
		timeStart:  tStart,
		timeEnd:    b.Period.Upper.TimestampVal(),
		curValue:   vStart,
		curTime:    tStart,
	}, nil
}

// Next returns the next tile of the grid, or false when the grid is
// exhausted.
func (g *Grid) Next() (box.TBox, bool) {
	if g.exhausted {
		return box.TBox{}, false
	}

	tileSpan, err := span.Make(
		datum.Float8(g.curValue), datum.Float8(g.curValue+g.valueSize), true, false)
	if err != nil {
		return box.TBox{}, false
	}
	tilePeriod, err := span.NewPeriod(
		g.curTime, g.curTime+ttime.Timestamp(g.timeUnits), true, false)
	if err != nil {
		return box.TBox{}, false
	}
	tile := box.FromSpanPeriod(tileSpan, tilePeriod)

	g.curValue += g.valueSize
	if g.curValue > g.valueEnd {
		g.curValue = g.valueStart
		g.curTime += ttime.Timestamp(g.timeUnits)
		if g.curTime > g.timeEnd {
			g.exhausted = true
		}
	}

	return tile, true
}

// Tiles returns every tile of the grid.
func (g *Grid) Tiles() []box.TBox {
	var out []box.TBox
	for {
		tile, ok := g.Next()
		if !ok {
			return out
		}
		out = append(out, tile)
	}
}
