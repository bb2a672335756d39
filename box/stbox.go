package box

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/span"
	"github.com/arloliu/tempus/ttime"
)

// STBox is a bounding box over 2D/3D space and time. The spatial
// dimension is valid iff HasX; the Z range is valid iff HasZ; the time
// dimension is valid iff HasT.
type STBox struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
	Zmin, Zmax float64
	Period     span.Span
	SRID       int32
	HasX       bool
	HasZ       bool
	HasT       bool
	Geodetic   bool
}

// FromPoint returns the degenerate STBox of a single point.
func FromPoint(p *geo.Point) STBox {
	return STBox{
		Xmin: p.X, Xmax: p.X,
		Ymin: p.Y, Ymax: p.Y,
		Zmin: p.Z, Zmax: p.Z,
		SRID: p.SRID,
		HasX: true, HasZ: p.HasZ,
		Geodetic: p.Geodetic,
	}
}

// FromPointTime returns the STBox of a single point at a single instant.
func FromPointTime(p *geo.Point, t ttime.Timestamp) STBox {
	b := FromPoint(p)
	per, err := span.NewPeriod(t, t, true, true)
	if err != nil {
		panic(err)
	}
	b.Period = per
	b.HasT = true

	return b
}

// validateWith checks spatial compatibility between two boxes.
func (b STBox) validateWith(other STBox) error {
	if b.HasX && other.HasX {
		if b.SRID != other.SRID {
			return fmt.Errorf("%w: %d vs %d", errs.ErrSRIDMismatch, b.SRID, other.SRID)
		}
		if b.Geodetic != other.Geodetic {
			return errs.ErrBaseMismatch
		}
	}

	return nil
}

// Equal reports dimension-wise equality.
func (b STBox) Equal(other STBox) bool {
	if b.HasX != other.HasX || b.HasZ != other.HasZ || b.HasT != other.HasT ||
		b.Geodetic != other.Geodetic || b.SRID != other.SRID {
		return false
	}
	if b.HasX {
		if b.Xmin != other.Xmin || b.Xmax != other.Xmax ||
			b.Ymin != other.Ymin || b.Ymax != other.Ymax {
			return false
		}
		if b.HasZ && (b.Zmin != other.Zmin || b.Zmax != other.Zmax) {
			return false
		}
	}
	if b.HasT && !b.Period.Equal(other.Period) {
		return false
	}

	return true
}

// Adjust grows the box in place so it covers other.
func (b *STBox) Adjust(other *STBox) {
	if other.HasX {
		if b.HasX {
			b.Xmin = math.Min(b.Xmin, other.Xmin)
			b.Xmax = math.Max(b.Xmax, other.Xmax)
			b.Ymin = math.Min(b.Ymin, other.Ymin)
			b.Ymax = math.Max(b.Ymax, other.Ymax)
			if b.HasZ && other.HasZ {
				b.Zmin = math.Min(b.Zmin, other.Zmin)
				b.Zmax = math.Max(b.Zmax, other.Zmax)
			}
		} else {
			b.Xmin, b.Xmax = other.Xmin, other.Xmax
			b.Ymin, b.Ymax = other.Ymin, other.Ymax
			b.Zmin, b.Zmax = other.Zmin, other.Zmax
			b.HasX, b.HasZ = true, other.HasZ
			b.SRID, b.Geodetic = other.SRID, other.Geodetic
		}
	}
	if other.HasT {
		if b.HasT {
			b.Period = b.Period.Extend(other.Period)
		} else {
			b.Period = other.Period
			b.HasT = true
		}
	}
}

// ExpandPoint grows the box in place to cover a point.
func (b *STBox) ExpandPoint(p *geo.Point) {
	pb := FromPoint(p)
	b.Adjust(&pb)
}

// Union returns the smallest box covering both boxes.
func (b STBox) Union(other STBox) STBox {
	r := b
	r.Adjust(&other)

	return r
}

// Overlaps reports whether the boxes share a point in every dimension
// common to both.
func (b STBox) Overlaps(other STBox) bool {
	if b.HasX && other.HasX {
		if b.Xmax < other.Xmin || b.Xmin > other.Xmax ||
			b.Ymax < other.Ymin || b.Ymin > other.Ymax {
			return false
		}
		if b.HasZ && other.HasZ && (b.Zmax < other.Zmin || b.Zmin > other.Zmax) {
			return false
		}
	}
	if b.HasT && other.HasT && !b.Period.Overlaps(other.Period) {
		return false
	}

	return true
}

// Contains reports whether the box contains other in every dimension
// common to both.
func (b STBox) Contains(other STBox) bool {
	if b.HasX && other.HasX {
		if other.Xmin < b.Xmin || other.Xmax > b.Xmax ||
			other.Ymin < b.Ymin || other.Ymax > b.Ymax {
			return false
		}
		if b.HasZ && other.HasZ && (other.Zmin < b.Zmin || other.Zmax > b.Zmax) {
			return false
		}
	}
	if b.HasT && other.HasT && !b.Period.ContainsSpan(other.Period) {
		return false
	}

	return true
}

// ContainedBy reports whether other contains the box.
func (b STBox) ContainedBy(other STBox) bool { return other.Contains(b) }

// ContainsPoint reports whether the box covers the point spatially.
func (b STBox) ContainsPoint(p *geo.Point) bool {
	if !b.HasX {
		return false
	}
	if p.X < b.Xmin || p.X > b.Xmax || p.Y < b.Ymin || p.Y > b.Ymax {
		return false
	}

	return !b.HasZ || !p.HasZ || (p.Z >= b.Zmin && p.Z <= b.Zmax)
}

// Same reports whether the boxes are equal on their common dimensions.
func (b STBox) Same(other STBox) bool {
	return b.Contains(other) && other.Contains(b)
}

// Adjacent reports whether the boxes touch without sharing interior.
func (b STBox) Adjacent(other STBox) bool {
	if !b.Overlaps(other) {
		return false
	}
	// Overlapping boxes touch when they only share a face in some
	// dimension.
	if b.HasX && other.HasX &&
		(b.Xmax == other.Xmin || b.Xmin == other.Xmax ||
			b.Ymax == other.Ymin || b.Ymin == other.Ymax) {
		return true
	}
	if b.HasT && other.HasT && b.Period.Adjacent(other.Period) {
		return true
	}

	return false
}

// Before reports whether the box is strictly before other in time.
func (b STBox) Before(other STBox) bool { return b.Period.Left(other.Period) }

// OverBefore reports whether the box does not extend after other.
func (b STBox) OverBefore(other STBox) bool { return b.Period.OverLeft(other.Period) }

// After reports whether the box is strictly after other in time.
func (b STBox) After(other STBox) bool { return b.Period.Right(other.Period) }

// OverAfter reports whether the box does not extend before other.
func (b STBox) OverAfter(other STBox) bool { return b.Period.OverRight(other.Period) }

// volume returns the generalized volume of the box.
func (b STBox) volume() float64 {
	v := 1.0
	if b.HasX {
		v *= b.Xmax - b.Xmin
		v *= b.Ymax - b.Ymin
		if b.HasZ {
			v *= b.Zmax - b.Zmin
		}
	}
	if b.HasT {
		v *= float64(b.Period.Upper.TimestampVal()-b.Period.Lower.TimestampVal()) /
			float64(ttime.MicrosPerSecond)
	}

	return v
}

// Penalty returns the increase in volume caused by extending the box to
// cover inserted.
func (b STBox) Penalty(inserted STBox) float64 {
	u := b.Union(inserted)

	return u.volume() - b.volume()
}

// NearestDistance returns a lower bound on the spatial distance between
// any point in the box and any point in other, or +Inf when the time
// projections are disjoint.
func (b STBox) NearestDistance(other STBox) (float64, error) {
	if err := b.validateWith(other); err != nil {
		return 0, err
	}
	if b.HasT && other.HasT && !b.Period.Overlaps(other.Period) {
		return math.Inf(1), nil
	}
	if !b.HasX || !other.HasX {
		return 0, nil
	}

	dx := axisGap(b.Xmin, b.Xmax, other.Xmin, other.Xmax)
	dy := axisGap(b.Ymin, b.Ymax, other.Ymin, other.Ymax)
	var dz float64
	if b.HasZ && other.HasZ {
		dz = axisGap(b.Zmin, b.Zmax, other.Zmin, other.Zmax)
	}

	return math.Sqrt(dx*dx + dy*dy + dz*dz), nil
}

// axisGap returns the gap between two ranges on one axis, or zero when
// they overlap.
func axisGap(amin, amax, bmin, bmax float64) float64 {
	if amax < bmin {
		return bmin - amax
	}
	if bmax < amin {
		return amin - bmax
	}

	return 0
}

// String formats the box in STBOX notation.
func (b STBox) String() string {
	var parts []string
	if b.HasX {
		if b.HasZ {
			parts = append(parts, fmt.Sprintf("((%g,%g,%g),(%g,%g,%g))",
				b.Xmin, b.Ymin, b.Zmin, b.Xmax, b.Ymax, b.Zmax))
		} else {
			parts = append(parts, fmt.Sprintf("((%g,%g),(%g,%g))",
				b.Xmin, b.Ymin, b.Xmax, b.Ymax))
		}
	}
	if b.HasT {
		parts = append(parts, b.Period.String())
	}
	kind := "STBOX"
	if b.Geodetic {
		kind = "GEODSTBOX"
	}

	return fmt.Sprintf("%s(%s)", kind, strings.Join(parts, ","))
}
