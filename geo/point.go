// Package geo provides the spatial primitives consumed by the temporal
// kernel: planar and geodetic points, network points, and the Geometry
// interface through which the kernel reaches an external geometry
// engine for region operations.
//
// The kernel only ever interpolates, measures and compares points; all
// heavier region work (point-in-polygon, intersection, boundary) goes
// through the Geometry interface so an external engine can be plugged
// in. A minimal planar polygon implementation is provided for tests and
// the restriction engine's default path.
package geo

import (
	"fmt"
	"math"

	"github.com/arloliu/tempus/errs"
)

// Point is a 2D or 3D point with an SRID and a geodetic flag.
// Geodetic points interpret X as longitude and Y as latitude in degrees.
type Point struct {
	X, Y, Z  float64
	SRID     int32
	HasZ     bool
	Geodetic bool
}

// NewPoint2D returns a planar 2D point.
func NewPoint2D(srid int32, x, y float64) *Point {
	return &Point{X: x, Y: y, SRID: srid}
}

// NewPoint3D returns a planar 3D point.
func NewPoint3D(srid int32, x, y, z float64) *Point {
	return &Point{X: x, Y: y, Z: z, SRID: srid, HasZ: true}
}

// NewGeogPoint returns a geodetic point (longitude, latitude in degrees).
func NewGeogPoint(srid int32, lon, lat float64) *Point {
	return &Point{X: lon, Y: lat, SRID: srid, Geodetic: true}
}

// Clone returns a copy of the point.
func (p *Point) Clone() *Point {
	c := *p
	return &c
}

// Equal reports exact coordinate, SRID and flag equality.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.HasZ != q.HasZ || p.Geodetic != q.Geodetic || p.SRID != q.SRID {
		return false
	}
	if p.X != q.X || p.Y != q.Y {
		return false
	}

	return !p.HasZ || p.Z == q.Z
}

// String formats the point in WKT notation.
func (p *Point) String() string {
	if p.HasZ {
		return fmt.Sprintf("POINT Z (%g %g %g)", p.X, p.Y, p.Z)
	}

	return fmt.Sprintf("POINT(%g %g)", p.X, p.Y)
}

// Validate checks that two points are comparable: same SRID, same
// dimensionality, same geodetic interpretation.
func Validate(p, q *Point) error {
	if p.SRID != q.SRID {
		return fmt.Errorf("%w: %d vs %d", errs.ErrSRIDMismatch, p.SRID, q.SRID)
	}
	if p.HasZ != q.HasZ {
		return errs.ErrDimMismatch
	}
	if p.Geodetic != q.Geodetic {
		return errs.ErrBaseMismatch
	}

	return nil
}

// earthRadiusMeters is the mean Earth radius used for geodetic distance.
const earthRadiusMeters = 6371008.8

// Distance returns the distance between two points: Euclidean for planar
// points (3D when both carry Z), great-circle meters for geodetic points.
func Distance(p, q *Point) (float64, error) {
	if err := Validate(p, q); err != nil {
		return 0, err
	}
	if p.Geodetic {
		return sphereDistance(p, q), nil
	}
	dx := p.X - q.X
	dy := p.Y - q.Y
	if p.HasZ {
		dz := p.Z - q.Z
		return math.Sqrt(dx*dx + dy*dy + dz*dz), nil
	}

	return math.Hypot(dx, dy), nil
}

// sphereDistance computes the haversine great-circle distance in meters.
func sphereDistance(p, q *Point) float64 {
	lat1 := p.Y * math.Pi / 180
	lat2 := q.Y * math.Pi / 180
	dlat := (q.Y - p.Y) * math.Pi / 180
	dlon := (q.X - p.X) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Interpolate returns the point at fraction frac along the segment from
// p to q. frac is clamped to [0, 1]. Interpolation is affine per
// coordinate, matching linear temporal interpolation.
func Interpolate(p, q *Point, frac float64) *Point {
	if frac <= 0 {
		return p.Clone()
	}
	if frac >= 1 {
		return q.Clone()
	}
	r := &Point{
		X:        p.X + (q.X-p.X)*frac,
		Y:        p.Y + (q.Y-p.Y)*frac,
		SRID:     p.SRID,
		HasZ:     p.HasZ,
		Geodetic: p.Geodetic,
	}
	if p.HasZ {
		r.Z = p.Z + (q.Z-p.Z)*frac
	}

	return r
}

// Locate returns the fraction in [0, 1] at which point m sits on the
// segment p->q, and whether m lies on the segment at all (within eps).
func Locate(p, q, m *Point, eps float64) (float64, bool) {
	dx := q.X - p.X
	dy := q.Y - p.Y
	var dz float64
	if p.HasZ {
		dz = q.Z - p.Z
	}
	len2 := dx*dx + dy*dy + dz*dz
	if len2 == 0 {
		if math.Hypot(m.X-p.X, m.Y-p.Y) <= eps {
			return 0, true
		}
		return 0, false
	}

	var mz float64
	if p.HasZ {
		mz = m.Z - p.Z
	}
	frac := ((m.X-p.X)*dx + (m.Y-p.Y)*dy + mz*dz) / len2
	if frac < 0 || frac > 1 {
		return 0, false
	}
	proj := Interpolate(p, q, frac)
	d := math.Hypot(m.X-proj.X, m.Y-proj.Y)
	if p.HasZ {
		d = math.Sqrt(d*d + (m.Z-proj.Z)*(m.Z-proj.Z))
	}
	if d > eps {
		return 0, false
	}

	return frac, true
}

// Collinear reports whether mid lies on the segment p->q at the given
// fraction of the way, within eps per coordinate. Used by step/linear
// normalization to drop redundant instants.
func Collinear(p, mid, q *Point, frac, eps float64) bool {
	want := Interpolate(p, q, frac)
	if math.Abs(mid.X-want.X) > eps || math.Abs(mid.Y-want.Y) > eps {
		return false
	}

	return !p.HasZ || math.Abs(mid.Z-want.Z) <= eps
}
