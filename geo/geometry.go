package geo

import (
	"math"
	"sort"
)

// FracRange is a closed sub-range [Lower, Upper] of the [0, 1]
// parametrization of a segment.
type FracRange struct {
	Lower, Upper float64
}

// Geometry is the external geometry surface consumed by the temporal
// kernel. The kernel never inspects region internals; it restricts
// trajectories by clipping individual linear segments against the
// region and mapping the returned fraction ranges back to time.
type Geometry interface {
	// SRID returns the spatial reference identifier of the geometry.
	SRID() int32

	// IsEmpty reports whether the geometry has no points.
	IsEmpty() bool

	// CoversPoint reports boundary-inclusive containment of a point.
	CoversPoint(p *Point) bool

	// OnBoundary reports whether a point lies on the geometry boundary.
	OnBoundary(p *Point) bool

	// ClipSegment returns the maximal fraction ranges of the segment
	// from a to b (parametrized over [0, 1]) that lie within the
	// geometry, in increasing order.
	ClipSegment(a, b *Point) []FracRange
}

// Polygon is a planar simple polygon given by its outer ring. It is the
// default Geometry implementation used by tests and the restriction
// engine when no external engine is plugged in.
//
// The ring is a closed sequence of vertices; the last vertex may repeat
// the first but does not have to.
type Polygon struct {
	srid int32
	ring []Point
}

var _ Geometry = (*Polygon)(nil)

// NewPolygon builds a polygon from its outer ring vertices.
func NewPolygon(srid int32, ring []Point) *Polygon {
	n := len(ring)
	if n > 1 && ring[0].X == ring[n-1].X && ring[0].Y == ring[n-1].Y {
		ring = ring[:n-1]
	}

	return &Polygon{srid: srid, ring: ring}
}

// SRID returns the spatial reference identifier.
func (pg *Polygon) SRID() int32 { return pg.srid }

// IsEmpty reports whether the polygon has fewer than three vertices.
func (pg *Polygon) IsEmpty() bool { return len(pg.ring) < 3 }

const clipEps = 1e-12

// CoversPoint reports boundary-inclusive point-in-polygon containment
// using the even-odd ray casting rule.
func (pg *Polygon) CoversPoint(p *Point) bool {
	n := len(pg.ring)
	if n < 3 {
		return false
	}

	inside := false
	for i := 0; i < n; i++ {
		a := &pg.ring[i]
		b := &pg.ring[(i+1)%n]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
	}

	return inside
}

// OnBoundary reports whether the point lies on one of the ring edges.
func (pg *Polygon) OnBoundary(p *Point) bool {
	n := len(pg.ring)
	for i := 0; i < n; i++ {
		if onSegment(&pg.ring[i], &pg.ring[(i+1)%n], p) {
			return true
		}
	}

	return false
}

// onSegment reports whether p lies on the segment a->b within clipEps.
func onSegment(a, b, p *Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > clipEps*math.Max(1, math.Hypot(b.X-a.X, b.Y-a.Y)) {
		return false
	}
	dot := (p.X-a.X)*(b.X-a.X) + (p.Y-a.Y)*(b.Y-a.Y)
	len2 := (b.X-a.X)*(b.X-a.X) + (b.Y-a.Y)*(b.Y-a.Y)

	return dot >= -clipEps && dot <= len2+clipEps
}

// ClipSegment clips the segment a->b against the polygon. The segment
// parameter values at every edge crossing partition [0, 1]; each cell is
// classified by testing its midpoint for containment and adjacent inside
// cells are merged.
func (pg *Polygon) ClipSegment(a, b *Point) []FracRange {
	if pg.IsEmpty() {
		return nil
	}

	cuts := []float64{0, 1}
	n := len(pg.ring)
	for i := 0; i < n; i++ {
		e1 := &pg.ring[i]
		e2 := &pg.ring[(i+1)%n]
		if t, ok := segmentParamIntersection(a, b, e1, e2); ok {
			cuts = append(cuts, t)
		}
	}
	sort.Float64s(cuts)

	var result []FracRange
	for i := 0; i+1 < len(cuts); i++ {
		lo, hi := cuts[i], cuts[i+1]
		if hi-lo < clipEps {
			continue
		}
		mid := Interpolate(a, b, (lo+hi)/2)
		if !pg.CoversPoint(mid) {
			continue
		}
		if len(result) > 0 && result[len(result)-1].Upper >= lo-clipEps {
			result[len(result)-1].Upper = hi
		} else {
			result = append(result, FracRange{Lower: lo, Upper: hi})
		}
	}

	// A segment that only touches the boundary at one instant.
	if len(result) == 0 {
		for _, t := range cuts {
			pt := Interpolate(a, b, t)
			if pg.CoversPoint(pt) {
				result = append(result, FracRange{Lower: t, Upper: t})
				break
			}
		}
	}

	return result
}

// segmentParamIntersection returns the parameter t on segment a->b at
// which it crosses segment e1->e2, if the segments properly intersect.
func segmentParamIntersection(a, b, e1, e2 *Point) (float64, bool) {
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := e2.X-e1.X, e2.Y-e1.Y
	denom := rx*sy - ry*sx
	if math.Abs(denom) < clipEps {
		return 0, false
	}
	qx, qy := e1.X-a.X, e1.Y-a.Y
	t := (qx*sy - qy*sx) / denom
	u := (qx*ry - qy*rx) / denom
	if t < -clipEps || t > 1+clipEps || u < -clipEps || u > 1+clipEps {
		return 0, false
	}

	return math.Min(1, math.Max(0, t)), true
}
