package geo

import (
	"fmt"

	"github.com/arloliu/tempus/errs"
)

// NPoint is a network point: a position along a route, expressed as a
// route identifier and a fraction in [0, 1] along that route.
type NPoint struct {
	RouteID  int64
	Position float64
}

// NewNPoint validates and returns a network point.
func NewNPoint(routeID int64, position float64) (*NPoint, error) {
	if position < 0 || position > 1 {
		return nil, fmt.Errorf("%w: network position %g not in [0,1]", errs.ErrBadBounds, position)
	}

	return &NPoint{RouteID: routeID, Position: position}, nil
}

// Clone returns a copy of the network point.
func (np *NPoint) Clone() *NPoint {
	c := *np
	return &c
}

// Equal reports route and position equality.
func (np *NPoint) Equal(other *NPoint) bool {
	if np == nil || other == nil {
		return np == other
	}

	return np.RouteID == other.RouteID && np.Position == other.Position
}

// String formats the network point as NPoint(route, position).
func (np *NPoint) String() string {
	return fmt.Sprintf("NPoint(%d,%g)", np.RouteID, np.Position)
}

// InterpolateNPoint returns the network point at fraction frac between
// two positions on the same route. Interpolating across different
// routes fails with errs.ErrSegMismatch.
func InterpolateNPoint(a, b *NPoint, frac float64) (*NPoint, error) {
	if a.RouteID != b.RouteID {
		return nil, fmt.Errorf("%w: routes %d and %d", errs.ErrSegMismatch, a.RouteID, b.RouteID)
	}
	if frac <= 0 {
		return a.Clone(), nil
	}
	if frac >= 1 {
		return b.Clone(), nil
	}

	return &NPoint{RouteID: a.RouteID, Position: a.Position + (b.Position-a.Position)*frac}, nil
}
