package datum

import (
	"fmt"
	"strconv"

	"github.com/arloliu/tempus/errs"
	"github.com/arloliu/tempus/geo"
	"github.com/arloliu/tempus/ttime"
)

// Datum is a uniform value carrier tagging a payload with its base type.
//
// Scalar payloads live inline; geometric payloads are held by reference
// and owned by the enclosing temporal value. Datums are immutable; Clone
// deep-copies byref payloads when a payload must outlive its owner.
type Datum struct {
	s  string
	g  *geo.Point
	np *geo.NPoint
	i  int64
	f  float64
	bt BaseType
}

// Bool returns a boolean datum.
func Bool(v bool) Datum {
	var i int64
	if v {
		i = 1
	}

	return Datum{bt: TypeBool, i: i}
}

// Int4 returns a 32-bit integer datum.
func Int4(v int32) Datum {
	return Datum{bt: TypeInt4, i: int64(v)}
}

// Int8 returns a 64-bit integer datum.
func Int8(v int64) Datum {
	return Datum{bt: TypeInt8, i: v}
}

// Float8 returns a float datum.
func Float8(v float64) Datum {
	return Datum{bt: TypeFloat8, f: v}
}

// Text returns a text datum.
func Text(v string) Datum {
	return Datum{bt: TypeText, s: v}
}

// TimestampTz returns a timestamp datum.
func TimestampTz(t ttime.Timestamp) Datum {
	return Datum{bt: TypeTimestampTz, i: int64(t)}
}

// Geom returns a planar point datum holding p by reference.
func Geom(p *geo.Point) Datum {
	return Datum{bt: TypeGeomPoint, g: p}
}

// Geog returns a geodetic point datum holding p by reference.
func Geog(p *geo.Point) Datum {
	return Datum{bt: TypeGeogPoint, g: p}
}

// NPoint returns a network point datum holding np by reference.
func NPoint(np *geo.NPoint) Datum {
	return Datum{bt: TypeNPoint, np: np}
}

// Type returns the base type tag.
func (d Datum) Type() BaseType { return d.bt }

// IsZero reports whether the datum is the zero Datum (no base type).
func (d Datum) IsZero() bool { return d.bt == 0 }

// BoolVal returns the boolean payload.
func (d Datum) BoolVal() bool { return d.i != 0 }

// Int4Val returns the int4 payload.
func (d Datum) Int4Val() int32 { return int32(d.i) }

// Int8Val returns the int8 payload.
func (d Datum) Int8Val() int64 { return d.i }

// Float8Val returns the float payload.
func (d Datum) Float8Val() float64 { return d.f }

// TextVal returns the text payload.
func (d Datum) TextVal() string { return d.s }

// TimestampVal returns the timestamp payload.
func (d Datum) TimestampVal() ttime.Timestamp { return ttime.Timestamp(d.i) }

// PointVal returns the point payload without copying.
func (d Datum) PointVal() *geo.Point { return d.g }

// NPointVal returns the network point payload without copying.
func (d Datum) NPointVal() *geo.NPoint { return d.np }

// Clone returns a datum whose byref payloads are deep copies.
func (d Datum) Clone() Datum {
	c := d
	if d.g != nil {
		c.g = d.g.Clone()
	}
	if d.np != nil {
		c.np = d.np.Clone()
	}

	return c
}

// Float64 promotes a numeric payload to float64 for geometric and
// distance computations.
func (d Datum) Float64() float64 {
	switch d.bt {
	case TypeInt4, TypeInt8:
		return float64(d.i)
	case TypeFloat8:
		return d.f
	case TypeTimestampTz:
		return float64(d.i)
	case TypeNPoint:
		return d.np.Position
	default:
		return 0
	}
}

// Eq reports value equality. Datums of different base types are never
// equal.
func (d Datum) Eq(other Datum) bool {
	if d.bt != other.bt {
		return false
	}
	switch d.bt {
	case TypeBool, TypeInt4, TypeInt8, TypeTimestampTz:
		return d.i == other.i
	case TypeFloat8:
		return d.f == other.f
	case TypeText:
		return d.s == other.s
	case TypeGeomPoint, TypeGeogPoint:
		return d.g.Equal(other.g)
	case TypeNPoint:
		return d.np.Equal(other.np)
	default:
		return false
	}
}

// Cmp returns the total order of two datums of the same ordered base
// type: -1, 0 or 1. Comparing unordered or mismatched base types panics;
// callers validate base types at construction.
func (d Datum) Cmp(other Datum) int {
	if d.bt != other.bt {
		panic("datum: Cmp across base types")
	}
	switch d.bt {
	case TypeBool, TypeInt4, TypeInt8, TypeTimestampTz:
		return cmpOrdered(d.i, other.i)
	case TypeFloat8:
		return cmpOrdered(d.f, other.f)
	case TypeText:
		return cmpOrdered(d.s, other.s)
	default:
		panic(fmt.Sprintf("datum: Cmp over unordered base type %s", d.bt))
	}
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Lt reports d < other under the base type's total order.
func (d Datum) Lt(other Datum) bool { return d.Cmp(other) < 0 }

// Le reports d <= other under the base type's total order.
func (d Datum) Le(other Datum) bool { return d.Cmp(other) <= 0 }

// Gt reports d > other under the base type's total order.
func (d Datum) Gt(other Datum) bool { return d.Cmp(other) > 0 }

// Ge reports d >= other under the base type's total order.
func (d Datum) Ge(other Datum) bool { return d.Cmp(other) >= 0 }

// checkNumeric validates that both operands are the same numeric type.
func (d Datum) checkNumeric(other Datum) error {
	if d.bt != other.bt {
		return fmt.Errorf("%w: %s vs %s", errs.ErrBaseMismatch, d.bt, other.bt)
	}
	if !d.bt.Numeric() {
		return fmt.Errorf("%w: %s is not numeric", errs.ErrTypeMismatch, d.bt)
	}

	return nil
}

// Add returns the numeric sum of two datums of the same base type.
func (d Datum) Add(other Datum) (Datum, error) {
	if err := d.checkNumeric(other); err != nil {
		return Datum{}, err
	}
	if d.bt == TypeFloat8 {
		return Float8(d.f + other.f), nil
	}

	return Datum{bt: d.bt, i: d.i + other.i}, nil
}

// Sub returns the numeric difference of two datums of the same base type.
func (d Datum) Sub(other Datum) (Datum, error) {
	if err := d.checkNumeric(other); err != nil {
		return Datum{}, err
	}
	if d.bt == TypeFloat8 {
		return Float8(d.f - other.f), nil
	}

	return Datum{bt: d.bt, i: d.i - other.i}, nil
}

// Mul returns the numeric product of two datums of the same base type.
func (d Datum) Mul(other Datum) (Datum, error) {
	if err := d.checkNumeric(other); err != nil {
		return Datum{}, err
	}
	if d.bt == TypeFloat8 {
		return Float8(d.f * other.f), nil
	}

	return Datum{bt: d.bt, i: d.i * other.i}, nil
}

// Div returns the numeric quotient of two datums of the same base type.
// A zero divisor fails with errs.ErrDivZero.
func (d Datum) Div(other Datum) (Datum, error) {
	if err := d.checkNumeric(other); err != nil {
		return Datum{}, err
	}
	if d.bt == TypeFloat8 {
		if other.f == 0 {
			return Datum{}, errs.ErrDivZero
		}
		return Float8(d.f / other.f), nil
	}
	if other.i == 0 {
		return Datum{}, errs.ErrDivZero
	}

	return Datum{bt: d.bt, i: d.i / other.i}, nil
}

// String formats the datum payload for display.
func (d Datum) String() string {
	switch d.bt {
	case TypeBool:
		return strconv.FormatBool(d.BoolVal())
	case TypeInt4, TypeInt8:
		return strconv.FormatInt(d.i, 10)
	case TypeFloat8:
		return strconv.FormatFloat(d.f, 'g', -1, 64)
	case TypeText:
		return strconv.Quote(d.s)
	case TypeTimestampTz:
		return d.TimestampVal().String()
	case TypeGeomPoint, TypeGeogPoint:
		return d.g.String()
	case TypeNPoint:
		return d.np.String()
	default:
		return "<invalid>"
	}
}
