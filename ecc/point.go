// 实现短 Weierstrass 曲线 y^2 = x^3 + ax + b 上的点加法与标量乘法。
package ecc

import (
	"fmt"
	"math/big"
)

var bigThree = big.NewInt(3)

// Curve 是曲线参数 a 与 b，作为不可变配置随每个点携带。
type Curve struct {
	A FieldElement
	B FieldElement
}

// NewCurve 创建曲线参数，a 与 b 必须属于同一个域。
func NewCurve(a, b FieldElement) (Curve, error) {
	if err := a.sameField(b); err != nil {
		return Curve{}, err
	}
	return Curve{A: a, B: b}, nil
}

// Equal 报告两条曲线参数是否相同。
func (c Curve) Equal(o Curve) bool {
	return c.A.Equal(o.A) && c.B.Equal(o.B)
}

// contains reports whether y^2 == x^3 + ax + b. All elements must share the
// curve's field.
func (c Curve) contains(x, y FieldElement) bool {
	lhs := y.mul(y)
	rhs := x.mul(x).mul(x).add(c.A.mul(x)).add(c.B)
	return lhs.Equal(rhs)
}

// Point 是曲线上的点，或者是该曲线的无穷远点（群的单位元）。
type Point struct {
	x        FieldElement
	y        FieldElement
	curve    Curve
	infinity bool
}

// NewPoint 创建一个曲线上的点，坐标不满足曲线方程时返回 ErrPointNotOnCurve。
func NewPoint(x, y FieldElement, curve Curve) (Point, error) {
	if err := x.sameField(y); err != nil {
		return Point{}, err
	}
	if err := x.sameField(curve.A); err != nil {
		return Point{}, err
	}
	if !curve.contains(x, y) {
		return Point{}, eccError(ErrPointNotOnCurve,
			fmt.Sprintf("(%v, %v) is not on the curve", x.num, y.num))
	}
	return Point{x: x, y: y, curve: curve}, nil
}

// Infinity 返回曲线的无穷远点。
func Infinity(curve Curve) Point {
	return Point{curve: curve, infinity: true}
}

// IsInfinity 报告点是否为无穷远点。
func (p Point) IsInfinity() bool {
	return p.infinity
}

// X 返回 x 坐标，无穷远点返回零值。
func (p Point) X() FieldElement {
	return p.x
}

// Y 返回 y 坐标，无穷远点返回零值。
func (p Point) Y() FieldElement {
	return p.y
}

// Curve 返回点所在的曲线。
func (p Point) Curve() Curve {
	return p.curve
}

// Equal 报告两个点是否相同。
func (p Point) Equal(o Point) bool {
	if !p.curve.Equal(o.curve) {
		return false
	}
	if p.infinity || o.infinity {
		return p.infinity == o.infinity
	}
	return p.x.Equal(o.x) && p.y.Equal(o.y)
}

// String 返回点的可读形式。
func (p Point) String() string {
	if p.infinity {
		return "Point(infinity)"
	}
	return fmt.Sprintf("Point(%v, %v)_%v_%v FieldElement(%v)", p.x.num,
		p.y.num, p.curve.A.num, p.curve.B.num, p.x.prime)
}

// Neg 返回点的加法逆元 (x, -y)。
func (p Point) Neg() Point {
	if p.infinity {
		return p
	}
	return Point{x: p.x, y: p.y.Neg(), curve: p.curve}
}

// Add 返回 p + o。两个点不在同一条曲线上时返回 ErrFieldMismatch。
func (p Point) Add(o Point) (Point, error) {
	if !p.curve.Equal(o.curve) {
		return Point{}, eccError(ErrFieldMismatch,
			"points are not on the same curve")
	}
	return p.add(o), nil
}

// add handles the four cases of the group law for two points on the same
// curve.
func (p Point) add(o Point) Point {
	// Identity.
	if p.infinity {
		return o
	}
	if o.infinity {
		return p
	}

	// Additive inverses, including a vertical tangent when doubling a point
	// with y == 0.
	if p.x.Equal(o.x) && (!p.y.Equal(o.y) || p.y.IsZero()) {
		return Infinity(p.curve)
	}

	var s FieldElement
	if p.x.Equal(o.x) {
		// Doubling: s = (3x^2 + a) / 2y
		num := p.x.mul(p.x).ScalarMul(bigThree).add(p.curve.A)
		s = num.div(p.y.ScalarMul(bigTwo))
	} else {
		// s = (y2 - y1) / (x2 - x1)
		s = o.y.sub(p.y).div(o.x.sub(p.x))
	}

	x3 := s.mul(s).sub(p.x).sub(o.x)
	y3 := s.mul(p.x.sub(x3)).sub(p.y)
	return Point{x: x3, y: y3, curve: p.curve}
}

// ScalarMul 使用二进制倍加法计算 k * p。负的 k 作用于 p 的逆元。
func (p Point) ScalarMul(k *big.Int) Point {
	coef := new(big.Int).Set(k)
	current := p
	if coef.Sign() < 0 {
		coef.Neg(coef)
		current = p.Neg()
	}

	result := Infinity(p.curve)
	for i := 0; i < coef.BitLen(); i++ {
		if coef.Bit(i) == 1 {
			result = result.add(current)
		}
		current = current.add(current)
	}
	return result
}
