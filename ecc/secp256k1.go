// 定义 secp256k1 曲线常量以及基于它的点构造与标量乘法。
package ecc

import (
	"fmt"
	"math/big"
)

// CurveParams 是 secp256k1 的域参数。
type CurveParams struct {
	P       *big.Int // 素数域的模数
	N       *big.Int // 生成元的阶
	Gx, Gy  *big.Int // 生成元坐标
	BitSize int      // 域的位数
	Name    string   // 曲线名称
}

func fromHex(s string) *big.Int {
	r, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return r
}

// secp256k1 curve constants: y^2 = x^3 + 7 over F_p with
// p = 2^256 - 2^32 - 977.
var (
	secp256k1Params = CurveParams{
		P:       fromHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
		N:       fromHex("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
		Gx:      fromHex("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
		Gy:      fromHex("483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"),
		BitSize: 256,
		Name:    "secp256k1",
	}

	// halfOrder is N/2, the largest s allowed by the low-s rule.
	halfOrder = new(big.Int).Rsh(secp256k1Params.N, 1)

	s256Curve = Curve{
		A: FieldElement{num: big.NewInt(0), prime: secp256k1Params.P},
		B: FieldElement{num: big.NewInt(7), prime: secp256k1Params.P},
	}

	generator = Point{
		x:     FieldElement{num: secp256k1Params.Gx, prime: secp256k1Params.P},
		y:     FieldElement{num: secp256k1Params.Gy, prime: secp256k1Params.P},
		curve: s256Curve,
	}
)

// S256 返回 secp256k1 的域参数。返回值由包内共享，调用者不得修改。
func S256() *CurveParams {
	return &secp256k1Params
}

// S256Curve 返回 secp256k1 的曲线参数 a = 0, b = 7。
func S256Curve() Curve {
	return s256Curve
}

// Generator 返回 secp256k1 的生成元 G。
func Generator() Point {
	return generator
}

// NewS256FieldElement 返回 x mod p 对应的域元素。
func NewS256FieldElement(x *big.Int) FieldElement {
	return reduced(x, secp256k1Params.P)
}

// NewS256Point 创建一个 secp256k1 上的点，坐标必须小于 p 且满足曲线方程。
func NewS256Point(x, y *big.Int) (Point, error) {
	fx, err := NewFieldElement(x, secp256k1Params.P)
	if err != nil {
		return Point{}, err
	}
	fy, err := NewFieldElement(y, secp256k1Params.P)
	if err != nil {
		return Point{}, err
	}
	return NewPoint(fx, fy, s256Curve)
}

// IsOnS256 报告点是否为 secp256k1 上的有限点。
func IsOnS256(p Point) bool {
	return !p.infinity && p.curve.Equal(s256Curve)
}

// ScalarBaseMult 返回 k * G，k 先对 n 取模。
func ScalarBaseMult(k *big.Int) Point {
	return ScalarMultS256(generator, k)
}

// ScalarMultS256 返回 k * p，k 先对 n 取模。
func ScalarMultS256(p Point, k *big.Int) Point {
	return p.ScalarMul(new(big.Int).Mod(k, secp256k1Params.N))
}

// decompressY 根据 x 坐标与奇偶性恢复 y 坐标。
func decompressY(x *big.Int, odd bool) (*big.Int, error) {
	fx := NewS256FieldElement(x)
	rhs := fx.mul(fx).mul(fx).add(s256Curve.B)
	y := rhs.Sqrt()
	if !y.mul(y).Equal(rhs) {
		return nil, eccError(ErrPointNotOnCurve,
			fmt.Sprintf("x coordinate %x is not on the secp256k1 curve", x))
	}

	yNum := y.Num()
	if (yNum.Bit(0) == 1) != odd {
		yNum.Sub(secp256k1Params.P, yNum)
	}
	return yNum, nil
}
