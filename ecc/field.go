// 实现素数域上的有限域元素运算。
package ecc

import (
	"fmt"
	"math/big"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
	bigTwo  = big.NewInt(2)
)

// FieldElement 是素数域 F_p 中的一个元素，满足 0 <= num < prime。
// 值不可变，所有运算都返回新的元素。
type FieldElement struct {
	num   *big.Int
	prime *big.Int
}

// NewFieldElement 创建一个有限域元素。
func NewFieldElement(num, prime *big.Int) (FieldElement, error) {
	if prime == nil || prime.Cmp(bigTwo) < 0 {
		return FieldElement{}, eccError(ErrFieldRange,
			fmt.Sprintf("invalid field modulus %v", prime))
	}
	if num == nil || num.Sign() < 0 || num.Cmp(prime) >= 0 {
		return FieldElement{}, eccError(ErrFieldRange,
			fmt.Sprintf("num %v not in field range 0 to %v", num,
				new(big.Int).Sub(prime, bigOne)))
	}
	return FieldElement{
		num:   new(big.Int).Set(num),
		prime: new(big.Int).Set(prime),
	}, nil
}

// NewFieldElementInt64 是使用 int64 参数的便捷构造函数。
func NewFieldElementInt64(num, prime int64) (FieldElement, error) {
	return NewFieldElement(big.NewInt(num), big.NewInt(prime))
}

// reduced builds an element from an arbitrary integer, reducing it modulo the
// prime. The prime pointer is shared since it is never mutated.
func reduced(num, prime *big.Int) FieldElement {
	return FieldElement{num: new(big.Int).Mod(num, prime), prime: prime}
}

// Num 返回元素值的副本。
func (e FieldElement) Num() *big.Int {
	return new(big.Int).Set(e.num)
}

// Prime 返回模数的副本。
func (e FieldElement) Prime() *big.Int {
	return new(big.Int).Set(e.prime)
}

// IsZero 报告元素是否为零。
func (e FieldElement) IsZero() bool {
	return e.num.Sign() == 0
}

// Equal 报告两个元素是否属于同一个域且值相等。
func (e FieldElement) Equal(o FieldElement) bool {
	if e.num == nil || o.num == nil {
		return e.num == nil && o.num == nil
	}
	return e.prime.Cmp(o.prime) == 0 && e.num.Cmp(o.num) == 0
}

// String 返回 "FieldElement_p(num)" 形式的字符串。
func (e FieldElement) String() string {
	return fmt.Sprintf("FieldElement_%v(%v)", e.prime, e.num)
}

func (e FieldElement) sameField(o FieldElement) error {
	if e.prime.Cmp(o.prime) != 0 {
		return eccError(ErrFieldMismatch, fmt.Sprintf("cannot combine "+
			"elements of F_%v and F_%v", e.prime, o.prime))
	}
	return nil
}

// Add 返回 e + o (mod p)。
func (e FieldElement) Add(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return e.add(o), nil
}

// Sub 返回 e - o (mod p)。
func (e FieldElement) Sub(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return e.sub(o), nil
}

// Mul 返回 e * o (mod p)。
func (e FieldElement) Mul(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	return e.mul(o), nil
}

// Div 返回 e / o (mod p)，即 e 乘以 o 的模逆元。
// 由费马小定理，o 的逆元为 o^(p-2)。
func (e FieldElement) Div(o FieldElement) (FieldElement, error) {
	if err := e.sameField(o); err != nil {
		return FieldElement{}, err
	}
	if o.IsZero() {
		return FieldElement{}, eccError(ErrDivideByZero,
			fmt.Sprintf("division by zero in F_%v", e.prime))
	}
	return e.div(o), nil
}

// Pow 返回 e^exp (mod p)。指数先对 p-1 取模，因此负指数同样适用。
func (e FieldElement) Pow(exp *big.Int) FieldElement {
	order := new(big.Int).Sub(e.prime, bigOne)
	n := new(big.Int).Mod(exp, order)
	return FieldElement{num: new(big.Int).Exp(e.num, n, e.prime), prime: e.prime}
}

// ScalarMul 返回 k * e (mod p)，k 为任意整数。
func (e FieldElement) ScalarMul(k *big.Int) FieldElement {
	return reduced(new(big.Int).Mul(e.num, k), e.prime)
}

// Neg 返回 -e (mod p)。
func (e FieldElement) Neg() FieldElement {
	return reduced(new(big.Int).Neg(e.num), e.prime)
}

// Sqrt 返回 e 的一个平方根候选值 e^((p+1)/4)，仅当 p ≡ 3 (mod 4) 时成立。
// 调用者需要自行验证结果的平方是否等于 e。
func (e FieldElement) Sqrt() FieldElement {
	exp := new(big.Int).Add(e.prime, bigOne)
	exp.Rsh(exp, 2)
	return FieldElement{num: new(big.Int).Exp(e.num, exp, e.prime), prime: e.prime}
}

func (e FieldElement) add(o FieldElement) FieldElement {
	return reduced(new(big.Int).Add(e.num, o.num), e.prime)
}

func (e FieldElement) sub(o FieldElement) FieldElement {
	return reduced(new(big.Int).Sub(e.num, o.num), e.prime)
}

func (e FieldElement) mul(o FieldElement) FieldElement {
	return reduced(new(big.Int).Mul(e.num, o.num), e.prime)
}

func (e FieldElement) div(o FieldElement) FieldElement {
	exp := new(big.Int).Sub(e.prime, bigTwo)
	inv := new(big.Int).Exp(o.num, exp, e.prime)
	return reduced(inv.Mul(inv, e.num), e.prime)
}
