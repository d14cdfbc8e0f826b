// Package scalar implements integer arithmetic modulo the order of a DSTU 4145
// base point. Unlike the field elements, scalars are ordinary integers: the
// signature equation s = d*r + e and the key agreement multiplier d*h are
// computed here.
package scalar

import (
	"crypto/subtle"
	"math/big"

	"github.com/rafaelescrich/go-dstu4145/errs"
)

// Order is the prime order n of a base point.
type Order struct {
	n       *big.Int
	bitLen  int
	byteLen int
}

// NewOrder returns the order n. n must be greater than one.
func NewOrder(n *big.Int) (*Order, error) {
	if n == nil || n.Cmp(big.NewInt(1)) <= 0 {
		return nil, errs.New(errs.ErrInvalidParams, "scalar: order must be greater than one")
	}
	return &Order{
		n:       new(big.Int).Set(n),
		bitLen:  n.BitLen(),
		byteLen: (n.BitLen() + 7) / 8,
	}, nil
}

// Int returns a copy of n.
func (o *Order) Int() *big.Int {
	return new(big.Int).Set(o.n)
}

// BitLen returns the bit length of n.
func (o *Order) BitLen() int {
	return o.bitLen
}

// ByteLen returns ceil(bitlen(n)/8), the fixed width of encoded scalars.
func (o *Order) ByteLen() int {
	return o.byteLen
}

// Equal reports whether both orders are the same integer.
func (o *Order) Equal(other *Order) bool {
	return o == other || (o != nil && other != nil && o.n.Cmp(other.n) == 0)
}

// Zero returns the scalar 0.
func (o *Order) Zero() *Scalar {
	return &Scalar{v: new(big.Int), order: o}
}

// One returns the scalar 1.
func (o *Order) One() *Scalar {
	return &Scalar{v: big.NewInt(1), order: o}
}

// New returns v mod n.
func (o *Order) New(v *big.Int) *Scalar {
	return &Scalar{v: new(big.Int).Mod(v, o.n), order: o}
}

// Check returns v as a scalar if 0 < v < n, and false otherwise. No
// reduction is applied.
func (o *Order) Check(v *big.Int) (*Scalar, bool) {
	if v.Sign() <= 0 || v.Cmp(o.n) >= 0 {
		return nil, false
	}
	return &Scalar{v: new(big.Int).Set(v), order: o}, true
}

// SetBytes returns the big-endian integer b reduced mod n.
func (o *Order) SetBytes(b []byte) *Scalar {
	return o.New(new(big.Int).SetBytes(b))
}

// SetBytesLE returns the little-endian integer b reduced mod n.
func (o *Order) SetBytesLE(b []byte) *Scalar {
	return o.SetBytes(reversed(b))
}

// Scalar is an integer in [0, n) bound to its Order.
type Scalar struct {
	v     *big.Int
	order *Order
}

// Order returns the order the scalar is bound to.
func (s *Scalar) Order() *Order {
	return s.order
}

// Int returns a copy of the value.
func (s *Scalar) Int() *big.Int {
	return new(big.Int).Set(s.v)
}

// IsZero returns true if s == 0.
func (s *Scalar) IsZero() bool {
	return s.v.Sign() == 0
}

// Equal compares two scalars in constant time over their fixed-width
// encodings.
func (s *Scalar) Equal(other *Scalar) bool {
	return subtle.ConstantTimeCompare(s.Bytes(), other.Bytes()) == 1
}

// Cmp compares the values as integers.
func (s *Scalar) Cmp(other *Scalar) int {
	return s.v.Cmp(other.v)
}

// Add returns s + other mod n.
func (s *Scalar) Add(other *Scalar) *Scalar {
	s.check(other)
	return s.order.New(new(big.Int).Add(s.v, other.v))
}

// Sub returns s - other mod n.
func (s *Scalar) Sub(other *Scalar) *Scalar {
	s.check(other)
	return s.order.New(new(big.Int).Sub(s.v, other.v))
}

// Mul returns s * other mod n.
func (s *Scalar) Mul(other *Scalar) *Scalar {
	s.check(other)
	return s.order.New(new(big.Int).Mul(s.v, other.v))
}

// Negate returns -s mod n.
func (s *Scalar) Negate() *Scalar {
	return s.order.New(new(big.Int).Neg(s.v))
}

// Inverse returns s^-1 mod n, or zero when s is zero.
func (s *Scalar) Inverse() *Scalar {
	if s.IsZero() {
		return s.order.Zero()
	}
	inv := new(big.Int).ModInverse(s.v, s.order.n)
	if inv == nil {
		return s.order.Zero()
	}
	return &Scalar{v: inv, order: s.order}
}

// Bytes returns the big-endian encoding padded to Order.ByteLen bytes.
func (s *Scalar) Bytes() []byte {
	return s.v.FillBytes(make([]byte, s.order.byteLen))
}

// LEBytes returns the little-endian encoding padded to Order.ByteLen bytes.
func (s *Scalar) LEBytes() []byte {
	return reversed(s.Bytes())
}

// Clear zeroes the value.
func (s *Scalar) Clear() {
	s.v.SetInt64(0)
}

// String returns the value in hexadecimal.
func (s *Scalar) String() string {
	return s.v.Text(16)
}

func (s *Scalar) check(other *Scalar) {
	if !s.order.Equal(other.order) {
		panic(errs.New(errs.ErrCurveMismatch, "scalar: operands bound to different orders"))
	}
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
