// Package group implements the DSTU 4145 elliptic curve groups
// y^2 + xy = x^3 + a*x^2 + b over GF(2^m).
//
// Points are affine and immutable. Every point refers to the Curve it was
// created on; combining points of different curves is a programming error
// and panics with errs.ErrCurveMismatch.
package group

import (
	"math/big"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
)

// Point represents a point on a binary curve in affine coordinates (x, y).
type Point struct {
	x, y     *field.Element
	infinity bool
	curve    *Curve
}

// Curve returns the curve the point belongs to.
func (p *Point) Curve() *Curve {
	return p.curve
}

// IsInfinity returns true if p is the point at infinity.
func (p *Point) IsInfinity() bool {
	return p.infinity
}

// Equal returns true if both points are equal.
func (p *Point) Equal(other *Point) bool {
	if p.infinity || other.infinity {
		return p.infinity == other.infinity
	}
	return p.curve.Equal(other.curve) && p.x.Equal(other.x) && p.y.Equal(other.y)
}

// Add returns p + q.
func (p *Point) Add(q *Point) *Point {
	p.mustMatch(q)
	if p.infinity {
		return q
	}
	if q.infinity {
		return p
	}

	if !p.x.Equal(q.x) {
		// lambda = (y1 + y2) / (x1 + x2)
		// x3 = lambda^2 + lambda + x1 + x2 + a
		dx := p.x.Add(q.x)
		lambda := p.y.Add(q.y).ModMul(dx.Invert())
		x3 := lambda.ModSquare().Add(lambda).Add(dx).Add(p.curve.a).Reduce()
		return p.finish(lambda, x3)
	}

	// Same abscissa: either q = p or q = -p.
	if !p.y.Equal(q.y) {
		return p.curve.Infinity()
	}
	return p.Double()
}

// Double returns 2p.
func (p *Point) Double() *Point {
	if p.infinity || p.x.IsZero() {
		return p.curve.Infinity()
	}

	// lambda = x1 + y1 / x1
	// x3 = lambda^2 + lambda + a
	lambda := p.x.Add(p.y.ModMul(p.x.Invert()))
	x3 := lambda.ModSquare().Add(lambda).Add(p.curve.a).Reduce()
	return p.finish(lambda, x3)
}

// finish computes y3 = lambda*(x1 + x3) + x3 + y1.
func (p *Point) finish(lambda, x3 *field.Element) *Point {
	y3 := lambda.ModMul(p.x.Add(x3)).Add(x3).Add(p.y).Reduce()
	return p.curve.point(x3, y3)
}

// Negate returns -p = (x, x + y).
func (p *Point) Negate() *Point {
	if p.infinity {
		return p
	}
	return p.curve.point(p.x.Clone(), p.x.Add(p.y).Reduce())
}

// Mul returns k*p. Negative k multiplies the negated point. k is not reduced
// modulo the order.
func (p *Point) Mul(k *big.Int) *Point {
	if p.curve.base != nil && p == p.curve.base {
		return p.curve.ScalarBaseMult(k)
	}
	w := p.curve.window
	return p.mulWNAF(k, p.oddMultiples(w), w)
}

// Compress returns x with bit 0 replaced by Tr(y/x). The points with x = 0
// and the point at infinity compress to zero.
func (p *Point) Compress() *field.Element {
	if p.infinity || p.x.IsZero() {
		return field.Zero(p.curve.mod)
	}
	c := p.x.ClearBit(0)
	if p.y.ModMul(p.x.Invert()).Trace() == 1 {
		c = c.SetBit(0)
	}
	return c
}

// String returns the coordinates in hexadecimal.
func (p *Point) String() string {
	if p.infinity {
		return "<Point infinity>"
	}
	return "<Point x:" + p.x.Hex() + ", y:" + p.y.Hex() + ">"
}

func (p *Point) mustMatch(q *Point) {
	if p.curve != q.curve && !p.curve.Equal(q.curve) {
		panic(errs.New(errs.ErrCurveMismatch, "group: points belong to different curves"))
	}
}
