package field

import "github.com/rafaelescrich/go-dstu4145/errs"

// Invert returns e^(-1) mod f using the extended Euclidean algorithm over
// GF(2)[z]. The inverse of zero is defined as zero.
func (e *Element) Invert() *Element {
	f := e.mod
	a := e.Reduce()
	if a.IsZero() {
		return Zero(f)
	}

	size := len(f.poly)
	u := make([]uint32, size)
	copy(u, a.n)
	v := append([]uint32(nil), f.poly...)
	g1 := make([]uint32, size+1)
	g2 := make([]uint32, size+1)
	g1[0] = 1

	for !isOne(u) {
		du := bitLen(u)
		if du == 0 {
			// Only reachable for inputs sharing a factor with f, which a
			// reduced non-zero element of an irreducible modulus cannot.
			return Zero(f)
		}
		j := du - bitLen(v)
		if j < 0 {
			u, v = v, u
			g1, g2 = g2, g1
			j = -j
		}
		xorShifted(u, v, j)
		xorShifted(g1, g2, j)
	}

	return (&Element{n: g1, mod: f}).Reduce()
}

// Trace returns Tr(e) = e + e^2 + e^4 + ... + e^(2^(m-1)), which is always
// 0 or 1.
func (e *Element) Trace() uint {
	a := e.Reduce()
	t := a.Clone()
	for i := 1; i < e.mod.m; i++ {
		t = t.ModSquare().AddInPlace(a)
	}
	if t.IsOne() {
		return 1
	}
	return 0
}

// Sqrt returns the unique square root of e, computed as e^(2^(m-1)).
func (e *Element) Sqrt() *Element {
	r := e.Reduce()
	for i := 1; i < e.mod.m; i++ {
		r = r.ModSquare()
	}
	return r
}

// HalfTrace returns sum_{i=0}^{(m-1)/2} e^(2^(2i)). For odd m and Tr(e) = 0
// it is a root of z^2 + z = e. The result is not verified.
func (e *Element) HalfTrace() *Element {
	a := e.Reduce()
	z := a.Clone()
	for i := 1; i <= (e.mod.m-1)/2; i++ {
		z = z.ModSquare().ModSquare().AddInPlace(a)
	}
	return z
}

// SolveQuadratic returns z with z^2 + z = e. The other root is z + 1.
// An ErrQuadraticSolve error is returned when e has trace one and therefore
// no root exists.
func (e *Element) SolveQuadratic() (*Element, error) {
	a := e.Reduce()
	if a.IsZero() {
		return Zero(e.mod), nil
	}
	z := a.HalfTrace()
	if !z.ModSquare().Add(z).Equal(a) {
		return nil, errs.New(errs.ErrQuadraticSolve, "field: z^2 + z = a has no solution")
	}
	return z, nil
}
