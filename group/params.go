package group

import (
	"math/big"

	"github.com/rafaelescrich/go-dstu4145/errs"
)

// Params describes a curve y^2 + xy = x^3 + a*x^2 + b over GF(2^m).
//
// Field values (B and the base point coordinates) are polynomials whose
// coefficients are the bits of the integers. The base point is given either
// in affine form (BaseX, BaseY) or compressed (BaseCompressed). A zero
// Cofactor is derived from a: curves with a = 0 have cofactor 4 and curves
// with a = 1 have cofactor 2.
type Params struct {
	ID             string
	M              int
	KS             []int
	A              uint
	B              *big.Int
	Order          *big.Int
	Cofactor       int
	BaseX          *big.Int
	BaseY          *big.Int
	BaseCompressed *big.Int
}

func (p *Params) validate() error {
	switch {
	case p.M == 0, len(p.KS) == 0:
		return errs.New(errs.ErrIncompleteParams, "group: missing field degree or reduction exponents")
	case p.B == nil:
		return errs.New(errs.ErrIncompleteParams, "group: missing coefficient b")
	case p.Order == nil:
		return errs.New(errs.ErrIncompleteParams, "group: missing base point order")
	case (p.BaseX == nil || p.BaseY == nil) && p.BaseCompressed == nil:
		return errs.New(errs.ErrIncompleteParams, "group: missing base point")
	}

	if p.A > 1 {
		return errs.New(errs.ErrInvalidParams, "group: coefficient a must be 0 or 1")
	}
	if p.B.Sign() <= 0 {
		return errs.New(errs.ErrInvalidParams, "group: coefficient b must be a non-zero polynomial")
	}
	if p.Cofactor < 0 {
		return errs.New(errs.ErrInvalidParams, "group: negative cofactor")
	}
	return nil
}

func (p *Params) cofactor() int {
	if p.Cofactor != 0 {
		return p.Cofactor
	}
	return 4 >> p.A
}

func (p Params) clone() Params {
	out := p
	out.KS = append([]int(nil), p.KS...)
	for _, v := range []**big.Int{&out.B, &out.Order, &out.BaseX, &out.BaseY, &out.BaseCompressed} {
		if *v != nil {
			*v = new(big.Int).Set(*v)
		}
	}
	return out
}

// ByteOrder selects the byte order of field values in a CurveStruct.
type ByteOrder int

const (
	// LittleEndian is the order used inside DSTU 4145 certificates and key
	// stores.
	LittleEndian ByteOrder = iota

	// BigEndian is the order used by textual and most non-Ukrainian tooling.
	BigEndian
)

// CurveStruct is the structured form of a curve as it appears in the
// DSTU 4145 ASN.1 parameters: the basis is either a trinomial (one middle
// exponent) or a pentanomial (three), b and the compressed base point are
// octet strings in the chosen byte order.
type CurveStruct struct {
	M     int
	KS    []int
	A     uint
	B     []byte
	Order *big.Int
	Base  []byte
}

// Trinomial reports whether the reduction polynomial has a single middle
// term.
func (s CurveStruct) Trinomial() bool {
	return len(s.KS) == 1
}
