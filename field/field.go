// Package field implements arithmetic in the binary extension fields GF(2^m)
// used by DSTU 4145 curves.
//
// Elements are polynomials over GF(2) stored as little-endian 32-bit words.
// Every element carries the Modulus it belongs to. Arithmetic methods never
// modify their operands and always return a freshly allocated element; the
// only exception is AddInPlace, which is named as such.
package field

import (
	"encoding/hex"
	"math/big"
	"math/bits"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rafaelescrich/go-dstu4145/errs"
)

// Modulus describes the reduction polynomial
// f(z) = z^m + z^k1 + 1 (trinomial) or z^m + z^k1 + z^k2 + z^k3 + 1
// (pentanomial).
type Modulus struct {
	m     int
	ks    []int
	words int
	poly  []uint32
}

// NewModulus returns the modulus of degree m with the given middle exponents.
// Only odd degrees are accepted since the quadratic solver used for point
// expansion relies on the half-trace, which exists for odd m only.
func NewModulus(m int, ks ...int) (*Modulus, error) {
	if m <= 1 {
		return nil, errs.New(errs.ErrInvalidParams, "field: degree must be greater than one")
	}
	if m%2 == 0 {
		return nil, errs.New(errs.ErrEvenDegree, "field: only odd degree moduli are supported")
	}
	if len(ks) != 1 && len(ks) != 3 {
		return nil, errs.New(errs.ErrInvalidParams,
			"field: reduction polynomial must be a trinomial or a pentanomial")
	}

	sorted := append([]int(nil), ks...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for i, k := range sorted {
		if k <= 0 || k >= m {
			return nil, errs.New(errs.ErrInvalidParams, "field: reduction exponent out of range")
		}
		if i > 0 && sorted[i-1] == k {
			return nil, errs.New(errs.ErrInvalidParams, "field: duplicate reduction exponent")
		}
	}

	f := &Modulus{
		m:     m,
		ks:    sorted,
		words: (m + 31) / 32,
		poly:  make([]uint32, m/32+1),
	}
	setBit(f.poly, m)
	setBit(f.poly, 0)
	for _, k := range sorted {
		setBit(f.poly, k)
	}
	return f, nil
}

// Degree returns m.
func (f *Modulus) Degree() int {
	return f.m
}

// Exponents returns the middle exponents of the reduction polynomial in
// decreasing order.
func (f *Modulus) Exponents() []int {
	return append([]int(nil), f.ks...)
}

// Words returns the number of 32-bit words in a reduced element.
func (f *Modulus) Words() int {
	return f.words
}

// ByteLen returns ceil(m/8), the length of the little-endian encoding.
func (f *Modulus) ByteLen() int {
	return (f.m + 7) / 8
}

// Poly returns the reduction polynomial itself as an unreduced element.
func (f *Modulus) Poly() *Element {
	return &Element{n: append([]uint32(nil), f.poly...), mod: f}
}

// Equal reports whether both moduli describe the same polynomial.
func (f *Modulus) Equal(other *Modulus) bool {
	if f == other {
		return true
	}
	if f == nil || other == nil || f.m != other.m || len(f.ks) != len(other.ks) {
		return false
	}
	for i := range f.ks {
		if f.ks[i] != other.ks[i] {
			return false
		}
	}
	return true
}

// Element is a polynomial over GF(2) associated with a Modulus. Results of
// arithmetic are reduced to exactly Modulus.Words() words, except for the
// raw products returned by Mul and Square.
type Element struct {
	n   []uint32
	mod *Modulus
}

// Zero returns the zero element.
func Zero(f *Modulus) *Element {
	return &Element{n: make([]uint32, f.words), mod: f}
}

// One returns the multiplicative identity.
func One(f *Modulus) *Element {
	one := Zero(f)
	one.n[0] = 1
	return one
}

// FromWords returns an element holding a copy of the given little-endian
// words. The value is not reduced.
func FromWords(f *Modulus, words []uint32) *Element {
	size := len(words)
	if size < f.words {
		size = f.words
	}
	n := make([]uint32, size)
	copy(n, words)
	return &Element{n: n, mod: f}
}

// FromBytes returns the element encoded by the big-endian byte slice. The
// value is not reduced.
func FromBytes(f *Modulus, b []byte) *Element {
	size := (len(b) + 3) / 4
	if size < f.words {
		size = f.words
	}
	n := make([]uint32, size)
	for i := 0; i < len(b); i++ {
		pos := len(b) - 1 - i
		n[i/4] |= uint32(b[pos]) << (uint(i%4) * 8)
	}
	return &Element{n: n, mod: f}
}

// FromLE returns the element encoded by the little-endian byte slice.
func FromLE(f *Modulus, b []byte) *Element {
	return FromBytes(f, reversed(b))
}

// FromBitInverted decodes a bit string stored with both byte order and bit
// order reversed, as used for private key bits in key store attributes.
func FromBitInverted(f *Modulus, b []byte) *Element {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = bits.Reverse8(c)
	}
	return FromBytes(f, out)
}

// FromHex parses a big-endian hexadecimal string. Spaces are ignored and an
// odd number of digits is accepted.
func FromHex(f *Modulus, s string) (*Element, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "0x"), " ", "")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "field: decoding hex")
	}
	return FromBytes(f, b), nil
}

// FromBig returns the element whose coefficients are the bits of a
// non-negative integer.
func FromBig(f *Modulus, v *big.Int) *Element {
	if v == nil {
		return Zero(f)
	}
	return FromBytes(f, new(big.Int).Abs(v).Bytes())
}

// Modulus returns the modulus the element belongs to.
func (e *Element) Modulus() *Modulus {
	return e.mod
}

// Words returns a copy of the underlying little-endian words.
func (e *Element) Words() []uint32 {
	return append([]uint32(nil), e.n...)
}

// Clone returns a deep copy of e.
func (e *Element) Clone() *Element {
	return &Element{n: append([]uint32(nil), e.n...), mod: e.mod}
}

// IsZero returns true if every coefficient is zero.
func (e *Element) IsZero() bool {
	var acc uint32
	for _, w := range e.n {
		acc |= w
	}
	return acc == 0
}

// IsOne returns true if e is the constant polynomial 1.
func (e *Element) IsOne() bool {
	return isOne(e.n)
}

// Equal compares both values ignoring leading zero words.
func (e *Element) Equal(other *Element) bool {
	la, lb := sigWords(e.n), sigWords(other.n)
	if la != lb {
		return false
	}
	var diff uint32
	for i := 0; i < la; i++ {
		diff |= e.n[i] ^ other.n[i]
	}
	return diff == 0
}

// Less treats both values as unsigned integers and returns e < other.
func (e *Element) Less(other *Element) bool {
	la, lb := sigWords(e.n), sigWords(other.n)
	if la != lb {
		return la < lb
	}
	for i := la - 1; i >= 0; i-- {
		if e.n[i] != other.n[i] {
			return e.n[i] < other.n[i]
		}
	}
	return false
}

// BitLen returns the position of the highest set coefficient plus one.
func (e *Element) BitLen() int {
	return bitLen(e.n)
}

// TestBit reports whether coefficient i is set.
func (e *Element) TestBit(i int) bool {
	if i < 0 || i/32 >= len(e.n) {
		return false
	}
	return e.n[i/32]>>(uint(i)%32)&1 == 1
}

// SetBit returns a copy of e with coefficient i set.
func (e *Element) SetBit(i int) *Element {
	ret := e.Clone()
	if i/32 >= len(ret.n) {
		grown := make([]uint32, i/32+1)
		copy(grown, ret.n)
		ret.n = grown
	}
	setBit(ret.n, i)
	return ret
}

// ClearBit returns a copy of e with coefficient i cleared.
func (e *Element) ClearBit(i int) *Element {
	ret := e.Clone()
	if i >= 0 && i/32 < len(ret.n) {
		ret.n[i/32] &^= 1 << (uint(i) % 32)
	}
	return ret
}

// ShiftRight returns e shifted right by n bits, keeping the word count.
func (e *Element) ShiftRight(n int) *Element {
	out := make([]uint32, len(e.n))
	wordShift, bitShift := n/32, uint(n%32)
	for i := range out {
		src := i + wordShift
		if src >= len(e.n) {
			break
		}
		out[i] = e.n[src] >> bitShift
		if bitShift != 0 && src+1 < len(e.n) {
			out[i] |= e.n[src+1] << (32 - bitShift)
		}
	}
	return &Element{n: out, mod: e.mod}
}

// Bytes returns the big-endian encoding of every stored word, four bytes per
// word. Reduced elements encode to Modulus.Words()*4 bytes.
func (e *Element) Bytes() []byte {
	b := make([]byte, len(e.n)*4)
	l := len(b)
	for i, w := range e.n {
		b[l-i*4-1] = byte(w)
		b[l-i*4-2] = byte(w >> 8)
		b[l-i*4-3] = byte(w >> 16)
		b[l-i*4-4] = byte(w >> 24)
	}
	return b
}

// LEBytes returns the little-endian encoding truncated to ceil(m/8) bytes.
func (e *Element) LEBytes() []byte {
	le := reversed(e.Reduce().Bytes())
	return le[:e.mod.ByteLen()]
}

// Big returns the element as a non-negative integer.
func (e *Element) Big() *big.Int {
	return new(big.Int).SetBytes(e.Bytes())
}

// Hex returns the upper-case hexadecimal value without leading zeros.
func (e *Element) Hex() string {
	s := strings.TrimLeft(strings.ToUpper(hex.EncodeToString(e.Bytes())), "0")
	if s == "" {
		return "0"
	}
	return s
}

// String implements fmt.Stringer.
func (e *Element) String() string {
	return "<Field " + e.Hex() + ">"
}

// Add returns e + other. Addition in GF(2^m) is word-wise XOR and the result
// is as long as the longer operand.
func (e *Element) Add(other *Element) *Element {
	long, short := e.n, other.n
	if len(short) > len(long) {
		long, short = short, long
	}
	out := make([]uint32, len(long))
	copy(out, long)
	for i, w := range short {
		out[i] ^= w
	}
	return &Element{n: out, mod: e.mod}
}

// AddInPlace sets e = e + other and returns e. It is the accumulator form
// used by the trace and half-trace loops.
func (e *Element) AddInPlace(other *Element) *Element {
	if len(other.n) > len(e.n) {
		grown := make([]uint32, len(other.n))
		copy(grown, e.n)
		e.n = grown
	}
	for i, w := range other.n {
		e.n[i] ^= w
	}
	return e
}

// Mul returns the carry-less product of e and other without reduction.
func (e *Element) Mul(other *Element) *Element {
	out := make([]uint32, len(e.n)+len(other.n))
	for i, x := range e.n {
		if x == 0 {
			continue
		}
		for j, y := range other.n {
			if y == 0 {
				continue
			}
			p := clmul32(x, y)
			out[i+j] ^= uint32(p)
			out[i+j+1] ^= uint32(p >> 32)
		}
	}
	return &Element{n: out, mod: e.mod}
}

// Square returns e*e without reduction. Squaring a binary polynomial only
// spreads its coefficients, so no multiplication is needed.
func (e *Element) Square() *Element {
	out := make([]uint32, 2*len(e.n))
	for i, w := range e.n {
		s := spread32(w)
		out[2*i] = uint32(s)
		out[2*i+1] = uint32(s >> 32)
	}
	return &Element{n: out, mod: e.mod}
}

// Reduce returns e mod f, exactly Modulus.Words() words long.
func (e *Element) Reduce() *Element {
	f := e.mod
	size := len(e.n)
	if size < f.words {
		size = f.words
	}
	buf := make([]uint32, size)
	copy(buf, e.n)

	for i := bitLen(buf) - 1; i >= f.m; i-- {
		if buf[i/32]>>(uint(i)%32)&1 == 0 {
			continue
		}
		flipBit(buf, i)
		base := i - f.m
		flipBit(buf, base)
		for _, k := range f.ks {
			flipBit(buf, base+k)
		}
	}

	out := make([]uint32, f.words)
	copy(out, buf)
	return &Element{n: out, mod: f}
}

// ModMul returns e*other mod f.
func (e *Element) ModMul(other *Element) *Element {
	return e.Mul(other).Reduce()
}

// ModSquare returns e^2 mod f.
func (e *Element) ModSquare() *Element {
	return e.Square().Reduce()
}

func clmul32(a, b uint32) uint64 {
	var r uint64
	x := uint64(a)
	for b != 0 {
		if b&1 != 0 {
			r ^= x
		}
		x <<= 1
		b >>= 1
	}
	return r
}

func spread32(x uint32) uint64 {
	v := uint64(x)
	v = (v | v<<16) & 0x0000FFFF0000FFFF
	v = (v | v<<8) & 0x00FF00FF00FF00FF
	v = (v | v<<4) & 0x0F0F0F0F0F0F0F0F
	v = (v | v<<2) & 0x3333333333333333
	v = (v | v<<1) & 0x5555555555555555
	return v
}

func sigWords(n []uint32) int {
	l := len(n)
	for l > 0 && n[l-1] == 0 {
		l--
	}
	return l
}

func bitLen(n []uint32) int {
	l := sigWords(n)
	if l == 0 {
		return 0
	}
	return (l-1)*32 + bits.Len32(n[l-1])
}

func isOne(n []uint32) bool {
	if len(n) == 0 || n[0] != 1 {
		return false
	}
	return sigWords(n) == 1
}

func setBit(n []uint32, i int) {
	n[i/32] |= 1 << (uint(i) % 32)
}

func flipBit(n []uint32, i int) {
	n[i/32] ^= 1 << (uint(i) % 32)
}

// xorShifted sets dst ^= src << shift. Bits shifted past the end of dst are
// dropped, callers size dst for the largest degree they can reach.
func xorShifted(dst, src []uint32, shift int) {
	wordShift, bitShift := shift/32, uint(shift%32)
	for i := len(src) - 1; i >= 0; i-- {
		w := src[i]
		if w == 0 {
			continue
		}
		lo := i + wordShift
		if lo < len(dst) {
			dst[lo] ^= w << bitShift
		}
		if bitShift != 0 && lo+1 < len(dst) {
			dst[lo+1] ^= w >> (32 - bitShift)
		}
	}
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
