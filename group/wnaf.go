package group

import "math/big"

// windowCutoffs maps the scalar bit length to the wNAF window width: a
// length below windowCutoffs[i] uses width i+2.
var windowCutoffs = []int{13, 41, 121, 337, 897, 2305}

const (
	minWindow = 2
	maxWindow = 16
)

func windowSize(bits int) int {
	w := len(windowCutoffs) + minWindow
	for i, cutoff := range windowCutoffs {
		if bits < cutoff {
			w = i + minWindow
			break
		}
	}
	if w < minWindow {
		return minWindow
	}
	if w > maxWindow {
		return maxWindow
	}
	return w
}

// oddMultiples returns [p, 3p, 5p, ..., (2^(w-1)-1)p].
func (p *Point) oddMultiples(w int) []*Point {
	table := make([]*Point, 1<<uint(w-2))
	table[0] = p
	twice := p.Double()
	for i := 1; i < len(table); i++ {
		table[i] = table[i-1].Add(twice)
	}
	return table
}

// wnaf returns the width-w non-adjacent form of k >= 0, least significant
// digit first. Every non-zero digit is odd and below 2^(w-1) in absolute
// value.
func wnaf(k *big.Int, w int) []int {
	k = new(big.Int).Set(k)
	modulus := int64(1) << uint(w)
	half := modulus >> 1
	mask := big.NewInt(modulus - 1)

	digits := make([]int, 0, k.BitLen()+1)
	low := new(big.Int)
	for k.Sign() > 0 {
		var d int64
		if k.Bit(0) == 1 {
			d = low.And(k, mask).Int64()
			if d >= half {
				d -= modulus
			}
			k.Sub(k, big.NewInt(d))
		}
		digits = append(digits, int(d))
		k.Rsh(k, 1)
	}
	return digits
}

// mulWNAF computes k*p with a table of odd multiples of p.
func (p *Point) mulWNAF(k *big.Int, table []*Point, w int) *Point {
	if k.Sign() == 0 || p.infinity {
		return p.curve.Infinity()
	}
	if k.Sign() < 0 {
		neg := make([]*Point, len(table))
		for i, t := range table {
			neg[i] = t.Negate()
		}
		return p.Negate().mulWNAF(new(big.Int).Neg(k), neg, w)
	}

	digits := wnaf(k, w)
	r := p.curve.Infinity()
	for i := len(digits) - 1; i >= 0; i-- {
		r = r.Double()
		switch d := digits[i]; {
		case d > 0:
			r = r.Add(table[(d-1)/2])
		case d < 0:
			r = r.Sub(table[(-d-1)/2])
		}
	}
	return r
}

// mulNaive is plain double-and-add. It is used once per curve to check the
// order of the base point, before the base table exists.
func (p *Point) mulNaive(k *big.Int) *Point {
	r := p.curve.Infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = r.Double()
		if k.Bit(i) == 1 {
			r = r.Add(p)
		}
	}
	return r
}
