package scalar

import (
	"crypto/rand"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/rafaelescrich/go-dstu4145/errs"
)

// Sampler draws uniform scalars in [1, n) by rejection sampling.
//
// Each attempt reads ceil(bitlen(n)/8) bytes and clears the bits above
// bitlen(n), so at least half of the attempts succeed. Values that are zero
// or not below n are discarded.
type Sampler struct {
	rand        io.Reader
	maxAttempts int
}

// NewSampler returns a sampler reading from r. A nil reader selects
// crypto/rand. maxAttempts bounds the number of draws per Sample call; zero
// means unbounded, which is what production callers use.
//
// Because of the masking, a fixed byte stream yields different scalars here
// than in samplers that compare unmasked draws against n. Scripted sources
// are only reproducible against this sampler.
func NewSampler(r io.Reader, maxAttempts int) *Sampler {
	if r == nil {
		r = rand.Reader
	}
	return &Sampler{rand: r, maxAttempts: maxAttempts}
}

// Sample returns a uniformly random scalar in [1, n).
func (s *Sampler) Sample(o *Order) (*Scalar, error) {
	k, _, err := s.SampleCounted(o)
	return k, err
}

// SampleCounted is Sample that also reports how many draws were rejected.
func (s *Sampler) SampleCounted(o *Order) (*Scalar, int, error) {
	buf := make([]byte, o.byteLen)
	mask := byte(0xFF)
	if extra := o.byteLen*8 - o.bitLen; extra > 0 {
		mask >>= uint(extra)
	}

	v := new(big.Int)
	for attempt := 0; s.maxAttempts == 0 || attempt < s.maxAttempts; attempt++ {
		if _, err := io.ReadFull(s.rand, buf); err != nil {
			return nil, attempt, errs.Error{
				Err:         errs.ErrRandomSource,
				Description: errors.Wrap(err, "scalar: reading random bytes").Error(),
			}
		}
		buf[0] &= mask
		v.SetBytes(buf)
		if k, ok := o.Check(v); ok {
			return k, attempt, nil
		}
	}

	return nil, s.maxAttempts, errs.New(errs.ErrAttemptsExhausted,
		"scalar: no value in [1, n) after the maximum number of attempts")
}
