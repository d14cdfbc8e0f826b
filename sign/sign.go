// Package sign implements the DSTU 4145 digital signature scheme.
//
// A signature over digest h is (r, s) with
//
//	R = e*G for a random e in [1, n)
//	r = truncate(h * R.x)   (field multiplication)
//	s = (d*r + e) mod n     (integer arithmetic)
//
// where truncate clears high bits until r is shorter than n. Verification
// recomputes R = s*G + r*Q, which equals e*G because Q = -d*G.
package sign

import (
	"io"

	"go.uber.org/zap"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
)

// Options controls the signing loop.
type Options struct {
	// Rand is the source of the ephemeral scalars. Nil selects crypto/rand.
	Rand io.Reader

	// MaxAttempts caps the number of ephemeral scalars drawn. Zero means
	// unbounded. Under a proper random source the expected number of
	// draws is below two, so production callers leave it unset; tests
	// with scripted sources use it to fail instead of spinning.
	MaxAttempts int

	// Logger receives a debug entry for every discarded ephemeral scalar.
	Logger *zap.Logger
}

// Signature is a DSTU 4145 signature together with the digest element it
// was computed for.
type Signature struct {
	R, S *scalar.Scalar
	Hash *field.Element
}

// HashElement decodes a digest into a field element. The digest is read
// little-endian and reduced modulo the field polynomial. A digest that
// reduces to zero, including a nonzero multiple of the polynomial, is
// rejected with ErrZeroHash.
func HashElement(curve *group.Curve, digest []byte) (*field.Element, error) {
	h := field.FromLE(curve.Modulus(), digest).Reduce()
	if h.IsZero() {
		return nil, errs.New(errs.ErrZeroHash, "sign: digest is zero")
	}
	return h, nil
}

// Sign signs digest with the private scalar d.
func Sign(curve *group.Curve, d *scalar.Scalar, digest []byte, opts *Options) (*Signature, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	order := curve.Order()
	if d == nil || d.IsZero() || !d.Order().Equal(order) {
		return nil, errs.New(errs.ErrInvalidPrivateKey, "sign: private scalar is zero or bound to another curve")
	}
	h, err := HashElement(curve, digest)
	if err != nil {
		return nil, err
	}

	sampler := scalar.NewSampler(opts.Rand, opts.MaxAttempts)
	for attempt := 0; opts.MaxAttempts == 0 || attempt < opts.MaxAttempts; attempt++ {
		e, err := sampler.Sample(order)
		if err != nil {
			return nil, err
		}

		eg := curve.ScalarBaseMult(e.Int())
		if eg.IsInfinity() || eg.X().IsZero() {
			logger.Debug("resampling ephemeral scalar", zap.String("reason", "zero x"), zap.Int("attempt", attempt))
			continue
		}

		rf := curve.Truncate(h.ModMul(eg.X()))
		if rf.IsZero() {
			logger.Debug("resampling ephemeral scalar", zap.String("reason", "zero r"), zap.Int("attempt", attempt))
			continue
		}

		r := order.New(rf.Big())
		s := d.Mul(r).Add(e)
		if s.IsZero() {
			logger.Debug("resampling ephemeral scalar", zap.String("reason", "zero s"), zap.Int("attempt", attempt))
			continue
		}
		return &Signature{R: r, S: s, Hash: h}, nil
	}

	return nil, errs.New(errs.ErrAttemptsExhausted, "sign: no usable ephemeral scalar within the attempt limit")
}

// Verify reports whether sig is a valid signature of digest under the
// public point q.
func Verify(curve *group.Curve, q *group.Point, digest []byte, sig *Signature) bool {
	if sig == nil || sig.R == nil || sig.S == nil || q == nil || q.IsInfinity() {
		return false
	}
	if !curve.Contains(q) {
		return false
	}
	order := curve.Order()
	if !sig.R.Order().Equal(order) || !sig.S.Order().Equal(order) {
		return false
	}
	if sig.R.IsZero() || sig.S.IsZero() {
		return false
	}
	h, err := HashElement(curve, digest)
	if err != nil {
		return false
	}

	r := sig.R.Int()
	if r.BitLen() >= order.BitLen() {
		return false
	}

	eg := curve.ScalarBaseMult(sig.S.Int()).Add(q.Mul(r))
	if eg.IsInfinity() {
		return false
	}
	got := curve.Truncate(h.ModMul(eg.X()))
	return got.Big().Cmp(r) == 0
}
