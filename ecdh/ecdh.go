// Package ecdh implements the cofactor Diffie-Hellman key agreement of
// DSTU 4145 together with the key encryption key derivation input used by
// the Ukrainian key transport (DSTSZI) scheme.
package ecdh

import (
	"hash"
	"math/big"

	"github.com/pkg/errors"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
	"github.com/rafaelescrich/go-dstu4145/sharedinfo"
)

// counter is the fixed big-endian KDF counter appended to the shared secret.
var counter = []byte{0x00, 0x00, 0x00, 0x01}

// KDF turns the key derivation input into a key encryption key.
type KDF func(input []byte) ([]byte, error)

// SharedInfoEncoder returns the salt structure for the optional user keying
// material.
type SharedInfoEncoder func(ukm []byte) ([]byte, error)

// HashKDF returns a KDF that hashes its input once with h.
func HashKDF(h func() hash.Hash) KDF {
	return func(input []byte) ([]byte, error) {
		d := h()
		if _, err := d.Write(input); err != nil {
			return nil, errors.Wrap(err, "ecdh: hashing key derivation input")
		}
		return d.Sum(nil), nil
	}
}

// PointSource is implemented by key types that carry a public point.
type PointSource interface {
	Point() *group.Point
}

// Peer resolves the peer public key of an agreement. Accepted forms are
// *group.Point, a PointSource, a compressed point as *field.Element, and a
// compressed point as little-endian bytes. Other values are rejected with
// ErrUnknownPeerFormat.
func Peer(curve *group.Curve, peer interface{}) (*group.Point, error) {
	switch v := peer.(type) {
	case *group.Point:
		if v == nil || !curve.Contains(v) {
			return nil, errs.New(errs.ErrInvalidPublicKey, "ecdh: peer point is not on the curve")
		}
		return v, nil
	case PointSource:
		return Peer(curve, v.Point())
	case *field.Element:
		if v == nil || !v.Modulus().Equal(curve.Modulus()) {
			return nil, errs.New(errs.ErrInvalidPublicKey, "ecdh: compressed peer key from another field")
		}
		return decode(curve, v)
	case []byte:
		if len(v) != curve.Modulus().ByteLen() {
			return nil, errs.New(errs.ErrInvalidPublicKey, "ecdh: compressed peer key has the wrong length")
		}
		compressed := field.FromLE(curve.Modulus(), v)
		if compressed.BitLen() > curve.Degree() {
			return nil, errs.New(errs.ErrInvalidPublicKey, "ecdh: compressed peer key is wider than the field")
		}
		return decode(curve, compressed)
	}
	return nil, errs.New(errs.ErrUnknownPeerFormat, "ecdh: unsupported peer public key form")
}

func decode(curve *group.Curve, compressed *field.Element) (*group.Point, error) {
	p, err := curve.DecodePoint(compressed)
	if err != nil {
		return nil, errs.Error{
			Err:         errs.ErrInvalidPublicKey,
			Description: errors.WithMessage(err, "ecdh: decoding peer key").Error(),
		}
	}
	return p, nil
}

// Derive computes Z = Q * (d*h) and returns the x coordinate of Z as
// ceil(m/8) big-endian bytes.
func Derive(curve *group.Curve, d *scalar.Scalar, peer interface{}) ([]byte, error) {
	if d == nil || d.IsZero() || !d.Order().Equal(curve.Order()) {
		return nil, errs.New(errs.ErrInvalidPrivateKey, "ecdh: private scalar is zero or bound to another curve")
	}
	q, err := Peer(curve, peer)
	if err != nil {
		return nil, err
	}

	k := new(big.Int).Mul(d.Int(), big.NewInt(int64(curve.Cofactor())))
	z := q.Mul(k)
	if z.IsInfinity() {
		return nil, errs.New(errs.ErrInvalidPublicKey, "ecdh: peer key yields the point at infinity")
	}

	zx := z.X().Bytes()
	return zx[len(zx)-curve.Modulus().ByteLen():], nil
}

// KEKInput returns zz || 00 00 00 01 || salt, after dropping one leading
// zero byte of zz.
func KEKInput(zz, salt []byte) []byte {
	if len(zz) > 0 && zz[0] == 0 {
		zz = zz[1:]
	}
	out := make([]byte, 0, len(zz)+len(counter)+len(salt))
	out = append(out, zz...)
	out = append(out, counter...)
	return append(out, salt...)
}

// SharedKey derives the key encryption key shared with peer. A nil encoder
// selects the DER SharedInfo of the GOST 28147-89 key wrap.
func SharedKey(curve *group.Curve, d *scalar.Scalar, peer interface{}, ukm []byte, kdf KDF, enc SharedInfoEncoder) ([]byte, error) {
	if kdf == nil {
		return nil, errs.New(errs.ErrIncompleteParams, "ecdh: no key derivation function")
	}
	if enc == nil {
		enc = sharedinfo.Encode
	}

	zz, err := Derive(curve, d, peer)
	if err != nil {
		return nil, err
	}
	salt, err := enc(ukm)
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: encoding shared info")
	}
	kek, err := kdf(KEKInput(zz, salt))
	if err != nil {
		return nil, errors.WithMessage(err, "ecdh: deriving key encryption key")
	}
	return kek, nil
}
