package dstu4145

import (
	"encoding/hex"
	"math/big"
	"math/bits"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/rafaelescrich/go-dstu4145/ecdh"
	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
	"github.com/rafaelescrich/go-dstu4145/sign"
)

// PrivateKeyFormat selects the encoding of a private scalar.
type PrivateKeyFormat int

const (
	// PrivHex is big-endian hexadecimal text.
	PrivHex PrivateKeyFormat = iota

	// PrivBigEndian is a big-endian byte string.
	PrivBigEndian

	// PrivLittleEndian is a little-endian byte string, the order used by
	// key stores.
	PrivLittleEndian

	// PrivBitInverted is a little-endian byte string with the bits of every
	// byte reversed, as found in key store attributes.
	PrivBitInverted
)

// PublicKeyFormat selects the encoding of a compressed public key.
type PublicKeyFormat int

const (
	// PubRaw is the compressed point as ceil(m/8) little-endian bytes.
	PubRaw PublicKeyFormat = iota

	// PubOctetString is PubRaw wrapped in a DER OCTET STRING header, the
	// form of the subjectPublicKey bit string of certificates.
	PubOctetString

	// PubHex is the compressed point as big-endian hexadecimal text.
	PubHex
)

// PrivateKey is a DSTU 4145 private key: a scalar d in [1, n) bound to its
// curve. The public key is Q = -d*G.
type PrivateKey struct {
	ctx   *Context
	curve *group.Curve
	d     *scalar.Scalar
	sbox  []byte

	pubOnce sync.Once
	pub     *PublicKey
}

// PublicKey is a DSTU 4145 public key.
type PublicKey struct {
	curve *group.Curve
	point *group.Point

	// encoded is the little-endian compressed point the key was decoded
	// from, if any.
	encoded []byte
}

// KeyStruct is the structured form of a private key as stored in key
// containers. D is little-endian. SBox is the compressed GOST 28147-89
// substitution box attached to the key, kept opaque.
type KeyStruct struct {
	Curve group.CurveStruct
	D     []byte
	SBox  []byte
}

func (ctx *Context) newPrivateKey(curve *group.Curve, d *scalar.Scalar, q *group.Point) *PrivateKey {
	priv := &PrivateKey{ctx: ctx, curve: curve, d: d}
	if q != nil {
		priv.pubOnce.Do(func() {
			priv.pub = &PublicKey{curve: curve, point: q}
		})
	}
	return priv
}

// NewPrivateKey binds the scalar d to curve. d must lie in [1, n).
func (ctx *Context) NewPrivateKey(curve *group.Curve, d *big.Int) (*PrivateKey, error) {
	if d == nil {
		return nil, errs.New(errs.ErrInvalidPrivateKey, "dstu4145: nil private scalar")
	}
	k, ok := curve.Order().Check(d)
	if !ok {
		return nil, errs.New(errs.ErrInvalidPrivateKey, "dstu4145: private scalar is not in [1, n)")
	}
	return ctx.newPrivateKey(curve, k, nil), nil
}

// PrivateKeyFromBytes decodes a private key in the given format.
func (ctx *Context) PrivateKeyFromBytes(curve *group.Curve, b []byte, f PrivateKeyFormat) (*PrivateKey, error) {
	var d *big.Int
	switch f {
	case PrivHex:
		s := strings.TrimPrefix(strings.TrimSpace(string(b)), "0x")
		v, ok := new(big.Int).SetString(s, 16)
		if !ok {
			return nil, errs.New(errs.ErrInvalidPrivateKey, "dstu4145: private key is not hexadecimal")
		}
		d = v
	case PrivBigEndian:
		d = new(big.Int).SetBytes(b)
	case PrivLittleEndian:
		d = new(big.Int).SetBytes(reversed(b))
	case PrivBitInverted:
		d = field.FromBitInverted(curve.Modulus(), b).Big()
	default:
		return nil, errs.New(errs.ErrUnknownFormat, "dstu4145: unknown private key format")
	}
	return ctx.NewPrivateKey(curve, d)
}

// PrivateKeyFromStruct decodes the structured form of a private key. Curve
// parameters that match a standard curve resolve to the shared instance of
// the context registry.
func (ctx *Context) PrivateKeyFromStruct(ks KeyStruct) (*PrivateKey, error) {
	curve, err := group.CurveFromStruct(ks.Curve, group.LittleEndian, group.WithLogger(ctx.logger))
	if err != nil {
		return nil, err
	}
	if id := curve.Name(); id != "" {
		if std, err := ctx.Curve(id); err == nil {
			curve = std
		}
	}
	priv, err := ctx.PrivateKeyFromBytes(curve, ks.D, PrivLittleEndian)
	if err != nil {
		return nil, err
	}
	priv.sbox = append([]byte(nil), ks.SBox...)
	return priv, nil
}

// Curve returns the curve the key is bound to.
func (priv *PrivateKey) Curve() *group.Curve {
	return priv.curve
}

// Scalar returns the private scalar.
func (priv *PrivateKey) Scalar() *scalar.Scalar {
	return priv.d
}

// D returns a copy of the private scalar as an integer.
func (priv *PrivateKey) D() *big.Int {
	return priv.d.Int()
}

// SBox returns the substitution box loaded with the key, if any.
func (priv *PrivateKey) SBox() []byte {
	return append([]byte(nil), priv.sbox...)
}

// Bytes encodes the private scalar.
func (priv *PrivateKey) Bytes(f PrivateKeyFormat) ([]byte, error) {
	switch f {
	case PrivHex:
		return []byte(hex.EncodeToString(priv.d.Bytes())), nil
	case PrivBigEndian:
		return priv.d.Bytes(), nil
	case PrivLittleEndian:
		return priv.d.LEBytes(), nil
	case PrivBitInverted:
		b := priv.d.LEBytes()
		for i, c := range b {
			b[i] = bits.Reverse8(c)
		}
		return b, nil
	}
	return nil, errs.New(errs.ErrUnknownFormat, "dstu4145: unknown private key format")
}

// Struct returns the structured form of the key.
func (priv *PrivateKey) Struct() KeyStruct {
	return KeyStruct{
		Curve: priv.curve.Struct(group.LittleEndian),
		D:     priv.d.LEBytes(),
		SBox:  priv.SBox(),
	}
}

// Public returns the public key -d*G. It is computed once.
func (priv *PrivateKey) Public() *PublicKey {
	priv.pubOnce.Do(func() {
		priv.pub = &PublicKey{
			curve: priv.curve,
			point: priv.curve.ScalarBaseMult(priv.d.Int()).Negate(),
		}
	})
	return priv.pub
}

// PublicCompressed returns the compressed public point.
func (priv *PrivateKey) PublicCompressed() *field.Element {
	return priv.Public().point.Compress()
}

// MatchPublicKey reports whether pub is the public key of priv. pub may be
// a *PublicKey, a *group.Point, a compressed point as *field.Element, or a
// compressed point as little-endian bytes.
//
// Byte slices are read little-endian, the layout of PublicKey.Raw and of
// keys carried in certificates. Implementations that pass the compressed
// point as big-endian bytes do not interoperate here; reverse such input
// first or pass a *field.Element built with field.FromBytes.
func (priv *PrivateKey) MatchPublicKey(pub interface{}) (bool, error) {
	own := priv.Public()
	switch v := pub.(type) {
	case *PublicKey:
		return v != nil && v.Equal(own), nil
	case *group.Point:
		return v != nil && v.Equal(own.point), nil
	case *field.Element:
		return v != nil && v.Reduce().Equal(own.point.Compress()), nil
	case []byte:
		return priv.MatchCompressed(v), nil
	}
	return false, errs.New(errs.ErrUnknownFormat, "dstu4145: unsupported public key form")
}

// MatchCompressed reports whether b is the little-endian compressed public
// key of priv.
func (priv *PrivateKey) MatchCompressed(b []byte) bool {
	if len(b) != priv.curve.Modulus().ByteLen() {
		return false
	}
	return field.FromLE(priv.curve.Modulus(), b).Equal(priv.PublicCompressed())
}

// Sign signs a digest. The digest is interpreted little-endian, the way
// GOST 34.311 hashes are carried in certificates.
func (priv *PrivateKey) Sign(digest []byte) (*sign.Signature, error) {
	return sign.Sign(priv.curve, priv.d, digest, priv.ctx.signOptions())
}

// SignBytes signs a digest and encodes the signature in format f.
func (priv *PrivateKey) SignBytes(digest []byte, f sign.Format) ([]byte, error) {
	sig, err := priv.Sign(digest)
	if err != nil {
		return nil, err
	}
	return sig.Bytes(f)
}

// Agree returns the raw shared secret with peer. See ecdh.Peer for the
// accepted peer forms; *PublicKey is one of them.
func (priv *PrivateKey) Agree(peer interface{}) ([]byte, error) {
	return ecdh.Derive(priv.curve, priv.d, peer)
}

// SharedKey derives a key encryption key shared with peer.
func (priv *PrivateKey) SharedKey(peer interface{}, ukm []byte, kdf ecdh.KDF) ([]byte, error) {
	return ecdh.SharedKey(priv.curve, priv.d, peer, ukm, kdf, nil)
}

// Encrypt seals data for peer in a key transport envelope.
func (priv *PrivateKey) Encrypt(peer interface{}, data []byte, algo *ecdh.Algorithms) (*ecdh.Envelope, error) {
	return ecdh.Encrypt(priv.ctx.rand, priv.curve, priv.d, peer, data, algo)
}

// Decrypt opens an envelope sent by peer.
func (priv *PrivateKey) Decrypt(peer interface{}, env *ecdh.Envelope, algo *ecdh.Algorithms) ([]byte, error) {
	return ecdh.Decrypt(priv.curve, priv.d, peer, env, algo)
}

// Clear zeroes the private scalar.
func (priv *PrivateKey) Clear() {
	priv.d.Clear()
}

// NewPublicKey wraps a point as a public key after validating it.
func NewPublicKey(p *group.Point) (*PublicKey, error) {
	if p == nil {
		return nil, errs.New(errs.ErrInvalidPublicKey, "dstu4145: nil public point")
	}
	pub := &PublicKey{curve: p.Curve(), point: p}
	if err := pub.Validate(); err != nil {
		return nil, err
	}
	return pub, nil
}

// PublicKeyFromBytes decodes a compressed public key in the given format.
func PublicKeyFromBytes(curve *group.Curve, b []byte, f PublicKeyFormat) (*PublicKey, error) {
	size := curve.Modulus().ByteLen()

	var (
		compressed *field.Element
		encoded    []byte
	)
	switch f {
	case PubRaw:
		if len(b) != size {
			return nil, errs.New(errs.ErrInvalidPublicKey, "dstu4145: public key has the wrong length")
		}
		encoded = b
	case PubOctetString:
		if len(b) != size+2 || b[0] != octetStringTag || int(b[1]) != size {
			return nil, errs.New(errs.ErrInvalidPublicKey, "dstu4145: malformed public key octet string")
		}
		encoded = b[2:]
	case PubHex:
		e, err := field.FromHex(curve.Modulus(), string(b))
		if err != nil {
			return nil, errs.Error{
				Err:         errs.ErrInvalidPublicKey,
				Description: errors.WithMessage(err, "dstu4145: public key").Error(),
			}
		}
		if e.BitLen() > curve.Degree() {
			return nil, errs.New(errs.ErrInvalidPublicKey, "dstu4145: public key is wider than the field")
		}
		compressed = e
	default:
		return nil, errs.New(errs.ErrUnknownFormat, "dstu4145: unknown public key format")
	}
	if encoded != nil {
		compressed = field.FromLE(curve.Modulus(), encoded)
		if compressed.BitLen() > curve.Degree() {
			return nil, errs.New(errs.ErrInvalidPublicKey, "dstu4145: public key is wider than the field")
		}
	}

	p, err := curve.DecodePoint(compressed)
	if err != nil {
		return nil, errs.Error{
			Err:         errs.ErrInvalidPublicKey,
			Description: errors.WithMessage(err, "dstu4145: decoding public key").Error(),
		}
	}
	pub, err := NewPublicKey(p)
	if err != nil {
		return nil, err
	}
	if encoded != nil {
		pub.encoded = append([]byte(nil), encoded...)
	}
	return pub, nil
}

const octetStringTag = 0x04

// Curve returns the curve the key is bound to.
func (pub *PublicKey) Curve() *group.Curve {
	return pub.curve
}

// Point returns the public point. It makes *PublicKey usable as a key
// agreement peer.
func (pub *PublicKey) Point() *group.Point {
	return pub.point
}

// Compressed returns the compressed point.
func (pub *PublicKey) Compressed() *field.Element {
	return pub.point.Compress()
}

// Raw returns the compressed point as little-endian bytes. Keys decoded
// from bytes return a copy of what they were decoded from.
func (pub *PublicKey) Raw() []byte {
	if pub.encoded != nil {
		return append([]byte(nil), pub.encoded...)
	}
	return pub.point.CompressedLE()
}

// OctetString returns Raw wrapped in an OCTET STRING header.
func (pub *PublicKey) OctetString() []byte {
	raw := pub.Raw()
	return append([]byte{octetStringTag, byte(len(raw))}, raw...)
}

// Bytes encodes the key in format f.
func (pub *PublicKey) Bytes(f PublicKeyFormat) ([]byte, error) {
	switch f {
	case PubRaw:
		return pub.Raw(), nil
	case PubOctetString:
		return pub.OctetString(), nil
	case PubHex:
		return []byte(pub.Compressed().Hex()), nil
	}
	return nil, errs.New(errs.ErrUnknownFormat, "dstu4145: unknown public key format")
}

// Equal reports whether both keys hold the same point of the same curve.
func (pub *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && pub.curve.Equal(other.curve) && pub.point.Equal(other.point)
}

// Validate checks that the key is a point of order n on its curve.
func (pub *PublicKey) Validate() error {
	if pub.point.IsInfinity() {
		return errs.New(errs.ErrInvalidPublicKey, "dstu4145: public key is the point at infinity")
	}
	if !pub.curve.Contains(pub.point) {
		return errs.New(errs.ErrPointNotOnCurve, "dstu4145: public key is not on the curve")
	}
	if !pub.point.Mul(pub.curve.Order().Int()).IsInfinity() {
		return errs.New(errs.ErrInvalidPublicKey, "dstu4145: public key is outside the prime order subgroup")
	}
	return nil
}

// Verify reports whether sig is a valid signature of digest.
func (pub *PublicKey) Verify(digest []byte, sig *sign.Signature) bool {
	return sign.Verify(pub.curve, pub.point, digest, sig)
}

// VerifyBytes decodes a signature in format f and verifies it.
func (pub *PublicKey) VerifyBytes(digest, b []byte, f sign.Format) bool {
	sig, err := sign.Parse(pub.curve, b, f)
	if err != nil {
		return false
	}
	return pub.Verify(digest, sig)
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
