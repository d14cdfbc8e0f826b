package ecdh

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
	"github.com/rafaelescrich/go-dstu4145/sharedinfo"
)

var testRegistry = group.NewRegistry()

func mustCurve(t testing.TB, id string) *group.Curve {
	t.Helper()
	c, err := testRegistry.Get(id)
	require.NoError(t, err)
	return c
}

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func scalarHex(t testing.TB, c *group.Curve, s string) *scalar.Scalar {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 16)
	require.True(t, ok)
	return c.Order().New(v)
}

type keyPair struct {
	d *scalar.Scalar
	q *group.Point
}

func newKeyPair(t testing.TB, c *group.Curve) keyPair {
	t.Helper()
	d, err := scalar.NewSampler(nil, 0).Sample(c.Order())
	require.NoError(t, err)
	return keyPair{d: d, q: c.ScalarBaseMult(d.Int()).Negate()}
}

func identityKDF(input []byte) ([]byte, error) {
	return append([]byte(nil), input...), nil
}

// pubSource wraps a point the way key types expose it.
type pubSource struct{ p *group.Point }

func (s pubSource) Point() *group.Point { return s.p }

func TestDerivePB257Vector(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_257)
	d1 := scalarHex(t, c, "1F2E3D4C5B6A79880123456789ABCDEF0011223344556677889900AABBCCDDEE")
	d2 := scalarHex(t, c, "0F1E2D3C4B5A69788796A5B4C3D2E1F00112233445566778899AABBCCDDEEFF0")
	q1 := mustHex(t, "a60336300b85ac9709e902a0fc4d2035ea33ebe47981e9d681af2659df804a0400")
	q2 := mustHex(t, "df9ac755ef3663c85b3a9a313e994e7ee0add27ca70ce3c095b3b1e36ad4b69e00")
	want := "0139fd6e5c3a97a2bfaff123aa68d124bd668b2443be1d4e8472d95a3de722cf33"

	assert.Equal(t, q1, c.ScalarBaseMult(d1.Int()).Negate().CompressedLE())
	assert.Equal(t, q2, c.ScalarBaseMult(d2.Int()).Negate().CompressedLE())

	zz1, err := Derive(c, d1, q2)
	require.NoError(t, err)
	zz2, err := Derive(c, d2, q1)
	require.NoError(t, err)

	assert.Equal(t, want, hex.EncodeToString(zz1))
	assert.Equal(t, zz1, zz2)
	assert.Len(t, zz1, c.Modulus().ByteLen())
}

func TestDeriveSymmetry(t *testing.T) {
	for _, id := range []string{group.DSTU_PB_163, group.DSTU_PB_173, group.DSTU_PB_233, group.DSTU_PB_431} {
		c := mustCurve(t, id)
		alice, bob := newKeyPair(t, c), newKeyPair(t, c)

		peers := []interface{}{
			bob.q,
			pubSource{bob.q},
			bob.q.Compress(),
			bob.q.CompressedLE(),
		}
		zzBob, err := Derive(c, bob.d, alice.q)
		require.NoError(t, err, id)

		for _, peer := range peers {
			zz, err := Derive(c, alice.d, peer)
			require.NoError(t, err, "%s: %T", id, peer)
			assert.Equal(t, zzBob, zz, "%s: %T", id, peer)
		}
	}
}

func TestDerivePeerErrors(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_257)
	alice := newKeyPair(t, c)

	tests := []struct {
		name string
		peer interface{}
		err  error
	}{
		{"integer", 42, errs.ErrUnknownPeerFormat},
		{"string", "deadbeef", errs.ErrUnknownPeerFormat},
		{"short bytes", []byte{1, 2, 3}, errs.ErrInvalidPublicKey},
		{"foreign field element", field.One(mustCurve(t, group.DSTU_PB_163).Modulus()), errs.ErrInvalidPublicKey},
		{"foreign point", mustCurve(t, group.DSTU_PB_163).Base(), errs.ErrInvalidPublicKey},
	}
	for _, test := range tests {
		_, err := Derive(c, alice.d, test.peer)
		assert.True(t, errors.Is(err, test.err), "%s: got %v", test.name, err)
	}

	_, err := Derive(c, alice.d, 42)
	var kind errs.ErrorKind
	require.True(t, errors.As(err, &kind))
	assert.Equal(t, errs.ClassInput, kind.Class())
}

func TestDerivePeerHighBits(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_163)
	alice, bob := newKeyPair(t, c), newKeyPair(t, c)
	raw := bob.q.CompressedLE()

	for bit := c.Degree(); bit < len(raw)*8; bit++ {
		tampered := append([]byte(nil), raw...)
		tampered[bit/8] |= 1 << uint(bit%8)
		_, err := Derive(c, alice.d, tampered)
		assert.True(t, errors.Is(err, errs.ErrInvalidPublicKey), "bit %d: got %v", bit, err)
	}

	_, err := Derive(c, alice.d, raw)
	assert.NoError(t, err)
}

func TestDeriveSmallOrderPeer(t *testing.T) {
	// (0, sqrt(b)) has order two and is absorbed by the cofactor.
	c := mustCurve(t, group.DSTU_PB_257)
	alice := newKeyPair(t, c)
	small, err := c.Expand(field.Zero(c.Modulus()))
	require.NoError(t, err)

	_, err = Derive(c, alice.d, small)
	assert.True(t, errors.Is(err, errs.ErrInvalidPublicKey))
}

func TestDeriveInvalidPrivateScalar(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_257)
	bob := newKeyPair(t, c)

	_, err := Derive(c, c.Order().Zero(), bob.q)
	assert.True(t, errors.Is(err, errs.ErrInvalidPrivateKey))
}

func TestKEKInput(t *testing.T) {
	salt := []byte{0xAA, 0xBB}

	assert.Equal(t,
		[]byte{0x00, 0x05, 0x00, 0x00, 0x00, 0x01, 0xAA, 0xBB},
		KEKInput([]byte{0x00, 0x00, 0x05}, salt),
		"only one leading zero byte is dropped")
	assert.Equal(t,
		[]byte{0x07, 0x05, 0x00, 0x00, 0x00, 0x01, 0xAA, 0xBB},
		KEKInput([]byte{0x07, 0x05}, salt))
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01}, KEKInput(nil, nil))
}

func TestSharedKeyLayout(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_257)
	alice, bob := newKeyPair(t, c), newKeyPair(t, c)
	ukm := bytes.Repeat([]byte{0x5A}, 32)

	input, err := SharedKey(c, alice.d, bob.q, ukm, identityKDF, nil)
	require.NoError(t, err)

	zz, err := Derive(c, alice.d, bob.q)
	require.NoError(t, err)
	salt, err := sharedinfo.Encode(ukm)
	require.NoError(t, err)
	assert.Equal(t, KEKInput(zz, salt), input)
	assert.True(t, bytes.HasSuffix(input, salt))

	custom, err := SharedKey(c, alice.d, bob.q, ukm, identityKDF, func(ukm []byte) ([]byte, error) {
		return []byte{0xCA, 0xFE}, nil
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(custom, []byte{0x00, 0x00, 0x00, 0x01, 0xCA, 0xFE}))

	_, err = SharedKey(c, alice.d, bob.q, ukm, nil, nil)
	assert.True(t, errors.Is(err, errs.ErrIncompleteParams))
}

func TestSharedKeyHashKDF(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_163)
	alice, bob := newKeyPair(t, c), newKeyPair(t, c)

	var blake KDF = func(input []byte) ([]byte, error) {
		sum := blake2b.Sum256(input)
		return sum[:], nil
	}

	for name, kdf := range map[string]KDF{
		"sha3-256":    HashKDF(sha3.New256),
		"blake2b-256": blake,
	} {
		k1, err := SharedKey(c, alice.d, bob.q, nil, kdf, nil)
		require.NoError(t, err, name)
		k2, err := SharedKey(c, bob.d, alice.q, nil, kdf, nil)
		require.NoError(t, err, name)
		assert.Equal(t, k1, k2, name)
		assert.Len(t, k1, 32, name)
	}
}

// xorAlgorithms is a toy stand-in for GOST 28147-89 wrap and CFB mode.
func xorAlgorithms() *Algorithms {
	xor := func(data, key []byte) []byte {
		out := make([]byte, len(data))
		for i := range data {
			out[i] = data[i] ^ key[i%len(key)]
		}
		return out
	}
	return &Algorithms{
		KDF: HashKDF(sha3.New256),
		Wrap: func(kek, cek, iv []byte) ([]byte, error) {
			return append(xor(cek, kek), iv...), nil
		},
		Unwrap: func(kek, wrapped []byte) ([]byte, error) {
			return xor(wrapped[:CEKSize], kek), nil
		},
		Encrypt: func(data, cek, iv []byte) ([]byte, error) {
			return xor(data, append(append([]byte(nil), cek...), iv...)), nil
		},
		Decrypt: func(data, cek, iv []byte) ([]byte, error) {
			return xor(data, append(append([]byte(nil), cek...), iv...)), nil
		},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_257)
	sender, recipient := newKeyPair(t, c), newKeyPair(t, c)
	algo := xorAlgorithms()
	message := []byte("key transport over a DSTU 4145 shared secret")

	env, err := Encrypt(nil, c, sender.d, recipient.q, message, algo)
	require.NoError(t, err)
	assert.Len(t, env.UKM, UKMSize)
	assert.Len(t, env.IV, IVSize)
	assert.NotEqual(t, message, env.Data)

	got, err := Decrypt(c, recipient.d, sender.q, env, algo)
	require.NoError(t, err)
	assert.Equal(t, message, got)

	stranger := newKeyPair(t, c)
	other, err := Decrypt(c, stranger.d, sender.q, env, algo)
	require.NoError(t, err)
	assert.NotEqual(t, message, other)
}

func TestEnvelopeErrors(t *testing.T) {
	c := mustCurve(t, group.DSTU_PB_163)
	alice, bob := newKeyPair(t, c), newKeyPair(t, c)

	_, err := Encrypt(nil, c, alice.d, bob.q, []byte("x"), &Algorithms{})
	assert.True(t, errors.Is(err, errs.ErrIncompleteParams))

	_, err = Encrypt(bytes.NewReader([]byte{1, 2, 3}), c, alice.d, bob.q, []byte("x"), xorAlgorithms())
	assert.True(t, errors.Is(err, errs.ErrRandomSource))

	_, err = Decrypt(c, alice.d, bob.q, nil, xorAlgorithms())
	assert.True(t, errors.Is(err, errs.ErrIncompleteParams))

	failing := xorAlgorithms()
	failing.Unwrap = func(kek, wrapped []byte) ([]byte, error) {
		return nil, errors.New("integrity check failed")
	}
	env, err := Encrypt(nil, c, alice.d, bob.q, []byte("x"), xorAlgorithms())
	require.NoError(t, err)
	_, err = Decrypt(c, bob.d, alice.q, env, failing)
	assert.EqualError(t, err, "ecdh: unwrapping content key: integrity check failed")
}

func BenchmarkSharedKey(b *testing.B) {
	c := mustCurve(b, group.DSTU_PB_257)
	alice, bob := newKeyPair(b, c), newKeyPair(b, c)
	kdf := HashKDF(sha3.New256)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := SharedKey(c, alice.d, bob.q, nil, kdf, nil); err != nil {
			b.Fatal(err)
		}
	}
}
