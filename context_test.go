package dstu4145

import (
	"bytes"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rafaelescrich/go-dstu4145/group"
)

// Worked example of the standard, on the 163-bit curve with base point P.
const (
	annexD = "183F60FDF7951FF47D67193F8D073790C1C9B5A3E"
	annexE = "1025E40BD97DB012B7A1D79DE8E12932D247F61C6"
	annexH = "03A2EB95B7180166DDF73532EEB76EDAEF52247FF"
	annexR = "274EA2C0CAA014A0D80A424F59ADE7A93068D08A7"
	annexS = "2100D86957331832B8E8C230F5BD6A332B3615ACA"

	annexQx = "57DE7FDE023FF929CB6AC785CE4B79CF64ABDC2DA"
	annexQy = "3E85444324BCF06AD85ABF6AD7B5F34770532B9AA"
)

func hexInt(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 16)
	require.True(t, ok, "bad hex %q", s)
	return v
}

func mustCurve(t testing.TB, ctx *Context, id string) *group.Curve {
	t.Helper()
	c, err := ctx.Curve(id)
	require.NoError(t, err)
	return c
}

func TestContextCurves(t *testing.T) {
	ctx := NewContext()

	for _, id := range group.StandardIDs() {
		c := mustCurve(t, ctx, id)
		assert.Equal(t, id, c.ID())

		again, err := ctx.Resolve(group.ByID(id))
		require.NoError(t, err)
		assert.Same(t, c, again, id)
	}

	_, err := ctx.Curve("DSTU_PB_999")
	assert.True(t, errors.Is(err, ErrUnknownCurve))
}

func TestContextSharedRegistry(t *testing.T) {
	registry := group.NewRegistry()
	a := NewContext(WithRegistry(registry))
	b := NewContext(WithRegistry(registry))

	assert.Same(t, mustCurve(t, a, group.DSTU_PB_173), mustCurve(t, b, group.DSTU_PB_173))
	assert.Equal(t, []string{group.DSTU_PB_173}, registry.Loaded())
}

func TestGenerateKey(t *testing.T) {
	ctx := NewContext()

	for _, id := range []string{group.DSTU_PB_163, group.DSTU_PB_257, group.DSTU_PB_431} {
		c := mustCurve(t, ctx, id)
		priv, err := ctx.GenerateKey(c)
		require.NoError(t, err, id)

		d := priv.D()
		assert.Equal(t, 1, d.Sign(), id)
		assert.Equal(t, -1, d.Cmp(c.Order().Int()), id)

		pub := priv.Public()
		require.NoError(t, pub.Validate(), id)
		assert.True(t, pub.Point().Equal(c.ScalarBaseMult(d).Negate()), id)
		assert.Len(t, pub.Raw(), c.Modulus().ByteLen(), id)

		expanded, err := c.Expand(pub.Compressed())
		require.NoError(t, err)
		assert.True(t, expanded.Equal(pub.Point()), id)
	}
}

func TestGenerateKeyDeterministicSource(t *testing.T) {
	c := mustCurve(t, NewContext(), group.DSTU_EXAMPLE_163)
	e := hexInt(t, annexE).FillBytes(make([]byte, c.Order().ByteLen()))

	ctx := NewContext(WithRand(bytes.NewReader(e)))
	priv, err := ctx.GenerateKey(mustCurve(t, ctx, group.DSTU_EXAMPLE_163))
	require.NoError(t, err)
	assert.Equal(t, 0, priv.D().Cmp(hexInt(t, annexE)))
}

func TestGenerateKeyErrors(t *testing.T) {
	c := mustCurve(t, NewContext(), group.DSTU_PB_163)

	ctx := NewContext(WithRand(bytes.NewReader(make([]byte, 1024))), WithMaxAttempts(2))
	_, err := ctx.GenerateKey(c)
	assert.True(t, errors.Is(err, ErrAttemptsExhausted))

	ctx = NewContext(WithRand(bytes.NewReader(nil)))
	_, err = ctx.GenerateKey(c)
	assert.True(t, errors.Is(err, ErrRandomSource))
}

func TestContextLogsKeyGeneration(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctx := NewContext(WithLogger(zap.New(core)))

	_, err := ctx.GenerateKey(mustCurve(t, ctx, group.DSTU_PB_167))
	require.NoError(t, err)

	entries := logs.FilterMessage("generated key").All()
	require.Len(t, entries, 1)
	assert.Equal(t, group.DSTU_PB_167, entries[0].ContextMap()["curve"])
}

func TestContextSignAnnexExample(t *testing.T) {
	c := mustCurve(t, NewContext(), group.DSTU_EXAMPLE_163)
	e := hexInt(t, annexE).FillBytes(make([]byte, c.Order().ByteLen()))
	ctx := NewContext(WithRand(bytes.NewReader(e)))

	priv, err := ctx.NewPrivateKey(c, hexInt(t, annexD))
	require.NoError(t, err)

	q, err := c.NewPoint(hexInt(t, annexQx), hexInt(t, annexQy))
	require.NoError(t, err)
	pub, err := NewPublicKey(q)
	require.NoError(t, err)
	assert.True(t, pub.Equal(priv.Public()))

	digest := reversed(hexInt(t, annexH).FillBytes(make([]byte, 21)))
	sig, err := priv.Sign(digest)
	require.NoError(t, err)
	assert.Equal(t, 0, sig.R.Int().Cmp(hexInt(t, annexR)))
	assert.Equal(t, 0, sig.S.Int().Cmp(hexInt(t, annexS)))
	assert.True(t, pub.Verify(digest, sig))
}

func TestContextConcurrentKeys(t *testing.T) {
	ctx := NewContext()
	c := mustCurve(t, ctx, group.DSTU_PB_233)
	priv, err := ctx.GenerateKey(c)
	require.NoError(t, err)
	loaded, err := ctx.NewPrivateKey(c, priv.D())
	require.NoError(t, err)

	var wg sync.WaitGroup
	pubs := make([]*PublicKey, 8)
	for i := range pubs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pubs[i] = loaded.Public()
		}(i)
	}
	wg.Wait()

	for _, pub := range pubs {
		assert.Same(t, pubs[0], pub)
		assert.True(t, pub.Equal(priv.Public()))
	}
}

func BenchmarkGenerateKey(b *testing.B) {
	ctx := NewContext()
	c := mustCurve(b, ctx, group.DSTU_PB_257)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ctx.GenerateKey(c); err != nil {
			b.Fatal(err)
		}
	}
}
