package group

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/field"
	"github.com/rafaelescrich/go-dstu4145/scalar"
)

// DefaultExpandCacheSize bounds the number of decompressed points a curve
// remembers. Key and certificate loading touch few distinct points.
const DefaultExpandCacheSize = 1024

// Curve is an immutable, validated curve with its base point precomputation.
// A Curve is safe for concurrent use.
type Curve struct {
	params   Params
	mod      *field.Modulus
	a, b     *field.Element
	order    *scalar.Order
	cofactor int
	base     *Point

	window    int
	baseTable []*Point
	expanded  *lru.Cache

	logger *zap.Logger
}

type curveConfig struct {
	logger    *zap.Logger
	cacheSize int
}

// CurveOption configures NewCurve.
type CurveOption func(*curveConfig)

// WithLogger sets the logger used during construction.
func WithLogger(logger *zap.Logger) CurveOption {
	return func(c *curveConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithExpandCacheSize sets the capacity of the point expansion cache.
func WithExpandCacheSize(n int) CurveOption {
	return func(c *curveConfig) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// NewCurve validates p and builds a Curve. The base point must lie on the
// curve and have order p.Order.
func NewCurve(p Params, opts ...CurveOption) (*Curve, error) {
	cfg := curveConfig{logger: zap.NewNop(), cacheSize: DefaultExpandCacheSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	p = p.clone()

	mod, err := field.NewModulus(p.M, p.KS...)
	if err != nil {
		return nil, err
	}
	order, err := scalar.NewOrder(p.Order)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(cfg.cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "group: creating expansion cache")
	}

	c := &Curve{
		params:   p,
		mod:      mod,
		a:        field.FromBig(mod, new(big.Int).SetUint64(uint64(p.A))),
		b:        field.FromBig(mod, p.B).Reduce(),
		order:    order,
		cofactor: p.cofactor(),
		window:   windowSize(p.M),
		expanded: cache,
		logger:   cfg.logger,
	}

	if p.BaseCompressed != nil {
		c.base, err = c.Expand(field.FromBig(mod, p.BaseCompressed))
		if err != nil {
			return nil, errors.WithMessage(err, "group: expanding base point")
		}
	} else {
		c.base = c.point(field.FromBig(mod, p.BaseX).Reduce(), field.FromBig(mod, p.BaseY).Reduce())
	}

	if !c.Contains(c.base) {
		return nil, errs.New(errs.ErrInvalidParams, "group: base point is not on the curve")
	}
	if !c.base.mulNaive(p.Order).IsInfinity() {
		return nil, errs.New(errs.ErrInvalidParams, "group: base point order mismatch")
	}

	c.baseTable = c.base.oddMultiples(c.window)
	c.expanded.Add(c.base.Compress().Hex(), c.base)

	c.logger.Debug("curve constructed",
		zap.String("id", p.ID),
		zap.Int("m", p.M),
		zap.Ints("ks", mod.Exponents()),
		zap.Int("window", c.window),
	)
	return c, nil
}

// CurveFromStruct builds an ad-hoc curve from its structured form.
func CurveFromStruct(s CurveStruct, order ByteOrder, opts ...CurveOption) (*Curve, error) {
	if s.B == nil || s.Base == nil {
		return nil, errs.New(errs.ErrIncompleteParams, "group: curve struct without b or base point")
	}
	if len(s.KS) != 1 && len(s.KS) != 3 {
		return nil, errs.New(errs.ErrInvalidParams, "group: basis must be a trinomial or a pentanomial")
	}
	decode := func(b []byte) *big.Int {
		if order == LittleEndian {
			b = reversed(b)
		}
		return new(big.Int).SetBytes(b)
	}
	return NewCurve(Params{
		M:              s.M,
		KS:             s.KS,
		A:              s.A,
		B:              decode(s.B),
		Order:          s.Order,
		BaseCompressed: decode(s.Base),
	}, opts...)
}

// Struct returns the structured form of the curve.
func (c *Curve) Struct(order ByteOrder) CurveStruct {
	encode := func(e *field.Element) []byte {
		if order == LittleEndian {
			return e.LEBytes()
		}
		return reversed(e.LEBytes())
	}
	return CurveStruct{
		M:     c.params.M,
		KS:    c.mod.Exponents(),
		A:     c.params.A,
		B:     encode(c.b),
		Order: c.order.Int(),
		Base:  encode(c.base.Compress()),
	}
}

// ID returns the standard identifier, or an empty string for ad-hoc curves.
func (c *Curve) ID() string {
	return c.params.ID
}

// Name returns the standard identifier of a curve equal to c, looking past
// ad-hoc construction. It returns an empty string for non-standard curves.
func (c *Curve) Name() string {
	if c.params.ID != "" {
		return c.params.ID
	}
	for _, id := range StandardIDs() {
		p := standardParams[id]
		if p.M == c.params.M && p.B.Cmp(c.b.Big()) == 0 && p.Order.Cmp(c.params.Order) == 0 &&
			p.BaseX.Cmp(c.base.x.Big()) == 0 {
			return id
		}
	}
	return ""
}

// Index returns the position of the curve among the DSTU_PB standard
// curves, or -1.
func (c *Curve) Index() int {
	name := c.Name()
	for i, id := range standardOrder {
		if id == name {
			return i
		}
	}
	return -1
}

// Params returns a copy of the parameters the curve was built from.
func (c *Curve) Params() Params {
	return c.params.clone()
}

// Modulus returns the field modulus.
func (c *Curve) Modulus() *field.Modulus {
	return c.mod
}

// Degree returns m.
func (c *Curve) Degree() int {
	return c.params.M
}

// A returns the a coefficient as a field element.
func (c *Curve) A() *field.Element {
	return c.a.Clone()
}

// B returns the b coefficient.
func (c *Curve) B() *field.Element {
	return c.b.Clone()
}

// Order returns the order of the base point.
func (c *Curve) Order() *scalar.Order {
	return c.order
}

// Cofactor returns the cofactor h.
func (c *Curve) Cofactor() int {
	return c.cofactor
}

// Base returns the base point G.
func (c *Curve) Base() *Point {
	return c.base
}

// Window returns the wNAF window width used for base point multiplication.
func (c *Curve) Window() int {
	return c.window
}

// Equal reports whether both curves have the same field, coefficients,
// order and base point.
func (c *Curve) Equal(other *Curve) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.mod.Equal(other.mod) &&
		c.params.A == other.params.A &&
		c.b.Equal(other.b) &&
		c.order.Equal(other.order) &&
		c.base.x.Equal(other.base.x) &&
		c.base.y.Equal(other.base.y)
}

// Element returns v as an element of the curve's field.
func (c *Curve) Element(v *big.Int) *field.Element {
	return field.FromBig(c.mod, v)
}

// Infinity returns the point at infinity.
func (c *Curve) Infinity() *Point {
	return &Point{x: field.Zero(c.mod), y: field.Zero(c.mod), infinity: true, curve: c}
}

// NewPoint returns the affine point (x, y) after checking that it lies on
// the curve.
func (c *Curve) NewPoint(x, y *big.Int) (*Point, error) {
	p := c.point(field.FromBig(c.mod, x).Reduce(), field.FromBig(c.mod, y).Reduce())
	if !c.Contains(p) {
		return nil, errs.New(errs.ErrPointNotOnCurve, "group: point is not on the curve")
	}
	return p, nil
}

func (c *Curve) point(x, y *field.Element) *Point {
	return &Point{x: x, y: y, curve: c}
}

// Contains evaluates y^2 + xy + x^3 + a*x^2 + b and reports whether it is
// zero. The point at infinity is on every curve.
func (c *Curve) Contains(p *Point) bool {
	if p == nil || !c.Equal(p.curve) {
		return false
	}
	if p.infinity {
		return true
	}
	x, y := p.x, p.y
	x2 := x.ModSquare()
	lhs := y.ModSquare().Add(x.ModMul(y))
	rhs := x2.ModMul(x).Add(c.b)
	if c.params.A == 1 {
		rhs = rhs.Add(x2)
	}
	return lhs.Add(rhs).IsZero()
}

// Truncate clears the high bits of e until its bit length is below that of
// the order.
func (c *Curve) Truncate(e *field.Element) *field.Element {
	r := e.Reduce()
	limit := c.order.BitLen()
	for bl := r.BitLen(); bl >= limit; bl = r.BitLen() {
		r = r.ClearBit(bl - 1)
	}
	return r
}

// Expand recovers a point from its compressed form: the x coordinate with
// bit 0 replaced by Tr(y/x).
//
// Expand does not check curve membership. A malformed compression either
// decodes to a different valid point or to one that Contains rejects; use
// DecodePoint to get both steps. The only error is ErrQuadraticSolve, which
// valid curves never produce.
func (c *Curve) Expand(compressed *field.Element) (*Point, error) {
	cx := compressed.Reduce()
	if cx.IsZero() {
		return c.point(field.Zero(c.mod), c.b.Sqrt()), nil
	}

	key := cx.Hex()
	if cached, ok := c.expanded.Get(key); ok {
		return cached.(*Point), nil
	}

	parity := uint(0)
	if cx.TestBit(0) {
		parity = 1
	}
	x := cx.ClearBit(0)
	if x.Trace() != c.params.A {
		x = x.SetBit(0)
	}
	if x.IsZero() {
		return c.point(field.Zero(c.mod), c.b.Sqrt()), nil
	}

	x2 := x.ModSquare()
	v := x2.ModMul(x).Add(c.b)
	if c.params.A == 1 {
		v = v.Add(x2)
	}
	v = v.ModMul(x2.Invert())

	var z *field.Element
	if v.Trace() == 1 {
		// No root exists, so x is not the abscissa of any point. The
		// half-trace still yields a value and the result fails Contains.
		z = v.HalfTrace()
	} else {
		var err error
		if z, err = v.SolveQuadratic(); err != nil {
			return nil, err
		}
	}
	if z.Trace() != parity {
		z = z.Add(field.One(c.mod))
	}

	p := c.point(x, z.ModMul(x))
	c.expanded.Add(key, p)
	return p, nil
}

// DecodePoint expands a compressed point and checks that it lies on the
// curve. Encodings with bits at or above the field degree are rejected
// rather than reduced.
func (c *Curve) DecodePoint(compressed *field.Element) (*Point, error) {
	if compressed.BitLen() > c.Degree() {
		return nil, errs.New(errs.ErrPointNotOnCurve, "group: compressed point is wider than the field")
	}
	p, err := c.Expand(compressed)
	if err != nil {
		return nil, err
	}
	if !c.Contains(p) {
		return nil, errs.New(errs.ErrPointNotOnCurve, "group: compressed point is not on the curve")
	}
	return p, nil
}

// DecodeLE decodes a little-endian compressed point.
func (c *Curve) DecodeLE(b []byte) (*Point, error) {
	return c.DecodePoint(field.FromLE(c.mod, b))
}

// ScalarBaseMult returns k*G using the precomputed base table.
func (c *Curve) ScalarBaseMult(k *big.Int) *Point {
	return c.base.mulWNAF(k, c.baseTable, c.window)
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
