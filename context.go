// Package dstu4145 provides a pure Go implementation of the Ukrainian
// DSTU 4145-2002 elliptic curve standard over binary fields, with
// signatures, cofactor key agreement and key transport envelopes.
package dstu4145

import (
	"io"

	"go.uber.org/zap"

	"github.com/rafaelescrich/go-dstu4145/errs"
	"github.com/rafaelescrich/go-dstu4145/group"
	"github.com/rafaelescrich/go-dstu4145/scalar"
	"github.com/rafaelescrich/go-dstu4145/sign"
)

// Context holds the curve registry and the randomness configuration shared
// by every key created through it.
type Context struct {
	registry *group.Registry

	rand        io.Reader
	maxAttempts int
	logger      *zap.Logger
}

// Option configures a Context.
type Option func(*Context)

// WithRegistry makes the context resolve curves from r instead of a
// private registry.
func WithRegistry(r *group.Registry) Option {
	return func(ctx *Context) {
		ctx.registry = r
	}
}

// WithRand sets the random source for key generation, signing and
// envelopes. Nil selects crypto/rand.
func WithRand(r io.Reader) Option {
	return func(ctx *Context) {
		ctx.rand = r
	}
}

// WithMaxAttempts caps the sampling loops. Zero, the default, means
// unbounded.
func WithMaxAttempts(n int) Option {
	return func(ctx *Context) {
		ctx.maxAttempts = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(ctx *Context) {
		ctx.logger = logger
	}
}

// NewContext creates a new context.
func NewContext(opts ...Option) *Context {
	ctx := &Context{}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.logger == nil {
		ctx.logger = zap.NewNop()
	}
	if ctx.registry == nil {
		ctx.registry = group.NewRegistry(group.WithRegistryLogger(ctx.logger))
	}
	return ctx
}

// Registry returns the curve registry of the context.
func (ctx *Context) Registry() *group.Registry {
	return ctx.registry
}

// Curve returns the standard curve with the given identifier.
func (ctx *Context) Curve(id string) (*group.Curve, error) {
	return ctx.registry.Get(id)
}

// Resolve returns the curve for a definition.
func (ctx *Context) Resolve(def group.Definition) (*group.Curve, error) {
	return ctx.registry.Resolve(def)
}

func (ctx *Context) signOptions() *sign.Options {
	return &sign.Options{
		Rand:        ctx.rand,
		MaxAttempts: ctx.maxAttempts,
		Logger:      ctx.logger,
	}
}

// GenerateKey draws a private key d in [1, n) and derives Q = -d*G.
// Candidates whose public point is the point at infinity or does not
// survive compression are discarded and drawn again.
func (ctx *Context) GenerateKey(curve *group.Curve) (*PrivateKey, error) {
	sampler := scalar.NewSampler(ctx.rand, ctx.maxAttempts)
	for attempt := 0; ctx.maxAttempts == 0 || attempt < ctx.maxAttempts; attempt++ {
		d, rejected, err := sampler.SampleCounted(curve.Order())
		if err != nil {
			return nil, err
		}

		q := curve.ScalarBaseMult(d.Int()).Negate()
		if q.IsInfinity() {
			ctx.logger.Debug("discarding key candidate", zap.String("reason", "infinity"), zap.Int("attempt", attempt))
			continue
		}
		check, err := curve.Expand(q.Compress())
		if err != nil {
			return nil, err
		}
		if !check.Equal(q) || !curve.Contains(check) {
			ctx.logger.Debug("discarding key candidate", zap.String("reason", "compression"), zap.Int("attempt", attempt))
			continue
		}

		ctx.logger.Debug("generated key",
			zap.String("curve", curve.Name()),
			zap.Int("rejected", rejected),
			zap.Int("attempt", attempt))
		return ctx.newPrivateKey(curve, d, q), nil
	}

	return nil, errs.New(errs.ErrAttemptsExhausted, "dstu4145: no usable private key within the attempt limit")
}
