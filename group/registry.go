package group

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rafaelescrich/go-dstu4145/errs"
)

// Definition selects a curve. It is either ByID, naming a standard curve, or
// ByParams, carrying explicit parameters such as those decoded from a
// certificate.
type Definition interface {
	definition()
}

// ByID names a standard curve.
type ByID string

// ByParams carries explicit curve parameters.
type ByParams Params

func (ByID) definition()     {}
func (ByParams) definition() {}

// Registry resolves curve definitions to Curve values. Standard curves are
// built on first use and shared afterwards; concurrent first lookups of the
// same identifier build the curve once.
type Registry struct {
	curves sync.Map
	group  singleflight.Group
	opts   []CurveOption
	logger *zap.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger of the registry and of the curves it
// builds.
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCurveOptions sets the options passed to NewCurve.
func WithCurveOptions(opts ...CurveOption) RegistryOption {
	return func(r *Registry) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the standard curve with the given identifier.
func (r *Registry) Get(id string) (*Curve, error) {
	if c, ok := r.curves.Load(id); ok {
		return c.(*Curve), nil
	}

	params, ok := standardParams[id]
	if !ok {
		return nil, errs.New(errs.ErrUnknownCurve, "group: unknown curve "+id)
	}

	v, err, shared := r.group.Do(id, func() (interface{}, error) {
		if c, ok := r.curves.Load(id); ok {
			return c, nil
		}
		c, err := NewCurve(params, r.curveOptions()...)
		if err != nil {
			return nil, err
		}
		actual, _ := r.curves.LoadOrStore(id, c)
		return actual, nil
	})
	if err != nil {
		r.logger.Error("failed to build standard curve", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("resolved standard curve", zap.String("id", id), zap.Bool("shared", shared))
	return v.(*Curve), nil
}

// Resolve returns the curve selected by def. Explicit parameters build a new
// Curve on every call and are never cached.
func (r *Registry) Resolve(def Definition) (*Curve, error) {
	switch d := def.(type) {
	case ByID:
		return r.Get(string(d))
	case ByParams:
		return NewCurve(Params(d), r.curveOptions()...)
	case nil:
		return nil, errs.New(errs.ErrIncompleteParams, "group: nil curve definition")
	}
	return nil, errs.New(errs.ErrInvalidParams, "group: unsupported curve definition")
}

// Loaded returns the identifiers of the curves built so far.
func (r *Registry) Loaded() []string {
	var ids []string
	for _, id := range StandardIDs() {
		if _, ok := r.curves.Load(id); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry) curveOptions() []CurveOption {
	return append([]CurveOption{WithLogger(r.logger)}, r.opts...)
}
