// Package srvenv carries the resolved configuration and the providers the
// commands build their components from.
package srvenv

import (
	"context"

	"github.com/go-sod/b2t/internal/artifact"
	"github.com/go-sod/b2t/internal/bundle"
	"github.com/go-sod/b2t/internal/extract"
	"github.com/go-sod/b2t/internal/geom"
	"github.com/go-sod/b2t/internal/layout"
	"github.com/go-sod/b2t/internal/predictor"
	"github.com/go-sod/b2t/internal/predictor/decoder"
)

// DecoderProvideFn loads the persisted model and returns a decoder fitted
// from it.
type DecoderProvideFn func(ctx context.Context) (*decoder.Decoder, *artifact.Model, error)

// Params are the immutable run parameters shared by every pipeline step.
type Params struct {
	Window  extract.WindowSpec
	Method  extract.Method
	K       int
	Metric  geom.MetricType
	Index   predictor.IndexType
	TopK    int
	Workers int
}

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	params  Params
	layout  *layout.Config
	stores  bundle.ProvideFn
	decoder DecoderProvideFn
}

func (s *SrvEnv) Params() Params {
	return s.params
}

func (s *SrvEnv) Layout() *layout.Config {
	return s.layout
}

func (s *SrvEnv) ProvideStore() bundle.ProvideFn {
	return s.stores
}

func (s *SrvEnv) ProvideDecoder() DecoderProvideFn {
	return s.decoder
}

func WithParams(p Params) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.params = p
		return s
	}
}

func WithLayout(l *layout.Config) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.layout = l
		return s
	}
}

func WithStore(fn bundle.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.stores = fn
		return s
	}
}

func WithDecoder(fn DecoderProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.decoder = fn
		return s
	}
}
