package feedback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-analyzer/internal/metrics"
)

type fallbackGenerator struct {
	primary  Generator
	fallback Generator
	logger   *zap.Logger
}

// WithFallback returns a Generator that answers with fallback whenever
// primary fails. Only the fallback's own error is ever returned.
func WithFallback(primary, fallback Generator, logger *zap.Logger) Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fallbackGenerator{primary: primary, fallback: fallback, logger: logger}
}

func (f *fallbackGenerator) Name() string { return f.primary.Name() }

func (f *fallbackGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	res, err := f.primary.Generate(ctx, req)
	if err == nil {
		return res, nil
	}

	f.logger.Warn("feedback provider failed, falling back",
		zap.String("from", f.primary.Name()),
		zap.String("to", f.fallback.Name()),
		zap.Error(err),
	)
	metrics.FeedbackFallbacksTotal.WithLabelValues(f.primary.Name(), f.fallback.Name()).Inc()

	return f.fallback.Generate(ctx, req)
}

type instrumented struct {
	inner Generator
}

// Instrument records request counts and latency for g.
func Instrument(g Generator) Generator {
	return &instrumented{inner: g}
}

func (i *instrumented) Name() string { return i.inner.Name() }

func (i *instrumented) Generate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := i.inner.Generate(ctx, req)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.FeedbackRequestsTotal.WithLabelValues(i.inner.Name(), status).Inc()
	metrics.FeedbackRequestDuration.WithLabelValues(i.inner.Name()).Observe(time.Since(start).Seconds())

	return res, err
}

// Lazy builds its Generator on first use and reuses it for the life of the
// process. A failed build is remembered and reported on every call.
type Lazy struct {
	name  string
	build func(ctx context.Context) (Generator, error)

	once sync.Once
	gen  Generator
	err  error
}

func NewLazy(name string, build func(ctx context.Context) (Generator, error)) *Lazy {
	return &Lazy{name: name, build: build}
}

func (l *Lazy) Name() string { return l.name }

func (l *Lazy) Generate(ctx context.Context, req Request) (*Result, error) {
	l.once.Do(func() {
		l.gen, l.err = l.build(context.WithoutCancel(ctx))
	})
	if l.err != nil {
		return nil, &Error{Provider: l.name, Err: fmt.Errorf("initialize: %w", l.err)}
	}
	return l.gen.Generate(ctx, req)
}
