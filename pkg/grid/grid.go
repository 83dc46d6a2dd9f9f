// Package grid evaluates a function of two variables over every point of a
// rectangular lattice.
package grid

import (
	"math"
	"runtime"
	"sync"

	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/numeric"
)

type options struct {
	workers int
}

// Option configures Evaluate.
type Option func(*options)

// WithWorkers evaluates points on n goroutines. n <= 0 uses GOMAXPROCS;
// one (the default) evaluates sequentially.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		o.workers = n
	}
}

// Evaluate samples f at every point of g in x-major order.
//
// Each sample is (1, f(x, y)). A point where f fails, panics or returns a
// non-finite value gets a zero vector and a non-OK status; the result
// always holds g.Len() samples. A nil f fails at every point.
func Evaluate(f numeric.Function, g domain.Grid, opts ...Option) *domain.RawField {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	ny := len(g.YRange)
	samples := make([]domain.Sample, g.Len())
	eval := func(i int) {
		samples[i] = Point(f, g.XRange[i/ny], g.YRange[i%ny])
	}

	if o.workers <= 1 || len(samples) < 2 {
		for i := range samples {
			eval(i)
		}
		return &domain.RawField{Grid: g, Samples: samples}
	}

	// Each index is written by exactly one goroutine.
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(o.workers, len(samples)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				eval(i)
			}
		}()
	}
	for i := range samples {
		next <- i
	}
	close(next)
	wg.Wait()

	return &domain.RawField{Grid: g, Samples: samples}
}

// Point evaluates f at (a, b).
func Point(f numeric.Function, a, b float64) (s domain.Sample) {
	s.Point = domain.Point{X: a, Y: b}
	if f == nil {
		s.Status = domain.StatusDomainError
		return s
	}
	defer func() {
		if r := recover(); r != nil {
			s.Vector = domain.Vector{}
			s.Status = domain.StatusDomainError
		}
	}()

	dy, err := f.Eval(a, b)
	switch {
	case err != nil:
		s.Status = domain.StatusDomainError
	case math.IsNaN(dy) || math.IsInf(dy, 0):
		s.Status = domain.StatusNonFinite
	default:
		s.Vector = domain.Vector{DX: 1, DY: dy}
	}
	return s
}
