package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quantrail/riskstats/internal/core"
)

// ComputeFunc computes one metric from its dependency values, bound
// positionally in the order the recipe declared them.
type ComputeFunc func(args []Value) (Value, error)

type recipe struct {
	fn   ComputeFunc
	deps []string
}

// Engine is a lazy, memoizing resolver over named metric recipes. Values are
// cached for the life of the instance; one instance is not safe for
// concurrent resolution, independent instances share nothing.
type Engine struct {
	recipes map[string]recipe
	order   []string // registration order, for ResolveAll
	state   map[string]Value
	logger  *zap.Logger
}

// New creates an engine seeded with externally supplied base values.
func New(seeds map[string]Value, logger ...*zap.Logger) (*Engine, error) {
	if seeds == nil {
		return nil, core.WrapError(core.ErrContractViolation,
			fmt.Errorf("seed mapping must not be nil"))
	}

	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}

	state := make(map[string]Value, len(seeds))
	for name, v := range seeds {
		state[name] = v
	}

	return &Engine{
		recipes: make(map[string]recipe),
		state:   state,
		logger:  l,
	}, nil
}

// Register stores a recipe under name. Last write wins; no validation that
// fn's arity matches the dependency list.
func (e *Engine) Register(name string, fn ComputeFunc, deps ...string) {
	if _, exists := e.recipes[name]; !exists {
		e.order = append(e.order, name)
	}
	e.recipes[name] = recipe{fn: fn, deps: deps}
}

// resolution colors for cycle detection
const (
	colorInProgress = 1
	colorDone       = 2
)

// Resolve returns the cached value for name, computing it first if needed.
// Dependencies are resolved with an explicit work stack rather than
// recursion, so deep chains cannot overflow and cycles surface as errors.
func (e *Engine) Resolve(name string) (Value, error) {
	if v, ok := e.state[name]; ok {
		return v, nil
	}

	type frame struct {
		name   string
		parent string
	}
	colors := make(map[string]int)
	stack := []frame{{name: name}}

	for len(stack) > 0 {
		top := stack[len(stack)-1].name

		if _, done := e.state[top]; done {
			colors[top] = colorDone
			stack = stack[:len(stack)-1]
			continue
		}

		r, ok := e.recipes[top]
		if !ok {
			parent := stack[len(stack)-1].parent
			if parent == "" {
				return Value{}, core.WrapError(core.ErrDepUnresolved, fmt.Errorf("%q", top))
			}
			return Value{}, core.WrapError(core.ErrDepUnresolved,
				fmt.Errorf("%q is needed by %q", top, parent))
		}

		if colors[top] != colorInProgress {
			colors[top] = colorInProgress
			// First visit: push any unresolved dependencies and come back.
			pushed := false
			for i := len(r.deps) - 1; i >= 0; i-- {
				dep := r.deps[i]
				if _, done := e.state[dep]; done {
					continue
				}
				if colors[dep] == colorInProgress {
					chain := make([]string, 0, len(stack))
					for _, f := range stack {
						if colors[f.name] == colorInProgress {
							chain = append(chain, f.name)
						}
					}
					return Value{}, core.WrapError(core.ErrCycleDetected,
						fmt.Errorf("%s", cyclePath(chain, dep)))
				}
				stack = append(stack, frame{name: dep, parent: top})
				pushed = true
			}
			if pushed {
				continue
			}
		}

		// Second visit (or no dependencies): everything upstream is cached.
		args := make([]Value, len(r.deps))
		for i, dep := range r.deps {
			v, done := e.state[dep]
			if !done {
				return Value{}, core.WrapError(core.ErrDepUnresolved,
					fmt.Errorf("%q is needed by %q", dep, top))
			}
			args[i] = v
		}

		v, err := r.fn(args)
		if err != nil {
			return Value{}, fmt.Errorf("computing %q: %w", top, err)
		}
		e.state[top] = v
		colors[top] = colorDone
		stack = stack[:len(stack)-1]
		e.logger.Debug("metric resolved", zap.String("metric", top))
	}

	return e.state[name], nil
}

// cyclePath renders the in-progress chain from the repeated name back to
// itself, e.g. "a -> b -> a".
func cyclePath(chain []string, repeat string) string {
	start := 0
	for i, n := range chain {
		if n == repeat {
			start = i
			break
		}
	}
	path := append([]string{}, chain[start:]...)
	return strings.Join(append(path, repeat), " -> ")
}

// ResolveAll resolves the given names, or every registered recipe in
// registration order when called with none. Dependency resolution fills any
// gaps regardless of starting order.
func (e *Engine) ResolveAll(names ...string) error {
	if len(names) == 0 {
		names = e.order
	}
	for _, name := range names {
		if _, err := e.Resolve(name); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a previously resolved value without triggering computation.
func (e *Engine) Get(name string) (Value, error) {
	v, ok := e.state[name]
	if !ok {
		return Value{}, core.WrapError(core.ErrMetricMissing, fmt.Errorf("%q", name))
	}
	return v, nil
}

// Snapshot returns a copy of the full current name→value state.
func (e *Engine) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.state))
	for name, v := range e.state {
		out[name] = v
	}
	return out
}

// Registered reports every recipe name in registration order.
func (e *Engine) Registered() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}
