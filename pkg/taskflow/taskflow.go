// Package taskflow runs a named set of steps with declared dependencies.
// Independent steps run concurrently, each step sees the results of its
// declared dependencies, and the first failing step aborts the graph.
package taskflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var (
	ErrDuplicateStep     = errors.New("taskflow: duplicate step")
	ErrUnknownDependency = errors.New("taskflow: unknown dependency")
	ErrCyclicDependency  = errors.New("taskflow: cyclic dependency")
)

// Results holds completed step results keyed by step name.
type Results map[string]any

// Value returns the named result typed as T, or T's zero value when the
// result is absent or of a different type.
func Value[T any](r Results, name string) T {
	v, _ := r[name].(T)
	return v
}

// StepFunc is one unit of work. It receives the results of the step's
// declared dependencies and produces a result or fails.
type StepFunc func(ctx context.Context, deps Results) (any, error)

// StepError wraps a step failure with the step's name. It unwraps to the
// underlying error so sentinel checks keep working.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type step struct {
	name string
	deps []string
	run  StepFunc
}

// Graph is a single-use executor for one workflow invocation.
type Graph struct {
	name   string
	log    *zap.Logger
	steps  map[string]*step
	addErr error
}

// New returns an empty graph. The logger may be nil.
func New(name string, log *zap.Logger) *Graph {
	if log == nil {
		log = zap.NewNop()
	}
	return &Graph{
		name:  name,
		log:   log.Named("taskflow"),
		steps: make(map[string]*step),
	}
}

// Add registers a step with its dependency names. Registration errors are
// deferred and surfaced by Run.
func (g *Graph) Add(name string, deps []string, fn StepFunc) *Graph {
	if _, ok := g.steps[name]; ok {
		if g.addErr == nil {
			g.addErr = fmt.Errorf("%w: %s", ErrDuplicateStep, name)
		}
		return g
	}
	g.steps[name] = &step{name: name, deps: deps, run: fn}
	return g
}

type outcome struct {
	name  string
	value any
	err   error
}

// Run executes the graph to completion or first failure and returns
// exactly once: the full result set keyed by step name on success, or the
// first step failure. Steps already running when a failure occurs are
// allowed to finish but their results are discarded.
func (g *Graph) Run(ctx context.Context) (Results, error) {
	if g.addErr != nil {
		return nil, g.addErr
	}
	if err := g.validate(); err != nil {
		return nil, err
	}

	results := make(Results, len(g.steps))
	done := make(map[string]bool, len(g.steps))
	started := make(map[string]bool, len(g.steps))
	outcomes := make(chan outcome)

	var firstErr error
	running := 0

	launchReady := func() {
		for name, st := range g.steps {
			if started[name] {
				continue
			}
			ready := true
			for _, dep := range st.deps {
				if !done[dep] {
					ready = false
					break
				}
			}
			if !ready {
				continue
			}

			started[name] = true
			running++

			deps := make(Results, len(st.deps))
			for _, dep := range st.deps {
				deps[dep] = results[dep]
			}

			go func(st *step, deps Results) {
				value, err := st.run(ctx, deps)
				outcomes <- outcome{name: st.name, value: value, err: err}
			}(st, deps)
		}
	}

	launchReady()
	for running > 0 {
		out := <-outcomes
		running--

		if out.err != nil {
			if firstErr == nil {
				firstErr = &StepError{Step: out.name, Err: out.err}
				g.log.Warn("step failed",
					zap.String("graph", g.name),
					zap.String("step", out.name),
					zap.Error(out.err),
				)
			}
			continue
		}
		if firstErr != nil {
			// a failure already won; discard late results
			continue
		}

		done[out.name] = true
		results[out.name] = out.value
		launchReady()
	}

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (g *Graph) validate() error {
	indegree := make(map[string]int, len(g.steps))
	dependents := make(map[string][]string, len(g.steps))

	for name, st := range g.steps {
		indegree[name] = len(st.deps)
		for _, dep := range st.deps {
			if _, ok := g.steps[dep]; !ok {
				return fmt.Errorf("%w: step %s depends on %s", ErrUnknownDependency, name, dep)
			}
			dependents[dep] = append(dependents[dep], name)
		}
	}

	queue := make([]string, 0, len(g.steps))
	for name, degree := range indegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}

	visited := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		visited++
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if visited != len(g.steps) {
		return fmt.Errorf("%w: graph %s", ErrCyclicDependency, g.name)
	}
	return nil
}
