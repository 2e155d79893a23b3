package taskflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunRespectsDependencyOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	record := func(name string) StepFunc {
		return func(ctx context.Context, deps Results) (any, error) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return name, nil
		}
	}

	g := New("order", nil).
		Add("a", nil, record("a")).
		Add("b", []string{"a"}, record("b")).
		Add("c", []string{"a", "b"}, record("c"))

	results, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
	require.Equal(t, "c", results["c"])
}

func TestRunPassesDependencyResults(t *testing.T) {
	g := New("deps", nil).
		Add("base", nil, func(ctx context.Context, deps Results) (any, error) {
			return 21, nil
		}).
		Add("double", []string{"base"}, func(ctx context.Context, deps Results) (any, error) {
			return Value[int](deps, "base") * 2, nil
		})

	results, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, results["double"])
}

func TestRunIndependentStepsOverlap(t *testing.T) {
	release := make(chan struct{})
	var waiting atomic.Int32

	blocker := func(ctx context.Context, deps Results) (any, error) {
		waiting.Add(1)
		<-release
		return nil, nil
	}

	g := New("parallel", nil).
		Add("left", nil, blocker).
		Add("right", nil, blocker)

	go func() {
		// both steps must be in flight before either can finish
		deadline := time.After(2 * time.Second)
		for waiting.Load() < 2 {
			select {
			case <-deadline:
				close(release)
				return
			default:
				time.Sleep(time.Millisecond)
			}
		}
		close(release)
	}()

	_, err := g.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(2), waiting.Load())
}

func TestRunFirstErrorWins(t *testing.T) {
	boom := errors.New("boom")
	var downstream atomic.Bool

	g := New("failure", nil).
		Add("fails", nil, func(ctx context.Context, deps Results) (any, error) {
			return nil, boom
		}).
		Add("after", []string{"fails"}, func(ctx context.Context, deps Results) (any, error) {
			downstream.Store(true)
			return nil, nil
		})

	_, err := g.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.False(t, downstream.Load(), "step downstream of a failure must not start")

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	require.Equal(t, "fails", stepErr.Step)
}

func TestRunRunningStepsFinishAfterFailure(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan struct{})

	g := New("drain", nil).
		Add("slow", nil, func(ctx context.Context, deps Results) (any, error) {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return "late", nil
		}).
		Add("fast-fail", nil, func(ctx context.Context, deps Results) (any, error) {
			<-started
			return nil, errors.New("fast failure")
		})

	_, err := g.Run(context.Background())
	require.Error(t, err)

	select {
	case <-finished:
	default:
		t.Fatal("running step was not allowed to finish")
	}
}

func TestRunRejectsCycle(t *testing.T) {
	g := New("cycle", nil).
		Add("a", []string{"b"}, func(ctx context.Context, deps Results) (any, error) { return nil, nil }).
		Add("b", []string{"a"}, func(ctx context.Context, deps Results) (any, error) { return nil, nil })

	_, err := g.Run(context.Background())
	require.ErrorIs(t, err, ErrCyclicDependency)
}

func TestRunRejectsUnknownDependency(t *testing.T) {
	g := New("unknown", nil).
		Add("a", []string{"ghost"}, func(ctx context.Context, deps Results) (any, error) { return nil, nil })

	_, err := g.Run(context.Background())
	require.ErrorIs(t, err, ErrUnknownDependency)
}

func TestAddRejectsDuplicateStep(t *testing.T) {
	g := New("dup", nil).
		Add("a", nil, func(ctx context.Context, deps Results) (any, error) { return nil, nil }).
		Add("a", nil, func(ctx context.Context, deps Results) (any, error) { return nil, nil })

	_, err := g.Run(context.Background())
	require.ErrorIs(t, err, ErrDuplicateStep)
}
