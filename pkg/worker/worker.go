// Package worker runs independent tasks with bounded concurrency. A task's
// error or panic is recorded on its own result and never stops the other
// tasks. Only a configuration error cancels the run.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/authorgraph/pkg/errors"
	"github.com/agentstation/authorgraph/pkg/logging"
)

// DefaultLimit is the default number of tasks in flight.
const DefaultLimit = 5

// Task is a unit of work identified by Key.
type Task[T any] struct {
	Key string
	Run func(ctx context.Context) (T, error)
}

// Result is the outcome of one task.
type Result[T any] struct {
	Key   string
	Value T
	Err   error
}

// Run executes tasks with at most limit in flight and returns one result
// per task in task order. The returned error is the first fatal task
// error; once it occurs, tasks not yet started are recorded as canceled.
func Run[T any](ctx context.Context, limit int, tasks []Task[T]) ([]Result[T], error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	results := make([]Result[T], len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, task := range tasks {
		results[i].Key = task.Key
		if err := gctx.Err(); err != nil {
			results[i].Err = errors.Join(errors.ErrCanceled, err)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = errors.Join(errors.ErrCanceled, err)
				return nil
			}
			value, err := protect(gctx, task)
			results[i].Value = value
			results[i].Err = err
			if errors.IsFatal(err) {
				return err
			}
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// protect runs task, converting a panic into an error.
func protect[T any](ctx context.Context, task Task[T]) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error().
				Str("task", task.Key).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("Task panicked")
			err = fmt.Errorf("task %s panicked: %v", task.Key, r)
		}
	}()
	return task.Run(ctx)
}

// Errors returns the results that failed.
func Errors[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
