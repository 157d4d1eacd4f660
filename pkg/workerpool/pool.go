package workerpool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pool runs independent tasks with a bounded number of workers. Failures
// are collected rather than cancelling siblings, so one bad indicator does
// not abort the rest of a batch.
type Pool struct {
	workers int
}

// New creates a pool with the given concurrency limit.
func New(workers int) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", workers)
	}
	return &Pool{workers: workers}, nil
}

// Task is one named unit of work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskError pairs a failed task with its error.
type TaskError struct {
	Name string
	Err  error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Name, e.Err)
}

func (e TaskError) Unwrap() error { return e.Err }

// RunAll executes all tasks with bounded concurrency and returns the
// failures. A cancelled context stops scheduling new tasks and is seen by
// the ones already running.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) []TaskError {
	var g errgroup.Group
	g.SetLimit(p.workers)

	results := make([]error, len(tasks))
	for i, t := range tasks {
		if ctx.Err() != nil {
			results[i] = ctx.Err()
			continue
		}
		i, t := i, t
		g.Go(func() error {
			results[i] = t.Run(ctx)
			return nil
		})
	}
	_ = g.Wait()

	var failed []TaskError
	for i, err := range results {
		if err != nil {
			failed = append(failed, TaskError{Name: tasks[i].Name, Err: err})
		}
	}
	return failed
}
