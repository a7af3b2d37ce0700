// Package async provides a bounded worker pool for fanning out independent
// calls and collecting their results by name.
package async

import (
	"context"
	"sync"
)

// Task is one named unit of work.
type Task[T any] struct {
	Name    string
	Execute func(ctx context.Context) (T, error)
}

// Result carries one task's outcome. Err is non-nil when the task failed or
// the pool was cancelled before the task ran.
type Result[T any] struct {
	Name string
	Data T
	Err  error
}

// Pool runs tasks with a fixed concurrency limit.
type Pool[T any] struct {
	workerCount int
}

// NewPool creates a pool running at most workerCount tasks in flight at once.
// Counts below 1 are raised to 1.
func NewPool[T any](workerCount int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool[T]{workerCount: workerCount}
}

// Execute runs every task and returns one result per task, keyed by task
// name. It returns only after each task has either finished or been abandoned
// because the context was cancelled; abandoned tasks carry ctx.Err().
func (p *Pool[T]) Execute(ctx context.Context, tasks []Task[T]) map[string]Result[T] {
	workers := p.workerCount
	if workers > len(tasks) {
		workers = len(tasks)
	}

	queue := make(chan Task[T])
	results := make(chan Result[T], len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				data, err := task.Execute(ctx)
				results <- Result[T]{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, task := range tasks {
			select {
			case queue <- task:
			case <-ctx.Done():
				results <- Result[T]{Name: task.Name, Err: ctx.Err()}
			}
		}
	}()

	collected := make(map[string]Result[T], len(tasks))
	for i := 0; i < len(tasks); i++ {
		result := <-results
		collected[result.Name] = result
	}

	wg.Wait()
	return collected
}
