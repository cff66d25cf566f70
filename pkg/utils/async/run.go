package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Run executes a long-running task in a new goroutine with panic recovery.
//
// Parameters:
//   - ctx: Context passed to the task; cancelling it is the task's signal to stop
//   - name: Task name attached to log records
//   - task: Function to execute
//
// Behavior:
//   - Recovers from panics and logs them with a stack trace
//   - Logs errors returned by task, except context cancellation
//   - Closes the returned channel when task has returned
func Run(ctx context.Context, name string, task func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	logger := ctxlog.From(ctx).With("task", name)

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in background task",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := task(ctx); err != nil && ctx.Err() == nil {
			logger.Error("error in background task", "error", err)
		}
	}()

	return done
}
