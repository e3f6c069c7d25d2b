// Package asynctask runs long operations on worker goroutines and routes
// their results back to the UI goroutine.
//
// [Submit] starts an [Operation] immediately on its own goroutine and returns
// a [Handle]. Continuations registered on the handle ([Handle.OnSuccess],
// [Handle.OnFailure], [Handle.OnComplete]) are never invoked on the worker:
// they are posted to the UI loop and run there in registration order.
//
// For every task exactly one of success or failure fires, and each
// registered callback runs exactly once. OnComplete callbacks run after the
// outcome callbacks that were registered before the task was delivered.
//
// Cancellation is cooperative. [Handle.Cancel] cancels the operation's
// context and sets a flag; an operation that ignores its context still runs
// to completion and its result is still delivered. Callbacks should consult
// [Handle.Cancelled] before acting on a result:
//
//	h := asynctask.Submit(runner, func(ctx context.Context) (string, error) {
//	    return ai.Complete(ctx, prompt)
//	})
//	h.OnSuccess(func(text string) {
//	    if h.Cancelled() {
//	        return // stale
//	    }
//	    editor.Insert(text)
//	})
//
// There is no implicit timeout. Wrap an operation with [WithTimeout] to give
// it a deadline.
package asynctask
