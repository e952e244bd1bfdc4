package master

import (
	"context"
	"net/rpc"
	"time"

	"chronodl/internal/chronoerr"

	"go.uber.org/zap"
)

// callWithTimeout issues a single RPC call, racing it against ctx and a
// per-call deadline. net/rpc's Client.Call is otherwise an unconditional
// blocking call with no cancellation hook, so this uses the async Go form
// and selects on its Done channel (spec.md §4.7, "per-task timeout").
func callWithTimeout(ctx context.Context, client *rpc.Client, timeout time.Duration, method string, args, reply any) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	call := client.Go(method, args, reply, make(chan *rpc.Call, 1))
	select {
	case <-call.Done:
		return call.Error
	case <-callCtx.Done():
		return chronoerr.Wrap(chronoerr.Timeout, method, "worker call timed out", callCtx.Err())
	}
}

// callWithRetry retries a failed call with linear backoff: the n-th retry
// waits n*1s before resubmitting, up to maxRetries attempts total
// (spec.md §4.7, "retry with linear backoff, max_retries=3").
func callWithRetry(ctx context.Context, logger *zap.Logger, client *rpc.Client, timeout time.Duration, maxRetries int, method string, args, reply any) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := callWithTimeout(ctx, client, timeout, method, args, reply)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Warn("worker rpc attempt failed",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return chronoerr.Wrap(chronoerr.RetriesExhausted, method, "exhausted retries against worker", lastErr)
}
