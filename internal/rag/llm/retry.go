package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
}

// withWarmupRetry retries call only while the backend reports a loading
// model. Any other outcome returns immediately.
func withWarmupRetry(ctx context.Context, opts RetryOpts, call func(context.Context) (Completion, error)) (Completion, int, error) {
	attempts := max(opts.MaxAttempts, 1)
	wait := opts.InitialWait

	var res Completion
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err = call(ctx)
		if err == nil || !errors.Is(err, ErrModelLoading) {
			return res, attempt, err
		}
		if attempt == attempts {
			break
		}

		sleepDur := wait
		var loading *LoadingError
		if errors.As(err, &loading) && loading.EstimatedWait > sleepDur {
			sleepDur = loading.EstimatedWait
		}
		if opts.Jitter {
			sleepDur = time.Duration(float64(sleepDur) * (0.5 + rand.Float64()))
		}
		sleepDur = min(sleepDur, opts.MaxWait)

		select {
		case <-ctx.Done():
			return res, attempt, ctx.Err()
		case <-time.After(sleepDur):
		}

		wait = min(wait*2, opts.MaxWait)
	}
	return res, attempts, err
}
