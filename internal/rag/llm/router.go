package llm

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/metrics"
	"github.com/akolanti/PersonaRAG/pkg/logger_i"
)

// Router sends every request to the first configured provider. With nothing
// configured it answers from the demo provider.
type Router struct {
	providers []Provider
	demo      Provider
	retry     RetryOpts
	timeout   time.Duration
	logger    *logger_i.Logger
}

func NewRouter(retry RetryOpts, providers ...Provider) *Router {
	var usable []Provider
	for _, p := range providers {
		if p != nil {
			usable = append(usable, p)
		}
	}
	return &Router{
		providers: usable,
		demo:      Demo{},
		retry:     retry,
		timeout:   config.ProviderCallTimeout,
		logger:    logger_i.NewLogger("llm_router"),
	}
}

func DefaultRetry(cfg config.ProviderConfig) RetryOpts {
	return RetryOpts{
		MaxAttempts: cfg.WarmupAttempts,
		InitialWait: cfg.WarmupInitialWait,
		MaxWait:     cfg.WarmupMaxWait,
		Jitter:      true,
	}
}

// Select returns the provider a request would be sent to.
func (r *Router) Select() Provider {
	for _, p := range r.providers {
		if p.Configured() {
			return p
		}
	}
	return r.demo
}

func (r *Router) Complete(ctx context.Context, req Request) (Completion, error) {
	provider := r.Select()
	name := provider.Name()
	log := r.logger.WithTrace(ctx).With("provider", name)
	metrics.ProviderSelected("generation", name)

	if req.Temperature == 0 {
		req.Temperature = config.DefaultTemperature
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = config.DefaultMaxTokens
	}

	start := time.Now()
	res, attempts, err := withWarmupRetry(ctx, r.retry, func(ctx context.Context) (Completion, error) {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		return provider.Complete(callCtx, req)
	})
	metrics.CaptureExecutionMetrics("llm_"+name, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrModelLoading) {
			log.Warn("model did not warm up in time", "attempts", attempts)
			return Completion{}, &WarmupTimeoutError{Provider: name, Attempts: attempts}
		}
		log.Error("generation failed", "error", err)
		return Completion{}, &GenerationError{Provider: name, Err: err}
	}
	if res.Text() == "" {
		return Completion{}, &GenerationError{Provider: name, Err: ErrEmptyResponse}
	}
	if res.Provider == "" {
		res.Provider = name
	}
	log.Debug("generation complete", "attempts", attempts)
	return res, nil
}

// Names lists the providers in priority order, configured or not.
func (r *Router) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}
