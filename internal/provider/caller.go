package provider

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadcrm/internal/resilience"
)

// Config controls candidate selection and per-attempt behavior.
type Config struct {
	Mode Mode

	// Candidates is the ordered model list for fallback mode.
	Candidates []string

	// DefaultModel is the discover-mode fallback identifier.
	DefaultModel string
	// Prefer is the substring that wins during discovery, e.g. "flash".
	Prefer string

	Timeout   time.Duration
	Retry     resilience.RetryConfig
	RateLimit float64 // requests per second; 0 disables
}

const defaultTimeout = 60 * time.Second

// caller runs one model attempt with throttle, timeout and retry applied.
type caller struct {
	backend Backend
	timeout time.Duration
	retry   resilience.RetryConfig
	limiter *rate.Limiter
}

func newCaller(b Backend, cfg Config) *caller {
	c := &caller{
		backend: b,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

func (c *caller) call(ctx context.Context, model, system, user string) (string, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", false, eris.Wrap(err, "provider: rate limit wait")
		}
	}

	retry := c.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(c.backend.Name(), model)
	}

	var timedOut bool
	out, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		actx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		text, err := c.backend.Generate(actx, model, system, user)
		timedOut = err != nil && (errors.Is(actx.Err(), context.DeadlineExceeded) || resilience.IsTimeout(err))
		return text, err
	})
	return out, timedOut, err
}

// tryModels attempts each model in order and returns the first success.
func (c *caller) tryModels(ctx context.Context, models []string, system, user string) (string, error) {
	perr := &ProviderError{Backend: c.backend.Name()}
	for _, m := range models {
		text, timedOut, err := c.call(ctx, m, system, user)
		if err == nil {
			return text, nil
		}
		zap.L().Warn("provider: candidate failed",
			zap.String("backend", c.backend.Name()),
			zap.String("model", m),
			zap.Bool("timed_out", timedOut),
			zap.Error(err),
		)
		perr.Attempts = append(perr.Attempts, Attempt{Model: m, Err: err, TimedOut: timedOut})

		if ctx.Err() != nil {
			break
		}
	}
	return "", perr
}

// New builds a Provider for backend according to cfg.Mode.
func New(backend Backend, cfg Config) (Provider, error) {
	switch cfg.Mode {
	case ModeDiscover:
		return NewDiscovering(backend, cfg)
	case ModeFallback, "":
		return NewFallback(backend, cfg)
	default:
		return nil, eris.Errorf("provider: unknown mode %q", cfg.Mode)
	}
}
