package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aiquery-dev/aiquery-engine/pkg/apperrors"
	"github.com/aiquery-dev/aiquery-engine/pkg/retry"
)

// DefaultRequestTimeout bounds a single backend call.
const DefaultRequestTimeout = 60 * time.Second

// Gateway wraps a primary generation backend with per-call timeouts,
// bounded retry, and a single-attempt fallback to an alternate backend.
// The fallback is optional; without one the gateway fails after the
// primary's retry budget is spent.
type Gateway struct {
	primary  Client
	fallback Client
	timeout  time.Duration
	retryCfg *retry.Config
	logger   *zap.Logger
}

// GatewayOption customizes gateway construction.
type GatewayOption func(*Gateway)

// WithFallback sets the alternate backend tried once after the primary fails.
func WithFallback(c Client) GatewayOption {
	return func(g *Gateway) { g.fallback = c }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithRetryConfig overrides the retry policy for the primary backend.
func WithRetryConfig(cfg *retry.Config) GatewayOption {
	return func(g *Gateway) { g.retryCfg = cfg }
}

// NewGateway creates a gateway around the primary backend.
func NewGateway(primary Client, logger *zap.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		primary:  primary,
		timeout:  DefaultRequestTimeout,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("llm.gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateResponse calls the primary backend with retry on transient
// failures, then the fallback backend once. Errors that come back are
// terminal and wrap apperrors.ErrGenerationFailed.
func (g *Gateway) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (string, error) {
	result, err := retry.DoWithResult(ctx, g.retryCfg, func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, callErr := g.primary.GenerateResponse(callCtx, prompt, systemMessage, temperature)
		if callErr != nil && !IsRetryable(callErr) {
			return "", retry.Permanent(callErr)
		}
		return resp, callErr
	})
	if err == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, ctx.Err())
	}

	if g.fallback == nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrGenerationFailed, err)
	}

	g.logger.Warn("primary backend failed, trying fallback",
		zap.String("primary_model", g.primary.Model()),
		zap.String("fallback_model", g.fallback.Model()),
		zap.Error(err))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, fbErr := g.fallback.GenerateResponse(callCtx, prompt, systemMessage, temperature)
	if fbErr != nil {
		g.logger.Error("fallback backend failed",
			zap.String("model", g.fallback.Model()),
			zap.Error(fbErr))
		return "", fmt.Errorf("%w: primary: %w; fallback: %w", apperrors.ErrGenerationFailed, err, fbErr)
	}

	return result, nil
}

// Model returns the primary backend's model name.
func (g *Gateway) Model() string { return g.primary.Model() }

var _ Client = (*Gateway)(nil)
