package gateway

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/circuitbreaker"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/provider"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/usage"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/validator"
)

const quotaExceededMessage = "Usage limit reached. Upgrade to Premium for unlimited scans."

// Result is the successful outcome of an analysis request.
type Result struct {
	Text         string
	Tier         identity.Tier
	AnalysesUsed int64
	Limit        int64
}

// UsageReport answers the read-only usage query.
type UsageReport struct {
	Tier         identity.Tier
	AnalysesUsed int64
	Limit        int64
}

type Config struct {
	FreeLimit       int64
	Prompt          string
	ProviderTimeout time.Duration

	// Circuit breaker thresholds for the provider call.
	BreakerMaxFailures     int           // Default: 5
	BreakerCooldown        time.Duration // Default: 30 seconds
	BreakerHalfOpenSuccess int           // Default: 1
}

// Gateway orchestrates one analysis request: resolve identity,
// validate the upload, consume a quota unit, call the provider.
//
// Ordering: validation runs BEFORE quota consumption, so a malformed
// upload never spends a unit. A provider failure after consumption is
// not refunded; the attempt was made and the provider call is not
// idempotent.
type Gateway struct {
	resolver  *identity.Resolver
	validator *validator.Validator
	store     usage.Store
	describer provider.Describer
	breaker   *circuitbreaker.CircuitBreaker
	cfg       Config
}

func New(resolver *identity.Resolver, v *validator.Validator, store usage.Store, d provider.Describer, cfg Config) *Gateway {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 30 * time.Second
	}
	if cfg.BreakerMaxFailures <= 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}
	if cfg.BreakerHalfOpenSuccess <= 0 {
		cfg.BreakerHalfOpenSuccess = 1
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		MaxFailures:     cfg.BreakerMaxFailures,
		Timeout:         cfg.BreakerCooldown,
		HalfOpenSuccess: cfg.BreakerHalfOpenSuccess,
		// Rejections of our request body are not downstream outages.
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, provider.ErrBadRequest)
		},
	})

	return &Gateway{
		resolver:  resolver,
		validator: v,
		store:     store,
		describer: d,
		breaker:   breaker,
		cfg:       cfg,
	}
}

func (g *Gateway) Analyze(ctx context.Context, header http.Header, payload validator.Payload) (*Result, error) {
	id, tier, err := g.resolver.Resolve(header)
	if err != nil {
		return nil, newError(KindUnauthenticated, "No identity provided", err)
	}

	if err := g.validator.Validate(payload); err != nil {
		return nil, mapValidationError(err)
	}

	limit := g.limitFor(tier)

	decision, err := g.store.TryConsume(ctx, id, limit)
	if err != nil {
		log.Printf("usage store failure for %s: %v", id, err)
		return nil, newError(KindInternal, "Internal server error", err)
	}

	if !decision.Admitted {
		return nil, newError(KindQuotaExceeded, quotaExceededMessage, nil)
	}

	text, err := g.describe(ctx, payload)
	if err != nil {
		// The consumed unit is not refunded.
		log.Printf("provider failure for %s (used=%d): %v", id, decision.Used, err)
		return nil, newError(KindProviderFailure, "Image analysis is temporarily unavailable", err)
	}

	return &Result{
		Text:         text,
		Tier:         tier,
		AnalysesUsed: decision.Used,
		Limit:        limit,
	}, nil
}

func (g *Gateway) Usage(ctx context.Context, header http.Header) (*UsageReport, error) {
	id, tier, err := g.resolver.Resolve(header)
	if err != nil {
		return nil, newError(KindUnauthenticated, "No identity provided", err)
	}

	used, err := g.store.Peek(ctx, id)
	if err != nil {
		log.Printf("usage store failure for %s: %v", id, err)
		return nil, newError(KindInternal, "Internal server error", err)
	}

	return &UsageReport{
		Tier:         tier,
		AnalysesUsed: used,
		Limit:        g.limitFor(tier),
	}, nil
}

// ResetUsage is the administrative counter reset exposed to the admin
// API (billing-cycle rollover). It never runs on the request path.
func (g *Gateway) ResetUsage(ctx context.Context, id identity.Identity) error {
	if err := g.store.Reset(ctx, id); err != nil {
		log.Printf("usage reset failure for %s: %v", id, err)
		return newError(KindInternal, "Internal server error", err)
	}
	return nil
}

// BreakerState reports the provider circuit state for /health.
func (g *Gateway) BreakerState() circuitbreaker.State {
	return g.breaker.State()
}

func (g *Gateway) limitFor(tier identity.Tier) int64 {
	if tier == identity.TierPremium {
		return usage.Unlimited
	}
	return g.cfg.FreeLimit
}

// describe runs the provider call under its own timeout and the
// circuit breaker. No usage-store lock is held here.
func (g *Gateway) describe(ctx context.Context, payload validator.Payload) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.cfg.ProviderTimeout)
	defer cancel()

	var text string
	err := g.breaker.Call(func() error {
		var callErr error
		text, callErr = g.describer.Describe(callCtx, payload.Data, payload.ContentType, g.cfg.Prompt)
		return callErr
	})

	return text, err
}

func mapValidationError(err error) *Error {
	switch {
	case errors.Is(err, validator.ErrUnsupportedType):
		return newError(KindUnsupportedType, "Unsupported image type. Use JPEG, PNG or WebP", err)
	case errors.Is(err, validator.ErrTooLarge):
		return newError(KindTooLarge, "Image exceeds the maximum allowed size", err)
	case errors.Is(err, validator.ErrEmptyPayload):
		return newError(KindEmptyPayload, "Uploaded image is empty", err)
	default:
		return newError(KindInternal, "Internal server error", err)
	}
}
