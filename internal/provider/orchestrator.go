package provider

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"emergency-guidance/internal/logger"
)

// Sentinel errors for provider operations.
var (
	// ErrInvalidConfig is returned by a provider constructor when required
	// credentials are missing.
	ErrInvalidConfig = errors.New("invalid provider configuration")

	// ErrAllProvidersUnavailable is returned by Generate when every
	// configured provider attempt failed, or none are configured.
	ErrAllProvidersUnavailable = errors.New("all LLM providers unavailable")
)

// availabilityProbeTimeout bounds each health-check call. Probes use a
// trivial prompt; a provider that cannot answer it quickly is down for
// practical purposes.
const availabilityProbeTimeout = 15 * time.Second

// Orchestrator tries an ordered list of providers and returns the first
// successful response. Failure policy: on a provider error, log it and
// advance — never retry the same provider within a request.
type Orchestrator struct {
	providers []Provider
	log       *logger.Logger
}

// NewOrchestrator builds an orchestrator over the given ordered providers
// (primary first). Unconfigured providers are simply not in the slice; an
// empty slice is allowed and makes every Generate call fail over to the
// knowledge base.
func NewOrchestrator(providers []Provider, logLevel string) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		log:       logger.New("ORCHESTRATOR", logLevel),
	}
}

// Providers returns the configured provider names in attempt order.
func (o *Orchestrator) Providers() []string {
	names := make([]string, len(o.providers))
	for i, p := range o.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate sends the prompt pair to each provider in order and returns the
// first successful raw text response. When forceFallback is set the primary
// provider is skipped. Returns ErrAllProvidersUnavailable (with the last
// provider error joined) when the list is exhausted.
func (o *Orchestrator) Generate(ctx context.Context, systemPrompt, userPrompt string, forceFallback bool) (string, error) {
	start := 0
	if forceFallback && len(o.providers) > 0 {
		start = 1
	}

	var lastErr error
	for _, p := range o.providers[start:] {
		o.log.Debugf("provider_call", "calling %s", p.Name())
		text, err := p.Generate(ctx, systemPrompt, userPrompt)
		if err == nil {
			o.log.Infof("provider_call", "%s responded (%d bytes)", p.Name(), len(text))
			return text, nil
		}
		lastErr = err
		o.log.Errorf("provider_call", "%s failed: %v", p.Name(), err)
	}

	if lastErr != nil {
		return "", errors.Join(ErrAllProvidersUnavailable, lastErr)
	}
	return "", ErrAllProvidersUnavailable
}

// Availability reports per-provider reachability from a health probe.
type Availability struct {
	Providers map[string]bool `json:"providers"`
	Available bool            `json:"available"`
}

// CheckAvailability probes every configured provider concurrently with a
// trivial prompt. Used for health reporting only — it never gates the
// request path.
func (o *Orchestrator) CheckAvailability(ctx context.Context) Availability {
	avail := Availability{Providers: make(map[string]bool, len(o.providers))}

	results := make([]bool, len(o.providers))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range o.providers {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(gctx, availabilityProbeTimeout)
			defer cancel()
			_, err := p.Generate(probeCtx, "", "test")
			if err != nil {
				o.log.Debugf("health_check", "%s probe failed: %v", p.Name(), err)
			}
			results[i] = err == nil
			return nil
		})
	}
	g.Wait() //nolint:errcheck // probe goroutines always return nil

	for i, p := range o.providers {
		avail.Providers[p.Name()] = results[i]
		avail.Available = avail.Available || results[i]
	}
	return avail
}
