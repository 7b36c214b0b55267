// Package pipeline composes the guidance request pipeline: anonymize →
// cache lookup → provider orchestration → safety validation → sanitization
// → structured parsing → cache store, with deterministic knowledge-base
// fallback on any failure along the provider/validation path.
//
// The controller never propagates an unhandled failure: the only externally
// visible error conditions are an invalid inbound request and "fallback
// disabled and all providers failed". Fallback results are never cached, so
// a transient outage is not masked once providers recover.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"emergency-guidance/internal/anonymizer"
	"emergency-guidance/internal/cache"
	"emergency-guidance/internal/config"
	"emergency-guidance/internal/fallback"
	"emergency-guidance/internal/logger"
	"emergency-guidance/internal/metrics"
	"emergency-guidance/internal/models"
	"emergency-guidance/internal/parser"
	"emergency-guidance/internal/prompts"
	"emergency-guidance/internal/safety"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	// ErrServiceUnavailable is returned when all providers failed and
	// fallback responses are disabled by configuration.
	ErrServiceUnavailable = errors.New("LLM service unavailable and fallback is disabled")

	// errInvalidResponse marks a response the safety gate rejected. It is
	// internal: the caller only ever sees the fallback result it triggers.
	errInvalidResponse = errors.New("LLM response failed safety validation")
)

// Generator is the provider orchestration contract the pipeline depends on.
// *provider.Orchestrator satisfies it; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, forceFallback bool) (string, error)
}

// Pipeline is the per-process guidance controller. Construct once and share:
// per-request state lives on the stack, so concurrent requests need no
// cross-request locking. Only the runtime-tunable flags are guarded, for
// the config hot-reload path.
type Pipeline struct {
	anon  *anonymizer.Anonymizer
	store cache.Cache
	gen   Generator
	gate  *safety.Gate
	met   *metrics.Metrics
	log   *logger.Logger

	// descPrefixLen is fixed at construction: changing it at runtime would
	// silently diverge cache keys between requests.
	descPrefixLen int

	mu sync.RWMutex
	rt config.Runtime
}

// New builds a pipeline from its collaborators. The cache and generator are
// shared resources owned by the surrounding process; the pipeline treats
// both as black-box request/response collaborators.
func New(cfg *config.Config, store cache.Cache, gen Generator, met *metrics.Metrics) *Pipeline {
	return &Pipeline{
		anon:          anonymizer.New(),
		store:         store,
		gen:           gen,
		gate:          safety.New(cfg.LogLevel),
		met:           met,
		log:           logger.New("PIPELINE", cfg.LogLevel),
		descPrefixLen: cfg.DescKeyPrefix,
		rt: config.Runtime{
			LogLevel:            cfg.LogLevel,
			CacheTTLSecs:        cfg.CacheTTLSecs,
			EnableCaching:       cfg.EnableCaching,
			EnableAnonymization: cfg.EnableAnonymization,
			EnableFallback:      cfg.EnableFallback,
		},
	}
}

// ApplyRuntime installs reloaded runtime settings. Called by the config
// watcher; safe against in-flight requests.
func (p *Pipeline) ApplyRuntime(rt config.Runtime) {
	p.mu.Lock()
	p.rt = rt
	p.mu.Unlock()
	p.log.SetLevel(rt.LogLevel)
	p.log.Infof("config_reload", "caching=%t anonymization=%t fallback=%t ttl=%ds",
		rt.EnableCaching, rt.EnableAnonymization, rt.EnableFallback, rt.CacheTTLSecs)
}

func (p *Pipeline) runtime() config.Runtime {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rt
}

// Assess runs the pipeline for an assessment request.
func (p *Pipeline) Assess(ctx context.Context, req *models.AssessmentRequest) (*models.AssessmentResult, error) {
	p.met.RequestsTotal.Add(1)
	p.met.RequestsAssessment.Add(1)

	ectx := &req.EmergencyContext
	if err := ectx.Validate(); err != nil {
		return nil, err
	}
	rt := p.runtime()
	p.log.Infof("assess", "[%s] type=%s", ectx.EmergencyID, ectx.EmergencyType)

	anon := p.anonymize(ectx, rt)
	key := p.deriveKey(cache.NamespaceAssessment, anon)

	if rt.EnableCaching {
		if cached, ok := p.cachedAssessment(key, ectx.EmergencyID); ok {
			return cached, nil
		}
	}

	result, err := p.computeAssessment(ctx, anon)
	if err != nil {
		if !rt.EnableFallback {
			p.met.ServiceErrors.Add(1)
			return nil, errors.Join(ErrServiceUnavailable, err)
		}
		p.log.Warnf("fallback", "[%s] serving knowledge-base assessment: %v", ectx.EmergencyID, err)
		p.met.FallbacksServed.Add(1)
		return fallbackAssessment(ectx), nil
	}

	if rt.EnableCaching {
		p.cacheStore(key, result, rt)
	}
	return result, nil
}

// FirstAid runs the pipeline for a first aid request.
func (p *Pipeline) FirstAid(ctx context.Context, req *models.FirstAidRequest) (*models.FirstAidResult, error) {
	p.met.RequestsTotal.Add(1)
	p.met.RequestsFirstAid.Add(1)

	ectx := &req.EmergencyContext
	if err := ectx.Validate(); err != nil {
		return nil, err
	}
	rt := p.runtime()
	p.log.Infof("first_aid", "[%s] type=%s", ectx.EmergencyID, ectx.EmergencyType)

	anon := p.anonymize(ectx, rt)
	key := p.deriveKey(cache.NamespaceFirstAid, anon)

	if rt.EnableCaching {
		if cached, ok := p.cachedFirstAid(key, ectx.EmergencyID); ok {
			return cached, nil
		}
	}

	result, err := p.computeFirstAid(ctx, anon, req.SpecificConcern)
	if err != nil {
		if !rt.EnableFallback {
			p.met.ServiceErrors.Add(1)
			return nil, errors.Join(ErrServiceUnavailable, err)
		}
		p.log.Warnf("fallback", "[%s] serving knowledge-base first aid: %v", ectx.EmergencyID, err)
		p.met.FallbacksServed.Add(1)
		return fallbackFirstAid(ectx), nil
	}

	if rt.EnableCaching {
		p.cacheStore(key, result, rt)
	}
	return result, nil
}

// anonymize produces the scrubbed context copy, or passes the original
// through unchanged when anonymization is disabled.
func (p *Pipeline) anonymize(ectx *models.EmergencyContext, rt config.Runtime) *models.EmergencyContext {
	if !rt.EnableAnonymization {
		return ectx
	}
	p.met.ContextsAnonymized.Add(1)
	return p.anon.AnonymizeContext(ectx)
}

// deriveKey builds the cache key from the anonymized context. Only the
// category and a fixed-length prefix of the anonymized description feed the
// key; everything else (location, medical profile) deliberately does not
// affect caching.
func (p *Pipeline) deriveKey(namespace string, anon *models.EmergencyContext) string {
	return cache.Key(namespace, map[string]string{
		"type": string(anon.EmergencyType),
		"desc": cache.TruncateDescription(anon.Description, p.descPrefixLen),
	})
}

func (p *Pipeline) cachedAssessment(key, emergencyID string) (*models.AssessmentResult, bool) {
	raw, ok := p.store.Get(key)
	if !ok {
		p.met.CacheMiss(cache.NamespaceAssessment)
		return nil, false
	}
	var res models.AssessmentResult
	if err := json.Unmarshal(raw, &res); err != nil {
		p.log.Warnf("cache_read", "corrupt assessment entry %s: %v", key, err)
		p.store.Delete(key)
		p.met.CacheMiss(cache.NamespaceAssessment)
		return nil, false
	}
	p.met.CacheHit(cache.NamespaceAssessment)
	// The key is content-derived, not identifier-derived: re-echo the
	// identifier of the request being served.
	res.EmergencyID = emergencyID
	return &res, true
}

func (p *Pipeline) cachedFirstAid(key, emergencyID string) (*models.FirstAidResult, bool) {
	raw, ok := p.store.Get(key)
	if !ok {
		p.met.CacheMiss(cache.NamespaceFirstAid)
		return nil, false
	}
	var res models.FirstAidResult
	if err := json.Unmarshal(raw, &res); err != nil {
		p.log.Warnf("cache_read", "corrupt first aid entry %s: %v", key, err)
		p.store.Delete(key)
		p.met.CacheMiss(cache.NamespaceFirstAid)
		return nil, false
	}
	p.met.CacheHit(cache.NamespaceFirstAid)
	res.EmergencyID = emergencyID
	return &res, true
}

func (p *Pipeline) cacheStore(key string, result any, rt config.Runtime) {
	raw, err := json.Marshal(result)
	if err != nil {
		p.log.Warnf("cache_write", "marshal %s: %v", key, err)
		return
	}
	if !p.store.Set(key, raw, time.Duration(rt.CacheTTLSecs)*time.Second) {
		p.log.Warnf("cache_write", "set %s failed", key)
	}
}

// computeAssessment is the orchestrate → validate → sanitize → parse leg
// for assessments. Any returned error sends the caller to the fallback path.
func (p *Pipeline) computeAssessment(ctx context.Context, anon *models.EmergencyContext) (*models.AssessmentResult, error) {
	raw, err := p.generate(ctx, prompts.AssessmentSystem, prompts.Assessment(anon))
	if err != nil {
		return nil, err
	}
	outcome := p.gate.Validate(raw, safety.KindAssessment, true)
	if !outcome.IsValid {
		p.met.ValidationFailures.Add(1)
		p.log.Warnf("validate", "[%s] assessment rejected: %v", anon.EmergencyID, outcome.Errors)
		return nil, errInvalidResponse
	}
	return parser.ParseAssessment(safety.Sanitize(raw), anon), nil
}

// computeFirstAid is the same leg for first aid guidance.
func (p *Pipeline) computeFirstAid(ctx context.Context, anon *models.EmergencyContext, specificConcern string) (*models.FirstAidResult, error) {
	raw, err := p.generate(ctx, prompts.FirstAidSystem, prompts.FirstAid(anon, specificConcern))
	if err != nil {
		return nil, err
	}
	outcome := p.gate.Validate(raw, safety.KindFirstAid, true)
	if !outcome.IsValid {
		p.met.ValidationFailures.Add(1)
		p.log.Warnf("validate", "[%s] first aid rejected: %v", anon.EmergencyID, outcome.Errors)
		return nil, errInvalidResponse
	}
	return parser.ParseFirstAid(safety.Sanitize(raw), anon), nil
}

func (p *Pipeline) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	raw, err := p.gen.Generate(ctx, systemPrompt, userPrompt, false)
	if err != nil {
		p.met.ProviderFailures.Add(1)
		return "", err
	}
	p.met.RecordProviderLatency(time.Since(start))
	return raw, nil
}

// fallbackAssessment assembles a complete result from the knowledge base.
func fallbackAssessment(ectx *models.EmergencyContext) *models.AssessmentResult {
	fb := fallback.AssessmentFor(ectx.EmergencyType)
	return &models.AssessmentResult{
		Success:               true,
		EmergencyID:           ectx.EmergencyID,
		Severity:              fb.Severity,
		Assessment:            fb.Assessment,
		Recommendations:       fb.Recommendations,
		CallEmergencyServices: fb.CallEmergencyServices,
		Disclaimer:            models.AssessmentDisclaimer,
		ProcessedAt:           time.Now().UTC(),
	}
}

// fallbackFirstAid assembles a complete result from the knowledge base.
func fallbackFirstAid(ectx *models.EmergencyContext) *models.FirstAidResult {
	return &models.FirstAidResult{
		Success:          true,
		EmergencyID:      ectx.EmergencyID,
		EmergencyType:    ectx.EmergencyType,
		Steps:            fallback.FirstAidFor(ectx.EmergencyType),
		CriticalWarnings: fallback.WarningsFor(ectx.EmergencyType),
		WhenToStop:       parser.WhenToStop,
		Disclaimer:       models.FirstAidDisclaimer,
		ProcessedAt:      time.Now().UTC(),
	}
}
