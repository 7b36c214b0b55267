// Package provider contains the LLM provider clients and the ordered
// fallback orchestrator.
//
// A provider is a plain "send two prompts, get text back" collaborator:
// no streaming, no structured-output mode, no retries. All structure is
// recovered later by the parser, and all failure policy lives in the
// orchestrator. Providers are modeled as entries in an ordered slice, not
// an inheritance tree — the orchestrator is a fold over that slice that
// stops at the first success.
package provider

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Provider is one configured LLM backend.
type Provider interface {
	// Name identifies the provider in logs and health reports.
	Name() string

	// Generate sends the prompt pair and returns the raw response text.
	// The call blocks until the provider answers or the client timeout
	// (or ctx) expires.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// newHTTPClient builds the HTTP client shared by the raw-HTTP providers.
// Outbound LLM API connections are long-lived HTTP/2 streams; the h2
// ReadIdleTimeout enables keepalive pings so a silently dead connection is
// detected instead of stalling a request for the full timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if h2, err := http2.ConfigureTransports(tr); err == nil {
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: tr,
	}
}
