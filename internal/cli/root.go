// Package cli implements the guidance service command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"emergency-guidance/internal/config"
	"emergency-guidance/internal/provider"
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "guidance",
	Short: "AI emergency guidance service",
	Long: "Turns free-text emergency descriptions into structured, safety-checked\n" +
		"severity assessments and first aid instructions, with deterministic\n" +
		"fallback when no LLM provider is reachable.",
}

func init() {
	RootCmd.AddCommand(serveCmd, checkCmd, detectCmd)
}

// buildProviders constructs the ordered provider list from configuration:
// OpenAI primary, Anthropic secondary, Gemini tertiary. Providers without
// credentials are skipped silently; a fully empty list is valid and leaves
// the service running on the fallback knowledge base alone.
func buildProviders(ctx context.Context, cfg *config.Config) []provider.Provider {
	timeout := time.Duration(cfg.ProviderTimeoutSecs) * time.Second
	var providers []provider.Provider

	if p, err := provider.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIMaxTokens, timeout); err == nil {
		providers = append(providers, p)
	}
	if p, err := provider.NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicMaxTokens, timeout); err == nil {
		providers = append(providers, p)
	}
	if p, err := provider.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
		providers = append(providers, p)
	}
	return providers
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
