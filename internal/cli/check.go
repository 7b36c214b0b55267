package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emergency-guidance/internal/config"
	"emergency-guidance/internal/provider"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe configured LLM providers and report availability",
	Run: func(cmd *cobra.Command, _ []string) {
		cfg := config.Load()
		providers := buildProviders(cmd.Context(), cfg)
		if len(providers) == 0 {
			fmt.Println("no providers configured (set OPENAI_API_KEY, ANTHROPIC_API_KEY, or GEMINI_API_KEY)")
			os.Exit(1)
		}

		orch := provider.NewOrchestrator(providers, cfg.LogLevel)
		avail := orch.CheckAvailability(cmd.Context())

		out, err := json.MarshalIndent(avail, "", "  ")
		if err != nil {
			exitErr("encode availability", err)
		}
		fmt.Println(string(out))

		if !avail.Available {
			os.Exit(1)
		}
	},
}
