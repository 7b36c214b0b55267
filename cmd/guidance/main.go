// Command guidance runs the AI emergency guidance service.
//
// The service accepts free-text emergency descriptions and returns
// structured severity assessments and first aid instructions. Text is
// PII-scrubbed before any model call, model output is safety-validated and
// sanitized on the way back, and a built-in knowledge base answers when
// every provider is unreachable.
//
// Usage:
//
//	# Run the HTTP service
//	OPENAI_API_KEY=... guidance serve
//
//	# Probe provider availability
//	guidance check
//
//	# Inspect PII detection on a piece of text
//	echo "call me at 555-123-4567" | guidance detect
package main

import (
	"os"

	"emergency-guidance/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
