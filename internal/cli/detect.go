package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"emergency-guidance/internal/anonymizer"
)

var detectShowAnonymized bool

var detectCmd = &cobra.Command{
	Use:   "detect [text]",
	Short: "Report PII found in text (reads stdin when no argument is given)",
	Long: "Runs the anonymizer's detection pass over the given text and prints\n" +
		"per-category counts. Diagnostic only — the request path always\n" +
		"anonymizes without a separate detection step.",
	Args: cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			text = string(data)
		}

		anon := anonymizer.New()
		out, err := json.MarshalIndent(anon.Detect(text), "", "  ")
		if err != nil {
			exitErr("encode detection", err)
		}
		fmt.Println(string(out))

		if detectShowAnonymized {
			fmt.Println(strings.TrimRight(anon.AnonymizeText(text), "\n"))
		}
	},
}

func init() {
	detectCmd.Flags().BoolVar(&detectShowAnonymized, "anonymize", false,
		"also print the anonymized text")
}
