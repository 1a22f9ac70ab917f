package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/BillPolly/treekit/pkg/format"
)

func init() {
	rootCmd.AddCommand(newDetectCmd())
}

func newDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Detect the format of a document",
		Long: `The detect command runs format detection over a file and reports the
matched format together with the detector's confidence.

Example:
  treectl detect config.yaml
  treectl detect notes.txt --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args)
		},
	}
	return cmd
}

func runDetect(args []string) error {
	path := args[0]

	printVerbose("Reading %s\n", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	det, ok := format.DefaultRegistry().Detect(string(data))
	if !ok {
		return fmt.Errorf("no handler recognized %s", path)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"file":       path,
			"format":     det.Format,
			"confidence": det.Confidence,
		})
	}

	printInfo("%s: %s (confidence %.2f)\n",
		path, color.GreenString(det.Format), det.Confidence)
	return nil
}
