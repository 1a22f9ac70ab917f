package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BillPolly/treekit/pkg/format"
)

func init() {
	rootCmd.AddCommand(newConvertCmd())
}

func newConvertCmd() *cobra.Command {
	var (
		toFormat string
		indent   int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document to another format",
		Long: `The convert command parses a file, detects its format, and re-serializes
the tree in the target format. The result goes to stdout unless --output
is given.

Example:
  treectl convert config.json --to yaml
  treectl convert data.xml --to json --indent 4 --output data.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args, toFormat, indent, output)
		},
	}

	cmd.Flags().StringVar(&toFormat, "to", "", "Target format (json, yaml, xml, markdown)")
	cmd.Flags().IntVar(&indent, "indent", 0, "Indent width for the output (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runConvert(args []string, toFormat string, indent int, output string) error {
	path := args[0]
	if indent <= 0 {
		indent = config.Indent
	}

	registry := format.DefaultRegistry()
	target, err := registry.Get(toFormat)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	text := format.Normalize(string(data))

	det, ok := registry.Detect(text)
	if !ok {
		return fmt.Errorf("no handler recognized %s", path)
	}
	printVerbose("Detected %s (confidence %.2f)\n", det.Format, det.Confidence)

	source, err := registry.Get(det.Format)
	if err != nil {
		return err
	}
	root, err := source.Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	out, err := target.Serialize(root, strings.Repeat(" ", indent))
	if err != nil {
		return fmt.Errorf("failed to serialize as %s: %w", toFormat, err)
	}

	if output != "" {
		if err := os.WriteFile(output, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		printInfo("Wrote %s\n", output)
		return nil
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}
