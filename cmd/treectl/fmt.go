package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BillPolly/treekit/pkg/format"
)

func init() {
	rootCmd.AddCommand(newFmtCmd())
}

func newFmtCmd() *cobra.Command {
	var (
		indent int
		write  bool
	)

	cmd := &cobra.Command{
		Use:   "fmt <file>",
		Short: "Reformat a document in its own format",
		Long: `The fmt command parses a file and re-serializes it with consistent
indentation. With --write the file is rewritten in place; otherwise the
result goes to stdout.

Example:
  treectl fmt config.json
  treectl fmt config.json --write --indent 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(args, indent, write)
		},
	}

	cmd.Flags().IntVar(&indent, "indent", 0, "Indent width for the output (default from config)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite the file in place")

	return cmd
}

func runFmt(args []string, indent int, write bool) error {
	path := args[0]
	if indent <= 0 {
		indent = config.Indent
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	text := format.Normalize(string(data))

	registry := format.DefaultRegistry()
	det, ok := registry.Detect(text)
	if !ok {
		return fmt.Errorf("no handler recognized %s", path)
	}
	handler, err := registry.Get(det.Format)
	if err != nil {
		return err
	}

	root, err := handler.Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	out, err := handler.Serialize(root, strings.Repeat(" ", indent))
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}

	if write {
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to rewrite file: %w", err)
		}
		printInfo("Formatted %s\n", path)
		return nil
	}
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}
