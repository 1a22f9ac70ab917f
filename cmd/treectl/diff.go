package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/BillPolly/treekit/pkg/format"
	"github.com/BillPolly/treekit/pkg/node"
)

func init() {
	rootCmd.AddCommand(newDiffCmd())
}

// errDifferences signals a clean "documents differ" result. main turns it
// into exit code 1 without printing an error.
var errDifferences = errors.New("documents differ")

func newDiffCmd() *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "diff <file-a> <file-b>",
		Short: "Compare two documents structurally",
		Long: `The diff command parses both files (each in its own detected format),
serializes the trees into a common format, and prints a line diff. Two
documents that differ only in formatting or syntax compare equal.

Example:
  treectl diff old.json new.json
  treectl diff config.json config.yaml --as yaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args, as)
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "Common format for comparison (default from config)")

	return cmd
}

func runDiff(args []string, as string) error {
	if as == "" {
		as = config.Format
	}

	registry := format.DefaultRegistry()
	common, err := registry.Get(as)
	if err != nil {
		return err
	}
	indent := strings.Repeat(" ", config.Indent)

	canonical := func(path string) (string, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		text := format.Normalize(string(data))
		det, ok := registry.Detect(text)
		if !ok {
			return "", fmt.Errorf("no handler recognized %s", path)
		}
		printVerbose("%s: detected %s\n", path, det.Format)
		handler, err := registry.Get(det.Format)
		if err != nil {
			return "", err
		}
		var root *node.Node
		if root, err = handler.Parse(text); err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return common.Serialize(root, indent)
	}

	textA, err := canonical(args[0])
	if err != nil {
		return err
	}
	textB, err := canonical(args[1])
	if err != nil {
		return err
	}

	if textA == textB {
		printInfo("%s\n", color.GreenString("Documents are structurally identical"))
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(textA, textB)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	printDiffs(diffs)
	return errDifferences
}

func printDiffs(diffs []diffmatchpatch.Diff) {
	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				fmt.Println(color.GreenString("+ %s", line))
			case diffmatchpatch.DiffDelete:
				fmt.Println(color.RedString("- %s", line))
			default:
				fmt.Printf("  %s\n", line)
			}
		}
	}
}
