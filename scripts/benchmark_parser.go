// Command benchmark_parser turns `go test -bench` output from the format
// handler benchmarks into a markdown report.
//
// Usage:
//
//	go test -bench=. -benchmem ./pkg/format | go run scripts/benchmark_parser.go
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult represents a parsed benchmark result.
type BenchmarkResult struct {
	Name        string
	Operation   string // "Parse", "Serialize", "Detect"
	Format      string // "JSON", "YAML", "XML", "Markdown"
	Iterations  int
	NsPerOp     float64
	MBPerSec    float64
	BytesPerOp  int64
	AllocsPerOp int64
}

var (
	inputFile = flag.String(
		"input",
		"",
		"Input file with benchmark output (stdin if not specified)",
	)
	outputFile = flag.String("output", "", "Output markdown file (stdout if not specified)")
	quiet      = flag.Bool("quiet", false, "Suppress progress output")
)

func main() {
	flag.Parse()

	var scanner *bufio.Scanner
	if *inputFile != "" {
		f, err := os.Open(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening input file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		scanner = bufio.NewScanner(f)
	} else {
		scanner = bufio.NewScanner(os.Stdin)
	}

	results := parseBenchmarks(scanner)
	if !*quiet {
		fmt.Fprintf(os.Stderr, "Parsed %d benchmark results\n", len(results))
	}

	report := generateMarkdownReport(results)

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(report), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		if !*quiet {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", *outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, report)
	}
}

var knownFormats = []string{"JSON", "YAML", "XML", "Markdown"}

func parseBenchmarks(scanner *bufio.Scanner) []BenchmarkResult {
	var results []BenchmarkResult

	// BenchmarkParseJSON-8   10000   12450 ns/op   35.2 MB/s   4096 B/op   8 allocs/op
	benchmarkRegex := regexp.MustCompile(
		`^(Benchmark\S+?)(?:-\d+)?\s+(\d+)\s+([\d.]+)\s+ns/op(?:\s+([\d.]+)\s+MB/s)?(?:\s+([\d.]+)\s+B/op)?(?:\s+([\d.]+)\s+allocs/op)?`,
	)

	for scanner.Scan() {
		line := scanner.Text()

		// Unwrap `go test -json` events
		var testEvent map[string]any
		if err := json.Unmarshal([]byte(line), &testEvent); err == nil {
			if output, ok := testEvent["Output"].(string); ok {
				line = output
			}
		}

		matches := benchmarkRegex.FindStringSubmatch(strings.TrimSpace(line))
		if matches == nil {
			continue
		}

		name := strings.TrimPrefix(matches[1], "Benchmark")
		operation, formatName := splitBenchmarkName(name)
		if operation == "" {
			continue
		}

		iterations, _ := strconv.Atoi(matches[2])
		nsPerOp, _ := strconv.ParseFloat(matches[3], 64)
		mbPerSec, _ := strconv.ParseFloat(matches[4], 64)

		var bytesPerOp, allocsPerOp int64
		if matches[5] != "" {
			bytesPerOp, _ = strconv.ParseInt(matches[5], 10, 64)
		}
		if matches[6] != "" {
			allocsPerOp, _ = strconv.ParseInt(matches[6], 10, 64)
		}

		results = append(results, BenchmarkResult{
			Name:        matches[1],
			Operation:   operation,
			Format:      formatName,
			Iterations:  iterations,
			NsPerOp:     nsPerOp,
			MBPerSec:    mbPerSec,
			BytesPerOp:  bytesPerOp,
			AllocsPerOp: allocsPerOp,
		})
	}

	return results
}

// splitBenchmarkName separates "ParseJSON" into ("Parse", "JSON").
// Names without a format suffix ("Detect") keep an empty format.
func splitBenchmarkName(name string) (string, string) {
	for _, f := range knownFormats {
		if strings.HasSuffix(name, f) {
			return strings.TrimSuffix(name, f), f
		}
	}
	return name, ""
}

func generateMarkdownReport(results []BenchmarkResult) string {
	var sb strings.Builder

	sb.WriteString("# Format Handler Benchmarks\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	if len(results) == 0 {
		sb.WriteString("No benchmark results found.\n")
		return sb.String()
	}

	// Group by operation for per-format comparison tables
	operations := make(map[string][]BenchmarkResult)
	for _, r := range results {
		operations[r.Operation] = append(operations[r.Operation], r)
	}

	opNames := make([]string, 0, len(operations))
	for op := range operations {
		opNames = append(opNames, op)
	}
	sort.Strings(opNames)

	for _, op := range opNames {
		group := operations[op]
		sort.Slice(group, func(i, j int) bool { return group[i].NsPerOp < group[j].NsPerOp })

		sb.WriteString(fmt.Sprintf("## %s\n\n", op))
		sb.WriteString("| Format | ns/op | MB/s | B/op | allocs/op |\n")
		sb.WriteString("|--------|------:|-----:|-----:|----------:|\n")
		for _, r := range group {
			name := r.Format
			if name == "" {
				name = "(all)"
			}
			throughput := "-"
			if r.MBPerSec > 0 {
				throughput = fmt.Sprintf("%.1f", r.MBPerSec)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d |\n",
				name, formatNs(r.NsPerOp), throughput, r.BytesPerOp, r.AllocsPerOp))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatNs renders nanoseconds in a readable unit
func formatNs(ns float64) string {
	switch {
	case ns >= 1e9:
		return fmt.Sprintf("%.2fs", ns/1e9)
	case ns >= 1e6:
		return fmt.Sprintf("%.2fms", ns/1e6)
	case ns >= 1e3:
		return fmt.Sprintf("%.2fµs", ns/1e3)
	default:
		return fmt.Sprintf("%.0fns", ns)
	}
}
