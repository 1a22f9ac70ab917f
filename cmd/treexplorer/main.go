package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/BillPolly/treekit/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse flags first (before positional args)
	args := os.Args[1:]
	debugMode := false

	// Extract --debug/-d flag
	filteredArgs := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--debug" || arg == "-d" {
			debugMode = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	// Initialize logger (must be before any logging calls)
	if err := logger.Init(logger.Options{
		Enabled: debugMode,
		Level:   slog.LevelDebug,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	if filteredArgs[0] == "--help" || filteredArgs[0] == "-h" {
		printHelp()
		os.Exit(0)
	}

	if filteredArgs[0] == "--version" || filteredArgs[0] == "-v" {
		fmt.Printf("treexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	filePath := filteredArgs[0]
	logger.Info("starting treexplorer", "path", filePath, "debug", debugMode)

	if _, err := os.Stat(filePath); err != nil {
		logger.Error("document not found", "path", filePath, "error", err)
		fmt.Fprintf(os.Stderr, "Error: file not found: %s\n", filePath)
		os.Exit(1)
	}

	m, err := NewModel(filePath)
	if err != nil {
		logger.Error("failed to open document", "path", filePath, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	finalModel, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	// Clean up resources
	if model, ok := finalModel.(Model); ok {
		model.Close()
	}

	logger.Info("treexplorer exited normally")
	logger.Close()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: treexplorer [options] <file>\n")
	fmt.Fprintf(os.Stderr, "Try 'treexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("treexplorer - Interactive TUI for hierarchical documents")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  treexplorer [options] <file>")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Launches an interactive terminal UI for exploring and editing")
	fmt.Println("  JSON, YAML, XML, and Markdown documents.")
	fmt.Println()
	fmt.Println("  Features:")
	fmt.Println("    - Tree view with expand/collapse and collapsed summaries")
	fmt.Println("    - Inline editing of keys and values (with type coercion)")
	fmt.Println("    - Add, delete, and rename nodes")
	fmt.Println("    - Raw source view (s)")
	fmt.Println("    - Jump to path (Ctrl+G), copy path/value to clipboard")
	fmt.Println("    - Expansion state persists between sessions")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    ↑/k, ↓/j    Navigate up/down")
	fmt.Println("    →/l, Enter  Expand node")
	fmt.Println("    ←/h         Collapse node / go to parent")
	fmt.Println("    e           Edit value")
	fmt.Println("    r           Rename key")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -d, --debug    Enable debug logging to ~/.treekit/logs/")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show version information")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  treexplorer config.json")
	fmt.Println("  treexplorer notes.md")
	fmt.Println()
	fmt.Println("For non-interactive operations, use the 'treectl' command instead.")
}
