package main

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// cliConfig holds defaults read from ~/.treectl.toml. Flags given on the
// command line always win over the file.
type cliConfig struct {
	Format string `toml:"format"`
	Indent int    `toml:"indent"`
	Color  *bool  `toml:"color"`
}

var config = cliConfig{
	Format: "json",
	Indent: 2,
}

// loadConfig reads ~/.treectl.toml if it exists. A missing file is not an
// error; a malformed one is reported in verbose mode and otherwise ignored.
func loadConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	path := filepath.Join(home, ".treectl.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := toml.Unmarshal(data, &config); err != nil {
		printVerbose("ignoring %s: %v\n", path, err)
		return
	}
	if config.Color != nil && !*config.Color {
		noColor = true
	}
	if config.Indent <= 0 || config.Indent > 16 {
		config.Indent = 2
	}
}
