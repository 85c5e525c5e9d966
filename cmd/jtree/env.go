package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lattice-substrate/json-tree/jtprint"
)

// cliConfig carries the environment-tunable knobs. Command-line flags
// override these.
type cliConfig struct {
	indent     int
	maxDepth   int
	arenaLimit int
}

// loadConfig layers an optional .env file (working directory, then
// ~/.jtree.env) over the process environment and reads the JTREE_*
// variables. Unset or malformed values fall back to defaults.
func loadConfig() cliConfig {
	locations := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".jtree.env"))
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			godotenv.Overload(loc)
		}
	}

	return cliConfig{
		indent:     envInt("JTREE_INDENT", jtprint.DefaultIndent),
		maxDepth:   envInt("JTREE_MAX_DEPTH", 0),
		arenaLimit: envInt("JTREE_ARENA_LIMIT", 0),
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
