// Package xdg resolves the XDG Base Directory locations used by sqlpilot.
//
// Configuration (config.json, the schema document) lives under the config
// dir; query history lives under the state dir. Both are created private
// (0700) on first use because the config may reference connection details.
package xdg

import (
	"os"
	"path/filepath"
)

// App is the directory name used under every XDG base.
const App = "sqlpilot"

// ConfigDir returns $XDG_CONFIG_HOME/sqlpilot, falling back to ~/.config/sqlpilot.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/sqlpilot, falling back to ~/.local/state/sqlpilot.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", ".local", "state")
}

func resolve(env string, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, App)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}
