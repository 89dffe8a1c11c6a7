// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema supplies the database description spliced into generation
// prompts. The text is either a user-provided Markdown document or one
// introspected from a live PostgreSQL database.
package schema

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Placeholder is used when no schema document is available.
const Placeholder = "Schema documentation not available."

// Load returns the schema document at path, or Placeholder when the file is
// missing or empty. Other read errors are returned with the placeholder.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Placeholder, nil
	}
	if err != nil {
		return Placeholder, err
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Placeholder, nil
	}
	return text, nil
}

// Save writes a schema document to path with 0600 permissions.
func Save(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o600)
}
