// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionFlags(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{cmd: askCmd, flags: []string{"mode", "run", "max-repairs", "no-history", "no-stats"}},
		{cmd: runCmd, flags: []string{"sql", "max-repairs", "no-stats"}},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name(), func(t *testing.T) {
			for _, name := range tt.flags {
				f := tt.cmd.Flags().Lookup(name)
				require.NotNil(t, f, name)
				assert.NotEmpty(t, f.Usage, name)
			}
		})
	}
}
