// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sqlpilot/cli/internal/schema"
)

var pullSchemaName string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the schema document sent with every generation prompt",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the schema document",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		doc, err := schema.Load(a.cfg.Schema.Path)
		if err != nil {
			return err
		}
		pterm.Println(hintStyle.Sprint(a.cfg.Schema.Path))
		pterm.Println()
		pterm.Println(doc)
		return nil
	},
}

var schemaSetCmd = &cobra.Command{
	Use:   "set <file>",
	Short: "Use a Markdown file as the schema document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if err := schema.Save(a.cfg.Schema.Path, string(data)); err != nil {
			return err
		}
		pterm.Println("✅ Schema document saved to " + a.cfg.Schema.Path)
		return nil
	},
}

var schemaPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Describe the connected PostgreSQL database and save it as the schema document",
	Long: `The pull command reads tables, columns, primary keys and CHECK ... IN (...)
constraints from the connected database and writes them as Markdown to the
schema document path.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		pool, err := a.connect(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		stop := startSpinner("Reading schema " + pullSchemaName)
		tables, err := schema.NewInspector(pool).Tables(cmd.Context(), pullSchemaName)
		stop()
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			pterm.Println("⚠️  No tables found in schema " + pullSchemaName)
			return nil
		}
		if err := schema.Save(a.cfg.Schema.Path, schema.Render(tables)); err != nil {
			return err
		}
		pterm.Printf("✅ %d table(s) described in %s\n", len(tables), a.cfg.Schema.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaShowCmd, schemaSetCmd, schemaPullCmd)
	schemaPullCmd.Flags().StringVar(&pullSchemaName, "schema", "public", "Database schema to describe")
}
