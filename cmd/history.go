// Copyright (c) 2025 Sqlpilot
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past requests and the SQL generated for them",
	RunE: func(cmd *cobra.Command, args []string) error {
		return historyListCmd.RunE(cmd, args)
	},
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		hist, err := a.history()
		if err != nil {
			return err
		}
		entries, err := hist.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Println("No history yet. Try: sqlpilot ask \"...\"")
			return nil
		}
		data := pterm.TableData{{"ID", "When", "Request", "SQL"}}
		for _, e := range entries {
			data = append(data, []string{
				shortID(e.ID),
				e.Timestamp.Local().Format("2006-01-02 15:04"),
				e.Query,
				e.SQL,
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one entry; a unique ID prefix is enough",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		hist, err := a.history()
		if err != nil {
			return err
		}
		id, err := hist.Resolve(args[0])
		if err != nil {
			return err
		}
		removed, err := hist.Delete(id)
		if err != nil {
			return err
		}
		if !removed {
			return errors.New("no history entry " + args[0])
		}
		pterm.Println("✅ Entry deleted")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyDeleteCmd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
