// Package main is the entry point for the Sqlpilot CLI application.
// It turns natural-language questions into safe, repaired SQL.
package main

import (
	"sqlpilot/cli/cmd"
)

func main() {
	cmd.Execute()
}
