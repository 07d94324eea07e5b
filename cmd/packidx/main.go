// Package main is the entry point for the packidx CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/packidx/cmd/packidx/commands"
	pkerrors "github.com/thoreinstein/packidx/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if s := pkerrors.SuggestionOf(err); s != "" {
			fmt.Fprintln(os.Stderr, "Hint:", s)
		}
		os.Exit(pkerrors.ExitCode(err))
	}
}
