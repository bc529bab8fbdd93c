package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ashureev/restwell/internal/cli/commands"
	"github.com/ashureev/restwell/internal/cli/ui"
)

func main() {
	if err := commands.Execute(); err != nil {
		if strings.Contains(err.Error(), "unknown command") || strings.Contains(err.Error(), "unknown flag") {
			ui.PrintError(os.Stderr, "%s", err)
			fmt.Fprintln(os.Stderr, "\nRun 'restwell --help' for usage.")
		}
		os.Exit(1)
	}
}
