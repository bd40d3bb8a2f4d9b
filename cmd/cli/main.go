// Package main is the offline inspector for the bot's command tree.
package main

import (
	"fmt"
	"os"

	"github.com/keshon/cmdtree/cmd/cli/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
