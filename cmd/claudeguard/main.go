// Package main is the entry point for the claudeguard CLI.
package main

import (
	"os"

	"github.com/thoreinstein/claudeguard/cmd/claudeguard/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
