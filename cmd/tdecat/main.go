// Package main provides the tdecat command-line interface.
package main

import (
	"os"

	"github.com/tdecat/tdecat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
