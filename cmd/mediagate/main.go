// Package main is the entry point for the mediagate application.
package main

import (
	"os"

	"github.com/mediagate/mediagate/cmd/mediagate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
