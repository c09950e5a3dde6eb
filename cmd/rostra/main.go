// Package main provides the rostra CLI entry point.
package main

import (
	"github.com/rostra-labs/rostra-cli/internal/adapters/driving/cli"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
