// Package main is the entry point for the relay CLI.
package main

import (
	"os"

	"github.com/relay-build/relay/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
