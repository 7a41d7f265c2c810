// Package main is the entry point for the relnorm binary.
package main

import (
	"os"

	"relnorm/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
