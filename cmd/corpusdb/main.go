// Package main provides the entry point for the corpusdb CLI.
package main

import (
	"os"

	"github.com/corpusdb/corpusdb/cmd/corpusdb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
