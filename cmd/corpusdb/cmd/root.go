// Package cmd provides the CLI commands for CorpusDB.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corpusdb/corpusdb/internal/errors"
	"github.com/corpusdb/corpusdb/pkg/version"
)

// NewRootCmd creates the root command for the corpusdb CLI.
func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "corpusdb",
		Short: "Vector database for document corpora",
		Long: `CorpusDB stores libraries of documents split into text chunks,
embeds every chunk, and serves k nearest neighbour search over a
family of vector indices through an HTTP JSON API.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("corpusdb version {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")

	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newSeedCmd(&configPath))
	cmd.AddCommand(newConfigCmd(&configPath))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
	}
	return err
}
