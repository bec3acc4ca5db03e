package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var libraries, documents, chunks int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the corpus with fake data",
		Long: `Create libraries, documents and chunks through the regular service
operations, so every chunk is embedded exactly as API writes would be.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, *configPath, libraries, documents, chunks)
		},
	}

	cmd.Flags().IntVar(&libraries, "libraries", 2, "Number of libraries to create")
	cmd.Flags().IntVar(&documents, "documents", 3, "Documents per library")
	cmd.Flags().IntVar(&chunks, "chunks", 5, "Chunks per document")
	return cmd
}

func runSeed(cmd *cobra.Command, configPath string, libraries, documents, chunks int) error {
	app, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.svc.Seed(cmd.Context(), libraries, documents, chunks)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d libraries, %d documents, %d chunks into %s\n",
		result.Libraries, result.Documents, result.Chunks, app.cfg.Storage.Path)
	return nil
}
