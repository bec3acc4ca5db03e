package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corpusdb/corpusdb/internal/api"
	"github.com/corpusdb/corpusdb/internal/profiling"
	"github.com/corpusdb/corpusdb/pkg/version"
)

func newServeCmd(configPath *string) *cobra.Command {
	var addr string
	var profileCPU, profileMem, profileTrace string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the CorpusDB HTTP server",
		Long: `Open the chunk store, build every configured vector index from the
committed chunks, and serve the HTTP JSON API until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stop, err := profiling.Start(profileCPU, profileTrace)
			if err != nil {
				return err
			}
			defer stop()
			defer func() {
				if profileMem != "" {
					if err := profiling.WriteHeap(profileMem); err != nil {
						slog.Warn("heap profile failed", slog.String("error", err.Error()))
					}
				}
			}()
			return runServe(cmd, *configPath, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file on shutdown")
	cmd.Flags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")
	return cmd
}

func runServe(cmd *cobra.Command, configPath, addr string) error {
	app, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	if addr != "" {
		app.cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.log.Info("starting corpusdb",
		slog.String("version", version.Short()),
		slog.String("addr", app.cfg.Server.Addr),
		slog.String("db_path", app.cfg.Storage.Path),
		slog.Any("indices", app.cfg.Index.Types))

	if err := app.rebuild(ctx); err != nil {
		return err
	}

	return api.NewServer(app.svc, app.log).Run(ctx, app.cfg.Server.Addr)
}
