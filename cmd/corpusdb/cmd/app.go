package cmd

import (
	"context"
	"log/slog"

	"github.com/corpusdb/corpusdb/internal/config"
	"github.com/corpusdb/corpusdb/internal/embed"
	"github.com/corpusdb/corpusdb/internal/index"
	"github.com/corpusdb/corpusdb/internal/logging"
	"github.com/corpusdb/corpusdb/internal/service"
	"github.com/corpusdb/corpusdb/internal/store"
)

// app holds the wired application stack shared by serve and seed.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	store *store.Store
	svc   *service.Service
}

// newApp loads configuration, sets up logging, opens the store and wires
// the embedder, index manager and service. The caller owns a.Close.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.Setup(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	st, err := store.Open(cfg.Storage.Path, log)
	if err != nil {
		return nil, err
	}

	embedder := embed.NewCachedEmbedder(
		embed.NewStaticEmbedder(cfg.Embeddings.Dimensions),
		cfg.Embeddings.CacheSize,
	)
	manager, err := index.NewManager(cfg.ManagerConfig(), embedder, service.Source{Store: st}, log)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   log,
		store: st,
		svc:   service.New(st, embedder, manager, log),
	}, nil
}

// rebuild batch-builds every index from the committed chunks.
func (a *app) rebuild(ctx context.Context) error {
	return a.svc.RebuildIndexes(ctx)
}

func (a *app) Close() error {
	return a.store.Close()
}
