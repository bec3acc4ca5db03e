package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/corpusdb/corpusdb/internal/embed"
)

// Index names accepted in configuration and search requests.
const (
	TypeLinear   = "linear"
	TypeBallTree = "ball_tree"
	TypeKDTree   = "kd_tree"
	TypeHNSW     = "hnsw"
)

// Embedding pairs a committed chunk id with its stored vector.
type Embedding struct {
	ID     string
	Vector []float32
}

// Source streams committed chunk embeddings out of the chunk store for
// index builds. Implementations hydrate only (id, embedding).
type Source interface {
	ListEmbeddings(ctx context.Context) ([]Embedding, error)
}

// ManagerConfig configures the index manager.
type ManagerConfig struct {
	// Types lists the index variants to maintain (TypeLinear, ...).
	Types []string
	// Dimensions is the embedding dimension every index enforces.
	Dimensions int
	// LeafSize is the ball tree leaf bucket capacity.
	LeafSize int
	// RebuildGrowthFactor triggers a rebuild of an index once its live
	// size exceeds this multiple of its size at last build. Zero disables
	// growth-triggered rebuilds.
	RebuildGrowthFactor float64
}

// DefaultRebuildGrowthFactor matches the reference tuning: rebuild after
// the index grows half again past its last built size.
const DefaultRebuildGrowthFactor = 1.5

// Manager owns one instance of every enabled index variant, embeds query
// text, fans writes out to all indices, fans reads to a chosen index, and
// serializes concurrent access.
//
// A single RWMutex guards all index internals: searches share the read
// lock (indices are never mutated during Search), while AddVector,
// DeleteVector and rebuilds take the write lock. Embedding always happens
// outside the lock.
type Manager struct {
	mu        sync.RWMutex
	indices   map[string]VectorIndex
	builtSize map[string]int

	embedder embed.Embedder
	source   Source
	cfg      ManagerConfig
	log      *slog.Logger
}

// NewManager creates a manager with one empty index per configured type.
// Unknown type names fail construction.
func NewManager(cfg ManagerConfig, embedder embed.Embedder, source Source, log *slog.Logger) (*Manager, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("index manager: dimensions must be positive, got %d", cfg.Dimensions)
	}
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		indices:   make(map[string]VectorIndex, len(cfg.Types)),
		builtSize: make(map[string]int, len(cfg.Types)),
		embedder:  embedder,
		source:    source,
		cfg:       cfg,
		log:       log,
	}
	for _, name := range cfg.Types {
		idx, err := newIndex(name, cfg)
		if err != nil {
			return nil, err
		}
		m.indices[name] = idx
	}
	return m, nil
}

func newIndex(name string, cfg ManagerConfig) (VectorIndex, error) {
	switch name {
	case TypeLinear:
		return NewLinearIndex(cfg.Dimensions), nil
	case TypeBallTree:
		return NewBallTree(cfg.Dimensions, cfg.LeafSize), nil
	case TypeKDTree:
		return NewKDTree(cfg.Dimensions), nil
	case TypeHNSW:
		return NewHNSW(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
}

// Names returns the configured index names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.indices))
	for name := range m.indices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether an index with the given name is configured.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.indices[name]
	return ok
}

// Len returns the number of entries in the named index.
func (m *Manager) Len(name string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.indices[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	return idx.Len(), nil
}

// RebuildAll streams all committed embeddings from the store once and
// batch-builds every configured index from them. The store snapshot is
// taken under the write lock so no concurrent AddVector can land between
// the snapshot and the build and be wiped.
func (m *Manager) RebuildAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries, err := m.source.ListEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("list embeddings: %w", err)
	}
	vectors, ids := m.filter(entries)

	for name, idx := range m.indices {
		if err := m.buildLocked(name, idx, vectors, ids); err != nil {
			return err
		}
	}
	return nil
}

// Rebuild rebuilds the named index from the store.
func (m *Manager) Rebuild(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indices[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	entries, err := m.source.ListEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("list embeddings: %w", err)
	}
	vectors, ids := m.filter(entries)
	return m.buildLocked(name, idx, vectors, ids)
}

// filter drops entries with empty or mis-sized embeddings. Such rows can
// exist transiently if an embedder change outlived stored vectors; they
// are skipped rather than poisoning the build.
func (m *Manager) filter(entries []Embedding) ([][]float32, []string) {
	vectors := make([][]float32, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) != m.cfg.Dimensions {
			m.log.Warn("skipping chunk with unusable embedding",
				slog.String("chunk_id", e.ID),
				slog.Int("got_dims", len(e.Vector)),
				slog.Int("want_dims", m.cfg.Dimensions))
			continue
		}
		vectors = append(vectors, e.Vector)
		ids = append(ids, e.ID)
	}
	return vectors, ids
}

func (m *Manager) buildLocked(name string, idx VectorIndex, vectors [][]float32, ids []string) error {
	start := time.Now()
	if err := idx.Build(vectors, ids); err != nil {
		return fmt.Errorf("build %s: %w", name, err)
	}
	m.builtSize[name] = len(ids)
	m.log.Info("index built",
		slog.String("index", name),
		slog.Int("vectors", len(ids)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// AddVector fans an insert out to every index. A duplicate id is replaced:
// the manager deletes before adding, so indices never hold two entries for
// one chunk. When growth-triggered rebuilds are enabled, indices that have
// outgrown their last build are rebuilt from the store afterwards.
func (m *Manager) AddVector(ctx context.Context, vector []float32, id string) error {
	if len(vector) != m.cfg.Dimensions {
		return &DimensionError{Expected: m.cfg.Dimensions, Got: len(vector)}
	}

	m.mu.Lock()
	var stale []string
	for name, idx := range m.indices {
		idx.Delete(id)
		if err := idx.Add(vector, id); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("add to %s: %w", name, err)
		}
		if m.outgrownLocked(name, idx) {
			stale = append(stale, name)
		}
	}
	m.mu.Unlock()

	for _, name := range stale {
		if err := m.Rebuild(ctx, name); err != nil {
			// Stale bounds only degrade pruning, not correctness.
			m.log.Warn("growth-triggered rebuild failed",
				slog.String("index", name),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// outgrownLocked reports whether an index has grown past the configured
// factor of its size at last build. Caller holds the write lock.
func (m *Manager) outgrownLocked(name string, idx VectorIndex) bool {
	factor := m.cfg.RebuildGrowthFactor
	if factor <= 1 {
		return false
	}
	built := m.builtSize[name]
	if built == 0 {
		// Never batch-built; let the index accumulate a leaf's worth
		// before forcing a first build.
		threshold := m.cfg.LeafSize
		if threshold < 1 {
			threshold = DefaultLeafSize
		}
		return idx.Len() >= threshold
	}
	return float64(idx.Len()) > factor*float64(built)
}

// DeleteVector fans a delete out to every index. Per-index misses are
// ignored: deletion is idempotent globally.
func (m *Manager) DeleteVector(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, idx := range m.indices {
		idx.Delete(id)
	}
}

// Search embeds the query text outside the lock, then runs kNN against the
// named index under the shared lock.
func (m *Manager) Search(ctx context.Context, queryText string, k int, name string) ([]SearchHit, error) {
	vector, err := m.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return m.SearchVector(vector, k, name)
}

// SearchVector runs kNN for an already-embedded query vector.
func (m *Manager) SearchVector(query []float32, k int, name string) ([]SearchHit, error) {
	if len(query) != m.cfg.Dimensions {
		return nil, &DimensionError{Expected: m.cfg.Dimensions, Got: len(query)}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.indices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	return idx.Search(query, k)
}
