package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/corpusdb/corpusdb/internal/embed"
	"github.com/corpusdb/corpusdb/internal/index"
	"github.com/corpusdb/corpusdb/internal/service"
	"github.com/corpusdb/corpusdb/internal/store"
)

const testDims = 64

type testEnv struct {
	t   *testing.T
	srv *httptest.Server
	svc *service.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.DiscardHandler)

	st, err := store.Open(filepath.Join(t.TempDir(), "api.sqlite"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	embedder := embed.NewCachedEmbedder(embed.NewStaticEmbedder(testDims), 1000)
	manager, err := index.NewManager(index.ManagerConfig{
		Types:               []string{index.TypeLinear, index.TypeBallTree, index.TypeKDTree, index.TypeHNSW},
		Dimensions:          testDims,
		LeafSize:            8,
		RebuildGrowthFactor: index.DefaultRebuildGrowthFactor,
	}, embedder, service.Source{Store: st}, log)
	require.NoError(t, err)

	svc := service.New(st, embedder, manager, log)
	srv := httptest.NewServer(NewServer(svc, log).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{t: t, srv: srv, svc: svc}
}

// do issues a request and decodes the JSON response into out (if non-nil).
func (e *testEnv) do(method, path string, body any, out any) *http.Response {
	e.t.Helper()
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(e.t, err)
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, reqBody)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp
}

type searchBody struct {
	ListOfChunks map[string][]string `json:"list_of_chunks"`
}

// corpus builds library → document and returns both ids.
func (e *testEnv) corpus() (lid, did string) {
	e.t.Helper()
	var lib store.Library
	resp := e.do(http.MethodPost, "/libraries/", map[string]string{
		"name": "L1", "written_by": "a", "description": "d", "production_date": "2024-01-01T00:00:00",
	}, &lib)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var doc store.Document
	resp = e.do(http.MethodPost, "/documents/", map[string]string{
		"name": "D1", "library_id": lib.ID,
	}, &doc)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	return lib.ID, doc.ID
}

func (e *testEnv) addChunk(did, text string) store.Chunk {
	e.t.Helper()
	var chunk store.Chunk
	resp := e.do(http.MethodPost, "/chunks/", map[string]string{
		"text": text, "document_id": did,
	}, &chunk)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	return chunk
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	var body map[string]string
	resp := e.do(http.MethodGet, "/health", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestScenario_CreateAndSearchSingleChunk(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()

	chunk := e.addChunk(did, "alpha")
	assert.Len(t, chunk.Embedding, testDims)

	var result searchBody
	resp := e.do(http.MethodPost, "/chunks/search?query=alpha&k=1&index_types=linear", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"alpha"}, result.ListOfChunks["linear"])
}

func TestScenario_MultiIndexAgreement(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()
	e.addChunk(did, "alpha")
	e.addChunk(did, "beta")
	e.addChunk(did, "gamma")

	var result searchBody
	resp := e.do(http.MethodPost, "/chunks/search?query=beta&k=2&index_types=linear,ball_tree", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, name := range []string{"linear", "ball_tree"} {
		texts := result.ListOfChunks[name]
		require.Len(t, texts, 2, name)
		assert.Equal(t, "beta", texts[0], name)
		assert.Contains(t, []string{"alpha", "gamma"}, texts[1], name)
	}
	assert.Equal(t, result.ListOfChunks["linear"][0], result.ListOfChunks["ball_tree"][0])
}

func TestScenario_UpdateChunkReplacesEmbedding(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()
	e.addChunk(did, "alpha")
	beta := e.addChunk(did, "beta")
	e.addChunk(did, "gamma")

	var updated store.Chunk
	resp := e.do(http.MethodPut, "/chunks/"+beta.ID, map[string]string{"text": "delta"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "delta", updated.Text)

	var result searchBody
	e.do(http.MethodPost, "/chunks/search?query=delta&k=1&index_types=linear", nil, &result)
	assert.Equal(t, []string{"delta"}, result.ListOfChunks["linear"])

	// The stale "beta" text must be gone from every index.
	e.do(http.MethodPost, "/chunks/search?query=beta&k=3", nil, &result)
	for name, texts := range result.ListOfChunks {
		assert.NotContains(t, texts, "beta", name)
	}
}

func TestScenario_DeleteDocumentCascades(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()
	e.addChunk(did, "alpha")
	e.addChunk(did, "beta")

	var msg map[string]string
	resp := e.do(http.MethodDelete, "/documents/"+did, nil, &msg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, msg["message"], "2 chunks")

	var result searchBody
	e.do(http.MethodPost, "/chunks/search?query=alpha&k=5", nil, &result)
	for name, texts := range result.ListOfChunks {
		assert.Empty(t, texts, name)
	}
}

func TestScenario_DeleteLibraryCascades(t *testing.T) {
	e := newTestEnv(t)
	lid, did := e.corpus()
	e.addChunk(did, "alpha")

	resp := e.do(http.MethodDelete, "/libraries/"+lid, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.do(http.MethodGet, "/documents/"+did, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var result searchBody
	e.do(http.MethodPost, "/chunks/search?query=alpha&k=5", nil, &result)
	for name, texts := range result.ListOfChunks {
		assert.Empty(t, texts, name)
	}
}

func TestScenario_ConcurrentRandomChunksAndSearches(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()
	e.addChunk(did, "first chunk so random inserts have a document")

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			resp := e.do(http.MethodPost,
				fmt.Sprintf("/chunks/random?text=concurrent+text+%d", i), nil, nil)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("random chunk: status %d", resp.StatusCode)
			}
			return nil
		})
		g.Go(func() error {
			resp := e.do(http.MethodPost,
				fmt.Sprintf("/chunks/search?query=text+%d&k=5", i), nil, nil)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search: status %d", resp.StatusCode)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// After quiescence every index holds exactly the committed chunks.
	chunks, err := e.svc.ListChunksByDocument(context.Background(), did, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, chunks, 101)
	for _, name := range e.svc.Indexes().Names() {
		n, err := e.svc.Indexes().Len(name)
		require.NoError(t, err)
		assert.Equal(t, 101, n, name)
	}
}

func TestLibraryEndpoints_Errors(t *testing.T) {
	e := newTestEnv(t)

	resp := e.do(http.MethodGet, "/libraries/no-such-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	resp = e.do(http.MethodPost, "/libraries/", map[string]string{"name": "  "}, &errResp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, errResp.Error.Code)

	resp = e.do(http.MethodDelete, "/libraries/no-such-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentEndpoints_Errors(t *testing.T) {
	e := newTestEnv(t)

	// Missing parent library → 404.
	resp := e.do(http.MethodPost, "/documents/", map[string]string{
		"name": "orphan", "library_id": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing name → 422.
	lid, _ := e.corpus()
	resp = e.do(http.MethodPost, "/documents/", map[string]string{
		"name": "", "library_id": lid,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestChunkEndpoints_Errors(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()

	// Missing parent document → 404.
	resp := e.do(http.MethodPost, "/chunks/", map[string]string{
		"text": "orphan", "document_id": "ghost",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Empty text → 422.
	resp = e.do(http.MethodPost, "/chunks/", map[string]string{
		"text": " ", "document_id": did,
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// Random chunk with no text → 422.
	resp = e.do(http.MethodPost, "/chunks/random", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestSearchEndpoint_Errors(t *testing.T) {
	e := newTestEnv(t)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	resp := e.do(http.MethodPost, "/chunks/search?query=x&k=5&index_types=quadtree", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ERR_401_UNKNOWN_INDEX", errResp.Error.Code)

	resp = e.do(http.MethodPost, "/chunks/search?query=x&k=zero", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(http.MethodPost, "/chunks/search?query=x&k=-1", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(http.MethodPost, "/chunks/search?k=5", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListEndpoints_Pagination(t *testing.T) {
	e := newTestEnv(t)
	lid, did := e.corpus()
	for i := 0; i < 5; i++ {
		e.addChunk(did, fmt.Sprintf("chunk %d", i))
	}

	var chunks []store.Chunk
	resp := e.do(http.MethodGet, "/chunks/document/"+did+"?skip=1&limit=2", nil, &chunks)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, chunks, 2)

	var docs []store.Document
	resp = e.do(http.MethodGet, "/documents/library/"+lid, nil, &docs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, docs, 1)

	var libs []store.Library
	resp = e.do(http.MethodGet, "/libraries/", nil, &libs)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, libs, 1)
}

func TestDeleteChunksByDocumentEndpoint(t *testing.T) {
	e := newTestEnv(t)
	_, did := e.corpus()
	e.addChunk(did, "one")
	e.addChunk(did, "two")

	var msg map[string]string
	resp := e.do(http.MethodDelete, "/chunks/document/"+did, nil, &msg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(msg["message"], "2"))

	// Document survives; chunks are gone from store and indices.
	resp = e.do(http.MethodGet, "/documents/"+did, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	for _, name := range e.svc.Indexes().Names() {
		n, err := e.svc.Indexes().Len(name)
		require.NoError(t, err)
		assert.Zero(t, n, name)
	}
}
