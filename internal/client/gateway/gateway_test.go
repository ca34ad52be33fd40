package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type staticTokens string

func (s staticTokens) AccessToken() string { return string(s) }

func setupGateway(t *testing.T, handler http.HandlerFunc) (*Client, *store.KV) {
	t.Helper()
	kv, db, err := store.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, staticTokens("tok-1"), kv, logging.Nop{})
	require.NoError(t, err)
	return c, kv
}

func TestNew_RejectsBadEndpoint(t *testing.T) {
	_, err := New("not a url", staticTokens(""), nil, logging.Nop{})
	assert.Error(t, err)

	_, err = New("/relative", staticTokens(""), nil, logging.Nop{})
	assert.Error(t, err)
}

func TestListTasks_WritesThroughCache(t *testing.T) {
	created := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	remote := []models.Task{
		{ID: "t1", Title: "Inspection", Status: models.StatusNew, OwnerID: "uid-1", CreatedAt: created},
		{ID: "t2", Title: "Repair", Status: models.StatusInProgress, OwnerID: "uid-1", CreatedAt: created.Add(-time.Hour)},
	}

	c, kv := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/"+CollectionTasks, r.URL.Path)
		assert.Equal(t, "uid-1", r.URL.Query().Get("ownerId"))
		assert.Equal(t, "added", r.URL.Query().Get("orderBy"))
		assert.Equal(t, "desc", r.URL.Query().Get("dir"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(remote)
	})

	got, err := c.ListTasks(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, remote, got)

	cached, err := kv.LoadTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remote, cached)
}

func TestListTasks_EmptyResultPurgesCache(t *testing.T) {
	c, kv := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	ctx := context.Background()

	// pre-existing cache entry from an earlier fetch
	require.NoError(t, kv.SaveTasks(ctx, []models.Task{{ID: "stale", Title: "ghost"}}))

	got, err := c.ListTasks(ctx, "uid-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = kv.LoadTasks(ctx)
	assert.ErrorIs(t, err, common.ErrNoCachedData, "empty remote result must delete the cache entry")
}

func TestListTasks_ServerErrorLeavesCacheIntact(t *testing.T) {
	c, kv := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx := context.Background()

	cached := []models.Task{{ID: "t1", Title: "kept"}}
	require.NoError(t, kv.SaveTasks(ctx, cached))

	_, err := c.ListTasks(ctx, "uid-1")
	assert.ErrorIs(t, err, common.ErrGatewayUnavailable)

	still, err := kv.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, still)
}

func TestListDocuments_WritesThroughCache(t *testing.T) {
	remote := []models.Document{
		{ID: "d1", Name: "manual", URL: "https://example.com/m.pdf", Category: "instructions", OwnerID: "uid-1", AddedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	c, kv := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/collections/"+CollectionDocuments, r.URL.Path)
		_ = json.NewEncoder(w).Encode(remote)
	})

	got, err := c.ListDocuments(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, remote, got)

	cached, err := kv.LoadDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, remote, cached)
}

func TestUpdateTaskStatus_ReturnsRemoteTimestamp(t *testing.T) {
	updated := time.Date(2025, 4, 2, 12, 30, 0, 0, time.UTC)

	c, _ := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/collections/"+CollectionTasks+"/t1", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "in-progress", body["status"])
		assert.NotEmpty(t, body["updated"])

		_ = json.NewEncoder(w).Encode(map[string]any{"updated": updated})
	})

	got, err := c.UpdateTaskStatus(context.Background(), "t1", models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, updated, got.UTC())
}

func TestUpdateTaskStatus_FailureSurfaces(t *testing.T) {
	c, _ := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `denied`)
	})

	_, err := c.UpdateTaskStatus(context.Background(), "t1", models.StatusCompleted)
	assert.ErrorIs(t, err, common.ErrOperationFailed)
}

func TestCreateDocument_AssignsIDAndValidates(t *testing.T) {
	c, _ := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var doc models.Document
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		assert.NotEmpty(t, doc.ID)
		assert.False(t, doc.AddedAt.IsZero())
		_ = json.NewEncoder(w).Encode(doc)
	})

	created, err := c.CreateDocument(context.Background(), models.Document{
		Name:     "manual",
		URL:      "https://example.com/m.pdf",
		Category: "instructions",
		OwnerID:  "uid-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = c.CreateDocument(context.Background(), models.Document{Name: "bad", URL: "not-absolute"})
	assert.ErrorIs(t, err, common.ErrInvalidDocumentURL)
}

func TestDeleteAllDocuments_BatchesSnapshot(t *testing.T) {
	var batchIDs []string

	c, _ := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `[{"id":"d1","name":"a","url":"https://e.com/a","userId":"uid-1"},{"id":"d2","name":"b","url":"https://e.com/b","userId":"uid-1"}]`)
		case strings.HasSuffix(r.URL.Path, ":batchDelete"):
			var body struct {
				IDs []string `json:"ids"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			batchIDs = body.IDs
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	n, err := c.DeleteAllDocuments(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"d1", "d2"}, batchIDs)
}

func TestDeleteAllDocuments_EmptySnapshotSkipsBatch(t *testing.T) {
	c, _ := setupGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("no batch expected on empty snapshot, got %s %s", r.Method, r.URL.Path)
		}
		fmt.Fprint(w, `[]`)
	})

	n, err := c.DeleteAllDocuments(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
