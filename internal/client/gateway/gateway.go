// Package gateway wraps the remote document database behind owner-scoped
// query and mutate operations over the two collections (tasks, documents).
// Successful list reads write through to the local store; a list confirmed
// empty deletes the corresponding cache entry instead of writing an empty
// one.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
	"github.com/google/uuid"
)

// Collection names on the remote database.
const (
	CollectionTasks     = "tasks_pwa"
	CollectionDocuments = "documents_pwa"
)

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	AccessToken() string
}

// Client is the remote data gateway handle.
type Client struct {
	baseURL string
	host    string
	client  *http.Client
	tokens  TokenSource
	kv      *store.KV
	log     logging.Logger
	clock   func() time.Time
}

// New builds a gateway client for the database at baseURL.
func New(baseURL string, tokens TokenSource, kv *store.KV, log logging.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid database endpoint %q", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		host:    u.Host,
		client:  &http.Client{Timeout: 12 * time.Second},
		tokens:  tokens,
		kv:      kv,
		log:     log,
		clock:   time.Now,
	}, nil
}

// Host returns the database's network host, used by the asset cache to
// exclude authenticated API traffic from interception.
func (c *Client) Host() string {
	return c.host
}

// ListTasks queries the caller's tasks ordered by creation time descending,
// writing the result through to the local store.
func (c *Client) ListTasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.list(ctx, CollectionTasks, ownerID, &tasks); err != nil {
		return nil, err
	}

	if len(tasks) == 0 {
		if err := c.kv.DeleteTasks(ctx); err != nil {
			c.log.Warn(ctx, "failed to purge task cache", "error", err)
		}
		return tasks, nil
	}
	if err := c.kv.SaveTasks(ctx, tasks); err != nil {
		c.log.Warn(ctx, "failed to write through task cache", "error", err)
	}
	return tasks, nil
}

// ListDocuments queries the caller's documents ordered by creation time
// descending, writing the result through to the local store.
func (c *Client) ListDocuments(ctx context.Context, ownerID string) ([]models.Document, error) {
	var docs []models.Document
	if err := c.list(ctx, CollectionDocuments, ownerID, &docs); err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		if err := c.kv.DeleteDocuments(ctx); err != nil {
			c.log.Warn(ctx, "failed to purge document cache", "error", err)
		}
		return docs, nil
	}
	if err := c.kv.SaveDocuments(ctx, docs); err != nil {
		c.log.Warn(ctx, "failed to write through document cache", "error", err)
	}
	return docs, nil
}

// UpdateTaskStatus writes the new status and an updated timestamp to the
// remote record and returns the remote's updated timestamp, so the read path
// can refresh deterministically.
func (c *Client) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (time.Time, error) {
	body := map[string]any{
		"status":  status,
		"updated": c.clock().UTC().Format(time.RFC3339Nano),
	}

	var resp struct {
		Updated time.Time `json:"updated"`
	}
	path := fmt.Sprintf("/collections/%s/%s", CollectionTasks, url.PathEscape(taskID))
	if err := c.do(ctx, http.MethodPatch, path, body, &resp); err != nil {
		return time.Time{}, fmt.Errorf("update task status: %w", err)
	}
	return resp.Updated, nil
}

// CreateTask adds a work order to the remote collection. Normally tasks are
// created by the dispatch side; this exists for seeding demo data.
func (c *Client) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.StatusNew
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = c.clock().UTC()
	}

	var created models.Task
	path := "/collections/" + CollectionTasks
	if err := c.do(ctx, http.MethodPost, path, task, &created); err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// CreateDocument adds a document to the caller's library. A missing ID is
// assigned client-side.
func (c *Client) CreateDocument(ctx context.Context, doc models.Document) (models.Document, error) {
	if err := doc.Validate(); err != nil {
		return models.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = c.clock().UTC()
	}

	var created models.Document
	path := "/collections/" + CollectionDocuments
	if err := c.do(ctx, http.MethodPost, path, doc, &created); err != nil {
		return models.Document{}, fmt.Errorf("create document: %w", err)
	}
	return created, nil
}

// DeleteDocument removes one document by id.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	path := fmt.Sprintf("/collections/%s/%s", CollectionDocuments, url.PathEscape(docID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// DeleteAllDocuments removes every document owned by ownerID in a single
// atomic batch over the query-result snapshot taken at call time. A create
// racing the batch window is not covered by the snapshot.
func (c *Client) DeleteAllDocuments(ctx context.Context, ownerID string) (int, error) {
	var docs []models.Document
	if err := c.list(ctx, CollectionDocuments, ownerID, &docs); err != nil {
		return 0, fmt.Errorf("snapshot documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}

	path := "/collections/" + CollectionDocuments + ":batchDelete"
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"ids": ids}, nil); err != nil {
		return 0, fmt.Errorf("batch delete documents: %w", err)
	}
	return len(ids), nil
}

func (c *Client) list(ctx context.Context, collection, ownerID string, out any) error {
	q := url.Values{}
	q.Set("ownerId", ownerID)
	q.Set("orderBy", "added")
	q.Set("dir", "desc")
	path := "/collections/" + collection + "?" + q.Encode()
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", common.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", common.ErrOperationFailed, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
