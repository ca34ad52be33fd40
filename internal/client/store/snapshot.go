package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/common"
)

// SaveSnapshot replaces the cache entry under key with the JSON-serialized
// items, as a single whole-array write.
func SaveSnapshot[T any](ctx context.Context, kv *KV, key string, items []T) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}
	return kv.Set(ctx, key, b)
}

// LoadSnapshot reads the cache entry under key. A missing entry and a
// malformed one both surface as common.ErrNoCachedData; malformed payloads
// carry the decode detail for logging at the caller.
func LoadSnapshot[T any](ctx context.Context, kv *KV, key string) ([]T, error) {
	b, found, err := kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrNoCachedData
	}

	var items []T
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("%w: corrupt snapshot %s: %v", common.ErrNoCachedData, key, err)
	}
	return items, nil
}

// SaveTasks replaces the cached task snapshot wholesale.
func (s *KV) SaveTasks(ctx context.Context, tasks []models.Task) error {
	return SaveSnapshot(ctx, s, KeyCachedTasks, tasks)
}

// LoadTasks returns the cached task snapshot.
func (s *KV) LoadTasks(ctx context.Context) ([]models.Task, error) {
	return LoadSnapshot[models.Task](ctx, s, KeyCachedTasks)
}

// DeleteTasks removes the cached task snapshot.
func (s *KV) DeleteTasks(ctx context.Context) error {
	return s.Delete(ctx, KeyCachedTasks)
}

// SaveDocuments replaces the cached document snapshot wholesale.
func (s *KV) SaveDocuments(ctx context.Context, docs []models.Document) error {
	return SaveSnapshot(ctx, s, KeyCachedDocuments, docs)
}

// LoadDocuments returns the cached document snapshot.
func (s *KV) LoadDocuments(ctx context.Context) ([]models.Document, error) {
	return LoadSnapshot[models.Document](ctx, s, KeyCachedDocuments)
}

// DeleteDocuments removes the cached document snapshot.
func (s *KV) DeleteDocuments(ctx context.Context) error {
	return s.Delete(ctx, KeyCachedDocuments)
}

// SaveUserDocuments replaces the fully-local document library.
func (s *KV) SaveUserDocuments(ctx context.Context, docs []models.Document) error {
	return SaveSnapshot(ctx, s, KeyUserDocuments, docs)
}

// LoadUserDocuments returns the fully-local document library.
func (s *KV) LoadUserDocuments(ctx context.Context) ([]models.Document, error) {
	return LoadSnapshot[models.Document](ctx, s, KeyUserDocuments)
}
