package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/liftfield/internal/client/gateway"
	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/client/orchestrator"
	"github.com/dmitrijs2005/liftfield/internal/client/session"
	"github.com/dmitrijs2005/liftfield/internal/client/store"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/dmitrijs2005/liftfield/internal/logging"
)

// DocumentService manages the personal document library. With a configured
// gateway it works against the remote collection through the gate; without
// one it runs fully local over the seeded starter library, the mode the
// product shipped with before the remote backend existed.
type DocumentService struct {
	gw    *gateway.Client // nil in local mode or degraded startup
	kv    *store.KV
	orch  *orchestrator.Orchestrator
	sess  *session.Manager
	log   logging.Logger
	clock func() time.Time

	local bool
}

func NewDocumentService(gw *gateway.Client, kv *store.KV, orch *orchestrator.Orchestrator, sess *session.Manager, local bool, log logging.Logger) *DocumentService {
	return &DocumentService{
		gw:    gw,
		kv:    kv,
		orch:  orch,
		sess:  sess,
		log:   log,
		clock: time.Now,
		local: local,
	}
}

// Local reports whether the service runs in the fully-local mode.
func (s *DocumentService) Local() bool { return s.local }

// List returns the document library. Remote failures degrade to the cached
// snapshot the same way task listing does.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, Source, error) {
	if s.local {
		docs, err := s.localList(ctx)
		return docs, SourceCache, err
	}

	route, err := s.orch.Gate(orchestrator.OpRead)
	if err != nil {
		return nil, SourceCache, err
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return nil, SourceCache, err
	}

	if route == orchestrator.RouteRemote {
		docs, err := s.gw.ListDocuments(ctx, ownerID)
		if err == nil {
			return docs, SourceRemote, nil
		}
		s.log.Warn(ctx, "remote document list failed, falling back to cache", "error", err)
	}

	docs, err := s.kv.LoadDocuments(ctx)
	if err != nil {
		return nil, SourceCache, err
	}
	return docs, SourceCache, nil
}

// Add validates and stores a new document, returning it with its assigned ID.
func (s *DocumentService) Add(ctx context.Context, doc models.Document) (models.Document, error) {
	if err := doc.Validate(); err != nil {
		return models.Document{}, err
	}
	if doc.Category == "" {
		doc.Category = models.CategoryUser
	}

	if s.local {
		return s.localAdd(ctx, doc)
	}

	route, err := s.orch.Gate(orchestrator.OpWrite)
	if err != nil {
		return models.Document{}, err
	}
	if route != orchestrator.RouteRemote {
		return models.Document{}, common.ErrGatewayUnavailable
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return models.Document{}, err
	}
	doc.OwnerID = ownerID

	created, err := s.gw.CreateDocument(ctx, doc)
	if err != nil {
		return models.Document{}, err
	}
	s.refresh(ctx, ownerID)
	return created, nil
}

// Delete removes a single document by ID.
func (s *DocumentService) Delete(ctx context.Context, docID string) error {
	if s.local {
		return s.localDelete(ctx, docID)
	}

	route, err := s.orch.Gate(orchestrator.OpWrite)
	if err != nil {
		return err
	}
	if route != orchestrator.RouteRemote {
		return common.ErrGatewayUnavailable
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return err
	}

	if err := s.gw.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	s.refresh(ctx, ownerID)
	return nil
}

// Clear deletes the user's whole library and returns how many documents were
// removed.
func (s *DocumentService) Clear(ctx context.Context) (int, error) {
	if s.local {
		docs, err := s.localList(ctx)
		if err != nil {
			return 0, err
		}
		return len(docs), s.kv.SaveUserDocuments(ctx, []models.Document{})
	}

	route, err := s.orch.Gate(orchestrator.OpWrite)
	if err != nil {
		return 0, err
	}
	if route != orchestrator.RouteRemote {
		return 0, common.ErrGatewayUnavailable
	}

	ownerID, err := owner(s.sess)
	if err != nil {
		return 0, err
	}

	n, err := s.gw.DeleteAllDocuments(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if err := s.kv.DeleteDocuments(ctx); err != nil {
		s.log.Warn(ctx, "failed to drop cached documents after clear", "error", err)
	}
	return n, nil
}

// Search filters the library by a case-insensitive substring of the name or
// category.
func (s *DocumentService) Search(ctx context.Context, query string) ([]models.Document, Source, error) {
	docs, src, err := s.List(ctx)
	if err != nil {
		return nil, src, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return docs, src, nil
	}

	var out []models.Document
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.Category), q) {
			out = append(out, d)
		}
	}
	return out, src, nil
}

// CountByCategory returns how many documents each category holds.
func (s *DocumentService) CountByCategory(ctx context.Context) (map[string]int, error) {
	docs, _, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, d := range docs {
		counts[d.Category]++
	}
	return counts, nil
}

// refresh re-lists the remote collection so the cached snapshot tracks the
// write that just landed. Best-effort.
func (s *DocumentService) refresh(ctx context.Context, ownerID string) {
	if _, err := s.gw.ListDocuments(ctx, ownerID); err != nil {
		s.log.Warn(ctx, "post-write refresh failed", "error", err)
	}
}

func (s *DocumentService) localList(ctx context.Context) ([]models.Document, error) {
	if err := s.kv.SeedUserDocuments(ctx, s.clock()); err != nil {
		return nil, err
	}
	docs, err := s.kv.LoadUserDocuments(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNoCachedData) {
			return nil, nil
		}
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].AddedAt.After(docs[j].AddedAt) })
	return docs, nil
}

func (s *DocumentService) localAdd(ctx context.Context, doc models.Document) (models.Document, error) {
	docs, err := s.localList(ctx)
	if err != nil {
		return models.Document{}, err
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.AddedAt = s.clock()
	docs = append(docs, doc)
	if err := s.kv.SaveUserDocuments(ctx, docs); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (s *DocumentService) localDelete(ctx context.Context, docID string) error {
	docs, err := s.localList(ctx)
	if err != nil {
		return err
	}
	kept := docs[:0]
	found := false
	for _, d := range docs {
		if d.ID == docID {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return common.ErrDocumentNotFound
	}
	return s.kv.SaveUserDocuments(ctx, kept)
}
