package store

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/dmitrijs2005/liftfield/internal/common"
	"github.com/google/uuid"
)

// starterLibrary is the initial demo set for the fully-local mode, installed
// on first run when no user library exists yet.
func starterLibrary(now time.Time) []models.Document {
	return []models.Document{
		{
			ID:       uuid.NewString(),
			Name:     "KONE lift maintenance manual (PDF)",
			URL:      "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf",
			Category: models.CategoryInstructions,
			AddedAt:  now,
		},
		{
			ID:       uuid.NewString(),
			Name:     "OTIS Gen2 power supply scheme (PDF)",
			URL:      "https://www.africau.edu/images/default/sample.pdf",
			Category: models.CategorySchemes,
			AddedAt:  now,
		},
		{
			ID:       uuid.NewString(),
			Name:     "Safety rules (text)",
			URL:      "https://filesamples.com/samples/document/txt/sample3.txt",
			Category: "safety",
			AddedAt:  now,
		},
	}
}

// SeedUserDocuments installs the starter library unless a user library is
// already present (including a present-but-empty one).
func (s *KV) SeedUserDocuments(ctx context.Context, now time.Time) error {
	_, err := s.LoadUserDocuments(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNoCachedData) {
		return err
	}
	return s.SaveUserDocuments(ctx, starterLibrary(now))
}
