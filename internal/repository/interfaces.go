package repository

import (
	"context"

	"atelieconnect/internal/domain/models"
)

// WorkRepository is a commit backend that also keeps the works it accepted.
type WorkRepository interface {
	CommitNewWork(ctx context.Context, sub models.NewWorkSubmission) (models.Work, error)
	CommitRating(ctx context.Context, workID string, rating int) error
	// LoadWorks returns the stored works, newest first.
	LoadWorks(ctx context.Context) ([]models.Work, error)
}

var (
	_ WorkRepository = (*WorkRepo)(nil)
	_ WorkRepository = (*RedisWorkRepo)(nil)
)
