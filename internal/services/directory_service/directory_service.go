package services

import (
	"context"
	"log/slog"

	"atelieconnect/internal/domain/models"
)

const DefaultRecentLimit = 10

type WorkLister interface {
	List() []models.Work
}

// DirectoryService serves the home screen: featured professionals and the
// most recent portfolio works.
type DirectoryService struct {
	log       *slog.Logger
	providers []models.FeaturedProvider
	works     WorkLister
}

func NewDirectoryService(log *slog.Logger, providers []models.FeaturedProvider, works WorkLister) *DirectoryService {
	return &DirectoryService{
		log:       log,
		providers: providers,
		works:     works,
	}
}

func (s *DirectoryService) FeaturedProviders(ctx context.Context) []models.FeaturedProvider {
	out := make([]models.FeaturedProvider, len(s.providers))
	for i, p := range s.providers {
		p.Specialties = append([]string(nil), p.Specialties...)
		out[i] = p
	}

	return out
}

// RecentWorks returns up to limit of the newest works. A non-positive limit
// means DefaultRecentLimit.
func (s *DirectoryService) RecentWorks(ctx context.Context, limit int) []models.Work {
	const op = "service.DirectoryService.RecentWorks"

	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	works := s.works.List()
	if len(works) > limit {
		works = works[:limit]
	}

	s.log.DebugContext(ctx, "recent works", slog.String("op", op), slog.Int("count", len(works)))

	return works
}
