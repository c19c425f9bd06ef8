package app

import (
	"context"
	"fmt"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/repository"
)

// SeedWorks is the catalog a fresh install starts with, newest first.
func SeedWorks() []models.Work {
	return []models.Work{
		{
			ID:          "1",
			ImageRef:    "https://images.unsplash.com/photo-1591369822096-ffd140ec948f?w=800&h=600&fit=crop",
			Title:       "Vestido de Festa",
			Description: "Vestido sob medida para casamento",
			Rating:      models.IntPtr(5),
			Provider: models.Provider{
				Name:      "Ana Silva",
				AvatarRef: "https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=200&h=200&fit=crop",
			},
		},
		{
			ID:          "2",
			ImageRef:    "https://images.unsplash.com/photo-1539533018447-63fcce2678e3?w=800&h=600&fit=crop",
			Title:       "Ajuste de Blazer",
			Description: "Ajuste de blazer social",
			Rating:      models.IntPtr(4),
			Provider: models.Provider{
				Name:      "Beatriz Santos",
				AvatarRef: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=200&h=200&fit=crop",
			},
		},
	}
}

func FeaturedProviders() []models.FeaturedProvider {
	return []models.FeaturedProvider{
		{
			ID:          "1",
			Name:        "Ana Silva",
			Role:        "Costureira",
			Rating:      4.8,
			Location:    "São Paulo, SP",
			AvatarRef:   "https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=400&h=400&fit=crop",
			Specialties: []string{"Vestidos", "Ajustes", "Alta Costura"},
		},
		{
			ID:          "2",
			Name:        "Beatriz Santos",
			Role:        "Modelista",
			Rating:      4.9,
			Location:    "Rio de Janeiro, RJ",
			AvatarRef:   "https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=400&h=400&fit=crop",
			Specialties: []string{"Modelagem", "Desenho Técnico"},
		},
	}
}

// seedRepository writes seed into an empty repository, oldest first, and
// returns what the repository holds afterwards. Ids are assigned by the
// repository.
func seedRepository(ctx context.Context, repo repository.WorkRepository, seed []models.Work) ([]models.Work, error) {
	for i := len(seed) - 1; i >= 0; i-- {
		w := seed[i]

		work, err := repo.CommitNewWork(ctx, models.NewWorkSubmission{
			Key: "seed:" + w.ID,
			Draft: models.NewWorkDraft{
				Title:       w.Title,
				Description: w.Description,
				ImageRef:    w.ImageRef,
			},
			Provider: w.Provider,
		})
		if err != nil {
			return nil, fmt.Errorf("seed work %s: %w", w.ID, err)
		}

		if w.Rated() {
			if err := repo.CommitRating(ctx, work.ID, *w.Rating); err != nil {
				return nil, fmt.Errorf("seed rating %s: %w", w.ID, err)
			}
		}
	}

	return repo.LoadWorks(ctx)
}
