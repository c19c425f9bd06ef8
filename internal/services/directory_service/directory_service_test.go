package services

import (
	"context"
	"log/slog"
	"testing"

	"atelieconnect/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockWorkLister struct {
	mock.Mock
}

func (m *MockWorkLister) List() []models.Work {
	args := m.Called()
	return args.Get(0).([]models.Work)
}

func TestDirectoryService_RecentWorks(t *testing.T) {
	works := []models.Work{{ID: "3"}, {ID: "2"}, {ID: "1"}}

	tests := []struct {
		name    string
		limit   int
		wantIDs []string
	}{
		{name: "limit below size", limit: 2, wantIDs: []string{"3", "2"}},
		{name: "limit above size", limit: 5, wantIDs: []string{"3", "2", "1"}},
		{name: "default limit", limit: 0, wantIDs: []string{"3", "2", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := new(MockWorkLister)
			lister.On("List").Return(works).Once()
			service := NewDirectoryService(slog.Default(), nil, lister)

			got := service.RecentWorks(context.Background(), tt.limit)

			ids := make([]string, 0, len(got))
			for _, w := range got {
				ids = append(ids, w.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			lister.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_FeaturedProvidersAreCopies(t *testing.T) {
	providers := []models.FeaturedProvider{
		{ID: "1", Name: "Ana Silva", Specialties: []string{"Vestidos"}},
	}
	service := NewDirectoryService(slog.Default(), providers, new(MockWorkLister))

	got := service.FeaturedProviders(context.Background())
	got[0].Specialties[0] = "changed"

	assert.Equal(t, "Vestidos", service.FeaturedProviders(context.Background())[0].Specialties[0])
}
