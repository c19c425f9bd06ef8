package memory

import (
	"testing"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorks() []models.Work {
	return []models.Work{
		{
			ID:          "1",
			ImageRef:    "img://1",
			Title:       "Vestido de Festa",
			Description: "Vestido sob medida para casamento",
			Rating:      models.IntPtr(5),
			Provider:    models.Provider{Name: "Ana Silva", AvatarRef: "img://ana"},
		},
		{
			ID:          "2",
			ImageRef:    "img://2",
			Title:       "Ajuste de Blazer",
			Description: "Ajuste de blazer social",
			Provider:    models.Provider{Name: "Beatriz Santos", AvatarRef: "img://bia"},
		},
	}
}

func TestCatalog_Insert(t *testing.T) {
	c := NewCatalog(seedWorks()...)

	var events []CatalogChanged
	c.Changes().Subscribe(func(e CatalogChanged) { events = append(events, e) })

	work := models.Work{ID: "3", ImageRef: "img://3", Title: "Saia", Description: "Barra"}

	works, err := c.Insert(work)
	require.NoError(t, err)

	require.Len(t, works, 3)
	assert.Equal(t, "3", works[0].ID)
	assert.Equal(t, "1", works[1].ID)
	assert.Equal(t, "2", works[2].ID)
	assert.Nil(t, works[0].Rating)

	require.Len(t, events, 1)
	assert.Equal(t, ChangeInserted, events[0].Kind)
	assert.Equal(t, "3", events[0].WorkID)
	assert.Len(t, events[0].Works, 3)
}

func TestCatalog_InsertDuplicate(t *testing.T) {
	c := NewCatalog(seedWorks()...)

	events := 0
	c.Changes().Subscribe(func(CatalogChanged) { events++ })

	_, err := c.Insert(models.Work{ID: "2", Title: "dup"})

	assert.ErrorIs(t, err, storage.ErrWorkExists)
	assert.Equal(t, seedWorks(), c.List())
	assert.Zero(t, events)
}

func TestCatalog_UpdateRating(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		rating  int
		wantErr error
	}{
		{name: "rate unrated work", id: "2", rating: 4},
		{name: "overwrite existing rating", id: "1", rating: 2},
		{name: "unknown id", id: "42", rating: 3, wantErr: storage.ErrWorkNotFound},
		{name: "rating zero", id: "2", rating: 0, wantErr: storage.ErrInvalidRating},
		{name: "rating above range", id: "2", rating: 6, wantErr: storage.ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog(seedWorks()...)
			before := c.List()

			works, err := c.UpdateRating(tt.id, tt.rating)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, c.List())
				return
			}

			require.NoError(t, err)
			for i, w := range works {
				if w.ID != tt.id {
					assert.Equal(t, before[i], w)
					continue
				}
				require.NotNil(t, w.Rating)
				assert.Equal(t, tt.rating, *w.Rating)

				w.Rating = before[i].Rating
				assert.Equal(t, before[i], w)
			}
		})
	}
}

func TestCatalog_NoAliasing(t *testing.T) {
	c := NewCatalog(seedWorks()...)

	works := c.List()
	*works[0].Rating = 1
	works[1].Title = "changed"

	got, err := c.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 5, *got.Rating)

	got, err = c.Get("2")
	require.NoError(t, err)
	assert.Equal(t, "Ajuste de Blazer", got.Title)
}

func TestCatalog_SeedSkipsDuplicates(t *testing.T) {
	seed := append(seedWorks(), models.Work{ID: "1", Title: "again"})

	c := NewCatalog(seed...)

	assert.Equal(t, 2, c.Len())
}
