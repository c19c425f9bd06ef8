package repository

import (
	"context"
	"testing"
	"time"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission(key string) models.NewWorkSubmission {
	return models.NewWorkSubmission{
		Key: key,
		Draft: models.NewWorkDraft{
			Title:       "Vestido de Festa",
			Description: "Sob medida",
			ImageRef:    "img://1",
		},
		Provider: models.Provider{Name: "Maria Silva", AvatarRef: "img://avatar"},
	}
}

func TestSimulatedBackend_CommitNewWork(t *testing.T) {
	b := NewSimulatedBackend(0)

	work, err := b.CommitNewWork(context.Background(), testSubmission("k1"))
	require.NoError(t, err)

	assert.NotEmpty(t, work.ID)
	assert.Equal(t, "Vestido de Festa", work.Title)
	assert.Equal(t, "Maria Silva", work.Provider.Name)
	assert.Nil(t, work.Rating)

	again, err := b.CommitNewWork(context.Background(), testSubmission("k1"))
	require.NoError(t, err)
	assert.Equal(t, work.ID, again.ID)

	other, err := b.CommitNewWork(context.Background(), testSubmission("k2"))
	require.NoError(t, err)
	assert.NotEqual(t, work.ID, other.ID)
}

func TestSimulatedBackend_Delay(t *testing.T) {
	b := NewSimulatedBackend(2 * time.Second)

	fire := make(chan time.Time, 1)
	var waited time.Duration
	b.after = func(d time.Duration) <-chan time.Time {
		waited = d
		fire <- time.Now()
		return fire
	}

	_, err := b.CommitNewWork(context.Background(), testSubmission("k"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, waited)
}

func TestSimulatedBackend_ContextCancelled(t *testing.T) {
	b := NewSimulatedBackend(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.CommitNewWork(ctx, testSubmission("k"))
	assert.ErrorIs(t, err, context.Canceled)

	err = b.CommitRating(ctx, "1", 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatedBackend_FailNext(t *testing.T) {
	b := NewSimulatedBackend(0, models.Work{ID: "1"})
	b.FailNext(1)

	err := b.CommitRating(context.Background(), "1", 4)
	assert.ErrorIs(t, err, ErrSimulatedFailure)

	err = b.CommitRating(context.Background(), "1", 4)
	assert.NoError(t, err)
}

func TestSimulatedBackend_CommitRating(t *testing.T) {
	b := NewSimulatedBackend(0, models.Work{ID: "1"})

	tests := []struct {
		name    string
		id      string
		rating  int
		wantErr error
	}{
		{name: "known work", id: "1", rating: 5},
		{name: "unknown work", id: "9", rating: 5, wantErr: storage.ErrWorkNotFound},
		{name: "rating out of range", id: "1", rating: 0, wantErr: storage.ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.CommitRating(context.Background(), tt.id, tt.rating)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	work, err := b.CommitNewWork(context.Background(), testSubmission("k"))
	require.NoError(t, err)
	assert.NoError(t, b.CommitRating(context.Background(), work.ID, 2))
}
