package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkRepo_InsertWorkQuery(t *testing.T) {
	repo := NewWorkRepo(nil)

	tests := []struct {
		name    string
		key     string
		wantKey interface{}
	}{
		{name: "with submission key", key: "k1", wantKey: "k1"},
		{name: "without submission key", key: "", wantKey: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := repo.insertWorkQuery(testSubmission(tt.key), "w-1")
			require.NoError(t, err)

			assert.Equal(t,
				"INSERT INTO works (id,idempotency_key,image,title,description,provider_name,provider_image) "+
					"VALUES ($1,$2,$3,$4,$5,$6,$7) "+
					"ON CONFLICT (idempotency_key) DO UPDATE SET idempotency_key = EXCLUDED.idempotency_key "+
					"RETURNING id, image, title, description, rating, provider_name, provider_image",
				query)
			assert.Equal(t, []interface{}{
				"w-1", tt.wantKey, "img://1", "Vestido de Festa", "Sob medida", "Maria Silva", "img://avatar",
			}, args)
		})
	}
}

func TestWorkRepo_UpdateRatingQuery(t *testing.T) {
	repo := NewWorkRepo(nil)

	query, args, err := repo.updateRatingQuery("2", 4)
	require.NoError(t, err)

	assert.Equal(t, "UPDATE works SET rating = $1, updated_at = NOW() WHERE id = $2", query)
	assert.Equal(t, []interface{}{4, "2"}, args)
}
