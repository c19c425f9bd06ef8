package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

type Repository struct {
	db   *pgxpool.Pool
	Work *WorkRepo
}

// NewRepository connects to postgres and makes sure the schema exists.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	db, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	works := NewWorkRepo(db)
	if err := works.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Repository{
		db:   db,
		Work: works,
	}, nil
}

func (r *Repository) Close() {
	r.db.Close()
}
