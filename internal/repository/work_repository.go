package repository

import (
	"context"
	"errors"
	"fmt"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const worksTable = "works"

const worksSchema = `
CREATE TABLE IF NOT EXISTS works (
	id TEXT PRIMARY KEY,
	idempotency_key TEXT UNIQUE,
	image TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	rating SMALLINT CHECK (rating BETWEEN 1 AND 5),
	provider_name TEXT NOT NULL,
	provider_image TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

var workColumns = []string{
	"id",
	"image",
	"title",
	"description",
	"rating",
	"provider_name",
	"provider_image",
}

type WorkRepo struct {
	db    *pgxpool.Pool
	sb    sq.StatementBuilderType
	newID func() string
}

func NewWorkRepo(db *pgxpool.Pool) *WorkRepo {
	return &WorkRepo{
		db:    db,
		sb:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		newID: uuid.NewString,
	}
}

// Migrate creates the works table when missing.
func (r *WorkRepo) Migrate(ctx context.Context) error {
	const op = "repository.WorkRepo.Migrate"

	if _, err := r.db.Exec(ctx, worksSchema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CommitNewWork inserts the work. A submission key that was already used
// returns the stored work instead of creating a second one.
func (r *WorkRepo) CommitNewWork(ctx context.Context, sub models.NewWorkSubmission) (models.Work, error) {
	const op = "repository.WorkRepo.CommitNewWork"

	query, args, err := r.insertWorkQuery(sub, r.newID())
	if err != nil {
		return models.Work{}, fmt.Errorf("%s: %w", op, err)
	}

	work, err := scanWork(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Work{}, fmt.Errorf("%s: %w", op, err)
	}

	return work, nil
}

func (r *WorkRepo) CommitRating(ctx context.Context, workID string, rating int) error {
	const op = "repository.WorkRepo.CommitRating"

	if !models.ValidRating(rating) {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidRating)
	}

	query, args, err := r.updateRatingQuery(workID, rating)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %s: %w", op, workID, storage.ErrWorkNotFound)
	}

	return nil
}

// LoadWorks returns every stored work, newest first.
func (r *WorkRepo) LoadWorks(ctx context.Context) ([]models.Work, error) {
	const op = "repository.WorkRepo.LoadWorks"

	query, args, err := r.sb.Select(workColumns...).
		From(worksTable).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var works []models.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		works = append(works, work)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return works, nil
}

func (r *WorkRepo) insertWorkQuery(sub models.NewWorkSubmission, id string) (string, []interface{}, error) {
	var key interface{}
	if sub.Key != "" {
		key = sub.Key
	}

	return r.sb.Insert(worksTable).
		Columns(
			"id",
			"idempotency_key",
			"image",
			"title",
			"description",
			"provider_name",
			"provider_image",
		).
		Values(
			id,
			key,
			sub.Draft.ImageRef,
			sub.Draft.Title,
			sub.Draft.Description,
			sub.Provider.Name,
			sub.Provider.AvatarRef,
		).
		Suffix("ON CONFLICT (idempotency_key) DO UPDATE SET idempotency_key = EXCLUDED.idempotency_key").
		Suffix("RETURNING id, image, title, description, rating, provider_name, provider_image").
		ToSql()
}

func (r *WorkRepo) updateRatingQuery(workID string, rating int) (string, []interface{}, error) {
	return r.sb.Update(worksTable).
		Set("rating", rating).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": workID}).
		ToSql()
}

func scanWork(row pgx.Row) (models.Work, error) {
	var work models.Work

	err := row.Scan(
		&work.ID,
		&work.ImageRef,
		&work.Title,
		&work.Description,
		&work.Rating,
		&work.Provider.Name,
		&work.Provider.AvatarRef,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Work{}, storage.ErrWorkNotFound
	}
	if err != nil {
		return models.Work{}, err
	}

	return work, nil
}
