package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/storage"
	redisapp "atelieconnect/internal/storage/redis"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const worksListKey = "works"

// RedisWorkRepo persists works as hashes and keeps their ids in a list,
// newest first. Submission keys map to work ids so retries are idempotent.
type RedisWorkRepo struct {
	Client *redisapp.Client
	KeyTTL time.Duration

	newID func() string
}

func NewRedisWorkRepo(client *redisapp.Client, keyTTL time.Duration) *RedisWorkRepo {
	return &RedisWorkRepo{
		Client: client,
		KeyTTL: keyTTL,
		newID:  uuid.NewString,
	}
}

func (r *RedisWorkRepo) CommitNewWork(ctx context.Context, sub models.NewWorkSubmission) (models.Work, error) {
	const op = "repository.RedisWorkRepo.CommitNewWork"

	id := r.newID()

	if sub.Key != "" {
		claimed, err := r.Client.SetNX(ctx, submissionKey(sub.Key), id, r.KeyTTL).Result()
		if err != nil {
			return models.Work{}, fmt.Errorf("%s: %w", op, err)
		}

		if !claimed {
			existing, err := r.Client.Get(ctx, submissionKey(sub.Key)).Result()
			switch {
			case errors.Is(err, redis.Nil):
				// claim expired in between, keep the fresh id
			case err != nil:
				return models.Work{}, fmt.Errorf("%s: %w", op, err)
			default:
				work, err := r.work(ctx, existing)
				if err == nil {
					if err := r.ensureListed(ctx, existing); err != nil {
						return models.Work{}, fmt.Errorf("%s: %w", op, err)
					}
					return work, nil
				}
				if !errors.Is(err, storage.ErrWorkNotFound) {
					return models.Work{}, fmt.Errorf("%s: %w", op, err)
				}
				// the previous attempt claimed the key but never wrote the work
				id = existing
			}
		}
	}

	work := sub.Work(id)

	if err := r.save(ctx, work); err != nil {
		return models.Work{}, fmt.Errorf("%s: %w", op, err)
	}

	return work, nil
}

// save writes the work hash and its list entry in one MULTI/EXEC, so a
// stored work is always listed.
func (r *RedisWorkRepo) save(ctx context.Context, work models.Work) error {
	_, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, workKey(work.ID),
			"id", work.ID,
			"image", work.ImageRef,
			"title", work.Title,
			"description", work.Description,
			"provider_name", work.Provider.Name,
			"provider_image", work.Provider.AvatarRef,
		)
		pipe.LPush(ctx, worksListKey, work.ID)
		return nil
	})

	return err
}

// ensureListed pushes id onto the works list when a stored hash is missing
// from it.
func (r *RedisWorkRepo) ensureListed(ctx context.Context, id string) error {
	err := r.Client.LPos(ctx, worksListKey, id, redis.LPosArgs{}).Err()
	if errors.Is(err, redis.Nil) {
		return r.Client.LPush(ctx, worksListKey, id).Err()
	}

	return err
}

func (r *RedisWorkRepo) CommitRating(ctx context.Context, workID string, rating int) error {
	const op = "repository.RedisWorkRepo.CommitRating"

	if !models.ValidRating(rating) {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidRating)
	}

	n, err := r.Client.Exists(ctx, workKey(workID)).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %s: %w", op, workID, storage.ErrWorkNotFound)
	}

	if err := r.Client.HSet(ctx, workKey(workID), "rating", rating).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LoadWorks returns every stored work, newest first.
func (r *RedisWorkRepo) LoadWorks(ctx context.Context) ([]models.Work, error) {
	const op = "repository.RedisWorkRepo.LoadWorks"

	ids, err := r.Client.LRange(ctx, worksListKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	works := make([]models.Work, 0, len(ids))
	for _, id := range ids {
		work, err := r.work(ctx, id)
		if errors.Is(err, storage.ErrWorkNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		works = append(works, work)
	}

	return works, nil
}

func (r *RedisWorkRepo) work(ctx context.Context, id string) (models.Work, error) {
	fields, err := r.Client.HGetAll(ctx, workKey(id)).Result()
	if err != nil {
		return models.Work{}, err
	}
	if len(fields) == 0 {
		return models.Work{}, storage.ErrWorkNotFound
	}

	return decodeWork(fields)
}

func decodeWork(fields map[string]string) (models.Work, error) {
	work := models.Work{
		ID:          fields["id"],
		ImageRef:    fields["image"],
		Title:       fields["title"],
		Description: fields["description"],
		Provider: models.Provider{
			Name:      fields["provider_name"],
			AvatarRef: fields["provider_image"],
		},
	}

	if raw, ok := fields["rating"]; ok && raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			return models.Work{}, fmt.Errorf("decode rating %q: %w", raw, err)
		}
		work.Rating = &rating
	}

	return work, nil
}

func workKey(id string) string {
	return "work:" + id
}

func submissionKey(key string) string {
	return "work:submission:" + key
}
