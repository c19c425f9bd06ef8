package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/storage"

	"github.com/google/uuid"
)

var ErrSimulatedFailure = errors.New("simulated backend failure")

// SimulatedBackend stands in for a network backend: every call resolves
// after a fixed delay. Ids are assigned once per submission key so that a
// retried submission yields the same work.
type SimulatedBackend struct {
	delay time.Duration
	after func(d time.Duration) <-chan time.Time

	mu       sync.Mutex
	byKey    map[string]models.Work
	known    map[string]struct{}
	failNext int
}

// NewSimulatedBackend creates a backend that knows about the given works,
// so that ratings on seeded entries resolve.
func NewSimulatedBackend(delay time.Duration, known ...models.Work) *SimulatedBackend {
	b := &SimulatedBackend{
		delay: delay,
		after: time.After,
		byKey: make(map[string]models.Work),
		known: make(map[string]struct{}, len(known)),
	}
	for _, w := range known {
		b.known[w.ID] = struct{}{}
	}
	return b
}

// FailNext makes the next n calls fail with ErrSimulatedFailure.
func (b *SimulatedBackend) FailNext(n int) {
	b.mu.Lock()
	b.failNext = n
	b.mu.Unlock()
}

func (b *SimulatedBackend) CommitNewWork(ctx context.Context, sub models.NewWorkSubmission) (models.Work, error) {
	const op = "repository.SimulatedBackend.CommitNewWork"

	if err := b.wait(ctx); err != nil {
		return models.Work{}, fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.takeFailure(); err != nil {
		return models.Work{}, fmt.Errorf("%s: %w", op, err)
	}

	if sub.Key != "" {
		if w, ok := b.byKey[sub.Key]; ok {
			return w.Clone(), nil
		}
	}

	work := sub.Work(uuid.NewString())
	if sub.Key != "" {
		b.byKey[sub.Key] = work
	}
	b.known[work.ID] = struct{}{}

	return work.Clone(), nil
}

func (b *SimulatedBackend) CommitRating(ctx context.Context, workID string, rating int) error {
	const op = "repository.SimulatedBackend.CommitRating"

	if !models.ValidRating(rating) {
		return fmt.Errorf("%s: %w", op, storage.ErrInvalidRating)
	}

	if err := b.wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.takeFailure(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, ok := b.known[workID]; !ok {
		return fmt.Errorf("%s: %s: %w", op, workID, storage.ErrWorkNotFound)
	}

	return nil
}

func (b *SimulatedBackend) wait(ctx context.Context) error {
	if b.delay <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.after(b.delay):
		return nil
	}
}

// takeFailure must be called with b.mu held.
func (b *SimulatedBackend) takeFailure() error {
	if b.failNext <= 0 {
		return nil
	}
	b.failNext--
	return ErrSimulatedFailure
}
