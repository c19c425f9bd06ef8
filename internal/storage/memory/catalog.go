package memory

import (
	"fmt"
	"sync"

	"atelieconnect/internal/domain/models"
	"atelieconnect/internal/lib/pubsub"
	"atelieconnect/internal/storage"
)

type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeRated    ChangeKind = "rated"
)

// CatalogChanged is published after every successful mutation.
type CatalogChanged struct {
	Kind   ChangeKind    `json:"kind"`
	WorkID string        `json:"work_id"`
	Works  []models.Work `json:"works"`
}

// Catalog holds the published works, newest first.
type Catalog struct {
	mu    sync.RWMutex
	works []models.Work
	index map[string]int

	changes *pubsub.Bus[CatalogChanged]
}

// NewCatalog builds a catalog from seed, which must already be newest first.
// Seed entries with a duplicate id are skipped.
func NewCatalog(seed ...models.Work) *Catalog {
	c := &Catalog{
		works:   make([]models.Work, 0, len(seed)),
		index:   make(map[string]int, len(seed)),
		changes: pubsub.New[CatalogChanged](),
	}

	for _, w := range seed {
		if _, ok := c.index[w.ID]; ok {
			continue
		}
		c.index[w.ID] = len(c.works)
		c.works = append(c.works, w.Clone())
	}

	return c
}

// Changes is the observable "catalog changed" stream.
func (c *Catalog) Changes() *pubsub.Bus[CatalogChanged] {
	return c.changes
}

// Insert prepends work and returns the new catalog state.
func (c *Catalog) Insert(work models.Work) ([]models.Work, error) {
	const op = "storage.memory.Catalog.Insert"

	c.mu.Lock()
	if _, ok := c.index[work.ID]; ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%s: %s: %w", op, work.ID, storage.ErrWorkExists)
	}

	works := make([]models.Work, 0, len(c.works)+1)
	works = append(works, work.Clone())
	works = append(works, c.works...)
	c.works = works
	c.reindex()

	snapshot := c.snapshot()
	c.mu.Unlock()

	c.changes.Publish(CatalogChanged{Kind: ChangeInserted, WorkID: work.ID, Works: snapshot})

	return c.List(), nil
}

// UpdateRating replaces the rating of the work with the given id.
// Any previous rating is overwritten.
func (c *Catalog) UpdateRating(id string, rating int) ([]models.Work, error) {
	const op = "storage.memory.Catalog.UpdateRating"

	if !models.ValidRating(rating) {
		return nil, fmt.Errorf("%s: %d: %w", op, rating, storage.ErrInvalidRating)
	}

	c.mu.Lock()
	i, ok := c.index[id]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%s: %s: %w", op, id, storage.ErrWorkNotFound)
	}

	c.works[i].Rating = models.IntPtr(rating)

	snapshot := c.snapshot()
	c.mu.Unlock()

	c.changes.Publish(CatalogChanged{Kind: ChangeRated, WorkID: id, Works: snapshot})

	return c.List(), nil
}

func (c *Catalog) Get(id string) (models.Work, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return models.Work{}, storage.ErrWorkNotFound
	}

	return c.works[i].Clone(), nil
}

func (c *Catalog) List() []models.Work {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot()
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.works)
}

// snapshot must be called with c.mu held.
func (c *Catalog) snapshot() []models.Work {
	out := make([]models.Work, len(c.works))
	for i, w := range c.works {
		out[i] = w.Clone()
	}
	return out
}

func (c *Catalog) reindex() {
	for i, w := range c.works {
		c.index[w.ID] = i
	}
}
