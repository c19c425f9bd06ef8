package services

import (
	"log/slog"
	"sync"
	"time"

	workflow "atelieconnect/internal/services/workflow_service"

	"github.com/patrickmn/go-cache"
)

// Factory builds the workflow for a fresh session.
type Factory func(sessionID string) *workflow.Workflow

// DiscardFunc receives the last state of a session that expired or was
// forgotten.
type DiscardFunc func(sessionID string, snap workflow.Snapshot)

// SessionService keeps one workflow per browser session. Idle sessions
// expire after ttl and their open drafts are discarded.
type SessionService struct {
	log     *slog.Logger
	cache   *cache.Cache
	factory Factory

	mu        sync.Mutex
	discardMu sync.RWMutex
	onDiscard DiscardFunc
}

func NewSessionService(log *slog.Logger, ttl time.Duration, factory Factory) *SessionService {
	s := &SessionService{
		log:     log,
		cache:   cache.New(ttl, ttl*2),
		factory: factory,
	}

	s.cache.OnEvicted(s.evicted)

	return s
}

// OnDiscard registers fn to run whenever a session leaves the cache.
func (s *SessionService) OnDiscard(fn DiscardFunc) {
	s.discardMu.Lock()
	s.onDiscard = fn
	s.discardMu.Unlock()
}

func (s *SessionService) evicted(id string, v interface{}) {
	wf, ok := v.(*workflow.Workflow)
	if !ok {
		return
	}

	snap := wf.Snapshot()
	s.log.Debug("session discarded",
		slog.String("session_id", id),
		slog.String("publish_state", string(snap.Publish.State)),
		slog.String("rating_state", string(snap.Rating.State)),
	)

	s.discardMu.RLock()
	fn := s.onDiscard
	s.discardMu.RUnlock()

	if fn != nil {
		fn(id, snap)
	}
}

// Workflow returns the session's workflow, creating it on first use.
// Every call slides the session expiry.
func (s *SessionService) Workflow(sessionID string) *workflow.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(sessionID); ok {
		wf := v.(*workflow.Workflow)
		s.cache.SetDefault(sessionID, wf)
		return wf
	}

	wf := s.factory(sessionID)
	s.cache.SetDefault(sessionID, wf)

	s.log.Debug("session started", slog.String("session_id", sessionID))

	return wf
}

// Forget drops the session's workflow. The discard hook sees its last state.
func (s *SessionService) Forget(sessionID string) {
	s.cache.Delete(sessionID)
}

func (s *SessionService) Count() int {
	return s.cache.ItemCount()
}
