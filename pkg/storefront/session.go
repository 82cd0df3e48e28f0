// Package storefront scopes a customer's cart and checkout wizard to a
// session and turns a completed checkout into a message and an order.
package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/storefront/pkg/cart"
	"github.com/example/storefront/pkg/checkout"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one customer's in-progress shopping state.
type Session struct {
	ID     string
	Cart   *cart.Cart
	Wizard *checkout.Wizard

	mu sync.Mutex
}

// CartCache stores cart snapshots so a session survives a process restart.
// LoadCart returns nil and no error when nothing is cached.
type CartCache interface {
	SaveCart(ctx context.Context, sessionID string, snapshot cart.Snapshot) error
	LoadCart(ctx context.Context, sessionID string) (*cart.Snapshot, error)
}

// Registry owns the live sessions.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	cache     CartCache
	localTown string
	logger    *zap.Logger
}

// NewRegistry creates a registry. cache may be nil.
func NewRegistry(localTown string, cache CartCache, logger *zap.Logger) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		cache:     cache,
		localTown: localTown,
		logger:    logger,
	}
}

func (r *Registry) newSession(id string, c *cart.Cart) *Session {
	return &Session{ID: id, Cart: c, Wizard: checkout.New(r.localTown)}
}

// Create starts an empty session and caches its empty cart.
func (r *Registry) Create(ctx context.Context) *Session {
	s := r.newSession(uuid.NewString(), cart.New())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.persist(ctx, s)
	return s
}

func (r *Registry) persist(ctx context.Context, s *Session) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SaveCart(ctx, s.ID, s.Cart.Snapshot()); err != nil {
		r.logger.Warn("Failed to cache cart", zap.String("session_id", s.ID), zap.Error(err))
	}
}

func (r *Registry) get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	if r.cache == nil || id == "" {
		return nil, ErrSessionNotFound
	}

	snapshot, err := r.cache.LoadCart(ctx, id)
	if err != nil {
		r.logger.Warn("Failed to restore cart from cache", zap.String("session_id", id), zap.Error(err))
		return nil, ErrSessionNotFound
	}
	if snapshot == nil {
		return nil, ErrSessionNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, nil
	}
	s = r.newSession(id, cart.Restore(*snapshot))
	r.sessions[id] = s
	r.logger.Info("Session restored from cache", zap.String("session_id", id))
	return s, nil
}

// View runs fn with the session locked.
func (r *Registry) View(ctx context.Context, id string, fn func(s *Session) error) error {
	s, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Update runs fn with the session locked and then writes the cart snapshot to
// the cache. Cache failures are logged and otherwise ignored.
func (r *Registry) Update(ctx context.Context, id string, fn func(s *Session) error) error {
	s, err := r.get(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	fnErr := fn(s)
	r.persist(ctx, s)
	return fnErr
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
