package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-gin-order-api/internal/domains/users/domain"
	"github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory credential store.
type Repository struct {
	mu      sync.RWMutex
	byID    map[int64]*domain.User
	byEmail map[string]int64
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{byID: map[int64]*domain.User{}, byEmail: map[string]int64{}}
}

func (r *Repository) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[clone.Email]; taken {
		return nil, ports.ErrEmailTaken
	}
	r.nextID++
	clone.ID = r.nextID
	clone.CreatedAt = time.Now().UTC()
	r.byID[clone.ID] = &clone
	r.byEmail[clone.Email] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	normalized, err := domain.NormalizeEmail(email)
	if err != nil {
		return nil, ports.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalized]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	out := *user
	return &out, nil
}

// SetActive flips the active flag; no transport exposes it.
func (r *Repository) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return ports.ErrNotFound
	}
	user.Active = active
	return nil
}
