package users

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
	userports "github.com/Apurer/go-gin-order-api/internal/domains/users/ports"
)

var _ ports.UserDirectory = (*Directory)(nil)

// Directory answers order owner lookups from the users credential store.
type Directory struct {
	repo userports.Repository
}

func NewDirectory(repo userports.Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) Exists(ctx context.Context, userID int64) (bool, error) {
	if d == nil || d.repo == nil {
		return false, errors.New("user directory not configured")
	}
	if _, err := d.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, userports.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
