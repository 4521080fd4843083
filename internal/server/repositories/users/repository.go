package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// Repository persists and retrieves users. Implementations obtain their
// session from the ambient unit of work and never manage its lifecycle.
type Repository interface {
	// Save upserts keyed on email: a new row is inserted, or the existing
	// row's username, password hash and updated_at are replaced while id
	// and created_at survive. Returns the persisted user.
	Save(ctx context.Context, username, passwordHash, email string) (*models.User, error)

	// GetByUsername returns common.ErrorNotFound when no row matches,
	// distinct from a persistence failure.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
