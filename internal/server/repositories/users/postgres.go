package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository translates user operations into SQL against the
// current unit of work's session. Driver errors never escape raw: they are
// converted to common.ErrorNotFound or common.ErrorPersistence, with detail
// kept in the message only.
type PostgresRepository struct {
	sessions *dbx.SessionContext
}

func NewPostgresRepository(sessions *dbx.SessionContext) *PostgresRepository {
	return &PostgresRepository{sessions: sessions}
}

func (r *PostgresRepository) Save(ctx context.Context, username, passwordHash, email string) (*models.User, error) {

	query :=
		`INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE
		 SET username = EXCLUDED.username,
		     password_hash = EXCLUDED.password_hash,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, username, email, password_hash, created_at, updated_at
		 `

	session, err := r.sessions.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	now := time.Now().UTC()
	user := &models.User{}
	err = session.QueryRowContext(ctx, query,
		uuid.NewString(), username, email, passwordHash, now, now).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {

	query :=
		`SELECT id, username, email, password_hash, created_at, updated_at FROM users
		 WHERE username = $1
		 `

	session, err := r.sessions.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	user := &models.User{}
	err = session.QueryRowContext(ctx, query, username).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	return user, nil
}
