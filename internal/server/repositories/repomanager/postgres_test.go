package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestUsers_ReturnsRepository(t *testing.T) {
	m := NewPostgresRepositoryManager()
	sessions := dbx.NewSessionContext(nil)
	require.NotNil(t, m.Users(sessions))
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	wantErr := errors.New("migrate failed")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return wantErr
	}

	m := NewPostgresRepositoryManager()
	err := m.RunMigrations(context.Background(), nil)
	require.ErrorIs(t, err, wantErr)
}

func TestRunMigrations_CallsGoose(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	called := false
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		require.Equal(t, ".", dir)
		return nil
	}

	m := NewPostgresRepositoryManager()
	require.NoError(t, m.RunMigrations(context.Background(), nil))
	require.True(t, called)
}
