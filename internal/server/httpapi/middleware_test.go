package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:httpapi_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY, v TEXT); DELETE FROM t;`)
	require.NoError(t, err)
	return db
}

func txCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	return n
}

func insertingHandler(sc *dbx.SessionContext, fail bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		session, err := sc.GetSession(ctx)
		if err != nil {
			return err
		}
		if _, err := session.ExecContext(ctx, `INSERT INTO t(v) VALUES ('x')`); err != nil {
			return err
		}
		if fail {
			return echo.NewHTTPError(http.StatusInternalServerError, "handler failed")
		}
		return c.NoContent(http.StatusOK)
	}
}

func TestTransactional_CommitsOnSuccess(t *testing.T) {
	db := setupTxDB(t)
	sc := dbx.NewSessionContext(dbx.NewFactory(db))

	e := echo.New()
	e.Use(Transactional(sc))
	e.POST("/t", insertingHandler(sc, false))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/t", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, txCount(t, db), "successful request must commit")
}

func TestTransactional_RollsBackOnHandlerError(t *testing.T) {
	db := setupTxDB(t)
	sc := dbx.NewSessionContext(dbx.NewFactory(db))

	e := echo.New()
	e.Use(Transactional(sc))
	e.POST("/t", insertingHandler(sc, true))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/t", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, txCount(t, db), "failed request must roll back")
}

func TestTransactional_NoSessionForIdleHandler(t *testing.T) {
	db := setupTxDB(t)

	var created int
	factory := func(ctx context.Context) (dbx.Session, error) {
		created++
		return db.BeginTx(ctx, nil)
	}
	sc := dbx.NewSessionContext(factory)

	e := echo.New()
	e.Use(Transactional(sc))
	e.GET("/idle", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/idle", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, created, "handlers that skip the store must not open a session")
}

func TestRequestLogger_LogsStatusAndPropagatesError(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	e := echo.New()
	e.Use(RequestLogger(logger))
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "boom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "uri=/boom")
	assert.Contains(t, out, "status=418")
}

func TestTransactional_SessionSharedWithinRequest(t *testing.T) {
	db := setupTxDB(t)
	sc := dbx.NewSessionContext(dbx.NewFactory(db))

	e := echo.New()
	e.Use(Transactional(sc))
	e.GET("/shared", func(c echo.Context) error {
		ctx := c.Request().Context()
		first, err := sc.GetSession(ctx)
		if err != nil {
			return err
		}
		second, err := sc.GetSession(ctx)
		if err != nil {
			return err
		}
		if first != second {
			return errors.New("session not shared")
		}
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/shared", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
