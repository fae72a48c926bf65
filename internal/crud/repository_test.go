package crud

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "admissions/pkg/errors"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var widgetRowColumns = []string{"id", "user_id", "name", "capacity", "created_at", "updated_at"}

func TestRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, user_id, name, capacity, created_at, updated_at FROM widgets ORDER BY created_at DESC LIMIT 500`).
		WillReturnRows(sqlmock.NewRows(widgetRowColumns).
			AddRow("w-1", "u-1", "North", 30, now, now).
			AddRow("w-2", "u-1", "South", 10, now, now))

	items, err := repo.List(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "North", items[0].Name)
	assert.Equal(t, 30, items[0].Capacity)
	assert.Equal(t, "u-1", items[1].UserID)
	assert.Equal(t, now, items[1].CreatedAt)
}

func TestRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())

	mock.ExpectQuery(`SELECT (.+) FROM widgets WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(widgetRowColumns))

	_, err := repo.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "widget missing not found")
}

func TestRepository_CreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectExec(`INSERT INTO widgets \(id,user_id,name,capacity,created_at,updated_at\)`).
		WithArgs(sqlmock.AnyArg(), "u-1", "North", 30, fixed, fixed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := &widget{Meta: Meta{UserID: "u-1"}, Name: "North", Capacity: 30}
	require.NoError(t, repo.Create(context.Background(), w))

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, fixed, w.CreatedAt)
	assert.Equal(t, fixed, w.UpdatedAt)
}

func TestRepository_CreateDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())

	mock.ExpectExec(`INSERT INTO widgets`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "widgets_name_key", Column: "name"})

	err := repo.Create(context.Background(), &widget{Name: "North"})

	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Contains(t, err.Error(), "a widget with the same name already exists")
}

func TestRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())

	mock.ExpectExec(`UPDATE widgets SET user_id = \$1, name = \$2, capacity = \$3, updated_at = \$4 WHERE id = \$5`).
		WithArgs("u-1", "North", 30, sqlmock.AnyArg(), "w-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &widget{Meta: Meta{ID: "w-1", UserID: "u-1"}, Name: "North", Capacity: 30})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestRepository_DeleteReferencedIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())

	mock.ExpectExec(`DELETE FROM widgets WHERE id = \$1`).
		WithArgs("w-1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), "w-1")

	assert.True(t, pkgerrors.IsConflict(err))
}

func TestRepository_DeleteInvalidIDIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRepository(db, widgetSchema())

	mock.ExpectExec(`DELETE FROM widgets`).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})

	err := repo.Delete(context.Background(), "not-a-uuid")

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSchema_MustCheckPanicsOnMismatch(t *testing.T) {
	s := widgetSchema()
	s.Columns = []string{"name"}

	assert.Panics(t, func() { s.MustCheck() })
}
