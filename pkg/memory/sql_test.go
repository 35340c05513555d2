package memory

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postgres(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS shopeasy_storage").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := NewSQLStore(context.Background(), db, DialectPostgres, "ns")
	require.NoError(t, err)
	store.now = func() time.Time { return time.UnixMilli(1_000_000) }
	return store, mock
}

func TestSQLStore_Get(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgres(selectSQL))).
		WithArgs("ns:shoppingCart").
		WillReturnRows(sqlmock.NewRows([]string{"item_value", "expires_at"}).AddRow(`[]`, 0))

	got, err := store.Get(context.Background(), "shoppingCart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetMissing(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgres(selectSQL))).
		WithArgs("ns:shoppingCart").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "shoppingCart")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetExpiredDeletesRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(postgres(selectSQL))).
		WithArgs("ns:currentSession").
		WillReturnRows(sqlmock.NewRows([]string{"item_value", "expires_at"}).AddRow("token", 999_999))
	mock.ExpectExec(regexp.QuoteMeta(postgres(deleteSQL))).
		WithArgs("ns:currentSession").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := store.Get(context.Background(), "currentSession")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetWithTTL(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(postgres(upsertSQL))).
		WithArgs("ns:currentSession", "token", int64(1_060_000)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Set(context.Background(), "currentSession", "token", time.Minute))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SetFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(postgres(upsertSQL))).
		WithArgs("ns:shoppingCart", "[]", int64(0)).
		WillReturnError(errors.New("disk full"))

	err := store.Set(context.Background(), "shoppingCart", "[]", 0)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "set", se.Op)
	assert.Equal(t, "shoppingCart", se.Key)
	assert.EqualError(t, se.Err, "disk full")
}

func TestSQLStore_MigrationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS shopeasy_storage").
		WillReturnError(errors.New("permission denied"))

	_, err = NewSQLStore(context.Background(), db, DialectPostgres, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate shopeasy_storage")
}

func TestSQLStore_Placeholders(t *testing.T) {
	assert.Equal(t, "DELETE FROM shopeasy_storage WHERE item_key = $1", postgres(deleteSQL))
	assert.Equal(t, deleteSQL, sqlx.Rebind(sqlx.BindType(string(DialectSQLite)), deleteSQL))
}
