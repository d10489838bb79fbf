package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_CommitAndRollback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_progress").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM user_progress WHERE user_id = $1", "u1")
		return err
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"}
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsPGCode(fk, PGForeignKeyViolation))
	assert.False(t, IsUniqueViolation(errors.New("23505")))
}

func TestJSONCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	type path struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}

	var got path
	hit, err := GetJSON(ctx, rdb, "path:frontend", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetJSON(ctx, rdb, "path:frontend", path{ID: "frontend", Title: "Front-End"}, time.Minute))
	assert.True(t, mr.Exists("path:frontend"))

	hit, err = GetJSON(ctx, rdb, "path:frontend", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Front-End", got.Title)

	mr.Set("path:broken", "{not json")
	hit, err = GetJSON(ctx, rdb, "path:broken", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}
