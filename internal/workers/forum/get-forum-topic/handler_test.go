package getforumtopic

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute_ReturnsPostsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`WHERE t.slug = \$1`).
		WithArgs("primeiro-emprego").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "category", "user_id", "full_name", "post_count", "created_at", "last_activity_at"}).
			AddRow("t-1", "Primeiro emprego", "primeiro-emprego", "", "u-1", "Ana Souza", 2, now, now))
	mock.ExpectQuery(`ORDER BY p.created_at ASC`).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "topic_id", "user_id", "full_name", "content", "created_at", "updated_at"}).
			AddRow("p-1", "t-1", "u-1", "Ana Souza", "Alguém tem dicas?", now, now).
			AddRow("p-2", "t-1", "u-2", "Bruno Lima", "Monte um portfólio.", now.Add(time.Hour), now.Add(time.Hour)))

	handler := NewHandler(DefaultConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{Slug: " primeiro-emprego "})

	require.NoError(t, err)
	assert.Equal(t, "Primeiro emprego", output.Topic.Title)
	assert.Equal(t, 2, output.PostCount)
	assert.Equal(t, []string{"p-1", "p-2"}, []string{output.Posts[0].ID, output.Posts[1].ID})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE t.slug = \$1`).WillReturnError(stderrors.New("connection reset"))

	handler := NewHandler(DefaultConfig(), db, logger.NewNoOpLogger())
	_, err = handler.Execute(context.Background(), &Input{Slug: "nada"})

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeForumQueryFailed, stdErr.Code)
}

func TestHandler_Execute_MissingSlug(t *testing.T) {
	handler := NewHandler(DefaultConfig(), nil, logger.NewNoOpLogger())
	_, err := handler.Execute(context.Background(), &Input{Slug: "  "})

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
}
