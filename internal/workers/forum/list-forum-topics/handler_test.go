package listforumtopics

import (
	"context"
	"testing"
	"time"

	"elevate-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var topicColumns = []string{"id", "title", "slug", "category", "user_id", "full_name", "post_count", "created_at", "last_activity_at"}

func TestHandler_Execute_UsesDefaultLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`FROM forum_topics_with_post_count`).
		WithArgs("", 50).
		WillReturnRows(sqlmock.NewRows(topicColumns).
			AddRow("t-1", "Primeiro emprego", "primeiro-emprego", "carreira", "u-1", "Ana Souza", 3, now, now))

	handler := NewHandler(DefaultConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.Equal(t, 1, output.TopicCount)
	assert.Equal(t, "primeiro-emprego", output.Topics[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CapsLimitAndTrimsCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM forum_topics_with_post_count`).
		WithArgs("carreira", 200).
		WillReturnRows(sqlmock.NewRows(topicColumns))

	handler := NewHandler(DefaultConfig(), db, logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), &Input{Category: " carreira ", Limit: 5000})

	require.NoError(t, err)
	assert.Empty(t, output.Topics)
	assert.NotNil(t, output.Topics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NegativeLimit(t *testing.T) {
	handler := NewHandler(DefaultConfig(), nil, logger.NewNoOpLogger())
	_, err := handler.Execute(context.Background(), &Input{Limit: -1})
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Timeout: time.Second, DefaultLimit: 10, MaxLimit: 5}).Validate())
}
