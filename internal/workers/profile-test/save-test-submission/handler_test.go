package savetestsubmission

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/profiletest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "7d9f3c1e-5b2a-4c8d-9e6f-0a1b2c3d4e5f"

func createTestInput() *Input {
	return &Input{
		UserID:             testUserID,
		Answers:            profiletest.AnswerSet{"q1": {"q1o3"}, "q2": {"q2o6"}},
		RecommendedPathIDs: []string{"qa", "devops"},
	}
}

func TestHandler_Execute_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()

	submittedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO profile_test_submissions`).
		WithArgs(sqlmock.AnyArg(), testUserID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at"}).AddRow("sub-1", submittedAt))

	redisMock.Regexp().ExpectSet(SubmissionCacheKey(testUserID), `.+`, time.Hour).SetVal("OK")

	handler := NewHandler(DefaultConfig(), db, rdb, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "sub-1", output.SubmissionID)
	assert.Equal(t, submittedAt, output.SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheFailureIsNotFatal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rdb, redisMock := redismock.NewClientMock()

	mock.ExpectQuery(`INSERT INTO profile_test_submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "submitted_at"}).AddRow("sub-2", time.Now()))
	redisMock.Regexp().ExpectSet(SubmissionCacheKey(testUserID), `.+`, time.Hour).SetErr(stderrors.New("connection refused"))

	handler := NewHandler(DefaultConfig(), db, rdb, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, "sub-2", output.SubmissionID)
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO profile_test_submissions`).
		WillReturnError(stderrors.New("connection reset"))

	handler := NewHandler(DefaultConfig(), db, nil, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), createTestInput())

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeSubmissionSaveFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(DefaultConfig(), db, nil, logger.NewNoOpLogger())

	tests := []struct {
		name   string
		mutate func(*Input)
		want   errors.ErrorCode
	}{
		{"bad user id", func(in *Input) { in.UserID = "someone" }, errors.ErrCodeValidationFailed},
		{"no answers", func(in *Input) { in.Answers = nil }, errors.ErrCodeEmptySubmission},
		{"no paths", func(in *Input) { in.RecommendedPathIDs = nil }, errors.ErrCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)

			_, err := handler.Execute(context.Background(), input)
			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, tt.want, stdErr.Code)
		})
	}
}
