package syncyoutubecontent

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const videoJSON = `{
	"items": [{
		"id": "dQw4w9WgXcQ",
		"snippet": {
			"title": "Introdução ao Git",
			"description": "Aprenda Git do zero",
			"channelTitle": "Canal Dev",
			"thumbnails": {
				"default": {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg"},
				"high": {"url": "https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"}
			}
		},
		"contentDetails": {"duration": "PT12M5S"}
	}]
}`

func newYouTubeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/videos", r.URL.Path)
		assert.Equal(t, "dQw4w9WgXcQ", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "snippet,contentDetails", r.URL.Query().Get("part"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func createTestConfig(baseURL string) *Config {
	config := DefaultConfig()
	config.BaseURL = baseURL
	config.APIKey = "test-key"
	config.MaxRetries = 0
	return config
}

func createTestInput() *Input {
	return &Input{
		ModuleID:       3,
		Title:          "Git na prática",
		YouTubeVideoID: "dQw4w9WgXcQ",
		ContentOrder:   2,
	}
}

func TestHandler_Execute_InsertsWithYouTubeMetadata(t *testing.T) {
	server := newYouTubeServer(t, videoJSON)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO contents`).
		WithArgs(int64(3), "Git na prática", "video", "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"dQw4w9WgXcQ", "Aprenda Git do zero", 13,
			"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg", "Canal Dev", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))

	handler := NewHandler(createTestConfig(server.URL), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, int64(41), output.ContentID)
	assert.Equal(t, 13, output.DurationMinutes)
	assert.Equal(t, "Canal Dev", output.ChannelName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpdatesAndKeepsSuppliedFields(t *testing.T) {
	server := newYouTubeServer(t, videoJSON)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := int64(7)
	duration := 30
	input := createTestInput()
	input.ID = &id
	input.Description = "Descrição própria"
	input.EstimatedDurationMinutes = &duration

	mock.ExpectQuery(`UPDATE contents SET`).
		WithArgs(int64(3), "Git na prática", "video", sqlmock.AnyArg(), "dQw4w9WgXcQ",
			"Descrição própria", 30, sqlmock.AnyArg(), "Canal Dev", 2, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	handler := NewHandler(createTestConfig(server.URL), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, int64(7), output.ContentID)
	assert.Equal(t, 30, output.DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpdateMissingRow(t *testing.T) {
	server := newYouTubeServer(t, videoJSON)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := int64(99)
	input := createTestInput()
	input.ID = &id
	mock.ExpectQuery(`UPDATE contents SET`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	handler := NewHandler(createTestConfig(server.URL), db, logger.NewTestLogger(t))
	_, err = handler.Execute(context.Background(), input)

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeResourceNotFound, stdErr.Code)
}

func TestHandler_Execute_VideoNotFound(t *testing.T) {
	server := newYouTubeServer(t, `{"items": []}`)

	handler := NewHandler(createTestConfig(server.URL), nil, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), createTestInput())

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeVideoNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestHandler_Execute_YouTubeErrorHidesKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer server.Close()

	handler := NewHandler(createTestConfig(server.URL), nil, logger.NewTestLogger(t))
	_, err := handler.Execute(context.Background(), createTestInput())

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeVideoLookupFailed, stdErr.Code)
	assert.NotContains(t, stdErr.Details, "test-key")
}

func TestHandler_Execute_Validation(t *testing.T) {
	handler := NewHandler(createTestConfig("http://unused"), nil, logger.NewNoOpLogger())

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing module", func(in *Input) { in.ModuleID = 0 }},
		{"blank title", func(in *Input) { in.Title = "  " }},
		{"short video id", func(in *Input) { in.YouTubeVideoID = "abc" }},
		{"video url instead of id", func(in *Input) { in.YouTubeVideoID = "https://youtu.be/dQw4w9WgXcQ" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := createTestInput()
			tt.mutate(input)

			_, err := handler.Execute(context.Background(), input)

			var stdErr *errors.StandardError
			require.True(t, stderrors.As(err, &stdErr))
			assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
		})
	}
}
