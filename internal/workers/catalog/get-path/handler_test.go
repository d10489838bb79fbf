package getpath

import (
	"context"
	stderrors "errors"
	"testing"

	"elevate-workers/internal/common/database"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pathColumns = []string{
		"id", "title", "description", "category", "difficulty_level", "cover_image_url",
		"long_description", "skills_array", "career_opportunities_array",
	}
	moduleColumns = []string{
		"module_id", "module_title", "module_order",
		"content_id", "title", "content_type", "url", "youtube_video_id", "description",
		"estimated_duration_minutes", "thumbnail_url", "channel_name", "content_order",
	}
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func errorCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %v", err)
	return stdErr.Code
}

func expectFrontendPath(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`FROM paths`).
		WithArgs("frontend").
		WillReturnRows(sqlmock.NewRows(pathColumns).
			AddRow("frontend", "Front-End Moderno", "Web do zero", "Web", "Iniciante", "",
				"Aprenda a construir interfaces.", "{HTML,CSS,JavaScript}", nil))
	mock.ExpectQuery(`FROM modules m`).
		WithArgs("frontend").
		WillReturnRows(sqlmock.NewRows(moduleColumns).
			AddRow(int64(1), "Fundamentos", 1, int64(10), "HTML semântico", "video", "", "abc123", "", 12, "", "Canal", 1).
			AddRow(int64(1), "Fundamentos", 1, int64(11), "CSS Grid", "article", "https://x", "", "", 8, "", "", 2).
			AddRow(int64(2), "Projeto final", 2, nil, "", "", "", "", "", 0, "", "", 0))
}

func TestHandler_Execute_GroupsContentsByModule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expectFrontendPath(mock)

	handler := NewHandler(DefaultConfig(), db, nil, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{PathID: " frontend "})

	require.NoError(t, err)
	assert.False(t, output.Cached)
	assert.Equal(t, []string{"HTML", "CSS", "JavaScript"}, output.Path.Skills)
	assert.Equal(t, []string{}, output.Path.CareerOpportunities)
	require.Equal(t, 2, output.ModuleCount)
	assert.Equal(t, 2, output.ContentCount)
	assert.Equal(t, []string{"HTML semântico", "CSS Grid"},
		[]string{output.Path.Modules[0].Contents[0].Title, output.Path.Modules[0].Contents[1].Title})
	assert.Equal(t, int64(1), output.Path.Modules[0].Contents[0].ModuleID)
	assert.Empty(t, output.Path.Modules[1].Contents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_FillsAndReadsCache(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mr, rdb := setupRedis(t)
	expectFrontendPath(mock)

	handler := NewHandler(DefaultConfig(), db, rdb, logger.NewTestLogger(t))
	first, err := handler.Execute(context.Background(), &Input{PathID: "frontend"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, mr.Exists(PathDetailCacheKey("frontend")))

	second, err := handler.Execute(context.Background(), &Input{PathID: "frontend"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ContentCount, second.ContentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheHitSkipsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, rdb := setupRedis(t)
	require.NoError(t, database.SetJSON(context.Background(), rdb, PathDetailCacheKey("qa"),
		models.PathDetail{Path: models.Path{ID: "qa", Title: "Qualidade de Software"}}, 0))

	handler := NewHandler(DefaultConfig(), db, rdb, logger.NewNoOpLogger())
	output, err := handler.Execute(context.Background(), &Input{PathID: "qa"})

	require.NoError(t, err)
	assert.True(t, output.Cached)
	assert.Equal(t, "Qualidade de Software", output.Path.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownPath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM paths`).WillReturnRows(sqlmock.NewRows(pathColumns))

	handler := NewHandler(DefaultConfig(), db, nil, logger.NewNoOpLogger())
	_, err = handler.Execute(context.Background(), &Input{PathID: "cobol"})

	assert.Equal(t, errors.ErrCodePathNotFound, errorCode(t, err))
}

func TestHandler_Execute_ModuleQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM paths`).
		WillReturnRows(sqlmock.NewRows(pathColumns).
			AddRow("qa", "QA", "", "", "", "", "", nil, nil))
	mock.ExpectQuery(`FROM modules m`).WillReturnError(stderrors.New("connection reset"))

	handler := NewHandler(DefaultConfig(), db, nil, logger.NewNoOpLogger())
	_, err = handler.Execute(context.Background(), &Input{PathID: "qa"})

	assert.Equal(t, errors.ErrCodeCatalogLookupFailed, errorCode(t, err))
}

func TestHandler_Execute_MissingPathID(t *testing.T) {
	handler := NewHandler(DefaultConfig(), nil, nil, logger.NewNoOpLogger())
	_, err := handler.Execute(context.Background(), &Input{})

	assert.Equal(t, errors.ErrCodeValidationFailed, errorCode(t, err))
}
