package searchpaths

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedSearch struct {
	Path  string
	Query string
	Body  map[string]interface{}
}

// newFakeElasticsearch answers every search with the given status and body
// and records the last request.
func newFakeElasticsearch(t *testing.T, status int, response string) (*elasticsearch.Client, *capturedSearch) {
	t.Helper()
	captured := &capturedSearch{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Query = r.URL.RawQuery
		if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &captured.Body)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client, captured
}

const twoHits = `{
	"took": 2,
	"hits": {
		"total": {"value": 11, "relation": "eq"},
		"hits": [
			{"_id": "backend", "_source": {"id": "backend", "title": "Back-End com Node", "category": "Web", "difficulty_level": "Intermediário"}},
			{"_id": "data_ai", "_source": {"title": "Dados & IA", "description": "Python e ML", "category": "Dados", "cover_image_url": "https://cdn/ai.png"}}
		]
	}
}`

func TestHandler_Execute_BuildsQueryAndPaginates(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, twoHits)
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Search:   "node",
		Category: "Web",
		Level:    "All",
		Page:     2,
		Limit:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, "/paths/_search", captured.Path)
	assert.Contains(t, captured.Query, "from=5")
	assert.Contains(t, captured.Query, "size=5")

	boolQuery := captured.Body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["must"], 1)
	assert.Len(t, boolQuery["filter"], 1, "level All must not filter")

	require.Len(t, output.Data, 2)
	assert.Equal(t, "backend", output.Data[0].ID)
	assert.Equal(t, "data_ai", output.Data[1].ID, "falls back to _id")
	assert.Equal(t, "https://cdn/ai.png", output.Data[1].CoverImageURL)

	assert.Equal(t, 11, output.Pagination.TotalItems)
	assert.Equal(t, 3, output.Pagination.TotalPages)
	assert.Equal(t, 2, output.Pagination.CurrentPage)
	assert.Equal(t, 5, output.Pagination.Limit)
}

func TestHandler_Execute_Defaults(t *testing.T) {
	client, captured := newFakeElasticsearch(t, http.StatusOK, `{"hits":{"total":{"value":0},"hits":[]}}`)
	handler := NewHandler(DefaultConfig(), client, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Category: "all"})
	require.NoError(t, err)

	assert.Contains(t, captured.Query, "from=0")
	assert.Contains(t, captured.Query, "size=9")
	boolQuery := captured.Body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.NotContains(t, boolQuery, "filter")

	assert.Empty(t, output.Data)
	assert.Equal(t, 1, output.Pagination.CurrentPage)
	assert.Equal(t, 0, output.Pagination.TotalPages)
}

func TestHandler_Execute_InvalidPaging(t *testing.T) {
	handler := NewHandler(DefaultConfig(), nil, logger.NewNoOpLogger())

	for _, input := range []*Input{{Page: -1}, {Limit: 101}, {Limit: -3}} {
		_, err := handler.Execute(context.Background(), input)

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr))
		assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
	}
}

func TestHandler_Execute_ElasticsearchError(t *testing.T) {
	client, _ := newFakeElasticsearch(t, http.StatusInternalServerError, `{"error":{"type":"search_phase_execution_exception"}}`)
	config := DefaultConfig()
	handler := NewHandler(config, client, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Search: "go"})

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeSearchQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestBuildQuery_SortsByTitle(t *testing.T) {
	query := buildQuery(&Input{Level: "Iniciante"})

	sort := query["sort"].([]interface{})
	require.Len(t, sort, 1)
	assert.Contains(t, sort[0], "title.keyword")

	filters := query["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"difficulty_level": "Iniciante"}}, filters[0])
}
