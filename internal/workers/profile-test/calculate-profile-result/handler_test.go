package calculateprofileresult

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"
	"elevate-workers/internal/profiletest"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(DefaultConfig(), profiletest.NewScorer(profiletest.Default()), logger.NewTestLogger(t))
}

func createMockJob(key int64, variables string) entities.Job {
	return entities.Job{
		ActivatedJob: &pb.ActivatedJob{
			Key:                      key,
			Type:                     TaskType,
			ProcessInstanceKey:       key * 10,
			BpmnProcessId:            "profile-test-process",
			ProcessDefinitionVersion: 1,
			ProcessDefinitionKey:     1,
			ElementId:                "calculate-profile-result-task",
			ElementInstanceKey:       1,
			CustomHeaders:            "{}",
			Worker:                   "test-worker",
			Retries:                  3,
			Deadline:                 0,
			Variables:                variables,
		},
	}
}

func inputFromJob(t *testing.T, job entities.Job) *Input {
	t.Helper()
	var input Input
	require.NoError(t, json.Unmarshal([]byte(job.Variables), &input))
	return &input
}

func TestHandler_Execute_Frontend(t *testing.T) {
	handler := newTestHandler(t)
	job := createMockJob(1, `{"userId":"u-1","answers":{"q1":"q1o1","q2":"q2o1","q3":"q3o1","q4":"q4o1","q5":"q5o1"}}`)

	output, err := handler.Execute(context.Background(), inputFromJob(t, job))
	require.NoError(t, err)

	assert.Equal(t, "frontend", output.TopCategory)
	assert.Equal(t, 13, output.Scores.Get(profiletest.Frontend))
	assert.Equal(t, 8, output.Scores.Get(profiletest.UXUI))
	assert.Equal(t, 0, output.Scores.Get(profiletest.Fullstack))
	assert.Equal(t, []string{"frontend", "ux_ui", "qa"}, output.RecommendedPathIDs)
}

func TestHandler_Execute_CountsRecommendationsByPosition(t *testing.T) {
	handler := newTestHandler(t)
	job := createMockJob(5, `{"answers":{"q1":"q1o1","q2":"q2o1","q3":"q3o1","q4":"q4o1","q5":"q5o1"}}`)

	first := metrics.ProfileRecommendations.WithLabelValues("frontend", "1")
	second := metrics.ProfileRecommendations.WithLabelValues("uxui", "2")
	beforeFirst, beforeSecond := testutil.ToFloat64(first), testutil.ToFloat64(second)

	_, err := handler.Execute(context.Background(), inputFromJob(t, job))
	require.NoError(t, err)

	assert.Equal(t, beforeFirst+1, testutil.ToFloat64(first))
	assert.Equal(t, beforeSecond+1, testutil.ToFloat64(second))
}

func TestHandler_Execute_FullstackProfile(t *testing.T) {
	handler := newTestHandler(t)
	job := createMockJob(2, `{"userId":"u-2","answers":{"q1":["q1o2"],"q2":"q2o1","q3":"q3o2","q4":"q4o1","q5":"q5o5"}}`)

	output, err := handler.Execute(context.Background(), inputFromJob(t, job))
	require.NoError(t, err)

	// frontend 6, backend 6: balanced, bonus applies
	assert.Equal(t, 15, output.Scores.Get(profiletest.Fullstack))
	assert.Equal(t, "fullstack", output.TopCategory)
	require.Len(t, output.Recommendations, 3)
	assert.Equal(t, "Desenvolvedor Full Stack", output.Recommendations[0].Name)
}

func TestHandler_Execute_EmptySubmission(t *testing.T) {
	handler := newTestHandler(t)

	for _, vars := range []string{`{"userId":"u-3"}`, `{"answers":{}}`, `{"answers":{"q1":[""]}}`} {
		_, err := handler.Execute(context.Background(), inputFromJob(t, createMockJob(3, vars)))

		var stdErr *errors.StandardError
		require.True(t, stderrors.As(err, &stdErr), vars)
		assert.Equal(t, errors.ErrCodeEmptySubmission, stdErr.Code)
		assert.Equal(t, string(errors.ErrCodeProfileTestValidationFailed), errors.ConvertToBPMNError(stdErr).Code)
	}
}

func TestHandler_Execute_UnknownAnswersStillRecommend(t *testing.T) {
	handler := newTestHandler(t)
	job := createMockJob(4, `{"answers":{"q42":"q42o1"}}`)

	output, err := handler.Execute(context.Background(), inputFromJob(t, job))
	require.NoError(t, err)
	assert.Equal(t, []string{"frontend", "backend", "fullstack"}, output.RecommendedPathIDs)
}

func TestOutput_JSONShape(t *testing.T) {
	handler := newTestHandler(t)
	output, err := handler.Execute(context.Background(), &Input{Answers: profiletest.AnswerSet{"q4": {"q4o6"}}})
	require.NoError(t, err)

	data, err := json.Marshal(output)
	require.NoError(t, err)

	var vars map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vars))
	assert.Contains(t, vars, "scores")
	assert.Contains(t, vars, "recommendedPathIds")
	assert.Equal(t, "qa", vars["topCategory"])
}
