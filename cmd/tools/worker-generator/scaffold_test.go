package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"elevate-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testActivity() registry.Activity {
	return registry.Activity{
		ID:          "grade-quiz",
		DisplayName: "Grade Quiz",
		Description: "Grades a module quiz",
		Category:    "content",
		TaskType:    "grade-quiz",
		Timeout:     "1500ms",
		ErrorCodes:  []string{"VALIDATION_FAILED"},
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"user_id":  map[string]interface{}{"type": "string", "description": "owner"},
				"answers":  map[string]interface{}{"type": "array"},
				"attempt":  map[string]interface{}{"type": "integer"},
				"imageUrl": map[string]interface{}{"type": "string"},
			},
		},
		OutputSchema: map[string]interface{}{
			"properties": map[string]interface{}{
				"score":  map[string]interface{}{"type": "number"},
				"passed": map[string]interface{}{"type": "boolean"},
			},
		},
	}
}

func TestScaffold_RendersWorkerFiles(t *testing.T) {
	files, err := Scaffold(testActivity())
	require.NoError(t, err)
	require.Len(t, files, 4)

	handler := string(files["handler.go"])
	assert.Contains(t, handler, "package gradequiz")
	assert.Contains(t, handler, `TaskType = "grade-quiz"`)
	assert.Contains(t, handler, "metrics.StartJob(TaskType)")
	assert.Contains(t, handler, "Handle(ctx context.Context, client worker.JobClient, job entities.Job) error")
	assert.Contains(t, handler, "camunda.CompleteJob(ctx, client, job, output)")

	assert.Contains(t, string(files["config.go"]), "1500 * time.Millisecond")

	models := string(files["models.go"])
	assert.Contains(t, models, "UserID")
	assert.Contains(t, models, `json:"user_id"`)
	assert.Contains(t, models, "// owner")
	assert.Contains(t, models, "ImageURL")
	assert.Contains(t, models, "Attempt")
	assert.Contains(t, models, "Passed")
	assert.Less(t, strings.Index(models, "Answers"), strings.Index(models, "Attempt"))
}

func TestWriteScaffold_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	act := testActivity()
	files, err := Scaffold(act)
	require.NoError(t, err)

	dir, err := WriteScaffold(root, act, files, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "content", "grade-quiz"), dir)
	_, err = os.Stat(filepath.Join(dir, "handler_test.go"))
	require.NoError(t, err)

	_, err = WriteScaffold(root, act, files, false)
	assert.Error(t, err)

	_, err = WriteScaffold(root, act, files, true)
	assert.NoError(t, err)
}

func TestTimeoutLiteral(t *testing.T) {
	assert.Equal(t, "15 * time.Second", timeoutLiteral("15s"))
	assert.Equal(t, "250 * time.Millisecond", timeoutLiteral("250ms"))
	assert.Equal(t, "10 * time.Second", timeoutLiteral(""))
	assert.Equal(t, "10 * time.Second", timeoutLiteral("soon"))
}

func TestExportedName(t *testing.T) {
	assert.Equal(t, "PathID", exportedName("path_id"))
	assert.Equal(t, "CoverImageURL", exportedName("coverImageUrl"))
	assert.Equal(t, "Topic", exportedName("topic"))
}
