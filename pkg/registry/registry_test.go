package registry

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity(id string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Calculate Profile Result",
		Category:             "profile-test",
		TaskType:             id,
		ImplementationStatus: StatusCompleted,
		Timeout:              "5s",
		Retries:              0,
	}
}

func TestRegistry_AddSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")

	reg, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.NoError(t, reg.Add(sampleActivity("calculate-profile-result")))
	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.NotEmpty(t, loaded.LastUpdated)
	require.Len(t, loaded.Activities, 1)

	a, err := loaded.FindByTaskType("calculate-profile-result")
	require.NoError(t, err)
	assert.Equal(t, "profile-test", a.Category)

	assert.Error(t, loaded.Add(sampleActivity("calculate-profile-result")), "duplicate id")
}

func TestRegistry_Update(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{sampleActivity("search-paths")}}

	require.NoError(t, reg.Update("search-paths", "status", StatusVerified))
	require.NoError(t, reg.Update("search-paths", "retries", "2"))
	require.NoError(t, reg.Update("search-paths", "timeout", "15s"))

	a, _ := reg.Find("search-paths")
	assert.Equal(t, StatusVerified, a.ImplementationStatus)
	assert.Equal(t, 2, a.Retries)
	assert.Equal(t, "15s", a.Timeout)

	assert.Error(t, reg.Update("search-paths", "status", "done"))
	assert.Error(t, reg.Update("search-paths", "retries", "-1"))
	assert.Error(t, reg.Update("search-paths", "timeout", "soon"))
	assert.Error(t, reg.Update("search-paths", "owner", "x"))

	err := reg.Update("missing", "status", StatusPlanned)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistry_Validate(t *testing.T) {
	dupTask := sampleActivity("b")
	dupTask.TaskType = "a"

	tests := []struct {
		name    string
		reg     *ActivityRegistry
		wantErr string
	}{
		{"empty", &ActivityRegistry{}, "no activities"},
		{"duplicate id", &ActivityRegistry{Activities: []Activity{sampleActivity("a"), sampleActivity("a")}}, "duplicate activity ID"},
		{"duplicate task type", &ActivityRegistry{Activities: []Activity{sampleActivity("a"), dupTask}}, "duplicate task type"},
		{"missing category", &ActivityRegistry{Activities: []Activity{{ID: "x", DisplayName: "X", TaskType: "x"}}}, "Category"},
		{"valid", &ActivityRegistry{Activities: []Activity{sampleActivity("a"), sampleActivity("b")}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestShippedRegistryIsValid(t *testing.T) {
	reg, err := LoadRegistry(filepath.Join("..", "..", "configs", "activity-registry.json"))
	require.NoError(t, err)
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 20)
}
