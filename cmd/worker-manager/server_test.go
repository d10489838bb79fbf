package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"elevate-workers/internal/common/logger"
	"elevate-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error { return nil }

func TestOpsRouter_Health(t *testing.T) {
	router := newOpsRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestOpsRouter_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]readinessCheck
		wantStatus int
		wantState  string
	}{
		{
			name:       "all dependencies up",
			checks:     map[string]readinessCheck{"postgres": okCheck, "redis": okCheck},
			wantStatus: http.StatusOK,
			wantState:  "ready",
		},
		{
			name: "redis down",
			checks: map[string]readinessCheck{
				"postgres": okCheck,
				"redis":    func(context.Context) error { return errors.New("redis ping failed") },
			},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "not_ready",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newOpsRouter(tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Equal(t, "ok", body.Checks["postgres"])
		})
	}
}

func TestOpsRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegistrations_CoverEveryTaskType(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range registrations {
		assert.False(t, seen[r.taskType], "duplicate registration %s", r.taskType)
		seen[r.taskType] = true
	}
	assert.Len(t, seen, 20)
}

func TestCheckRegistry_ShippedRegistryCoversWorkers(t *testing.T) {
	missing := checkRegistry("../../configs/activity-registry.json", logger.NewTestLogger(t))
	assert.Empty(t, missing)
}

func TestCheckRegistry_ReportsMissingWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := &registry.ActivityRegistry{Version: "1.0.0"}
	require.NoError(t, reg.Add(registry.Activity{
		ID:          "search-paths",
		DisplayName: "Search Paths",
		Category:    "catalog",
		TaskType:    "search-paths",
	}))
	require.NoError(t, reg.Save(path))

	missing := checkRegistry(path, logger.NewNoOpLogger())
	assert.Len(t, missing, len(registrations)-1)
	assert.NotContains(t, missing, "search-paths")
}

func TestCheckRegistry_UnreadableRegistryIsNotFatal(t *testing.T) {
	missing := checkRegistry(filepath.Join(t.TempDir(), "absent.json"), logger.NewNoOpLogger())
	assert.Nil(t, missing)
}
