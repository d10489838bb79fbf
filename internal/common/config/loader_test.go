package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: elevate
    user: ${TEST_ELEVATE_DB_USER}
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
workers:
  calculate-profile-result:
    enabled: true
  save-test-submission:
    enabled: false
    timeout: 5000
profile_test:
  questionnaire_path: configs/questionnaire.yaml
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_ELEVATE_DB_USER", "elevate_app")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "elevate_app", cfg.Database.Postgres.User)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)

	assert.Equal(t, "paths", cfg.Search.PathIndex)
	assert.Equal(t, 9, cfg.Search.DefaultLimit)
	assert.Equal(t, 100, cfg.Search.MaxLimit)

	assert.Equal(t, "gpt-3.5-turbo", cfg.APIs.Chat.Model)
	assert.Equal(t, 0.7, cfg.APIs.Chat.Temperature)
	assert.Equal(t, 150, cfg.APIs.Chat.MaxTokens)
	assert.Equal(t, "configs/questionnaire.yaml", cfg.ProfileTest.QuestionnairePath)

	calc := cfg.Workers["calculate-profile-result"]
	assert.True(t, calc.Enabled)
	assert.Equal(t, 5, calc.MaxJobsActive)
	assert.Equal(t, 30000, calc.Timeout)

	save := GetWorkerConfig(cfg, "save-test-submission")
	assert.False(t, save.Enabled)
	assert.Equal(t, 5*time.Second, GetDuration(save.Timeout))
}

func TestLoadFromFile_SecretFallbacks(t *testing.T) {
	t.Setenv("TEST_ELEVATE_DB_USER", "elevate_app")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.APIs.Chat.APIKey)
	assert.Equal(t, "https://project.supabase.co", cfg.APIs.Auth.BaseURL)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing broker",
			body:    "database:\n  postgres:\n    host: x\n",
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing redis",
			body: `
camunda: {broker_address: "zeebe:26500"}
database:
  postgres: {host: db, database: elevate, user: app}
  elasticsearch: {url: "http://es:9200"}
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "default limit above max",
			body: `
camunda: {broker_address: "zeebe:26500"}
database:
  postgres: {host: db, database: elevate, user: app}
  elasticsearch: {url: "http://es:9200"}
  redis: {address: "redis:6379"}
search: {default_limit: 50, max_limit: 20}
`,
			wantErr: "search.default_limit (50) exceeds search.max_limit (20)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsWorkerEnabled_UnknownDefaultsToEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"interview-chat": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "interview-chat"))
	assert.True(t, IsWorkerEnabled(cfg, "search-paths"))
}
