package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"elevate-workers/pkg/registry"
)

// workerData feeds the file templates.
type workerData struct {
	Name        string
	Description string
	PackageName string
	TaskType    string
	Timeout     string
	Input       []field
	Output      []field
	ErrorCodes  []string
}

type field struct {
	Name    string
	Type    string
	JSON    string
	Comment string
}

// Scaffold renders the worker files for an activity, keyed by file name.
// Go sources are gofmt'd.
func Scaffold(a registry.Activity) (map[string][]byte, error) {
	data := workerData{
		Name:        a.DisplayName,
		Description: a.Description,
		PackageName: packageName(a.ID),
		TaskType:    a.TaskType,
		Timeout:     timeoutLiteral(a.Timeout),
		Input:       schemaFields(a.InputSchema),
		Output:      schemaFields(a.OutputSchema),
		ErrorCodes:  a.ErrorCodes,
	}

	out := make(map[string][]byte, len(templates))
	for name, src := range templates {
		tmpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", name, err)
		}
		formatted, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		out[name] = formatted
	}
	return out, nil
}

// WriteScaffold writes files under root/<category>/<id> and returns that
// directory. Existing files are kept unless force is set.
func WriteScaffold(root string, a registry.Activity, files map[string][]byte, force bool) (string, error) {
	dir := filepath.Join(root, a.Category, a.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return dir, nil
}

func packageName(id string) string {
	return strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(id))
}

// timeoutLiteral turns a registry duration into a Go expression, defaulting
// to ten seconds.
func timeoutLiteral(s string) string {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return "10 * time.Second"
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// schemaFields lists a JSON schema's properties as struct fields, sorted by
// name so output is stable.
func schemaFields(schema map[string]interface{}) []field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]field, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]interface{})
		desc, _ := prop["description"].(string)
		fields = append(fields, field{
			Name:    exportedName(name),
			Type:    goType(prop["type"]),
			JSON:    name,
			Comment: desc,
		})
	}
	return fields
}

func goType(t interface{}) string {
	switch t {
	case "string":
		return "string"
	case "integer":
		return "int64"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "array":
		return "[]interface{}"
	case "object":
		return "map[string]interface{}"
	}
	return "interface{}"
}

// exportedName upper-cases the first rune and any rune after '_' or '-',
// with Id/Url spelled as initialisms.
func exportedName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '_' || r == '-' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	name := b.String()
	for _, suffix := range []string{"Id", "Url"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix) + strings.ToUpper(suffix)
		}
	}
	return name
}

var templates = map[string]string{
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler.go":      handlerTemplate,
	"handler_test.go": testTemplate,
}

const configTemplate = `package {{ .PackageName }}

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- range .Input }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .Output }}
	{{ .Name }} {{ .Type }} ` + "`json:\"{{ .JSON }}\"`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"fmt"

	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

{{ if .Description }}// Handler runs {{ .Name }}: {{ .Description }}.
{{ end -}}
{{- if .ErrorCodes }}// Fails with:{{ range .ErrorCodes }} {{ . }}{{ end }}.
{{ end -}}
type Handler struct {
	config       *Config
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(ctx context.Context, client worker.JobClient, job entities.Job) error {
	timer := metrics.StartJob(TaskType)
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return h.failJob(ctx, client, job, errors.NewValidationError(fmt.Sprintf("parse input: %v", err)), timer)
	}

	execCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.Execute(execCtx, &input)
	if err != nil {
		return h.failJob(ctx, client, job, err, timer)
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		timer.Done(string(errors.Normalize(err).Code))
		return err
	}
	timer.Done("")
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return nil, errors.NewBusinessRuleError("not implemented", TaskType)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
	return nil
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error, timer *metrics.JobTimer) error {
	h.errorHandler.HandleJobError(ctx, client, job, err)
	timer.Done(string(errors.Normalize(err).Code))
	return err
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	stderrors "errors"
	"testing"

	"elevate-workers/internal/common/errors"
	"elevate-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_NotImplemented(t *testing.T) {
	h := NewHandler(DefaultConfig(), logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})

	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr))
	assert.Equal(t, errors.ErrCodeBusinessRuleViolation, stdErr.Code)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{}).Validate())
}
`
