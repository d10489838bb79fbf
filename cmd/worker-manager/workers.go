package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"

	"elevate-workers/internal/common/auth"
	"elevate-workers/internal/common/camunda"
	"elevate-workers/internal/common/config"
	"elevate-workers/internal/common/logger"
	"elevate-workers/internal/common/observability"
	"elevate-workers/internal/profiletest"
	"elevate-workers/pkg/registry"

	// Profile test
	cpr "elevate-workers/internal/workers/profile-test/calculate-profile-result"
	gtq "elevate-workers/internal/workers/profile-test/get-test-questions"
	sts "elevate-workers/internal/workers/profile-test/save-test-submission"
	vta "elevate-workers/internal/workers/profile-test/validate-test-answers"

	// Catalog and content
	frp "elevate-workers/internal/workers/catalog/fetch-recommended-paths"
	gp "elevate-workers/internal/workers/catalog/get-path"
	sp "elevate-workers/internal/workers/catalog/search-paths"
	gcs "elevate-workers/internal/workers/content/get-completion-status"
	syc "elevate-workers/internal/workers/content/sync-youtube-content"
	ucp "elevate-workers/internal/workers/content/update-content-progress"

	// Engagement
	ic "elevate-workers/internal/workers/ai-interview/interview-chat"
	rs "elevate-workers/internal/workers/auth/resolve-session"
	icert "elevate-workers/internal/workers/certificates/issue-certificate"
	lc "elevate-workers/internal/workers/certificates/list-certificates"
	vc "elevate-workers/internal/workers/certificates/validate-certificate"
	fs "elevate-workers/internal/workers/subscriptions/feature-subscribe"

	// Forum
	cft "elevate-workers/internal/workers/forum/create-forum-topic"
	gft "elevate-workers/internal/workers/forum/get-forum-topic"
	lft "elevate-workers/internal/workers/forum/list-forum-topics"
	mfp "elevate-workers/internal/workers/forum/manage-forum-post"
)

// workerDeps are the shared clients handed to handler constructors.
type workerDeps struct {
	cfg           *config.Config
	db            *sql.DB
	redis         redis.Cmdable
	es            *elasticsearch.Client
	questionnaire *profiletest.Questionnaire
	sessions      *auth.SessionClient
	mailer        fs.EmailSender
	publisher     icert.EventPublisher
}

type validator interface {
	Validate() error
}

// registration builds one handler. timeout is the worker's configured job timeout.
type registration struct {
	taskType string
	build    func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc)
}

var registrations = []registration{
	{gtq.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := gtq.DefaultConfig()
		c.Timeout = timeout
		return c, gtq.NewHandler(c, d.questionnaire, log).Handle
	}},
	{vta.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := vta.DefaultConfig()
		c.Timeout = timeout
		return c, vta.NewHandler(c, log).Handle
	}},
	{cpr.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := cpr.DefaultConfig()
		c.Timeout = timeout
		return c, cpr.NewHandler(c, profiletest.NewScorer(d.questionnaire), log).Handle
	}},
	{sts.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := sts.DefaultConfig()
		c.Timeout = timeout
		c.SubmissionTTL = time.Duration(d.cfg.Cache.SubmissionTTL) * time.Second
		return c, sts.NewHandler(c, d.db, d.redis, log).Handle
	}},
	{frp.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := frp.DefaultConfig()
		c.Timeout = timeout
		c.PathTTL = time.Duration(d.cfg.Cache.PathTTL) * time.Second
		return c, frp.NewHandler(c, d.db, d.redis, log).Handle
	}},
	{gp.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := gp.DefaultConfig()
		c.Timeout = timeout
		c.PathTTL = time.Duration(d.cfg.Cache.PathTTL) * time.Second
		return c, gp.NewHandler(c, d.db, d.redis, log).Handle
	}},
	{sp.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := sp.DefaultConfig()
		c.Timeout = timeout
		c.Index = d.cfg.Search.PathIndex
		c.DefaultLimit = d.cfg.Search.DefaultLimit
		c.MaxLimit = d.cfg.Search.MaxLimit
		return c, sp.NewHandler(c, d.es, log).Handle
	}},
	{syc.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := syc.DefaultConfig()
		c.Timeout = timeout
		c.BaseURL = d.cfg.APIs.YouTube.BaseURL
		c.APIKey = d.cfg.APIs.YouTube.APIKey
		return c, syc.NewHandler(c, d.db, log).Handle
	}},
	{ucp.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := ucp.DefaultConfig()
		c.Timeout = timeout
		return c, ucp.NewHandler(c, d.db, log).Handle
	}},
	{gcs.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := gcs.DefaultConfig()
		c.Timeout = timeout
		return c, gcs.NewHandler(c, d.db, log).Handle
	}},
	{icert.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := icert.DefaultConfig()
		c.Timeout = timeout
		c.TopicARN = d.cfg.Integrations.AWS.SNS.CertificateTopicARN
		return c, icert.NewHandler(c, d.db, d.publisher, log).Handle
	}},
	{vc.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := vc.DefaultConfig()
		c.Timeout = timeout
		c.ValidationURL = d.cfg.Certificates.ValidationURL
		return c, vc.NewHandler(c, d.db, log).Handle
	}},
	{lc.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := lc.DefaultConfig()
		c.Timeout = timeout
		return c, lc.NewHandler(c, d.db, log).Handle
	}},
	{lft.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := lft.DefaultConfig()
		c.Timeout = timeout
		return c, lft.NewHandler(c, d.db, log).Handle
	}},
	{cft.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := cft.DefaultConfig()
		c.Timeout = timeout
		return c, cft.NewHandler(c, d.db, log).Handle
	}},
	{gft.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := gft.DefaultConfig()
		c.Timeout = timeout
		return c, gft.NewHandler(c, d.db, log).Handle
	}},
	{mfp.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := mfp.DefaultConfig()
		c.Timeout = timeout
		return c, mfp.NewHandler(c, d.db, log).Handle
	}},
	{ic.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		chat := d.cfg.APIs.Chat
		c := ic.DefaultConfig()
		c.Timeout = config.GetDuration(chat.Timeout)
		c.BaseURL = chat.BaseURL
		c.APIKey = chat.APIKey
		c.Model = chat.Model
		c.Temperature = chat.Temperature
		c.MaxTokens = chat.MaxTokens
		c.MaxRetries = chat.MaxRetries
		return c, ic.NewHandler(c, log).Handle
	}},
	{fs.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := fs.DefaultConfig()
		c.Timeout = timeout
		c.SendConfirmation = d.cfg.Integrations.AWS.SES.Enabled
		return c, fs.NewHandler(c, d.db, d.mailer, log).Handle
	}},
	{rs.TaskType, func(d *workerDeps, timeout time.Duration, log logger.Logger) (validator, camunda.JobFunc) {
		c := rs.DefaultConfig()
		c.Timeout = timeout
		return c, rs.NewHandler(c, d.sessions, log).Handle
	}},
}

// startWorkers opens a subscription for every enabled task type. A handler
// whose configuration does not validate aborts startup.
func startWorkers(client zbc.Client, d *workerDeps, obs *observability.Observability, log logger.Logger) ([]*camunda.JobWorker, error) {
	started := make([]*camunda.JobWorker, 0, len(registrations))
	for _, r := range registrations {
		if !config.IsWorkerEnabled(d.cfg, r.taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": r.taskType})
			continue
		}
		wc := config.GetWorkerConfig(d.cfg, r.taskType)

		handlerCfg, handle := r.build(d, config.GetDuration(wc.Timeout), log)
		if err := handlerCfg.Validate(); err != nil {
			for _, w := range started {
				w.Stop()
			}
			return nil, fmt.Errorf("%s: %w", r.taskType, err)
		}
		started = append(started, camunda.StartWorker(client, r.taskType, wc, handle, obs, log))
	}
	return started, nil
}

// checkRegistry warns about registry problems and returns the registered
// task types the registry does not describe. It never blocks startup.
func checkRegistry(path string, log logger.Logger) []string {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry unavailable", map[string]interface{}{"path": path, "error": err})
		return nil
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", map[string]interface{}{"path": path, "error": err})
	}
	var missing []string
	for _, r := range registrations {
		if _, err := reg.FindByTaskType(r.taskType); err != nil {
			log.Warn("worker missing from activity registry", map[string]interface{}{"taskType": r.taskType})
			missing = append(missing, r.taskType)
		}
	}
	return missing
}
