package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adminsys/backoffice/internal/model"
	"github.com/robfig/cron/v3"
)

// RetentionJob periodically deletes audit entries older than the retention window.
type RetentionJob struct {
	cron     *cron.Cron
	logs     *LogQueryService
	audit    *AuditService
	schedule string
	days     int
	log      *slog.Logger
}

func NewRetentionJob(logs *LogQueryService, audit *AuditService, schedule string, days int, log *slog.Logger) (*RetentionJob, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetentionJob{
		cron:     cron.New(),
		logs:     logs,
		audit:    audit,
		schedule: schedule,
		days:     days,
		log:      log,
	}, nil
}

func (j *RetentionJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("audit retention job started", "schedule", j.schedule, "retention_days", j.days)
	return nil
}

// Stop halts the scheduler and waits for a running cleanup to finish.
func (j *RetentionJob) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("audit retention job stopped")
}

// Run performs one cleanup and records its outcome as a SYSTEM entry.
func (j *RetentionJob) Run(ctx context.Context) {
	deleted, err := j.logs.Cleanup(ctx, j.days)
	if err != nil {
		j.log.Warn("scheduled audit cleanup failed", "error", err)
		j.audit.LogAction(nil, nil, model.ActionSystem, model.ModuleSystem,
			fmt.Sprintf("scheduled log cleanup failed: %v", err), false, map[string]any{"days": j.days})
		return
	}
	j.audit.LogAction(nil, nil, model.ActionSystem, model.ModuleSystem,
		fmt.Sprintf("scheduled log cleanup removed %d entries", deleted), true,
		map[string]any{"days": j.days, "deletedCount": deleted})
}
