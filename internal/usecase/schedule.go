package usecase

import (
	"context"
	"time"

	"ContentStudio/internal/domain"
)

// ScheduleResult is the stored schedule and the script after approval.
type ScheduleResult struct {
	Schedule domain.Schedule
	Script   domain.Script
}

// SchedulePost approves the script if needed and records the intent to
// publish it at the given time. The calendar item status is left alone.
func (w *Workflow) SchedulePost(ctx context.Context, scriptID string, at time.Time, method string) (ScheduleResult, error) {
	if at.IsZero() {
		return ScheduleResult{}, &domain.ValidationError{Field: "scheduled_time", Reason: "is required"}
	}
	m, err := domain.ParseScheduleMethod(method)
	if err != nil {
		return ScheduleResult{}, err
	}

	script, err := w.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return ScheduleResult{}, persistence("load script", err)
	}

	now := w.now()
	if script.Approve(now) {
		if err := w.scripts.UpdateScript(ctx, script); err != nil {
			return ScheduleResult{}, persistence("approve script", err)
		}
	}

	schedule := domain.Schedule{
		ID:            w.newID(),
		ScriptID:      script.ID,
		ScheduledTime: at.UTC(),
		Method:        m,
		CreatedAt:     now,
	}
	if err := w.schedules.CreateSchedule(ctx, schedule); err != nil {
		return ScheduleResult{}, persistence("create schedule", err)
	}
	w.info("post scheduled", "script", script.ID, "at", schedule.ScheduledTime, "method", m)
	return ScheduleResult{Schedule: schedule, Script: script}, nil
}

// ListSchedules returns the publishing intents of a script.
func (w *Workflow) ListSchedules(ctx context.Context, scriptID string) ([]domain.Schedule, error) {
	schedules, err := w.schedules.ListSchedules(ctx, scriptID)
	if err != nil {
		return nil, persistence("list schedules", err)
	}
	return schedules, nil
}
