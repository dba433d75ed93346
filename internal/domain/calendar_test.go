package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func newItem() CalendarItem {
	return NewCalendarItem("item-1", "client-1", ItemContent{Title: "Hiring lessons", Format: FormatText}, testNow, testNow)
}

func TestNewCalendarItemDefaults(t *testing.T) {
	t.Parallel()

	item := newItem()
	if item.Status != StatusPending || item.Stage != StageBrief || item.Feedback != FeedbackDraft {
		t.Fatalf("unexpected initial state: %s/%s/%s", item.Status, item.Stage, item.Feedback)
	}
	if item.Pillar != DefaultPillar {
		t.Fatalf("expected default pillar, got %q", item.Pillar)
	}
	if item.ScheduledTime != DefaultPublishTime {
		t.Fatalf("expected default publish time, got %q", item.ScheduledTime)
	}
	if err := item.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejectsBadPublishTime(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "9am", "25:00", "09:00:00"} {
		item := newItem()
		item.ScheduledTime = bad
		var ve *ValidationError
		if err := item.Validate(); !errors.As(err, &ve) || ve.Field != "scheduled_time" {
			t.Fatalf("time %q: expected scheduled_time validation error, got %v", bad, err)
		}
	}
	item := newItem()
	item.ScheduledTime = "17:30"
	if err := item.Validate(); err != nil {
		t.Fatalf("17:30 should be valid: %v", err)
	}
}

func TestApproveExternallyBriefAdvancesStage(t *testing.T) {
	t.Parallel()

	item := newItem()
	notes := "old notes"
	item.Feedback = FeedbackSent
	item.FeedbackNotes = &notes

	stage := item.ApproveExternally(testNow)
	if stage != StageBrief {
		t.Fatalf("expected brief approval, got %s", stage)
	}
	if item.Stage != StageContent || item.Feedback != FeedbackDraft || item.FeedbackNotes != nil {
		t.Fatalf("unexpected state after brief approval: %+v", item)
	}
	if item.Status != StatusPending {
		t.Fatalf("brief approval must not touch status, got %s", item.Status)
	}
}

func TestApproveExternallyContent(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Stage = StageContent
	item.Feedback = FeedbackSent

	stage := item.ApproveExternally(testNow)
	if stage != StageContent || item.Feedback != FeedbackApproved || item.Status != StatusApproved {
		t.Fatalf("unexpected state after content approval: %s %s %s", stage, item.Feedback, item.Status)
	}

	later := testNow.Add(time.Hour)
	if stage := item.ApproveExternally(later); stage != StageContent {
		t.Fatalf("second approval should report the content stage, got %s", stage)
	}
	if item.Feedback != FeedbackApproved || item.Status != StatusApproved || !item.UpdatedAt.Equal(testNow) {
		t.Fatalf("second approval should change nothing: %+v", item)
	}
}

func TestRejectExternally(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Feedback = FeedbackSent
	item.RejectExternally("shorten it", testNow)
	if item.Feedback != FeedbackChangesRequested || item.FeedbackNotes == nil || *item.FeedbackNotes != "shorten it" {
		t.Fatalf("unexpected state after reject: %+v", item)
	}

	if err := item.MarkSent(testNow); err != nil {
		t.Fatalf("re-send after changes requested: %v", err)
	}
	if item.Feedback != FeedbackSent {
		t.Fatalf("expected sent, got %s", item.Feedback)
	}
}

func TestRejectAfterContentApproval(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Stage = StageContent
	item.Feedback = FeedbackApproved
	item.Status = StatusApproved

	item.RejectExternally("please change the hook", testNow)
	if item.Feedback != FeedbackChangesRequested || item.FeedbackNotes == nil || *item.FeedbackNotes != "please change the hook" {
		t.Fatalf("unexpected state after late reject: %+v", item)
	}
	if item.FinallyApproved() {
		t.Fatal("a rejected item is no longer finally approved")
	}
	if err := item.MarkSent(testNow); err != nil {
		t.Fatalf("re-send after late reject: %v", err)
	}
}

func TestMarkSentRejectsApprovedContent(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Stage = StageContent
	item.Feedback = FeedbackApproved

	var transition *InvalidTransitionError
	if err := item.MarkSent(testNow); !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestTransitionStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		stage   Stage
		from    Status
		to      Status
		wantErr bool
		stageTo Stage
	}{
		{name: "approve brief advances stage", stage: StageBrief, from: StatusPending, to: StatusApproved, stageTo: StageContent},
		{name: "reject pending", stage: StageBrief, from: StatusPending, to: StatusRejected, stageTo: StageBrief},
		{name: "restore rejected", stage: StageBrief, from: StatusRejected, to: StatusPending, stageTo: StageBrief},
		{name: "schedule approved content", stage: StageContent, from: StatusApproved, to: StatusScheduled, stageTo: StageContent},
		{name: "schedule brief refused", stage: StageBrief, from: StatusApproved, to: StatusScheduled, wantErr: true},
		{name: "schedule pending refused", stage: StageContent, from: StatusPending, to: StatusScheduled, wantErr: true},
		{name: "approve rejected refused", stage: StageBrief, from: StatusRejected, to: StatusApproved, wantErr: true},
		{name: "same status is a no-op", stage: StageBrief, from: StatusPending, to: StatusPending, stageTo: StageBrief},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			item := newItem()
			item.Stage = tc.stage
			item.Status = tc.from

			err := item.TransitionStatus(tc.to, testNow)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error moving %s -> %s", tc.from, tc.to)
				}
				if item.Status != tc.from {
					t.Fatalf("failed transition mutated status to %s", item.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("transition: %v", err)
			}
			if item.Status != tc.to || item.Stage != tc.stageTo {
				t.Fatalf("got %s/%s, want %s/%s", item.Status, item.Stage, tc.to, tc.stageTo)
			}
		})
	}
}

func TestValidateRejectsScheduledBrief(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Status = StatusScheduled
	var transition *InvalidTransitionError
	if err := item.Validate(); !errors.As(err, &transition) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
}

func TestReviseResetsStatus(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Status = StatusRejected
	item.Revise(ItemContent{Title: "New title", Brief: "New brief"}, testNow.Add(time.Hour))

	if item.Status != StatusPending || item.Title != "New title" {
		t.Fatalf("unexpected revision result: %+v", item)
	}
	if item.Format != FormatText || item.Pillar != DefaultPillar {
		t.Fatalf("revision should keep format and pillar when omitted: %s %s", item.Format, item.Pillar)
	}
}

func TestReviseClearsContentApproval(t *testing.T) {
	t.Parallel()

	item := newItem()
	item.Stage = StageContent
	item.Feedback = FeedbackApproved
	item.Status = StatusApproved

	item.Revise(ItemContent{Title: "Rewritten"}, testNow)
	if item.Status != StatusPending || item.Stage != StageContent || item.Feedback != FeedbackDraft {
		t.Fatalf("unexpected state after revising approved content: %s/%s/%s", item.Status, item.Stage, item.Feedback)
	}
	if err := item.MarkSent(testNow); err != nil {
		t.Fatalf("revised item should be sendable again: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	if got := ParseFormat(" Carousel "); got != FormatCarousel {
		t.Fatalf("expected carousel, got %s", got)
	}
	if got := ParseFormat("video"); got != FormatText {
		t.Fatalf("expected text fallback, got %s", got)
	}
}
