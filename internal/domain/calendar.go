package domain

import (
	"strings"
	"time"
)

// Stage is the review stage of a calendar item. It only moves brief -> content.
type Stage string

const (
	StageBrief   Stage = "brief"
	StageContent Stage = "content"
)

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	return s == StageBrief || s == StageContent
}

// FeedbackStatus tracks the external approval loop.
type FeedbackStatus string

const (
	FeedbackDraft            FeedbackStatus = "draft"
	FeedbackSent             FeedbackStatus = "sent"
	FeedbackApproved         FeedbackStatus = "approved"
	FeedbackChangesRequested FeedbackStatus = "changes_requested"
)

// Valid reports whether f is a known feedback status.
func (f FeedbackStatus) Valid() bool {
	switch f {
	case FeedbackDraft, FeedbackSent, FeedbackApproved, FeedbackChangesRequested:
		return true
	}
	return false
}

// Status is the internal operator status of a calendar item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusScheduled Status = "scheduled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusScheduled:
		return true
	}
	return false
}

// Format is the post format.
type Format string

const (
	FormatText     Format = "text"
	FormatStory    Format = "story"
	FormatCarousel Format = "carousel"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatText || f == FormatStory || f == FormatCarousel
}

// ParseFormat normalizes model or user input. Unknown values fall back to text.
func ParseFormat(value string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	if f.Valid() {
		return f
	}
	return FormatText
}

// MediaType classifies an attached media object.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaCarousel MediaType = "carousel"
	MediaPDF      MediaType = "pdf"
)

// Valid reports whether m is a known media type.
func (m MediaType) Valid() bool {
	switch m {
	case MediaImage, MediaVideo, MediaCarousel, MediaPDF:
		return true
	}
	return false
}

// DefaultPillar is assigned to manually added items without a pillar.
const DefaultPillar = "General"

// DefaultPublishTime is the time of day an item is planned for unless the
// operator picks another one. Times are "HH:MM" on a 24 hour clock.
const DefaultPublishTime = "09:00"

// ValidPublishTime reports whether s is an "HH:MM" time of day.
func ValidPublishTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// ItemContent holds the generated fields of a calendar item. Revisions replace
// it wholesale and archives snapshot it.
type ItemContent struct {
	Title                string
	Brief                string
	Format               Format
	Pillar               string
	AudienceTarget       string
	PsychologicalTrigger string
	WhyItWorks           string
}

// CalendarItem is one planned post for a client.
type CalendarItem struct {
	ID       string
	ClientID string
	ItemContent

	Status        Status
	Stage         Stage
	Feedback      FeedbackStatus
	FeedbackNotes *string
	ScheduledDate time.Time
	ScheduledTime string

	MediaKey  string
	MediaType MediaType
	Caption   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCalendarItem builds an item in its initial state.
func NewCalendarItem(id, clientID string, content ItemContent, date, now time.Time) CalendarItem {
	if content.Pillar == "" {
		content.Pillar = DefaultPillar
	}
	if !content.Format.Valid() {
		content.Format = FormatText
	}
	return CalendarItem{
		ID:            id,
		ClientID:      clientID,
		ItemContent:   content,
		Status:        StatusPending,
		Stage:         StageBrief,
		Feedback:      FeedbackDraft,
		ScheduledDate: date,
		ScheduledTime: DefaultPublishTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks enum values and cross-axis combinations.
func (c CalendarItem) Validate() error {
	switch {
	case !c.Status.Valid():
		return &ValidationError{Field: "status", Reason: "unknown value " + string(c.Status)}
	case !c.Stage.Valid():
		return &ValidationError{Field: "stage", Reason: "unknown value " + string(c.Stage)}
	case !c.Feedback.Valid():
		return &ValidationError{Field: "feedback", Reason: "unknown value " + string(c.Feedback)}
	case !c.Format.Valid():
		return &ValidationError{Field: "format", Reason: "unknown value " + string(c.Format)}
	case !ValidPublishTime(c.ScheduledTime):
		return &ValidationError{Field: "scheduled_time", Reason: "must be HH:MM, got " + c.ScheduledTime}
	case c.Status == StatusScheduled && c.Stage != StageContent:
		return &InvalidTransitionError{Entity: "calendar item", From: string(c.Stage), To: string(StatusScheduled), Reason: "scheduling requires the content stage"}
	}
	return nil
}

// FinallyApproved reports whether the client has approved the finished content.
func (c CalendarItem) FinallyApproved() bool {
	return c.Stage == StageContent && c.Feedback == FeedbackApproved
}

// MarkSent moves the item into the sent state. Re-sending is allowed until the
// content has been approved.
func (c *CalendarItem) MarkSent(now time.Time) error {
	if c.FinallyApproved() {
		return &InvalidTransitionError{Entity: "calendar item", From: string(c.Feedback), To: string(FeedbackSent), Reason: "content already approved"}
	}
	c.Feedback = FeedbackSent
	c.UpdatedAt = now
	return nil
}

// ApproveExternally applies a client approval and returns the stage that was
// approved. Approving content that is already approved changes nothing.
func (c *CalendarItem) ApproveExternally(now time.Time) Stage {
	approved := c.Stage
	switch c.Stage {
	case StageContent:
		if c.FinallyApproved() {
			return approved
		}
		c.Feedback = FeedbackApproved
		if c.Status != StatusScheduled {
			c.Status = StatusApproved
		}
	default:
		c.Stage = StageContent
		c.Feedback = FeedbackDraft
		c.FeedbackNotes = nil
	}
	c.UpdatedAt = now
	return approved
}

// RejectExternally records a change request from the client. It applies at
// any stage, including after the content was approved.
func (c *CalendarItem) RejectExternally(notes string, now time.Time) {
	c.Feedback = FeedbackChangesRequested
	c.FeedbackNotes = &notes
	c.UpdatedAt = now
}

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusScheduled, StatusRejected},
	StatusRejected:  {StatusPending},
	StatusScheduled: {StatusApproved},
}

// TransitionStatus applies an operator status change. Approving an item that
// is still a brief also advances it to the content stage.
func (c *CalendarItem) TransitionStatus(to Status, now time.Time) error {
	if !to.Valid() {
		return &ValidationError{Field: "status", Reason: "unknown value " + string(to)}
	}
	if c.Status == to {
		return nil
	}

	allowed := false
	for _, next := range statusTransitions[c.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return &InvalidTransitionError{Entity: "calendar item", From: string(c.Status), To: string(to)}
	}

	if to == StatusScheduled && c.Stage != StageContent {
		return &InvalidTransitionError{Entity: "calendar item", From: string(c.Stage), To: string(to), Reason: "scheduling requires the content stage"}
	}
	if to == StatusApproved && c.Stage == StageBrief {
		c.Stage = StageContent
	}

	c.Status = to
	c.UpdatedAt = now
	return nil
}

// Revise replaces the generated content and sends the item back to pending.
// A previous content approval no longer applies to the new text.
func (c *CalendarItem) Revise(content ItemContent, now time.Time) {
	if !content.Format.Valid() {
		content.Format = c.Format
	}
	if content.Pillar == "" {
		content.Pillar = c.Pillar
	}
	c.ItemContent = content
	c.Status = StatusPending
	if c.Feedback == FeedbackApproved {
		c.Feedback = FeedbackDraft
	}
	c.UpdatedAt = now
}

// CalendarVersion is an immutable snapshot of an item's content taken before
// a revision.
type CalendarVersion struct {
	ID           string
	CalendarID   string
	Content      ItemContent
	FeedbackUsed string
	CreatedAt    time.Time
}

// FeedbackEntry is a free-text change request left by the client.
type FeedbackEntry struct {
	ID         string
	CalendarID string
	ClientID   string
	Content    string
	CreatedAt  time.Time
}

// DefaultFeedbackText is stored when a client rejects without comment.
const DefaultFeedbackText = "No feedback provided"
