package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ContentStudio/internal/domain"
)

// CalendarPostCount is the number of ideas in a generated calendar.
const CalendarPostCount = 12

// CalendarResult carries a client's calendar and whether it already existed.
type CalendarResult struct {
	Items  []domain.CalendarItem
	Cached bool
}

// RevisionResult carries a revised item and the outcome of its archive write.
type RevisionResult struct {
	Item    domain.CalendarItem
	Effects domain.Effects
}

// NewItemInput is a manually planned calendar item.
type NewItemInput struct {
	Title  string
	Brief  string
	Format string
	Pillar string
	Date   time.Time
	// Time is "HH:MM". Empty means domain.DefaultPublishTime.
	Time string
}

// CreateCalendar generates the content calendar of a client once. It requires
// an audit. Later calls return the stored items.
func (w *Workflow) CreateCalendar(ctx context.Context, clientID string) (CalendarResult, error) {
	client, err := w.clients.GetClient(ctx, clientID)
	if err != nil {
		return CalendarResult{}, persistence("load client", err)
	}
	audit, err := w.audits.GetAuditByClient(ctx, clientID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return CalendarResult{}, &domain.NotFoundError{Entity: "audit", ID: clientID}
		}
		return CalendarResult{}, persistence("load audit", err)
	}

	existing, err := w.calendar.ListItems(ctx, clientID)
	if err != nil {
		return CalendarResult{}, persistence("list calendar", err)
	}
	if len(existing) > 0 {
		return CalendarResult{Items: existing, Cached: true}, nil
	}

	raw, err := w.generator.GenerateJSON(ctx, calendarPrompt(client, audit, CalendarPostCount), w.preferredModel)
	if err != nil {
		return CalendarResult{}, &domain.GenerationError{Op: "calendar", Err: err}
	}
	ideas, err := decodeIdeas(raw)
	if err != nil {
		return CalendarResult{}, &domain.GenerationError{Op: "calendar", Err: err}
	}
	if len(ideas) < CalendarPostCount {
		return CalendarResult{}, &domain.GenerationError{Op: "calendar", Err: fmt.Errorf("expected %d ideas, got %d", CalendarPostCount, len(ideas))}
	}

	now := w.now()
	dates := PublishingDates(now, CalendarPostCount)
	items := make([]domain.CalendarItem, 0, CalendarPostCount)
	for i, idea := range ideas[:CalendarPostCount] {
		items = append(items, domain.NewCalendarItem(w.newID(), clientID, idea.content(), dates[i], now))
	}
	if err := w.calendar.CreateItems(ctx, items); err != nil {
		return CalendarResult{}, persistence("create calendar", err)
	}

	w.info("calendar generated", "client", clientID, "items", len(items))
	return CalendarResult{Items: items}, nil
}

// PublishingDates returns the next n Mondays, Wednesdays and Fridays starting
// the day after now.
func PublishingDates(now time.Time, n int) []time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	dates := make([]time.Time, 0, n)
	for len(dates) < n {
		switch day.Weekday() {
		case time.Monday, time.Wednesday, time.Friday:
			dates = append(dates, day)
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// ListCalendar returns a client's items.
func (w *Workflow) ListCalendar(ctx context.Context, clientID string) ([]domain.CalendarItem, error) {
	items, err := w.calendar.ListItems(ctx, clientID)
	if err != nil {
		return nil, persistence("list calendar", err)
	}
	return items, nil
}

// GetItem loads one calendar item.
func (w *Workflow) GetItem(ctx context.Context, itemID string) (domain.CalendarItem, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return domain.CalendarItem{}, persistence("load calendar item", err)
	}
	return item, nil
}

// AddCalendarItem plans an item by hand.
func (w *Workflow) AddCalendarItem(ctx context.Context, clientID string, in NewItemInput) (domain.CalendarItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.CalendarItem{}, &domain.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if _, err := w.clients.GetClient(ctx, clientID); err != nil {
		return domain.CalendarItem{}, persistence("load client", err)
	}

	now := w.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	item := domain.NewCalendarItem(w.newID(), clientID, domain.ItemContent{
		Title:  title,
		Brief:  in.Brief,
		Format: domain.ParseFormat(in.Format),
		Pillar: strings.TrimSpace(in.Pillar),
	}, date, now)
	if in.Time != "" {
		item.ScheduledTime = in.Time
	}
	if err := item.Validate(); err != nil {
		return domain.CalendarItem{}, err
	}

	if err := w.calendar.CreateItems(ctx, []domain.CalendarItem{item}); err != nil {
		return domain.CalendarItem{}, persistence("create calendar item", err)
	}
	return item, nil
}

// UpdateItemStatus applies an operator decision to an item.
func (w *Workflow) UpdateItemStatus(ctx context.Context, itemID string, status domain.Status) (domain.CalendarItem, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return domain.CalendarItem{}, persistence("load calendar item", err)
	}
	if err := item.TransitionStatus(status, w.now()); err != nil {
		return domain.CalendarItem{}, err
	}
	if err := w.calendar.UpdateItem(ctx, item); err != nil {
		return domain.CalendarItem{}, persistence("update calendar item", err)
	}
	w.debug("item status changed", "item", itemID, "status", item.Status, "stage", item.Stage)
	return item, nil
}

// ReviseCalendarItem archives the current idea and replaces it with a version
// generated from the client's feedback. The item is left untouched when
// generation fails.
func (w *Workflow) ReviseCalendarItem(ctx context.Context, itemID, feedback string) (RevisionResult, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return RevisionResult{}, &domain.ValidationError{Field: "feedback", Reason: "must not be empty"}
	}

	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return RevisionResult{}, persistence("load calendar item", err)
	}

	var effects domain.Effects
	w.bestEffort(&effects, "archive calendar version", w.calendar.AddVersion(ctx, domain.CalendarVersion{
		ID:           w.newID(),
		CalendarID:   item.ID,
		Content:      item.ItemContent,
		FeedbackUsed: "Original Version",
		CreatedAt:    w.now(),
	}))

	raw, err := w.generator.GenerateJSON(ctx, reviseItemPrompt(item, feedback), w.preferredModel)
	if err != nil {
		return RevisionResult{Effects: effects}, &domain.GenerationError{Op: "calendar revision", Err: err}
	}
	idea, err := decodeIdea(raw)
	if err != nil {
		return RevisionResult{Effects: effects}, &domain.GenerationError{Op: "calendar revision", Err: err}
	}

	revised := idea.content()
	if strings.TrimSpace(string(idea.Format)) == "" {
		revised.Format = ""
	}
	item.Revise(revised, w.now())
	if err := w.calendar.UpdateItem(ctx, item); err != nil {
		return RevisionResult{Effects: effects}, persistence("update calendar item", err)
	}

	w.info("calendar item revised", "item", itemID)
	return RevisionResult{Item: item, Effects: effects}, nil
}

// ListCalendarVersions returns the revision archive of an item.
func (w *Workflow) ListCalendarVersions(ctx context.Context, itemID string) ([]domain.CalendarVersion, error) {
	versions, err := w.calendar.ListVersions(ctx, itemID)
	if err != nil {
		return nil, persistence("list calendar versions", err)
	}
	return versions, nil
}

// ListFeedback returns the client change requests of an item.
func (w *Workflow) ListFeedback(ctx context.Context, itemID string) ([]domain.FeedbackEntry, error) {
	entries, err := w.calendar.ListFeedback(ctx, itemID)
	if err != nil {
		return nil, persistence("list feedback", err)
	}
	return entries, nil
}
