package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ContentStudio/internal/domain"
)

var itemColumns = []string{
	"id", "client_id", "title", "brief", "format", "pillar", "audience_target",
	"psychological_trigger", "why_it_works", "status", "stage", "feedback_status",
	"feedback_notes", "scheduled_date", "scheduled_time", "media_key", "media_type", "caption",
	"created_at", "updated_at",
}

func scanItem(row rowScanner) (domain.CalendarItem, error) {
	var (
		it                 domain.CalendarItem
		notes              sql.NullString
		date               string
		created, updated   int64
		format, mediaType  string
		status, stage, fbk string
	)
	err := row.Scan(&it.ID, &it.ClientID, &it.Title, &it.Brief, &format, &it.Pillar, &it.AudienceTarget,
		&it.PsychologicalTrigger, &it.WhyItWorks, &status, &stage, &fbk,
		&notes, &date, &it.ScheduledTime, &it.MediaKey, &mediaType, &it.Caption, &created, &updated)
	if err != nil {
		return domain.CalendarItem{}, err
	}
	it.Format = domain.Format(format)
	it.Status = domain.Status(status)
	it.Stage = domain.Stage(stage)
	it.Feedback = domain.FeedbackStatus(fbk)
	it.MediaType = domain.MediaType(mediaType)
	if notes.Valid {
		n := notes.String
		it.FeedbackNotes = &n
	}
	it.ScheduledDate = parseDate(date)
	it.CreatedAt = fromMillis(created)
	it.UpdatedAt = fromMillis(updated)
	return it, nil
}

func notesValue(notes *string) sql.NullString {
	if notes == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *notes, Valid: true}
}

// ListItems returns a client's items ordered by date.
func (s *Store) ListItems(ctx context.Context, clientID string) ([]domain.CalendarItem, error) {
	rows, err := s.query(ctx, s.sb.Select(itemColumns...).From("calendar_items").
		Where(sq.Eq{"client_id": clientID}).OrderBy("scheduled_date", "created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query calendar items: %w", err)
	}
	items, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("scan calendar items: %w", err)
	}
	return items, nil
}

// GetItem loads one item.
func (s *Store) GetItem(ctx context.Context, id string) (domain.CalendarItem, error) {
	row, err := s.queryRow(ctx, s.sb.Select(itemColumns...).From("calendar_items").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.CalendarItem{}, err
	}
	it, err := scanItem(row)
	if err != nil {
		return domain.CalendarItem{}, notFound(err, "calendar item", id)
	}
	return it, nil
}

// CreateItems inserts items in one transaction.
func (s *Store) CreateItems(ctx context.Context, items []domain.CalendarItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert items: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	insert := s.sb.Insert("calendar_items").Columns(itemColumns...)
	for _, it := range items {
		insert = insert.Values(
			it.ID, it.ClientID, it.Title, it.Brief, string(it.Format), it.Pillar, it.AudienceTarget,
			it.PsychologicalTrigger, it.WhyItWorks, string(it.Status), string(it.Stage), string(it.Feedback),
			notesValue(it.FeedbackNotes), formatDate(it.ScheduledDate), it.ScheduledTime, it.MediaKey, string(it.MediaType), it.Caption,
			millis(it.CreatedAt), millis(it.UpdatedAt),
		)
	}
	if _, err := s.exec(ctx, tx, insert); err != nil {
		return fmt.Errorf("insert calendar items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit calendar items: %w", err)
	}
	return nil
}

// UpdateItem overwrites the mutable fields of an item.
func (s *Store) UpdateItem(ctx context.Context, it domain.CalendarItem) error {
	res, err := s.exec(ctx, s.db, s.sb.Update("calendar_items").SetMap(map[string]any{
		"title":                 it.Title,
		"brief":                 it.Brief,
		"format":                string(it.Format),
		"pillar":                it.Pillar,
		"audience_target":       it.AudienceTarget,
		"psychological_trigger": it.PsychologicalTrigger,
		"why_it_works":          it.WhyItWorks,
		"status":                string(it.Status),
		"stage":                 string(it.Stage),
		"feedback_status":       string(it.Feedback),
		"feedback_notes":        notesValue(it.FeedbackNotes),
		"scheduled_date":        formatDate(it.ScheduledDate),
		"scheduled_time":        it.ScheduledTime,
		"media_key":             it.MediaKey,
		"media_type":            string(it.MediaType),
		"caption":               it.Caption,
		"updated_at":            millis(it.UpdatedAt),
	}).Where(sq.Eq{"id": it.ID}))
	if err != nil {
		return fmt.Errorf("update calendar item: %w", err)
	}
	return requireRow(res, "calendar item", it.ID)
}

var versionColumns = []string{
	"id", "calendar_id", "title", "brief", "format", "pillar", "audience_target",
	"psychological_trigger", "why_it_works", "feedback_used", "created_at",
}

// AddVersion archives an item snapshot.
func (s *Store) AddVersion(ctx context.Context, v domain.CalendarVersion) error {
	c := v.Content
	_, err := s.exec(ctx, s.db, s.sb.Insert("calendar_versions").Columns(versionColumns...).Values(
		v.ID, v.CalendarID, c.Title, c.Brief, string(c.Format), c.Pillar, c.AudienceTarget,
		c.PsychologicalTrigger, c.WhyItWorks, v.FeedbackUsed, millis(v.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert calendar version: %w", err)
	}
	return nil
}

// ListVersions returns the archive of an item, oldest first.
func (s *Store) ListVersions(ctx context.Context, calendarID string) ([]domain.CalendarVersion, error) {
	rows, err := s.query(ctx, s.sb.Select(versionColumns...).From("calendar_versions").
		Where(sq.Eq{"calendar_id": calendarID}).OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query calendar versions: %w", err)
	}
	versions, err := collect(rows, func(row rowScanner) (domain.CalendarVersion, error) {
		var (
			v       domain.CalendarVersion
			format  string
			created int64
		)
		err := row.Scan(&v.ID, &v.CalendarID, &v.Content.Title, &v.Content.Brief, &format, &v.Content.Pillar,
			&v.Content.AudienceTarget, &v.Content.PsychologicalTrigger, &v.Content.WhyItWorks, &v.FeedbackUsed, &created)
		v.Content.Format = domain.Format(format)
		v.CreatedAt = fromMillis(created)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan calendar versions: %w", err)
	}
	return versions, nil
}

var feedbackColumns = []string{"id", "calendar_id", "client_id", "content", "created_at"}

// AddFeedback appends a client change request.
func (s *Store) AddFeedback(ctx context.Context, f domain.FeedbackEntry) error {
	_, err := s.exec(ctx, s.db, s.sb.Insert("feedback").Columns(feedbackColumns...).Values(
		f.ID, f.CalendarID, f.ClientID, f.Content, millis(f.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ListFeedback returns feedback of an item, oldest first.
func (s *Store) ListFeedback(ctx context.Context, calendarID string) ([]domain.FeedbackEntry, error) {
	rows, err := s.query(ctx, s.sb.Select(feedbackColumns...).From("feedback").
		Where(sq.Eq{"calendar_id": calendarID}).OrderBy("created_at", "id"))
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	entries, err := collect(rows, func(row rowScanner) (domain.FeedbackEntry, error) {
		var (
			f       domain.FeedbackEntry
			created int64
		)
		err := row.Scan(&f.ID, &f.CalendarID, &f.ClientID, &f.Content, &created)
		f.CreatedAt = fromMillis(created)
		return f, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan feedback: %w", err)
	}
	return entries, nil
}
