package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ContentStudio/internal/domain"
)

var scheduleColumns = []string{"id", "script_id", "scheduled_time", "method", "is_posted", "created_at"}

// CreateSchedule records a publishing intent.
func (s *Store) CreateSchedule(ctx context.Context, sc domain.Schedule) error {
	_, err := s.exec(ctx, s.db, s.sb.Insert("schedules").Columns(scheduleColumns...).Values(
		sc.ID, sc.ScriptID, millis(sc.ScheduledTime), string(sc.Method), sc.IsPosted, millis(sc.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// ListSchedules returns the schedules of a script by time.
func (s *Store) ListSchedules(ctx context.Context, scriptID string) ([]domain.Schedule, error) {
	rows, err := s.query(ctx, s.sb.Select(scheduleColumns...).From("schedules").
		Where(sq.Eq{"script_id": scriptID}).OrderBy("scheduled_time"))
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	schedules, err := collect(rows, func(row rowScanner) (domain.Schedule, error) {
		var (
			sc            domain.Schedule
			method        string
			when, created int64
		)
		err := row.Scan(&sc.ID, &sc.ScriptID, &when, &method, &sc.IsPosted, &created)
		sc.Method = domain.ScheduleMethod(method)
		sc.ScheduledTime = fromMillis(when)
		sc.CreatedAt = fromMillis(created)
		return sc, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan schedules: %w", err)
	}
	return schedules, nil
}

var notificationColumns = []string{"id", "owner_id", "client_id", "calendar_id", "kind", "message", "is_read", "created_at"}

// CreateNotification stores an operator notification.
func (s *Store) CreateNotification(ctx context.Context, n domain.Notification) error {
	_, err := s.exec(ctx, s.db, s.sb.Insert("notifications").Columns(notificationColumns...).Values(
		n.ID, n.OwnerID, n.ClientID, n.CalendarID, string(n.Kind), n.Message, n.Read, millis(n.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns an owner's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, ownerID string, unreadOnly bool) ([]domain.Notification, error) {
	where := sq.And{sq.Eq{"owner_id": ownerID}}
	if unreadOnly {
		where = append(where, sq.Eq{"is_read": false})
	}
	rows, err := s.query(ctx, s.sb.Select(notificationColumns...).From("notifications").
		Where(where).OrderBy("created_at DESC", "id"))
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	list, err := collect(rows, func(row rowScanner) (domain.Notification, error) {
		var (
			n       domain.Notification
			kind    string
			created int64
		)
		err := row.Scan(&n.ID, &n.OwnerID, &n.ClientID, &n.CalendarID, &kind, &n.Message, &n.Read, &created)
		n.Kind = domain.NotificationKind(kind)
		n.CreatedAt = fromMillis(created)
		return n, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan notifications: %w", err)
	}
	return list, nil
}

// MarkNotificationRead flags a notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.exec(ctx, s.db, s.sb.Update("notifications").Set("is_read", true).Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRow(res, "notification", id)
}
