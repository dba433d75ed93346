package usecase

import (
	"context"

	"ContentStudio/internal/domain"
)

func (w *Workflow) ListNotifications(ctx context.Context, ownerID string, unreadOnly bool) ([]domain.Notification, error) {
	list, err := w.notifications.ListNotifications(ctx, ownerID, unreadOnly)
	if err != nil {
		return nil, persistence("list notifications", err)
	}
	return list, nil
}

func (w *Workflow) MarkNotificationRead(ctx context.Context, id string) error {
	if err := w.notifications.MarkNotificationRead(ctx, id); err != nil {
		return persistence("mark notification read", err)
	}
	return nil
}
