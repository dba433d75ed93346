package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"ContentStudio/internal/domain"
)

// MediaUpload is a file attached to a calendar item.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Caption     string
}

// AttachMedia stores an upload and links it to the item.
func (w *Workflow) AttachMedia(ctx context.Context, itemID string, up MediaUpload) (domain.CalendarItem, error) {
	if w.media == nil {
		return domain.CalendarItem{}, domain.ErrMediaUnavailable
	}
	if up.Body == nil || up.Size <= 0 {
		return domain.CalendarItem{}, &domain.ValidationError{Field: "file", Reason: "is empty"}
	}
	mediaType, ok := mediaTypeFor(up.ContentType, up.Filename)
	if !ok {
		return domain.CalendarItem{}, &domain.ValidationError{Field: "file", Reason: "unsupported content type " + up.ContentType}
	}

	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return domain.CalendarItem{}, persistence("load calendar item", err)
	}

	key := fmt.Sprintf("%s/%s/%s%s", item.ClientID, item.ID, w.newID(), strings.ToLower(path.Ext(up.Filename)))
	if err := w.media.Put(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return domain.CalendarItem{}, fmt.Errorf("store media: %w", err)
	}

	item.MediaKey = key
	item.MediaType = mediaType
	if c := strings.TrimSpace(up.Caption); c != "" {
		item.Caption = c
	}
	item.UpdatedAt = w.now()
	if err := w.calendar.UpdateItem(ctx, item); err != nil {
		return domain.CalendarItem{}, persistence("update calendar item", err)
	}
	w.info("media attached", "item", item.ID, "key", key, "type", mediaType)
	return item, nil
}

// MediaURL returns a temporary download link for the item's media.
func (w *Workflow) MediaURL(ctx context.Context, itemID string) (string, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return "", persistence("load calendar item", err)
	}
	if item.MediaKey == "" {
		return "", &domain.NotFoundError{Entity: "media", ID: itemID}
	}
	if w.media == nil {
		return "", domain.ErrMediaUnavailable
	}
	return w.media.URL(ctx, item.MediaKey)
}

func mediaTypeFor(contentType, filename string) (domain.MediaType, bool) {
	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, "image/"):
		return domain.MediaImage, true
	case strings.HasPrefix(ct, "video/"):
		return domain.MediaVideo, true
	case ct == "application/pdf":
		return domain.MediaPDF, true
	}
	switch strings.ToLower(path.Ext(filename)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return domain.MediaImage, true
	case ".mp4", ".mov", ".webm":
		return domain.MediaVideo, true
	case ".pdf":
		return domain.MediaPDF, true
	}
	return "", false
}
