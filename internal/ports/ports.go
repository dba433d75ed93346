package ports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"ContentStudio/internal/domain"
)

// Generator turns a prompt into parsed JSON using the AI provider chain.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt, preferredModel string) (json.RawMessage, error)
}

// ClientRepository stores onboarded clients.
type ClientRepository interface {
	CreateClient(ctx context.Context, client domain.Client) error
	GetClient(ctx context.Context, id string) (domain.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// AuditRepository stores the single brand audit of each client.
type AuditRepository interface {
	GetAuditByClient(ctx context.Context, clientID string) (domain.Audit, error)
	CreateAudit(ctx context.Context, audit domain.Audit) error
}

// CalendarRepository stores calendar items, their archives and client feedback.
type CalendarRepository interface {
	ListItems(ctx context.Context, clientID string) ([]domain.CalendarItem, error)
	GetItem(ctx context.Context, id string) (domain.CalendarItem, error)
	CreateItems(ctx context.Context, items []domain.CalendarItem) error
	UpdateItem(ctx context.Context, item domain.CalendarItem) error
	AddVersion(ctx context.Context, version domain.CalendarVersion) error
	ListVersions(ctx context.Context, calendarID string) ([]domain.CalendarVersion, error)
	AddFeedback(ctx context.Context, entry domain.FeedbackEntry) error
	ListFeedback(ctx context.Context, calendarID string) ([]domain.FeedbackEntry, error)
}

// ScriptRepository stores scripts and their archives.
type ScriptRepository interface {
	GetScript(ctx context.Context, id string) (domain.Script, error)
	GetScriptByItem(ctx context.Context, calendarID string) (domain.Script, error)
	CreateScript(ctx context.Context, script domain.Script) error
	UpdateScript(ctx context.Context, script domain.Script) error
	AddScriptVersion(ctx context.Context, version domain.ScriptVersion) error
	ListScriptVersions(ctx context.Context, scriptID string) ([]domain.ScriptVersion, error)
}

// ScheduleRepository stores publishing intents.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule domain.Schedule) error
	ListSchedules(ctx context.Context, scriptID string) ([]domain.Schedule, error)
}

// NotificationRepository stores operator notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n domain.Notification) error
	ListNotifications(ctx context.Context, ownerID string, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// ApprovalRequest is the content of an approval e-mail sent to a client.
type ApprovalRequest struct {
	To          string
	ClientName  string
	Title       string
	Brief       string
	Stage       domain.Stage
	ContentText string
	MediaURL    string
	Link        string
}

// ApprovalNotifier delivers approval requests to clients.
type ApprovalNotifier interface {
	SendApprovalRequest(ctx context.Context, req ApprovalRequest) error
}

// MediaStore keeps uploaded post media.
type MediaStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	URL(ctx context.Context, key string) (string, error)
}

// ApprovalClaims identify the item and stage an approval link was issued for.
type ApprovalClaims struct {
	ItemID string
	Stage  domain.Stage
}

// LinkSigner issues and verifies tokens for public approval links.
type LinkSigner interface {
	Sign(claims ApprovalClaims) (string, error)
	Verify(token string) (ApprovalClaims, error)
}

// Scheduler controls when periodic jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
