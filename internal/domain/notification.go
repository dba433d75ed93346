package domain

import (
	"fmt"
	"time"
)

// NotificationKind classifies operator notifications.
type NotificationKind string

const (
	NotificationApproval NotificationKind = "approval"
	NotificationFeedback NotificationKind = "feedback"
)

// Notification is an in-app message for the agency operator.
type Notification struct {
	ID         string
	OwnerID    string
	ClientID   string
	CalendarID string
	Kind       NotificationKind
	Message    string
	Read       bool
	CreatedAt  time.Time
}

// BriefApprovedMessage is shown when a client approves a brief.
func BriefApprovedMessage(client, title string) string {
	return fmt.Sprintf("%s approved brief for %q. Ready for content.", client, title)
}

// ContentApprovedMessage is shown when a client approves final content.
func ContentApprovedMessage(client, title string) string {
	return fmt.Sprintf("%s approved content for %q. Ready to publish.", client, title)
}

// ChangesRequestedMessage is shown when a client rejects an item.
func ChangesRequestedMessage(client, title string) string {
	return fmt.Sprintf("%s requested changes on %q", client, title)
}
