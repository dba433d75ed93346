package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

// ClientAction is the decision a client takes on an approval link.
type ClientAction string

const (
	ActionApprove ClientAction = "approve"
	ActionReject  ClientAction = "reject"
)

// ParseClientAction validates user input.
func ParseClientAction(value string) (ClientAction, error) {
	switch a := ClientAction(strings.ToLower(strings.TrimSpace(value))); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", &domain.ValidationError{Field: "action", Reason: "must be approve or reject"}
}

// ApprovalDispatch is the per-item outcome of SendForApproval.
type ApprovalDispatch struct {
	ItemID string
	Item   domain.CalendarItem
	Link   string
	Err    error
}

// DecisionResult carries the item after a client decision and the outcome of
// the notification and feedback writes.
type DecisionResult struct {
	Item          domain.CalendarItem
	ApprovedStage domain.Stage
	Effects       domain.Effects
}

// ApprovalView is what the public approval page shows.
type ApprovalView struct {
	Item        domain.CalendarItem
	ClientName  string
	ContentText string
}

// SendForApproval e-mails an approval link for each item to the client's
// approval address and marks the items sent. Items are handled independently.
func (w *Workflow) SendForApproval(ctx context.Context, itemIDs []string) ([]ApprovalDispatch, error) {
	if len(itemIDs) == 0 {
		return nil, &domain.ValidationError{Field: "item_ids", Reason: "must not be empty"}
	}

	out := make([]ApprovalDispatch, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, link, err := w.sendOne(ctx, id)
		if err != nil {
			w.warn("approval request failed", "item", id, "error", err)
		}
		out = append(out, ApprovalDispatch{ItemID: id, Item: item, Link: link, Err: err})
	}
	return out, nil
}

func (w *Workflow) sendOne(ctx context.Context, itemID string) (domain.CalendarItem, string, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return domain.CalendarItem{}, "", persistence("load calendar item", err)
	}
	client, err := w.clients.GetClient(ctx, item.ClientID)
	if err != nil {
		return domain.CalendarItem{}, "", persistence("load client", err)
	}
	if client.ApprovalEmail == "" {
		return domain.CalendarItem{}, "", &domain.ValidationError{Field: "approval_email", Reason: "client has no approval e-mail"}
	}

	updated := item
	if err := updated.MarkSent(w.now()); err != nil {
		return domain.CalendarItem{}, "", err
	}

	link, err := w.approvalLink(item)
	if err != nil {
		return domain.CalendarItem{}, "", err
	}

	req := ports.ApprovalRequest{
		To:         client.ApprovalEmail,
		ClientName: client.Name,
		Title:      item.Title,
		Brief:      item.Brief,
		Stage:      item.Stage,
		Link:       link,
	}
	if item.Stage == domain.StageContent {
		if script, err := w.scripts.GetScriptByItem(ctx, item.ID); err == nil {
			req.ContentText = script.ContentText
		}
	}
	if item.MediaKey != "" && w.media != nil {
		if url, err := w.media.URL(ctx, item.MediaKey); err == nil {
			req.MediaURL = url
		} else {
			w.warn("media link unavailable", "item", item.ID, "error", err)
		}
	}

	if w.approvals == nil {
		return domain.CalendarItem{}, "", &domain.DeliveryError{Channel: "email", Err: errors.New("no approval notifier configured")}
	}
	if err := w.approvals.SendApprovalRequest(ctx, req); err != nil {
		return domain.CalendarItem{}, "", &domain.DeliveryError{Channel: "email", Err: err}
	}

	if err := w.calendar.UpdateItem(ctx, updated); err != nil {
		return domain.CalendarItem{}, "", persistence("update calendar item", err)
	}
	w.info("approval requested", "item", item.ID, "stage", item.Stage)
	return updated, link, nil
}

func (w *Workflow) approvalLink(item domain.CalendarItem) (string, error) {
	base := strings.TrimRight(w.approvalBaseURL, "/")
	if w.links == nil {
		return base + "/feedback/" + item.ID, nil
	}
	token, err := w.links.Sign(ports.ApprovalClaims{ItemID: item.ID, Stage: item.Stage})
	if err != nil {
		return "", fmt.Errorf("sign approval link: %w", err)
	}
	return base + "/feedback/" + token, nil
}

// RecordExternalDecision applies a client's approve or reject decision. The
// item update decides success; the notification and feedback entry are
// best-effort and reported in Effects.
func (w *Workflow) RecordExternalDecision(ctx context.Context, itemID string, action ClientAction, feedback string) (DecisionResult, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return DecisionResult{}, persistence("load calendar item", err)
	}
	client, err := w.clients.GetClient(ctx, item.ClientID)
	if err != nil {
		return DecisionResult{}, persistence("load client", err)
	}

	now := w.now()
	result := DecisionResult{}
	var notification domain.Notification

	switch action {
	case ActionApprove:
		stage := item.ApproveExternally(now)
		result.ApprovedStage = stage
		msg := domain.BriefApprovedMessage(client.Name, item.Title)
		if stage == domain.StageContent {
			msg = domain.ContentApprovedMessage(client.Name, item.Title)
		}
		notification = w.newNotification(client, item, domain.NotificationApproval, msg)
	case ActionReject:
		feedback = strings.TrimSpace(feedback)
		item.RejectExternally(feedback, now)
		notification = w.newNotification(client, item, domain.NotificationFeedback, domain.ChangesRequestedMessage(client.Name, item.Title))
	default:
		return DecisionResult{}, &domain.ValidationError{Field: "action", Reason: "must be approve or reject"}
	}

	if err := w.calendar.UpdateItem(ctx, item); err != nil {
		return DecisionResult{}, persistence("update calendar item", err)
	}
	result.Item = item

	if action == ActionReject {
		content := feedback
		if content == "" {
			content = domain.DefaultFeedbackText
		}
		w.bestEffort(&result.Effects, "record feedback", w.calendar.AddFeedback(ctx, domain.FeedbackEntry{
			ID:         w.newID(),
			CalendarID: item.ID,
			ClientID:   client.ID,
			Content:    content,
			CreatedAt:  now,
		}))
	}
	w.bestEffort(&result.Effects, "notify operator", w.notifications.CreateNotification(ctx, notification))

	w.info("client decision recorded", "item", item.ID, "action", action, "stage", item.Stage, "feedback", item.Feedback)
	return result, nil
}

func (w *Workflow) newNotification(client domain.Client, item domain.CalendarItem, kind domain.NotificationKind, msg string) domain.Notification {
	return domain.Notification{
		ID:         w.newID(),
		OwnerID:    client.OwnerID,
		ClientID:   client.ID,
		CalendarID: item.ID,
		Kind:       kind,
		Message:    msg,
		CreatedAt:  w.now(),
	}
}

// ViewApproval resolves a public approval token into the page content.
func (w *Workflow) ViewApproval(ctx context.Context, token string) (ApprovalView, error) {
	item, err := w.itemForToken(ctx, token)
	if err != nil {
		return ApprovalView{}, err
	}
	view := ApprovalView{Item: item}
	if client, err := w.clients.GetClient(ctx, item.ClientID); err == nil {
		view.ClientName = client.Name
	}
	if item.Stage == domain.StageContent {
		if script, err := w.scripts.GetScriptByItem(ctx, item.ID); err == nil {
			view.ContentText = script.ContentText
		}
	}
	return view, nil
}

// DecideByToken records a client decision coming from a public approval link.
// Links issued for an earlier stage are refused.
func (w *Workflow) DecideByToken(ctx context.Context, token string, action ClientAction, feedback string) (DecisionResult, error) {
	item, err := w.itemForToken(ctx, token)
	if err != nil {
		return DecisionResult{}, err
	}
	return w.RecordExternalDecision(ctx, item.ID, action, feedback)
}

func (w *Workflow) itemForToken(ctx context.Context, token string) (domain.CalendarItem, error) {
	if w.links == nil {
		return domain.CalendarItem{}, &domain.ValidationError{Field: "token", Reason: "approval links are disabled"}
	}
	claims, err := w.links.Verify(token)
	if err != nil {
		return domain.CalendarItem{}, &domain.ValidationError{Field: "token", Reason: err.Error()}
	}
	item, err := w.calendar.GetItem(ctx, claims.ItemID)
	if err != nil {
		return domain.CalendarItem{}, persistence("load calendar item", err)
	}
	if item.Stage != claims.Stage {
		return domain.CalendarItem{}, &domain.InvalidTransitionError{
			Entity: "approval link",
			From:   string(claims.Stage),
			To:     string(item.Stage),
			Reason: "link was issued for an earlier stage",
		}
	}
	return item, nil
}
