package usecase

import (
	"context"
	"errors"
	"strings"

	"ContentStudio/internal/domain"
)

// ScriptRevisionResult carries a revised script and the outcome of its
// archive write.
type ScriptRevisionResult struct {
	Script  domain.Script
	Effects domain.Effects
}

// GenerateScript drafts the post text of an item. An item that already has a
// script gets it back without a new generation.
func (w *Workflow) GenerateScript(ctx context.Context, itemID string) (domain.Script, error) {
	item, err := w.calendar.GetItem(ctx, itemID)
	if err != nil {
		return domain.Script{}, persistence("load calendar item", err)
	}

	existing, err := w.scripts.GetScriptByItem(ctx, itemID)
	if err == nil {
		return existing, nil
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return domain.Script{}, persistence("load script", err)
	}

	client, err := w.clients.GetClient(ctx, item.ClientID)
	if err != nil {
		return domain.Script{}, persistence("load client", err)
	}

	draft, err := w.generateDraft(ctx, scriptPrompt(item, client, nil, ""), "script")
	if err != nil {
		return domain.Script{}, err
	}

	script := domain.NewScript(w.newID(), item.ID, domain.ContentFromDraft(draft, item.Format), w.now())
	if err := w.scripts.CreateScript(ctx, script); err != nil {
		return domain.Script{}, persistence("create script", err)
	}
	w.info("script generated", "item", itemID, "script", script.ID, "format", item.Format)
	return script, nil
}

// ReviseScript archives the current script and regenerates every tone variant
// from the client's feedback.
func (w *Workflow) ReviseScript(ctx context.Context, scriptID, feedback string) (ScriptRevisionResult, error) {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return ScriptRevisionResult{}, &domain.ValidationError{Field: "feedback", Reason: "must not be empty"}
	}

	script, err := w.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return ScriptRevisionResult{}, persistence("load script", err)
	}
	item, err := w.calendar.GetItem(ctx, script.CalendarID)
	if err != nil {
		return ScriptRevisionResult{}, persistence("load calendar item", err)
	}
	client, err := w.clients.GetClient(ctx, item.ClientID)
	if err != nil {
		return ScriptRevisionResult{}, persistence("load client", err)
	}

	var effects domain.Effects
	w.bestEffort(&effects, "archive script version", w.scripts.AddScriptVersion(ctx, domain.ScriptVersion{
		ID:           w.newID(),
		ScriptID:     script.ID,
		Content:      script.ScriptContent,
		Version:      script.Version,
		FeedbackUsed: "Previous Version",
		CreatedAt:    w.now(),
	}))

	draft, err := w.generateDraft(ctx, scriptPrompt(item, client, &script, feedback), "script revision")
	if err != nil {
		return ScriptRevisionResult{Effects: effects}, err
	}

	script.Revise(domain.ContentFromDraft(draft, item.Format), w.now())
	if err := w.scripts.UpdateScript(ctx, script); err != nil {
		return ScriptRevisionResult{Effects: effects}, persistence("update script", err)
	}
	w.info("script revised", "script", scriptID, "version", script.Version)
	return ScriptRevisionResult{Script: script, Effects: effects}, nil
}

func (w *Workflow) generateDraft(ctx context.Context, prompt, op string) (domain.ScriptDraft, error) {
	raw, err := w.generator.GenerateJSON(ctx, prompt, w.preferredModel)
	if err != nil {
		return domain.ScriptDraft{}, &domain.GenerationError{Op: op, Err: err}
	}
	draft, err := decodeDraft(raw)
	if err != nil {
		return domain.ScriptDraft{}, &domain.GenerationError{Op: op, Err: err}
	}
	return draft, nil
}

// SaveManualScript stores hand-written text for an item. A new script starts
// at version 1; an existing one keeps its version and returns to draft.
func (w *Workflow) SaveManualScript(ctx context.Context, itemID, text string) (domain.Script, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Script{}, &domain.ValidationError{Field: "content_text", Reason: "must not be empty"}
	}
	if _, err := w.calendar.GetItem(ctx, itemID); err != nil {
		return domain.Script{}, persistence("load calendar item", err)
	}

	now := w.now()
	script, err := w.scripts.GetScriptByItem(ctx, itemID)
	var nf *domain.NotFoundError
	switch {
	case errors.As(err, &nf):
		content := domain.ScriptContent{
			ContentText: text,
			Draft:       domain.ScriptDraft{FormalVersion: text, ConversationalVersion: text},
		}
		script = domain.NewScript(w.newID(), itemID, content, now)
		if err := w.scripts.CreateScript(ctx, script); err != nil {
			return domain.Script{}, persistence("create script", err)
		}
		return script, nil
	case err != nil:
		return domain.Script{}, persistence("load script", err)
	}

	script.ContentText = text
	script.Status = domain.ScriptStatusDraft
	script.UpdatedAt = now
	if err := w.scripts.UpdateScript(ctx, script); err != nil {
		return domain.Script{}, persistence("update script", err)
	}
	return script, nil
}

// ApproveScript marks a script approved.
func (w *Workflow) ApproveScript(ctx context.Context, scriptID string) (domain.Script, error) {
	script, err := w.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return domain.Script{}, persistence("load script", err)
	}
	if !script.Approve(w.now()) {
		return script, nil
	}
	if err := w.scripts.UpdateScript(ctx, script); err != nil {
		return domain.Script{}, persistence("update script", err)
	}
	return script, nil
}

// GetScriptForItem loads the script of an item.
func (w *Workflow) GetScriptForItem(ctx context.Context, itemID string) (domain.Script, error) {
	script, err := w.scripts.GetScriptByItem(ctx, itemID)
	if err != nil {
		return domain.Script{}, persistence("load script", err)
	}
	return script, nil
}

// SwitchTone returns the stored variant for tone. Nothing is persisted.
func (w *Workflow) SwitchTone(ctx context.Context, scriptID string, tone domain.Tone) (string, error) {
	if !tone.Valid() {
		return "", &domain.ValidationError{Field: "tone", Reason: "unknown value " + string(tone)}
	}
	script, err := w.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return "", persistence("load script", err)
	}
	if text := script.Draft.Text(tone); text != "" {
		return text, nil
	}
	return script.ContentText, nil
}

// ListScriptVersions returns the revision archive of a script.
func (w *Workflow) ListScriptVersions(ctx context.Context, scriptID string) ([]domain.ScriptVersion, error) {
	versions, err := w.scripts.ListScriptVersions(ctx, scriptID)
	if err != nil {
		return nil, persistence("list script versions", err)
	}
	return versions, nil
}
