package usecase

import (
	"context"
	"errors"

	"ContentStudio/internal/domain"
)

// AuditResult carries the audit and whether it already existed.
type AuditResult struct {
	Audit  domain.Audit
	Cached bool
}

// CreateAudit generates the brand audit of a client once. Later calls return
// the stored audit without calling the generator.
func (w *Workflow) CreateAudit(ctx context.Context, clientID string) (AuditResult, error) {
	client, err := w.clients.GetClient(ctx, clientID)
	if err != nil {
		return AuditResult{}, persistence("load client", err)
	}

	existing, err := w.audits.GetAuditByClient(ctx, clientID)
	if err == nil {
		return AuditResult{Audit: existing, Cached: true}, nil
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return AuditResult{}, persistence("load audit", err)
	}

	raw, err := w.generator.GenerateJSON(ctx, auditPrompt(client), w.preferredModel)
	if err != nil {
		return AuditResult{}, &domain.GenerationError{Op: "audit", Err: err}
	}
	var resp auditResponse
	if err := jsonUnmarshal(raw, &resp); err != nil {
		return AuditResult{}, &domain.GenerationError{Op: "audit", Err: err}
	}

	audit := domain.Audit{
		ID:                   w.newID(),
		ClientID:             clientID,
		PositioningStatement: string(resp.PositioningStatement),
		ContentPillars:       []string(resp.ContentPillars),
		ToneVoice:            string(resp.ToneVoice),
		StrengthsWeaknesses:  string(resp.StrengthsWeaknesses),
		AudienceInsights:     string(resp.AudienceInsights),
		PrimaryGoals:         splitGoals(client.Goals),
		CreatedAt:            w.now(),
	}
	if err := w.audits.CreateAudit(ctx, audit); err != nil {
		return AuditResult{}, persistence("create audit", err)
	}
	w.info("audit generated", "client", clientID, "pillars", len(audit.ContentPillars))
	return AuditResult{Audit: audit}, nil
}
