package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ContentStudio/internal/domain"
)

var clientColumns = []string{
	"id", "owner_id", "name", "linkedin_url", "bio", "goals", "tone_preferences",
	"industry", "role", "target_audience", "company_name", "approval_email", "created_at",
}

// CreateClient inserts a client.
func (s *Store) CreateClient(ctx context.Context, c domain.Client) error {
	_, err := s.exec(ctx, s.db, s.sb.Insert("clients").Columns(clientColumns...).Values(
		c.ID, c.OwnerID, c.Name, c.LinkedInURL, c.Bio, c.Goals, c.TonePreferences,
		c.Industry, c.Role, c.TargetAudience, c.CompanyName, c.ApprovalEmail, millis(c.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetClient loads a client by id.
func (s *Store) GetClient(ctx context.Context, id string) (domain.Client, error) {
	row, err := s.queryRow(ctx, s.sb.Select(clientColumns...).From("clients").Where(sq.Eq{"id": id}))
	if err != nil {
		return domain.Client{}, err
	}

	var (
		c       domain.Client
		created int64
	)
	err = row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.LinkedInURL, &c.Bio, &c.Goals, &c.TonePreferences,
		&c.Industry, &c.Role, &c.TargetAudience, &c.CompanyName, &c.ApprovalEmail, &created)
	if err != nil {
		return domain.Client{}, notFound(err, "client", id)
	}
	c.CreatedAt = fromMillis(created)
	return c, nil
}

// DeleteClient removes a client and everything that belongs to it in one
// transaction.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete client: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	itemsOfClient := "SELECT id FROM calendar_items WHERE client_id = ?"
	scriptsOfClient := "SELECT s.id FROM scripts s JOIN calendar_items c ON c.id = s.calendar_id WHERE c.client_id = ?"

	steps := []struct {
		table string
		where sq.Sqlizer
	}{
		{"script_versions", sq.Expr("script_id IN ("+scriptsOfClient+")", id)},
		{"schedules", sq.Expr("script_id IN ("+scriptsOfClient+")", id)},
		{"scripts", sq.Expr("calendar_id IN ("+itemsOfClient+")", id)},
		{"calendar_versions", sq.Expr("calendar_id IN ("+itemsOfClient+")", id)},
		{"feedback", sq.Eq{"client_id": id}},
		{"notifications", sq.Eq{"client_id": id}},
		{"calendar_items", sq.Eq{"client_id": id}},
		{"audits", sq.Eq{"client_id": id}},
	}
	for _, step := range steps {
		if _, err := s.exec(ctx, tx, s.sb.Delete(step.table).Where(step.where)); err != nil {
			return fmt.Errorf("delete %s: %w", step.table, err)
		}
	}

	res, err := s.exec(ctx, tx, s.sb.Delete("clients").Where(sq.Eq{"id": id}))
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if err := requireRow(res, "client", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete client: %w", err)
	}
	return nil
}

var auditColumns = []string{
	"id", "client_id", "positioning_statement", "content_pillars", "tone_voice",
	"strengths_weaknesses", "audience_insights", "primary_goals", "created_at",
}

// GetAuditByClient loads the audit of a client.
func (s *Store) GetAuditByClient(ctx context.Context, clientID string) (domain.Audit, error) {
	row, err := s.queryRow(ctx, s.sb.Select(auditColumns...).From("audits").Where(sq.Eq{"client_id": clientID}))
	if err != nil {
		return domain.Audit{}, err
	}

	var (
		a              domain.Audit
		pillars, goals string
		created        int64
	)
	err = row.Scan(&a.ID, &a.ClientID, &a.PositioningStatement, &pillars, &a.ToneVoice,
		&a.StrengthsWeaknesses, &a.AudienceInsights, &goals, &created)
	if err != nil {
		return domain.Audit{}, notFound(err, "audit", clientID)
	}
	if err := decodeJSON(pillars, &a.ContentPillars); err != nil {
		return domain.Audit{}, err
	}
	if err := decodeJSON(goals, &a.PrimaryGoals); err != nil {
		return domain.Audit{}, err
	}
	a.CreatedAt = fromMillis(created)
	return a, nil
}

// CreateAudit inserts the audit of a client.
func (s *Store) CreateAudit(ctx context.Context, a domain.Audit) error {
	pillars, err := encodeJSON(nonNil(a.ContentPillars))
	if err != nil {
		return err
	}
	goals, err := encodeJSON(nonNil(a.PrimaryGoals))
	if err != nil {
		return err
	}

	_, err = s.exec(ctx, s.db, s.sb.Insert("audits").Columns(auditColumns...).Values(
		a.ID, a.ClientID, a.PositioningStatement, pillars, a.ToneVoice,
		a.StrengthsWeaknesses, a.AudienceInsights, goals, millis(a.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
