package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ContentStudio/internal/domain"
)

var scriptColumns = []string{
	"id", "calendar_id", "content_text", "hook_variations", "cta", "hashtags",
	"draft_data", "version", "status", "created_at", "updated_at",
}

type encodedContent struct {
	hooks, hashtags, draft string
}

func encodeContent(c domain.ScriptContent) (encodedContent, error) {
	var (
		out encodedContent
		err error
	)
	if out.hooks, err = encodeJSON(nonNil(c.HookVariations)); err != nil {
		return out, err
	}
	if out.hashtags, err = encodeJSON(nonNil(c.Hashtags)); err != nil {
		return out, err
	}
	if out.draft, err = encodeJSON(c.Draft); err != nil {
		return out, err
	}
	return out, nil
}

func decodeContent(c *domain.ScriptContent, in encodedContent) error {
	if err := decodeJSON(in.hooks, &c.HookVariations); err != nil {
		return err
	}
	if err := decodeJSON(in.hashtags, &c.Hashtags); err != nil {
		return err
	}
	return decodeJSON(in.draft, &c.Draft)
}

func scanScript(row rowScanner) (domain.Script, error) {
	var (
		sc               domain.Script
		enc              encodedContent
		status           string
		created, updated int64
	)
	err := row.Scan(&sc.ID, &sc.CalendarID, &sc.ContentText, &enc.hooks, &sc.CTA, &enc.hashtags,
		&enc.draft, &sc.Version, &status, &created, &updated)
	if err != nil {
		return domain.Script{}, err
	}
	if err := decodeContent(&sc.ScriptContent, enc); err != nil {
		return domain.Script{}, err
	}
	sc.Status = domain.ScriptStatus(status)
	sc.CreatedAt = fromMillis(created)
	sc.UpdatedAt = fromMillis(updated)
	return sc, nil
}

// GetScript loads a script by id.
func (s *Store) GetScript(ctx context.Context, id string) (domain.Script, error) {
	return s.getScript(ctx, sq.Eq{"id": id}, id)
}

// GetScriptByItem loads the script of a calendar item.
func (s *Store) GetScriptByItem(ctx context.Context, calendarID string) (domain.Script, error) {
	return s.getScript(ctx, sq.Eq{"calendar_id": calendarID}, calendarID)
}

func (s *Store) getScript(ctx context.Context, where sq.Eq, key string) (domain.Script, error) {
	row, err := s.queryRow(ctx, s.sb.Select(scriptColumns...).From("scripts").Where(where))
	if err != nil {
		return domain.Script{}, err
	}
	sc, err := scanScript(row)
	if err != nil {
		return domain.Script{}, notFound(err, "script", key)
	}
	return sc, nil
}

// CreateScript inserts a script.
func (s *Store) CreateScript(ctx context.Context, sc domain.Script) error {
	enc, err := encodeContent(sc.ScriptContent)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db, s.sb.Insert("scripts").Columns(scriptColumns...).Values(
		sc.ID, sc.CalendarID, sc.ContentText, enc.hooks, sc.CTA, enc.hashtags,
		enc.draft, sc.Version, string(sc.Status), millis(sc.CreatedAt), millis(sc.UpdatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// UpdateScript overwrites content, version and status.
func (s *Store) UpdateScript(ctx context.Context, sc domain.Script) error {
	enc, err := encodeContent(sc.ScriptContent)
	if err != nil {
		return err
	}
	res, err := s.exec(ctx, s.db, s.sb.Update("scripts").SetMap(map[string]any{
		"content_text":    sc.ContentText,
		"hook_variations": enc.hooks,
		"cta":             sc.CTA,
		"hashtags":        enc.hashtags,
		"draft_data":      enc.draft,
		"version":         sc.Version,
		"status":          string(sc.Status),
		"updated_at":      millis(sc.UpdatedAt),
	}).Where(sq.Eq{"id": sc.ID}))
	if err != nil {
		return fmt.Errorf("update script: %w", err)
	}
	return requireRow(res, "script", sc.ID)
}

var scriptVersionColumns = []string{
	"id", "script_id", "content_text", "hook_variations", "cta", "hashtags",
	"draft_data", "version", "feedback_used", "created_at",
}

// AddScriptVersion archives a script snapshot.
func (s *Store) AddScriptVersion(ctx context.Context, v domain.ScriptVersion) error {
	enc, err := encodeContent(v.Content)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db, s.sb.Insert("script_versions").Columns(scriptVersionColumns...).Values(
		v.ID, v.ScriptID, v.Content.ContentText, enc.hooks, v.Content.CTA, enc.hashtags,
		enc.draft, v.Version, v.FeedbackUsed, millis(v.CreatedAt),
	))
	if err != nil {
		return fmt.Errorf("insert script version: %w", err)
	}
	return nil
}

// ListScriptVersions returns the archive of a script, oldest first.
func (s *Store) ListScriptVersions(ctx context.Context, scriptID string) ([]domain.ScriptVersion, error) {
	rows, err := s.query(ctx, s.sb.Select(scriptVersionColumns...).From("script_versions").
		Where(sq.Eq{"script_id": scriptID}).OrderBy("version", "created_at"))
	if err != nil {
		return nil, fmt.Errorf("query script versions: %w", err)
	}
	versions, err := collect(rows, func(row rowScanner) (domain.ScriptVersion, error) {
		var (
			v       domain.ScriptVersion
			enc     encodedContent
			created int64
		)
		if err := row.Scan(&v.ID, &v.ScriptID, &v.Content.ContentText, &enc.hooks, &v.Content.CTA, &enc.hashtags,
			&enc.draft, &v.Version, &v.FeedbackUsed, &created); err != nil {
			return v, err
		}
		v.CreatedAt = fromMillis(created)
		return v, decodeContent(&v.Content, enc)
	})
	if err != nil {
		return nil, fmt.Errorf("scan script versions: %w", err)
	}
	return versions, nil
}
