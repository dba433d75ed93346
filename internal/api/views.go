package api

import (
	"time"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/usecase"
)

const dateLayout = "2006-01-02"

type clientView struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Name            string    `json:"name"`
	LinkedInURL     string    `json:"linkedin_url,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	Goals           string    `json:"goals,omitempty"`
	TonePreferences string    `json:"tone_preferences,omitempty"`
	Industry        string    `json:"industry,omitempty"`
	Role            string    `json:"role,omitempty"`
	TargetAudience  string    `json:"target_audience,omitempty"`
	CompanyName     string    `json:"company_name,omitempty"`
	ApprovalEmail   string    `json:"approval_email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func newClientView(c domain.Client) clientView {
	return clientView{
		ID:              c.ID,
		OwnerID:         c.OwnerID,
		Name:            c.Name,
		LinkedInURL:     c.LinkedInURL,
		Bio:             c.Bio,
		Goals:           c.Goals,
		TonePreferences: c.TonePreferences,
		Industry:        c.Industry,
		Role:            c.Role,
		TargetAudience:  c.TargetAudience,
		CompanyName:     c.CompanyName,
		ApprovalEmail:   c.ApprovalEmail,
		CreatedAt:       c.CreatedAt,
	}
}

type auditView struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"client_id"`
	PositioningStatement string    `json:"positioning_statement"`
	ContentPillars       []string  `json:"content_pillars"`
	ToneVoice            string    `json:"tone_voice"`
	StrengthsWeaknesses  string    `json:"strengths_weaknesses"`
	AudienceInsights     string    `json:"audience_insights"`
	PrimaryGoals         []string  `json:"primary_goals"`
	CreatedAt            time.Time `json:"created_at"`
	Cached               bool      `json:"cached"`
}

func newAuditView(res usecase.AuditResult) auditView {
	a := res.Audit
	return auditView{
		ID:                   a.ID,
		ClientID:             a.ClientID,
		PositioningStatement: a.PositioningStatement,
		ContentPillars:       a.ContentPillars,
		ToneVoice:            a.ToneVoice,
		StrengthsWeaknesses:  a.StrengthsWeaknesses,
		AudienceInsights:     a.AudienceInsights,
		PrimaryGoals:         a.PrimaryGoals,
		CreatedAt:            a.CreatedAt,
		Cached:               res.Cached,
	}
}

type contentView struct {
	Title                string `json:"title"`
	Brief                string `json:"brief"`
	Format               string `json:"format"`
	Pillar               string `json:"pillar"`
	AudienceTarget       string `json:"audience_target,omitempty"`
	PsychologicalTrigger string `json:"psychological_trigger,omitempty"`
	WhyItWorks           string `json:"why_it_works,omitempty"`
}

func newContentView(c domain.ItemContent) contentView {
	return contentView{
		Title:                c.Title,
		Brief:                c.Brief,
		Format:               string(c.Format),
		Pillar:               c.Pillar,
		AudienceTarget:       c.AudienceTarget,
		PsychologicalTrigger: c.PsychologicalTrigger,
		WhyItWorks:           c.WhyItWorks,
	}
}

type itemView struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	contentView
	Status         string    `json:"status"`
	Stage          string    `json:"stage"`
	FeedbackStatus string    `json:"feedback_status"`
	FeedbackNotes  *string   `json:"feedback_notes"`
	ScheduledDate  string    `json:"scheduled_date"`
	ScheduledTime  string    `json:"scheduled_time"`
	MediaKey       string    `json:"media_key,omitempty"`
	MediaType      string    `json:"media_type,omitempty"`
	Caption        string    `json:"caption,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newItemView(it domain.CalendarItem) itemView {
	return itemView{
		ID:             it.ID,
		ClientID:       it.ClientID,
		contentView:    newContentView(it.ItemContent),
		Status:         string(it.Status),
		Stage:          string(it.Stage),
		FeedbackStatus: string(it.Feedback),
		FeedbackNotes:  it.FeedbackNotes,
		ScheduledDate:  it.ScheduledDate.Format(dateLayout),
		ScheduledTime:  it.ScheduledTime,
		MediaKey:       it.MediaKey,
		MediaType:      string(it.MediaType),
		Caption:        it.Caption,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

func newItemViews(items []domain.CalendarItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, newItemView(it))
	}
	return out
}

type versionView struct {
	ID           string      `json:"id"`
	CalendarID   string      `json:"calendar_id"`
	Content      contentView `json:"content"`
	FeedbackUsed string      `json:"feedback_used"`
	CreatedAt    time.Time   `json:"created_at"`
}

type scriptView struct {
	ID             string             `json:"id"`
	CalendarID     string             `json:"calendar_id"`
	ContentText    string             `json:"content_text"`
	HookVariations []string           `json:"hook_variations"`
	CTA            string             `json:"cta"`
	Hashtags       []string           `json:"hashtags"`
	Draft          domain.ScriptDraft `json:"draft_data"`
	Version        int                `json:"version"`
	Status         string             `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func newScriptView(s domain.Script) scriptView {
	return scriptView{
		ID:             s.ID,
		CalendarID:     s.CalendarID,
		ContentText:    s.ContentText,
		HookVariations: s.HookVariations,
		CTA:            s.CTA,
		Hashtags:       s.Hashtags,
		Draft:          s.Draft,
		Version:        s.Version,
		Status:         string(s.Status),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type scriptVersionView struct {
	ID           string    `json:"id"`
	ScriptID     string    `json:"script_id"`
	ContentText  string    `json:"content_text"`
	Version      int       `json:"version"`
	FeedbackUsed string    `json:"feedback_used"`
	CreatedAt    time.Time `json:"created_at"`
}

type scheduleView struct {
	ID            string    `json:"id"`
	ScriptID      string    `json:"script_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Method        string    `json:"method"`
	IsPosted      bool      `json:"is_posted"`
}

func newScheduleView(sc domain.Schedule) scheduleView {
	return scheduleView{
		ID:            sc.ID,
		ScriptID:      sc.ScriptID,
		ScheduledTime: sc.ScheduledTime,
		Method:        string(sc.Method),
		IsPosted:      sc.IsPosted,
	}
}

type notificationView struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	CalendarID string    `json:"calendar_id"`
	Kind       string    `json:"type"`
	Message    string    `json:"message"`
	Read       bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type effectsView struct {
	Attempted int      `json:"attempted"`
	Failed    []string `json:"failed,omitempty"`
}

func newEffectsView(e domain.Effects) effectsView {
	v := effectsView{Attempted: e.Attempted}
	for _, f := range e.Failed {
		v.Failed = append(v.Failed, f.Effect+": "+f.Err.Error())
	}
	return v
}

type dispatchView struct {
	ItemID string    `json:"item_id"`
	Sent   bool      `json:"sent"`
	Item   *itemView `json:"item,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type approvalPageView struct {
	ItemID      string `json:"item_id"`
	ClientName  string `json:"client_name"`
	Title       string `json:"title"`
	Brief       string `json:"brief"`
	Format      string `json:"format"`
	Stage       string `json:"stage"`
	Feedback    string `json:"feedback_status"`
	ContentText string `json:"content_text,omitempty"`
}
