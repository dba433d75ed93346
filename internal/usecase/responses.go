package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"ContentStudio/internal/domain"
)

// flexText accepts a JSON string or any other value, which is kept as
// compact JSON text. Models are not consistent about nesting.
type flexText string

func (f *flexText) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexText(strings.TrimSpace(s))
		return nil
	}
	if bytes.Equal(raw, []byte("null")) {
		*f = ""
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return err
	}
	*f = flexText(buf.String())
	return nil
}

// flexList accepts an array of strings or of objects carrying a name/title.
type flexList []string

func (f *flexList) UnmarshalJSON(raw []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var single flexText
		if err := json.Unmarshal(raw, &single); err != nil {
			return err
		}
		if single != "" {
			*f = flexList{string(single)}
		}
		return nil
	}

	out := make(flexList, 0, len(items))
	for _, item := range items {
		var named struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(item, &named); err == nil && (named.Name != "" || named.Title != "") {
			out = append(out, firstNonEmpty(named.Name, named.Title))
			continue
		}
		var text flexText
		if err := json.Unmarshal(item, &text); err != nil {
			return err
		}
		if text != "" {
			out = append(out, string(text))
		}
	}
	*f = out
	return nil
}

type auditResponse struct {
	PositioningStatement flexText `json:"positioning_statement"`
	ContentPillars       flexList `json:"content_pillars"`
	ToneVoice            flexText `json:"tone_voice"`
	StrengthsWeaknesses  flexText `json:"strengths_weaknesses"`
	AudienceInsights     flexText `json:"audience_insights"`
}

type ideaResponse struct {
	Title                flexText `json:"title"`
	Brief                flexText `json:"brief"`
	Format               flexText `json:"format"`
	Pillar               flexText `json:"pillar"`
	AudienceTarget       flexText `json:"audience_target"`
	PsychologicalTrigger flexText `json:"psychological_trigger"`
	WhyItWorks           flexText `json:"why_it_works"`
}

func (r ideaResponse) content() domain.ItemContent {
	return domain.ItemContent{
		Title:                string(r.Title),
		Brief:                string(r.Brief),
		Format:               domain.ParseFormat(string(r.Format)),
		Pillar:               string(r.Pillar),
		AudienceTarget:       string(r.AudienceTarget),
		PsychologicalTrigger: string(r.PsychologicalTrigger),
		WhyItWorks:           string(r.WhyItWorks),
	}
}

var listKeys = []string{"items", "calendar", "content_calendar", "posts", "ideas"}

// decodeIdeas accepts either a bare array or an object wrapping the array,
// which JSON mode forces on some providers.
func decodeIdeas(raw json.RawMessage) ([]ideaResponse, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ideas []ideaResponse
		if err := json.Unmarshal(trimmed, &ideas); err != nil {
			return nil, fmt.Errorf("decode ideas: %w", err)
		}
		return ideas, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}
	for _, key := range listKeys {
		if inner, ok := wrapper[key]; ok {
			return decodeIdeas(inner)
		}
	}
	return nil, fmt.Errorf("decode ideas: no list under %s", strings.Join(listKeys, ", "))
}

func decodeIdea(raw json.RawMessage) (ideaResponse, error) {
	var idea ideaResponse
	if err := json.Unmarshal(raw, &idea); err != nil {
		return idea, fmt.Errorf("decode idea: %w", err)
	}
	if idea.Title == "" {
		return idea, fmt.Errorf("decode idea: missing title")
	}
	return idea, nil
}

func decodeDraft(raw json.RawMessage) (domain.ScriptDraft, error) {
	var draft domain.ScriptDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return draft, fmt.Errorf("decode script: %w", err)
	}
	if draft.FormalVersion == "" && draft.ConversationalVersion == "" && len(draft.CarouselSlides) == 0 {
		return draft, fmt.Errorf("decode script: no text in response")
	}
	return draft, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func jsonUnmarshal(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// splitGoals turns a free-text goals field into a list.
func splitGoals(goals string) []string {
	fields := strings.FieldsFunc(goals, func(r rune) bool { return r == ',' || r == '\n' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
