package domain

import (
	"fmt"
	"strings"
	"time"
)

// ScriptStatus is the approval state of a script.
type ScriptStatus string

const (
	ScriptStatusDraft    ScriptStatus = "draft"
	ScriptStatusApproved ScriptStatus = "approved"
)

// Tone selects one of the generated writing variants.
type Tone string

const (
	ToneFormal         Tone = "formal"
	ToneConversational Tone = "conversational"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	return t == ToneFormal || t == ToneConversational
}

// MaxCarouselSlides bounds the slide count of a carousel script.
const MaxCarouselSlides = 7

// CarouselSlide is one slide of a carousel post.
type CarouselSlide struct {
	Slide    int    `json:"slide"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

// ScriptDraft is the full generated payload kept alongside the script.
type ScriptDraft struct {
	FormalVersion         string          `json:"formal_version"`
	ConversationalVersion string          `json:"conversational_version"`
	HookVariations        []string        `json:"hook_variations"`
	CTA                   string          `json:"cta"`
	Hashtags              []string        `json:"hashtags"`
	CarouselSlides        []CarouselSlide `json:"carousel_slides,omitempty"`
}

// Normalize trims the slide list and fills in missing slide numbers.
func (d *ScriptDraft) Normalize() {
	if len(d.CarouselSlides) > MaxCarouselSlides {
		d.CarouselSlides = d.CarouselSlides[:MaxCarouselSlides]
	}
	for i := range d.CarouselSlides {
		if d.CarouselSlides[i].Slide <= 0 {
			d.CarouselSlides[i].Slide = i + 1
		}
	}
}

// Text returns the variant for the requested tone.
func (d ScriptDraft) Text(tone Tone) string {
	if tone == ToneFormal {
		return d.FormalVersion
	}
	return d.ConversationalVersion
}

// ContentText is the primary post text for the given format.
func (d ScriptDraft) ContentText(format Format) string {
	if format == FormatCarousel && len(d.CarouselSlides) > 0 {
		return FlattenSlides(d.CarouselSlides)
	}
	if d.ConversationalVersion != "" {
		return d.ConversationalVersion
	}
	return d.FormalVersion
}

// FlattenSlides renders slides as "Slide N: headline\nbody" blocks separated
// by blank lines.
func FlattenSlides(slides []CarouselSlide) string {
	blocks := make([]string, 0, len(slides))
	for i, s := range slides {
		n := s.Slide
		if n <= 0 {
			n = i + 1
		}
		blocks = append(blocks, fmt.Sprintf("Slide %d: %s\n%s", n, s.Headline, s.Body))
	}
	return strings.Join(blocks, "\n\n")
}

// ScriptContent holds the text fields that revisions replace and archives keep.
type ScriptContent struct {
	ContentText    string
	HookVariations []string
	CTA            string
	Hashtags       []string
	Draft          ScriptDraft
}

// ContentFromDraft derives the stored fields from a generated draft.
func ContentFromDraft(draft ScriptDraft, format Format) ScriptContent {
	draft.Normalize()
	return ScriptContent{
		ContentText:    draft.ContentText(format),
		HookVariations: draft.HookVariations,
		CTA:            draft.CTA,
		Hashtags:       draft.Hashtags,
		Draft:          draft,
	}
}

// Script is the drafted post text for a calendar item.
type Script struct {
	ID         string
	CalendarID string
	ScriptContent

	Version   int
	Status    ScriptStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewScript builds the first version of a script.
func NewScript(id, calendarID string, content ScriptContent, now time.Time) Script {
	return Script{
		ID:            id,
		CalendarID:    calendarID,
		ScriptContent: content,
		Version:       1,
		Status:        ScriptStatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Revise replaces the content, bumps the version and resets approval.
func (s *Script) Revise(content ScriptContent, now time.Time) {
	s.ScriptContent = content
	s.Version++
	s.Status = ScriptStatusDraft
	s.UpdatedAt = now
}

// Approve marks the script approved. It reports whether anything changed.
func (s *Script) Approve(now time.Time) bool {
	if s.Status == ScriptStatusApproved {
		return false
	}
	s.Status = ScriptStatusApproved
	s.UpdatedAt = now
	return true
}

// ScriptVersion archives a script before it is revised.
type ScriptVersion struct {
	ID           string
	ScriptID     string
	Content      ScriptContent
	Version      int
	FeedbackUsed string
	CreatedAt    time.Time
}
