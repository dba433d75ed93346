package usecase

import (
	"fmt"
	"strings"

	"ContentStudio/internal/domain"
)

func clientProfile(c domain.Client) string {
	var b strings.Builder
	field := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, value)
		}
	}
	field("Name", c.Name)
	field("LinkedIn", c.LinkedInURL)
	field("Role", c.Role)
	field("Company", c.CompanyName)
	field("Industry", c.Industry)
	field("Bio", c.Bio)
	field("Goals", c.Goals)
	field("Tone preferences", c.TonePreferences)
	field("Target audience", c.TargetAudience)
	return b.String()
}

func auditPrompt(c domain.Client) string {
	return fmt.Sprintf(`Perform a LinkedIn personal brand audit for this client.

Client profile:
%s
Return a JSON object with:
- positioning_statement: one sentence describing how the client should be positioned
- content_pillars: array of 3 to 5 short pillar names
- tone_voice: description of the recommended tone of voice
- strengths_weaknesses: summary of current strengths and weaknesses
- audience_insights: what the target audience cares about`, clientProfile(c))
}

func calendarPrompt(c domain.Client, a domain.Audit, count int) string {
	return fmt.Sprintf(`Plan %d LinkedIn posts for this client.

Client profile:
%s
Brand audit:
- Positioning: %s
- Content pillars: %s
- Tone of voice: %s
- Audience insights: %s

Return a JSON object {"items": [...]} with exactly %d entries. Each entry has:
- title: catchy post title
- brief: what the post should say
- format: one of text, carousel, story
- pillar: one of the content pillars
- audience_target: who the post is for
- psychological_trigger: the hook or trigger used
- why_it_works: why this will resonate`,
		count, clientProfile(c), a.PositioningStatement, strings.Join(a.ContentPillars, ", "),
		a.ToneVoice, a.AudienceInsights, count)
}

func reviseItemPrompt(item domain.CalendarItem, feedback string) string {
	return fmt.Sprintf(`Revise this LinkedIn content idea based on the client's feedback.

Original idea:
- Title: %s
- Brief: %s
- Format: %s
- Pillar: %s
- Target audience: %s

Client feedback: %q

Keep the same format and pillar unless the feedback asks to change them.
Return a JSON object with title, brief, format, pillar, audience_target,
psychological_trigger and why_it_works (explain what changed).`,
		item.Title, item.Brief, item.Format, item.Pillar, item.AudienceTarget, feedback)
}

func scriptPrompt(item domain.CalendarItem, c domain.Client, previous *domain.Script, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a LinkedIn post for %s.\n\n", firstNonEmpty(c.Name, "the client"))
	fmt.Fprintf(&b, "Title: %s\nBrief: %s\nFormat: %s\nPillar: %s\nAudience: %s\nTone preferences: %s\n",
		item.Title, item.Brief, item.Format, item.Pillar, item.AudienceTarget, c.TonePreferences)

	if previous != nil {
		fmt.Fprintf(&b, "\nPrevious draft:\n%s\n\nClient feedback: %q\nRewrite every variant to address the feedback.\n",
			previous.ContentText, feedback)
	}

	b.WriteString(`
Return a JSON object with:
- formal_version: polished professional version
- conversational_version: personal, conversational version
- hook_variations: array of 3 alternative opening lines
- cta: closing call to action
- hashtags: array of 3 to 5 hashtags`)
	if item.Format == domain.FormatCarousel {
		fmt.Fprintf(&b, "\n- carousel_slides: array of exactly %d objects {slide, headline, body}", domain.MaxCarouselSlides)
	}
	return b.String()
}

func briefAssistPrompt(topic string, c *domain.Client) string {
	profile := ""
	if c != nil {
		profile = "\nClient profile:\n" + clientProfile(*c)
	}
	return fmt.Sprintf(`Suggest one LinkedIn post idea about: %q
%s
Return a JSON object with title, brief, format (text, carousel or story) and pillar.`, topic, profile)
}
