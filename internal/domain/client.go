package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode"
)

// DefaultClientName is used when no name can be derived from onboarding input.
const DefaultClientName = "Unnamed Client"

// Client is an agency customer whose LinkedIn presence is managed.
type Client struct {
	ID              string
	OwnerID         string
	Name            string
	LinkedInURL     string
	Bio             string
	Goals           string
	TonePreferences string
	Industry        string
	Role            string
	TargetAudience  string
	CompanyName     string
	ApprovalEmail   string
	CreatedAt       time.Time
}

// Audit is the AI-generated brand positioning for a client. One per client.
type Audit struct {
	ID                   string
	ClientID             string
	PositioningStatement string
	ContentPillars       []string
	ToneVoice            string
	StrengthsWeaknesses  string
	AudienceInsights     string
	PrimaryGoals         []string
	CreatedAt            time.Time
}

// ClientNameFromLinkedIn turns a profile URL such as
// https://linkedin.com/in/jane-doe into "Jane Doe".
func ClientNameFromLinkedIn(profileURL string) string {
	raw := strings.TrimSpace(profileURL)
	if raw == "" {
		return DefaultClientName
	}

	path := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return DefaultClientName
	}

	segments := strings.Split(path, "/")
	slug := segments[len(segments)-1]
	if slug == "in" {
		return DefaultClientName
	}

	var words []string
	for _, part := range strings.Split(slug, "-") {
		if part == "" {
			continue
		}
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		words = append(words, string(runes))
	}
	if len(words) == 0 {
		return DefaultClientName
	}
	return strings.Join(words, " ")
}
