package domain

import (
	"strings"
	"testing"
)

func TestContentFromDraftCarousel(t *testing.T) {
	t.Parallel()

	draft := ScriptDraft{ConversationalVersion: "hey"}
	for i := 0; i < 9; i++ {
		draft.CarouselSlides = append(draft.CarouselSlides, CarouselSlide{Headline: "H", Body: "B"})
	}

	content := ContentFromDraft(draft, FormatCarousel)
	if len(content.Draft.CarouselSlides) != MaxCarouselSlides {
		t.Fatalf("expected %d slides, got %d", MaxCarouselSlides, len(content.Draft.CarouselSlides))
	}

	blocks := strings.Split(content.ContentText, "\n\n")
	if len(blocks) != MaxCarouselSlides {
		t.Fatalf("expected %d blocks, got %d", MaxCarouselSlides, len(blocks))
	}
	if blocks[0] != "Slide 1: H\nB" || !strings.HasPrefix(blocks[6], "Slide 7: ") {
		t.Fatalf("unexpected blocks: %q", blocks)
	}
}

func TestContentFromDraftText(t *testing.T) {
	t.Parallel()

	content := ContentFromDraft(ScriptDraft{FormalVersion: "formal", ConversationalVersion: "casual"}, FormatText)
	if content.ContentText != "casual" {
		t.Fatalf("expected conversational text, got %q", content.ContentText)
	}

	content = ContentFromDraft(ScriptDraft{FormalVersion: "formal"}, FormatStory)
	if content.ContentText != "formal" {
		t.Fatalf("expected formal fallback, got %q", content.ContentText)
	}
}

func TestScriptReviseAndApprove(t *testing.T) {
	t.Parallel()

	s := NewScript("s1", "c1", ScriptContent{ContentText: "v1"}, testNow)
	if !s.Approve(testNow) {
		t.Fatal("first approve should change state")
	}
	if s.Approve(testNow) {
		t.Fatal("second approve should be a no-op")
	}

	s.Revise(ScriptContent{ContentText: "v2"}, testNow)
	if s.Version != 2 || s.Status != ScriptStatusDraft || s.ContentText != "v2" {
		t.Fatalf("unexpected revision: %+v", s)
	}
}

func TestClientNameFromLinkedIn(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://www.linkedin.com/in/saksham-chauhan/": "Saksham Chauhan",
		"linkedin.com/in/JANE":                         "Jane",
		"":                                             DefaultClientName,
		"https://linkedin.com/":                        DefaultClientName,
		"https://linkedin.com/in/":                     DefaultClientName,
	}
	for in, want := range cases {
		if got := ClientNameFromLinkedIn(in); got != want {
			t.Fatalf("ClientNameFromLinkedIn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseScheduleMethod(t *testing.T) {
	t.Parallel()

	if m, err := ParseScheduleMethod(""); err != nil || m != MethodManual {
		t.Fatalf("expected manual default, got %s %v", m, err)
	}
	if _, err := ParseScheduleMethod("carrier-pigeon"); err == nil {
		t.Fatal("expected validation error")
	}
}
