package generation

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "fenced object", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", in: "```json {\"a\":1}```", want: `{"a":1}`},
		{name: "prose around object", in: `Sure! Here it is: {"a":1} Hope that helps.`, want: `{"a":1}`},
		{name: "bare array", in: `[{"title":"x"}]`, want: `[{"title":"x"}]`},
		{name: "array in prose", in: "Ideas:\n[1, 2, 3]\nDone", want: `[1, 2, 3]`},
		{name: "array nested in object", in: `Result: {"items":[1,2]} end`, want: `{"items":[1,2]}`},
		{name: "braces inside strings", in: `x {"text":"use } and { freely","n":2} y`, want: `{"text":"use } and { freely","n":2}`},
		{name: "escaped quote", in: `{"q":"say \"hi\" }"} trailing`, want: `{"q":"say \"hi\" }"}`},
		{name: "skips invalid candidate", in: `{not json} then {"ok":true}`, want: `{"ok":true}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ExtractJSON(tc.in)
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if string(got) != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestExtractJSONFailures(t *testing.T) {
	t.Parallel()

	if _, err := ExtractJSON("   "); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := ExtractJSON("I cannot help with that."); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
	if _, err := ExtractJSON(`{"unterminated": [1, 2`); !errors.Is(err, ErrNoJSON) {
		t.Fatalf("expected ErrNoJSON for truncated output, got %v", err)
	}
}

func TestPreviewTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 500)
	got := Preview(long)
	if len(got) != previewLimit+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected preview length %d", len(got))
	}
	if Preview(" short ") != "short" {
		t.Fatal("short previews should be trimmed only")
	}
}
