package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"ContentStudio/internal/domain"
)

type memoryMedia struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryMedia() *memoryMedia {
	return &memoryMedia{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryMedia) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = raw
	m.types[key] = contentType
	return nil
}

func (m *memoryMedia) URL(_ context.Context, key string) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", errors.New("no such object")
	}
	return "https://media.test/" + key + "?sig=1", nil
}

func TestAttachMediaStoresObjectAndLinksIt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	media := newMemoryMedia()
	env := newTestEnv(t, func(d *WorkflowDeps) { d.Media = media })
	c := env.onboard(t)
	item := env.addItem(t, c.ID, domain.FormatText)

	body := "fake png bytes"
	updated, err := env.wf.AttachMedia(ctx, item.ID, MediaUpload{
		Filename:    "Cover.PNG",
		ContentType: "image/png",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
		Caption:     "  Team offsite  ",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if updated.MediaType != domain.MediaImage || updated.Caption != "Team offsite" {
		t.Fatalf("unexpected item %+v", updated)
	}
	if !strings.HasPrefix(updated.MediaKey, c.ID+"/"+item.ID+"/") || !strings.HasSuffix(updated.MediaKey, ".png") {
		t.Fatalf("unexpected key %q", updated.MediaKey)
	}
	if string(media.objects[updated.MediaKey]) != body {
		t.Fatal("object body not stored")
	}

	url, err := env.wf.MediaURL(ctx, item.ID)
	if err != nil || !strings.Contains(url, updated.MediaKey) {
		t.Fatalf("unexpected url %q (%v)", url, err)
	}

	if _, err := env.wf.SendForApproval(ctx, []string{item.ID}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(env.mail.sent) != 1 || env.mail.sent[0].MediaURL != url {
		t.Fatalf("approval mail should carry the media link, got %+v", env.mail.sent)
	}
}

func TestAttachMediaRejectsBadUploads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, func(d *WorkflowDeps) { d.Media = newMemoryMedia() })
	c := env.onboard(t)
	item := env.addItem(t, c.ID, domain.FormatText)

	var ve *domain.ValidationError
	_, err := env.wf.AttachMedia(ctx, item.ID, MediaUpload{Filename: "notes.txt", ContentType: "text/plain", Size: 3, Body: strings.NewReader("abc")})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for text upload, got %v", err)
	}
	_, err = env.wf.AttachMedia(ctx, item.ID, MediaUpload{Filename: "deck.pdf", Size: 0, Body: strings.NewReader("")})
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error for empty upload, got %v", err)
	}

	var nf *domain.NotFoundError
	if _, err := env.wf.MediaURL(ctx, item.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found without media, got %v", err)
	}
}

func TestMediaWithoutStore(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	c := env.onboard(t)
	item := env.addItem(t, c.ID, domain.FormatText)

	_, err := env.wf.AttachMedia(context.Background(), item.ID, MediaUpload{Filename: "a.png", Size: 1, Body: strings.NewReader("a")})
	if !errors.Is(err, domain.ErrMediaUnavailable) {
		t.Fatalf("expected ErrMediaUnavailable, got %v", err)
	}
}

func TestMediaTypeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		contentType, filename string
		want                  domain.MediaType
		ok                    bool
	}{
		{"image/jpeg", "x", domain.MediaImage, true},
		{"VIDEO/MP4", "x", domain.MediaVideo, true},
		{"application/pdf", "x", domain.MediaPDF, true},
		{"application/octet-stream", "clip.MOV", domain.MediaVideo, true},
		{"", "deck.pdf", domain.MediaPDF, true},
		{"text/plain", "notes.txt", "", false},
	}
	for _, tc := range cases {
		got, ok := mediaTypeFor(tc.contentType, tc.filename)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("mediaTypeFor(%q, %q) = %q, %v", tc.contentType, tc.filename, got, ok)
		}
	}
}

func TestViewApprovalShowsScriptAtContentStage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	c := env.onboard(t)
	item := env.addItem(t, c.ID, domain.FormatText)

	view, err := env.wf.ViewApproval(ctx, item.ID+"."+string(domain.StageBrief))
	if err != nil {
		t.Fatalf("view brief: %v", err)
	}
	if view.ClientName != "Jane Doe" || view.Item.Title != "Hiring lessons" || view.ContentText != "" {
		t.Fatalf("unexpected brief view %+v", view)
	}

	if _, err := env.wf.DecideByToken(ctx, item.ID+"."+string(domain.StageBrief), ActionApprove, ""); err != nil {
		t.Fatalf("approve brief: %v", err)
	}
	if _, err := env.wf.SaveManualScript(ctx, item.ID, "Final post text"); err != nil {
		t.Fatalf("manual script: %v", err)
	}
	script, err := env.wf.GetScriptForItem(ctx, item.ID)
	if err != nil || script.Version != 1 {
		t.Fatalf("unexpected script %+v (%v)", script, err)
	}

	view, err = env.wf.ViewApproval(ctx, item.ID+"."+string(domain.StageContent))
	if err != nil {
		t.Fatalf("view content: %v", err)
	}
	if view.ContentText != "Final post text" {
		t.Fatalf("content stage view should carry the script, got %q", view.ContentText)
	}

	var ve *domain.ValidationError
	if _, err := env.wf.ViewApproval(ctx, "garbage"); !errors.As(err, &ve) {
		t.Fatalf("expected validation error for a malformed token, got %v", err)
	}
}
