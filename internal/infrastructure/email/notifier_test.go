package email

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

type captureSender struct {
	got []Message
	err error
}

func (c *captureSender) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.got = append(c.got, msg)
	return nil
}

func sampleRequest() ports.ApprovalRequest {
	return ports.ApprovalRequest{
		To:         "jane@example.com",
		ClientName: "Jane <Doe>",
		Title:      "Hiring lessons",
		Brief:      "What we learned",
		Stage:      domain.StageBrief,
		Link:       "https://studio.test/feedback/abc",
	}
}

func TestSendApprovalRequestRendersMessage(t *testing.T) {
	t.Parallel()

	sender := &captureSender{}
	n := NewNotifier("studio@example.com", sender, nil)
	if err := n.SendApprovalRequest(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(sender.got) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.got))
	}
	msg := sender.got[0]
	if msg.Subject != "Approval Required: Hiring lessons" || msg.From != "studio@example.com" {
		t.Fatalf("unexpected envelope: %+v", msg)
	}
	if strings.Contains(msg.HTML, "<Doe>") || !strings.Contains(msg.HTML, "Jane &lt;Doe&gt;") {
		t.Fatalf("client name not escaped: %s", msg.HTML)
	}
	for _, want := range []string{"Hi Jane <Doe>,", "post idea", "Hiring lessons", "https://studio.test/feedback/abc"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("text body missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestRenderContentStageIncludesPostText(t *testing.T) {
	t.Parallel()

	req := sampleRequest()
	req.Stage = domain.StageContent
	req.ContentText = "Line one\nLine two"
	req.MediaURL = "https://media.test/x.png"

	msg, err := Render("studio@example.com", req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"final review", "Line one\nLine two", "https://media.test/x.png"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("text body missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestSendApprovalRequestWrapsSenderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("relay refused")
	n := NewNotifier("studio@example.com", &captureSender{err: boom}, nil)
	if err := n.SendApprovalRequest(context.Background(), sampleRequest()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sender error, got %v", err)
	}

	req := sampleRequest()
	req.To = " "
	if err := n.SendApprovalRequest(context.Background(), req); err == nil {
		t.Fatalf("expected error for empty recipient")
	}
}

func TestBuildMIMEHasBothParts(t *testing.T) {
	t.Parallel()

	raw, err := buildMIME(Message{
		From:    "studio@example.com",
		To:      "jane@example.com",
		Subject: "Approval Required: Café post",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	}, time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse message: %v", err)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	if err != nil || subject != "Approval Required: Café post" {
		t.Fatalf("unexpected subject %q (%v)", subject, err)
	}

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/alternative" {
		t.Fatalf("unexpected content type %q (%v)", mediaType, err)
	}
	mr := multipart.NewReader(m.Body, params["boundary"])
	var types []string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		types = append(types, p.Header.Get("Content-Type"))
	}
	if len(types) != 2 || !strings.HasPrefix(types[0], "text/plain") || !strings.HasPrefix(types[1], "text/html") {
		t.Fatalf("unexpected parts %v", types)
	}
}
