// Package email delivers approval requests to clients.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentStudio/internal/domain"
	"ContentStudio/internal/ports"
)

// Message is a rendered e-mail with HTML and plain-text bodies.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender hands a rendered message to a transport.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders approval requests and passes them to a Sender.
type Notifier struct {
	from   string
	sender Sender
	logger *slog.Logger
}

var _ ports.ApprovalNotifier = (*Notifier)(nil)

// NewNotifier binds the sender address and transport.
func NewNotifier(from string, sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{from: from, sender: sender, logger: logger}
}

// SendApprovalRequest renders and sends the approval e-mail.
func (n *Notifier) SendApprovalRequest(ctx context.Context, req ports.ApprovalRequest) error {
	if n.sender == nil {
		return fmt.Errorf("email notifier misconfigured")
	}
	if strings.TrimSpace(req.To) == "" {
		return fmt.Errorf("email recipient is empty")
	}

	msg, err := Render(n.from, req)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send approval email: %w", err)
	}
	if n.logger != nil {
		n.logger.Info("approval email sent", "to", req.To, "title", req.Title, "stage", req.Stage)
	}
	return nil
}

// Subject is the subject line of an approval e-mail.
func Subject(title string) string {
	return "Approval Required: " + title
}

var approvalTemplate = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
<h1>Hi {{.ClientName}},</h1>
{{if .Content}}<p>The post below is ready for your final review.</p>{{else}}<p>A new post idea is ready for your review.</p>{{end}}
<h2>{{.Title}}</h2>
{{if .Brief}}<p>{{.Brief}}</p>{{end}}
{{if .ContentText}}<pre style="white-space: pre-wrap; font-family: inherit;">{{.ContentText}}</pre>{{end}}
{{if .MediaURL}}<p>Attached media: <a href="{{.MediaURL}}">{{.MediaURL}}</a></p>{{end}}
<p>Approve it or request changes here: <a class="button" href="{{.Link}}">{{.Link}}</a></p>
</body>
</html>
`))

type approvalView struct {
	ports.ApprovalRequest
	Content bool
}

// Render builds the approval message for req.
func Render(from string, req ports.ApprovalRequest) (Message, error) {
	var buf bytes.Buffer
	view := approvalView{ApprovalRequest: req, Content: req.Stage == domain.StageContent}
	if view.ClientName == "" {
		view.ClientName = "there"
	}
	if err := approvalTemplate.Execute(&buf, view); err != nil {
		return Message{}, fmt.Errorf("render approval email: %w", err)
	}

	text, err := plainText(buf.String())
	if err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      req.To,
		Subject: Subject(req.Title),
		HTML:    buf.String(),
		Text:    text,
	}, nil
}

// plainText derives the text/plain alternative from the HTML body.
func plainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse email html: %w", err)
	}

	var blocks []string
	doc.Find("h1, h2, p, pre").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n") + "\n", nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (l LogSender) Send(_ context.Context, msg Message) error {
	if l.Logger != nil {
		l.Logger.Info("email not delivered, SMTP is not configured", "to", msg.To, "subject", msg.Subject)
		l.Logger.Debug("email body", "text", msg.Text)
	}
	return nil
}
