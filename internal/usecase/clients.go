package usecase

import (
	"context"
	"strings"

	"ContentStudio/internal/domain"
)

// OnboardInput is the onboarding form.
type OnboardInput struct {
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
}

// Onboard registers a client. Without an explicit name it is derived from the
// LinkedIn profile URL.
func (w *Workflow) Onboard(ctx context.Context, in OnboardInput) (domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = domain.ClientNameFromLinkedIn(in.LinkedInURL)
	}

	client := domain.Client{
		ID:              w.newID(),
		OwnerID:         in.OwnerID,
		Name:            name,
		LinkedInURL:     strings.TrimSpace(in.LinkedInURL),
		Bio:             in.Bio,
		Goals:           in.Goals,
		TonePreferences: in.TonePreferences,
		Industry:        in.Industry,
		Role:            in.Role,
		TargetAudience:  in.TargetAudience,
		CompanyName:     in.CompanyName,
		ApprovalEmail:   strings.TrimSpace(in.ApprovalEmail),
		CreatedAt:       w.now(),
	}
	if err := w.clients.CreateClient(ctx, client); err != nil {
		return domain.Client{}, persistence("create client", err)
	}
	w.info("client onboarded", "client", client.ID, "name", client.Name)
	return client, nil
}

// GetClient loads a client.
func (w *Workflow) GetClient(ctx context.Context, clientID string) (domain.Client, error) {
	c, err := w.clients.GetClient(ctx, clientID)
	if err != nil {
		return domain.Client{}, persistence("load client", err)
	}
	return c, nil
}

// DeleteClient removes a client with all of its content.
func (w *Workflow) DeleteClient(ctx context.Context, clientID string) error {
	if err := w.clients.DeleteClient(ctx, clientID); err != nil {
		return persistence("delete client", err)
	}
	w.info("client deleted", "client", clientID)
	return nil
}
