package orchestrators

import (
	"context"
	"fmt"
	"html"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"edusahasra/internal/adapters/email"
	"edusahasra/internal/adapters/storage/contact"
	"edusahasra/internal/application/forms"
)

// ContactStore persists contact messages locally before delivery.
type ContactStore interface {
	Save(ctx context.Context, m contact.Message) error
	MarkSent(ctx context.Context, id string) error
}

// ContactInput carries the public contact form fields.
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// ContactDeps holds dependencies for Contact.
type ContactDeps struct {
	Store  ContactStore
	Sender email.Sender
	Inbox  string // destination address
	From   string
	Log    zerolog.Logger
}

// ExecuteContact validates the contact form, stores a local copy, and
// emails it to the team inbox.
// POST: the message row exists even when delivery fails; sent is marked
// only after the provider accepts it
func ExecuteContact(ctx context.Context, input ContactInput, deps ContactDeps) (forms.Errors, error) {
	if errs := forms.CheckContactMessage(input.Name, input.Email, input.Message); errs != nil {
		return errs, nil
	}

	msg := contact.Message{
		ID:      uuid.NewString(),
		Name:    input.Name,
		Email:   input.Email,
		Message: input.Message,
	}
	if err := deps.Store.Save(ctx, msg); err != nil {
		return nil, err
	}

	body := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(input.Name),
		html.EscapeString(input.Email),
		html.EscapeString(input.Message),
	)
	_, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{deps.Inbox},
		From:    deps.From,
		Subject: "Contact form: " + input.Name,
		HTML:    body,
		ReplyTo: input.Email,
	})
	if err != nil {
		// kept unsent in the store for manual follow-up
		deps.Log.Error().Err(err).Str("message_id", msg.ID).Msg("contact_send_failed")
		return nil, nil
	}

	if err := deps.Store.MarkSent(ctx, msg.ID); err != nil {
		deps.Log.Error().Err(err).Str("message_id", msg.ID).Msg("contact_mark_sent_failed")
	}
	deps.Log.Info().Str("message_id", msg.ID).Msg("contact_sent")
	return nil, nil
}
