package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/relay"
)

type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Resend emails the owner a copy of each message, replying to the visitor.
type Resend struct {
	api    emailAPI
	from   string
	to     string
	logger zerolog.Logger
}

func NewResend(apiKey, from, to string, logger zerolog.Logger) *Resend {
	return &Resend{
		api:    resend.NewClient(apiKey).Emails,
		from:   from,
		to:     to,
		logger: logger.With().Str("notifier", "resend").Logger(),
	}
}

func (r *Resend) Notify(ctx context.Context, msg relay.Message) error {
	subject := "New portfolio contact"
	if msg.Subject != "" {
		subject += ": " + msg.Subject
	}

	params := &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{r.to},
		Subject: subject,
		Html:    emailBody(msg),
		ReplyTo: msg.Email,
	}
	sent, err := r.api.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send owner email: %w", err)
	}
	r.logger.Info().Str("emailId", sent.Id).Msg("owner email sent")
	return nil
}

func emailBody(msg relay.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p><strong>%s</strong> &lt;%s&gt; wrote:</p>", html.EscapeString(msg.Name), html.EscapeString(msg.Email))
	for _, line := range strings.Split(msg.Message, "\n") {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(line))
	}
	return b.String()
}
