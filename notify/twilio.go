package notify

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jevonc/portfolio-backend/relay"
)

// smsAPI is the part of the Twilio client we call.
type smsAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// Twilio texts the owner a one-line summary of each message.
type Twilio struct {
	api    smsAPI
	from   string
	to     string
	logger zerolog.Logger
}

func NewTwilio(accountSID, authToken, from, to string, logger zerolog.Logger) *Twilio {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &Twilio{
		api:    client.Api,
		from:   from,
		to:     to,
		logger: logger.With().Str("notifier", "twilio").Logger(),
	}
}

func (t *Twilio) Notify(_ context.Context, msg relay.Message) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetBody(smsBody(msg))

	resp, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send owner SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		t.logger.Info().Str("sid", *resp.Sid).Msg("owner SMS sent")
	}
	return nil
}

// smsLimit is counted in characters, not bytes.
const smsLimit = 300

// SMS segments are short, so the message body is truncated
func smsBody(msg relay.Message) string {
	body := fmt.Sprintf("New contact from %s <%s>", msg.Name, msg.Email)
	if msg.Subject != "" {
		body += ": " + msg.Subject
	}
	header := utf8.RuneCountInString(body)
	if header+2+utf8.RuneCountInString(msg.Message) <= smsLimit {
		return body + "\n\n" + msg.Message
	}
	remaining := smsLimit - header - 5
	if remaining <= 0 {
		return truncateRunes(body, smsLimit)
	}
	return body + "\n\n" + truncateRunes(msg.Message, remaining) + "..."
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
