// Package notify alerts the site owner when a contact message comes in.
package notify

import (
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/config"
	"github.com/jevonc/portfolio-backend/relay"
)

// FromSettings builds every notifier whose credentials are present.
func FromSettings(s config.NotifySettings, logger zerolog.Logger) []relay.Notifier {
	var notifiers []relay.Notifier
	if s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioFrom != "" && s.OwnerPhone != "" {
		notifiers = append(notifiers, NewTwilio(s.TwilioAccountSID, s.TwilioAuthToken, s.TwilioFrom, s.OwnerPhone, logger))
	} else {
		logger.Debug().Msg("Twilio owner alerts disabled")
	}
	if s.ResendAPIKey != "" && s.ResendFromEmail != "" && s.OwnerEmail != "" {
		notifiers = append(notifiers, NewResend(s.ResendAPIKey, s.ResendFromEmail, s.OwnerEmail, logger))
	} else {
		logger.Debug().Msg("Resend owner emails disabled")
	}
	return notifiers
}
