// Package relay forwards contact form submissions to a Formspree-style endpoint.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jevonc/portfolio-backend/errs"
)

const (
	MisconfiguredMessage = "Contact form is not configured. Please set CONTACT_RELAY_URL to your Formspree endpoint."
	RejectedMessage      = "Failed to send message. Please try again."
	NetworkMessage       = "Something went wrong. Please check your internet connection."
)

// placeholders left in sample env files
var placeholders = []string{"your_id_here", "your_form_id"}

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

// Notifier is told about every message the relay accepted.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Relay struct {
	endpoint  string
	client    *http.Client
	notifiers []Notifier
	logger    zerolog.Logger
	validate  *validator.Validate
}

type Option func(*Relay)

func WithHTTPClient(c *http.Client) Option {
	return func(r *Relay) { r.client = c }
}

func WithNotifiers(n ...Notifier) Option {
	return func(r *Relay) { r.notifiers = append(r.notifiers, n...) }
}

func New(endpoint string, logger zerolog.Logger, opts ...Option) *Relay {
	r := &Relay{
		endpoint: strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger.With().Str("component", "contactRelay").Logger(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CheckEndpoint reports a relay misconfiguration without contacting anything.
func (r *Relay) CheckEndpoint() error {
	if r.endpoint == "" {
		return errs.NewRelayMisconfiguredError(MisconfiguredMessage)
	}
	lower := strings.ToLower(r.endpoint)
	for _, p := range placeholders {
		if strings.Contains(lower, p) {
			return errs.NewRelayMisconfiguredError(MisconfiguredMessage)
		}
	}
	u, err := url.Parse(r.endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.NewRelayMisconfiguredError(MisconfiguredMessage)
	}
	return nil
}

// ValidateMessage checks the fields the form marks as required.
func (r *Relay) ValidateMessage(msg Message) error {
	if err := r.validate.Struct(msg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			field := strings.ToLower(verrs[0].Field())
			if verrs[0].Tag() == "required" {
				return errs.NewMissingRequiredFieldError(field)
			}
			return errs.NewInvalidFieldError(field, "must be a valid email address")
		}
		return errs.NewMalformedPayloadError("contact", err)
	}
	return nil
}

// relayResponse covers both Formspree error shapes
type relayResponse struct {
	Error  string `json:"error"`
	Errors []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Send posts msg to the relay. A misconfigured endpoint fails before any request is made.
func (r *Relay) Send(ctx context.Context, msg Message) error {
	if err := r.CheckEndpoint(); err != nil {
		r.logger.Warn().Msg("contact relay endpoint missing or placeholder")
		return err
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal contact message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.NewRelayMisconfiguredError(MisconfiguredMessage)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error().Err(err).Msg("contact relay unreachable")
		return errs.NewRelayFailureError(NetworkMessage, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		details := rejectionMessage(body)
		r.logger.Warn().Int("status", resp.StatusCode).Str("reason", details).Msg("contact relay rejected message")
		return errs.NewRelayFailureError(details, fmt.Errorf("relay responded with status %d", resp.StatusCode))
	}

	r.logger.Info().Str("email", msg.Email).Msg("contact message relayed")
	r.notify(ctx, msg)
	return nil
}

func (r *Relay) notify(ctx context.Context, msg Message) {
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			r.logger.Error().Err(err).Msg("owner notification failed")
		}
	}
}

func rejectionMessage(body []byte) string {
	var res relayResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return RejectedMessage
	}
	if res.Error != "" {
		return res.Error
	}
	if len(res.Errors) > 0 && res.Errors[0].Message != "" {
		return res.Errors[0].Message
	}
	return RejectedMessage
}
