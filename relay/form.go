package relay

import (
	"context"
	"errors"
	"sync"

	"github.com/jevonc/portfolio-backend/errs"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusError   Status = "error"
)

// Form is the contact form's submission state: idle, then sending, then sent or error.
// An errored form may be resubmitted; a sent form may not.
type Form struct {
	relay *Relay

	mu     sync.Mutex
	status Status
	errMsg string
}

func NewForm(r *Relay) *Form {
	return &Form{relay: r, status: StatusIdle}
}

func (f *Form) State() (Status, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.errMsg
}

// Submit sends msg through the relay and returns the resulting state's error, if any.
func (f *Form) Submit(ctx context.Context, msg Message) error {
	f.mu.Lock()
	switch f.status {
	case StatusSent:
		f.mu.Unlock()
		return errs.NewAlreadySentError()
	case StatusSending:
		f.mu.Unlock()
		return errs.NewSubmitInFlightError()
	}
	f.status, f.errMsg = StatusSending, ""
	f.mu.Unlock()

	err := f.relay.Send(ctx, msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status, f.errMsg = StatusError, visibleMessage(err)
		return err
	}
	f.status = StatusSent
	return nil
}

// visibleMessage is the text shown under the form.
func visibleMessage(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) && apiErr.Details != "" {
		return apiErr.Details
	}
	return NetworkMessage
}
