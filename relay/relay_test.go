package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jevonc/portfolio-backend/errs"
)

var testMessage = Message{Name: "Ada", Email: "ada@example.com", Subject: "Hi", Message: "Hello there"}

func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

type recordingNotifier struct {
	got []Message
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, msg Message) error {
	n.got = append(n.got, msg)
	return n.err
}

func TestMisconfiguredEndpointSendsNothing(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, endpoint := range []string{
		"",
		"https://formspree.io/f/your_id_here",
		srv.URL + "/f/YOUR_FORM_ID",
		"formspree.io/f/abc",
		"ftp://formspree.io/f/abc",
	} {
		t.Run(endpoint, func(t *testing.T) {
			form := NewForm(New(endpoint, zerolog.Nop()))
			err := form.Submit(context.Background(), testMessage)
			require.Error(t, err)
			assert.True(t, errs.IsRelayMisconfigured(err))

			status, msg := form.State()
			assert.Equal(t, StatusError, status)
			assert.Equal(t, MisconfiguredMessage, msg)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestSendPostsJSON(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got Message
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, testMessage, got)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	notifier := &recordingNotifier{err: errors.New("sms down")}
	form := NewForm(New(srv.URL+"/f/abc", zerolog.Nop(), WithNotifiers(notifier)))
	require.NoError(t, form.Submit(context.Background(), testMessage))

	status, msg := form.State()
	assert.Equal(t, StatusSent, status)
	assert.Empty(t, msg)
	assert.Equal(t, int32(1), hits.Load())
	assert.Len(t, notifier.got, 1)

	err := form.Submit(context.Background(), testMessage)
	assert.ErrorIs(t, err, errs.ErrAlreadySent)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRejectionMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"Form not found"}`, "Form not found"},
		{"errors list", `{"errors":[{"field":"email","message":"should be an email"}]}`, "should be an email"},
		{"empty json", `{}`, RejectedMessage},
		{"not json", `<html>bad gateway</html>`, RejectedMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tt.body))
			})
			notifier := &recordingNotifier{}
			form := NewForm(New(srv.URL, zerolog.Nop(), WithNotifiers(notifier)))

			err := form.Submit(context.Background(), testMessage)
			assert.True(t, errs.IsRelayFailure(err))
			status, msg := form.State()
			assert.Equal(t, StatusError, status)
			assert.Equal(t, tt.want, msg)
			assert.Empty(t, notifier.got)
		})
	}
}

func TestNetworkFailureThenRetry(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	downURL := down.URL
	down.Close()

	form := NewForm(New(downURL, zerolog.Nop()))
	err := form.Submit(context.Background(), testMessage)
	require.Error(t, err)
	status, msg := form.State()
	assert.Equal(t, StatusError, status)
	assert.Equal(t, NetworkMessage, msg)

	form.relay = New(url, zerolog.Nop())
	require.NoError(t, form.Submit(context.Background(), testMessage))
	status, _ = form.State()
	assert.Equal(t, StatusSent, status)
}

func TestValidateMessage(t *testing.T) {
	r := New("https://formspree.io/f/abc", zerolog.Nop())
	assert.NoError(t, r.ValidateMessage(testMessage))

	err := r.ValidateMessage(Message{Email: "ada@example.com", Message: "x"})
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	err = r.ValidateMessage(Message{Name: "Ada", Email: "not-an-email", Message: "x"})
	assert.True(t, errs.IsInvalidFieldError(err))
}
