package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jevonc/portfolio-backend/config"
	"github.com/jevonc/portfolio-backend/relay"
)

type fakeSMS struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeSMS) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

type fakeEmail struct {
	params *resend.SendEmailRequest
}

func (f *fakeEmail) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.params = params
	return &resend.SendEmailResponse{Id: "em_1"}, nil
}

var msg = relay.Message{Name: "Ada", Email: "ada@example.com", Subject: "Work", Message: "Let's talk <soon>"}

func TestTwilioNotify(t *testing.T) {
	api := &fakeSMS{}
	n := &Twilio{api: api, from: "+15550001", to: "+15550002", logger: zerolog.Nop()}
	require.NoError(t, n.Notify(context.Background(), msg))

	require.NotNil(t, api.params.To)
	assert.Equal(t, "+15550002", *api.params.To)
	assert.Equal(t, "+15550001", *api.params.From)
	assert.Contains(t, *api.params.Body, "Ada <ada@example.com>: Work")

	api.err = errors.New("invalid number")
	assert.Error(t, n.Notify(context.Background(), msg))
}

func TestSMSBodyTruncated(t *testing.T) {
	long := relay.Message{Name: "Ada", Email: "ada@example.com", Message: strings.Repeat("a", 1000)}
	body := smsBody(long)
	assert.LessOrEqual(t, len(body), 300)
	assert.True(t, strings.HasSuffix(body, "..."))
}

func TestSMSBodyCountsCharacters(t *testing.T) {
	long := relay.Message{Name: "Zoë", Email: "zoe@example.com", Message: strings.Repeat("日本語のメッセージ", 100)}
	body := smsBody(long)
	assert.True(t, utf8.ValidString(body))
	assert.Equal(t, smsLimit, utf8.RuneCountInString(body))
	assert.True(t, strings.HasSuffix(body, "..."))

	short := relay.Message{Name: "Zoë", Email: "zoe@example.com", Message: strings.Repeat("é", 200)}
	assert.True(t, strings.HasSuffix(smsBody(short), strings.Repeat("é", 200)))

	huge := relay.Message{Name: strings.Repeat("名", 400), Email: "x@example.com", Message: "hi"}
	assert.Equal(t, smsLimit, utf8.RuneCountInString(smsBody(huge)))
}

func TestResendNotify(t *testing.T) {
	api := &fakeEmail{}
	n := &Resend{api: api, from: "site@example.com", to: "owner@example.com", logger: zerolog.Nop()}
	require.NoError(t, n.Notify(context.Background(), msg))

	assert.Equal(t, []string{"owner@example.com"}, api.params.To)
	assert.Equal(t, "ada@example.com", api.params.ReplyTo)
	assert.Equal(t, "New portfolio contact: Work", api.params.Subject)
	assert.Contains(t, api.params.Html, "Let&#39;s talk &lt;soon&gt;")
}

func TestFromSettings(t *testing.T) {
	assert.Empty(t, FromSettings(config.NotifySettings{}, zerolog.Nop()))

	notifiers := FromSettings(config.NotifySettings{
		TwilioAccountSID: "AC1", TwilioAuthToken: "tok", TwilioFrom: "+1", OwnerPhone: "+2",
		ResendAPIKey: "re_1", ResendFromEmail: "a@b.c", OwnerEmail: "o@b.c",
	}, zerolog.Nop())
	require.Len(t, notifiers, 2)
	assert.IsType(t, &Twilio{}, notifiers[0])
	assert.IsType(t, &Resend{}, notifiers[1])
}
