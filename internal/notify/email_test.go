package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

type fakeMailClient struct {
	status int
	err    error
	got    []*mail.SGMailV3
}

func (f *fakeMailClient) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = append(f.got, m)
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status}, nil
}

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	assert.Nil(t, NewSendGridSender(SendGridConfig{FromEmail: "care@example.edu"}, nil))
}

func TestNewSendGridSender_FromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "care@example.edu"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, defaultFromName, sender.from.Name)

	custom := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "care@example.edu", FromName: "Wellness Center"}, nil)
	require.NotNil(t, custom)
	assert.Equal(t, "Wellness Center", custom.from.Name)
}

func TestSendGridSender_BuildsMessage(t *testing.T) {
	client := &fakeMailClient{status: 202}
	sender := newSendGridSender(client, SendGridConfig{
		FromEmail: "care@example.edu",
		ReplyTo:   "counseling@example.edu",
	}, logging.New("error"))

	err := sender.Send(context.Background(), EmailMessage{
		To: "sam@example.edu", ToName: "Sam", Subject: "Confirmed",
		Body: "plain", HTML: "<p>html</p>", Category: "booking-confirmation",
	})
	require.NoError(t, err)
	require.Len(t, client.got, 1)

	m := client.got[0]
	assert.Equal(t, "Confirmed", m.Subject)
	assert.Equal(t, "care@example.edu", m.From.Address)
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "counseling@example.edu", m.ReplyTo.Address)
	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "sam@example.edu", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 2)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "text/html", m.Content[1].Type)
	assert.Equal(t, []string{"booking-confirmation"}, m.Categories)
}

func TestSendGridSender_TextOnly(t *testing.T) {
	client := &fakeMailClient{status: 202}
	sender := newSendGridSender(client, SendGridConfig{FromEmail: "care@example.edu"}, nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "sam@example.edu", Body: "plain"}))
	require.Len(t, client.got[0].Content, 1)
	assert.Nil(t, client.got[0].ReplyTo)
	assert.Empty(t, client.got[0].Categories)
}

func TestSendGridSender_Failures(t *testing.T) {
	var nilSender *SendGridSender
	assert.ErrorIs(t, nilSender.Send(context.Background(), EmailMessage{}), errNotConfigured)
	assert.ErrorIs(t, (&SendGridSender{}).Send(context.Background(), EmailMessage{}), errNotConfigured)

	boom := errors.New("dial tcp: timeout")
	sender := newSendGridSender(&fakeMailClient{err: boom}, SendGridConfig{FromEmail: "care@example.edu"}, nil)
	assert.ErrorIs(t, sender.Send(context.Background(), EmailMessage{To: "sam@example.edu"}), boom)

	sender = newSendGridSender(&fakeMailClient{status: 401}, SendGridConfig{FromEmail: "care@example.edu"}, nil)
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "sam@example.edu"}), "status 401")
}

func TestStubEmailSender_RecordsMessages(t *testing.T) {
	sender := NewStubEmailSender(nil)

	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "student@example.edu", Subject: "One"}))
	require.NoError(t, sender.Send(context.Background(), EmailMessage{To: "student@example.edu", Subject: "Two"}))

	sent := sender.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "One", sent[0].Subject)
	assert.Equal(t, "Two", sent[1].Subject)
}
