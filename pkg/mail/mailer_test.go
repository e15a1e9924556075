package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendDisabledReturnsSentinel(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"ops@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidatesHost(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true, Port: 587})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)
}

func TestFormatMessageHeaders(t *testing.T) {
	raw := formatMessage("noreply@example.com", []string{"a@example.com", "b@example.com"}, "Low stock", "Cement is low")
	require.Contains(t, raw, "From: noreply@example.com\r\n")
	require.Contains(t, raw, "To: a@example.com, b@example.com\r\n")
	require.Contains(t, raw, "Subject: Low stock\r\n")
	require.Contains(t, raw, "Cement is low")
}

func TestUniqueAddresses(t *testing.T) {
	out := uniqueAddresses([]string{"A@example.com", "a@example.com", " ", "b@example.com"})
	require.Equal(t, []string{"A@example.com", "b@example.com"}, out)
}
