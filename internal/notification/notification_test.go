package notification

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTPEmailRender(t *testing.T) {
	body, err := OTPEmail{FirstName: "ada", Purpose: "password reset", Code: "123456", Minutes: 10}.Render()
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Ada,")
	assert.Contains(t, body, "Your password reset OTP is <b>123456</b>")
	assert.Contains(t, body, "expire in 10 minutes")
}

func TestOTPEmailEscapesName(t *testing.T) {
	body, err := OTPEmail{FirstName: "<script>", Purpose: "email verification", Code: "1", Minutes: 10}.Render()
	require.NoError(t, err)
	assert.False(t, strings.Contains(body, "<script>"))
}

func TestLoggerNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLoggerNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, n.Send(context.Background(), Message{Kind: KindOTP, Destination: "a@x.com", Subject: "Verify Email OTP"}))
	assert.Contains(t, buf.String(), `"destination":"a@x.com"`)

	var nilNotifier *LoggerNotifier
	assert.NoError(t, nilNotifier.Send(context.Background(), Message{}))
}

func TestSMTPNotifierBuildRejectsBadAddress(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: 25, From: "noreply@roadsphere.test"}, slog.Default())
	_, err := n.build(Message{Destination: "not an address"})
	assert.Error(t, err)

	m, err := n.build(Message{Destination: "a@x.com", Subject: "Verify Email OTP", Body: "<p>hi</p>"})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
