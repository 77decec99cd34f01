package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetMessage(t *testing.T) {
	m, err := ResetMessage(ResetVars{Email: "a@x.com", Link: "https://app/reset?token=abc&x=1", TTL: "1h0m0s"})
	require.NoError(t, err)
	require.Equal(t, "a@x.com", m.To)
	require.Contains(t, m.Text, "https://app/reset?token=abc&x=1")
	require.Contains(t, m.HTML, `href="https://app/reset?token=abc&amp;x=1"`)
	require.True(t, strings.Contains(m.Text, "1h0m0s"))
}

func TestSMTPMessageParts(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25, From: "no-reply@x.com"})
	msg := s.message(Message{To: "a@x.com", Subject: "s", Text: "t", HTML: "<b>h</b>"})
	require.Equal(t, []string{"a@x.com"}, msg.GetHeader("To"))
	require.Equal(t, []string{"no-reply@x.com"}, msg.GetHeader("From"))
	require.Equal(t, "auto", s.cfg.TLSMode)
}

func TestLogSender(t *testing.T) {
	require.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@x.com", Subject: "s"}))
}
