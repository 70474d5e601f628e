package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smtpTestConfig() *Config {
	return &Config{
		ActivationSecret: "activation-secret",
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		ActivationTTL:    10 * time.Minute,
		AccessTTL:        300 * time.Second,
		RefreshTTL:       1200 * time.Second,
		SMTPHost:         "localhost",
		SMTPPort:         "2525",
		SMTPFrom:         "no-reply@example.com",
	}
}

func TestNewSMTPMailer(t *testing.T) {
	t.Run("requires host port and from", func(t *testing.T) {
		cfg := smtpTestConfig()
		cfg.SMTPFrom = ""
		_, err := NewSMTPMailer(cfg)
		assert.Error(t, err)

		cfg = smtpTestConfig()
		cfg.SMTPHost = ""
		_, err = NewSMTPMailer(cfg)
		assert.Error(t, err)
	})

	t.Run("rejects nil config", func(t *testing.T) {
		_, err := NewSMTPMailer(nil)
		assert.Error(t, err)
	})

	t.Run("ships the activation template", func(t *testing.T) {
		mailer, err := NewSMTPMailer(smtpTestConfig())
		require.NoError(t, err)
		assert.NotNil(t, mailer.templates.Lookup(TemplateActivationCode))
	})
}

func TestRenderTemplate(t *testing.T) {
	mailer, err := NewSMTPMailer(smtpTestConfig())
	require.NoError(t, err)

	t.Run("renders the activation code body", func(t *testing.T) {
		body, err := renderTemplate(mailer.templates, TemplateActivationCode, map[string]any{
			"first_name": "Alice",
			"code":       "0417",
			"ttl":        "10m",
		})
		require.NoError(t, err)
		assert.Contains(t, body, "Hi Alice")
		assert.Contains(t, body, "<strong>0417</strong>")
		assert.Contains(t, body, "10m")
	})

	t.Run("escapes HTML in data", func(t *testing.T) {
		body, err := renderTemplate(mailer.templates, TemplateActivationCode, map[string]any{
			"first_name": "<script>alert(1)</script>",
			"code":       "0417",
		})
		require.NoError(t, err)
		assert.NotContains(t, body, "<script>")
	})

	t.Run("unknown template errors", func(t *testing.T) {
		_, err := renderTemplate(mailer.templates, "password_reset", nil)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "unknown template"))
	})

	t.Run("custom template override", func(t *testing.T) {
		custom, err := NewSMTPMailer(smtpTestConfig(),
			WithMailerTemplate(TemplateActivationCode, "code: {{.code}}"))
		require.NoError(t, err)

		body, err := renderTemplate(custom.templates, TemplateActivationCode, map[string]any{"code": "1234"})
		require.NoError(t, err)
		assert.Equal(t, "code: 1234", body)
	})
}

func TestSendCancelledContext(t *testing.T) {
	mailer, err := NewSMTPMailer(smtpTestConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = mailer.Send(ctx, Message{To: "a@x.com", Template: TemplateActivationCode})
	assert.Error(t, err)
}
