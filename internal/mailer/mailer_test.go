package mailer_test

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"application-service/internal/config"
	"application-service/internal/form"
	"application-service/internal/mailer"
	"application-service/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp() *form.Application {
	return &form.Application{
		Surname:   "Banda",
		Firstname: "Joseph",
		NRC:       "123456/78/9",
		Cell:      "0971234567",
		Subjects: []form.SubjectGrade{
			{Subject: "Mathematics", Grade: "2"},
			{Subject: "English", Grade: "3"},
		},
		IdentityConfirmed:  true,
		IntentConfirmed:    true,
		IntegrityConfirmed: true,
	}
}

func TestCompose(t *testing.T) {
	attachments := []form.Attachment{
		{Filename: "receipt.pdf", ContentType: "application/pdf", Size: 2048, Data: []byte("%PDF-1.4")},
	}

	t.Run("without applicant email", func(t *testing.T) {
		msg, err := mailer.Compose(testApp(), attachments, "portal@school.example", "admissions@school.example")
		require.NoError(t, err)

		assert.Equal(t, "New application: Banda Joseph", msg.Subject)
		assert.Equal(t, "portal@school.example", msg.From)
		assert.Empty(t, msg.ReplyTo)
		assert.Equal(t, "admissions@school.example", msg.To)

		assert.Contains(t, msg.Text, "=== APPLICANT PERSONAL DETAILS ===")
		assert.Contains(t, msg.Text, "NRC: 123456/78/9")
		assert.Contains(t, msg.Text, "1. Mathematics - Grade 2")
		assert.Contains(t, msg.Text, "Application Fee: K100")
		assert.Contains(t, msg.Text, "Payment Method: Zanaco Bill Muster")
		assert.Contains(t, msg.Text, "receipt.pdf (2 KB)")

		assert.Contains(t, msg.HTML, "New Application Submission")
		assert.Contains(t, msg.HTML, "123456/78/9")
		assert.Contains(t, msg.HTML, "0596204400114")
		assert.Contains(t, msg.HTML, "Identity Confirmed: Yes")
	})

	t.Run("with applicant email", func(t *testing.T) {
		app := testApp()
		app.Email = "joseph@example.com"
		msg, err := mailer.Compose(app, attachments, "portal@school.example", "admissions@school.example")
		require.NoError(t, err)

		assert.Equal(t, "joseph@example.com", msg.From)
		assert.Equal(t, "joseph@example.com", msg.ReplyTo)
	})

	t.Run("already-escaped fields are not escaped again", func(t *testing.T) {
		app := testApp()
		app.Surname = "O&#39;Brien" // what sanitization produces for O'Brien
		msg, err := mailer.Compose(app, nil, "portal@school.example", "admissions@school.example")
		require.NoError(t, err)
		assert.Contains(t, msg.HTML, "O&#39;Brien")
		assert.NotContains(t, msg.HTML, "O&amp;#39;Brien")
	})
}

func TestMessageBytes(t *testing.T) {
	payload := []byte("%PDF-1.4 fake content")
	msg := &mailer.Message{
		From:    "portal@school.example",
		ReplyTo: "joseph@example.com",
		To:      "admissions@school.example",
		Subject: "New application: Banda Joseph",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
		Attachments: []form.Attachment{
			{Filename: "receipt.pdf", ContentType: "application/pdf", Size: int64(len(payload)), Data: payload},
		},
	}

	raw, err := msg.Bytes()
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, "From: portal@school.example\r\n")
	assert.Contains(t, s, "Reply-To: joseph@example.com\r\n")
	assert.Contains(t, s, "To: admissions@school.example\r\n")
	assert.Contains(t, s, "Subject: New application: Banda Joseph\r\n")
	assert.Contains(t, s, "MIME-Version: 1.0\r\n")
	assert.Contains(t, s, "multipart/mixed")
	assert.Contains(t, s, "multipart/alternative")
	assert.Contains(t, s, "text/plain; charset=utf-8")
	assert.Contains(t, s, "text/html; charset=utf-8")
	assert.Contains(t, s, `attachment; filename="receipt.pdf"`)

	// The attachment payload must round-trip through its base64 encoding.
	encoded := base64.StdEncoding.EncodeToString(payload)
	assert.Contains(t, strings.ReplaceAll(s, "\r\n", ""), encoded)
}

// fakeSender lets tests drive the retry path without a network.
type fakeSender struct {
	errs  []error
	calls []string
}

func (f *fakeSender) send(addr, serverName string, msg *mailer.Message) error {
	f.calls = append(f.calls, addr)
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func newTestMailer(t *testing.T, cfg config.SMTPConfig, f *fakeSender) *mailer.SMTPMailer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := mailer.New(cfg, logger, metrics.NewMock())
	m.SetTransportForTest(f.send, func(ctx context.Context, d time.Duration) error { return nil })
	return m
}

func smtpCfg() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "localhost",
		Port:     "2525",
		User:     "portal@school.example",
		Password: "secret",
		From:     "portal@school.example",
		To:       "admissions@school.example",
	}
}

func TestSendRetryPolicy(t *testing.T) {
	msg := &mailer.Message{From: "a@b.example", To: "c@d.example", Subject: "s", Text: "t", HTML: "<p>h</p>"}

	t.Run("missing configuration", func(t *testing.T) {
		f := &fakeSender{}
		m := newTestMailer(t, config.SMTPConfig{}, f)
		err := m.Send(context.Background(), msg)
		assert.ErrorIs(t, err, mailer.ErrNotConfigured)
		assert.Empty(t, f.calls)
	})

	t.Run("success on first attempt", func(t *testing.T) {
		f := &fakeSender{}
		m := newTestMailer(t, smtpCfg(), f)
		require.NoError(t, m.Send(context.Background(), msg))
		assert.Len(t, f.calls, 1)
	})

	t.Run("dns failure retried exactly once via IPv4", func(t *testing.T) {
		dnsErr := &net.DNSError{Err: "no such host", Name: "smtp.school.example", IsNotFound: true}
		f := &fakeSender{errs: []error{dnsErr}}
		m := newTestMailer(t, smtpCfg(), f)

		require.NoError(t, m.Send(context.Background(), msg))
		require.Len(t, f.calls, 2)
		// The retry dials a resolved IPv4 address, not the hostname.
		assert.True(t, strings.HasPrefix(f.calls[1], "127.0.0.1:"), "retry addr %q", f.calls[1])
	})

	t.Run("dns failure on retry is final", func(t *testing.T) {
		dnsErr := &net.DNSError{Err: "no such host", Name: "smtp.school.example"}
		f := &fakeSender{errs: []error{dnsErr, dnsErr}}
		m := newTestMailer(t, smtpCfg(), f)

		err := m.Send(context.Background(), msg)
		assert.Error(t, err)
		assert.Len(t, f.calls, 2)
	})

	t.Run("non-dns failure is not retried", func(t *testing.T) {
		f := &fakeSender{errs: []error{errors.New("535 authentication failed")}}
		m := newTestMailer(t, smtpCfg(), f)

		err := m.Send(context.Background(), msg)
		assert.Error(t, err)
		assert.Len(t, f.calls, 1)
	})

	t.Run("wrapped dns error still triggers retry", func(t *testing.T) {
		wrapped := &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "server misbehaving", Name: "smtp.school.example"}}
		f := &fakeSender{errs: []error{wrapped}}
		m := newTestMailer(t, smtpCfg(), f)

		require.NoError(t, m.Send(context.Background(), msg))
		assert.Len(t, f.calls, 2)
	})
}
