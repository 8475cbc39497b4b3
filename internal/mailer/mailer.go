package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"application-service/internal/config"
	"application-service/internal/metrics"
)

// ErrNotConfigured means the SMTP host or credentials are missing from the
// environment. Callers report this as a configuration error, not a delivery
// failure.
var ErrNotConfigured = errors.New("smtp configuration missing")

// retryDelay is the fixed pause before the single DNS-failure retry.
const retryDelay = 2 * time.Second

// Mailer delivers one composed message. The send is synchronous: it returns
// only after delivery succeeded or definitively failed.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// SMTPMailer talks to the configured outbound relay over net/smtp. A
// DNS-class failure gets exactly one retry after a short delay against a
// freshly resolved IPv4 address; every other failure is final.
type SMTPMailer struct {
	cfg     config.SMTPConfig
	logger  *slog.Logger
	metrics *metrics.Metrics

	// sleep and sendFunc are swappable for tests.
	sleep    func(ctx context.Context, d time.Duration) error
	sendOnce func(addr, serverName string, msg *Message) error
}

func New(cfg config.SMTPConfig, logger *slog.Logger, m *metrics.Metrics) *SMTPMailer {
	s := &SMTPMailer{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		sleep:   sleepCtx,
	}
	s.sendOnce = s.deliver
	return s
}

// SetTransportForTest swaps the low-level send and sleep functions so tests
// can drive the retry policy without a network or real delays.
func (s *SMTPMailer) SetTransportForTest(send func(addr, serverName string, msg *Message) error, sleep func(ctx context.Context, d time.Duration) error) {
	s.sendOnce = send
	s.sleep = sleep
}

func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	if s.cfg.Host == "" || s.cfg.User == "" || s.cfg.Password == "" {
		return ErrNotConfigured
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	err := s.sendOnce(addr, s.cfg.Host, msg)
	if err == nil {
		return nil
	}

	if !isDNSError(err) {
		return err
	}

	// One retry for name-resolution failures only: wait, resolve the host
	// to IPv4 ourselves and dial the address directly. TLS still verifies
	// against the original hostname.
	s.logger.WarnContext(ctx, "retrying email send after DNS error", "error", err)
	s.metrics.RecordEmailRetry(ctx)

	if serr := s.sleep(ctx, retryDelay); serr != nil {
		return serr
	}

	ip, rerr := resolveIPv4(s.cfg.Host)
	if rerr != nil {
		return fmt.Errorf("retry resolve %s: %w", s.cfg.Host, rerr)
	}

	retryAddr := net.JoinHostPort(ip, s.cfg.Port)
	if err := s.sendOnce(retryAddr, s.cfg.Host, msg); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "email sent on retry", "addr", retryAddr)
	return nil
}

// deliver performs one full SMTP conversation against addr, presenting
// serverName for TLS verification.
func (s *SMTPMailer) deliver(addr, serverName string, msg *Message) error {
	var client *smtp.Client
	var err error

	if s.cfg.Secure {
		conn, derr := tls.Dial("tcp", addr, &tls.Config{ServerName: serverName})
		if derr != nil {
			return derr
		}
		client, err = smtp.NewClient(conn, serverName)
	} else {
		client, err = smtp.Dial(addr)
	}
	if err != nil {
		return err
	}
	defer client.Close()

	if !s.cfg.Secure {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: serverName}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, serverName)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// Envelope sender is always our own mailbox; the From header may carry
	// the applicant's address.
	envelopeFrom := s.cfg.From
	if envelopeFrom == "" {
		envelopeFrom = s.cfg.User
	}
	if err := client.Mail(envelopeFrom); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	raw, err := msg.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// isDNSError reports whether err is a name-resolution failure, the one
// transient class that earns a retry.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func resolveIPv4(host string) (string, error) {
	ipAddr, err := net.ResolveIPAddr("ip4", host)
	if err != nil {
		return "", err
	}
	return ipAddr.IP.String(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
