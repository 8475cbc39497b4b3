package relay

import (
	"context"
	"errors"
	"log/slog"

	"application-service/internal/form"
	"application-service/internal/mailer"
	"application-service/internal/metrics"
)

// ErrServerConfig means the outbound mail relay is not configured. The
// caller gets a generic 500; the detail stays in the server log.
var ErrServerConfig = errors.New("server configuration error")

// SubmitResponse is the JSON answer for an accepted submission. EmailSent
// false still means the application itself was received.
type SubmitResponse struct {
	OK             bool   `json:"ok"`
	EmailSent      bool   `json:"emailSent"`
	Message        string `json:"message,omitempty"`
	TechnicalError string `json:"technicalError,omitempty"`
}

const receivedWithoutEmail = "Application received. Email confirmation could not be sent. " +
	"Your application has been submitted to our admissions team."

// Service forwards a validated application as an email. It holds no state
// between submissions: resubmitting identical data produces an independent
// new email.
type Service interface {
	Process(ctx context.Context, app *form.Application, attachments []form.Attachment) (*SubmitResponse, error)
}

type service struct {
	mailer  mailer.Mailer
	from    string
	to      string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(m mailer.Mailer, from, to string, logger *slog.Logger, met *metrics.Metrics) Service {
	return &service{
		mailer:  m,
		from:    from,
		to:      to,
		logger:  logger,
		metrics: met,
	}
}

// Process composes and delivers the notification email. Delivery is
// synchronous: the response reflects actual delivery status, not a
// fire-and-forget acknowledgment.
func (s *service) Process(ctx context.Context, app *form.Application, attachments []form.Attachment) (*SubmitResponse, error) {
	msg, err := mailer.Compose(app, attachments, s.from, s.to)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSubmissionReceived(ctx)

	if err := s.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			s.logger.ErrorContext(ctx, "missing SMTP configuration in environment")
			return nil, ErrServerConfig
		}

		// The application is valid and received; only the notification
		// channel failed. Never log submitted content here.
		s.logger.ErrorContext(ctx, "email send failed", "error", err)
		s.metrics.RecordEmailFailure(ctx)
		return &SubmitResponse{
			OK:             true,
			EmailSent:      false,
			Message:        receivedWithoutEmail,
			TechnicalError: err.Error(),
		}, nil
	}

	s.logger.InfoContext(ctx, "application email delivered", "attachments", len(attachments))
	s.metrics.RecordEmailSent(ctx)
	return &SubmitResponse{OK: true, EmailSent: true}, nil
}
