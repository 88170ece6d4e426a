package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"gopkg.in/gomail.v2"

	"eventhub/internal/domain"
)

// SESConfig holds configuration for AWS SES.
type SESConfig struct {
	Region             string
	AccessKeyID        string
	SecretAccessKey    string
	InsecureSkipVerify bool
}

// SMTPConfig holds configuration for an SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// MailerConfig holds configuration for creating a mailer.
type MailerConfig struct {
	Provider    string
	FromAddress string
	FromName    string
	SES         SESConfig
	SMTP        SMTPConfig
}

// NewMailer creates a mailer from config. Provider "ses" uses AWS SES, "smtp" an SMTP relay;
// "noop" or an unknown provider only logs.
func NewMailer(config MailerConfig, logger *slog.Logger) (domain.Mailer, error) {
	from := config.FromAddress
	if config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", config.FromName, config.FromAddress)
	}
	switch config.Provider {
	case "ses":
		if config.SES.InsecureSkipVerify {
			logger.Warn("TLS certificate verification is disabled for SES, use only in development")
		}
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: config.SES.InsecureSkipVerify,
					MinVersion:         tls.VersionTLS12,
				},
			},
		}
		awsCfg := aws.Config{
			Region: config.SES.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.SES.AccessKeyID,
					config.SES.SecretAccessKey,
					"",
				),
			),
			HTTPClient: httpClient,
		}
		return &sesMailer{client: ses.NewFromConfig(awsCfg), from: from, logger: logger}, nil
	case "smtp":
		if config.SMTP.Host == "" {
			return nil, fmt.Errorf("smtp mailer: host is required")
		}
		dialer := gomail.NewDialer(config.SMTP.Host, config.SMTP.Port, config.SMTP.Username, config.SMTP.Password)
		return &smtpMailer{send: dialer.DialAndSend, from: from, logger: logger}, nil
	case "noop", "":
		return &noopMailer{logger: logger}, nil
	default:
		logger.Warn("unknown email provider, using noop", "provider", config.Provider)
		return &noopMailer{logger: logger}, nil
	}
}

type sesMailer struct {
	client *ses.Client
	from   string
	logger *slog.Logger
}

func (s *sesMailer) Send(ctx context.Context, to, subject, html, text string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body:    &types.Body{},
		},
	}
	if html != "" {
		input.Message.Body.Html = &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")}
	}
	if text != "" {
		input.Message.Body.Text = &types.Content{Data: aws.String(text), Charset: aws.String("UTF-8")}
	}
	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}
	s.logger.Debug("email sent via SES", "message_id", aws.ToString(result.MessageId))
	return nil
}

type smtpMailer struct {
	send   func(m ...*gomail.Message) error
	from   string
	logger *slog.Logger
}

func (s *smtpMailer) message(to, subject, html, text string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	switch {
	case text != "" && html != "":
		m.SetBody("text/plain", text)
		m.AddAlternative("text/html", html)
	case html != "":
		m.SetBody("text/html", html)
	default:
		m.SetBody("text/plain", text)
	}
	return m
}

// Send dials the relay per message. gomail has no context support, so ctx is only checked up front.
func (s *smtpMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.send(s.message(to, subject, html, text)); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}
	s.logger.Debug("email sent via SMTP", "to", to)
	return nil
}

type noopMailer struct {
	logger *slog.Logger
}

func (n *noopMailer) Send(_ context.Context, to, subject, _, _ string) error {
	n.logger.Info("email would be sent (noop)", "to", to, "subject", subject)
	return nil
}
