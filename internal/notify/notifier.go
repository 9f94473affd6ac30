// Package notify delivers reservation confirmations over email (SES)
// and SMS (SNS). Delivery is best-effort; a failed confirmation never
// fails the reservation itself.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/johnny-stegall/Digital-Assistant/internal/common/config"
	"github.com/johnny-stegall/Digital-Assistant/internal/common/logger"
)

// SESService and SNSService mirror the SDK clients for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Reservation describes a completed booking for confirmation delivery.
type Reservation struct {
	PlaceName string
	Address   string
	Start     time.Time
	PartySize int
}

// Notifier fans a reservation confirmation out to the channels the
// configuration enables.
type Notifier struct {
	cfg config.NotificationConfig
	ses SESService
	sns SNSService
	log logger.Logger
}

// New builds a Notifier with real AWS clients.
func New(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Notifier{
		cfg: cfg,
		ses: ses.NewFromConfig(awsCfg),
		sns: sns.NewFromConfig(awsCfg),
		log: log,
	}, nil
}

// NewWithClients builds a Notifier with injected clients.
func NewWithClients(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, ses: sesClient, sns: snsClient, log: log}
}

// ReservationConfirmed sends the confirmation to every enabled
// channel. Per-channel failures are logged and swallowed.
func (n *Notifier) ReservationConfirmed(ctx context.Context, res Reservation) {
	subject := fmt.Sprintf("Reservation confirmed: %s", res.PlaceName)
	body := fmt.Sprintf("Your table for %d at %s (%s) is booked for %s.",
		res.PartySize, res.PlaceName, res.Address,
		res.Start.Format("Monday, January 2 at 3:04 PM"))

	if n.cfg.Email.Enabled && n.cfg.Email.ToEmail != "" {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.log.WithError(err).Error("confirmation email failed",
				map[string]interface{}{"place": res.PlaceName})
		}
	}
	if n.cfg.SMS.Enabled && n.cfg.SMS.PhoneNumber != "" {
		if err := n.sendSMS(ctx, body); err != nil {
			n.log.WithError(err).Error("confirmation SMS failed",
				map[string]interface{}{"place": res.PlaceName})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{n.cfg.Email.ToEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, message string) error {
	_, err := n.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.cfg.SMS.PhoneNumber),
		Message:     aws.String(message),
	})
	return err
}
