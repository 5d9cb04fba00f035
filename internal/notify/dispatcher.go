// internal/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/judzis-sketch/gedimu-registras/internal/common/logger"
	"github.com/judzis-sketch/gedimu-registras/internal/common/metrics"
	"github.com/judzis-sketch/gedimu-registras/internal/models"
)

// SESService and SNSService cover the AWS surface the dispatcher needs,
// so tests can substitute mocks.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// DispatcherConfig controls which channels deliver directly. Both default
// to disabled: the engine only prepares drafts, and operators opt in to
// direct delivery per deployment.
type DispatcherConfig struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	AWSRegion    string
}

// Dispatcher optionally delivers a NotificationDraft via SES email and SNS
// SMS. A disabled channel is a silent no-op, never an error.
type Dispatcher struct {
	config DispatcherConfig
	ses    SESService
	sns    SNSService
	logger logger.Logger
}

// NewDispatcher builds a Dispatcher with real AWS clients.
func NewDispatcher(ctx context.Context, cfg DispatcherConfig, log logger.Logger) (*Dispatcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Dispatcher{
		config: cfg,
		ses:    ses.NewFromConfig(awsCfg),
		sns:    sns.NewFromConfig(awsCfg),
		logger: log.WithFields(map[string]interface{}{"component": "notify-dispatcher"}),
	}, nil
}

// NewDispatcherWithClients wires explicit service clients (used in tests).
func NewDispatcherWithClients(cfg DispatcherConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Dispatcher {
	return &Dispatcher{config: cfg, ses: sesClient, sns: snsClient, logger: log}
}

// Dispatch delivers the draft over every enabled channel. Per-channel
// failures are logged and returned but do not affect the fault lifecycle.
func (d *Dispatcher) Dispatch(ctx context.Context, draft *models.NotificationDraft) error {
	var firstErr error

	if d.config.EmailEnabled && draft.RecipientEmail != "" {
		if err := d.sendEmail(ctx, draft); err != nil {
			d.logger.Error("email dispatch failed", map[string]interface{}{
				"error":     err,
				"recipient": draft.RecipientEmail,
			})
			metrics.NotificationDrafts.WithLabelValues("email_failed").Inc()
			firstErr = err
		} else {
			metrics.NotificationDrafts.WithLabelValues("email_sent").Inc()
		}
	}

	if d.config.SMSEnabled && draft.RecipientPhone != "" {
		if err := d.sendSMS(ctx, draft); err != nil {
			d.logger.Error("SMS dispatch failed", map[string]interface{}{
				"error":     err,
				"recipient": draft.RecipientPhone,
			})
			metrics.NotificationDrafts.WithLabelValues("sms_failed").Inc()
			if firstErr == nil {
				firstErr = err
			}
		} else {
			metrics.NotificationDrafts.WithLabelValues("sms_sent").Inc()
		}
	}

	return firstErr
}

func (d *Dispatcher) sendEmail(ctx context.Context, draft *models.NotificationDraft) error {
	_, err := d.ses.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{draft.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(draft.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(draft.EmailBody)},
			},
		},
		Source: aws.String(d.config.FromEmail),
	})
	return err
}

func (d *Dispatcher) sendSMS(ctx context.Context, draft *models.NotificationDraft) error {
	_, err := d.sns.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(draft.RecipientPhone),
		Message:     aws.String(draft.SMSBody),
	})
	return err
}
