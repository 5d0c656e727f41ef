package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"seminarrsvp/internal/adapters/awscfg"
	"seminarrsvp/internal/domain"
)

// SenderConfig holds configuration for creating an SMS sender.
type SenderConfig struct {
	Provider string
	SenderID string
	AWS      awscfg.Settings
}

// NewSender creates an SMSSender from config. Provider "sns" publishes through AWS SNS; "noop" or unknown only logs.
func NewSender(config SenderConfig, logger *slog.Logger) domain.SMSSender {
	switch config.Provider {
	case "sns":
		return &snsSender{
			client:   sns.NewFromConfig(awscfg.New(config.AWS)),
			senderID: config.SenderID,
			logger:   logger,
		}
	case "noop":
		return &noopSender{logger: logger}
	default:
		logger.Warn("unknown sms provider, using noop", "provider", config.Provider)
		return &noopSender{logger: logger}
	}
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsSender struct {
	client   snsAPI
	senderID string
	logger   *slog.Logger
}

func (s *snsSender) Send(ctx context.Context, phoneNumber, message string) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(phoneNumber),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	}
	if s.senderID != "" {
		input.MessageAttributes["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}
	out, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("publish sms via SNS: %w", err)
	}
	s.logger.DebugContext(ctx, "sms sent", "provider", "sns", "message_id", aws.ToString(out.MessageId))
	return nil
}

type noopSender struct {
	logger *slog.Logger
}

func (n *noopSender) Send(ctx context.Context, phoneNumber, message string) error {
	n.logger.InfoContext(ctx, "sms would be sent (noop)", "to", phoneNumber, "length", len(message))
	return nil
}
