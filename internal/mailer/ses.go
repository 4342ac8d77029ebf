package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/logger"
)

type SESConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	From      string
}

// SendEmailAPI is the part of the SES v2 client in use.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESMailer struct {
	client SendEmailAPI
	from   string
	log    *zap.Logger
}

// NewSESMailer uses static credentials when both keys are set and the
// default AWS credential chain otherwise.
func NewSESMailer(ctx context.Context, cfg SESConfig, log *zap.Logger) (*SESMailer, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewSESMailerWithClient(sesv2.NewFromConfig(awsCfg), cfg.From, log), nil
}

func NewSESMailerWithClient(client SendEmailAPI, from string, log *zap.Logger) *SESMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &SESMailer{client: client, from: from, log: log}
}

func (m *SESMailer) Send(ctx context.Context, msg Message) error {
	if m.client == nil || m.from == "" {
		return notConfigured("ses")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	out, err := m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send to %s: %w", logger.RedactEmail(msg.To), err)
	}
	m.log.Debug("ses message sent",
		zap.String("to", logger.RedactEmail(msg.To)),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}
