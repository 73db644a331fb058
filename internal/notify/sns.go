package notify

import (
	"context"
	"fmt"

	"llreminder/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sns"
)

type snsPublisher interface {
	PublishWithContext(ctx aws.Context, input *sns.PublishInput, opts ...request.Option) (*sns.PublishOutput, error)
}

// SNS sends an sms directly to a phone number through aws sns. Credentials
// come from the default aws chain (environment, shared config, instance
// role).
type SNS struct {
	client      snsPublisher
	phoneNumber string
}

func NewSNS(cfg config.SNSConfig) (SNS, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return SNS{}, fmt.Errorf("sns: create aws session: %w", err)
	}
	return SNS{client: sns.New(sess), phoneNumber: cfg.PhoneNumber}, nil
}

func (SNS) Name() string {
	return config.TransportSNS
}

func (s SNS) Send(ctx context.Context, message string) error {
	_, err := s.client.PublishWithContext(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(s.phoneNumber),
		Message:     aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns: publish: %w", err)
	}
	return nil
}
