package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sns"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) PublishWithContext(ctx aws.Context, input *sns.PublishInput, opts ...request.Option) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSNSSend(t *testing.T) {
	pub := &fakePublisher{}
	n := SNS{client: pub, phoneNumber: "+15551111111"}

	require.NoError(t, n.Send(context.Background(), MessageReminder))
	require.Len(t, pub.inputs, 1)
	require.Equal(t, "+15551111111", aws.StringValue(pub.inputs[0].PhoneNumber))
	require.Equal(t, MessageReminder, aws.StringValue(pub.inputs[0].Message))
}

func TestSNSSendError(t *testing.T) {
	fault := errors.New("throttled")
	n := SNS{client: &fakePublisher{err: fault}, phoneNumber: "+15551111111"}

	err := n.Send(context.Background(), MessageSubmitted)
	require.ErrorIs(t, err, fault)
}
