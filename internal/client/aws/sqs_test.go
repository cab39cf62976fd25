package aws_test

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/cyphera/remote-accounts/internal/client/aws"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	logger.InitLogger("test")
}

func TestSQSPublisherStandardQueue(t *testing.T) {
	api := mocks.NewMockSQSAPIForTest(t)
	api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			assert.Equal(t, "https://sqs.local/results", awssdk.ToString(in.QueueUrl))
			assert.Equal(t, `{"k":"v"}`, awssdk.ToString(in.MessageBody))
			assert.Nil(t, in.MessageGroupId)
			assert.Nil(t, in.MessageDeduplicationId)
			require.Contains(t, in.MessageAttributes, "MessageID")
			assert.Equal(t, "String", awssdk.ToString(in.MessageAttributes["MessageID"].DataType))
			assert.Equal(t, "msg-1", awssdk.ToString(in.MessageAttributes["MessageID"].StringValue))
			return &sqs.SendMessageOutput{MessageId: awssdk.String("sqs-1")}, nil
		})

	p := aws.NewSQSPublisher(api, "https://sqs.local/results")
	require.NoError(t, p.Publish(context.Background(), `{"k":"v"}`, map[string]string{"MessageID": "msg-1"}))
}

func TestSQSPublisherFIFOQueue(t *testing.T) {
	api := mocks.NewMockSQSAPIForTest(t)
	api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
			assert.Equal(t, "msg-1", awssdk.ToString(in.MessageGroupId))
			assert.Equal(t, "msg-1-2", awssdk.ToString(in.MessageDeduplicationId))
			return &sqs.SendMessageOutput{}, nil
		})

	p := aws.NewSQSPublisher(api, "https://sqs.local/results.fifo")
	require.NoError(t, p.Publish(context.Background(), "{}", map[string]string{"MessageID": "msg-1", "Position": "2"}))
}

func TestSQSPublisherRetries(t *testing.T) {
	api := mocks.NewMockSQSAPIForTest(t)
	gomock.InOrder(
		api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(nil, errors.New("throttled")),
		api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(&sqs.SendMessageOutput{}, nil),
	)

	p := aws.NewSQSPublisher(api, "https://sqs.local/results")
	require.NoError(t, p.Publish(context.Background(), "{}", nil))
}

func TestSQSPublisherCancelledContext(t *testing.T) {
	api := mocks.NewMockSQSAPIForTest(t)
	api.EXPECT().SendMessage(gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable")).MaxTimes(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := aws.NewSQSPublisher(api, "https://sqs.local/results")
	err := p.Publish(ctx, "{}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https://sqs.local/results")
}
