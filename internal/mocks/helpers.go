package mocks

import (
	"testing"

	"go.uber.org/mock/gomock"
)

// NewMockQuerierForTest creates a new mock Querier for testing
func NewMockQuerierForTest(t *testing.T) *MockQuerier {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockQuerier(ctrl)
}

// NewMockSinkForTest creates a new mock Sink for testing
func NewMockSinkForTest(t *testing.T) *MockSink {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSink(ctrl)
}

// NewMockPublisherForTest creates a new mock Publisher for testing
func NewMockPublisherForTest(t *testing.T) *MockPublisher {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockPublisher(ctrl)
}

// NewMockSQSAPIForTest creates a new mock SQSAPI for testing
func NewMockSQSAPIForTest(t *testing.T) *MockSQSAPI {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSQSAPI(ctrl)
}

// NewMockSecretsManagerAPIForTest creates a new mock SecretsManagerAPI for testing
func NewMockSecretsManagerAPIForTest(t *testing.T) *MockSecretsManagerAPI {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockSecretsManagerAPI(ctrl)
}

// NewMockRelayerForTest creates a new mock Relayer for testing
func NewMockRelayerForTest(t *testing.T) *MockRelayer {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return NewMockRelayer(ctrl)
}
