package aws_test

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cyphera/remote-accounts/internal/client/aws"
	"github.com/cyphera/remote-accounts/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestGetSecretString(t *testing.T) {
	const arn = "arn:aws:secretsmanager:us-east-1:000000000000:secret:admin"

	tests := []struct {
		name    string
		env     map[string]string
		setup   func(m *mocks.MockSecretsManagerAPI)
		want    string
		wantErr bool
	}{
		{
			name: "from secrets manager",
			env:  map[string]string{"ADMIN_ARN": arn, "ADMIN": "env-value"},
			setup: func(m *mocks.MockSecretsManagerAPI) {
				m.EXPECT().GetSecretValue(gomock.Any(), &secretsmanager.GetSecretValueInput{SecretId: awssdk.String(arn)}).
					Return(&secretsmanager.GetSecretValueOutput{SecretString: awssdk.String("sm-value")}, nil)
			},
			want: "sm-value",
		},
		{
			name: "fetch failure falls back to env",
			env:  map[string]string{"ADMIN_ARN": arn, "ADMIN": "env-value"},
			setup: func(m *mocks.MockSecretsManagerAPI) {
				m.EXPECT().GetSecretValue(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))
			},
			want: "env-value",
		},
		{
			name: "empty secret falls back to env",
			env:  map[string]string{"ADMIN_ARN": arn, "ADMIN": "env-value"},
			setup: func(m *mocks.MockSecretsManagerAPI) {
				m.EXPECT().GetSecretValue(gomock.Any(), gomock.Any()).Return(&secretsmanager.GetSecretValueOutput{}, nil)
			},
			want: "env-value",
		},
		{
			name:  "no arn uses env",
			env:   map[string]string{"ADMIN": "env-value"},
			setup: func(m *mocks.MockSecretsManagerAPI) {},
			want:  "env-value",
		},
		{
			name:    "nothing configured",
			env:     map[string]string{},
			setup:   func(m *mocks.MockSecretsManagerAPI) {},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := mocks.NewMockSecretsManagerAPIForTest(t)
			tt.setup(api)

			got, err := aws.NewSecretsManagerClientWithAPI(api, envOf(tt.env)).GetSecretString(context.Background(), "ADMIN_ARN", "ADMIN")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetSecretJSON(t *testing.T) {
	api := mocks.NewMockSecretsManagerAPIForTest(t)
	client := aws.NewSecretsManagerClientWithAPI(api, envOf(map[string]string{"DB": `{"user":"router","port":5432}`}))

	var out struct {
		User string `json:"user"`
		Port int    `json:"port"`
	}
	require.NoError(t, client.GetSecretJSON(context.Background(), "DB_ARN", "DB", &out))
	assert.Equal(t, "router", out.User)
	assert.Equal(t, 5432, out.Port)

	bad := aws.NewSecretsManagerClientWithAPI(api, envOf(map[string]string{"DB": "not json"}))
	assert.Error(t, bad.GetSecretJSON(context.Background(), "DB_ARN", "DB", &out))
}
