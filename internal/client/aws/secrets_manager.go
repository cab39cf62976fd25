package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cyphera/remote-accounts/internal/logger"
	"go.uber.org/zap"
)

// SecretsManagerAPI is the subset of the Secrets Manager client in use.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient resolves secrets from Secrets Manager with an
// environment fallback.
type SecretsManagerClient struct {
	api    SecretsManagerAPI
	getenv func(string) string
	logger *zap.Logger
}

// NewSecretsManagerClient uses the default AWS configuration chain.
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewSecretsManagerClientWithAPI(secretsmanager.NewFromConfig(cfg), os.Getenv), nil
}

func NewSecretsManagerClientWithAPI(api SecretsManagerAPI, getenv func(string) string) *SecretsManagerClient {
	return &SecretsManagerClient{api: api, getenv: getenv, logger: logger.Log}
}

// GetSecretString fetches the secret whose ARN is in secretArnEnvVar. When
// that variable is unset or the fetch fails, the value of fallbackEnvVar is
// used instead.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar, fallbackEnvVar string) (string, error) {
	if secretArn := c.getenv(secretArnEnvVar); secretArn != "" {
		value, err := c.fetch(ctx, secretArn)
		if err == nil {
			return value, nil
		}
		c.logger.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("secretArn", secretArn),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err),
		)
	}

	if value := c.getenv(fallbackEnvVar); value != "" {
		c.logger.Debug("Using secret value from environment", zap.String("envVar", fallbackEnvVar))
		return value, nil
	}
	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}

// GetSecretJSON fetches a JSON secret into target. The fallback variable must
// hold JSON as well.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar, fallbackEnvVar string, target interface{}) error {
	value, err := c.GetSecretString(ctx, secretArnEnvVar, fallbackEnvVar)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("secret from %s is not valid JSON: %w", secretArnEnvVar, err)
	}
	return nil
}

func (c *SecretsManagerClient) fetch(ctx context.Context, secretArn string) (string, error) {
	result, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil {
		return "", err
	}
	if result.SecretString == nil || *result.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", secretArn)
	}
	c.logger.Info("Fetched secret from Secrets Manager", zap.String("secretArn", secretArn))
	return *result.SecretString, nil
}
