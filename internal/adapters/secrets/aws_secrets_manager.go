package secrets

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/adapters/ports"
)

// AWSConfig configures the Secrets Manager backend
type AWSConfig struct {
	Region string
	// Profile selects a shared-config profile for local development; empty
	// uses the default credentials chain (IAM role in production).
	Profile string
	// Endpoint overrides the API endpoint, for LocalStack.
	Endpoint string
	// PathPrefix namespaces this service's secrets, e.g. "commerce-service".
	PathPrefix string
	CacheTTL   time.Duration
}

type awsSecretManager struct {
	client *secretsmanager.Client
	cfg    AWSConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewAWSSecretManager creates a secret manager backed by AWS Secrets Manager
func NewAWSSecretManager(ctx context.Context, cfg AWSConfig, logger *zap.Logger) (ports.SecretManager, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager backend initialized",
		zap.String("region", cfg.Region),
		zap.String("path_prefix", cfg.PathPrefix),
	)

	return &awsSecretManager{
		client: secretsmanager.NewFromConfig(awsConfig, clientOpts...),
		cfg:    cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func (m *awsSecretManager) secretID(name string) string {
	if m.cfg.PathPrefix == "" {
		return name
	}
	return m.cfg.PathPrefix + "/" + name
}

func (m *awsSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	if cached := m.cache.get(name); cached != nil {
		return cached, nil
	}

	result, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(m.secretID(name)),
	})
	if err != nil {
		m.logger.Error("Failed to retrieve secret", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}

	secret := &ports.Secret{
		Value:    aws.ToString(result.SecretString),
		Version:  aws.ToString(result.VersionId),
		Metadata: map[string]string{"arn": aws.ToString(result.ARN)},
	}
	m.cache.set(name, secret)
	return secret, nil
}

func (m *awsSecretManager) PutSecret(ctx context.Context, name, value string) (string, error) {
	id := m.secretID(name)

	result, err := m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(value),
	})
	if err != nil {
		// First write: the secret does not exist yet.
		created, cerr := m.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
			Name:         aws.String(id),
			SecretString: aws.String(value),
		})
		if cerr != nil {
			return "", fmt.Errorf("put secret %s: %w", name, err)
		}
		m.cache.invalidate(name)
		return aws.ToString(created.VersionId), nil
	}

	m.cache.invalidate(name)
	m.logger.Info("Secret updated", zap.String("name", name))
	return aws.ToString(result.VersionId), nil
}

func (m *awsSecretManager) DeleteSecret(ctx context.Context, name string) error {
	_, err := m.client.DeleteSecret(ctx, &secretsmanager.DeleteSecretInput{
		SecretId: aws.String(m.secretID(name)),
	})
	if err != nil {
		return fmt.Errorf("delete secret %s: %w", name, err)
	}
	m.cache.invalidate(name)
	return nil
}
