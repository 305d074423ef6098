package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/adapters/ports"
)

// envSecretManager reads secrets from environment variables, with in-process
// overrides for Put. Development only; use the AWS or Vault backends in
// production.
type envSecretManager struct {
	prefix string
	logger *zap.Logger

	mu        sync.RWMutex
	overrides map[string]string
}

// NewEnvSecretManager creates a secret manager backed by environment
// variables. A secret name like "courier/webhook-key" maps to
// {PREFIX}_COURIER_WEBHOOK_KEY.
func NewEnvSecretManager(prefix string, logger *zap.Logger) ports.SecretManager {
	return &envSecretManager{
		prefix:    prefix,
		logger:    logger,
		overrides: make(map[string]string),
	}
}

func (m *envSecretManager) envKey(name string) string {
	key := strings.NewReplacer("/", "_", "-", "_").Replace(name)
	return m.prefix + "_" + strings.ToUpper(key)
}

func (m *envSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	m.mu.RLock()
	value, ok := m.overrides[name]
	m.mu.RUnlock()

	if !ok {
		value = os.Getenv(m.envKey(name))
	}
	if value == "" {
		return nil, fmt.Errorf("secret not found: %s (env %s)", name, m.envKey(name))
	}
	return &ports.Secret{Value: value, Version: "env"}, nil
}

func (m *envSecretManager) PutSecret(ctx context.Context, name, value string) (string, error) {
	m.mu.Lock()
	m.overrides[name] = value
	m.mu.Unlock()
	m.logger.Info("Secret stored in process-local override", zap.String("name", name))
	return "env", nil
}

func (m *envSecretManager) DeleteSecret(ctx context.Context, name string) error {
	m.mu.Lock()
	delete(m.overrides, name)
	m.mu.Unlock()
	return nil
}
