package secrets

import (
	"context"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/vendoria/commerce-service/internal/adapters/ports"
)

// VaultConfig configures the HashiCorp Vault backend. Secrets live in a KV v2
// engine under MountPath/PathPrefix.
type VaultConfig struct {
	Address    string
	Token      string
	Namespace  string
	MountPath  string
	PathPrefix string
	CacheTTL   time.Duration
}

type vaultSecretManager struct {
	client *vault.Client
	cfg    VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultSecretManager creates a secret manager backed by Vault KV v2
func NewVaultSecretManager(cfg VaultConfig, logger *zap.Logger) (ports.SecretManager, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if cfg.MountPath == "" {
		cfg.MountPath = "secret"
	}

	logger.Info("Vault backend initialized",
		zap.String("address", cfg.Address),
		zap.String("mount", cfg.MountPath),
	)

	return &vaultSecretManager{
		client: client,
		cfg:    cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func (m *vaultSecretManager) secretPath(name string) string {
	if m.cfg.PathPrefix == "" {
		return name
	}
	return m.cfg.PathPrefix + "/" + name
}

func (m *vaultSecretManager) GetSecret(ctx context.Context, name string) (*ports.Secret, error) {
	if cached := m.cache.get(name); cached != nil {
		return cached, nil
	}

	kv := m.client.KVv2(m.cfg.MountPath)
	data, err := kv.Get(ctx, m.secretPath(name))
	if err != nil {
		m.logger.Error("Failed to retrieve secret", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("get secret %s: %w", name, err)
	}

	value, ok := data.Data["value"].(string)
	if !ok {
		return nil, fmt.Errorf("secret %s has no string field %q", name, "value")
	}

	secret := &ports.Secret{
		Value:   value,
		Version: fmt.Sprintf("%d", data.VersionMetadata.Version),
	}
	m.cache.set(name, secret)
	return secret, nil
}

func (m *vaultSecretManager) PutSecret(ctx context.Context, name, value string) (string, error) {
	kv := m.client.KVv2(m.cfg.MountPath)
	data, err := kv.Put(ctx, m.secretPath(name), map[string]interface{}{"value": value})
	if err != nil {
		return "", fmt.Errorf("put secret %s: %w", name, err)
	}
	m.cache.invalidate(name)
	m.logger.Info("Secret updated", zap.String("name", name))
	return fmt.Sprintf("%d", data.VersionMetadata.Version), nil
}

func (m *vaultSecretManager) DeleteSecret(ctx context.Context, name string) error {
	kv := m.client.KVv2(m.cfg.MountPath)
	if err := kv.Delete(ctx, m.secretPath(name)); err != nil {
		return fmt.Errorf("delete secret %s: %w", name, err)
	}
	m.cache.invalidate(name)
	return nil
}
