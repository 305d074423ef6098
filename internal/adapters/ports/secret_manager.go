package ports

import "context"

// Well-known secret names. Adapters map these onto backend-specific paths.
const (
	SecretCourierWebhookKey    = "courier/webhook-key"
	SecretCourierCredentials   = "courier/credentials"
	SecretGatewayWebhookSecret = "gateway/webhook-secret"
	SecretGatewayKeyPair       = "gateway/key-pair"
	SecretJWTSigningKey        = "auth/jwt-signing-key"
)

// Secret is one retrieved secret version
type Secret struct {
	Value    string
	Version  string
	Metadata map[string]string
}

// SecretManager retrieves and rotates service credentials. Implementations
// authenticate with the backend, cache reads with a TTL, and must tolerate
// rotation: a fresh Get after a failed verification picks up the new value.
type SecretManager interface {
	GetSecret(ctx context.Context, name string) (*Secret, error)
	PutSecret(ctx context.Context, name, value string) (version string, err error)
	DeleteSecret(ctx context.Context, name string) error
}
