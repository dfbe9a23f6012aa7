package ports

import (
	"context"

	"github.com/hashicorp/vault/api"
)

//counterfeiter:generate -o ../mocks/secrets_repository.go . SecretsRepository

// SecretsRepository reads credentials from a secrets storage backend.
type SecretsRepository interface {
	SetToken(v string)
	GetSecrets(ctx context.Context, path string) (*api.Secret, error)
	WriteWithContext(ctx context.Context, path string, data map[string]any) (*api.Secret, error)
}
