package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/architeacher/device-inventory/internal/ports"
	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrSecretsStorageDisabled = errors.New("secret storage is not enabled")

// Init reads an optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Init(envFiles ...string) (*ServiceConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("unable to load env file: %w", err)
	}

	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	switch cfg.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	return cfg, nil
}

// Loader overlays secrets read from Vault onto the service configuration.
type Loader struct {
	cfg         *ServiceConfig
	secretsRepo ports.SecretsRepository
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewLoader(cfg *ServiceConfig, secretsRepo ports.SecretsRepository) *Loader {
	return &Loader{
		cfg:         cfg,
		secretsRepo: secretsRepo,
		sleep:       sleepContext,
	}
}

// Load authenticates, reads the service secret and applies it. It returns the
// secret version reported by the KV engine.
func (l *Loader) Load(ctx context.Context) (uint, error) {
	if !l.cfg.SecretsStorage.Enabled {
		return 0, ErrSecretsStorageDisabled
	}

	if err := l.authenticateVault(ctx); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	secret, err := l.getSecretsWithRetry(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load secrets from Vault: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("invalid secret format at %s, missing 'data' key", l.secretPath())
	}

	for key, value := range data {
		if strValue, ok := value.(string); ok && strValue != "" {
			l.applySecretToConfig(key, strValue)
		}
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	return getSecretVersion(metadata)
}

func (l *Loader) authenticateVault(ctx context.Context) error {
	storage := l.cfg.SecretsStorage

	switch strings.ToLower(storage.AuthMethod) {
	case "token":
		if storage.Token == "" {
			return errors.New("token is required for token auth method")
		}

		l.secretsRepo.SetToken(storage.Token)

		return nil

	case "approle":
		if storage.RoleID == "" || storage.SecretID == "" {
			return errors.New("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.secretsRepo.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   storage.RoleID,
			"secret_id": storage.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return errors.New("no auth info returned from Vault")
		}

		l.secretsRepo.SetToken(resp.Auth.ClientToken)

		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", storage.AuthMethod)
	}
}

func (l *Loader) secretPath() string {
	return fmt.Sprintf("apps/data/%s", l.cfg.SecretsStorage.MountPath)
}

func (l *Loader) getSecretsWithRetry(ctx context.Context) (*api.Secret, error) {
	path := l.secretPath()

	ctx, cancel := context.WithTimeout(ctx, l.cfg.SecretsStorage.Timeout)
	defer cancel()

	var (
		secret *api.Secret
		err    error
	)

	for attempt := uint(0); attempt <= l.cfg.SecretsStorage.MaxRetries; attempt++ {
		secret, err = l.secretsRepo.GetSecrets(ctx, path)
		if err == nil {
			return secret, nil
		}

		if attempt < l.cfg.SecretsStorage.MaxRetries {
			if sleepErr := l.sleep(ctx, time.Duration(attempt+1)*l.cfg.SecretsStorage.RetryDelay); sleepErr != nil {
				return nil, fmt.Errorf("reading %s: %w", path, sleepErr)
			}
		}
	}

	return nil, fmt.Errorf("failed to read from path %s after %d retries: %w", path, l.cfg.SecretsStorage.MaxRetries, err)
}

func (l *Loader) applySecretToConfig(key, value string) {
	switch key {
	case "POSTGRES_HOST":
		l.cfg.Database.Host = value
	case "POSTGRES_USERNAME":
		l.cfg.Database.Username = value
	case "POSTGRES_PASSWORD":
		l.cfg.Database.Password = value
	case "POSTGRES_DATABASE":
		l.cfg.Database.Database = value
	}
}

func getSecretVersion(metadata map[string]any) (uint, error) {
	if metadata == nil {
		return 0, nil
	}

	version, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := version.(type) {
	case float64:
		return uint(v), nil
	case int:
		return uint(v), nil
	case interface{ Int64() (int64, error) }:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(n), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", version)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
