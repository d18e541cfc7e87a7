package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

// KeyVaultProvider resolves credentials from an Azure Key Vault secret whose
// value is a JSON object with username and password fields.
type KeyVaultProvider struct {
	client     *azsecrets.Client
	secretName string
	logger     *slog.Logger
}

// NewKeyVaultProvider creates a provider using the default Azure credential
// chain (environment, workload identity, managed identity, CLI).
func NewKeyVaultProvider(cfg Config, logger *slog.Logger) (*KeyVaultProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire azure credential: %w", ErrUnavailable, err)
	}

	client, err := azsecrets.NewClient(cfg.VaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create key vault client: %w", ErrUnavailable, err)
	}

	return &KeyVaultProvider{
		client:     client,
		secretName: cfg.SecretName,
		logger:     logger.With("system", "secrets"),
	}, nil
}

// Credentials fetches and decodes the configured secret. Error messages name
// the secret, never its value.
func (p *KeyVaultProvider) Credentials(ctx context.Context) (Credentials, error) {
	resp, err := p.client.GetSecret(ctx, p.secretName, "", nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: get secret %q: %w", ErrUnavailable, p.secretName, err)
	}
	if resp.Value == nil {
		return Credentials{}, fmt.Errorf("%w: secret %q has no value", ErrUnavailable, p.secretName)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*resp.Value), &creds); err != nil {
		return Credentials{}, fmt.Errorf("%w: secret %q: not valid JSON", ErrMalformed, p.secretName)
	}
	if creds.Username == "" || creds.Password == "" {
		return Credentials{}, fmt.Errorf("%w: secret %q: missing username or password field", ErrMalformed, p.secretName)
	}

	p.logger.Debug("credentials resolved", "secret", p.secretName)
	return creds, nil
}
