// Package secrets resolves portal credentials from Azure Key Vault. The
// credential values pass from the vault to the keyboard channel and are
// never logged, traced, or embedded in instruction text.
package secrets

import "context"

// Credentials holds a portal username and password pair.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Provider resolves credentials at run time. Resolution happens per run so
// rotated secrets take effect without a restart.
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}
