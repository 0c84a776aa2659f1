// Package oauth implements OAuth2 login providers for account linking.
package oauth

import (
	"context"
	"fmt"

	"skillshare/internal/models"
)

// UserInfo is the normalized profile extracted from a provider's user API.
type UserInfo struct {
	ID      string
	Name    string
	Email   string
	Picture string
}

// Provider is an OAuth2 login provider supporting the authorization code flow.
type Provider interface {
	Name() models.AuthProvider
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

// Config carries the credentials for a provider registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewProvider returns the provider registered under the given id.
// Only Google is supported.
func NewProvider(registrationID string, cfg Config) (Provider, error) {
	switch registrationID {
	case "google":
		return newGoogleProvider(cfg), nil
	default:
		return nil, models.NewBadRequestError(fmt.Sprintf("Sorry! Login with %s is not supported yet.", registrationID))
	}
}
