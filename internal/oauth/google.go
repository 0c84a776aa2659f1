package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"skillshare/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// googleUser is the portion of the Google userinfo response we care about.
type googleUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

type googleProvider struct {
	config *oauth2.Config
}

func newGoogleProvider(cfg Config) *googleProvider {
	return &googleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *googleProvider) Name() models.AuthProvider {
	return models.ProviderGoogle
}

// AuthURL returns the URL to redirect the user to for authorization.
// The state parameter is verified on callback to prevent CSRF.
func (p *googleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's Google profile.
func (p *googleProvider) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth: exchanging code: %w", err)
	}

	client := p.config.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("oauth: calling userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: userinfo API returned status %d", resp.StatusCode)
	}

	var gu googleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("oauth: decoding userinfo response: %w", err)
	}

	if gu.ID == "" {
		return nil, fmt.Errorf("oauth: provider returned an invalid user")
	}

	return &UserInfo{
		ID:      gu.ID,
		Name:    gu.Name,
		Email:   gu.Email,
		Picture: gu.Picture,
	}, nil
}
