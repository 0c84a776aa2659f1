package server

import (
	"time"

	"skillshare/internal/models"
	"skillshare/internal/oauth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const oauthStateCookie = "oauth_state"

func (s *Server) oauthProvider(registrationID string) (oauth.Provider, error) {
	if registrationID == "google" && !s.config.GoogleOAuthEnabled() {
		return nil, models.NewBadRequestError("Google login is not configured")
	}
	return oauth.NewProvider(registrationID, oauth.Config{
		ClientID:     s.config.GoogleClientID,
		ClientSecret: s.config.GoogleClientSecret,
		RedirectURL:  s.config.GoogleRedirectURL,
	})
}

// OAuthAuthorize handles GET /api/auth/oauth2/:provider.
// It sets a random state cookie and redirects to the provider's consent page.
func (s *Server) OAuthAuthorize(c *fiber.Ctx) error {
	provider, err := s.oauthProvider(c.Params("provider"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(provider.AuthURL(state), fiber.StatusFound)
}

// OAuthCallback handles GET /api/auth/oauth2/callback/:provider.
// It verifies the state cookie, exchanges the code for a profile, links or
// creates the matching account and issues a token.
func (s *Server) OAuthCallback(c *fiber.Ctx) error {
	provider, err := s.oauthProvider(c.Params("provider"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Invalid OAuth2 state"))
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewBadRequestError("Missing authorization code"))
	}

	info, err := provider.Exchange(c.Context(), code)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	user, err := s.userService.ResolveOAuthUser(c.Context(), provider.Name(), info)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if redirect := s.config.OAuthSuccessRedirect; redirect != "" {
		return c.Redirect(redirect+"?token="+token, fiber.StatusFound)
	}
	return c.JSON(authResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        user,
	})
}
