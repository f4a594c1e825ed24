package api

import (
	"context"
	"net/http"

	"github.com/rxtech-lab/arb-console/internal/session"
	"github.com/rxtech-lab/arb-console/internal/types"
	"github.com/rxtech-lab/arb-console/pkg/errors"
	"go.uber.org/zap"
)

// InvalidateReasonLogout is passed to session listeners after Logout.
const InvalidateReasonLogout = "logout"

// Login exchanges credentials for a token pair and stores it in the session.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (types.TokenPair, error) {
	if req.Username == "" || req.Password == "" {
		c.notifier.Error("Username and password are required")

		return types.TokenPair{}, errors.New(errors.ErrCodeMissingParameter, "username and password are required")
	}

	if req.MFACode != nil && *req.MFACode == "" {
		req.MFACode = nil
	}

	var tokens types.TokenPair
	if err := c.post(ctx, c.v1, "/auth/login", nil, req, &tokens); err != nil {
		return types.TokenPair{}, err
	}

	if tokens.AccessToken == "" {
		c.notifier.Error(DefaultErrorMessage)

		return types.TokenPair{}, errors.New(errors.ErrCodeDecodeFailed, "login response carried no access token")
	}

	if c.session != nil {
		creds := session.Credentials{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			User:         &types.User{ID: "", Username: req.Username, Email: ""},
		}
		if err := c.session.SetCredentials(creds); err != nil {
			return types.TokenPair{}, err
		}
	}

	c.notifier.Success("Login successful!")

	return tokens, nil
}

// Logout tells the backend the session ended, then clears local credentials
// whatever the backend answered.
func (c *Client) Logout(ctx context.Context) error {
	if c.session == nil || !c.session.IsAuthenticated() {
		return nil
	}

	_, err := c.execute(ctx, call{client: c.v1, method: http.MethodPost, path: "/auth/logout", query: nil, body: nil, result: nil, quiet: true, raw: false})
	if err != nil {
		c.logger.Debug("backend logout failed", zap.Error(err))
	}

	c.session.Invalidate(InvalidateReasonLogout)

	return nil
}

// Refresh exchanges the refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) (types.TokenPair, error) {
	if c.session == nil || c.session.RefreshToken() == "" {
		return types.TokenPair{}, errors.New(errors.ErrCodeNotAuthenticated, "no refresh token available")
	}

	body := map[string]string{"refresh_token": c.session.RefreshToken()}

	var tokens types.TokenPair
	if err := c.post(ctx, c.v1, "/auth/refresh", nil, body, &tokens); err != nil {
		return types.TokenPair{}, err
	}

	creds := session.Credentials{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         c.session.User(),
	}
	if creds.RefreshToken == "" {
		creds.RefreshToken = c.session.RefreshToken()
	}

	if err := c.session.SetCredentials(creds); err != nil {
		return types.TokenPair{}, err
	}

	return tokens, nil
}
