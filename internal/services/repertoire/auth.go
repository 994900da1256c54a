package repertoire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amaumene/repertoire/internal/models"
)

// TokenResponse represents the response from the token endpoint
type TokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token and stores the session
func (c *Client) Login(ctx context.Context, username, password string) (*models.Session, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	creds := map[string]string{
		"username": username,
		"password": password,
	}

	var tokenResp TokenResponse
	err := c.doRequest(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   tokenPath,
		body:   creds,
		want:   http.StatusOK,
	}, &tokenResp)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	if tokenResp.Token == "" {
		return nil, fmt.Errorf("token endpoint returned an empty token")
	}

	session := &models.Session{
		Username:  username,
		Token:     tokenResp.Token,
		BaseURL:   c.baseURL,
		CreatedAt: time.Now(),
	}
	if err := c.sessions.Set(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	c.logger.WithField("username", username).Info("Signed in")
	return session, nil
}

// Logout forgets the stored session
func (c *Client) Logout() error {
	if err := c.sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	c.logger.Info("Signed out")
	return nil
}
