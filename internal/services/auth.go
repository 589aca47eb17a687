package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/cinex/internal/models"
	"github.com/desertthunder/cinex/internal/shared"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account with POST /auth/register and attaches the returned token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*AuthResponse, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", shared.ErrMissingArgument)
	}

	var resp AuthResponse
	req := registerRequest{Username: strings.TrimSpace(username), Email: strings.TrimSpace(email), Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return c.acceptToken(&resp)
}

// Login exchanges credentials with POST /auth/login and attaches the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", shared.ErrMissingArgument)
	}

	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: strings.TrimSpace(email), Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s", shared.ErrAuthFailed, ErrorMessage(err, "invalid email or password"))
		}
		return nil, err
	}
	return c.acceptToken(&resp)
}

func (c *Client) acceptToken(resp *AuthResponse) (*AuthResponse, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: response did not include a token", shared.ErrAuthFailed)
	}
	c.SetToken(resp.Token)
	return resp, nil
}

// Me fetches the current user with GET /auth/me.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	if err := c.requireAuth(); err != nil {
		return nil, err
	}

	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
