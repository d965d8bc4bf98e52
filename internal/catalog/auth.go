package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/session"
)

// The Client doubles as the remote auth API of the session layer.
var _ session.Authenticator = (*Client)(nil)

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	err := c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return "", session.ErrInvalidCredentials
		}
		return "", err
	}
	if out.AccessToken == "" {
		return "", session.ErrInvalidCredentials
	}
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, name, email, password, avatar string) error {
	return c.do(ctx, request{
		method: fiber.MethodPost,
		path:   "/users",
		body: map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
			"avatar":   avatar,
		},
	}, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (session.Profile, error) {
	var p session.Profile
	err := c.do(ctx, request{method: fiber.MethodGet, path: "/auth/profile", token: token}, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, token string, userID int, upd session.ProfileUpdate) (session.Profile, error) {
	var p session.Profile
	err := c.do(ctx, request{
		method: fiber.MethodPut,
		path:   "/users/" + strconv.Itoa(userID),
		token:  token,
		body:   upd,
	}, &p)
	return p, err
}
