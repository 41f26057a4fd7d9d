package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"

	"fittrack-bot/internal/models"
)

var ErrNoToken = errors.New("backend returned no access token")

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, r models.Registration) (string, error) {
	body, err := c.do(ctx, "auth_register", http.MethodPost, "/auth/register", nil, r)
	if err != nil {
		return "", err
	}
	return accessToken(body)
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	creds := map[string]string{"email": email, "password": password}
	body, err := c.do(ctx, "auth_login", http.MethodPost, "/auth/login", nil, creds)
	if err != nil {
		return "", err
	}
	return accessToken(body)
}

func accessToken(body []byte) (string, error) {
	token := gjson.GetBytes(body, "access_token").String()
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
