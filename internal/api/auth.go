package api

import (
	"context"
	"fmt"
	"net/http"

	"bezorgen/internal/models"
	"bezorgen/internal/schema"
)

// LoginWithTelegram exchanges the Telegram widget payload for a session
// token. This is the unauthenticated path: no bearer header is sent.
// Persisting the returned token is the caller's decision.
func (c *Client) LoginWithTelegram(ctx context.Context, data models.TelegramAuthData) (*models.TokenResponse, error) {
	if err := c.schema.Struct(data); err != nil {
		return nil, err
	}

	resp, err := c.public(ctx, "telegram_login", http.MethodPost, "/auth/telegram", data)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.TokenResponse](c.schema, resp.Body)
}

// ListLinkedProviders fetches the identity providers linked to the account.
func (c *Client) ListLinkedProviders(ctx context.Context) ([]models.LinkedProvider, error) {
	resp, err := c.get(ctx, "list_linked_providers", "/auth/linked-providers", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	providers, err := schema.Decode[[]models.LinkedProvider](c.schema, resp.Body)
	if err != nil {
		return nil, err
	}
	return *providers, nil
}

// UnlinkProvider removes a linked identity provider. The caller is
// expected to have checked models.CanUnlink first; the backend enforces
// its own rules regardless.
func (c *Client) UnlinkProvider(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/auth/linked-providers/%d", id)
	resp, err := c.do(ctx, "unlink_provider", http.MethodDelete, path, nil, nil, true)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Health probes the backend without authentication.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.public(ctx, "health", http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return schema.Decode[models.HealthStatus](c.schema, resp.Body)
}
