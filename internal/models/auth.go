package models

// TelegramAuthData is the payload delivered by the Telegram login widget.
// The hash is verified server-side; the client forwards it opaquely.
type TelegramAuthData struct {
	ID        string `json:"id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photo_url,omitempty"`
	AuthDate  int64  `json:"auth_date" validate:"required"`
	Hash      string `json:"hash" validate:"required"`
}

// TokenResponse is the session token issued after a successful
// external-credential exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type" validate:"required"`
}

// LinkedProvider is one external identity provider linked to the account.
type LinkedProvider struct {
	ID             int64   `json:"id" validate:"required"`
	Provider       string  `json:"provider" validate:"required"`
	ProviderUserID string  `json:"provider_user_id" validate:"required"`
	Email          *string `json:"email"`
	DisplayName    *string `json:"display_name"`
}

// HealthStatus is the unauthenticated health probe response.
type HealthStatus struct {
	Status string `json:"status" validate:"required"`
}

// CanUnlink reports whether removing one provider would still leave the
// account with a way to sign in. This is a UX guard, not a security
// boundary: the backend enforces its own rules.
func CanUnlink(providers []LinkedProvider) bool {
	return len(providers) > 1
}
