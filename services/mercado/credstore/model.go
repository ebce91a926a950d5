package credstore

import (
	"time"
)

const (
	// MercadoLibre hands out 6 hour access tokens. Anything longer
	// reported by the token endpoint is capped to this value.
	MaxAccessTokenLifetime = 6 * time.Hour

	// A refresh is scheduled ahead of the access token expiry. For very
	// short-lived tokens the margin shrinks proportionally so the token
	// is not considered refresh-due the moment it is issued.
	maxRefreshMargin = 30 * time.Minute
)

type ConnectionHealth string

const (
	HealthHealthy      ConnectionHealth = "healthy"
	HealthExpired      ConnectionHealth = "expired"
	HealthInvalid      ConnectionHealth = "invalid"
	HealthPending      ConnectionHealth = "pending"
	HealthDisconnected ConnectionHealth = "disconnected"
)

// Credential is the per-user record of a MercadoLibre account link. Token
// and PKCE secrets are stored encrypted, never as plaintext.
type Credential struct {
	UID     string
	UserUID string
	SiteID  string

	// identity of the marketplace account, filled in after the callback
	MeliUserID int64
	Nickname   string
	Email      string

	EncryptedAccessToken  string
	EncryptedRefreshToken string
	TokenType             string
	Scopes                string
	AccessTokenIssuedAt   time.Time
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time

	// transient PKCE flow data, cleared once the callback completes
	PkceCodeChallenge         string
	EncryptedPkceCodeVerifier string
	RedirectURI               string
	ReturnURL                 string

	IsValid             bool
	LastValidatedAt     *time.Time
	LastValidationError string

	CreatedAt    time.Time
	LastModified *time.Time
}

// IsPending reports whether the authorization flow was started but the
// callback has not (yet) delivered tokens.
func (cr Credential) IsPending() bool {
	return cr.EncryptedAccessToken == "" && cr.PkceCodeChallenge != ""
}

func (cr Credential) IsConnected() bool {
	return cr.EncryptedAccessToken != "" && cr.EncryptedRefreshToken != ""
}

func (cr Credential) AccessTokenExpired(now time.Time) bool {
	return cr.IsConnected() && !now.Before(cr.AccessTokenExpiresAt)
}

func (cr Credential) RefreshTokenExpired(now time.Time) bool {
	return cr.IsConnected() && !now.Before(cr.RefreshTokenExpiresAt)
}

// RefreshDueAt returns the moment the access token should be proactively
// refreshed: its expiry minus a safety margin of at most 30 minutes,
// scaled down to a twelfth of the token lifetime for short-lived tokens.
func (cr Credential) RefreshDueAt() time.Time {
	lifetime := cr.AccessTokenExpiresAt.Sub(cr.AccessTokenIssuedAt)

	margin := lifetime / 12
	if margin > maxRefreshMargin {
		margin = maxRefreshMargin
	}

	return cr.AccessTokenExpiresAt.Add(-margin)
}

func (cr Credential) ShouldRefresh(now time.Time) bool {
	return cr.IsConnected() && !now.Before(cr.RefreshDueAt())
}

// Health derives the observable state of the account link.
func (cr Credential) Health(now time.Time) ConnectionHealth {
	if cr.IsPending() {
		return HealthPending
	}
	if !cr.IsConnected() {
		return HealthDisconnected
	}
	if !cr.IsValid || cr.RefreshTokenExpired(now) {
		return HealthInvalid
	}
	if cr.AccessTokenExpired(now) {
		return HealthExpired
	}

	return HealthHealthy
}
