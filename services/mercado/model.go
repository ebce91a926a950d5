package mercado

import (
	"strings"
	"time"

	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
)

const (
	// The integration is useless without all three
	RequiredScopes = "offline_access read write"

	// MercadoLibre refresh tokens are single-use and valid for 6 months
	refreshTokenLifetime = 180 * 24 * time.Hour
)

// FlowSetup is everything the caller needs to send the seller to the
// marketplace authorization screen.
type FlowSetup struct {
	AuthorizationURL string `json:"authorizationURL"`
	State            string `json:"state"`
	CodeVerifier     string `json:"codeVerifier"`
	SiteID           string `json:"siteID"`
	ExpiresIn        int    `json:"expiresIn"`
}

// ConnectionStatus is the outward view on a credential: health plus
// account identity, never any token material.
type ConnectionStatus struct {
	Connected            bool                       `json:"connected"`
	Health               credstore.ConnectionHealth `json:"health"`
	Description          string                     `json:"description"`
	SiteID               string                     `json:"siteID,omitempty"`
	MeliUserID           int64                      `json:"meliUserID,omitempty"`
	Nickname             string                     `json:"nickname,omitempty"`
	Email                string                     `json:"email,omitempty"`
	Scopes               string                     `json:"scopes,omitempty"`
	AccessTokenExpiresAt *time.Time                 `json:"accessTokenExpiresAt,omitempty"`
	RefreshDueAt         *time.Time                 `json:"refreshDueAt,omitempty"`
	LastValidatedAt      *time.Time                 `json:"lastValidatedAt,omitempty"`
	LastValidationError  string                     `json:"lastValidationError,omitempty"`
}

func credentialToStatus(credential credstore.Credential, exists bool, now time.Time) ConnectionStatus {
	if !exists {
		return ConnectionStatus{
			Connected:   false,
			Health:      credstore.HealthDisconnected,
			Description: "No MercadoLibre account linked",
		}
	}

	health := credential.Health(now)
	status := ConnectionStatus{
		Connected:           credential.IsConnected(),
		Health:              health,
		Description:         describeHealth(health),
		SiteID:              credential.SiteID,
		MeliUserID:          credential.MeliUserID,
		Nickname:            credential.Nickname,
		Email:               credential.Email,
		Scopes:              credential.Scopes,
		LastValidatedAt:     credential.LastValidatedAt,
		LastValidationError: credential.LastValidationError,
	}

	if credential.IsConnected() {
		expiresAt := credential.AccessTokenExpiresAt
		refreshDueAt := credential.RefreshDueAt()
		status.AccessTokenExpiresAt = &expiresAt
		status.RefreshDueAt = &refreshDueAt
	}

	return status
}

func describeHealth(health credstore.ConnectionHealth) string {
	switch health {
	case credstore.HealthHealthy:
		return "Connected to MercadoLibre"
	case credstore.HealthPending:
		return "Authorization started, waiting for the seller to complete it"
	case credstore.HealthExpired:
		return "Access token expired, a refresh is pending"
	case credstore.HealthInvalid:
		return "Connection is broken, the seller must re-authorize"
	default:
		return "No MercadoLibre account linked"
	}
}

// hasRequiredScopes checks that every required scope was actually granted.
func hasRequiredScopes(granted string) bool {
	grantedSet := map[string]bool{}
	for _, scope := range strings.Fields(granted) {
		grantedSet[scope] = true
	}

	for _, scope := range strings.Fields(RequiredScopes) {
		if !grantedSet[scope] {
			return false
		}
	}

	return true
}
