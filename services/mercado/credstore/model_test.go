package credstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/sellerbackend/lib/mytime"
)

func TestHealthTransitions(t *testing.T) {
	now := mytime.ExampleTime

	tests := []struct {
		name       string
		credential Credential
		expected   ConnectionHealth
	}{
		{
			name:       "never connected",
			credential: Credential{UID: "c", UserUID: "u"},
			expected:   HealthDisconnected,
		},
		{
			name: "flow started but not completed",
			credential: Credential{
				UID:               "c",
				UserUID:           "u",
				PkceCodeChallenge: "challenge",
			},
			expected: HealthPending,
		},
		{
			name:       "connected with fresh tokens",
			credential: connectedCredential("c", "u", now.Add(6*time.Hour)),
			expected:   HealthHealthy,
		},
		{
			name:       "access token expired, refresh still possible",
			credential: connectedCredential("c", "u", now.Add(-time.Minute)),
			expected:   HealthExpired,
		},
		{
			name: "refresh token expired",
			credential: func() Credential {
				credential := connectedCredential("c", "u", now.Add(-time.Minute))
				credential.RefreshTokenExpiresAt = now.Add(-time.Minute)
				return credential
			}(),
			expected: HealthInvalid,
		},
		{
			name: "marked invalid after failed refresh",
			credential: func() Credential {
				credential := connectedCredential("c", "u", now.Add(6*time.Hour))
				credential.IsValid = false
				return credential
			}(),
			expected: HealthInvalid,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.credential.Health(now))
		})
	}
}

func TestRefreshDueAt(t *testing.T) {
	now := mytime.ExampleTime

	// a 6 hour token gets the full 30 minute margin
	credential := connectedCredential("c", "u", now.Add(6*time.Hour))
	assert.Equal(t, now.Add(6*time.Hour-30*time.Minute), credential.RefreshDueAt())

	// a 1 hour token gets a 5 minute margin, not 30
	credential.AccessTokenIssuedAt = now
	credential.AccessTokenExpiresAt = now.Add(time.Hour)
	assert.Equal(t, now.Add(55*time.Minute), credential.RefreshDueAt())

	assert.False(t, credential.ShouldRefresh(now))
	assert.True(t, credential.ShouldRefresh(now.Add(55*time.Minute)))
}
