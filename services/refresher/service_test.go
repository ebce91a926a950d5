package refresher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
)

func TestRefresher(t *testing.T) {

	t.Run("Sweep refreshes due credentials and counts failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, webService, credStore, refresher, nower := setup(t, ctrl)

		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		now := mytime.ExampleTime
		seedCredential(t, c, credStore, "cred-ok-1", now.Add(10*time.Minute), now.Add(180*24*time.Hour))
		seedCredential(t, c, credStore, "cred-ok-2", now.Add(15*time.Minute), now.Add(180*24*time.Hour))
		seedCredential(t, c, credStore, "cred-failing", now.Add(20*time.Minute), now.Add(180*24*time.Hour))
		seedCredential(t, c, credStore, "cred-terminal", now.Add(10*time.Minute), now.Add(-time.Minute))
		seedCredential(t, c, credStore, "cred-not-due", now.Add(5*time.Hour), now.Add(180*24*time.Hour))

		refresher.EXPECT().RefreshCredential(gomock.Any(), "cred-ok-1").Return(nil)
		refresher.EXPECT().RefreshCredential(gomock.Any(), "cred-ok-2").Return(nil)
		refresher.EXPECT().RefreshCredential(gomock.Any(), "cred-failing").Return(fmt.Errorf("token endpoint unreachable"))

		summary := webService.service.sweep(c)

		assert.Equal(t, 4, summary.Candidates)
		assert.Equal(t, 2, summary.Refreshed)
		assert.Equal(t, 1, summary.Failed)
		assert.Equal(t, 1, summary.Skipped)
	})

	t.Run("Start and stop are idempotent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, webService, _, _, nower := setup(t, ctrl)

		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		assert.NoError(t, webService.Start(c))
		assert.NoError(t, webService.Start(c))

		webService.Stop(c)
		webService.Stop(c)

		// can be started again after a stop
		assert.NoError(t, webService.Start(c))
		webService.Stop(c)
	})

	t.Run("Forced refresh of a single credential", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, webService, _, refresher, _ := setup(t, ctrl)

		router := mux.NewRouter()
		assert.NoError(t, webService.RegisterEndpoints(c, router))

		refresher.EXPECT().RefreshCredential(gomock.Any(), "cred-123").Return(nil)

		request, err := http.NewRequest(http.MethodPost, "/refresher/force/cred-123", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
		assert.Contains(t, response.Body.String(), `"refreshed": true`)
	})

	t.Run("Status reports pending work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		c, webService, credStore, _, nower := setup(t, ctrl)

		nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

		now := mytime.ExampleTime
		seedCredential(t, c, credStore, "cred-due", now.Add(10*time.Minute), now.Add(180*24*time.Hour))
		invalid := seedCredential(t, c, credStore, "cred-invalid", now.Add(5*time.Hour), now.Add(180*24*time.Hour))
		invalid.IsValid = false
		assert.NoError(t, credStore.Save(c, invalid))

		router := mux.NewRouter()
		assert.NoError(t, webService.RegisterEndpoints(c, router))

		request, err := http.NewRequest(http.MethodGet, "/refresher/status", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)

		status := Status{}
		assert.NoError(t, json.Unmarshal(response.Body.Bytes(), &status))
		assert.False(t, status.Running)
		assert.Equal(t, int(defaultInterval.Seconds()), status.IntervalSeconds)
		assert.Equal(t, 1, status.ExpiringWithinHour)
		assert.Equal(t, 1, status.InvalidCredentials)
	})
}

func TestIntervalFromEnv(t *testing.T) {
	t.Setenv("TOKEN_REFRESH_INTERVAL", "")
	assert.Equal(t, defaultInterval, IntervalFromEnv())

	t.Setenv("TOKEN_REFRESH_INTERVAL", "15m")
	assert.Equal(t, 15*time.Minute, IntervalFromEnv())

	t.Setenv("TOKEN_REFRESH_INTERVAL", "bogus")
	assert.Equal(t, defaultInterval, IntervalFromEnv())
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *webService, credstore.CredentialStore, *MockTokenRefresher, *mytime.MockNower) {
	c := context.TODO()

	credStore, cleanup, err := credstore.New(c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	refresher := NewMockTokenRefresher(ctrl)
	nower := mytime.NewMockNower(ctrl)

	webService := NewService(credStore, refresher, nower, defaultInterval)

	return c, webService, credStore, refresher, nower
}

func seedCredential(t *testing.T, c context.Context, credStore credstore.CredentialStore, uid string, accessExpiresAt time.Time, refreshExpiresAt time.Time) credstore.Credential {
	credential := credstore.Credential{
		UID:                   uid,
		UserUID:               "user-" + uid,
		SiteID:                "MLA",
		MeliUserID:            int64(len(uid)),
		EncryptedAccessToken:  "encrypted-access",
		EncryptedRefreshToken: "encrypted-refresh",
		AccessTokenIssuedAt:   accessExpiresAt.Add(-6 * time.Hour),
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshTokenExpiresAt: refreshExpiresAt,
		IsValid:               true,
		CreatedAt:             mytime.ExampleTime,
	}
	assert.NoError(t, credStore.Save(c, credential))

	return credential
}
