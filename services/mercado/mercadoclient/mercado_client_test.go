package mercadoclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/sellerbackend/lib/myerrors"
)

func TestComposeAuthURL(t *testing.T) {
	client := New("my_app_id", "my_app_secret")

	authURL, err := client.ComposeAuthURL(context.TODO(), ComposeAuthURLRequest{
		SiteID:        "MLA",
		RedirectURI:   "https://seller.example/mercado/callback",
		CodeChallenge: "u2SjlD_HjSkyOJE0XihKi0a_n1nED879osPq0SiXY90",
		State:         "state-abc",
		Scopes:        "offline_access read write",
	})
	assert.NoError(t, err)

	u, err := url.Parse(authURL)
	assert.NoError(t, err)
	assert.Equal(t, "auth.mercadolibre.com.ar", u.Host)
	assert.Equal(t, "/authorization", u.Path)

	query := u.Query()
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "my_app_id", query.Get("client_id"))
	assert.Equal(t, "https://seller.example/mercado/callback", query.Get("redirect_uri"))
	assert.Equal(t, "u2SjlD_HjSkyOJE0XihKi0a_n1nED879osPq0SiXY90", query.Get("code_challenge"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))
	assert.Equal(t, "state-abc", query.Get("state"))
	assert.Equal(t, "offline_access read write", query.Get("scope"))
}

func TestComposeAuthURLUnknownSite(t *testing.T) {
	client := New("my_app_id", "my_app_secret")

	_, err := client.ComposeAuthURL(context.TODO(), ComposeAuthURLRequest{SiteID: "MLX"})
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, tokenPath, r.URL.Path)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "my_app_id", r.FormValue("client_id"))
		assert.Equal(t, "my_app_secret", r.FormValue("client_secret"))
		assert.Equal(t, "auth-code-123", r.FormValue("code"))
		assert.Equal(t, "verifier-456", r.FormValue("code_verifier"))
		assert.Equal(t, "https://seller.example/mercado/callback", r.FormValue("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "APP_USR-access",
			"token_type": "Bearer",
			"expires_in": 21600,
			"scope": "offline_access read write",
			"user_id": 123456789,
			"refresh_token": "TG-refresh"
		}`)
	}))
	defer server.Close()

	client := NewWithHostname("my_app_id", "my_app_secret", server.URL)

	resp, err := client.ExchangeCode(context.TODO(), ExchangeCodeRequest{
		Code:         "auth-code-123",
		CodeVerifier: "verifier-456",
		RedirectURI:  "https://seller.example/mercado/callback",
	})
	assert.NoError(t, err)
	assert.Equal(t, "APP_USR-access", resp.AccessToken)
	assert.Equal(t, "TG-refresh", resp.RefreshToken)
	assert.Equal(t, 21600, resp.ExpiresIn)
	assert.Equal(t, int64(123456789), resp.UserID)
}

func TestExchangeCodeRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message": "invalid_grant", "error": "invalid_grant"}`)
	}))
	defer server.Close()

	client := NewWithHostname("my_app_id", "my_app_secret", server.URL)

	_, err := client.ExchangeCode(context.TODO(), ExchangeCodeRequest{Code: "bogus"})
	assert.Error(t, err)
	assert.Equal(t, http.StatusForbidden, myerrors.GetHttpStatus(err))
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.FormValue("grant_type"))
		assert.Equal(t, "TG-old-refresh", r.FormValue("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "APP_USR-new-access",
			"token_type": "Bearer",
			"expires_in": 21600,
			"user_id": 123456789,
			"refresh_token": "TG-new-refresh"
		}`)
	}))
	defer server.Close()

	client := NewWithHostname("my_app_id", "my_app_secret", server.URL)

	resp, err := client.RefreshToken(context.TODO(), "TG-old-refresh")
	assert.NoError(t, err)
	assert.Equal(t, "APP_USR-new-access", resp.AccessToken)
	assert.Equal(t, "TG-new-refresh", resp.RefreshToken)
}

func TestGetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userInfoPath, r.URL.Path)
		assert.Equal(t, "Bearer APP_USR-access", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 123456789, "nickname": "TESTSELLER", "email": "seller@example.com", "user_type": "normal"}`)
	}))
	defer server.Close()

	client := NewWithHostname("my_app_id", "my_app_secret", server.URL)

	userInfo, err := client.GetUserInfo(context.TODO(), "APP_USR-access")
	assert.NoError(t, err)
	assert.Equal(t, int64(123456789), userInfo.ID)
	assert.Equal(t, "TESTSELLER", userInfo.Nickname)
	assert.True(t, userInfo.IsManagerAccount())
}

func TestGetUserInfoCollaborator(t *testing.T) {
	userInfo := UserInfo{ID: 42, UserType: "collaborator"}
	assert.False(t, userInfo.IsManagerAccount())
}

func TestGetCategoriesIsCached(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		assert.Equal(t, "/sites/MLB/categories", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id": "MLB5672", "name": "Acessórios para Veículos"}, {"id": "MLB1055", "name": "Celulares"}]`)
	}))
	defer server.Close()

	client := NewWithHostname("my_app_id", "my_app_secret", server.URL)

	for i := 0; i < 2; i++ {
		categories, err := client.GetCategories(context.TODO(), "MLB")
		assert.NoError(t, err)
		assert.Len(t, categories, 2)
		assert.Equal(t, "MLB5672", categories[0].ID)
	}

	// second call is served from the cache
	assert.Equal(t, 1, callCount)
}

func TestGetCategoriesUnknownSite(t *testing.T) {
	client := New("my_app_id", "my_app_secret")

	_, err := client.GetCategories(context.TODO(), "NOPE")
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, myerrors.GetHttpStatus(err))
}
