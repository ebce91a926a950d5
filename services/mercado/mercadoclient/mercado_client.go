package mercadoclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/services/mercado/sites"
)

const (
	apiHostname = "https://api.mercadolibre.com"

	tokenPath      = "/oauth/token"
	userInfoPath   = "/users/me"
	categoriesPath = "/sites/%s/categories"

	categoryCacheExpiry  = 1 * time.Hour
	categoryCacheCleanup = 10 * time.Minute
)

type ComposeAuthURLRequest struct {
	SiteID        string
	RedirectURI   string
	CodeChallenge string
	State         string
	Scopes        string
}

type ExchangeCodeRequest struct {
	Code         string
	CodeVerifier string
	RedirectURI  string
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	UserID       int64  `json:"user_id"`
	RefreshToken string `json:"refresh_token"`
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// IsManagerAccount reports whether this account may authorize an
// integration. Collaborator sub-accounts may not.
func (u UserInfo) IsManagerAccount() bool {
	return u.UserType != "collaborator"
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

//go:generate mockgen -source=mercado_client.go -package mercadoclient -destination mercado_client_mock.go MercadoClient
type MercadoClient interface {
	ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error)
	ExchangeCode(c context.Context, req ExchangeCodeRequest) (TokenResponse, error)
	RefreshToken(c context.Context, refreshToken string) (TokenResponse, error)
	GetUserInfo(c context.Context, accessToken string) (UserInfo, error)
	GetCategories(c context.Context, siteID string) ([]Category, error)
}

type mercadoClient struct {
	appID         string
	appSecret     string
	apiHostname   string
	categoryCache *cache.Cache
}

func New(appID string, appSecret string) *mercadoClient {
	return NewWithHostname(appID, appSecret, apiHostname)
}

func NewWithHostname(appID string, appSecret string, hostname string) *mercadoClient {
	return &mercadoClient{
		appID:         appID,
		appSecret:     appSecret,
		apiHostname:   hostname,
		categoryCache: cache.New(categoryCacheExpiry, categoryCacheCleanup),
	}
}

func (mc *mercadoClient) ComposeAuthURL(c context.Context, req ComposeAuthURLRequest) (string, error) {
	site, err := sites.Get(req.SiteID)
	if err != nil {
		return "", myerrors.NewInvalidInputError(err)
	}

	u, err := url.Parse(site.AuthorizationURL())
	if err != nil {
		return "", myerrors.NewInternalError(err)
	}

	/*  Example:
	https://auth.mercadolibre.com.ar/authorization
		?response_type=code
		&client_id=8765432109876543
		&redirect_uri=https%3A%2F%2Fseller.example%2Fmercado%2Fcallback
		&code_challenge=u2SjlD_HjSkyOJE0XihKi0a_n1nED879osPq0SiXY90
		&code_challenge_method=S256
		&state=892f0b86-daca-4272-89e7-1a0d49a3ad71
		&scope=offline_access+read+write
	*/

	u.RawQuery = url.Values{
		"response_type":         []string{"code"},
		"client_id":             []string{mc.appID},
		"redirect_uri":          []string{req.RedirectURI},
		"code_challenge":        []string{req.CodeChallenge},
		"code_challenge_method": []string{"S256"},
		"state":                 []string{req.State},
		"scope":                 []string{req.Scopes},
	}.Encode()

	return u.String(), nil
}

func (mc *mercadoClient) ExchangeCode(c context.Context, req ExchangeCodeRequest) (TokenResponse, error) {
	requestBody := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {mc.appID},
		"client_secret": {mc.appSecret},
		"code":          {req.Code},
		"code_verifier": {req.CodeVerifier},
		"redirect_uri":  {req.RedirectURI},
	}.Encode()

	return mc.postTokenRequest(c, requestBody)
}

func (mc *mercadoClient) RefreshToken(c context.Context, refreshToken string) (TokenResponse, error) {
	requestBody := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {mc.appID},
		"client_secret": {mc.appSecret},
		"refresh_token": {refreshToken},
	}.Encode()

	return mc.postTokenRequest(c, requestBody)
}

func (mc *mercadoClient) postTokenRequest(c context.Context, requestBody string) (TokenResponse, error) {
	httpClient := newHTTPClient()
	httpRespCode, respBody, err := httpClient.Send(c, http.MethodPost, mc.apiHostname+tokenPath, []byte(requestBody), "")
	if err != nil {
		return TokenResponse{}, myerrors.NewInternalError(fmt.Errorf("error calling token endpoint: %s", err))
	}

	if httpRespCode != http.StatusOK {
		err := fmt.Errorf("token endpoint rejected request: %d (%s)", httpRespCode, parseErrorMessage(respBody))
		if httpRespCode >= 400 && httpRespCode < 500 {
			return TokenResponse{}, myerrors.NewAuthenticationError(err)
		}
		return TokenResponse{}, myerrors.NewInternalError(err)
	}

	resp := TokenResponse{}
	err = json.Unmarshal(respBody, &resp)
	if err != nil {
		return TokenResponse{}, myerrors.NewInternalError(fmt.Errorf("error parsing token response: %s", err))
	}

	return resp, nil
}

func (mc *mercadoClient) GetUserInfo(c context.Context, accessToken string) (UserInfo, error) {
	httpClient := newHTTPClient()
	httpRespCode, respBody, err := httpClient.Send(c, http.MethodGet, mc.apiHostname+userInfoPath, nil, accessToken)
	if err != nil {
		return UserInfo{}, myerrors.NewInternalError(fmt.Errorf("error fetching user info: %s", err))
	}

	if httpRespCode != http.StatusOK {
		err := fmt.Errorf("user info request failed: %d (%s)", httpRespCode, parseErrorMessage(respBody))
		if httpRespCode == http.StatusUnauthorized || httpRespCode == http.StatusForbidden {
			return UserInfo{}, myerrors.NewAuthenticationError(err)
		}
		return UserInfo{}, myerrors.NewInternalError(err)
	}

	userInfo := UserInfo{}
	err = json.Unmarshal(respBody, &userInfo)
	if err != nil {
		return UserInfo{}, myerrors.NewInternalError(fmt.Errorf("error parsing user info: %s", err))
	}

	return userInfo, nil
}

func (mc *mercadoClient) GetCategories(c context.Context, siteID string) ([]Category, error) {
	if !sites.IsSupported(siteID) {
		return nil, myerrors.NewInvalidInputError(fmt.Errorf("site with id '%s' not supported", siteID))
	}

	if cached, found := mc.categoryCache.Get(siteID); found {
		return cached.([]Category), nil
	}

	httpClient := newHTTPClient()
	httpRespCode, respBody, err := httpClient.Send(c, http.MethodGet, mc.apiHostname+fmt.Sprintf(categoriesPath, siteID), nil, "")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching categories: %s", err))
	}

	if httpRespCode != http.StatusOK {
		return nil, myerrors.NewInternalError(fmt.Errorf("categories request failed: %d", httpRespCode))
	}

	categories := []Category{}
	err = json.Unmarshal(respBody, &categories)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error parsing categories: %s", err))
	}

	mc.categoryCache.Set(siteID, categories, cache.DefaultExpiration)

	return categories, nil
}

func parseErrorMessage(respBody []byte) string {
	errorResp := struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}{}
	if err := json.Unmarshal(respBody, &errorResp); err != nil {
		return "unparsable error body"
	}
	if errorResp.Message != "" {
		return errorResp.Message
	}

	return errorResp.Error
}
