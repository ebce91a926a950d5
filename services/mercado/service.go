package mercado

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/MarcGrol/sellerbackend/lib/codeverifier"
	"github.com/MarcGrol/sellerbackend/lib/mycrypto"
	"github.com/MarcGrol/sellerbackend/lib/myerrors"
	"github.com/MarcGrol/sellerbackend/lib/mylog"
	"github.com/MarcGrol/sellerbackend/lib/mypublisher"
	"github.com/MarcGrol/sellerbackend/lib/mystate"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/lib/myuuid"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoclient"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoevents"
	"github.com/MarcGrol/sellerbackend/services/mercado/sites"
)

type service struct {
	credStore    credstore.CredentialStore
	client       mercadoclient.MercadoClient
	encryptor    mycrypto.Encryptor
	stateTokener mystate.StateTokener
	publisher    mypublisher.Publisher
	nower        mytime.Nower
	uuider       myuuid.UUIDer
	logger       mylog.Logger

	refreshMutex sync.Mutex
	refreshLocks map[string]*sync.Mutex
}

func newService(credStore credstore.CredentialStore, client mercadoclient.MercadoClient, encryptor mycrypto.Encryptor, stateTokener mystate.StateTokener, pub mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		credStore:    credStore,
		client:       client,
		encryptor:    encryptor,
		stateTokener: stateTokener,
		publisher:    pub,
		nower:        nower,
		uuider:       uuider,
		logger:       mylog.New("mercado"),
		refreshLocks: map[string]*sync.Mutex{},
	}
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, mercadoevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", mercadoevents.TopicName, err)
	}

	return nil
}

func (s *service) start(c context.Context, userUID string, siteID string, returnURL string, currentHostname string) (FlowSetup, error) {
	now := s.nower.Now()

	s.logger.Log(c, userUID, mylog.SeverityInfo, "Start authorization flow for user %s on site %s", userUID, siteID)

	site, err := sites.Get(siteID)
	if err != nil {
		return FlowSetup{}, myerrors.NewInvalidInputError(err)
	}

	if returnURL != "" {
		// the browser is redirected here after the callback, so only
		// http(s) is acceptable
		u, err := url.Parse(returnURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			return FlowSetup{}, myerrors.NewInvalidInputError(fmt.Errorf("returnURL must be an absolute http(s) url"))
		}
	}

	verifier, err := codeverifier.NewVerifier()
	if err != nil {
		return FlowSetup{}, myerrors.NewInternalError(fmt.Errorf("error creating code-verifier: %s", err))
	}

	_, challenge, err := verifier.CreateChallenge()
	if err != nil {
		return FlowSetup{}, myerrors.NewInternalError(fmt.Errorf("error creating code-challenge: %s", err))
	}

	encryptedVerifier, err := s.encryptor.Encrypt(verifier.GetValue())
	if err != nil {
		return FlowSetup{}, myerrors.NewInternalError(fmt.Errorf("error encrypting code-verifier: %s", err))
	}

	redirectURI := createCallbackURL(currentHostname)
	state := s.stateTokener.Issue(userUID, redirectURI)

	authURL, err := s.client.ComposeAuthURL(c, mercadoclient.ComposeAuthURLRequest{
		SiteID:        site.ID,
		RedirectURI:   redirectURI,
		CodeChallenge: challenge,
		State:         state,
		Scopes:        RequiredScopes,
	})
	if err != nil {
		return FlowSetup{}, err
	}

	credentialUID := ""
	err = s.credStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		credential, exists, err := s.credStore.FindByUserUID(c, userUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
		}
		if !exists {
			credential = credstore.Credential{
				UID:       s.uuider.Create(),
				UserUID:   userUID,
				CreatedAt: now,
			}
		}

		// existing tokens survive until the new flow completes
		credential.SiteID = site.ID
		credential.PkceCodeChallenge = challenge
		credential.EncryptedPkceCodeVerifier = encryptedVerifier
		credential.RedirectURI = redirectURI
		credential.ReturnURL = returnURL
		credential.LastModified = &now

		err = s.credStore.Save(c, credential)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing credential: %s", err))
		}
		credentialUID = credential.UID

		err = s.publisher.Publish(c, mercadoevents.TopicName, mercadoevents.MercadoFlowStarted{
			UserUID:       userUID,
			CredentialUID: credential.UID,
			SiteID:        site.ID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return FlowSetup{}, err
	}

	s.logger.Log(c, credentialUID, mylog.SeverityInfo, "Authorization flow started for user %s (credential %s)", userUID, credentialUID)

	return FlowSetup{
		AuthorizationURL: authURL,
		State:            state,
		CodeVerifier:     verifier.GetValue(),
		SiteID:           site.ID,
		ExpiresIn:        int(mystate.DefaultExpiry.Seconds()),
	}, nil
}

func (s *service) done(c context.Context, userUID string, code string, state string, codeVerifierValue string) (ConnectionStatus, string, error) {
	now := s.nower.Now()

	s.logger.Log(c, userUID, mylog.SeverityInfo, "Handle authorization callback for user %s", userUID)

	if len(code) < 10 {
		return ConnectionStatus{}, "", myerrors.NewInvalidInputError(fmt.Errorf("missing or implausible authorization code"))
	}
	if len(state) < 10 {
		return ConnectionStatus{}, "", myerrors.NewInvalidInputError(fmt.Errorf("missing or implausible state"))
	}
	if !codeverifier.IsWellFormed(codeVerifierValue) {
		return ConnectionStatus{}, "", myerrors.NewInvalidInputError(fmt.Errorf("code-verifier must be between %d and %d characters", codeverifier.MinLength, codeverifier.MaxLength))
	}

	credential, exists, err := s.credStore.FindByUserUID(c, userUID)
	if err != nil {
		return ConnectionStatus{}, "", myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}
	if !exists || !credential.IsPending() {
		return ConnectionStatus{}, "", myerrors.NewNotFoundError(fmt.Errorf("no pending authorization flow for user %s", userUID))
	}
	returnURL := credential.ReturnURL

	if !s.stateTokener.Validate(state, userUID, credential.RedirectURI) {
		return ConnectionStatus{}, "", myerrors.NewAuthenticationError(fmt.Errorf("state does not match this user's pending flow"))
	}

	_, challenge, err := codeverifier.NewVerifierFrom(codeVerifierValue).CreateChallenge()
	if err != nil || challenge != credential.PkceCodeChallenge {
		return ConnectionStatus{}, "", myerrors.NewAuthenticationError(fmt.Errorf("code-verifier does not match the pending flow"))
	}

	tokenResp, err := s.client.ExchangeCode(c, mercadoclient.ExchangeCodeRequest{
		Code:         code,
		CodeVerifier: codeVerifierValue,
		RedirectURI:  credential.RedirectURI,
	})
	if err != nil {
		return ConnectionStatus{}, "", err
	}

	userInfo, err := s.client.GetUserInfo(c, tokenResp.AccessToken)
	if err != nil {
		return ConnectionStatus{}, "", err
	}

	// gate before anything is persisted
	if !userInfo.IsManagerAccount() {
		s.logger.Log(c, userUID, mylog.SeverityWarn, "Rejected collaborator account %s for user %s", userInfo.Nickname, userUID)
		return ConnectionStatus{}, "", myerrors.NewAuthenticationError(ErrManagerAccountRequired{Nickname: userInfo.Nickname})
	}

	if !hasRequiredScopes(tokenResp.Scope) {
		return ConnectionStatus{}, "", myerrors.NewAuthenticationError(fmt.Errorf("granted scopes '%s' do not cover '%s'", tokenResp.Scope, RequiredScopes))
	}

	other, otherExists, err := s.credStore.FindByMeliUserID(c, userInfo.ID)
	if err != nil {
		return ConnectionStatus{}, "", myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}
	if otherExists && other.UserUID != userUID {
		return ConnectionStatus{}, "", myerrors.NewInvalidInputError(fmt.Errorf("marketplace account %d is already linked to another user", userInfo.ID))
	}

	encryptedAccessToken, encryptedRefreshToken, err := s.encryptTokenPair(tokenResp.AccessToken, tokenResp.RefreshToken)
	if err != nil {
		return ConnectionStatus{}, "", err
	}

	err = s.credStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		credential, exists, err = s.credStore.FindByUserUID(c, userUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("no pending authorization flow for user %s", userUID))
		}

		credential.MeliUserID = userInfo.ID
		credential.Nickname = userInfo.Nickname
		credential.Email = userInfo.Email
		credential.EncryptedAccessToken = encryptedAccessToken
		credential.EncryptedRefreshToken = encryptedRefreshToken
		credential.TokenType = tokenResp.TokenType
		credential.Scopes = tokenResp.Scope
		credential.AccessTokenIssuedAt = now
		credential.AccessTokenExpiresAt = now.Add(cappedAccessTokenLifetime(tokenResp.ExpiresIn))
		credential.RefreshTokenExpiresAt = now.Add(refreshTokenLifetime)
		credential.PkceCodeChallenge = ""
		credential.EncryptedPkceCodeVerifier = ""
		credential.RedirectURI = ""
		credential.ReturnURL = ""
		credential.IsValid = true
		credential.LastValidationError = ""
		credential.LastValidatedAt = &now
		credential.LastModified = &now

		err = s.credStore.Save(c, credential)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing credential: %s", err))
		}

		err = s.publisher.Publish(c, mercadoevents.TopicName, mercadoevents.MercadoAccountConnected{
			UserUID:       userUID,
			CredentialUID: credential.UID,
			SiteID:        credential.SiteID,
			MeliUserID:    credential.MeliUserID,
			Nickname:      credential.Nickname,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return ConnectionStatus{}, "", err
	}

	s.logger.Log(c, credential.UID, mylog.SeverityInfo, "User %s connected to account %s (%d) on site %s", userUID, credential.Nickname, credential.MeliUserID, credential.SiteID)

	return credentialToStatus(credential, true, now), returnURL, nil
}

// refreshToken swaps the stored token pair for a fresh one. Refresh tokens
// are single-use at MercadoLibre: the old pair is gone the moment the
// endpoint accepts it, so the new pair is stored in one transaction and
// the call never retries with the old token.
func (s *service) refreshToken(c context.Context, credentialUID string) error {
	lock := s.lockForCredential(credentialUID)
	lock.Lock()
	defer lock.Unlock()

	now := s.nower.Now()

	s.logger.Log(c, credentialUID, mylog.SeverityInfo, "Refresh tokens of credential %s", credentialUID)

	credential, exists, err := s.credStore.FindByUID(c, credentialUID)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}
	if !exists {
		return myerrors.NewNotFoundError(fmt.Errorf("credential with uid %s not found", credentialUID))
	}
	if !credential.IsConnected() {
		return myerrors.NewInvalidInputError(fmt.Errorf("credential %s has no tokens to refresh", credentialUID))
	}

	if credential.RefreshTokenExpired(now) {
		// terminal: only a new authorization flow can recover this
		s.markInvalid(c, credential, "refresh token expired", now)
		return myerrors.NewAuthenticationError(fmt.Errorf("refresh token of credential %s is expired, re-authorization required", credentialUID))
	}

	refreshTokenValue, err := s.encryptor.Decrypt(credential.EncryptedRefreshToken)
	if err != nil {
		s.markInvalid(c, credential, "stored refresh token is unreadable", now)
		return myerrors.NewInternalError(fmt.Errorf("error decrypting refresh token: %s", err))
	}

	tokenResp, err := s.client.RefreshToken(c, refreshTokenValue)
	if err != nil {
		s.markInvalid(c, credential, fmt.Sprintf("refresh rejected: %s", err), now)
		return err
	}

	if tokenResp.AccessToken == "" || tokenResp.RefreshToken == "" {
		// the old single-use token is consumed, nothing left to retry with
		s.markInvalid(c, credential, "token endpoint returned an incomplete token pair", now)
		return myerrors.NewInternalError(fmt.Errorf("token endpoint returned an incomplete token pair"))
	}

	if s.encryptor.HashForComparison(tokenResp.RefreshToken) == s.encryptor.HashForComparison(refreshTokenValue) {
		s.logger.Log(c, credentialUID, mylog.SeverityWarn, "Token endpoint did not rotate the refresh token of credential %s", credentialUID)
	}

	encryptedAccessToken, encryptedRefreshToken, err := s.encryptTokenPair(tokenResp.AccessToken, tokenResp.RefreshToken)
	if err != nil {
		return err
	}

	err = s.credStore.RunInTransaction(c, func(c context.Context) error {
		credential, exists, err := s.credStore.FindByUID(c, credentialUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
		}
		if !exists {
			return myerrors.NewNotFoundError(fmt.Errorf("credential with uid %s not found", credentialUID))
		}

		// both tokens are replaced together or not at all
		credential.EncryptedAccessToken = encryptedAccessToken
		credential.EncryptedRefreshToken = encryptedRefreshToken
		credential.AccessTokenIssuedAt = now
		credential.AccessTokenExpiresAt = now.Add(cappedAccessTokenLifetime(tokenResp.ExpiresIn))
		credential.RefreshTokenExpiresAt = now.Add(refreshTokenLifetime)
		credential.IsValid = true
		credential.LastValidationError = ""
		credential.LastValidatedAt = &now
		credential.LastModified = &now

		err = s.credStore.Save(c, credential)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing credential: %s", err))
		}

		err = s.publisher.Publish(c, mercadoevents.TopicName, mercadoevents.MercadoTokenRefreshed{
			UserUID:       credential.UserUID,
			CredentialUID: credential.UID,
			SiteID:        credential.SiteID,
			TokenDigest:   s.encryptor.HashForComparison(tokenResp.RefreshToken),
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Log(c, credentialUID, mylog.SeverityInfo, "Refreshed tokens of credential %s", credentialUID)

	return nil
}

func (s *service) markInvalid(c context.Context, credential credstore.Credential, reason string, now time.Time) {
	err := s.credStore.UpdateValidationStatus(c, credential.UID, false, reason, now)
	if err != nil {
		s.logger.Log(c, credential.UID, mylog.SeverityError, "Error marking credential %s invalid: %s", credential.UID, err)
	}

	err = s.publisher.Publish(c, mercadoevents.TopicName, mercadoevents.MercadoTokenRefreshFailed{
		UserUID:       credential.UserUID,
		CredentialUID: credential.UID,
		SiteID:        credential.SiteID,
		ErrorMessage:  reason,
	})
	if err != nil {
		s.logger.Log(c, credential.UID, mylog.SeverityError, "Error publishing event: %s", err)
	}
}

func (s *service) getStatus(c context.Context, userUID string) (ConnectionStatus, error) {
	credential, exists, err := s.credStore.FindByUserUID(c, userUID)
	if err != nil {
		return ConnectionStatus{}, myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}

	return credentialToStatus(credential, exists, s.nower.Now()), nil
}

// validate performs a live check against the marketplace: it proves the
// stored access token is really accepted. Tokens are never modified here.
func (s *service) validate(c context.Context, userUID string) (ConnectionStatus, error) {
	now := s.nower.Now()

	credential, exists, err := s.credStore.FindByUserUID(c, userUID)
	if err != nil {
		return ConnectionStatus{}, myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}
	if !exists || !credential.IsConnected() || credential.AccessTokenExpired(now) {
		return credentialToStatus(credential, exists, now), nil
	}

	accessToken, err := s.encryptor.Decrypt(credential.EncryptedAccessToken)
	if err != nil {
		return ConnectionStatus{}, myerrors.NewInternalError(fmt.Errorf("error decrypting access token: %s", err))
	}

	_, err = s.client.GetUserInfo(c, accessToken)
	if err != nil {
		s.logger.Log(c, credential.UID, mylog.SeverityWarn, "Live validation of credential %s failed: %s", credential.UID, err)
		err = s.credStore.UpdateValidationStatus(c, credential.UID, false, fmt.Sprintf("rejected by marketplace: %s", err), now)
	} else {
		err = s.credStore.UpdateValidationStatus(c, credential.UID, true, "", now)
	}
	if err != nil {
		return ConnectionStatus{}, myerrors.NewInternalError(fmt.Errorf("error storing validation result: %s", err))
	}

	credential, exists, err = s.credStore.FindByUserUID(c, userUID)
	if err != nil {
		return ConnectionStatus{}, myerrors.NewInternalError(fmt.Errorf("error fetching credential: %s", err))
	}

	return credentialToStatus(credential, exists, now), nil
}

func (s *service) disconnect(c context.Context, userUID string) (bool, error) {
	s.logger.Log(c, userUID, mylog.SeverityInfo, "Disconnect user %s", userUID)

	credential, existed, err := s.credStore.DeleteByUserUID(c, userUID)
	if err != nil {
		return false, myerrors.NewInternalError(fmt.Errorf("error deleting credential: %s", err))
	}
	if !existed {
		// disconnecting an unlinked user is a no-op
		return false, nil
	}
	s.releaseLock(credential.UID)

	err = s.publisher.Publish(c, mercadoevents.TopicName, mercadoevents.MercadoAccountDisconnected{
		UserUID:    userUID,
		MeliUserID: credential.MeliUserID,
		SiteID:     credential.SiteID,
	})
	if err != nil {
		return true, myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
	}

	return true, nil
}

func (s *service) getCategories(c context.Context, siteID string) ([]mercadoclient.Category, error) {
	return s.client.GetCategories(c, siteID)
}

func (s *service) encryptTokenPair(accessToken string, refreshTokenValue string) (string, string, error) {
	encryptedAccessToken, err := s.encryptor.Encrypt(accessToken)
	if err != nil {
		return "", "", myerrors.NewInternalError(fmt.Errorf("error encrypting access token: %s", err))
	}

	encryptedRefreshToken, err := s.encryptor.Encrypt(refreshTokenValue)
	if err != nil {
		return "", "", myerrors.NewInternalError(fmt.Errorf("error encrypting refresh token: %s", err))
	}

	return encryptedAccessToken, encryptedRefreshToken, nil
}

func (s *service) lockForCredential(credentialUID string) *sync.Mutex {
	s.refreshMutex.Lock()
	defer s.refreshMutex.Unlock()

	lock, found := s.refreshLocks[credentialUID]
	if !found {
		lock = &sync.Mutex{}
		s.refreshLocks[credentialUID] = lock
	}

	return lock
}

// releaseLock drops the per-credential mutex so the map does not grow
// with credential churn.
func (s *service) releaseLock(credentialUID string) {
	s.refreshMutex.Lock()
	defer s.refreshMutex.Unlock()

	delete(s.refreshLocks, credentialUID)
}

func cappedAccessTokenLifetime(expiresInSeconds int) time.Duration {
	lifetime := time.Duration(expiresInSeconds) * time.Second
	if lifetime <= 0 || lifetime > credstore.MaxAccessTokenLifetime {
		// an implausible expires_in must never produce a valid credential
		// with an already-expired token
		lifetime = credstore.MaxAccessTokenLifetime
	}

	return lifetime
}

func createCallbackURL(hostname string) string {
	return fmt.Sprintf("%s/mercado/callback", hostname)
}
