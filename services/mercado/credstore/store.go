package credstore

import (
	"context"
	"fmt"
	"time"

	"github.com/MarcGrol/sellerbackend/lib/mystore"
)

type credentialStore struct {
	store mystore.Store[Credential]
}

func newCredentialStore(store mystore.Store[Credential]) *credentialStore {
	return &credentialStore{
		store: store,
	}
}

func (cs *credentialStore) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	return cs.store.RunInTransaction(c, f)
}

func (cs *credentialStore) Save(c context.Context, credential Credential) error {
	if credential.UID == "" {
		return fmt.Errorf("credential without uid")
	}

	return cs.store.Put(c, credential.UID, credential)
}

func (cs *credentialStore) FindByUID(c context.Context, credentialUID string) (Credential, bool, error) {
	return cs.store.Get(c, credentialUID)
}

func (cs *credentialStore) FindByUserUID(c context.Context, userUID string) (Credential, bool, error) {
	credentials, err := cs.store.Query(c, []mystore.Filter{
		{Field: "UserUID", Compare: "=", Value: userUID},
	}, "")
	if err != nil {
		return Credential{}, false, err
	}
	if len(credentials) == 0 {
		return Credential{}, false, nil
	}

	return credentials[0], true, nil
}

func (cs *credentialStore) FindByMeliUserID(c context.Context, meliUserID int64) (Credential, bool, error) {
	credentials, err := cs.store.Query(c, []mystore.Filter{
		{Field: "MeliUserID", Compare: "=", Value: meliUserID},
	}, "")
	if err != nil {
		return Credential{}, false, err
	}
	if len(credentials) == 0 {
		return Credential{}, false, nil
	}

	return credentials[0], true, nil
}

func (cs *credentialStore) DeleteByUserUID(c context.Context, userUID string) (Credential, bool, error) {
	deleted := Credential{}
	existed := false

	err := cs.store.RunInTransaction(c, func(c context.Context) error {
		credential, exists, err := cs.FindByUserUID(c, userUID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		err = cs.store.Remove(c, credential.UID)
		if err != nil {
			return err
		}

		deleted = credential
		existed = true

		return nil
	})
	if err != nil {
		return Credential{}, false, err
	}

	return deleted, existed, nil
}

// FindExpiringTokens returns connected, valid credentials whose refresh
// moment falls before the given deadline. The datastore filter is on the
// raw expiry, the exact refresh moment is derived per credential.
func (cs *credentialStore) FindExpiringTokens(c context.Context, dueBefore time.Time) ([]Credential, error) {
	candidates, err := cs.store.Query(c, []mystore.Filter{
		{Field: "AccessTokenExpiresAt", Compare: "<", Value: dueBefore.Add(maxRefreshMargin)},
	}, "AccessTokenExpiresAt")
	if err != nil {
		return nil, err
	}

	expiring := []Credential{}
	for _, credential := range candidates {
		if !credential.IsConnected() || !credential.IsValid {
			continue
		}
		if credential.RefreshDueAt().Before(dueBefore) {
			expiring = append(expiring, credential)
		}
	}

	return expiring, nil
}

func (cs *credentialStore) FindInvalidCredentials(c context.Context) ([]Credential, error) {
	candidates, err := cs.store.Query(c, []mystore.Filter{
		{Field: "IsValid", Compare: "=", Value: false},
	}, "")
	if err != nil {
		return nil, err
	}

	invalid := []Credential{}
	for _, credential := range candidates {
		if credential.IsConnected() {
			invalid = append(invalid, credential)
		}
	}

	return invalid, nil
}

func (cs *credentialStore) UpdateValidationStatus(c context.Context, credentialUID string, isValid bool, validationError string, at time.Time) error {
	return cs.store.RunInTransaction(c, func(c context.Context) error {
		credential, exists, err := cs.store.Get(c, credentialUID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("credential with uid %s not found", credentialUID)
		}

		credential.IsValid = isValid
		credential.LastValidationError = validationError
		credential.LastValidatedAt = &at
		credential.LastModified = &at

		return cs.store.Put(c, credential.UID, credential)
	})
}

// ClearFlowData drops the transient PKCE parameters once an authorization
// flow has completed or been abandoned.
func (cs *credentialStore) ClearFlowData(c context.Context, credentialUID string) error {
	return cs.store.RunInTransaction(c, func(c context.Context) error {
		credential, exists, err := cs.store.Get(c, credentialUID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		credential.PkceCodeChallenge = ""
		credential.EncryptedPkceCodeVerifier = ""
		credential.RedirectURI = ""
		credential.ReturnURL = ""

		return cs.store.Put(c, credential.UID, credential)
	})
}
