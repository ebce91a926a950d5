package credstore

import (
	"context"
	"time"

	"github.com/MarcGrol/sellerbackend/lib/mystore"
)

//go:generate mockgen -source=api.go -package credstore -destination credstore_mock.go CredentialStore
type CredentialStore interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Save(c context.Context, credential Credential) error
	FindByUID(c context.Context, credentialUID string) (Credential, bool, error)
	FindByUserUID(c context.Context, userUID string) (Credential, bool, error)
	FindByMeliUserID(c context.Context, meliUserID int64) (Credential, bool, error)
	DeleteByUserUID(c context.Context, userUID string) (Credential, bool, error)
	FindExpiringTokens(c context.Context, dueBefore time.Time) ([]Credential, error)
	FindInvalidCredentials(c context.Context) ([]Credential, error)
	UpdateValidationStatus(c context.Context, credentialUID string, isValid bool, validationError string, at time.Time) error
	ClearFlowData(c context.Context, credentialUID string) error
}

func New(c context.Context) (CredentialStore, func(), error) {
	store, cleanup, err := mystore.New[Credential](c)
	if err != nil {
		return nil, nil, err
	}

	return newCredentialStore(store), cleanup, nil
}
