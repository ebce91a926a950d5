package credstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/sellerbackend/lib/mystore"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
)

func newTestStore(t *testing.T) (context.Context, CredentialStore) {
	c := context.TODO()
	store, cleanup, err := mystore.NewInMemoryStore[Credential](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	return c, newCredentialStore(store)
}

func connectedCredential(uid string, userUID string, expiresAt time.Time) Credential {
	return Credential{
		UID:                   uid,
		UserUID:               userUID,
		SiteID:                "MLA",
		MeliUserID:            123456,
		Nickname:              "TESTSELLER",
		EncryptedAccessToken:  "encrypted-access-token",
		EncryptedRefreshToken: "encrypted-refresh-token",
		AccessTokenIssuedAt:   expiresAt.Add(-MaxAccessTokenLifetime),
		AccessTokenExpiresAt:  expiresAt,
		RefreshTokenExpiresAt: expiresAt.Add(180 * 24 * time.Hour),
		IsValid:               true,
		CreatedAt:             mytime.ExampleTime,
	}
}

func TestSaveAndFind(t *testing.T) {
	c, store := newTestStore(t)

	credential := connectedCredential("cred-1", "user-1", mytime.ExampleTime.Add(6*time.Hour))
	err := store.Save(c, credential)
	assert.NoError(t, err)

	found, exists, err := store.FindByUID(c, "cred-1")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "user-1", found.UserUID)

	found, exists, err = store.FindByUserUID(c, "user-1")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "cred-1", found.UID)

	found, exists, err = store.FindByMeliUserID(c, 123456)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "cred-1", found.UID)

	_, exists, err = store.FindByUserUID(c, "user-2")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveWithoutUID(t *testing.T) {
	c, store := newTestStore(t)

	err := store.Save(c, Credential{UserUID: "user-1"})
	assert.Error(t, err)
}

func TestDeleteByUserUID(t *testing.T) {
	c, store := newTestStore(t)

	err := store.Save(c, connectedCredential("cred-1", "user-1", mytime.ExampleTime.Add(6*time.Hour)))
	assert.NoError(t, err)

	deleted, existed, err := store.DeleteByUserUID(c, "user-1")
	assert.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, "cred-1", deleted.UID)

	_, exists, err := store.FindByUID(c, "cred-1")
	assert.NoError(t, err)
	assert.False(t, exists)

	// deleting again is a no-op
	_, existed, err = store.DeleteByUserUID(c, "user-1")
	assert.NoError(t, err)
	assert.False(t, existed)
}

func TestFindExpiringTokens(t *testing.T) {
	c, store := newTestStore(t)
	now := mytime.ExampleTime

	// refresh due 30 mins before expiry
	dueSoon := connectedCredential("cred-due", "user-due", now.Add(20*time.Minute))
	notDue := connectedCredential("cred-later", "user-later", now.Add(5*time.Hour))
	invalid := connectedCredential("cred-invalid", "user-invalid", now.Add(20*time.Minute))
	invalid.IsValid = false
	pending := Credential{
		UID:               "cred-pending",
		UserUID:           "user-pending",
		SiteID:            "MLA",
		PkceCodeChallenge: "challenge",
		CreatedAt:         now,
	}

	for _, credential := range []Credential{dueSoon, notDue, invalid, pending} {
		err := store.Save(c, credential)
		assert.NoError(t, err)
	}

	expiring, err := store.FindExpiringTokens(c, now)
	assert.NoError(t, err)
	assert.Len(t, expiring, 1)
	assert.Equal(t, "cred-due", expiring[0].UID)
}

func TestFindInvalidCredentials(t *testing.T) {
	c, store := newTestStore(t)
	now := mytime.ExampleTime

	valid := connectedCredential("cred-valid", "user-valid", now.Add(6*time.Hour))
	invalid := connectedCredential("cred-invalid", "user-invalid", now.Add(6*time.Hour))
	invalid.IsValid = false
	pending := Credential{
		UID:               "cred-pending",
		UserUID:           "user-pending",
		PkceCodeChallenge: "challenge",
	}

	for _, credential := range []Credential{valid, invalid, pending} {
		err := store.Save(c, credential)
		assert.NoError(t, err)
	}

	found, err := store.FindInvalidCredentials(c)
	assert.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, "cred-invalid", found[0].UID)
}

func TestUpdateValidationStatus(t *testing.T) {
	c, store := newTestStore(t)
	now := mytime.ExampleTime

	err := store.Save(c, connectedCredential("cred-1", "user-1", now.Add(6*time.Hour)))
	assert.NoError(t, err)

	err = store.UpdateValidationStatus(c, "cred-1", false, "refresh rejected by token endpoint", now)
	assert.NoError(t, err)

	found, exists, err := store.FindByUID(c, "cred-1")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, found.IsValid)
	assert.Equal(t, "refresh rejected by token endpoint", found.LastValidationError)
	assert.Equal(t, now, *found.LastValidatedAt)

	err = store.UpdateValidationStatus(c, "cred-unknown", true, "", now)
	assert.Error(t, err)
}

func TestClearFlowData(t *testing.T) {
	c, store := newTestStore(t)

	credential := connectedCredential("cred-1", "user-1", mytime.ExampleTime.Add(6*time.Hour))
	credential.PkceCodeChallenge = "challenge"
	credential.EncryptedPkceCodeVerifier = "encrypted-verifier"
	credential.RedirectURI = "https://app.example/cb"
	err := store.Save(c, credential)
	assert.NoError(t, err)

	err = store.ClearFlowData(c, "cred-1")
	assert.NoError(t, err)

	found, _, err := store.FindByUID(c, "cred-1")
	assert.NoError(t, err)
	assert.Empty(t, found.PkceCodeChallenge)
	assert.Empty(t, found.EncryptedPkceCodeVerifier)
	assert.Empty(t, found.RedirectURI)

	// unknown credential is a no-op
	err = store.ClearFlowData(c, "cred-unknown")
	assert.NoError(t, err)
}
