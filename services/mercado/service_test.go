package mercado

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/sellerbackend/lib/mycrypto"
	"github.com/MarcGrol/sellerbackend/lib/mypublisher"
	"github.com/MarcGrol/sellerbackend/lib/mystate"
	"github.com/MarcGrol/sellerbackend/lib/mytime"
	"github.com/MarcGrol/sellerbackend/lib/myuuid"
	"github.com/MarcGrol/sellerbackend/services/mercado/credstore"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoclient"
	"github.com/MarcGrol/sellerbackend/services/mercado/mercadoevents"
)

func TestCappedAccessTokenLifetime(t *testing.T) {
	tests := []struct {
		name             string
		expiresInSeconds int
		expected         time.Duration
	}{
		{name: "regular ttl is kept", expiresInSeconds: 3600, expected: time.Hour},
		{name: "ttl is capped at the maximum", expiresInSeconds: 24 * 60 * 60, expected: credstore.MaxAccessTokenLifetime},
		{name: "zero ttl falls back to the maximum", expiresInSeconds: 0, expected: credstore.MaxAccessTokenLifetime},
		{name: "negative ttl falls back to the maximum", expiresInSeconds: -300, expected: credstore.MaxAccessTokenLifetime},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cappedAccessTokenLifetime(tc.expiresInSeconds))
		})
	}
}

func TestDisconnectReleasesRefreshLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := context.TODO()

	credStore, cleanup, err := credstore.New(c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	encryptor, err := mycrypto.New(testMasterKey)
	assert.NoError(t, err)

	client := mercadoclient.NewMockMercadoClient(ctrl)
	nower := mytime.NewMockNower(ctrl)
	uuider := myuuid.NewMockUUIDer(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), mercadoevents.TopicName, gomock.Any()).Return(nil)

	service := newService(credStore, client, encryptor, mystate.New("test-state-secret", nower), publisher, nower, uuider)

	seedConnectedCredential(t, c, credStore, encryptor, mytime.ExampleTime.Add(5*time.Hour))

	service.lockForCredential("cred-123")
	assert.Len(t, service.refreshLocks, 1)

	removed, err := service.disconnect(c, testUserUID)
	assert.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, service.refreshLocks)
}
