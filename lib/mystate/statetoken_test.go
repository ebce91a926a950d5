package mystate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/sellerbackend/lib/mytime"
)

const (
	testSecret      = "test-state-secret"
	testUserUID     = "user-123"
	testRedirectURI = "https://app.example/cb"
)

func TestIssueAndValidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	tokener := New(testSecret, nower)

	token := tokener.Issue(testUserUID, testRedirectURI)
	assert.NotEmpty(t, token)

	assert.True(t, tokener.Validate(token, testUserUID, testRedirectURI))
}

func TestValidateRejectsOtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	tokener := New(testSecret, nower)
	token := tokener.Issue(testUserUID, testRedirectURI)

	assert.False(t, tokener.Validate(token, "user-456", testRedirectURI))
}

func TestValidateRejectsOtherBindingData(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	tokener := New(testSecret, nower)
	token := tokener.Issue(testUserUID, testRedirectURI)

	assert.False(t, tokener.Validate(token, testUserUID, "https://evil.example/cb"))
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	tokener := New(testSecret, nower)

	nower.EXPECT().Now().Return(mytime.ExampleTime)
	token := tokener.Issue(testUserUID, testRedirectURI)

	// just within the window
	nower.EXPECT().Now().Return(mytime.ExampleTime.Add(DefaultExpiry))
	assert.True(t, tokener.Validate(token, testUserUID, testRedirectURI))

	// just past the window
	nower.EXPECT().Now().Return(mytime.ExampleTime.Add(DefaultExpiry + time.Second))
	assert.False(t, tokener.Validate(token, testUserUID, testRedirectURI))
}

func TestValidateRejectsTokenFromTheFuture(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	tokener := New(testSecret, nower)

	nower.EXPECT().Now().Return(mytime.ExampleTime.Add(time.Hour))
	token := tokener.Issue(testUserUID, testRedirectURI)

	nower.EXPECT().Now().Return(mytime.ExampleTime)
	assert.False(t, tokener.Validate(token, testUserUID, testRedirectURI))
}

func TestValidateRejectsForgedToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	tokener := New(testSecret, nower)
	otherTokener := New("other-secret", nower)

	forged := otherTokener.Issue(testUserUID, testRedirectURI)
	assert.False(t, tokener.Validate(forged, testUserUID, testRedirectURI))

	assert.False(t, tokener.Validate("garbage", testUserUID, testRedirectURI))
	assert.False(t, tokener.Validate("", testUserUID, testRedirectURI))
}

func TestBindingDataWithColons(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	tokener := New(testSecret, nower)

	binding := "https://app.example:8443/cb?x=1:2:3"
	token := tokener.Issue(testUserUID, binding)
	assert.True(t, tokener.Validate(token, testUserUID, binding))
}
