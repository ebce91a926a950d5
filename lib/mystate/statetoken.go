package mystate

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarcGrol/sellerbackend/lib/mytime"
)

const (
	DefaultExpiry = 300 * time.Second
)

// StateTokener issues and validates the opaque OAuth 'state' parameter.
// A token is bound to the initiating user and to caller-provided binding
// data (the redirect URI), so a callback forged for another user or
// another destination is rejected.
//
//go:generate mockgen -source=statetoken.go -package mystate -destination statetokener_mock.go StateTokener
type StateTokener interface {
	Issue(userUID string, bindingData string) string
	Validate(token string, userUID string, bindingData string) bool
}

type hmacStateTokener struct {
	secret []byte
	nower  mytime.Nower
	expiry time.Duration
}

func New(secret string, nower mytime.Nower) *hmacStateTokener {
	return &hmacStateTokener{
		secret: []byte(secret),
		nower:  nower,
		expiry: DefaultExpiry,
	}
}

func NewWithExpiry(secret string, nower mytime.Nower, expiry time.Duration) *hmacStateTokener {
	tokener := New(secret, nower)
	tokener.expiry = expiry
	return tokener
}

func (s *hmacStateTokener) Issue(userUID string, bindingData string) string {
	payload := fmt.Sprintf("%s:%d:%s", userUID, s.nower.Now().Unix(), bindingData)
	token := fmt.Sprintf("%s:%s", payload, s.sign(payload))

	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

func (s *hmacStateTokener) Validate(token string, userUID string, bindingData string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return false
	}

	// layout: userUID ':' unix-timestamp ':' bindingData ':' signature
	// bindingData itself may contain colons (it typically is a URL)
	decoded := string(raw)
	lastColon := strings.LastIndex(decoded, ":")
	if lastColon < 0 {
		return false
	}
	payload := decoded[:lastColon]
	signature := decoded[lastColon+1:]

	if !hmac.Equal([]byte(signature), []byte(s.sign(payload))) {
		return false
	}

	parts := strings.SplitN(payload, ":", 3)
	if len(parts) != 3 {
		return false
	}
	if parts[0] != userUID || parts[2] != bindingData {
		return false
	}

	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}

	age := s.nower.Now().Unix() - issuedAt
	if age < 0 || age > int64(s.expiry.Seconds()) {
		return false
	}

	return true
}

func (s *hmacStateTokener) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
