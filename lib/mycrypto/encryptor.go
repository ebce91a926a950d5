package mycrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize         = 16
	nonceSize        = 12
	derivedKeySize   = 32
	pbkdf2Iterations = 100000

	MinMasterKeyLength = 32

	// Only used outside production, see NewFromEnv
	developmentMasterKey = "insecure-development-only-master-key-42"
)

type aesGcmEncryptor struct {
	masterKey []byte
}

func New(masterKey string) (*aesGcmEncryptor, error) {
	if len(masterKey) < MinMasterKeyLength {
		return nil, fmt.Errorf("master key must be at least %d characters, got %d", MinMasterKeyLength, len(masterKey))
	}

	return &aesGcmEncryptor{
		masterKey: []byte(masterKey),
	}, nil
}

// NewFromEnv reads the master key from TOKEN_ENCRYPTION_KEY. Running in
// production (APP_ENV=production) without a proper key is a startup error;
// anywhere else a fixed development key is used as fallback.
func NewFromEnv() (*aesGcmEncryptor, error) {
	masterKey := os.Getenv("TOKEN_ENCRYPTION_KEY")

	if os.Getenv("APP_ENV") == "production" {
		if masterKey == "" {
			return nil, fmt.Errorf("TOKEN_ENCRYPTION_KEY is mandatory in production")
		}
		return New(masterKey)
	}

	if masterKey == "" {
		masterKey = developmentMasterKey
	}

	return New(masterKey)
}

// Encrypt derives a fresh key from the master key with a random salt and
// seals the plaintext with AES-256-GCM. The result is
// base64(salt | nonce | ciphertext-with-tag): one opaque string.
func (e *aesGcmEncryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("refusing to encrypt empty plaintext")
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("error generating salt: %s", err)
	}

	aead, err := e.newAEAD(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("error generating nonce: %s", err)
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

func (e *aesGcmEncryptor) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: not base64", ErrDecryptionFailed)
	}

	// an AES-GCM auth tag is 16 bytes, so this is the minimum sensible size
	if len(raw) < saltSize+nonceSize+16 {
		return "", fmt.Errorf("%w: blob too short", ErrDecryptionFailed)
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	ciphertext := raw[saltSize+nonceSize:]

	aead, err := e.newAEAD(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication tag mismatch", ErrDecryptionFailed)
	}

	return string(plaintext), nil
}

// HashForComparison returns a one-way digest so secrets can be compared or
// referred to in logs without ever exposing the plaintext.
func (e *aesGcmEncryptor) HashForComparison(value string) string {
	digest := sha256.Sum256([]byte(value))
	return hex.EncodeToString(digest[:])
}

func (e *aesGcmEncryptor) newAEAD(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(e.masterKey, salt, pbkdf2Iterations, derivedKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("error creating cipher: %s", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("error creating aead: %s", err)
	}

	return aead, nil
}
