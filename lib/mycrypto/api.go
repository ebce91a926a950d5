package mycrypto

import (
	"errors"
)

// ErrDecryptionFailed indicates a malformed or tampered blob. The original
// plaintext is never partially returned.
var ErrDecryptionFailed = errors.New("decryption failed")

//go:generate mockgen -source=api.go -package mycrypto -destination encryptor_mock.go Encryptor
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
	HashForComparison(value string) string
}

// ReEncrypt decrypts a blob under the old key and encrypts it under the new
// one. When anything fails the original blob is returned untouched, so a
// partially rotated secret can never be observed.
func ReEncrypt(oldEncryptor Encryptor, newEncryptor Encryptor, blob string) (string, error) {
	plaintext, err := oldEncryptor.Decrypt(blob)
	if err != nil {
		return blob, err
	}

	reEncrypted, err := newEncryptor.Encrypt(plaintext)
	if err != nil {
		return blob, err
	}

	return reEncrypted, nil
}
