// Package keystore seals wallet secret keys at rest.
// The master key is derived from a key file with scrypt and applied
// with nacl secretbox, ciphertext layout is salt || nonce || box.
package keystore

import (
	"crypto/rand"
	"errors"
	"io/ioutil"
	"strings"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// keystore errors
var (
	ErrNotUnlocked    = errors.New("keystore is not unlocked")
	ErrWrongSecret    = errors.New("open sealed secret failed")
	ErrShortCipherTxt = errors.New("sealed secret is too short")
)

var masterSecret []byte

// LoadKeyFile load the master secret from the key file
func LoadKeyFile(path string) error {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	secret := strings.TrimSpace(string(content))
	if secret == "" {
		return errors.New("empty keystore file")
	}
	masterSecret = []byte(secret)
	return nil
}

// Seal encrypt a wallet secret key for storage
func Seal(plain []byte) ([]byte, error) {
	if masterSecret == nil {
		return nil, ErrNotUnlocked
	}
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, err
	}
	key, err := deriveKey(salt)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plain, &nonce, key), nil
}

// Open decrypt a sealed wallet secret key
func Open(sealed []byte) ([]byte, error) {
	if masterSecret == nil {
		return nil, ErrNotUnlocked
	}
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return nil, ErrShortCipherTxt
	}
	salt := sealed[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])
	key, err := deriveKey(salt)
	if err != nil {
		return nil, err
	}
	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrWrongSecret
	}
	return plain, nil
}

func deriveKey(salt []byte) (*[keySize]byte, error) {
	derived, err := scrypt.Key(masterSecret, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, err
	}
	var key [keySize]byte
	copy(key[:], derived)
	return &key, nil
}
