package keystore

import (
	"crypto/ecdsa"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
)

// EncryptedKey is a key file whose private key is sealed with a key
// derived from a password.
type EncryptedKey struct {
	Account     string    `json:"account"`
	Version     int       `json:"version"`
	TimeCreated time.Time `json:"created"`
	Crypto      Crypto    `json:"crypto"`
}

// NewEncryptedKey encrypts privateKey under password with the default
// parameters.
func NewEncryptedKey(privateKey *ecdsa.PrivateKey, password string) (*EncryptedKey, error) {
	return NewEncryptedKeyWithOptions(privateKey, password, CryptoOptions{
		KDFParams: ScryptParams{
			N:      DefaultScryptN,
			R:      DefaultScryptR,
			P:      DefaultScryptP,
			KeyLen: DefaultScryptKeyLen,
		},
	})
}

// NewEncryptedKeyWithOptions overrides the default KDF parameters. A fresh
// salt is generated unless opts carries one.
func NewEncryptedKeyWithOptions(privateKey *ecdsa.PrivateKey, password string, opts CryptoOptions) (*EncryptedKey, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	ek := &EncryptedKey{
		Account:     Account(privateKey),
		Version:     Version,
		TimeCreated: time.Now(),
	}

	if err := ek.Crypto.SetDefaultCipher(); err != nil {
		return nil, err
	}

	if err := ek.Crypto.setKDFParams(opts.KDFParams); err != nil {
		return nil, err
	}

	dk, err := ek.Crypto.DeriveKeyFromPassword(password)
	if err != nil {
		return nil, err
	}

	if err := ek.Crypto.EncryptPrivateKey(privateKey, dk); err != nil {
		return nil, err
	}

	return ek, nil
}

// Decrypt derives the cipher key from password and opens the private key.
func (e *EncryptedKey) Decrypt(password string) (*ecdsa.PrivateKey, error) {
	dk, err := e.Crypto.DeriveKeyFromPassword(password)
	if err != nil {
		return nil, err
	}

	return e.Crypto.DecryptPrivateKey(dk)
}

func (c *Crypto) EncryptPrivateKey(privateKey *ecdsa.PrivateKey, derivedKey []byte) error {
	if c.Cipher != DefaultCipher {
		return errors.Errorf("unsupported cipher %q (secretbox only)", c.Cipher)
	}

	return c.SecretBoxEncrypt(privateKey, derivedKey)
}

func (c *Crypto) DecryptPrivateKey(derivedKey []byte) (*ecdsa.PrivateKey, error) {
	if c.Cipher != DefaultCipher {
		return nil, errors.Errorf("unsupported cipher %q (secretbox only)", c.Cipher)
	}

	return c.SecretBoxDecrypt(derivedKey)
}

func (c *Crypto) DeriveKeyFromPassword(password string) ([]byte, error) {
	if c.KDF != DefaultKDF {
		return nil, errors.Errorf("unsupported key derivation function %q (scrypt only)", c.KDF)
	}

	return c.ScryptKeyFromPassword(password)
}

// WriteToFile writes an encrypted key to disk.
func (e *EncryptedKey) WriteToFile(path string) error {
	buf, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode key")
	}

	return errors.Wrapf(ioutil.WriteFile(path, buf, 0600), "failed to write key file %s", path)
}
