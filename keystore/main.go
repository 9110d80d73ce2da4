// Package keystore reads and writes the deployer's private key, either as
// a hex string, a plain text key file or a password encrypted key file.
package keystore

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/json"
	"io"
	"io/ioutil"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/perlin-network/votedeploy/log"
	"github.com/pkg/errors"
)

const (
	// Version identifies what keystore version was used on the file.
	Version int = 1

	// DefaultKDF is the default KDF (scrypt)
	DefaultKDF = "scrypt"
	// DefaultCipher is the default cipher (secretbox)
	DefaultCipher = "secretbox"

	DefaultScryptN      int = 262144
	DefaultScryptP      int = 1
	DefaultScryptR      int = 8
	DefaultScryptKeyLen int = 32
	DefaultSaltLen      int = 32
)

var (
	ErrUnsupportedKeyFile = errors.New("unsupported key file")
	ErrPasswordRequired   = errors.New("key file is encrypted, a password is required")
)

// Crypto contains all of the parameters for the cipher and KDF.
type Crypto struct {
	Cipher       string          `json:"cipher"`
	CipherText   string          `json:"cipherText"`
	CipherParams SecretboxParams `json:"cipherParams"`
	KDF          string          `json:"kdf"`
	KDFParams    ScryptParams    `json:"kdfParams"`
}

// CryptoOptions allows the crypto parameters to be manually set.
type CryptoOptions struct {
	KDFParams ScryptParams
}

// SetDefaultKDFParams sets the KDF params to the defaults with a fresh salt.
func (c *Crypto) SetDefaultKDFParams() error {
	return c.setKDFParams(ScryptParams{
		N:      DefaultScryptN,
		R:      DefaultScryptR,
		P:      DefaultScryptP,
		KeyLen: DefaultScryptKeyLen,
	})
}

func (c *Crypto) setKDFParams(params ScryptParams) error {
	if params.Salt == "" {
		salt, err := NewRandomSalt(DefaultSaltLen)
		if err != nil {
			return err
		}
		params.Salt = hexEncode(salt)
	}

	c.KDF = DefaultKDF
	c.KDFParams = params

	return nil
}

// SetDefaultCipher sets the cipher params to the defaults with a fresh nonce.
func (c *Crypto) SetDefaultCipher() error {
	nonce, err := NewRandomNonce()
	if err != nil {
		return err
	}

	c.Cipher = DefaultCipher
	c.CipherParams = SecretboxParams{Nonce: hexEncode(nonce[:])}

	return nil
}

// NewRandomSalt generates a random salt from the rand.Reader.
func NewRandomSalt(len int) ([]byte, error) {
	salt := make([]byte, len)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	return salt, nil
}

// NewRandomNonce generates a nonce from rand.Reader.
func NewRandomNonce() ([24]byte, error) {
	var nonce [24]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return [24]byte{}, errors.Wrap(err, "failed to generate nonce")
	}

	return nonce, nil
}

// Write persists a plain text or encrypted key.
func Write(path string, keyStruct interface{}) error {
	switch k := keyStruct.(type) {
	case *PlainTextKey:
		return k.WriteToFile(path)
	case *EncryptedKey:
		return k.WriteToFile(path)
	}

	return errors.Errorf("unsupported key struct %T", keyStruct)
}

// Load reads a private key from path. The file may hold a bare hex key, a
// plain text key file or an encrypted key file, which needs password.
func Load(path string, password string) (*ecdsa.PrivateKey, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read key file %s", path)
	}

	buf = bytes.TrimSpace(buf)

	logger := log.Keystore()

	if len(buf) == 0 || buf[0] != '{' {
		key, err := FromHex(string(buf))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read key file %s", path)
		}

		logger.Debug().Str("path", path).Str("format", "hex").Msg("Loaded private key.")

		return key, nil
	}

	var probe struct {
		PrivateKey string          `json:"privateKey"`
		Crypto     json.RawMessage `json:"crypto"`
	}

	if err := json.Unmarshal(buf, &probe); err != nil {
		return nil, errors.Wrapf(err, "failed to decode key file %s", path)
	}

	var key *ecdsa.PrivateKey

	switch {
	case len(probe.Crypto) > 0:
		if password == "" {
			return nil, errors.Wrap(ErrPasswordRequired, path)
		}

		var ek EncryptedKey
		if err := json.Unmarshal(buf, &ek); err != nil {
			return nil, errors.Wrapf(err, "failed to decode key file %s", path)
		}

		if key, err = ek.Decrypt(password); err != nil {
			return nil, errors.Wrapf(err, "failed to decrypt key file %s", path)
		}

		logger.Debug().Str("path", path).Str("format", "encrypted").Str("account", ek.Account).Msg("Loaded private key.")
	case probe.PrivateKey != "":
		pt := PlainTextKey{PrivateKey: probe.PrivateKey}
		if key, err = pt.ExtractFromPlainTextKey(); err != nil {
			return nil, errors.Wrapf(err, "failed to read key file %s", path)
		}

		logger.Debug().Str("path", path).Str("format", "plain").Msg("Loaded private key.")
	default:
		return nil, errors.Wrap(ErrUnsupportedKeyFile, path)
	}

	return key, nil
}

// FromHex parses a hex encoded secp256k1 private key. The 0x prefix is
// optional.
func FromHex(s string) (*ecdsa.PrivateKey, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")

	key, err := crypto.HexToECDSA(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}

	return key, nil
}

// Account is the checksummed address of key.
func Account(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}
