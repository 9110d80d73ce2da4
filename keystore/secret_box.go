package keystore

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

var (
	ErrCouldNotOpenCipher = errors.New("could not open secret box cipher text")
)

// SecretboxParams define the parameters needed for using secretbox.
type SecretboxParams struct {
	Nonce string `json:"nonce"`
}

func (c *Crypto) secretboxKeys(derivedKey []byte) (*[24]byte, *[32]byte, error) {
	nonce, err := hexDecode(c.CipherParams.Nonce)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid secretbox nonce")
	}

	if len(nonce) != 24 || len(derivedKey) != 32 {
		return nil, nil, errors.New("nonce or derived key were incorrect lengths")
	}

	var nonceArr [24]byte
	copy(nonceArr[:], nonce)

	var keyArr [32]byte
	copy(keyArr[:], derivedKey)

	return &nonceArr, &keyArr, nil
}

// SecretBoxEncrypt seals privateKey with the derived key from a KDF.
func (c *Crypto) SecretBoxEncrypt(privateKey *ecdsa.PrivateKey, derivedKey []byte) error {
	nonce, key, err := c.secretboxKeys(derivedKey)
	if err != nil {
		return err
	}

	c.CipherText = hexEncode(secretbox.Seal(nil, crypto.FromECDSA(privateKey), nonce, key))

	return nil
}

// SecretBoxDecrypt opens the private key with the derived key.
func (c *Crypto) SecretBoxDecrypt(derivedKey []byte) (*ecdsa.PrivateKey, error) {
	if len(c.CipherText) == 0 {
		return nil, errors.New("secretbox cipher text is not set")
	}

	nonce, key, err := c.secretboxKeys(derivedKey)
	if err != nil {
		return nil, err
	}

	cipherText, err := hexDecode(c.CipherText)
	if err != nil {
		return nil, errors.Wrap(err, "invalid secretbox cipher text")
	}

	plain, ok := secretbox.Open(nil, cipherText, nonce, key)
	if !ok {
		return nil, ErrCouldNotOpenCipher
	}

	privateKey, err := crypto.ToECDSA(plain)
	if err != nil {
		return nil, errors.Wrap(err, "decrypted private key is invalid")
	}

	return privateKey, nil
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
