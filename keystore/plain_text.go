package keystore

import (
	"crypto/ecdsa"
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// PlainTextKey is an unencrypted key file.
type PlainTextKey struct {
	Account     string    `json:"account"`
	Version     int       `json:"version"`
	TimeCreated time.Time `json:"created"`
	PrivateKey  string    `json:"privateKey"`
}

// NewPlainTextKey generates a new plain text key struct.
func NewPlainTextKey(privateKey *ecdsa.PrivateKey) *PlainTextKey {
	return &PlainTextKey{
		Account:     Account(privateKey),
		Version:     Version,
		TimeCreated: time.Now(),
		PrivateKey:  hexEncode(crypto.FromECDSA(privateKey)),
	}
}

// ExtractFromPlainTextKey takes a plain text struct and pulls out the private key.
func (pt *PlainTextKey) ExtractFromPlainTextKey() (*ecdsa.PrivateKey, error) {
	return FromHex(pt.PrivateKey)
}

// WriteToFile writes a plain text struct to disk (json).
func (pt *PlainTextKey) WriteToFile(path string) error {
	buf, err := json.MarshalIndent(pt, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode key")
	}

	return errors.Wrapf(ioutil.WriteFile(path, buf, 0600), "failed to write key file %s", path)
}
