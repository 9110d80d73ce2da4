package keystore

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// ScryptParams are the scrypt KDF parameters. Salt is hex encoded.
type ScryptParams struct {
	N      int    `json:"n"`
	R      int    `json:"r"`
	P      int    `json:"p"`
	KeyLen int    `json:"keyLen"`
	Salt   string `json:"salt"`
}

// ScryptKeyFromPassword derives the cipher key from password.
func (c *Crypto) ScryptKeyFromPassword(password string) ([]byte, error) {
	params := c.KDFParams
	if params.Salt == "" {
		return nil, errors.New("scrypt KDF parameters are missing a salt")
	}

	salt, err := hexDecode(params.Salt)
	if err != nil {
		return nil, errors.Wrap(err, "invalid scrypt salt")
	}

	dk, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.KeyLen)
	if err != nil {
		return nil, errors.Wrap(err, "scrypt")
	}

	return dk, nil
}
