// Copyright (c) 2019 Perlin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/perlin-network/votedeploy/conf"
	"github.com/perlin-network/votedeploy/keystore"
	"github.com/perlin-network/votedeploy/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func newAccountAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("account new expects a FILE argument")
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return errors.Wrap(err, "failed to generate key")
	}

	_, password := conf.GetKeyFile()

	var keyFile interface{}

	if password != "" {
		if keyFile, err = keystore.NewEncryptedKey(key, password); err != nil {
			return err
		}
	} else {
		keyFile = keystore.NewPlainTextKey(key)

		logger := log.Keystore()
		logger.Warn().Str("path", path).Msg("No --password given, the key file is stored unencrypted.")
	}

	if err := keystore.Write(path, keyFile); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "%s\n", keystore.Account(key))

	return nil
}
