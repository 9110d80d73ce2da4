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
	"context"
	"crypto/ecdsa"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/perlin-network/votedeploy/artifact"
	"github.com/perlin-network/votedeploy/conf"
	"github.com/perlin-network/votedeploy/deploy"
	"github.com/perlin-network/votedeploy/evm"
	"github.com/perlin-network/votedeploy/history"
	"github.com/perlin-network/votedeploy/keystore"
	"github.com/perlin-network/votedeploy/log"
	"github.com/perlin-network/votedeploy/store"
	"github.com/perlin-network/votedeploy/sys"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func deployAction(c *cli.Context) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := loadRegistry(conf.GetArtifactsDir())

	key, err := loadKey()
	if err != nil {
		return err
	}

	client, chainID, err := evm.Dial(ctx, conf.GetRPCURL())
	if err != nil {
		return err
	}
	defer client.Close()

	if expected := conf.GetChainID(); expected != 0 && chainID.Uint64() != expected {
		return errors.Errorf("endpoint %s serves chain %s, expected %d", conf.GetRPCURL(), chainID, expected)
	}

	provider := evm.NewProvider(registry, client, key, chainID,
		evm.WithGasLimit(conf.GetGasLimit()),
		evm.WithPollInterval(conf.GetPollInterval()),
	)

	logger := log.Deploy("")
	logger.Info().
		Str("from", provider.From()).
		Str("chain_id", chainID.String()).
		Int("templates", registry.Len()).
		Msg("Ready to deploy.")

	return execute(ctx, c.App.Writer, provider, chainID.Uint64())
}

// execute runs a single deployment through provider and prints where the
// contract landed.
func execute(ctx context.Context, stdout io.Writer, provider deploy.Provider, chainID uint64) error {
	template := conf.GetTemplate()

	opts := []deploy.RunnerOption{
		deploy.WithTemplate(template),
		deploy.WithCandidates(conf.GetCandidates()),
		deploy.WithConfirmTimeout(conf.GetConfirmTimeout()),
	}

	if dir := conf.GetDBDir(); dir != "" {
		kv, err := store.NewLevelDB(dir)
		if err != nil {
			return err
		}
		defer kv.Close()

		opts = append(opts, deploy.WithRecorder(history.New(kv, chainID)))
	}

	logger := log.Deploy("")
	logger.Info().Msgf("Deploying %s...", template)

	result, err := deploy.NewRunner(provider, opts...).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s deployed to: %s\n", template, result.Receipt.Address)

	return nil
}

// loadRegistry loads every artifact it can. Broken or missing artifacts
// are only reported; whether the wanted template is among the loaded ones is
// decided by the lookup step of the deployment.
func loadRegistry(dir string) *artifact.Registry {
	registry := artifact.NewRegistry()

	n, err := registry.LoadDir(dir)
	if err != nil {
		logger := log.Artifact()
		logger.Warn().Err(err).Str("dir", dir).Int("loaded", n).Msg("Some contract artifacts could not be loaded.")
	}

	return registry
}

// loadKey picks the deployer key: an explicit hex key, then a key file,
// then the well known local development key.
func loadKey() (*ecdsa.PrivateKey, error) {
	if hex := conf.GetPrivateKey(); hex != "" {
		return keystore.FromHex(hex)
	}

	if path, password := conf.GetKeyFile(); path != "" {
		return keystore.Load(path, password)
	}

	key, err := keystore.FromHex(sys.DevPrivateKey)
	if err != nil {
		return nil, err
	}

	logger := log.Keystore()
	logger.Warn().
		Str("account", keystore.Account(key)).
		Msg("No deployer key configured, using the public local development key. Never use it on a real network.")

	return key, nil
}
