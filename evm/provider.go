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

package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/perlin-network/votedeploy/artifact"
	"github.com/perlin-network/votedeploy/deploy"
	"github.com/perlin-network/votedeploy/log"
	"github.com/perlin-network/votedeploy/sys"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type ProviderOption func(p *Provider)

// WithGasLimit fixes the gas limit of creation transactions. Zero lets the
// backend estimate it.
func WithGasLimit(limit uint64) ProviderOption {
	return func(p *Provider) {
		p.gasLimit = limit
	}
}

// WithPollInterval sets how often a pending deployment checks for its
// receipt.
func WithPollInterval(interval time.Duration) ProviderOption {
	return func(p *Provider) {
		if interval > 0 {
			p.pollInterval = interval
		}
	}
}

// Provider serves templates from a registry and deploys them through a
// backend, signing with a single key.
type Provider struct {
	registry *artifact.Registry
	backend  Backend

	key     *ecdsa.PrivateKey
	chainID *big.Int

	gasLimit     uint64
	pollInterval time.Duration

	logger zerolog.Logger
}

var _ deploy.Provider = (*Provider)(nil)

func NewProvider(registry *artifact.Registry, backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, opts ...ProviderOption) *Provider {
	p := &Provider{
		registry:     registry,
		backend:      backend,
		key:          key,
		chainID:      new(big.Int).Set(chainID),
		pollInterval: sys.DefaultPollInterval,
		logger:       log.Chain(""),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// From is the deployer address.
func (p *Provider) From() string {
	return crypto.PubkeyToAddress(p.key.PublicKey).Hex()
}

func (p *Provider) Template(ctx context.Context, name string) (deploy.Factory, error) {
	t, err := p.registry.Lookup(name)
	if err != nil {
		return nil, err
	}

	return &factory{provider: p, template: t}, nil
}

type factory struct {
	provider *Provider
	template *artifact.Template
}

func (f *factory) Deploy(ctx context.Context, candidates []string) (deploy.Deployment, error) {
	p := f.provider

	opts, err := bind.NewKeyedTransactorWithChainID(p.key, p.chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transactor")
	}

	opts.Context = ctx
	opts.GasLimit = p.gasLimit

	address, tx, _, err := bind.DeployContract(opts, f.template.ABI, f.template.Bytecode, p.backend, candidates)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to deploy %s", f.template.FullyQualifiedName())
	}

	p.logger.Debug().
		Str("template", f.template.FullyQualifiedName()).
		Str("from", opts.From.Hex()).
		Uint64("nonce", tx.Nonce()).
		Uint64("gas", tx.Gas()).
		Msg("Sent contract creation transaction.")

	return &deployment{
		backend:      p.backend,
		address:      address,
		tx:           tx,
		pollInterval: p.pollInterval,
		logger:       p.logger,
	}, nil
}
