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
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/perlin-network/votedeploy/deploy"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrReverted is returned by Wait when the creation transaction was mined
// but failed.
var ErrReverted = errors.New("contract creation reverted")

type deployment struct {
	backend Backend

	address common.Address
	tx      *types.Transaction

	pollInterval time.Duration
	logger       zerolog.Logger
}

func (d *deployment) Address() string {
	return d.address.Hex()
}

func (d *deployment) TxHash() string {
	return d.tx.Hash().Hex()
}

// Wait polls for the receipt of the creation transaction until it is mined
// or ctx is done. Errors other than a missing receipt are logged and the
// poll goes on.
func (d *deployment) Wait(ctx context.Context) (*deploy.Receipt, error) {
	limiter := rate.NewLimiter(rate.Every(d.pollInterval), 1)

	for {
		// Wait fails early when the next poll would land past the deadline.
		if err := limiter.Wait(ctx); err != nil {
			<-ctx.Done()
			return nil, errors.Wrapf(ctx.Err(), "gave up waiting for %s", d.TxHash())
		}

		receipt, err := d.backend.TransactionReceipt(ctx, d.tx.Hash())
		if err == nil && receipt != nil {
			return d.confirm(ctx, receipt)
		}

		if err != nil && !errors.Is(err, ethereum.NotFound) && ctx.Err() == nil {
			d.logger.Warn().Err(err).Str("tx", d.TxHash()).Msg("Failed to fetch deployment receipt.")
		}
	}
}

func (d *deployment) confirm(ctx context.Context, receipt *types.Receipt) (*deploy.Receipt, error) {
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, errors.Wrapf(ErrReverted, "tx %s in block %s used %d gas", d.TxHash(), receipt.BlockNumber, receipt.GasUsed)
	}

	code, err := d.backend.CodeAt(ctx, d.address, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch code at %s", d.Address())
	}

	if len(code) == 0 {
		return nil, errors.Wrapf(bind.ErrNoCodeAfterDeploy, "at %s", d.Address())
	}

	r := &deploy.Receipt{
		Address: d.Address(),
		TxHash:  d.TxHash(),
		GasUsed: receipt.GasUsed,
	}

	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}

	return r, nil
}
