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
	"fmt"
	"math/big"
	"net"
	"net/http"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind/backends"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/phayes/freeport"
	"github.com/pkg/errors"
)

// TestChainID is the chain id of a TestChain.
var TestChainID = big.NewInt(1337)

// TestChain is an in-process chain with one funded account.
type TestChain struct {
	*backends.SimulatedBackend

	Key *ecdsa.PrivateKey

	// AutoCommit mines a block after every accepted transaction.
	AutoCommit bool
}

func NewTestChain(t testing.TB) *TestChain {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}

	alloc := core.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))},
	}

	chain := &TestChain{
		SimulatedBackend: backends.NewSimulatedBackend(alloc, 30_000_000),
		Key:              key,
	}

	t.Cleanup(func() {
		_ = chain.Close()
	})

	return chain
}

func (c *TestChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.SimulatedBackend.SendTransaction(ctx, tx); err != nil {
		return err
	}

	if c.AutoCommit {
		c.Commit()
	}

	return nil
}

// Serve exposes the chain over HTTP JSON-RPC on a free local port and
// returns its URL. Only the eth_* calls a deployment makes are served.
func (c *TestChain) Serve(t testing.TB) string {
	server := rpc.NewServer()
	if err := server.RegisterName("eth", &testRPC{chain: c}); err != nil {
		t.Fatal(err)
	}

	port, err := freeport.GetFreePort()
	if err != nil {
		t.Fatal(err)
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}

	httpServer := &http.Server{Handler: server}
	go func() {
		_ = httpServer.Serve(listener)
	}()

	t.Cleanup(func() {
		_ = httpServer.Close()
		server.Stop()
	})

	return "http://" + addr
}

type testRPC struct {
	chain *TestChain
}

type testCallArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Gas   hexutil.Uint64  `json:"gas"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

func blockNumber(n rpc.BlockNumber) *big.Int {
	if n < 0 {
		return nil
	}

	return big.NewInt(n.Int64())
}

func (s *testRPC) ChainId() *hexutil.Big {
	return (*hexutil.Big)(TestChainID)
}

func (s *testRPC) GetBlockByNumber(ctx context.Context, number rpc.BlockNumber, full bool) (*types.Header, error) {
	return s.chain.HeaderByNumber(ctx, blockNumber(number))
}

func (s *testRPC) GasPrice(ctx context.Context) (*hexutil.Big, error) {
	price, err := s.chain.SuggestGasPrice(ctx)
	return (*hexutil.Big)(price), err
}

func (s *testRPC) MaxPriorityFeePerGas(ctx context.Context) (*hexutil.Big, error) {
	tip, err := s.chain.SuggestGasTipCap(ctx)
	return (*hexutil.Big)(tip), err
}

func (s *testRPC) GetTransactionCount(ctx context.Context, address common.Address, number rpc.BlockNumber) (hexutil.Uint64, error) {
	if number == rpc.PendingBlockNumber {
		nonce, err := s.chain.PendingNonceAt(ctx, address)
		return hexutil.Uint64(nonce), err
	}

	nonce, err := s.chain.NonceAt(ctx, address, blockNumber(number))

	return hexutil.Uint64(nonce), err
}

func (s *testRPC) EstimateGas(ctx context.Context, args testCallArgs) (hexutil.Uint64, error) {
	msg := ethereum.CallMsg{
		From:  args.From,
		To:    args.To,
		Gas:   uint64(args.Gas),
		Value: new(big.Int),
		Data:  args.Input,
	}

	if args.Value != nil {
		msg.Value = args.Value.ToInt()
	}

	if len(msg.Data) == 0 {
		msg.Data = args.Data
	}

	gas, err := s.chain.EstimateGas(ctx, msg)

	return hexutil.Uint64(gas), err
}

func (s *testRPC) SendRawTransaction(ctx context.Context, raw hexutil.Bytes) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}

	return tx.Hash(), s.chain.SendTransaction(ctx, tx)
}

func (s *testRPC) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := s.chain.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if receipt.Logs == nil {
		receipt.Logs = []*types.Log{}
	}

	return receipt, nil
}

func (s *testRPC) GetCode(ctx context.Context, address common.Address, number rpc.BlockNumber) (hexutil.Bytes, error) {
	code, err := s.chain.CodeAt(ctx, address, blockNumber(number))
	return code, err
}
