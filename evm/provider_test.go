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
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/perlin-network/votedeploy/artifact"
	"github.com/perlin-network/votedeploy/deploy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const votingABI = `[{"inputs":[{"internalType":"string[]","name":"_candidateNames","type":"string[]"}],"stateMutability":"nonpayable","type":"constructor"}]`

const (
	// Copies a single STOP byte as the runtime code.
	codeOneByte = "0x6001600c60003960016000f300"
	// Reverts during construction.
	codeRevert = "0x60006000fd"
	// Succeeds without leaving any runtime code behind.
	codeEmpty = "0x00"
)

func newRegistry(t *testing.T, bytecode map[string]string) *artifact.Registry {
	parsed, err := abi.JSON(strings.NewReader(votingABI))
	require.NoError(t, err)

	registry := artifact.NewRegistry()
	for name, code := range bytecode {
		require.NoError(t, registry.Register(&artifact.Template{
			Name:       name,
			SourceName: "contracts/" + name + ".sol",
			ABI:        parsed,
			Bytecode:   common.FromHex(code),
		}))
	}

	return registry
}

func newProvider(t *testing.T, chain *TestChain, opts ...ProviderOption) *Provider {
	registry := newRegistry(t, map[string]string{
		"VotingSystem": codeOneByte,
		"Reverting":    codeRevert,
		"Empty":        codeEmpty,
	})

	opts = append([]ProviderOption{WithPollInterval(5 * time.Millisecond)}, opts...)

	return NewProvider(registry, chain, chain.Key, TestChainID, opts...)
}

func deployTemplate(t *testing.T, p *Provider, name string) (deploy.Deployment, error) {
	f, err := p.Template(context.Background(), name)
	require.NoError(t, err)

	return f.Deploy(context.Background(), []string{"Alice", "Bob", "Charlie"})
}

func TestDeployAndWait(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	p := newProvider(t, chain)

	d, err := deployTemplate(t, p, "VotingSystem")
	require.NoError(t, err)
	assert.True(t, common.IsHexAddress(d.Address()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receipt, err := d.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, d.Address(), receipt.Address)
	assert.Equal(t, d.TxHash(), receipt.TxHash)
	assert.EqualValues(t, 1, receipt.BlockNumber)
	assert.NotZero(t, receipt.GasUsed)

	code, err := chain.CodeAt(ctx, common.HexToAddress(receipt.Address), nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00}, code)
}

func TestWaitUntilMined(t *testing.T) {
	chain := NewTestChain(t)
	p := newProvider(t, chain)

	d, err := deployTemplate(t, p, "VotingSystem")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := d.Wait(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("wait returned before the block was mined: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	chain.Commit()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("wait did not return after the block was mined")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	chain := NewTestChain(t)
	p := newProvider(t, chain)

	d, err := deployTemplate(t, p, "VotingSystem")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err = d.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestDeployRejectedByEstimate(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	_, err := deployTemplate(t, newProvider(t, chain), "Reverting")
	assert.Error(t, err)
}

func TestWaitReverted(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	d, err := deployTemplate(t, newProvider(t, chain, WithGasLimit(100_000)), "Reverting")
	require.NoError(t, err)

	_, err = d.Wait(context.Background())
	assert.True(t, errors.Is(err, ErrReverted))
}

func TestWaitNoCode(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	d, err := deployTemplate(t, newProvider(t, chain), "Empty")
	require.NoError(t, err)

	_, err = d.Wait(context.Background())
	assert.True(t, errors.Is(err, bind.ErrNoCodeAfterDeploy))
}

func TestTemplateNotFound(t *testing.T) {
	p := newProvider(t, NewTestChain(t))

	_, err := p.Template(context.Background(), "Ballot")
	assert.True(t, errors.Is(err, artifact.ErrNotFound))
}

func TestRunnerAgainstChain(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	result, err := deploy.NewRunner(newProvider(t, chain), deploy.WithConfirmTimeout(5*time.Second)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "VotingSystem", result.Template)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, result.Candidates)
	assert.True(t, common.IsHexAddress(result.Receipt.Address))
}

func TestFrom(t *testing.T) {
	chain := NewTestChain(t)
	p := newProvider(t, chain)

	assert.Equal(t, crypto.PubkeyToAddress(chain.Key.PublicKey).Hex(), p.From())
}

func TestDialAndDeployOverRPC(t *testing.T) {
	chain := NewTestChain(t)
	chain.AutoCommit = true

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, chainID, err := Dial(ctx, chain.Serve(t))
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, TestChainID.Uint64(), chainID.Uint64())

	registry := newRegistry(t, map[string]string{"VotingSystem": codeOneByte})
	p := NewProvider(registry, client, chain.Key, chainID, WithPollInterval(5*time.Millisecond))

	d, err := deployTemplate(t, p, "VotingSystem")
	require.NoError(t, err)

	receipt, err := d.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.Address(), receipt.Address)
}
