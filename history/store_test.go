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

package history

import (
	"context"
	"testing"
	"time"

	"github.com/perlin-network/votedeploy/deploy"
	"github.com/perlin-network/votedeploy/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, kv store.KV, chainID uint64) *Store {
	s := New(kv, chainID)

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	return s
}

func result(template, address string) *deploy.Result {
	return &deploy.Result{
		Template:   template,
		Candidates: []string{"Alice", "Bob", "Charlie"},
		Receipt: deploy.Receipt{
			Address:     address,
			TxHash:      "0xabc",
			BlockNumber: 7,
			GasUsed:     123456,
		},
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestRecordAndLatest(t *testing.T) {
	for _, kind := range []string{"inmem", "level"} {
		t.Run(kind, func(t *testing.T) {
			s := newTestStore(t, store.NewTestKV(t, kind), 1337)
			ctx := context.Background()

			require.NoError(t, s.Record(ctx, result("VotingSystem", "0x01")))
			require.NoError(t, s.Record(ctx, result("VotingSystem", "0x02")))
			require.NoError(t, s.Record(ctx, result("Ballot", "0x03")))

			latest, err := s.Latest(1337, "VotingSystem")
			require.NoError(t, err)

			assert.Equal(t, "0x02", latest.Address)
			assert.Equal(t, uint64(1337), latest.ChainID)
			assert.Equal(t, "0xabc", latest.TxHash)
			assert.Equal(t, uint64(7), latest.Block)
			assert.Equal(t, uint64(123456), latest.GasUsed)
			assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, latest.Candidates)
			assert.Equal(t, 1500*time.Millisecond, latest.Elapsed)
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 2, 0, time.UTC), latest.Time)

			_, err = s.Latest(1, "VotingSystem")
			assert.True(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestListOrdersByTime(t *testing.T) {
	kv := store.NewTestKV(t, "inmem")
	s := newTestStore(t, kv, 1)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, result("Zeta", "0x01")))
	require.NoError(t, s.Record(ctx, result("Alpha", "0x02")))
	require.NoError(t, s.Record(ctx, result("Zeta", "0x03")))

	other := newTestStore(t, kv, 5)
	require.NoError(t, other.Record(ctx, result("Alpha", "0x04")))

	records, err := s.List(1)
	require.NoError(t, err)

	var addresses []string
	for _, r := range records {
		addresses = append(addresses, r.Address)
	}
	assert.Equal(t, []string{"0x01", "0x02", "0x03"}, addresses)

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTemplateNamesAreEscaped(t *testing.T) {
	s := newTestStore(t, store.NewTestKV(t, "inmem"), 1)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, result("contracts/A.sol:A", "0x01")))
	require.NoError(t, s.Record(ctx, result("contracts", "0x02")))

	latest, err := s.Latest(1, "contracts")
	require.NoError(t, err)
	assert.Equal(t, "0x02", latest.Address)

	latest, err = s.Latest(1, "contracts/A.sol:A")
	require.NoError(t, err)
	assert.Equal(t, "0x01", latest.Address)
}

func TestCorruptRecord(t *testing.T) {
	kv := store.NewTestKV(t, "inmem")
	require.NoError(t, kv.Put([]byte("deploy/1/VotingSystem/00000000000000000001"), []byte(`{"template":1}`)))

	_, err := New(kv, 1).List(1)
	assert.Error(t, err)
}

func TestRecordCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(store.NewTestKV(t, "inmem"), 1).Record(ctx, result("VotingSystem", "0x01"))
	assert.Equal(t, context.Canceled, err)
}
