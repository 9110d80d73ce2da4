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
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/perlin-network/votedeploy/deploy"
	"github.com/perlin-network/votedeploy/log"
	"github.com/perlin-network/votedeploy/store"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

var ErrNotFound = errors.New("no deployment recorded")

const keyPrefix = "deploy/"

// Store persists records in a KV under
// deploy/<chain id>/<escaped template>/<unix nanos>.
type Store struct {
	kv      store.KV
	chainID uint64

	arenas  fastjson.ArenaPool
	parsers fastjson.ParserPool

	now func() time.Time
}

var _ deploy.Recorder = (*Store)(nil)

// New returns a Store that records deployments made on chainID.
func New(kv store.KV, chainID uint64) *Store {
	return &Store{kv: kv, chainID: chainID, now: time.Now}
}

// Record saves a confirmed deployment.
func (s *Store) Record(ctx context.Context, result *deploy.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := &Record{
		ChainID:    s.chainID,
		Template:   result.Template,
		Address:    result.Receipt.Address,
		TxHash:     result.Receipt.TxHash,
		Block:      result.Receipt.BlockNumber,
		GasUsed:    result.Receipt.GasUsed,
		Candidates: append([]string(nil), result.Candidates...),
		Time:       s.now(),
		Elapsed:    result.Elapsed,
	}

	return s.Put(r)
}

// Put writes r as is.
func (s *Store) Put(r *Record) error {
	arena := s.arenas.Get()
	defer s.arenas.Put(arena)

	buf, err := r.MarshalArena(arena)
	if err != nil {
		return errors.Wrap(err, "failed to encode deployment record")
	}

	if err := s.kv.Put(recordKey(r), buf); err != nil {
		return errors.Wrap(err, "failed to store deployment record")
	}

	logger := log.History()
	logger.Debug().
		Uint64("chain_id", r.ChainID).
		Str("template", r.Template).
		Str("address", r.Address).
		Msg("Recorded deployment.")

	return nil
}

// Latest is the most recent deployment of template on chainID.
func (s *Store) Latest(chainID uint64, template string) (*Record, error) {
	records, err := s.scan(templatePrefix(chainID, template))
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s on chain %d", template, chainID)
	}

	return records[len(records)-1], nil
}

// List returns all deployments on chainID, oldest first.
func (s *Store) List(chainID uint64) ([]*Record, error) {
	records, err := s.scan(chainPrefix(chainID))
	if err != nil {
		return nil, err
	}

	sortByTime(records)

	return records, nil
}

// All returns the deployments on every chain, oldest first.
func (s *Store) All() ([]*Record, error) {
	records, err := s.scan([]byte(keyPrefix))
	if err != nil {
		return nil, err
	}

	sortByTime(records)

	return records, nil
}

func (s *Store) scan(prefix []byte) ([]*Record, error) {
	var records []*Record

	parser := s.parsers.Get()
	defer s.parsers.Put(parser)

	err := s.kv.Iterate(prefix, func(key, value []byte) error {
		v, err := parser.ParseBytes(value)
		if err != nil {
			return errors.Wrapf(err, "corrupt deployment record %s", key)
		}

		r := new(Record)
		if err := r.UnmarshalValue(v); err != nil {
			return errors.Wrapf(err, "corrupt deployment record %s", key)
		}

		records = append(records, r)

		return nil
	})

	return records, err
}

func sortByTime(records []*Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})
}

func chainPrefix(chainID uint64) []byte {
	return []byte(fmt.Sprintf("%s%d/", keyPrefix, chainID))
}

func templatePrefix(chainID uint64, template string) []byte {
	return []byte(fmt.Sprintf("%s%d/%s/", keyPrefix, chainID, url.PathEscape(template)))
}

func recordKey(r *Record) []byte {
	return append(templatePrefix(r.ChainID, r.Template), fmt.Sprintf("%020d", r.Time.UnixNano())...)
}
