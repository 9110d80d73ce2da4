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

// Package history keeps a record of confirmed deployments per chain.
package history

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Record is a confirmed deployment.
type Record struct {
	ChainID    uint64
	Template   string
	Address    string
	TxHash     string
	Block      uint64
	GasUsed    uint64
	Candidates []string
	Time       time.Time
	Elapsed    time.Duration
}

func (r *Record) MarshalArena(arena *fastjson.Arena) ([]byte, error) {
	o := arena.NewObject()

	o.Set("chain_id", arena.NewNumberString(strconv.FormatUint(r.ChainID, 10)))
	o.Set("template", arena.NewString(r.Template))
	o.Set("address", arena.NewString(r.Address))
	o.Set("tx_hash", arena.NewString(r.TxHash))
	o.Set("block", arena.NewNumberString(strconv.FormatUint(r.Block, 10)))
	o.Set("gas_used", arena.NewNumberString(strconv.FormatUint(r.GasUsed, 10)))

	candidates := arena.NewArray()
	for i, name := range r.Candidates {
		candidates.SetArrayItem(i, arena.NewString(name))
	}
	o.Set("candidates", candidates)

	o.Set("time", arena.NewString(r.Time.UTC().Format(time.RFC3339Nano)))
	o.Set("elapsed_ms", arena.NewNumberString(strconv.FormatInt(r.Elapsed.Milliseconds(), 10)))

	return o.MarshalTo(nil), nil
}

func (r *Record) UnmarshalValue(v *fastjson.Value) error {
	if v.Type() != fastjson.TypeObject {
		return errors.New("record must be an object")
	}

	r.ChainID = v.GetUint64("chain_id")
	r.Template = string(v.GetStringBytes("template"))
	r.Address = string(v.GetStringBytes("address"))
	r.TxHash = string(v.GetStringBytes("tx_hash"))
	r.Block = v.GetUint64("block")
	r.GasUsed = v.GetUint64("gas_used")

	r.Candidates = r.Candidates[:0]
	for _, c := range v.GetArray("candidates") {
		name, err := c.StringBytes()
		if err != nil {
			return errors.Wrap(err, "invalid candidate")
		}
		r.Candidates = append(r.Candidates, string(name))
	}

	t, err := time.Parse(time.RFC3339Nano, string(v.GetStringBytes("time")))
	if err != nil {
		return errors.Wrap(err, "invalid record time")
	}
	r.Time = t

	r.Elapsed = time.Duration(v.GetInt64("elapsed_ms")) * time.Millisecond

	if r.Template == "" || r.Address == "" {
		return errors.New("record is missing its template or address")
	}

	return nil
}
