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
	"strings"
	"text/tabwriter"
	"time"

	"github.com/perlin-network/votedeploy/conf"
	"github.com/perlin-network/votedeploy/history"
	"github.com/perlin-network/votedeploy/store"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"github.com/valyala/fastjson"
)

func historyAction(c *cli.Context) error {
	dir := conf.GetDBDir()
	if dir == "" {
		return errors.New("history needs a database, set --db")
	}

	kv, err := store.NewLevelDB(dir)
	if err != nil {
		return err
	}
	defer kv.Close()

	h := history.New(kv, conf.GetChainID())

	var records []*history.Record
	if chainID := conf.GetChainID(); chainID != 0 {
		records, err = h.List(chainID)
	} else {
		records, err = h.All()
	}

	if err != nil {
		return err
	}

	out := c.App.Writer

	if c.Bool("json") {
		var arena fastjson.Arena

		for _, r := range records {
			buf, err := r.MarshalArena(&arena)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%s\n", buf)
			arena.Reset()
		}

		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCHAIN\tTEMPLATE\tADDRESS\tBLOCK\tCANDIDATES")

	for _, r := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			r.Time.Local().Format(time.RFC3339),
			r.ChainID,
			r.Template,
			r.Address,
			r.Block,
			strings.Join(r.Candidates, ","),
		)
	}

	return w.Flush()
}
