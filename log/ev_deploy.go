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

package log

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	EventDeploySubmitted = "submitted"
	EventDeployConfirmed = "confirmed"
	EventDeployFailed    = "failed"
)

// DeploySubmitted is logged once the deployment transaction was accepted by
// the node.
type DeploySubmitted struct {
	Template   string
	Candidates []string
	Address    string
	TxHash     string
}

var _ MarshalableEvent = (*DeploySubmitted)(nil)

func (d *DeploySubmitted) MarshalEvent(ev *zerolog.Event) {
	ev.Str("template", d.Template).
		Strs("candidates", d.Candidates).
		Str("address", d.Address).
		Str("tx", d.TxHash).
		Msg("Deployment transaction submitted.")
}

// DeployConfirmed is logged once the deployment transaction was mined.
type DeployConfirmed struct {
	Template string
	Address  string
	TxHash   string
	Block    uint64
	GasUsed  uint64
	Elapsed  time.Duration
}

var _ MarshalableEvent = (*DeployConfirmed)(nil)

func (d *DeployConfirmed) MarshalEvent(ev *zerolog.Event) {
	ev.Str("template", d.Template).
		Str("address", d.Address).
		Str("tx", d.TxHash).
		Uint64("block", d.Block).
		Uint64("gas_used", d.GasUsed).
		Dur("elapsed", d.Elapsed).
		Msg("Deployment confirmed.")
}
