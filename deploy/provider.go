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

// Package deploy runs a contract deployment as three checked steps:
// resolve the template, submit the deployment, await its confirmation.
package deploy

import (
	"context"
)

// Provider resolves contract templates by name.
type Provider interface {
	Template(ctx context.Context, name string) (Factory, error)
}

// Factory creates contract instances from a template. candidates is the
// single constructor argument.
type Factory interface {
	Deploy(ctx context.Context, candidates []string) (Deployment, error)
}

// Deployment is a submitted, not yet confirmed, contract creation.
type Deployment interface {
	// Address the contract will live at once confirmed.
	Address() string
	TxHash() string

	// Wait blocks until the network confirms the deployment or ctx is done.
	Wait(ctx context.Context) (*Receipt, error)
}

// Receipt describes a confirmed deployment.
type Receipt struct {
	Address     string
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// Recorder is notified of every confirmed deployment.
type Recorder interface {
	Record(ctx context.Context, result *Result) error
}
