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

package sys

import "time"

// DefaultTemplate is the contract template deployed when none is configured.
const DefaultTemplate = "VotingSystem"

// DefaultCandidates returns the candidate names handed to the template
// constructor when none are configured. A fresh slice is returned on every
// call.
func DefaultCandidates() []string {
	return []string{"Alice", "Bob", "Charlie"}
}

var (
	// DefaultRPC is the JSON-RPC endpoint of a local development node.
	DefaultRPC = "http://127.0.0.1:8545"

	// DefaultArtifactsDir is where compiled contract artifacts are looked up.
	DefaultArtifactsDir = "artifacts"

	// Upper bound on how long a deployment transaction may take to be mined.
	DefaultConfirmTimeout = 5 * time.Minute

	// Interval between transaction receipt queries.
	DefaultPollInterval = 1 * time.Second

	// DevPrivateKey is the first account of the standard local development
	// mnemonic ("test test ... junk"). It holds funds on local nodes only and
	// must never be used against a public network.
	DevPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)
