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

// Package artifact keeps the compiled contract templates a deployment can
// be created from.
package artifact

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("contract template not found")
	ErrAmbiguous     = errors.New("contract template name is ambiguous")
	ErrNotDeployable = errors.New("contract template is not deployable")
)

// Template is a compiled contract: its ABI and creation bytecode.
type Template struct {
	Name       string
	SourceName string

	ABI      abi.ABI
	Bytecode []byte

	// Set when the creation bytecode still carries library placeholders.
	Unlinked bool
}

// FullyQualifiedName is "source.sol:Name", or just the name when the source
// is unknown.
func (t *Template) FullyQualifiedName() string {
	if t.SourceName == "" {
		return t.Name
	}

	return t.SourceName + ":" + t.Name
}

// Deployable reports why the template cannot be used for a deployment.
func (t *Template) Deployable() error {
	if t.Unlinked {
		return errors.Wrapf(ErrNotDeployable, "%s has unlinked library references", t.FullyQualifiedName())
	}

	if len(t.Bytecode) == 0 {
		return errors.Wrapf(ErrNotDeployable, "%s has no creation bytecode (interface or abstract contract?)", t.FullyQualifiedName())
	}

	return nil
}

// splitName splits "source.sol:Name" into its parts. Bare names come back
// with an empty source.
func splitName(name string) (source, contract string) {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}

	return "", name
}
