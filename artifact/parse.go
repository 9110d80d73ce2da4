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

package artifact

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// Parse decodes a Hardhat ("hh-sol-artifact-1") or Foundry artifact. name
// and source are used when the artifact does not carry them itself.
func Parse(buf []byte, name, source string) (*Template, error) {
	var parser fastjson.Parser

	v, err := parser.ParseBytes(buf)
	if err != nil {
		return nil, errors.Wrap(err, "malformed artifact json")
	}

	abiValue := v.Get("abi")
	if abiValue == nil || abiValue.Type() != fastjson.TypeArray {
		return nil, errors.New("artifact has no abi array")
	}

	contractABI, err := abi.JSON(bytes.NewReader(abiValue.MarshalTo(nil)))
	if err != nil {
		return nil, errors.Wrap(err, "invalid abi")
	}

	t := &Template{
		Name:       string(v.GetStringBytes("contractName")),
		SourceName: string(v.GetStringBytes("sourceName")),
		ABI:        contractABI,
	}

	if t.Name == "" {
		t.Name = name
	}

	if t.SourceName == "" {
		t.SourceName = source
	}

	if t.Name == "" {
		return nil, errors.New("artifact has no contract name")
	}

	var code string

	// Hardhat stores the bytecode as a string, Foundry as {"object": "0x.."}.
	if bc := v.Get("bytecode"); bc != nil {
		switch bc.Type() {
		case fastjson.TypeString:
			code = string(bc.GetStringBytes())
		case fastjson.TypeObject:
			code = string(bc.GetStringBytes("object"))
		default:
			return nil, errors.Errorf("unexpected bytecode type %s", bc.Type())
		}
	}

	code = strings.TrimPrefix(strings.TrimPrefix(code, "0x"), "0X")

	if strings.Contains(code, "__") {
		t.Unlinked = true
		return t, nil
	}

	if t.Bytecode, err = hex.DecodeString(code); err != nil {
		return nil, errors.Wrap(err, "invalid bytecode hex")
	}

	return t, nil
}
