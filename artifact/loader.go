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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/perlin-network/votedeploy/log"
	"github.com/pkg/errors"
)

// LoadDir registers every contract artifact found below dir. Both the
// Hardhat (artifacts/<path>/<File>.sol/<Name>.json) and Foundry
// (out/<File>.sol/<Name>.json) layouts are understood. Artifacts that fail
// to parse are skipped and reported together in the returned error; the
// count of registered templates is returned either way.
func (r *Registry) LoadDir(dir string) (int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot read artifacts directory %q", dir)
	}

	if !info.IsDir() {
		return 0, errors.Errorf("%q is not a directory", dir)
	}

	var (
		loaded int
		result *multierror.Error
	)

	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			result = multierror.Append(result, err)
			return nil
		}

		if info.IsDir() {
			if info.Name() == "build-info" || info.Name() == "cache" {
				return filepath.SkipDir
			}
			return nil
		}

		if !isArtifactFile(path) {
			return nil
		}

		buf, err := ioutil.ReadFile(path)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "read %s", path))
			return nil
		}

		name := strings.TrimSuffix(filepath.Base(path), ".json")

		t, err := Parse(buf, name, sourceFromPath(dir, path))
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "parse %s", path))
			return nil
		}

		if err := r.Register(t); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "register %s", path))
			return nil
		}

		loaded++

		return nil
	})

	if walkErr != nil {
		result = multierror.Append(result, walkErr)
	}

	logger := log.Artifact()
	logger.Info().Str("dir", dir).Int("count", loaded).Msg("Loaded contract artifacts.")

	return loaded, result.ErrorOrNil()
}

// LoadDir is a shorthand for creating a registry and loading dir into it.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()
	_, err := r.LoadDir(dir)

	return r, err
}

func isArtifactFile(path string) bool {
	if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") || strings.HasSuffix(path, ".metadata.json") {
		return false
	}

	return strings.HasSuffix(filepath.Dir(path), ".sol")
}

// sourceFromPath derives the source unit name from the artifact location,
// e.g. artifacts/contracts/VotingSystem.sol/VotingSystem.json becomes
// contracts/VotingSystem.sol. Hardhat artifacts carry their own sourceName,
// which takes precedence.
func sourceFromPath(root, path string) string {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil {
		return filepath.Base(filepath.Dir(path))
	}

	return filepath.ToSlash(rel)
}
