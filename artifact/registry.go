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
	"sort"
	"sync"

	"github.com/perlin-network/votedeploy/log"
	"github.com/pkg/errors"
)

// Registry resolves templates by bare or fully qualified name. It is safe
// for concurrent use.
type Registry struct {
	sync.RWMutex

	byName map[string][]*Template
	byFQN  map[string]*Template
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string][]*Template),
		byFQN:  make(map[string]*Template),
	}
}

// Register adds t, replacing a template with the same fully qualified name.
func (r *Registry) Register(t *Template) error {
	if t == nil || t.Name == "" {
		return errors.New("template must have a name")
	}

	r.Lock()
	defer r.Unlock()

	fqn := t.FullyQualifiedName()

	if prev, exists := r.byFQN[fqn]; exists {
		list := r.byName[t.Name]
		for i := range list {
			if list[i] == prev {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		r.byName[t.Name] = list
	}

	r.byFQN[fqn] = t
	r.byName[t.Name] = append(r.byName[t.Name], t)

	logger := log.Artifact()
	logger.Debug().Str("template", fqn).Int("bytecode_len", len(t.Bytecode)).Msg("Registered contract template.")

	return nil
}

// Lookup finds a deployable template. A bare name must match exactly one
// registered template.
func (r *Registry) Lookup(name string) (*Template, error) {
	r.RLock()
	defer r.RUnlock()

	source, contract := splitName(name)

	var t *Template

	if source != "" {
		found, exists := r.byFQN[name]
		if !exists {
			return nil, errors.Wrapf(ErrNotFound, "no artifact for %q", name)
		}
		t = found
	} else {
		candidates := r.byName[contract]

		switch len(candidates) {
		case 0:
			return nil, errors.Wrapf(ErrNotFound, "no artifact for %q", name)
		case 1:
			t = candidates[0]
		default:
			names := make([]string, 0, len(candidates))
			for _, c := range candidates {
				names = append(names, c.FullyQualifiedName())
			}
			sort.Strings(names)

			return nil, errors.Wrapf(ErrAmbiguous, "%q matches %v, use a fully qualified name", name, names)
		}
	}

	if err := t.Deployable(); err != nil {
		return nil, err
	}

	return t, nil
}

// Names lists the fully qualified names of all registered templates.
func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()

	names := make([]string, 0, len(r.byFQN))
	for fqn := range r.byFQN {
		names = append(names, fqn)
	}
	sort.Strings(names)

	return names
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.byFQN)
}
