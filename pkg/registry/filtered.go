// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package registry

import (
	"context"

	"agentcore/pkg/errs"
	"agentcore/pkg/tool"
)

// FilteredRegistry restricts visibility into an underlying ToolRegistry by
// name, without copying or mutating it. Deny always wins over allow; an
// empty allow list admits every name not denied.
type FilteredRegistry struct {
	inner *ToolRegistry
	allow map[string]struct{}
	deny  map[string]struct{}
}

// NewFilteredRegistry builds a view over inner. Either list may be nil or
// empty.
func NewFilteredRegistry(inner *ToolRegistry, allow, deny []string) *FilteredRegistry {
	f := &FilteredRegistry{inner: inner, allow: toSet(allow), deny: toSet(deny)}
	return f
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (f *FilteredRegistry) permitted(name string) bool {
	if _, denied := f.deny[name]; denied {
		return false
	}
	if len(f.allow) == 0 {
		return true
	}
	_, allowed := f.allow[name]
	return allowed
}

// Get looks up name, returning ok=false if it is registered but filtered out.
func (f *FilteredRegistry) Get(name string) (tool.Tool, bool) {
	if !f.permitted(name) {
		return nil, false
	}
	return f.inner.Get(name)
}

// List returns the names of every registered, non-filtered tool, ascending.
func (f *FilteredRegistry) List() []string {
	var out []string
	for _, name := range f.inner.List() {
		if f.permitted(name) {
			out = append(out, name)
		}
	}
	return out
}

// All returns every non-filtered tool, in List() order.
func (f *FilteredRegistry) All() []tool.Tool {
	names := f.List()
	out := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		t, _ := f.inner.Get(name)
		out = append(out, t)
	}
	return out
}

// ToDefinitions converts every visible tool to its model-facing Definition.
func (f *FilteredRegistry) ToDefinitions() []tool.Definition {
	return tool.Definitions(f.All())
}

// ExecuteTool delegates to the underlying registry after checking
// visibility: a filtered-out name fails with the same errs.NewToolNotFound
// a genuinely unregistered name would, so callers cannot distinguish
// "denied by filter" from "does not exist".
func (f *FilteredRegistry) ExecuteTool(ctx context.Context, name string, input map[string]any) (tool.Result, error) {
	if !f.permitted(name) {
		return tool.Result{}, errs.NewToolNotFound(name)
	}
	return f.inner.ExecuteTool(ctx, name, input)
}
