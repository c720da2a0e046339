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

// Package tool defines the contract every callable tool (built-in or
// MCP-proxied) must satisfy, generalizing the teacher's tools.Tool
// interface to a single, non-streaming Execute method.
package tool

import "context"

// Definition is the model-facing description of a tool: what the LLM sees
// in a Request.Tools list.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Result is the outcome of one Execute call.
type Result struct {
	Content  string
	IsError  bool
	Metadata map[string]any
}

// Tool is the capability surface the registry and agent loop depend on.
// Implementations are either built-in (pkg/tool/filetool) or proxies over
// an MCP connection (pkg/mcp).
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any

	// RequiresApproval reports whether this call needs human-in-the-loop
	// confirmation before Execute runs, independent of the policy engine's
	// own Ask decision. Most read-only tools return false unconditionally;
	// mutating tools return true.
	RequiresApproval(input map[string]any) bool

	Execute(ctx context.Context, input map[string]any) (Result, error)
}

// Definitions converts a slice of tools into their model-facing
// definitions, in the order given.
func Definitions(tools []Tool) []Definition {
	defs := make([]Definition, len(tools))
	for i, t := range tools {
		defs[i] = Definition{Name: t.Name(), Description: t.Description(), InputSchema: t.Schema()}
	}
	return defs
}
