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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"agentcore/pkg/errs"
	"agentcore/pkg/mcp"
	"agentcore/pkg/observability"
	"agentcore/pkg/tool"
)

// ToolRegistry is the name-to-Tool lookup the agent loop and policy engine
// consult. Execution is instrumented with a span and metrics per call,
// mirroring the teacher's ToolRegistry.ExecuteTool.
type ToolRegistry struct {
	base    *Base[tool.Tool]
	metrics *observability.Metrics
}

// NewToolRegistry builds an empty registry. Passing a nil metrics disables
// metric recording without changing call sites.
func NewToolRegistry(metrics *observability.Metrics) *ToolRegistry {
	return &ToolRegistry{base: NewBase[tool.Tool](), metrics: metrics}
}

// Register adds t under its own Name(). Re-registering the same name
// overwrites the previous entry.
func (r *ToolRegistry) Register(t tool.Tool) error {
	return r.base.Register(t.Name(), t)
}

// Unregister removes the tool registered under name, if any.
func (r *ToolRegistry) Unregister(name string) {
	r.base.Remove(name)
}

// Get looks up a tool by name.
func (r *ToolRegistry) Get(name string) (tool.Tool, bool) {
	return r.base.Get(name)
}

// List returns every registered tool name, ascending.
func (r *ToolRegistry) List() []string {
	return r.base.List()
}

// All returns every registered tool, in List() order.
func (r *ToolRegistry) All() []tool.Tool {
	names := r.base.List()
	out := make([]tool.Tool, 0, len(names))
	all := r.base.All()
	for _, name := range names {
		out = append(out, all[name])
	}
	return out
}

// Count reports how many tools are registered.
func (r *ToolRegistry) Count() int {
	return r.base.Count()
}

// ToDefinitions converts every registered tool to its model-facing
// Definition, in List() order.
func (r *ToolRegistry) ToDefinitions() []tool.Definition {
	return tool.Definitions(r.All())
}

// MergeMcp lists client's remote tools and registers each as a proxy
// tool. When prefix is non-empty, each remote tool's effective local
// name is prefix+"_"+remote_name (e.g. remote "read" under prefix "fs"
// becomes "fs_read"); calling it still invokes the remote server with
// the bare remote name. Returns the effective names registered.
func (r *ToolRegistry) MergeMcp(ctx context.Context, client *mcp.Client, prefix string) ([]string, error) {
	proxies, err := mcp.DiscoverPrefixedTools(ctx, client, prefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if err := r.Register(p); err != nil {
			return names, err
		}
		names = append(names, p.Name())
	}
	return names, nil
}

// ExecuteTool looks up name and runs it with input, recording a span and
// metrics around the call. A missing tool returns errs.NewToolNotFound
// without attempting execution.
func (r *ToolRegistry) ExecuteTool(ctx context.Context, name string, input map[string]any) (tool.Result, error) {
	t, ok := r.Get(name)
	if !ok {
		return tool.Result{}, errs.NewToolNotFound(name)
	}

	ctx, span := observability.Tracer("agentcore/registry").Start(ctx, "tool.execute")
	span.SetAttributes(attribute.String("tool.name", name))
	defer span.End()

	start := time.Now()
	result, err := t.Execute(ctx, input)
	elapsed := time.Since(start).Seconds()

	outcome := "ok"
	if err != nil || result.IsError {
		outcome = "error"
		span.SetStatus(codes.Error, "tool execution failed")
	}
	r.metrics.RecordToolExecution(name, outcome, elapsed)

	if err != nil {
		return tool.Result{}, errs.NewToolExecution(err)
	}
	return result, nil
}
