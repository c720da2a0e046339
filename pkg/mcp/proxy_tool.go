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

package mcp

import (
	"context"

	"agentcore/pkg/tool"
)

// ProxyTool adapts one remote MCP tool to the local tool.Tool contract, so
// the registry and agent loop never need to know a call crosses a process
// boundary. Every proxied tool requires approval by default, since its
// side effects are opaque to the local policy engine. effectiveName is
// what the tool is registered and invoked under locally; it may differ
// from info.Name when a registry prefix is applied, but every call to
// the remote server always uses the unprefixed info.Name.
type ProxyTool struct {
	client        *Client
	info          ToolInfo
	effectiveName string
}

// NewProxyTool wraps one remote tool behind the local Tool interface,
// exposed locally under its own remote name.
func NewProxyTool(client *Client, info ToolInfo) *ProxyTool {
	return &ProxyTool{client: client, info: info, effectiveName: info.Name}
}

// NewPrefixedProxyTool wraps one remote tool, exposed locally under
// prefix+"_"+info.Name while still invoking the remote server with the
// bare info.Name.
func NewPrefixedProxyTool(client *Client, info ToolInfo, prefix string) *ProxyTool {
	name := info.Name
	if prefix != "" {
		name = prefix + "_" + info.Name
	}
	return &ProxyTool{client: client, info: info, effectiveName: name}
}

func (p *ProxyTool) Name() string               { return p.effectiveName }
func (p *ProxyTool) Description() string        { return p.info.Description }
func (p *ProxyTool) Schema() map[string]any     { return p.info.InputSchema }
func (p *ProxyTool) RequiresApproval(map[string]any) bool { return true }

func (p *ProxyTool) Execute(ctx context.Context, input map[string]any) (tool.Result, error) {
	content, isError, err := p.client.CallTool(ctx, p.info.Name, input)
	if err != nil {
		return tool.Result{}, err
	}
	return tool.Result{Content: content, IsError: isError}, nil
}

// DiscoverTools lists client's current tool catalog and wraps each entry
// as a ProxyTool under its bare remote name.
func DiscoverTools(ctx context.Context, client *Client) ([]*ProxyTool, error) {
	return discoverPrefixed(ctx, client, "")
}

// DiscoverPrefixedTools lists client's current tool catalog and wraps
// each entry under prefix+"_"+name, for merging into a registry that
// already has local tools.
func DiscoverPrefixedTools(ctx context.Context, client *Client, prefix string) ([]*ProxyTool, error) {
	return discoverPrefixed(ctx, client, prefix)
}

func discoverPrefixed(ctx context.Context, client *Client, prefix string) ([]*ProxyTool, error) {
	infos, err := client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	tools := make([]*ProxyTool, len(infos))
	for i, info := range infos {
		tools[i] = NewPrefixedProxyTool(client, info, prefix)
	}
	return tools, nil
}
