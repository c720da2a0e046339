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

// Command agentcore is a minimal CLI harness wiring a config file, the
// built-in tool registry, a policy, and a language-model client into a
// running agent for one turn. It stands in for the interactive REPL,
// which is treated as an external collaborator.
package main

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/alecthomas/kong"

	"agentcore/pkg/agent"
	"agentcore/pkg/config"
	"agentcore/pkg/llm"
	"agentcore/pkg/mcp"
	"agentcore/pkg/message"
	"agentcore/pkg/observability"
	"agentcore/pkg/registry"
	"agentcore/pkg/tool"
	"agentcore/pkg/tool/filetool"
)

type cli struct {
	Config string `help:"Path to the YAML config file." default:"agentcore.yaml"`
	Prompt string `arg:"" help:"The user turn to run through the agent."`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Description("Runs one agent turn against a configured policy and tool set."))

	if err := run(c); err != nil {
		fmt.Fprintln(os.Stderr, "agentcore:", err)
		os.Exit(1)
	}
}

func run(c cli) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	pol, err := cfg.BuildPolicy()
	if err != nil {
		return err
	}

	shutdown, err := observability.InitTracing(cfg.BuildTracingConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	metrics := observability.NewMetrics(nil)
	tools := registry.NewToolRegistry(metrics)
	for _, t := range []tool.Tool{
		tool.Echo{},
		filetool.ReadFile{},
		filetool.WriteFile{},
		filetool.GrepSearch{},
		filetool.SearchReplace{},
		filetool.ReadDocument{},
	} {
		if err := tools.Register(t); err != nil {
			return err
		}
	}

	for name, serverCfg := range cfg.BuildMcpServers() {
		client, err := mcp.Connect(context.Background(), serverCfg)
		if err != nil {
			return fmt.Errorf("mcp server %q: %w", name, err)
		}
		defer func() { _ = client.Close() }()
		if _, err := tools.MergeMcp(context.Background(), client, name); err != nil {
			return fmt.Errorf("mcp server %q: %w", name, err)
		}
	}

	a := agent.New(agent.Config{
		Model:         cfg.Agent.Model,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
		Client:        &stubClient{},
		Tools:         cfg.BuildToolSource(tools),
		Policy:        pol,
		Metrics:       metrics,
	})

	text, err := a.Run(context.Background(), c.Prompt)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

// stubClient is a placeholder llm.Client that always ends the turn
// immediately. Wiring a real provider HTTP encoder is external-harness
// work, outside this module's scope.
type stubClient struct{}

func (stubClient) CreateMessage(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{
		Content:    []message.ContentBlock{message.NewText("no language-model provider configured")},
		StopReason: llm.StopEndTurn,
	}, nil
}

func (s stubClient) CreateMessageStream(ctx context.Context, req llm.Request) iter.Seq2[llm.StreamEvent, error] {
	return func(yield func(llm.StreamEvent, error) bool) {
		resp, _ := s.CreateMessage(ctx, req)
		if !yield(llm.StreamEvent{Type: llm.EventMessageStart, Message: &resp}, nil) {
			return
		}
		yield(llm.StreamEvent{Type: llm.EventMessageStop}, nil)
	}
}
