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

// Package agent implements the think-act-observe loop that drives a
// conversation with a language model through a bounded number of tool-use
// iterations, mirroring the teacher's reasoning.ChainOfThoughtReasoningEngine
// iteration shape generalized to this module's Tool/Policy contracts.
package agent

import (
	"context"
	"fmt"
	"log/slog"

	"agentcore/pkg/errs"
	"agentcore/pkg/llm"
	"agentcore/pkg/message"
	"agentcore/pkg/observability"
	"agentcore/pkg/policy"
	"agentcore/pkg/registry"
)

const defaultMaxIterations = 10

// Config builds an Agent.
type Config struct {
	Model           string
	SystemPrompt    string
	MaxIterations   int
	Client          llm.Client
	Tools           registry.ToolSource
	Policy          *policy.Policy
	ApprovalHandler policy.ApprovalHandler
	Metrics         *observability.Metrics
	Logger          *slog.Logger
}

// Agent drives one conversation through the agent loop. Not safe for
// concurrent use by multiple goroutines on the same instance; build one
// Agent per conversation.
//
// Tools is a registry.ToolSource snapshot — either a plain *ToolRegistry
// or a *FilteredRegistry view over one — so a caller can hand the agent
// an allow/deny-restricted catalog without the loop needing to know the
// difference.
type Agent struct {
	model         string
	systemPrompt  string
	maxIterations int
	client        llm.Client
	tools         registry.ToolSource
	policy        *policy.Policy
	approval      policy.ApprovalHandler
	metrics       *observability.Metrics
	logger        *slog.Logger

	transcript []message.Message
}

// New builds an Agent from cfg. A nil ApprovalHandler defaults to
// AlwaysReject, so an Ask decision with no configured handler fails safe
// rather than silently approving. A nil Policy defaults to deny-everything,
// for the same reason.
func New(cfg Config) *Agent {
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = defaultMaxIterations
	}
	approval := cfg.ApprovalHandler
	if approval == nil {
		approval = policy.AlwaysReject{}
	}
	pol := cfg.Policy
	if pol == nil {
		pol, _ = policy.New(nil, policy.DecisionDeny)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		model:         cfg.Model,
		systemPrompt:  cfg.SystemPrompt,
		maxIterations: maxIter,
		client:        cfg.Client,
		tools:         cfg.Tools,
		policy:        pol,
		approval:      approval,
		metrics:       cfg.Metrics,
		logger:        logger,
	}
}

// Transcript returns the messages accumulated so far, in order.
func (a *Agent) Transcript() []message.Message {
	out := make([]message.Message, len(a.transcript))
	copy(out, a.transcript)
	return out
}

// Resume replaces the transcript wholesale, for continuing a conversation
// across process restarts when a caller persists it externally.
func (a *Agent) Resume(transcript []message.Message) {
	a.transcript = append([]message.Message(nil), transcript...)
}

// Run appends userText as a User message and drives the agent loop until
// the model stops requesting tools, or the iteration bound is reached.
// Reaching the bound is not an error: Run returns the text of the last
// model response, which is empty if that response carried only ToolUse
// blocks.
func (a *Agent) Run(ctx context.Context, userText string) (string, error) {
	a.transcript = append(a.transcript, message.NewUserText(userText))

	var lastText string
	for iteration := 0; iteration < a.maxIterations; iteration++ {
		a.metrics.RecordAgentIteration()

		defs := a.tools.ToDefinitions()
		toolDefs := make([]llm.ToolDefinition, len(defs))
		for i, d := range defs {
			toolDefs[i] = llm.ToolDefinition(d)
		}

		ctx, span := observability.Tracer("agentcore/agent").Start(ctx, "agent.iteration")
		resp, err := a.client.CreateMessage(ctx, llm.Request{
			Model:     a.model,
			System:    a.systemPrompt,
			Messages:  a.transcript,
			Tools:     toolDefs,
			MaxTokens: 4096,
		})
		span.End()
		if err != nil {
			return "", err
		}

		assistantMsg := message.Message{Role: message.RoleAssistant, Content: resp.Content}
		a.transcript = append(a.transcript, assistantMsg)
		lastText = resp.Text()

		toolUses := resp.ToolUseBlocks()
		if len(toolUses) == 0 {
			return lastText, nil
		}

		results := make([]message.ContentBlock, len(toolUses))
		for i, use := range toolUses {
			result, err := a.dispatch(ctx, use)
			if err != nil {
				return "", err
			}
			results[i] = result
		}
		a.transcript = append(a.transcript, message.NewUserToolResults(results))
	}

	a.logger.Warn("agent loop reached iteration bound", "max_iterations", a.maxIterations)
	return lastText, nil
}

// dispatch evaluates policy for one ToolUse block and executes it if
// permitted, returning a ToolResult block for every outcome that the loop
// can recover from locally (deny, rejection, tool-not-found, execution
// failure). It returns a non-nil error only when the approval handler
// itself failed, which aborts the whole turn per the agent's failure
// semantics — a handler failure is not something the model can be asked
// to route around.
//
// A tool's own RequiresApproval(input) can upgrade an Allow decision to
// Ask; it never downgrades an explicit Deny, so a policy rule still has
// the final word on blocking a call outright.
func (a *Agent) dispatch(ctx context.Context, use message.ContentBlock) (message.ContentBlock, error) {
	t, found := a.tools.Get(use.Name)

	decision := a.policy.Evaluate(use.Name, use.Input)
	if found && decision == policy.DecisionAllow && t.RequiresApproval(use.Input) {
		decision = policy.DecisionAsk
	}
	a.metrics.RecordPolicyDecision(use.Name, string(decision))

	switch decision {
	case policy.DecisionDeny:
		return message.NewToolResult(use.ID, fmt.Sprintf("Denied by policy: %s", use.Name), true), nil

	case policy.DecisionAsk:
		description := ""
		if found {
			description = t.Description()
		}
		approved, err := a.approval.RequestApproval(ctx, use.Name, use.Input, policy.NewApprovalContext(description))
		if err != nil {
			return message.ContentBlock{}, errs.NewPermissionHandlerError(err)
		}
		if !approved {
			return message.NewToolResult(use.ID, fmt.Sprintf("Rejected by user: %s", use.Name), true), nil
		}
		return a.execute(ctx, use), nil

	default: // DecisionAllow
		return a.execute(ctx, use), nil
	}
}

func (a *Agent) execute(ctx context.Context, use message.ContentBlock) message.ContentBlock {
	result, err := a.tools.ExecuteTool(ctx, use.Name, use.Input)
	if err != nil {
		if errs.Is(err, errs.KindTool, errs.ToolNotFound) {
			return message.NewToolResult(use.ID, fmt.Sprintf("Tool not found: %s", use.Name), true)
		}
		return message.NewToolResult(use.ID, err.Error(), true)
	}
	return message.NewToolResult(use.ID, result.Content, result.IsError)
}
