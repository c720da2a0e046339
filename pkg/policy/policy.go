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

// Package policy implements the rule-based permission engine gating tool
// execution: every ToolUse either proceeds, is denied outright, or falls
// back to a human-in-the-loop approval handler.
package policy

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Decision is the outcome of evaluating a tool call against a Policy.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionDeny  Decision = "deny"
	DecisionAsk   Decision = "ask"
)

// ConditionalFunc is a user-supplied predicate over a tool's input,
// invoked once Name matches, producing the Decision for that call.
type ConditionalFunc func(input map[string]any) Decision

// Rule is one entry in a Policy's ordered rule list. Exactly one of the
// match fields should be set; Name is an exact match (also used to gate
// a Conditional rule), Pattern is a glob matched against the tool name
// (e.g. "mcp__*__write*"), and Conditional, when set alongside Name,
// defers the decision to a predicate over the call's input.
type Rule struct {
	Name        string
	Pattern     string
	Decision    Decision
	Conditional ConditionalFunc

	compiled glob.Glob
}

// compile validates Pattern, if set, at build time rather than at
// first-evaluation time so a malformed policy fails fast.
func (r *Rule) compile() error {
	if r.Pattern == "" {
		return nil
	}
	g, err := glob.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("policy: invalid pattern %q: %w", r.Pattern, err)
	}
	r.compiled = g
	return nil
}

// decide reports whether r matches toolName/input and, if so, the
// resulting Decision. A Conditional rule matches on Name alone and then
// defers the Decision to its predicate; all other rules carry a fixed
// Decision.
func (r *Rule) decide(toolName string, input map[string]any) (Decision, bool) {
	switch {
	case r.Name != "" && r.Conditional != nil:
		if r.Name != toolName {
			return "", false
		}
		return r.Conditional(input), true
	case r.Name != "":
		if r.Name != toolName {
			return "", false
		}
		return r.Decision, true
	case r.compiled != nil:
		if !r.compiled.Match(toolName) {
			return "", false
		}
		return r.Decision, true
	default:
		return "", false
	}
}

// Policy evaluates tool calls against an ordered list of rules,
// first-match-wins, falling back to a default decision.
type Policy struct {
	rules   []Rule
	Default Decision
}

// New builds a Policy from rules, compiling every glob pattern up front.
// defaultDecision is used when no rule matches.
func New(rules []Rule, defaultDecision Decision) (*Policy, error) {
	compiled := make([]Rule, len(rules))
	for i, r := range rules {
		if err := r.compile(); err != nil {
			return nil, err
		}
		compiled[i] = r
	}
	if defaultDecision == "" {
		defaultDecision = DecisionAsk
	}
	return &Policy{rules: compiled, Default: defaultDecision}, nil
}

// Evaluate returns the decision for toolName given its call input: the
// first matching rule's Decision, in insertion order, or Default if none
// match. input is only consulted by Conditional rules.
func (p *Policy) Evaluate(toolName string, input map[string]any) Decision {
	for i := range p.rules {
		if decision, ok := p.rules[i].decide(toolName, input); ok {
			return decision
		}
	}
	return p.Default
}
