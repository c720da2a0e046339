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

package tool

import "context"

// echoInput is reflected into Echo's JSON schema via GenerateSchema.
type echoInput struct {
	Message string `json:"message" jsonschema:"required,description=the text to echo back"`
}

// Echo is a trivial read-only tool, useful as a registry/agent-loop test
// fixture: it requires no approval and succeeds whenever a non-empty
// message is given; a missing or empty message yields an IsError result.
type Echo struct{}

func (Echo) Name() string        { return "echo" }
func (Echo) Description() string { return "Returns the given message unchanged." }

func (Echo) Schema() map[string]any {
	return GenerateSchema(echoInput{})
}

func (Echo) RequiresApproval(map[string]any) bool { return false }

func (Echo) Execute(ctx context.Context, input map[string]any) (Result, error) {
	msg, _ := input["message"].(string)
	if msg == "" {
		return Result{Content: "", IsError: true, Metadata: map[string]any{"reason": "missing message"}}, nil
	}
	return Result{Content: msg}, nil
}
