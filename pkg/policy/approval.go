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

package policy

import (
	"context"

	"github.com/google/uuid"
)

// ApprovalContext carries the extra detail an ApprovalHandler needs to
// present a meaningful prompt (or log entry) for an Ask decision.
type ApprovalContext struct {
	ToolDescription string
	RequestID       string
}

// NewApprovalContext builds an ApprovalContext with a fresh RequestID.
func NewApprovalContext(toolDescription string) ApprovalContext {
	return ApprovalContext{ToolDescription: toolDescription, RequestID: uuid.NewString()}
}

// ApprovalHandler resolves an Ask decision into an approve/reject boolean.
// Implementations range from an interactive REPL prompt to an
// always-approve fixture used in tests.
type ApprovalHandler interface {
	RequestApproval(ctx context.Context, toolName string, input map[string]any, approvalCtx ApprovalContext) (bool, error)
}

// AlwaysApprove is an ApprovalHandler that approves every request.
type AlwaysApprove struct{}

func (AlwaysApprove) RequestApproval(context.Context, string, map[string]any, ApprovalContext) (bool, error) {
	return true, nil
}

// AlwaysReject is an ApprovalHandler that rejects every request.
type AlwaysReject struct{}

func (AlwaysReject) RequestApproval(context.Context, string, map[string]any, ApprovalContext) (bool, error) {
	return false, nil
}
