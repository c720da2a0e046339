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

// Package errs defines the error taxonomy shared across the agent loop,
// tool registry, policy engine and MCP client.
//
// Every subsystem error implements error and also exposes Kind(), so
// callers can route on the originating subsystem without string matching.
package errs

import "fmt"

// Kind identifies which subsystem an error originated from.
type Kind string

const (
	KindLLM        Kind = "llm"
	KindTool       Kind = "tool"
	KindPermission Kind = "permission"
	KindMcp        Kind = "mcp"
)

// Error is the top-level sum type. Every error surfaced across a subsystem
// boundary can be unwrapped to one of these.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s.%s: %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// ---- LlmError -------------------------------------------------------------

const (
	LlmHttp         = "Http"
	LlmApi          = "Api"
	LlmStreamClosed = "StreamClosed"
	LlmDeserialize  = "Deserialize"
)

func NewLlmHttp(cause error) *Error {
	return &Error{Kind: KindLLM, Code: LlmHttp, Message: "transport failure", Cause: cause}
}

func NewLlmApi(status int, message string) *Error {
	return &Error{Kind: KindLLM, Code: LlmApi, Message: fmt.Sprintf("status %d: %s", status, message)}
}

func NewLlmStreamClosed() *Error {
	return &Error{Kind: KindLLM, Code: LlmStreamClosed, Message: "stream closed before completion"}
}

func NewLlmDeserialize(cause error) *Error {
	return &Error{Kind: KindLLM, Code: LlmDeserialize, Message: "failed to deserialize response", Cause: cause}
}

// ---- ToolError --------------------------------------------------------------

const (
	ToolNotFound      = "NotFound"
	ToolInvalidParams = "InvalidParams"
	ToolExecution     = "Execution"
)

func NewToolNotFound(name string) *Error {
	return &Error{Kind: KindTool, Code: ToolNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}

func NewToolInvalidParams(detail string) *Error {
	return &Error{Kind: KindTool, Code: ToolInvalidParams, Message: detail}
}

func NewToolExecution(cause error) *Error {
	return &Error{Kind: KindTool, Code: ToolExecution, Message: "tool execution failed", Cause: cause}
}

// ---- PermissionError --------------------------------------------------------

const (
	PermissionDenied      = "Denied"
	PermissionRejected    = "Rejected"
	PermissionHandlerFail = "HandlerError"
)

func NewPermissionDenied(tool string) *Error {
	return &Error{Kind: KindPermission, Code: PermissionDenied, Message: fmt.Sprintf("denied by policy: %s", tool)}
}

func NewPermissionRejected(tool string) *Error {
	return &Error{Kind: KindPermission, Code: PermissionRejected, Message: fmt.Sprintf("rejected by user: %s", tool)}
}

func NewPermissionHandlerError(cause error) *Error {
	return &Error{Kind: KindPermission, Code: PermissionHandlerFail, Message: "approval handler failed", Cause: cause}
}

// ---- McpError ----------------------------------------------------------------

const (
	McpConnection = "Connection"
	McpProtocol   = "Protocol"
	McpRpc        = "Rpc"
	McpIo         = "Io"
)

func NewMcpConnection(detail string, cause error) *Error {
	return &Error{Kind: KindMcp, Code: McpConnection, Message: detail, Cause: cause}
}

func NewMcpProtocol(detail string) *Error {
	return &Error{Kind: KindMcp, Code: McpProtocol, Message: detail}
}

func NewMcpRpc(code int, message string) *Error {
	return &Error{Kind: KindMcp, Code: McpRpc, Message: fmt.Sprintf("rpc error %d: %s", code, message)}
}

func NewMcpIo(cause error) *Error {
	return &Error{Kind: KindMcp, Code: McpIo, Message: "i/o failure", Cause: cause}
}

// Is reports whether err is an *Error of the given kind and code, walking
// the cause chain.
func Is(err error, kind Kind, code string) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind && e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		break
	}
	return false
}
