package agent

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcore/pkg/llm"
	"agentcore/pkg/message"
	"agentcore/pkg/policy"
	"agentcore/pkg/registry"
	"agentcore/pkg/tool"
)

// failingApprovalHandler always errors, simulating a broken human-in-the-
// loop surface (e.g. a disconnected UI channel) rather than a rejection.
type failingApprovalHandler struct{ err error }

func (f failingApprovalHandler) RequestApproval(context.Context, string, map[string]any, policy.ApprovalContext) (bool, error) {
	return false, f.err
}

// scriptedClient returns one scripted Response per call, in order, and
// never streams — every test in this file exercises the non-streaming path.
type scriptedClient struct {
	responses []llm.Response
	calls     int
}

func (s *scriptedClient) CreateMessage(ctx context.Context, req llm.Request) (llm.Response, error) {
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

func (s *scriptedClient) CreateMessageStream(ctx context.Context, req llm.Request) iter.Seq2[llm.StreamEvent, error] {
	return func(yield func(llm.StreamEvent, error) bool) {}
}

func newRegistryWithEcho() *registry.ToolRegistry {
	r := registry.NewToolRegistry(nil)
	_ = r.Register(tool.Echo{})
	return r
}

func allowAllPolicy(t *testing.T) *policy.Policy {
	t.Helper()
	p, err := policy.New(nil, policy.DecisionAllow)
	require.NoError(t, err)
	return p
}

func TestRunReturnsTextWhenNoToolUse(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewText("hello there")}, StopReason: llm.StopEndTurn},
	}}
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: allowAllPolicy(t)})

	text, err := a.Run(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
	assert.Len(t, a.Transcript(), 2) // user turn + assistant turn
}

func TestRunExecutesAllowedTool(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("done")}, StopReason: llm.StopEndTurn},
	}}
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: allowAllPolicy(t)})

	text, err := a.Run(context.Background(), "echo ping")
	require.NoError(t, err)
	assert.Equal(t, "done", text)

	transcript := a.Transcript()
	require.Len(t, transcript, 4) // user, assistant(tool_use), user(tool_result), assistant(text)
	toolResultMsg := transcript[2]
	require.Len(t, toolResultMsg.Content, 1)
	assert.Equal(t, "ping", toolResultMsg.Content[0].Content)
	assert.False(t, toolResultMsg.Content[0].IsError)
}

func TestRunDeniesToolPerPolicy(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("acknowledged")}, StopReason: llm.StopEndTurn},
	}}
	denyPolicy, err := policy.New([]policy.Rule{{Name: "echo", Decision: policy.DecisionDeny}}, policy.DecisionAllow)
	require.NoError(t, err)
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: denyPolicy})

	_, err = a.Run(context.Background(), "echo ping")
	require.NoError(t, err)

	toolResultMsg := a.Transcript()[2]
	assert.True(t, toolResultMsg.Content[0].IsError)
	assert.Contains(t, toolResultMsg.Content[0].Content, "Denied by policy")
}

func TestRunAsksAndRespectsApprovalHandler(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("acknowledged")}, StopReason: llm.StopEndTurn},
	}}
	askPolicy, err := policy.New([]policy.Rule{{Name: "echo", Decision: policy.DecisionAsk}}, policy.DecisionAllow)
	require.NoError(t, err)
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: askPolicy, ApprovalHandler: policy.AlwaysApprove{}})

	_, err = a.Run(context.Background(), "echo ping")
	require.NoError(t, err)

	toolResultMsg := a.Transcript()[2]
	assert.False(t, toolResultMsg.Content[0].IsError)
	assert.Equal(t, "ping", toolResultMsg.Content[0].Content)
}

func TestRunAskDefaultsToRejectWithoutHandler(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("acknowledged")}, StopReason: llm.StopEndTurn},
	}}
	askPolicy, err := policy.New([]policy.Rule{{Name: "echo", Decision: policy.DecisionAsk}}, policy.DecisionAllow)
	require.NoError(t, err)
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: askPolicy})

	_, err = a.Run(context.Background(), "echo ping")
	require.NoError(t, err)

	toolResultMsg := a.Transcript()[2]
	assert.True(t, toolResultMsg.Content[0].IsError)
	assert.Contains(t, toolResultMsg.Content[0].Content, "Rejected by user")
}

func TestRunAbortsTurnWhenApprovalHandlerErrors(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
	}}
	askPolicy, err := policy.New([]policy.Rule{{Name: "echo", Decision: policy.DecisionAsk}}, policy.DecisionAllow)
	require.NoError(t, err)
	handlerErr := errors.New("approval channel disconnected")
	a := New(Config{
		Client:          client,
		Tools:           newRegistryWithEcho(),
		Policy:          askPolicy,
		ApprovalHandler: failingApprovalHandler{err: handlerErr},
	})

	_, err = a.Run(context.Background(), "echo ping")
	require.Error(t, err)
	assert.ErrorIs(t, err, handlerErr)
	// The turn aborted before an observation turn was ever appended.
	assert.Len(t, a.Transcript(), 2) // user turn + assistant(tool_use) only
}

// alwaysApproveTool is a minimal mutating tool standing in for write_file,
// to exercise RequiresApproval without importing pkg/tool/filetool here.
type alwaysApproveTool struct{}

func (alwaysApproveTool) Name() string                        { return "write_file" }
func (alwaysApproveTool) Description() string                 { return "writes a file" }
func (alwaysApproveTool) Schema() map[string]any               { return map[string]any{"type": "object"} }
func (alwaysApproveTool) RequiresApproval(map[string]any) bool { return true }
func (alwaysApproveTool) Execute(context.Context, map[string]any) (tool.Result, error) {
	return tool.Result{Content: "wrote"}, nil
}

func TestRunForcesApprovalWhenToolRequiresIt(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "write_file", map[string]any{"path": "x", "content": "y"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("done")}, StopReason: llm.StopEndTurn},
	}}
	r := registry.NewToolRegistry(nil)
	require.NoError(t, r.Register(alwaysApproveTool{}))
	a := New(Config{Client: client, Tools: r, Policy: allowAllPolicy(t), ApprovalHandler: policy.AlwaysReject{}})

	_, err := a.Run(context.Background(), "write something")
	require.NoError(t, err)

	// Policy says Allow, but the tool itself demands approval and the
	// configured handler always rejects, so the call must still be denied.
	toolResultMsg := a.Transcript()[2]
	assert.True(t, toolResultMsg.Content[0].IsError)
	assert.Contains(t, toolResultMsg.Content[0].Content, "Rejected by user")
}

func TestRunWithFilteredRegistryHidesDeniedTool(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "echo", map[string]any{"message": "ping"})}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("done")}, StopReason: llm.StopEndTurn},
	}}
	filtered := registry.NewFilteredRegistry(newRegistryWithEcho(), nil, []string{"echo"})
	a := New(Config{Client: client, Tools: filtered, Policy: allowAllPolicy(t)})

	_, err := a.Run(context.Background(), "echo ping")
	require.NoError(t, err)

	toolResultMsg := a.Transcript()[2]
	assert.True(t, toolResultMsg.Content[0].IsError)
	assert.Contains(t, toolResultMsg.Content[0].Content, "Tool not found")
}

func TestRunStopsAtIterationBound(t *testing.T) {
	responses := make([]llm.Response, 0, 3)
	for i := 0; i < 3; i++ {
		responses = append(responses, llm.Response{
			Content:    []message.ContentBlock{message.NewToolUse("x", "echo", map[string]any{"message": "again"})},
			StopReason: llm.StopToolUse,
		})
	}
	client := &scriptedClient{responses: responses}
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: allowAllPolicy(t), MaxIterations: 3})

	text, err := a.Run(context.Background(), "loop forever")
	require.NoError(t, err)
	assert.Equal(t, "", text) // last assistant turn carried only a tool_use block
	assert.Equal(t, 3, client.calls)
}

func TestRunUnknownToolReturnsErrorResult(t *testing.T) {
	client := &scriptedClient{responses: []llm.Response{
		{Content: []message.ContentBlock{message.NewToolUse("1", "missing", nil)}, StopReason: llm.StopToolUse},
		{Content: []message.ContentBlock{message.NewText("done")}, StopReason: llm.StopEndTurn},
	}}
	a := New(Config{Client: client, Tools: newRegistryWithEcho(), Policy: allowAllPolicy(t)})

	_, err := a.Run(context.Background(), "call missing tool")
	require.NoError(t, err)

	toolResultMsg := a.Transcript()[2]
	assert.True(t, toolResultMsg.Content[0].IsError)
	assert.Equal(t, "Tool not found: missing", toolResultMsg.Content[0].Content)
}
