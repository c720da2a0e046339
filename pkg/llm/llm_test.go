package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcore/pkg/message"
)

func TestResponseTextAndToolUse(t *testing.T) {
	resp := Response{
		Content: []message.ContentBlock{
			message.NewText("part one "),
			message.NewToolUse("t1", "echo", map[string]any{"message": "hi"}),
			message.NewText("part two"),
		},
		StopReason: StopToolUse,
	}

	assert.Equal(t, "part one part two", resp.Text())
	assert.True(t, resp.HasToolUse())
	require.Len(t, resp.ToolUseBlocks(), 1)
	assert.Equal(t, "echo", resp.ToolUseBlocks()[0].Name)
}

func TestReassembleMatchesCreateMessage(t *testing.T) {
	want := Response{
		ID:         "msg_1",
		Model:      "fake-model",
		StopReason: StopToolUse,
		Usage:      Usage{InputTokens: 10, OutputTokens: 5},
		Content: []message.ContentBlock{
			message.NewText("thinking out loud"),
			message.NewToolUse("call_1", "echo", map[string]any{"message": "hi"}),
		},
	}
	client := newFakeClient(want)

	got, err := client.CreateMessage(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// CreateMessage advanced the fake's cursor, so script a second client
	// with the same response for the streaming path.
	streaming := newFakeClient(want)
	reassembled, err := Reassemble(streaming.CreateMessageStream(context.Background(), Request{}))
	require.NoError(t, err)
	assert.Equal(t, want, reassembled)
}
