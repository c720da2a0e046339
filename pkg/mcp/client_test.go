package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServerScript is a minimal MCP stdio server implemented as a shell
// script: it replies to initialize, acknowledges the initialized
// notification silently, answers tools/list with one echo tool, and
// answers tools/call by echoing back the "message" argument it was given.
// This exercises the real wire protocol end to end without depending on
// any actual MCP server binary being present in the test environment.
const fakeServerScript = `
while IFS= read -r line; do
  id=$(echo "$line" | sed -n 's/.*"id":\([0-9]*\).*/\1/p')
  method=$(echo "$line" | sed -n 's/.*"method":"\([a-zA-Z/]*\)".*/\1/p')
  case "$method" in
    initialize)
      printf '{"jsonrpc":"2.0","id":%s,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"fake","version":"0"},"capabilities":{}}}\n' "$id"
      ;;
    notifications/initialized)
      ;;
    tools/list)
      printf '{"jsonrpc":"2.0","id":%s,"result":{"tools":[{"name":"echo","description":"echoes input","inputSchema":{"type":"object"}}]}}\n' "$id"
      ;;
    tools/call)
      msg=$(echo "$line" | sed -n 's/.*"message":"\([^"]*\)".*/\1/p')
      printf '{"jsonrpc":"2.0","id":%s,"result":{"content":[{"type":"text","text":"%s"}],"isError":false}}\n' "$id" "$msg"
      ;;
  esac
done
`

func connectFake(t *testing.T) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Connect(ctx, ServerConfig{Command: "sh", Args: []string{"-c", fakeServerScript}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientInitializeAndListTools(t *testing.T) {
	client := connectFake(t)
	tools, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "echo", tools[0].Name)
}

func TestClientCallTool(t *testing.T) {
	client := connectFake(t)
	content, isError, err := client.CallTool(context.Background(), "echo", map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.False(t, isError)
	assert.Equal(t, "hi", content)
}

func TestProxyToolExecute(t *testing.T) {
	client := connectFake(t)
	tools, err := DiscoverTools(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, tools, 1)

	res, err := tools[0].Execute(context.Background(), map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Content)
	assert.True(t, tools[0].RequiresApproval(nil))
}

func TestDiscoverPrefixedToolsAppliesPrefix(t *testing.T) {
	client := connectFake(t)
	tools, err := DiscoverPrefixedTools(context.Background(), client, "fs")
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "fs_echo", tools[0].Name())

	res, err := tools[0].Execute(context.Background(), map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Content)
}

func TestCallToolAfterCloseReturnsError(t *testing.T) {
	client := connectFake(t)
	require.NoError(t, client.Close())
	_, _, err := client.CallTool(context.Background(), "echo", map[string]any{"message": "hi"})
	assert.Error(t, err)
}
