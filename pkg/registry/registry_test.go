package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentcore/pkg/errs"
	"agentcore/pkg/mcp"
	"agentcore/pkg/tool"
)

// fakeMcpServerScript is the minimal stdio MCP server from pkg/mcp's own
// tests, except that it lists one "read" tool instead of "echo"; it
// echoes back the "message" argument on tools/call.
const fakeMcpServerScript = `
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
      printf '{"jsonrpc":"2.0","id":%s,"result":{"tools":[{"name":"read","description":"reads a file","inputSchema":{"type":"object"}}]}}\n' "$id"
      ;;
    tools/call)
      msg=$(echo "$line" | sed -n 's/.*"message":"\([^"]*\)".*/\1/p')
      printf '{"jsonrpc":"2.0","id":%s,"result":{"content":[{"type":"text","text":"%s"}],"isError":false}}\n' "$id" "$msg"
      ;;
  esac
done
`

func TestBaseRegisterGetListRemove(t *testing.T) {
	b := NewBase[int]()
	require.NoError(t, b.Register("b", 2))
	require.NoError(t, b.Register("a", 1))
	assert.Equal(t, []string{"a", "b"}, b.List())

	v, ok := b.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	b.Remove("a")
	_, ok = b.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, b.Count())
}

func TestToolRegistryExecuteTool(t *testing.T) {
	r := NewToolRegistry(nil)
	require.NoError(t, r.Register(tool.Echo{}))

	res, err := r.ExecuteTool(context.Background(), "echo", map[string]any{"message": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Content)
}

func TestToolRegistryExecuteMissing(t *testing.T) {
	r := NewToolRegistry(nil)
	_, err := r.ExecuteTool(context.Background(), "missing", nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTool, errs.ToolNotFound))
}

func TestFilteredRegistryDenyWinsOverAllow(t *testing.T) {
	inner := NewToolRegistry(nil)
	require.NoError(t, inner.Register(tool.Echo{}))

	f := NewFilteredRegistry(inner, []string{"echo"}, []string{"echo"})
	_, ok := f.Get("echo")
	assert.False(t, ok)
	assert.Empty(t, f.List())
}

func TestFilteredRegistryEmptyAllowAdmitsAll(t *testing.T) {
	inner := NewToolRegistry(nil)
	require.NoError(t, inner.Register(tool.Echo{}))

	f := NewFilteredRegistry(inner, nil, nil)
	_, ok := f.Get("echo")
	assert.True(t, ok)
	assert.Equal(t, []string{"echo"}, f.List())
}

func TestFilteredRegistryExecuteToolHidesDeniedName(t *testing.T) {
	inner := NewToolRegistry(nil)
	require.NoError(t, inner.Register(tool.Echo{}))

	f := NewFilteredRegistry(inner, nil, []string{"echo"})
	_, err := f.ExecuteTool(context.Background(), "echo", map[string]any{"message": "hi"})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.KindTool, errs.ToolNotFound))
}

func TestMergeMcpRegistersUnderPrefix(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mcp.Connect(ctx, mcp.ServerConfig{Command: "sh", Args: []string{"-c", fakeMcpServerScript}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	r := NewToolRegistry(nil)
	names, err := r.MergeMcp(ctx, client, "fs")
	require.NoError(t, err)
	assert.Equal(t, []string{"fs_read"}, names)

	tl, ok := r.Get("fs_read")
	require.True(t, ok)
	assert.Equal(t, "fs_read", tl.Name())

	res, err := r.ExecuteTool(ctx, "fs_read", map[string]any{"message": "contents"})
	require.NoError(t, err)
	assert.Equal(t, "contents", res.Content)
}
