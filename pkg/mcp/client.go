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

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"agentcore/pkg/errs"
)

// Client is a connection to one MCP server over its stdio transport. One
// background goroutine reads newline-delimited JSON-RPC responses and
// dispatches them to the pending call that is waiting for that ID; writes
// to the subprocess's stdin are serialized with a mutex so concurrent
// CallTool invocations never interleave their request bytes.
type Client struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	nextID atomic.Int64

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[int64]chan rpcResponse

	closeOnce sync.Once
	closed    chan struct{}

	serverInfo clientInfo
}

// Connect spawns the configured command, completes the MCP initialize
// handshake, and starts the background reader goroutine. ctx bounds the
// handshake only. The returned Client owns the subprocess; callers must
// call Close when done with it.
func Connect(ctx context.Context, cfg ServerConfig) (*Client, error) {
	if cfg.Command == "" {
		return nil, errs.NewMcpConnection("server config has no command", nil)
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errs.NewMcpConnection("failed to open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errs.NewMcpConnection("failed to open stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, errs.NewMcpConnection(fmt.Sprintf("failed to start %q", cfg.Command), err)
	}

	c := &Client{
		cmd:     cmd,
		stdin:   stdin,
		pending: make(map[int64]chan rpcResponse),
		closed:  make(chan struct{}),
	}
	go c.readLoop(stdout)

	if err := c.initialize(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) readLoop(stdout io.ReadCloser) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		c.pendingMu.Lock()
		ch, ok := c.pending[resp.ID]
		if ok {
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()
		if ok {
			ch <- resp
		}
	}
	c.cancelAllPending()
}

func (c *Client) cancelAllPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

// call issues a request and blocks until its matching response arrives, the
// context is cancelled, or the subprocess's stdout is closed.
func (c *Client) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := c.nextID.Add(1)

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, errs.NewMcpProtocol("failed to encode params: " + err.Error())
	}
	req := rpcRequest{JSONRPC: jsonRPCVersion, ID: id, Method: method, Params: paramsJSON}
	line, err := json.Marshal(req)
	if err != nil {
		return nil, errs.NewMcpProtocol("failed to encode request: " + err.Error())
	}

	ch := make(chan rpcResponse, 1)
	c.pendingMu.Lock()
	c.pending[id] = ch
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	_, writeErr := c.stdin.Write(append(line, '\n'))
	c.writeMu.Unlock()
	if writeErr != nil {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, errs.NewMcpIo(writeErr)
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, errs.NewMcpConnection("connection closed before response arrived", nil)
		}
		if resp.Error != nil {
			return nil, errs.NewMcpRpc(resp.Error.Code, resp.Error.Message)
		}
		return resp.Result, nil
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errs.NewMcpConnection("client closed", nil)
	}
}

// notify sends a request with no ID and does not wait for a response, for
// the notifications/initialized handshake step.
func (c *Client) notify(method string, params any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return errs.NewMcpProtocol("failed to encode params: " + err.Error())
	}
	req := struct {
		JSONRPC string          `json:"jsonrpc"`
		Method  string          `json:"method"`
		Params  json.RawMessage `json:"params,omitempty"`
	}{JSONRPC: jsonRPCVersion, Method: method, Params: paramsJSON}
	line, err := json.Marshal(req)
	if err != nil {
		return errs.NewMcpProtocol("failed to encode notification: " + err.Error())
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.stdin.Write(append(line, '\n')); err != nil {
		return errs.NewMcpIo(err)
	}
	return nil
}

func (c *Client) initialize(ctx context.Context) error {
	raw, err := c.call(ctx, "initialize", initializeParams{
		ProtocolVersion: protocolVersion,
		ClientInfo:      clientInfo{Name: "agentcore", Version: "0.1.0"},
		Capabilities:    map[string]any{},
	})
	if err != nil {
		return err
	}
	var result initializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return errs.NewMcpProtocol("malformed initialize result: " + err.Error())
	}
	c.serverInfo = result.ServerInfo
	return c.notify("notifications/initialized", map[string]any{})
}

// ListTools fetches the server's current tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]ToolInfo, error) {
	raw, err := c.call(ctx, "tools/list", map[string]any{})
	if err != nil {
		return nil, err
	}
	var result listToolsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errs.NewMcpProtocol("malformed tools/list result: " + err.Error())
	}
	return result.Tools, nil
}

// CallTool invokes one remote tool and returns its concatenated text
// content and error flag.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (content string, isError bool, err error) {
	raw, err := c.call(ctx, "tools/call", callToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", false, err
	}
	var result callToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", false, errs.NewMcpProtocol("malformed tools/call result: " + err.Error())
	}
	for _, block := range result.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}
	return content, result.IsError, nil
}

// Close terminates the subprocess and releases the reader goroutine. Safe
// to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.stdin.Close()
		if c.cmd.Process != nil {
			_ = c.cmd.Process.Kill()
		}
		// Exit status is expected to be non-zero after a Kill; the process
		// being gone is the only thing Close needs to guarantee.
		_ = c.cmd.Wait()
	})
	return nil
}
