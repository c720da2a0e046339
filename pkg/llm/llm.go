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

// Package llm defines the abstract language-model client contract the
// agent loop depends on. Concrete provider implementations (Claude,
// OpenAI, Gemini HTTP encoders) are external collaborators — this package
// only describes the shape they must satisfy, mirroring how the teacher's
// llms.LLMProvider interface decouples reasoning from a specific wire
// format, generalized to message/content-block requests and responses.
package llm

import (
	"context"
	"encoding/json"
	"iter"

	"agentcore/pkg/message"
)

// StopReason explains why a Response stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// Usage reports token accounting for a Response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Request is the immutable description of one call to a model. Once built
// and submitted it must not be mutated by the client.
type Request struct {
	Model       string
	Messages    []message.Message
	Tools       []ToolDefinition
	MaxTokens   int
	System      string
	Temperature *float64
}

// ToolDefinition is the tool shape handed to the model. Schemas are
// JSON-schema documents; adapting them to a specific provider's function
// calling format is the provider encoder's job, not this package's.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Response is a complete, non-streaming model turn.
type Response struct {
	ID         string
	Content    []message.ContentBlock
	StopReason StopReason
	Model      string
	Usage      Usage
}

// Text concatenates every Text block in the response, in order.
func (r Response) Text() string {
	var out string
	for _, b := range r.Content {
		if b.Type == message.BlockText {
			out += b.Text
		}
	}
	return out
}

// HasToolUse reports whether any ToolUse block is present.
func (r Response) HasToolUse() bool {
	for _, b := range r.Content {
		if b.Type == message.BlockToolUse {
			return true
		}
	}
	return false
}

// ToolUseBlocks returns every ToolUse block in the response, in order.
func (r Response) ToolUseBlocks() []message.ContentBlock {
	var out []message.ContentBlock
	for _, b := range r.Content {
		if b.Type == message.BlockToolUse {
			out = append(out, b)
		}
	}
	return out
}

// StreamEventType tags a StreamEvent variant.
type StreamEventType string

const (
	EventMessageStart      StreamEventType = "message_start"
	EventContentBlockStart StreamEventType = "content_block_start"
	EventContentBlockDelta StreamEventType = "content_block_delta"
	EventContentBlockStop  StreamEventType = "content_block_stop"
	EventMessageDelta      StreamEventType = "message_delta"
	EventMessageStop       StreamEventType = "message_stop"
)

// StreamEvent is one incremental update in a streamed Response.
type StreamEvent struct {
	Type StreamEventType

	// Index identifies which content block this event concerns, for
	// ContentBlockStart/Delta/Stop events.
	Index int

	// Populated for MessageStart.
	Message *Response

	// Populated for ContentBlockStart: the block's shell (type, id, name)
	// before any delta text/input has arrived.
	BlockStart *message.ContentBlock

	// Populated for ContentBlockDelta: incremental text, or incremental
	// partial-JSON for a tool_use input under construction.
	TextDelta        string
	PartialJSONDelta string

	// Populated for MessageDelta.
	StopReason *StopReason
	Usage      *Usage
}

// Client is the capability surface the agent loop depends on. Provider
// implementations (HTTP + SSE encoders for Claude/OpenAI/Gemini) satisfy
// this from outside the core.
type Client interface {
	// CreateMessage issues one request and returns the complete response.
	// Not cancellable once the call has been issued to the transport.
	CreateMessage(ctx context.Context, req Request) (Response, error)

	// CreateMessageStream returns a fresh, finite sequence of StreamEvent
	// for one request. Callers must build a new stream per call; the
	// sequence always ends with a MessageStop event or an error.
	CreateMessageStream(ctx context.Context, req Request) iter.Seq2[StreamEvent, error]
}

// Reassemble consumes a StreamEvent sequence and rebuilds the Response it
// represents, per spec §9's streaming-reassembly guidance: buffer
// per-index content deltas and emit the finished block on
// ContentBlockStop. The result must equal what CreateMessage would have
// produced for the same request (property P5).
func Reassemble(events iter.Seq2[StreamEvent, error]) (Response, error) {
	var resp Response
	blocks := map[int]*message.ContentBlock{}
	var order []int
	partialJSON := map[int]string{}

	for ev, err := range events {
		if err != nil {
			return Response{}, err
		}
		switch ev.Type {
		case EventMessageStart:
			if ev.Message != nil {
				resp.ID = ev.Message.ID
				resp.Model = ev.Message.Model
				resp.Usage = ev.Message.Usage
			}
		case EventContentBlockStart:
			block := message.ContentBlock{}
			if ev.BlockStart != nil {
				block = *ev.BlockStart
			}
			blocks[ev.Index] = &block
			order = append(order, ev.Index)
		case EventContentBlockDelta:
			block := blocks[ev.Index]
			if block == nil {
				continue
			}
			if ev.TextDelta != "" {
				block.Text += ev.TextDelta
			}
			if ev.PartialJSONDelta != "" {
				partialJSON[ev.Index] += ev.PartialJSONDelta
			}
		case EventContentBlockStop:
			block := blocks[ev.Index]
			if block != nil && block.Type == message.BlockToolUse {
				if raw, ok := partialJSON[ev.Index]; ok && raw != "" {
					input, perr := parseToolInput(raw)
					if perr != nil {
						return Response{}, perr
					}
					block.Input = input
				}
			}
		case EventMessageDelta:
			if ev.StopReason != nil {
				resp.StopReason = *ev.StopReason
			}
			if ev.Usage != nil {
				resp.Usage = *ev.Usage
			}
		case EventMessageStop:
			// terminal event; loop ends naturally when the sequence is exhausted.
		}
	}

	for _, idx := range order {
		resp.Content = append(resp.Content, *blocks[idx])
	}
	return resp, nil
}

func parseToolInput(raw string) (map[string]any, error) {
	var input map[string]any
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, err
	}
	return input, nil
}
