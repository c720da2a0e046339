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

// Package message defines the role/content-block/message data model
// exchanged between the agent loop and a language-model client.
//
// The shapes mirror what providers like Anthropic's Messages API put on the
// wire (see the teacher's AnthropicContent/AnthropicMessage types), but stay
// provider-agnostic: encoding to a specific HTTP body is left to external
// collaborators.
package message

// Role identifies who produced a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType tags the variant carried by a ContentBlock.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is a tagged union of Text, ToolUse and ToolResult variants.
// Only the fields relevant to Type are populated; the zero value for the
// others is left unset.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// Text variant.
	Text string `json:"text,omitempty"`

	// ToolUse variant.
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`

	// ToolResult variant.
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

// NewText builds a Text content block.
func NewText(text string) ContentBlock {
	return ContentBlock{Type: BlockText, Text: text}
}

// NewToolUse builds a ToolUse content block.
func NewToolUse(id, name string, input map[string]any) ContentBlock {
	return ContentBlock{Type: BlockToolUse, ID: id, Name: name, Input: input}
}

// NewToolResult builds a ToolResult content block. A ToolResult decoded
// from JSON without an is_error field has IsError false.
func NewToolResult(toolUseID, content string, isError bool) ContentBlock {
	return ContentBlock{Type: BlockToolResult, ToolUseID: toolUseID, Content: content, IsError: isError}
}

// Message is an ordered sequence of content blocks produced by one role.
//
// Invariants (enforced by Validate, not by the constructors — callers
// assemble blocks incrementally while streaming):
//   - A User message must not contain ToolUse blocks.
//   - An Assistant message must not contain ToolResult blocks.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// NewUserText is a convenience constructor for a plain user turn.
func NewUserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{NewText(text)}}
}

// NewUserToolResults builds the observation-turn User message for a set of
// tool results, in the order given.
func NewUserToolResults(results []ContentBlock) Message {
	return Message{Role: RoleUser, Content: results}
}

// Validate checks the role-specific content restrictions from the data
// model: User messages carry no ToolUse blocks, Assistant messages carry
// no ToolResult blocks.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser:
		for _, b := range m.Content {
			if b.Type == BlockToolUse {
				return errInvalidContent("user message must not contain tool_use blocks")
			}
		}
	case RoleAssistant:
		for _, b := range m.Content {
			if b.Type == BlockToolResult {
				return errInvalidContent("assistant message must not contain tool_result blocks")
			}
		}
	}
	return nil
}

type validationError string

func (e validationError) Error() string { return string(e) }

func errInvalidContent(msg string) error { return validationError(msg) }

// ToolUseBlocks returns every ToolUse block in the message, in order.
func (m Message) ToolUseBlocks() []ContentBlock {
	var out []ContentBlock
	for _, b := range m.Content {
		if b.Type == BlockToolUse {
			out = append(out, b)
		}
	}
	return out
}

// Text concatenates every Text block in the message, in order.
func (m Message) Text() string {
	var out string
	for _, b := range m.Content {
		if b.Type == BlockText {
			out += b.Text
		}
	}
	return out
}

