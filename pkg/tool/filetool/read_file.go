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

// Package filetool provides a small set of built-in, filesystem-backed
// tools (read/write/grep/replace/PDF extraction), adapted from the
// teacher's pkg/tool/filetool package to this module's single-method
// tool.Tool contract.
package filetool

import (
	"context"
	"fmt"
	"os"
	"strings"

	"agentcore/pkg/tool"
)

// readFileInput is decoded from the raw input map via mapstructure, and
// reflected into a JSON schema via tool.GenerateSchema.
type readFileInput struct {
	Path      string `mapstructure:"path" json:"path" jsonschema:"required,description=file to read"`
	StartLine int    `mapstructure:"start_line" json:"start_line,omitempty" jsonschema:"description=1-indexed first line (inclusive)"`
	EndLine   int    `mapstructure:"end_line" json:"end_line,omitempty" jsonschema:"description=1-indexed last line (inclusive)"`
}

// ReadFile reads a file, optionally restricted to a 1-indexed, inclusive
// line range.
type ReadFile struct{}

func (ReadFile) Name() string        { return "read_file" }
func (ReadFile) Description() string { return "Reads a file's contents, optionally within a line range." }
func (ReadFile) Schema() map[string]any {
	return tool.GenerateSchema(readFileInput{})
}

func (ReadFile) RequiresApproval(map[string]any) bool { return false }

func (ReadFile) Execute(ctx context.Context, raw map[string]any) (tool.Result, error) {
	var input readFileInput
	if err := decodeInput(raw, &input); err != nil {
		return tool.Result{IsError: true, Content: err.Error()}, nil
	}
	if input.Path == "" {
		return tool.Result{IsError: true, Content: "path is required"}, nil
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to read %q: %v", input.Path, err)}, nil
	}

	if input.StartLine == 0 && input.EndLine == 0 {
		return tool.Result{Content: string(data)}, nil
	}

	lines := strings.Split(string(data), "\n")
	start := 0
	if input.StartLine > 0 {
		start = input.StartLine - 1
	}
	end := len(lines)
	if input.EndLine > 0 && input.EndLine < end {
		end = input.EndLine
	}
	if start >= len(lines) || start > end {
		return tool.Result{Content: ""}, nil
	}
	return tool.Result{Content: strings.Join(lines[start:end], "\n")}, nil
}
