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

package filetool

import (
	"context"
	"fmt"
	"os"

	"agentcore/pkg/tool"
)

type writeFileInput struct {
	Path    string `mapstructure:"path" json:"path" jsonschema:"required,description=file to write"`
	Content string `mapstructure:"content" json:"content" jsonschema:"required,description=full file contents"`
}

// WriteFile overwrites (or creates) a file with the given content. Always
// requires approval: this tool has a real, irreversible side effect.
type WriteFile struct{}

func (WriteFile) Name() string        { return "write_file" }
func (WriteFile) Description() string { return "Writes content to a file, creating or overwriting it." }
func (WriteFile) Schema() map[string]any {
	return tool.GenerateSchema(writeFileInput{})
}

func (WriteFile) RequiresApproval(map[string]any) bool { return true }

func (WriteFile) Execute(ctx context.Context, raw map[string]any) (tool.Result, error) {
	var input writeFileInput
	if err := decodeInput(raw, &input); err != nil {
		return tool.Result{IsError: true, Content: err.Error()}, nil
	}
	if input.Path == "" {
		return tool.Result{IsError: true, Content: "path is required"}, nil
	}
	if err := os.WriteFile(input.Path, []byte(input.Content), 0o644); err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to write %q: %v", input.Path, err)}, nil
	}
	return tool.Result{Content: fmt.Sprintf("wrote %d bytes to %s", len(input.Content), input.Path)}, nil
}
