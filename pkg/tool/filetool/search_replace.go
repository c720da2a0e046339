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
	"strings"

	"agentcore/pkg/tool"
)

type searchReplaceInput struct {
	Path        string `mapstructure:"path" json:"path" jsonschema:"required,description=file to modify"`
	Search      string `mapstructure:"search" json:"search" jsonschema:"required,description=literal text to find"`
	Replacement string `mapstructure:"replacement" json:"replacement" jsonschema:"required,description=text to substitute in"`
	ReplaceAll  bool   `mapstructure:"replace_all" json:"replace_all,omitempty" jsonschema:"description=replace every occurrence instead of only the first"`
}

// SearchReplace performs a literal (non-regex) search-and-replace within
// one file and writes the result back. Requires approval, like WriteFile.
type SearchReplace struct{}

func (SearchReplace) Name() string        { return "search_replace" }
func (SearchReplace) Description() string { return "Replaces literal text within a file." }
func (SearchReplace) Schema() map[string]any {
	return tool.GenerateSchema(searchReplaceInput{})
}

func (SearchReplace) RequiresApproval(map[string]any) bool { return true }

func (SearchReplace) Execute(ctx context.Context, raw map[string]any) (tool.Result, error) {
	var input searchReplaceInput
	if err := decodeInput(raw, &input); err != nil {
		return tool.Result{IsError: true, Content: err.Error()}, nil
	}
	path, search, replacement, replaceAll := input.Path, input.Search, input.Replacement, input.ReplaceAll
	if path == "" || search == "" {
		return tool.Result{IsError: true, Content: "path and search are required"}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to read %q: %v", path, err)}, nil
	}

	original := string(data)
	count := strings.Count(original, search)
	if count == 0 {
		return tool.Result{IsError: true, Content: fmt.Sprintf("search text not found in %s", path)}, nil
	}

	var updated string
	if replaceAll {
		updated = strings.ReplaceAll(original, search, replacement)
	} else {
		updated = strings.Replace(original, search, replacement, 1)
		count = 1
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to write %q: %v", path, err)}, nil
	}
	return tool.Result{Content: fmt.Sprintf("replaced %d occurrence(s) in %s", count, path)}, nil
}
