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
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"agentcore/pkg/tool"
)

type grepSearchInput struct {
	Root       string `mapstructure:"root" json:"root" jsonschema:"required,description=directory to search under"`
	Pattern    string `mapstructure:"pattern" json:"pattern" jsonschema:"required,description=regular expression to match"`
	FileGlob   string `mapstructure:"file_glob" json:"file_glob,omitempty" jsonschema:"description=filepath.Match glob restricting which filenames are searched"`
	MaxResults int    `mapstructure:"max_results" json:"max_results,omitempty" jsonschema:"description=maximum matching lines to return, default 200"`
}

// GrepSearch searches files under a root directory for a regular
// expression, restricted to filenames matching a filepath.Match glob.
type GrepSearch struct{}

func (GrepSearch) Name() string        { return "grep_search" }
func (GrepSearch) Description() string { return "Searches files under a root for a regex pattern." }
func (GrepSearch) Schema() map[string]any {
	return tool.GenerateSchema(grepSearchInput{})
}

func (GrepSearch) RequiresApproval(map[string]any) bool { return false }

func (GrepSearch) Execute(ctx context.Context, raw map[string]any) (tool.Result, error) {
	var input grepSearchInput
	if err := decodeInput(raw, &input); err != nil {
		return tool.Result{IsError: true, Content: err.Error()}, nil
	}
	root, pattern, fileGlob := input.Root, input.Pattern, input.FileGlob
	maxResults := input.MaxResults
	if maxResults <= 0 {
		maxResults = 200
	}
	if root == "" || pattern == "" {
		return tool.Result{IsError: true, Content: "root and pattern are required"}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("invalid pattern: %v", err)}, nil
	}

	var matches []string
	walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fileGlob != "" {
			ok, matchErr := filepath.Match(fileGlob, filepath.Base(path))
			if matchErr != nil || !ok {
				return nil
			}
		}
		if len(matches) >= maxResults {
			return nil
		}
		f, openErr := os.Open(path)
		if openErr != nil {
			return nil
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			if re.MatchString(scanner.Text()) {
				matches = append(matches, fmt.Sprintf("%s:%d: %s", path, lineNum, scanner.Text()))
				if len(matches) >= maxResults {
					break
				}
			}
		}
		return nil
	})
	if walkErr != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("walk failed: %v", walkErr)}, nil
	}

	return tool.Result{Content: strings.Join(matches, "\n")}, nil
}
