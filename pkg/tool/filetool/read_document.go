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
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"agentcore/pkg/tool"
)

type readDocumentInput struct {
	Path string `mapstructure:"path" json:"path" jsonschema:"required,description=PDF file to extract text from"`
}

// ReadDocument extracts plain text from a PDF file. This is the one tool
// in the registry that depends on a document-parsing library rather than
// raw filesystem calls.
type ReadDocument struct{}

func (ReadDocument) Name() string        { return "read_document" }
func (ReadDocument) Description() string { return "Extracts text content from a PDF file." }
func (ReadDocument) Schema() map[string]any {
	return tool.GenerateSchema(readDocumentInput{})
}

func (ReadDocument) RequiresApproval(map[string]any) bool { return false }

func (ReadDocument) Execute(ctx context.Context, raw map[string]any) (tool.Result, error) {
	var input readDocumentInput
	if err := decodeInput(raw, &input); err != nil {
		return tool.Result{IsError: true, Content: err.Error()}, nil
	}
	if input.Path == "" {
		return tool.Result{IsError: true, Content: "path is required"}, nil
	}

	f, r, err := pdf.Open(input.Path)
	if err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to open %q: %v", input.Path, err)}, nil
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to extract text from %q: %v", input.Path, err)}, nil
	}
	if _, err := io.Copy(&buf, reader); err != nil {
		return tool.Result{IsError: true, Content: fmt.Sprintf("failed to read extracted text from %q: %v", input.Path, err)}, nil
	}

	return tool.Result{Content: buf.String(), Metadata: map[string]any{"pages": r.NumPage()}}, nil
}
