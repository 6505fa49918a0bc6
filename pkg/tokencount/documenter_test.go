/*
Copyright 2025 The Aibrix Team.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tokencount

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionDocumentation(t *testing.T) {
	tests := []struct {
		name     string
		function Function
		expected string
	}{
		{
			name: "flat parameters",
			function: Function{
				Name:        "invoke",
				Description: "Invokes specialized function which no one knows how it works",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"stringParameter": {
							"type": "string",
							"description": "The free-form text parameter"
						},
						"booleanParameter": {
							"type": "boolean",
							"description": "Switch lights on/off"
						}
					},
					"required": ["stringParameter"]
				}`),
			},
			expected: "// Invokes specialized function which no one knows how it works\n" +
				"type invoke = (_: {\n" +
				"// The free-form text parameter\n" +
				"stringParameter: string,\n" +
				"// Switch lights on/off\n" +
				"booleanParameter?: boolean,\n" +
				"}) => any;",
		},
		{
			name: "enum array nested and untyped",
			function: Function{
				Name: "forecast",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"unit": {"type": "string", "enum": ["c", "f"]},
						"days": {"type": "array", "items": {"type": "integer"}},
						"loc": {
							"type": "object",
							"properties": {
								"lat": {"type": "number", "description": "not shown"},
								"tags": {"type": "array", "items": {"type": "string"}}
							}
						},
						"extra": {"description": "no type"}
					},
					"required": ["unit"]
				}`),
			},
			expected: "type forecast = (_: {\n" +
				"unit: \"c\" | \"f\",\n" +
				"days?: number[],\n" +
				"loc?: {\n" +
				"  lat: number,\n" +
				"  tags: string[],\n" +
				"},\n" +
				"// no type\n" +
				"extra?: any,\n" +
				"}) => any;",
		},
		{
			name: "multi-line description and no parameters",
			function: Function{
				Name:        "noop",
				Description: "  first line\r\nsecond line\n",
			},
			expected: "// first line\n// second line\ntype noop = (_: {\n}) => any;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := tt.function.Documentation()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, doc)
		})
	}
}

func TestFunctionDocumentationInvalidJSON(t *testing.T) {
	_, err := Function{Name: "broken", Parameters: json.RawMessage(`{"type":`)}.Documentation()
	assert.Error(t, err)
}

type fakeTool struct {
	category, namespace, doc string
}

func (f fakeTool) ToolCategory() string           { return f.category }
func (f fakeTool) ToolNamespace() string          { return f.namespace }
func (f fakeTool) Documentation() (string, error) { return f.doc, nil }

func TestGenerateDocumentation(t *testing.T) {
	tools := []Tool{
		Function{Name: "a"},
		fakeTool{category: "browser", namespace: "web", doc: "open(url)"},
		Function{Name: "b", Description: "second"},
		fakeTool{category: "browser", namespace: "web", doc: "search(q)"},
	}

	doc, err := GenerateDocumentation(tools)
	require.NoError(t, err)
	expected := "# Tools\n\n" +
		"## functions\n\n" +
		"namespace functions {\n\n" +
		"type a = (_: {\n}) => any;\n\n" +
		"// second\ntype b = (_: {\n}) => any;\n\n" +
		"} // namespace functions\n\n" +
		"## browser\n\n" +
		"namespace web {\n\n" +
		"open(url)\n\n" +
		"search(q)\n\n" +
		"} // namespace web"
	assert.Equal(t, expected, doc)
}
