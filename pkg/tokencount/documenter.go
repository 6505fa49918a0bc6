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
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
)

const (
	functionsCategory  = "functions"
	functionsNamespace = "functions"
)

// Tool is anything that can be declared to a chat model.
type Tool interface {
	ToolCategory() string
	ToolNamespace() string
	// Documentation renders the tool the way the model sees it in its prompt.
	Documentation() (string, error)
}

// Function is a callable tool whose parameters are described by a JSON schema.
type Function struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

func (f Function) ToolCategory() string  { return functionsCategory }
func (f Function) ToolNamespace() string { return functionsNamespace }

// Documentation renders f as a TypeScript-like declaration:
//
//	// description
//	type name = (_: {
//	// parameter description
//	param?: string,
//	}) => any;
func (f Function) Documentation() (string, error) {
	params := gjson.Result{}
	if len(f.Parameters) > 0 {
		if !gjson.ValidBytes(f.Parameters) {
			return "", fmt.Errorf("function %s: parameters are not valid JSON", f.Name)
		}
		params = gjson.ParseBytes(f.Parameters)
	}

	var buf strings.Builder
	putDescription(&buf, strings.TrimSpace(f.Description))
	buf.WriteString("type ")
	buf.WriteString(f.Name)
	buf.WriteString(" = (_: ")
	putParameters(&buf, params, "")
	buf.WriteString(") => any;")
	return buf.String(), nil
}

func putDescription(buf *strings.Builder, description string) {
	if description == "" {
		return
	}
	for _, line := range splitLines(description) {
		buf.WriteString("// ")
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
}

// splitLines splits on \n, \r\n and \r, dropping a trailing empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func putParameters(buf *strings.Builder, schema gjson.Result, indent string) {
	var required []string
	for _, r := range schema.Get("required").Array() {
		required = append(required, r.String())
	}

	buf.WriteString("{\n")
	schema.Get("properties").ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		// only top level properties carry descriptions and optional markers
		if indent == "" {
			putDescription(buf, strings.TrimSpace(value.Get("description").String()))
		}
		buf.WriteString(indent)
		buf.WriteString(name)
		if indent == "" && !contains(required, name) {
			buf.WriteByte('?')
		}
		buf.WriteString(": ")
		putParameterType(buf, value, indent)
		buf.WriteString(",\n")
		return true
	})
	buf.WriteString("}")
}

func putParameterType(buf *strings.Builder, value gjson.Result, indent string) {
	typ := value.Get("type")
	if typ.Type != gjson.String {
		buf.WriteString("any")
		return
	}

	if enum := value.Get("enum"); enum.Exists() {
		var options []string
		for _, option := range enum.Array() {
			options = append(options, option.Raw)
		}
		buf.WriteString(strings.Join(options, " | "))
		return
	}

	if items := value.Get("items"); items.IsObject() && items.Get("type").Exists() {
		putParameterType(buf, items, indent)
		buf.WriteString("[]")
		return
	}

	switch t := typ.String(); t {
	case "integer", "number":
		buf.WriteString("number")
	case "boolean", "string":
		buf.WriteString(t)
	case "object":
		putParameters(buf, value, "  ")
	default:
		buf.WriteString("any")
	}
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// GenerateDocumentation renders the "# Tools" section of a system prompt.
// Tools are grouped by category, then namespace, both in first-seen order.
func GenerateDocumentation(tools []Tool) (string, error) {
	type namespace struct {
		name  string
		tools []Tool
	}
	type category struct {
		name       string
		namespaces []*namespace
	}

	var categories []*category
	for _, tool := range tools {
		var cat *category
		for _, c := range categories {
			if c.name == tool.ToolCategory() {
				cat = c
				break
			}
		}
		if cat == nil {
			cat = &category{name: tool.ToolCategory()}
			categories = append(categories, cat)
		}

		var ns *namespace
		for _, n := range cat.namespaces {
			if n.name == tool.ToolNamespace() {
				ns = n
				break
			}
		}
		if ns == nil {
			ns = &namespace{name: tool.ToolNamespace()}
			cat.namespaces = append(cat.namespaces, ns)
		}
		ns.tools = append(ns.tools, tool)
	}

	var sb strings.Builder
	sb.WriteString("# Tools\n\n")
	for _, cat := range categories {
		sb.WriteString("## " + cat.name + "\n\n")
		for _, ns := range cat.namespaces {
			sb.WriteString("namespace " + ns.name + " {\n\n")
			for _, tool := range ns.tools {
				doc, err := tool.Documentation()
				if err != nil {
					return "", err
				}
				sb.WriteString(doc)
				sb.WriteString("\n\n")
			}
			sb.WriteString("} // namespace " + ns.name + "\n\n")
		}
	}
	return strings.TrimRightFunc(sb.String(), unicode.IsSpace), nil
}
