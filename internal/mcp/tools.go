package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/schovi/htmlesc/internal/entity"
	"github.com/schovi/htmlesc/internal/escape"
	"github.com/schovi/htmlesc/internal/vterm"
)

type ToolRegistry struct {
	table *entity.Table
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		table: entity.HTML4(),
	}
}

func (r *ToolRegistry) List() []ToolDef {
	return []ToolDef{
		{
			Name:        "escape",
			Description: "Escape text for safe embedding in HTML. Characters with an HTML4 name become named references (&lt;, &eacute;); other non-ASCII characters and < > \" ' & become numeric references.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text to escape",
					},
					"decimal": map[string]interface{}{
						"type":        "boolean",
						"description": "Use decimal numeric references (&#233;) instead of hexadecimal (&#xE9;). Default: false",
					},
					"named": map[string]interface{}{
						"type":        "boolean",
						"description": "Use named references where one exists. Default: true",
					},
					"strip_ansi": map[string]interface{}{
						"type":        "boolean",
						"description": "Remove terminal escape codes before escaping (for captured terminal output). Default: false",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "unescape",
			Description: "Decode HTML character references (&amp;, &#65;, &#x41;) back to text. Malformed or unknown references are left as they are.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Text containing character references",
					},
					"strict": map[string]interface{}{
						"type":        "boolean",
						"description": "Require a trailing ';' on every reference. If false, '&amp' or '&#65' at a word boundary also decode. Default: true",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "lookup",
			Description: "Look up an HTML4 named character reference by name (amp, &amp;) or by character (&)",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query": map[string]interface{}{
						"type":        "string",
						"description": "Reference name or a single character",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (r *ToolRegistry) Call(name string, args json.RawMessage) (*CallToolResult, error) {
	switch name {
	case "escape":
		return r.callEscape(args)
	case "unescape":
		return r.callUnescape(args)
	case "lookup":
		return r.callLookup(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

type EscapeArgs struct {
	Text      *string `json:"text"`
	Decimal   bool    `json:"decimal"`
	Named     *bool   `json:"named"`
	StripAnsi bool    `json:"strip_ansi"`
}

func (r *ToolRegistry) callEscape(args json.RawMessage) (*CallToolResult, error) {
	var a EscapeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Text == nil {
		return nil, fmt.Errorf("text is required")
	}

	text := *a.Text
	if a.StripAnsi {
		text = vterm.Plain(text, vterm.DefaultColumns)
	}
	named := a.Named == nil || *a.Named

	return textResult(escape.Escape(text,
		escape.WithDecimal(a.Decimal),
		escape.WithNamedReferences(named),
		escape.WithEscapeTable(r.table),
	)), nil
}

type UnescapeArgs struct {
	Text   *string `json:"text"`
	Strict *bool   `json:"strict"`
}

func (r *ToolRegistry) callUnescape(args json.RawMessage) (*CallToolResult, error) {
	var a UnescapeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Text == nil {
		return nil, fmt.Errorf("text is required")
	}
	strict := a.Strict == nil || *a.Strict

	return textResult(escape.Unescape(*a.Text,
		escape.WithStrict(strict),
		escape.WithUnescapeTable(r.table),
	)), nil
}

type LookupArgs struct {
	Query string `json:"query"`
}

// LookupResult describes one named reference.
type LookupResult struct {
	Name      string `json:"name"`
	Reference string `json:"reference"`
	CodePoint string `json:"code_point"`
	Character string `json:"character"`
}

func (r *ToolRegistry) callLookup(args json.RawMessage) (*CallToolResult, error) {
	var a LookupArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	e, ok := r.table.Lookup(a.Query)
	if !ok {
		return nil, fmt.Errorf("no named reference for %q", a.Query)
	}

	data, _ := json.MarshalIndent(LookupResult{
		Name:      e.Name,
		Reference: e.Reference(),
		CodePoint: e.CodePoint(),
		Character: string(e.Rune),
	}, "", "  ")
	return textResult(string(data)), nil
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("parse args: %w", err)
	}
	return nil
}

func textResult(text string) *CallToolResult {
	return &CallToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}
