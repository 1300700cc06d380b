package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/esgate/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects a light or dark terminal background.
func NewRenderer(style string) (func(string) (string, error), error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

type schemaView struct {
	Required   []string `json:"required"`
	Properties map[string]struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Default     any    `json:"default"`
	} `json:"properties"`
}

// CatalogMarkdown documents the tools and their arguments as Markdown.
func CatalogMarkdown(tools []domain.ToolDescriptor) string {
	var b strings.Builder
	b.WriteString("# Tools\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "\n## `%s`\n\n%s\n", t.Name, t.Description)

		var schema schemaView
		if len(t.InputSchema) == 0 || json.Unmarshal(t.InputSchema, &schema) != nil || len(schema.Properties) == 0 {
			b.WriteString("\nNo arguments.\n")
			continue
		}
		required := make(map[string]bool, len(schema.Required))
		for _, r := range schema.Required {
			required[r] = true
		}
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n| argument | type | default | description |\n|---|---|---|---|\n")
		for _, name := range names {
			p := schema.Properties[name]
			def := "—"
			switch {
			case required[name]:
				def = "required"
			case p.Default != nil:
				def = fmt.Sprintf("`%v`", p.Default)
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", name, p.Type, def, cell(p.Description))
		}
	}
	return b.String()
}

// cell escapes the column separator, which ES|QL descriptions contain.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
