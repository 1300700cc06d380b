package domain

import "encoding/json"

// ToolName identifies one operation of the closed tool registry.
type ToolName string

const (
	ToolHealth      ToolName = "health"
	ToolCatIndices  ToolName = "cat_indices"
	ToolSearch      ToolName = "search"
	ToolESQL        ToolName = "esql"
	ToolListIndices ToolName = "list_indices"
	ToolMultiSearch ToolName = "multi_search"
)

// ToolNames lists every tool in registration order.
var ToolNames = []ToolName{
	ToolHealth,
	ToolCatIndices,
	ToolSearch,
	ToolESQL,
	ToolListIndices,
	ToolMultiSearch,
}

// ParseToolName validates a raw tool name.
func ParseToolName(raw string) (ToolName, error) {
	for _, n := range ToolNames {
		if string(n) == raw {
			return n, nil
		}
	}
	return "", ErrToolNotFound
}

// ToolDescriptor describes a tool to agents.
type ToolDescriptor struct {
	Name        ToolName        `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty" yaml:"-"`
}
