package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/esgate/pkg/policy"
)

// GenerateMermaid produces a Mermaid flowchart of the alias registry.
// Aliases are drawn as ((circles)) and concrete indices as [[subroutines]], with
// an edge per alias. The "all" pseudo-alias fans out to every index. When allows
// is non-nil, indices are styled as allowed or denied by the allow-list.
func GenerateMermaid(aliases []policy.Alias, allows func(string) bool) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	seen := make(map[string]bool)
	var indices []string
	for _, a := range aliases {
		for _, idx := range policy.Split(a.Index) {
			if !seen[idx] {
				seen[idx] = true
				indices = append(indices, idx)
			}
		}
	}

	allID := "alias_" + sanitizeMermaidID(policy.AllIndices)
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", allID, policy.AllIndices)
	for _, a := range aliases {
		fmt.Fprintf(&sb, "    %s((\"%s\"))\n", aliasID(a.Name), a.Name)
	}
	for _, idx := range indices {
		fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", indexID(idx), idx)
	}

	for _, a := range aliases {
		for _, idx := range policy.Split(a.Index) {
			fmt.Fprintf(&sb, "    %s --> %s\n", aliasID(a.Name), indexID(idx))
		}
	}
	for _, idx := range indices {
		fmt.Fprintf(&sb, "    %s -.-> %s\n", allID, indexID(idx))
	}

	if allows != nil {
		sb.WriteString("\n    %% Allow-list\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef allowed fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef denied fill:#fee2e2,stroke:#b91c1c,stroke-width:2px,color:#000;\n")
		for _, idx := range indices {
			class := "denied"
			if allows(idx) {
				class = "allowed"
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", indexID(idx), class)
		}
	}

	return sb.String()
}

func aliasID(name string) string { return "alias_" + sanitizeMermaidID(name) }

func indexID(name string) string { return "index_" + sanitizeMermaidID(name) }

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", "*", "_", " ", "_").Replace(id)
}
