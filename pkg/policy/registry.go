package policy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/esgate/pkg/domain"
)

const (
	// DefaultAlias is used when a caller leaves the index specifier empty.
	DefaultAlias = "default"
	// AllIndices expands to every registered concrete index.
	AllIndices = "all"
)

// Alias maps a logical short name to one concrete backend index.
type Alias struct {
	Name  string `json:"name" yaml:"name"`
	Index string `json:"index" yaml:"index"`
}

// Registry is the ordered, read-only set of configured aliases.
type Registry struct {
	aliases []Alias
	byName  map[string]string
}

// NewRegistry builds a registry. Declaration order is kept.
func NewRegistry(aliases ...Alias) (*Registry, error) {
	r := &Registry{
		aliases: make([]Alias, 0, len(aliases)),
		byName:  make(map[string]string, len(aliases)),
	}
	for _, a := range aliases {
		if a.Name == "" {
			return nil, fmt.Errorf("alias for index %q has no name", a.Index)
		}
		if a.Index == "" {
			return nil, fmt.Errorf("alias %q has no index", a.Name)
		}
		if _, dup := r.byName[a.Name]; dup {
			return nil, fmt.Errorf("duplicate alias %q", a.Name)
		}
		r.aliases = append(r.aliases, a)
		r.byName[a.Name] = a.Index
	}
	return r, nil
}

// Lookup returns the concrete index of an alias.
func (r *Registry) Lookup(alias string) (string, bool) {
	idx, ok := r.byName[alias]
	return idx, ok
}

// Aliases returns a copy of the registered aliases in declaration order.
func (r *Registry) Aliases() []Alias {
	return append([]Alias(nil), r.aliases...)
}

// Indices returns every concrete index in declaration order.
func (r *Registry) Indices() []string {
	out := make([]string, len(r.aliases))
	for i, a := range r.aliases {
		out[i] = a.Index
	}
	return out
}

// Resolve maps an index specifier to a comma-joined list of concrete index names.
//
//   - "" resolves to the default alias.
//   - A known alias resolves to its index.
//   - A comma list resolves token by token (trimmed); "all" inside the list expands
//     to every index; unknown tokens pass through. Order and duplicates are kept.
//   - "all" resolves to every index in declaration order.
//   - Anything else is a literal index name.
func (r *Registry) Resolve(spec string) (string, error) {
	if spec == "" {
		idx, ok := r.byName[DefaultAlias]
		if !ok {
			return "", domain.NewValidationError(domain.ErrMissingArgument, "no index given and no %q alias configured", DefaultAlias)
		}
		return idx, nil
	}

	if idx, ok := r.byName[spec]; ok {
		return idx, nil
	}

	if strings.Contains(spec, ",") {
		var resolved []string
		for _, token := range strings.Split(spec, ",") {
			token = strings.TrimSpace(token)
			if idx, ok := r.byName[token]; ok {
				resolved = append(resolved, idx)
			} else if token == AllIndices {
				resolved = append(resolved, r.Indices()...)
			} else {
				resolved = append(resolved, token)
			}
		}
		return strings.Join(resolved, ","), nil
	}

	if spec == AllIndices {
		return strings.Join(r.Indices(), ","), nil
	}

	return spec, nil
}

// Split breaks a resolved specifier into trimmed index names.
func Split(resolved string) []string {
	parts := strings.Split(resolved, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// MarshalJSON encodes the registry as an alias → index object in declaration order.
func (r *Registry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range r.aliases {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.Index)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
