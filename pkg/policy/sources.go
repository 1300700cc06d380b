package policy

import (
	"regexp"
	"strings"
)

var (
	// fromCommand captures the source list of a leading FROM command.
	fromCommand = regexp.MustCompile(`(?i)^\s*FROM\s+([^\s|,]+(?:\s*,\s*[^\s|,]+)*)`)
	// joinCommand captures the target of a LOOKUP JOIN or ENRICH stage.
	joinCommand = regexp.MustCompile(`(?i)\|\s*(?:LOOKUP\s+JOIN|ENRICH)\s+([^\s|,]+)`)
)

// ResolveSources resolves every index a pipe query reads through the registry: the
// list of a leading FROM command and the targets of LOOKUP JOIN and ENRICH stages.
// Comments and string literals are skipped. Aliases are rewritten in place; a query
// whose sources are all literal comes back byte-identical. sources holds one resolved
// comma list per command, and hasFrom is false when the query does not start with FROM.
func (r *Registry) ResolveSources(q string) (rewritten string, sources []string, hasFrom bool) {
	code := maskPipe(q)

	var spans [][2]int
	if loc := fromCommand.FindStringSubmatchIndex(code); loc != nil {
		hasFrom = true
		spans = append(spans, [2]int{loc[2], loc[3]})
	}
	for _, loc := range joinCommand.FindAllStringSubmatchIndex(code, -1) {
		spans = append(spans, [2]int{loc[2], loc[3]})
	}

	var sb strings.Builder
	last := 0
	for _, span := range spans {
		joined := strings.Join(Split(q[span[0]:span[1]]), ",")
		resolved, err := r.Resolve(joined)
		if err != nil {
			// Only the empty specifier fails, and the patterns never capture one.
			resolved = joined
		}
		sources = append(sources, resolved)
		if resolved == joined {
			continue
		}
		sb.WriteString(q[last:span[0]])
		sb.WriteString(resolved)
		last = span[1]
	}
	if last == 0 {
		return q, sources, hasFrom
	}
	sb.WriteString(q[last:])
	return sb.String(), sources, hasFrom
}

// maskPipe returns q with comments blanked out and string literal contents replaced,
// byte for byte, so command patterns only see query text at the original offsets.
func maskPipe(q string) string {
	b := []byte(q)
	fill := func(from, to int, c byte) {
		for i := from; i < to && i < len(b); i++ {
			b[i] = c
		}
	}
	for i := 0; i < len(q); {
		rest := q[i:]
		switch {
		case strings.HasPrefix(rest, `"""`):
			end := strings.Index(q[i+3:], `"""`)
			if end < 0 {
				fill(i+3, len(q), '_')
				return string(b)
			}
			fill(i+3, i+3+end, '_')
			i += 3 + end + 3
		case rest[0] == '"':
			j := i + 1
			for j < len(q) && q[j] != '"' {
				if q[j] == '\\' {
					j++
				}
				j++
			}
			fill(i+1, j, '_')
			i = j + 1
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			fill(i, i+end, ' ')
			i += end
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				fill(i, len(q), ' ')
				return string(b)
			}
			fill(i, i+2+end+2, ' ')
			i += 2 + end + 2
		default:
			i++
		}
	}
	return string(b)
}
