package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/esgate/internal/presentation/tui"
	"github.com/aretw0/esgate/pkg/adapters/memory"
	"github.com/aretw0/esgate/pkg/domain"
	"github.com/aretw0/esgate/pkg/query"
)

// CheckReport is the outcome of a dry run.
type CheckReport struct {
	Tool  string
	Err   *domain.ToolError
	Calls []memory.Call
	// Changes lists what mediation did to a caller-supplied search body.
	Changes *query.BodyDiff
}

// Accepted reports whether the request passed mediation.
func (r *CheckReport) Accepted() bool { return r.Err == nil }

// ParseArgs decodes a JSON object of tool arguments. Empty input means no arguments.
func ParseArgs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Check runs a tool against the recording backend and reports the backend request
// it produced. Unknown tools are an error; mediation failures are part of the report.
func Check(ctx context.Context, gw *Gateway, tool string, args map[string]any) (*CheckReport, error) {
	if gw.Recorder == nil {
		return nil, errors.New("check needs a dry-run gateway")
	}
	gw.Recorder.Reset()

	var before query.Mapping
	if body, ok := args["body"].(map[string]any); ok {
		before, _ = query.FromValue(body).(query.Mapping)
		// Round-trip so numbers compare like those of the recorded body.
		if data, err := query.Encode(before); err == nil {
			if n, err := query.Parse(data); err == nil {
				before, _ = n.(query.Mapping)
			}
		}
	}

	report := &CheckReport{Tool: tool}
	_, err := gw.Call(ctx, tool, args)
	if errors.Is(err, domain.ErrToolNotFound) {
		return nil, fmt.Errorf("unknown tool %q (available: %s)", tool, toolList(gw))
	}
	var toolErr *domain.ToolError
	if errors.As(err, &toolErr) {
		report.Err = toolErr
	} else if err != nil {
		return nil, err
	}

	report.Calls = gw.Recorder.Calls()
	if before != nil && len(report.Calls) == 1 && report.Calls[0].Op == memory.OpSearch {
		if n, err := query.Parse(report.Calls[0].Body); err == nil {
			if after, ok := n.(query.Mapping); ok {
				report.Changes = query.Diff(before, after)
			}
		}
	}
	return report, nil
}

func toolList(gw *Gateway) string {
	var names []string
	for _, d := range gw.Tools() {
		names = append(names, string(d.Name))
	}
	return strings.Join(names, ", ")
}

// PrintReport writes a human-readable verdict.
func PrintReport(p *tui.Printer, r *CheckReport) {
	if !r.Accepted() {
		p.Rejected("%s: %s", r.Tool, r.Err.Error())
		p.Field("kind", string(r.Err.Kind))
		return
	}
	p.Accepted("%s", r.Tool)
	if len(r.Calls) == 0 {
		p.Field("backend", "no request")
		return
	}
	for _, c := range r.Calls {
		p.Field("backend", string(c.Op))
		if len(c.Indices) > 0 {
			p.Field("indices", strings.Join(c.Indices, ","))
		}
		if len(c.Body) > 0 {
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, c.Body, "", "  "); err == nil {
				p.Field("body", "\n"+pretty.String())
			} else {
				p.Field("body", string(c.Body))
			}
		}
	}
	if r.Changes != nil {
		changed := r.Changes.ChangedKeys()
		if len(changed) > 0 {
			p.Field("rewritten", strings.Join(changed, ", "))
		}
		if len(r.Changes.Removed) > 0 {
			p.Field("removed", strings.Join(r.Changes.Removed, ", "))
		}
	}
}
