package botdag

import (
	"fmt"
	"strings"
)

// DuplicateNodeError reports a node id that appears more than once in the editor graph.
type DuplicateNodeError struct {
	ID    string
	Index int // position of the repeated occurrence
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("botdag: duplicate node id %q at index %d", e.ID, e.Index)
}

// Is makes errors.Is(err, ErrDuplicateNode) match.
func (e *DuplicateNodeError) Is(target error) bool { return target == ErrDuplicateNode }

// CheckDuplicates returns a *DuplicateNodeError for the first repeated node id.
func CheckDuplicates(nodes []Node) error {
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if _, ok := seen[n.ID]; ok {
			return &DuplicateNodeError{ID: n.ID, Index: i}
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

type translateConfig struct {
	firstWins bool
}

// TranslateOption configures Translate.
type TranslateOption func(*translateConfig)

// WithFirstWins drops repeated node ids silently, keeping the first occurrence,
// instead of failing with a *DuplicateNodeError.
func WithFirstWins() TranslateOption {
	return func(c *translateConfig) { c.firstWins = true }
}

// Translate converts the editor graph into the DAG payload the backend accepts.
// The inputs are cloned and never modified.
// Missing chat in/out wiring leaves MainIn/MainOut empty; it is not an error.
func Translate(nodes []Node, edges []Edge, opts ...TranslateOption) (*DAG, error) {
	var cfg translateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.firstWins {
		if err := CheckDuplicates(nodes); err != nil {
			return nil, err
		}
	}

	nodes = cloneNodes(nodes)

	// Single pass: dedupe, collect surviving ids.
	ids := make(map[string]struct{}, len(nodes))
	kept := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := ids[n.ID]; ok {
			continue
		}
		ids[n.ID] = struct{}{}
		kept = append(kept, n)
	}

	d := &DAG{
		Nodes:  make([]PayloadNode, 0, len(kept)),
		Sample: buildSample(kept),
	}
	for _, n := range kept {
		if isSentinel(n.ID) {
			continue
		}
		d.Nodes = append(d.Nodes, toPayload(n))
	}

	d.MainIn, d.MainOut = findAnchors(edges)
	d.Edges = FilterEdges(edges, ids)
	return d, nil
}

// FilterEdges keeps the edges whose endpoints are both in ids and neither is a sentinel.
// The result is never nil.
func FilterEdges(edges []Edge, ids map[string]struct{}) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		if isSentinel(e.Source) || isSentinel(e.Target) {
			continue
		}
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		out = append(out, e)
	}
	return out
}

// findAnchors returns main_in and main_out; the first matching edge wins.
func findAnchors(edges []Edge) (mainIn, mainOut string) {
	for _, e := range edges {
		if mainIn == "" && e.Source == ChatIn && e.Target != ChatOut {
			mainIn = joinHandle(e.Target, e.TargetHandle)
		}
		if mainOut == "" && e.Target == ChatOut && e.Source != ChatIn {
			mainOut = joinHandle(e.Source, e.SourceHandle)
		}
		if mainIn != "" && mainOut != "" {
			break
		}
	}
	return mainIn, mainOut
}

// buildSample collects model_params of every non-sentinel node.
// Plain parameters are keyed "<node>/<param>". Password parameters take the bare
// key when no plain parameter anywhere shares the name and the key is still free.
func buildSample(nodes []Node) map[string]any {
	plain := make(map[string]struct{})
	for _, n := range nodes {
		if isSentinel(n.ID) {
			continue
		}
		comp := component(n)
		for name := range params(comp) {
			if !isSecret(comp, name) {
				plain[name] = struct{}{}
			}
		}
	}

	sample := make(map[string]any)
	for _, n := range nodes {
		if isSentinel(n.ID) {
			continue
		}
		comp := component(n)
		for name, v := range params(comp) {
			if v == nil {
				continue
			}
			if isSecret(comp, name) {
				_, collides := plain[name]
				if _, taken := sample[name]; !collides && !taken {
					sample[name] = v
					continue
				}
			}
			sample[joinHandle(n.ID, name)] = v
		}
	}
	return sample
}

func toPayload(n Node) PayloadNode {
	p := PayloadNode{
		ID:               n.ID,
		Position:         n.Position,
		Type:             n.Type,
		Width:            n.Width,
		Height:           n.Height,
		Selected:         n.Selected,
		PositionAbsolute: n.PositionAbsolute,
		Dragging:         n.Dragging,
		CfData:           n.Data,
		Data:             map[string]any{},
	}
	if c := component(n); c != nil {
		p.CfID = c.ID
	}
	return p
}

func component(n Node) *Component {
	if n.Data == nil {
		return nil
	}
	return n.Data.Node
}

func params(c *Component) map[string]any {
	if c == nil || c.Fn == nil {
		return nil
	}
	return c.Fn.ModelParams
}

func isSecret(c *Component, name string) bool {
	f, ok := c.FieldByName(name)
	return ok && f.Password
}

func isSentinel(id string) bool {
	return id == ChatIn || id == ChatOut
}

func joinHandle(node, handle string) string {
	return node + "/" + handle
}

// SplitHandle splits a "<node>/<handle>" anchor. The node id is everything before the last slash.
func SplitHandle(anchor string) (node, handle string, ok bool) {
	i := strings.LastIndex(anchor, "/")
	if i <= 0 {
		return "", "", false
	}
	return anchor[:i], anchor[i+1:], true
}
