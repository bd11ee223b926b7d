package botdag

import "fmt"

// ValidateDAG checks a payload before it is stored as a runnable bot:
// both anchors are wired to declared handles of included nodes, no edge
// dangles and the graph is acyclic.
func ValidateDAG(d *DAG) error {
	if d == nil {
		return fmt.Errorf("botdag: empty dag")
	}
	if d.MainIn == "" {
		return ErrMissingMainIn
	}
	if d.MainOut == "" {
		return ErrMissingMainOut
	}

	ids := make(map[string]struct{}, len(d.Nodes))
	byID := make(map[string]*PayloadNode, len(d.Nodes))
	for i := range d.Nodes {
		n := &d.Nodes[i]
		if _, ok := ids[n.ID]; ok {
			return &DuplicateNodeError{ID: n.ID, Index: i}
		}
		ids[n.ID] = struct{}{}
		byID[n.ID] = n
	}

	if err := checkAnchor(byID, d.MainIn, inputHandles); err != nil {
		return err
	}
	if err := checkAnchor(byID, d.MainOut, outputHandles); err != nil {
		return err
	}

	for _, e := range d.Edges {
		_, src := ids[e.Source]
		_, trg := ids[e.Target]
		if !src || !trg {
			return fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, e.Source, e.Target)
		}
	}

	return validateAcyclic(d.Nodes, d.Edges)
}

// checkAnchor requires anchor to name an included node and, when that node
// carries its component, one of the handles returned by handles.
func checkAnchor(nodes map[string]*PayloadNode, anchor string, handles func(*Component) []string) error {
	id, handle, ok := SplitHandle(anchor)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAnchor, anchor)
	}
	n, ok := nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAnchor, anchor)
	}
	if n.CfData == nil || n.CfData.Node == nil {
		return nil
	}
	for _, h := range handles(n.CfData.Node) {
		if h == handle {
			return nil
		}
	}
	return fmt.Errorf("%w: %q has no handle %q", ErrUnknownAnchor, id, handle)
}

func inputHandles(c *Component) []string {
	out := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		out = append(out, f.Name)
	}
	return out
}

func outputHandles(c *Component) []string {
	out := make([]string, 0, len(c.Outputs))
	for _, o := range c.Outputs {
		out = append(out, o.Name)
	}
	return out
}

// validateAcyclic checks that the edges don't form a cycle using DFS.
func validateAcyclic(nodes []PayloadNode, edges []Edge) error {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int)
	for _, n := range nodes {
		state[n.ID] = unvisited
	}

	var dfs func(id string) bool
	dfs = func(id string) bool {
		state[id] = visiting
		for _, next := range adj[id] {
			switch state[next] {
			case visiting:
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		state[id] = visited
		return false
	}

	for _, n := range nodes {
		if state[n.ID] == unvisited {
			if dfs(n.ID) {
				return ErrCycleDetected
			}
		}
	}

	return nil
}
