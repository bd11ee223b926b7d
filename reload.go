package botdag

// Handles used on the sentinel nodes when a graph is reloaded into the editor.
const (
	ChatInHandle  = "message"
	ChatOutHandle = "reply"
	sentinelType  = "ChatNode"
)

// Reload turns a stored DAG back into editor nodes and edges.
// Sentinel nodes and their edges are rebuilt from MainIn and MainOut.
func Reload(d *DAG) ([]Node, []Edge) {
	if d == nil {
		return []Node{}, []Edge{}
	}

	nodes := make([]Node, 0, len(d.Nodes)+2)
	nodes = append(nodes,
		Node{ID: ChatIn, Type: sentinelType},
		Node{ID: ChatOut, Type: sentinelType},
	)
	for _, p := range d.Nodes {
		nodes = append(nodes, cloneNode(Node{
			ID:               p.ID,
			Position:         p.Position,
			Type:             p.Type,
			Width:            p.Width,
			Height:           p.Height,
			Selected:         p.Selected,
			PositionAbsolute: p.PositionAbsolute,
			Dragging:         p.Dragging,
			Data:             p.CfData,
		}))
	}

	edges := make([]Edge, 0, len(d.Edges)+2)
	if node, handle, ok := SplitHandle(d.MainIn); ok {
		edges = append(edges, Edge{
			ID:           ChatIn + "-" + d.MainIn,
			Source:       ChatIn,
			SourceHandle: ChatInHandle,
			Target:       node,
			TargetHandle: handle,
		})
	}
	edges = append(edges, d.Edges...)
	if node, handle, ok := SplitHandle(d.MainOut); ok {
		edges = append(edges, Edge{
			ID:           d.MainOut + "-" + ChatOut,
			Source:       node,
			SourceHandle: handle,
			Target:       ChatOut,
			TargetHandle: ChatOutHandle,
		})
	}
	return nodes, edges
}
