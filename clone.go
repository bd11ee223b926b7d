package botdag

import "encoding/json"

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n Node) Node {
	if n.Selected != nil {
		v := *n.Selected
		n.Selected = &v
	}
	if n.Dragging != nil {
		v := *n.Dragging
		n.Dragging = &v
	}
	if n.PositionAbsolute != nil {
		p := *n.PositionAbsolute
		n.PositionAbsolute = &p
	}
	n.Data = cloneNodeData(n.Data)
	return n
}

func cloneNodeData(d *NodeData) *NodeData {
	if d == nil {
		return nil
	}
	out := *d
	out.Node = cloneComponent(d.Node)
	out.Value = cloneValue(d.Value)
	return &out
}

func cloneComponent(c *Component) *Component {
	if c == nil {
		return nil
	}
	out := *c
	if c.Fields != nil {
		out.Fields = make([]Field, len(c.Fields))
		for i, f := range c.Fields {
			out.Fields[i] = cloneField(f)
		}
	}
	if c.Outputs != nil {
		out.Outputs = make([]Output, len(c.Outputs))
		for i, o := range c.Outputs {
			o.Type = cloneRaw(o.Type)
			out.Outputs[i] = o
		}
	}
	if c.Fn != nil {
		fn := *c.Fn
		if c.Fn.ModelParams != nil {
			fn.ModelParams = cloneValue(c.Fn.ModelParams).(map[string]any)
		}
		if c.Fn.Model != nil {
			m := *c.Fn.Model
			m.Tags = append([]string(nil), c.Fn.Model.Tags...)
			if c.Fn.Model.Vars != nil {
				m.Vars = cloneValue(c.Fn.Model.Vars).([]any)
			}
			fn.Model = &m
		}
		out.Fn = &fn
	}
	return &out
}

func cloneField(f Field) Field {
	f.Type = cloneRaw(f.Type)
	f.Placeholder = cloneValue(f.Placeholder)
	if f.Items != nil {
		items := make([]Field, len(f.Items))
		for i, it := range f.Items {
			items[i] = cloneField(it)
		}
		f.Items = items
	}
	return f
}

func cloneRaw(r json.RawMessage) json.RawMessage {
	if r == nil {
		return nil
	}
	return append(json.RawMessage(nil), r...)
}

// cloneValue deep-copies JSON-shaped values (maps, slices, scalars).
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	case json.RawMessage:
		return cloneRaw(t)
	default:
		return v
	}
}
