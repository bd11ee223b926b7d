package botdag

import (
	"encoding/json"
	"time"
)

// Sentinel node ids marking where chat input enters and chat output leaves the graph.
const (
	ChatIn  = "chatin"
	ChatOut = "chatout"
)

// Engines a chatbot can run on.
const (
	EngineFury     = "fury"
	EngineLangflow = "langflow"
)

// ValidEngine reports whether name is a known engine.
func ValidEngine(name string) bool {
	return name == EngineFury || name == EngineLangflow
}

// DefaultNodeType is the editor type given to component nodes.
const DefaultNodeType = "FuryEngineNode"

// Position is a point on the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Field is one declared input of a component.
// Type is either a JSON string or a list of {"type": ...} objects.
type Field struct {
	Name        string          `json:"name"`
	Type        json.RawMessage `json:"type,omitempty"`
	Items       []Field         `json:"items,omitempty"`
	Password    bool            `json:"password,omitempty"`
	Required    bool            `json:"required,omitempty"`
	Show        bool            `json:"show,omitempty"`
	Placeholder any             `json:"placeholder,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Kind returns the effective type name of the field.
// A list type resolves to its first entry, an empty type falls back to the first item.
func (f Field) Kind() string {
	if len(f.Type) > 0 {
		var s string
		if err := json.Unmarshal(f.Type, &s); err == nil {
			return s
		}
		var list []struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(f.Type, &list); err == nil && len(list) > 0 {
			return list[0].Type
		}
	}
	if len(f.Items) > 0 {
		return f.Items[0].Kind()
	}
	return ""
}

// Output is a named output handle of a component.
type Output struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type,omitempty"`
}

// Model describes the AI model bound to a component.
type Model struct {
	CollectionName string   `json:"collection_name,omitempty"`
	ID             string   `json:"id"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Vars           []any    `json:"vars,omitempty"`
}

// Fn carries the user-edited parameter values of a component, keyed by field name.
type Fn struct {
	NodeID      string         `json:"node_id,omitempty"`
	ModelID     string         `json:"model_id,omitempty"`
	ModelParams map[string]any `json:"model_params,omitempty"`
	Model       *Model         `json:"model,omitempty"`
}

// Component is an entry of the backend component catalog.
type Component struct {
	ID          string   `json:"id,omitempty"`
	Type        string   `json:"type,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Fields      []Field  `json:"fields,omitempty"`
	Outputs     []Output `json:"outputs,omitempty"`
	Fn          *Fn      `json:"fn,omitempty"`
}

// FieldByName returns the declared field with the given name.
func (c *Component) FieldByName(name string) (Field, bool) {
	if c == nil {
		return Field{}, false
	}
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NodeData is the editor payload of a node.
type NodeData struct {
	ID    string     `json:"id,omitempty"`
	Type  string     `json:"type,omitempty"`
	Node  *Component `json:"node,omitempty"`
	Value any        `json:"value,omitempty"`
}

// Node is a node as the graph editor holds it.
type Node struct {
	ID               string    `json:"id"`
	Position         Position  `json:"position"`
	Type             string    `json:"type,omitempty"`
	Width            int       `json:"width,omitempty"`
	Height           int       `json:"height,omitempty"`
	Selected         *bool     `json:"selected,omitempty"`
	PositionAbsolute *Position `json:"position_absolute,omitempty"`
	Dragging         *bool     `json:"dragging,omitempty"`
	Data             *NodeData `json:"data,omitempty"`
}

// Edge connects a source handle of one node to a target handle of another.
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	SourceHandle string `json:"sourceHandle"`
	Target       string `json:"target"`
	TargetHandle string `json:"targetHandle"`
}

// PayloadNode is a node as submitted to the backend.
// The editor payload travels under cf_data; data is kept empty.
type PayloadNode struct {
	ID               string         `json:"id"`
	Position         Position       `json:"position"`
	Type             string         `json:"type,omitempty"`
	Width            int            `json:"width,omitempty"`
	Height           int            `json:"height,omitempty"`
	Selected         *bool          `json:"selected,omitempty"`
	PositionAbsolute *Position      `json:"position_absolute,omitempty"`
	Dragging         *bool          `json:"dragging,omitempty"`
	CfID             string         `json:"cf_id,omitempty"`
	CfData           *NodeData      `json:"cf_data,omitempty"`
	Data             map[string]any `json:"data"`
}

// DAG is the serialised pipeline submitted to the backend.
type DAG struct {
	Nodes   []PayloadNode  `json:"nodes"`
	Edges   []Edge         `json:"edges"`
	Sample  map[string]any `json:"sample"`
	MainIn  string         `json:"main_in"`
	MainOut string         `json:"main_out"`
}

// ChatBot is a stored bot definition.
type ChatBot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Engine      string     `json:"engine"`
	DAG         *DAG       `json:"dag,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// User is an account that logs in and owns chatbots.
// Password holds the bcrypt hash and is never serialised.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNode builds an editor node for a catalog component.
// The component is cloned so edits to the node never reach the catalog.
func NewNode(id string, pos Position, c Component) Node {
	comp := cloneComponent(&c)
	return Node{
		ID:       id,
		Position: pos,
		Type:     DefaultNodeType,
		Data: &NodeData{
			ID:   id,
			Type: c.Type,
			Node: comp,
		},
	}
}
