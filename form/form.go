// Package form turns declared component fields into editable controls.
// One control shape covers every field; the declared type picks its Kind.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/meikuraledutech/botdag"
)

var (
	ErrUnknownField = errors.New("form: unknown field")
	ErrNoComponent  = errors.New("form: node has no component data")
)

// Kind selects how a control reads and coerces its value.
type Kind string

const (
	KindText     Kind = "text"
	KindTextArea Kind = "textarea"
	KindPassword Kind = "password"
	KindNumber   Kind = "number"
	KindBoolean  Kind = "boolean"
	KindJSON     Kind = "json"
	KindList     Kind = "list"
	KindUnknown  Kind = "unknown"
)

// Control is the editable view of one field.
type Control struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"kind"`
	Required    bool   `json:"required,omitempty"`
	Placeholder any    `json:"placeholder,omitempty"`
	Value       any    `json:"value,omitempty"`
}

// KindOf maps a declared field to its control kind.
func KindOf(f botdag.Field) Kind {
	if f.Password {
		return KindPassword
	}
	switch f.Kind() {
	case "string":
		return KindTextArea
	case "number", "integer":
		return KindNumber
	case "boolean":
		return KindBoolean
	case "object":
		return KindJSON
	case "array":
		return KindList
	case "":
		return KindUnknown
	default:
		return KindText
	}
}

// Describe builds the control for f.
func Describe(f botdag.Field) Control {
	return Control{
		Name:        f.Name,
		Kind:        KindOf(f),
		Required:    f.Required,
		Placeholder: f.Placeholder,
	}
}

// Controls lists a control per declared field of node, with current values filled in.
func Controls(node botdag.Node) []Control {
	comp := nodeComponent(node)
	if comp == nil {
		return nil
	}
	out := make([]Control, 0, len(comp.Fields))
	for _, f := range comp.Fields {
		c := Describe(f)
		if comp.Fn != nil {
			c.Value = comp.Fn.ModelParams[f.Name]
		}
		out = append(out, c)
	}
	return out
}

// Coerce parses raw text into the value type a control of kind k stores.
func Coerce(k Kind, raw string) (any, error) {
	switch k {
	case KindNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("form: %q is not a number", raw)
		}
		return v, nil
	case KindBoolean:
		v, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("form: %q is not a boolean", raw)
		}
		return v, nil
	case KindJSON:
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("form: invalid json: %w", err)
		}
		return v, nil
	case KindList:
		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") {
			var v []any
			if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
				return nil, fmt.Errorf("form: invalid json list: %w", err)
			}
			return v, nil
		}
		parts := strings.Split(raw, ",")
		v := make([]any, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				v = append(v, p)
			}
		}
		return v, nil
	default:
		return raw, nil
	}
}

// Set coerces raw for the field called name and stores it in the node's model params.
func Set(node *botdag.Node, name, raw string) error {
	comp := nodeComponent(*node)
	if comp == nil {
		return ErrNoComponent
	}
	f, ok := comp.FieldByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	v, err := Coerce(KindOf(f), raw)
	if err != nil {
		return err
	}
	if comp.Fn == nil {
		comp.Fn = &botdag.Fn{}
	}
	if comp.Fn.ModelParams == nil {
		comp.Fn.ModelParams = map[string]any{}
	}
	comp.Fn.ModelParams[name] = v
	return nil
}

func nodeComponent(n botdag.Node) *botdag.Component {
	if n.Data == nil {
		return nil
	}
	return n.Data.Node
}
