package form_test

import (
	"encoding/json"
	"testing"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name, typ string) botdag.Field {
	return botdag.Field{Name: name, Type: json.RawMessage(typ)}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field botdag.Field
		want  form.Kind
	}{
		{field("a", `"string"`), form.KindTextArea},
		{field("b", `"number"`), form.KindNumber},
		{field("c", `[{"type":"boolean"}]`), form.KindBoolean},
		{field("d", `"object"`), form.KindJSON},
		{field("e", `"array"`), form.KindList},
		{field("f", `"model"`), form.KindText},
		{botdag.Field{Name: "g"}, form.KindUnknown},
		{botdag.Field{Name: "h", Type: json.RawMessage(`"string"`), Password: true}, form.KindPassword},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, form.KindOf(tt.field), tt.field.Name)
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	v, err := form.Coerce(form.KindNumber, " 0.5 ")
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = form.Coerce(form.KindNumber, "abc")
	assert.Error(t, err)

	v, err = form.Coerce(form.KindBoolean, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = form.Coerce(form.KindJSON, `{"a":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, 2.0}}, v)

	_, err = form.Coerce(form.KindJSON, `{`)
	assert.Error(t, err)

	v, err = form.Coerce(form.KindList, "a, b,,c")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, v)

	v, err = form.Coerce(form.KindList, `["x", 1]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", 1.0}, v)

	v, err = form.Coerce(form.KindPassword, "sk-123")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", v)
}

func TestSet(t *testing.T) {
	t.Parallel()

	comp := botdag.Component{
		ID:     "openai-chat",
		Fields: []botdag.Field{field("temperature", `"number"`), field("prompt", `"string"`)},
	}
	node := botdag.NewNode("n1", botdag.Position{}, comp)

	require.NoError(t, form.Set(&node, "temperature", "0.7"))
	require.NoError(t, form.Set(&node, "prompt", "hello"))
	assert.Equal(t, map[string]any{"temperature": 0.7, "prompt": "hello"}, node.Data.Node.Fn.ModelParams)

	err := form.Set(&node, "missing", "1")
	assert.ErrorIs(t, err, form.ErrUnknownField)

	err = form.Set(&node, "temperature", "hot")
	assert.Error(t, err)

	bare := botdag.Node{ID: "x"}
	assert.ErrorIs(t, form.Set(&bare, "temperature", "1"), form.ErrNoComponent)
}

func TestControls(t *testing.T) {
	t.Parallel()

	comp := botdag.Component{
		Fields: []botdag.Field{
			{Name: "api_key", Type: json.RawMessage(`"string"`), Password: true, Required: true},
			field("max_tokens", `"number"`),
		},
		Fn: &botdag.Fn{ModelParams: map[string]any{"max_tokens": 256.0}},
	}
	controls := form.Controls(botdag.NewNode("n", botdag.Position{}, comp))

	require.Len(t, controls, 2)
	assert.Equal(t, form.KindPassword, controls[0].Kind)
	assert.True(t, controls[0].Required)
	assert.Nil(t, controls[0].Value)
	assert.Equal(t, 256.0, controls[1].Value)

	assert.Nil(t, form.Controls(botdag.Node{ID: "empty"}))
}
