package botdag_test

import (
	"testing"

	"github.com/meikuraledutech/botdag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(ids ...string) []botdag.PayloadNode {
	out := make([]botdag.PayloadNode, len(ids))
	for i, id := range ids {
		out[i] = botdag.PayloadNode{ID: id, Data: map[string]any{}}
	}
	return out
}

func withComponent(n botdag.PayloadNode, comp botdag.Component) botdag.PayloadNode {
	n.CfID = comp.ID
	n.CfData = &botdag.NodeData{ID: n.ID, Node: &comp}
	return n
}

func TestValidateDAG(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dag     *botdag.DAG
		wantErr error
	}{
		{
			name: "valid chain",
			dag: &botdag.DAG{
				Nodes:   payload("A", "B"),
				Edges:   []botdag.Edge{{Source: "A", SourceHandle: "o", Target: "B", TargetHandle: "i"}},
				MainIn:  "A/q",
				MainOut: "B/r",
			},
		},
		{
			name:    "missing main_in",
			dag:     &botdag.DAG{Nodes: payload("A"), MainOut: "A/r"},
			wantErr: botdag.ErrMissingMainIn,
		},
		{
			name:    "missing main_out",
			dag:     &botdag.DAG{Nodes: payload("A"), MainIn: "A/q"},
			wantErr: botdag.ErrMissingMainOut,
		},
		{
			name:    "anchor to unknown node",
			dag:     &botdag.DAG{Nodes: payload("A"), MainIn: "Z/q", MainOut: "A/r"},
			wantErr: botdag.ErrUnknownAnchor,
		},
		{
			name:    "anchor without handle",
			dag:     &botdag.DAG{Nodes: payload("A"), MainIn: "A", MainOut: "A/r"},
			wantErr: botdag.ErrUnknownAnchor,
		},
		{
			name: "anchors on declared handles",
			dag: &botdag.DAG{
				Nodes: []botdag.PayloadNode{withComponent(payload("A")[0], botdag.Component{
					ID:      "llm",
					Fields:  []botdag.Field{{Name: "prompt"}},
					Outputs: []botdag.Output{{Name: "reply"}},
				})},
				MainIn:  "A/prompt",
				MainOut: "A/reply",
			},
		},
		{
			name: "main_in on undeclared handle",
			dag: &botdag.DAG{
				Nodes: []botdag.PayloadNode{withComponent(payload("A")[0], botdag.Component{
					Fields:  []botdag.Field{{Name: "prompt"}},
					Outputs: []botdag.Output{{Name: "reply"}},
				})},
				MainIn:  "A/nope",
				MainOut: "A/reply",
			},
			wantErr: botdag.ErrUnknownAnchor,
		},
		{
			name: "main_out on an input handle",
			dag: &botdag.DAG{
				Nodes: []botdag.PayloadNode{withComponent(payload("A")[0], botdag.Component{
					Fields:  []botdag.Field{{Name: "prompt"}},
					Outputs: []botdag.Output{{Name: "reply"}},
				})},
				MainIn:  "A/prompt",
				MainOut: "A/prompt",
			},
			wantErr: botdag.ErrUnknownAnchor,
		},
		{
			name: "dangling edge",
			dag: &botdag.DAG{
				Nodes:   payload("A"),
				Edges:   []botdag.Edge{{Source: "A", Target: "Z"}},
				MainIn:  "A/q",
				MainOut: "A/r",
			},
			wantErr: botdag.ErrDanglingEdge,
		},
		{
			name:    "duplicate node",
			dag:     &botdag.DAG{Nodes: payload("A", "A"), MainIn: "A/q", MainOut: "A/r"},
			wantErr: botdag.ErrDuplicateNode,
		},
		{
			name: "cycle",
			dag: &botdag.DAG{
				Nodes: payload("A", "B", "C"),
				Edges: []botdag.Edge{
					{Source: "A", Target: "B"},
					{Source: "B", Target: "C"},
					{Source: "C", Target: "A"},
				},
				MainIn:  "A/q",
				MainOut: "C/r",
			},
			wantErr: botdag.ErrCycleDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := botdag.ValidateDAG(tt.dag)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// Anchors wired by Translate to handles the component never declared are rejected.
func TestValidateDAG_TranslatedUnknownHandles(t *testing.T) {
	t.Parallel()

	comp := botdag.Component{
		ID:      "llm",
		Fields:  []botdag.Field{{Name: "prompt"}},
		Outputs: []botdag.Output{{Name: "reply"}},
	}
	nodes := []botdag.Node{{ID: botdag.ChatIn}, botdag.NewNode("A", botdag.Position{}, comp), {ID: botdag.ChatOut}}

	d, err := botdag.Translate(nodes, []botdag.Edge{
		{Source: botdag.ChatIn, Target: "A", TargetHandle: "nope"},
		{Source: "A", SourceHandle: "nada", Target: botdag.ChatOut},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, botdag.ValidateDAG(d), botdag.ErrUnknownAnchor)

	d, err = botdag.Translate(nodes, []botdag.Edge{
		{Source: botdag.ChatIn, Target: "A", TargetHandle: "prompt"},
		{Source: "A", SourceHandle: "reply", Target: botdag.ChatOut},
	})
	require.NoError(t, err)
	assert.NoError(t, botdag.ValidateDAG(d))
}

func TestValidateDAG_DuplicateIndex(t *testing.T) {
	t.Parallel()

	err := botdag.ValidateDAG(&botdag.DAG{Nodes: payload("A", "B", "A"), MainIn: "A/q", MainOut: "B/r"})
	var dup *botdag.DuplicateNodeError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "A", dup.ID)
	assert.Equal(t, 2, dup.Index)
}

func TestValidateDAG_Nil(t *testing.T) {
	t.Parallel()
	assert.Error(t, botdag.ValidateDAG(nil))
}

func TestValidUpdateKey(t *testing.T) {
	t.Parallel()

	for _, k := range []string{"name", "description", "dag"} {
		assert.True(t, botdag.ValidUpdateKey(k), k)
	}
	assert.False(t, botdag.ValidUpdateKey("engine"))
	assert.True(t, botdag.ValidEngine("fury"))
	assert.False(t, botdag.ValidEngine("gpt"))
}
