package shiori_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawane/shiori"
	"github.com/sawane/shiori/pkg/adapters/file"
	"github.com/sawane/shiori/pkg/adapters/memory"
	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

func demoDocument() *scenario.Document {
	return &scenario.Document{
		ID:    "demo",
		Entry: "morning",
		Scenes: map[string]*scenario.Scene{
			"morning": {ID: "morning", Commands: []scenario.Command{
				scenario.ShowBackground{Asset: "bg/bedroom.png"},
				scenario.Dialogue{Speaker: "mika", Text: "Good morning!"},
				scenario.SetVariable{Variable: "energy", Value: scenario.IntValue(3)},
				scenario.ShowChoice{
					Prompt: "What first?",
					Options: []scenario.ChoiceOption{
						{Text: "Coffee", Scene: "kitchen", SetFlags: []string{"had_coffee"}},
						{Text: "Shower", Scene: "bathroom"},
					},
				},
			}},
			"kitchen": {ID: "kitchen", Commands: []scenario.Command{
				scenario.Dialogue{Text: "The kettle hums."},
				scenario.End{},
			}},
			"bathroom": {ID: "bathroom", Commands: []scenario.Command{
				scenario.End{},
			}},
		},
	}
}

func TestNewRejectsNilDocument(t *testing.T) {
	_, err := shiori.New(nil)
	assert.Error(t, err)
}

func TestNewRejectsBrokenDocument(t *testing.T) {
	doc := demoDocument()
	doc.Scenes["morning"].Commands = []scenario.Command{
		scenario.Jump{Scene: "nowhere"},
	}

	_, err := shiori.New(doc)
	require.Error(t, err)

	var verr *shiori.ValidationError
	require.ErrorAs(t, err, &verr)
	require.NotEmpty(t, verr.Issues)
	assert.Contains(t, err.Error(), "nowhere")
}

func TestLoadThroughLoader(t *testing.T) {
	eng, err := shiori.Load(context.Background(), memory.NewLoader(demoDocument()))
	require.NoError(t, err)
	assert.Equal(t, "demo", eng.Document().ID)
	assert.Equal(t, state.StatusIdle, eng.Status())
}

func TestEnginePlaythrough(t *testing.T) {
	eng, err := shiori.New(demoDocument(), shiori.WithTextSpeed(0))
	require.NoError(t, err)
	require.NoError(t, eng.Start())

	ev, err := eng.Advance(0.016, false)
	require.NoError(t, err)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Good morning!", ev.Line.Text)
	require.Len(t, ev.Effects, 1)
	assert.Equal(t, state.EffectShowBackground, ev.Effects[0].Kind)

	ev, err = eng.Advance(0.016, true)
	require.NoError(t, err)
	require.Equal(t, state.StatusAwaitingChoice, ev.Status)
	require.NotNil(t, ev.Choice)

	ev, err = eng.SelectChoice(0)
	require.NoError(t, err)
	assert.Equal(t, "kitchen", ev.Cursor.Scene)
	assert.True(t, eng.Flag("had_coffee"))

	energy, ok := eng.Variable("energy")
	require.True(t, ok)
	assert.Equal(t, int64(3), energy.Int())

	ev, err = eng.Advance(0.016, true)
	require.NoError(t, err)
	assert.Equal(t, state.StatusEnded, ev.Status)

	history := eng.History()
	require.Len(t, history, 2)
	assert.Equal(t, "Good morning!", history[0].Text)
	assert.Equal(t, "The kettle hums.", history[1].Text)
	assert.True(t, eng.HasSeen(state.Cursor{Scene: "morning", Index: 1}))
}

func TestEngineSaveToAndRestoreFrom(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	eng, err := shiori.New(demoDocument(), shiori.WithTextSpeed(0))
	require.NoError(t, err)
	require.NoError(t, eng.Start())
	_, err = eng.Advance(0.016, false)
	require.NoError(t, err)

	require.NoError(t, eng.SaveTo(ctx, store, "slot1", ""))

	// A second engine over the same document resumes the save.
	eng2, err := shiori.New(demoDocument(), shiori.WithTextSpeed(0))
	require.NoError(t, err)

	ev, err := eng2.RestoreFrom(ctx, store, "slot1")
	require.NoError(t, err)
	assert.Equal(t, state.StatusAwaitingAdvance, ev.Status)
	require.NotNil(t, ev.Line)
	assert.Equal(t, "Good morning!", ev.Line.Text)

	_, err = eng2.RestoreFrom(ctx, store, "missing")
	assert.ErrorIs(t, err, state.ErrSnapshotNotFound)
}

func TestEngineOptionsForwarded(t *testing.T) {
	doc := &scenario.Document{
		ID:    "cycle",
		Entry: "a",
		Scenes: map[string]*scenario.Scene{
			"a": {ID: "a", Commands: []scenario.Command{scenario.Jump{Scene: "b"}}},
			"b": {ID: "b", Commands: []scenario.Command{scenario.Jump{Scene: "a"}}},
		},
	}
	eng, err := shiori.New(doc, shiori.WithChainLimit(8))
	require.NoError(t, err)
	require.NoError(t, eng.Start())

	ev, err := eng.Advance(0.016, false)
	require.NoError(t, err)
	assert.Equal(t, state.StatusEnded, ev.Status)
	require.Len(t, ev.Diagnostics, 1)
}
