package runtime

import (
	"maps"
	"sort"

	"github.com/sawane/shiori/pkg/state"
)

// display tracks the visual composition of the stage: background, event
// graphic and characters. It is what a restore uses to rebuild the
// screen without replaying the scenario.
type display struct {
	background string
	cg         string
	characters map[string]state.CharacterDisplay
}

func newDisplay() *display {
	return &display{characters: make(map[string]state.CharacterDisplay)}
}

func (d *display) snapshot() state.DisplayState {
	out := state.DisplayState{
		Background: d.background,
		CG:         d.cg,
	}
	if len(d.characters) > 0 {
		out.Characters = maps.Clone(d.characters)
	}
	return out
}

func (d *display) restore(s state.DisplayState) {
	d.background = s.Background
	d.cg = s.CG
	d.characters = make(map[string]state.CharacterDisplay, len(s.Characters))
	maps.Copy(d.characters, s.Characters)
}

// rebuildEffects emits the effects a host must apply to reconstruct the
// current composition, in a deterministic order: background, CG, then
// characters sorted by ID. Transitions are instant; a restore is a cut,
// not a replay.
func (d *display) rebuildEffects() []state.Effect {
	var effects []state.Effect
	if d.background != "" {
		effects = append(effects, state.Effect{Kind: state.EffectShowBackground, Asset: d.background})
	}
	if d.cg != "" {
		effects = append(effects, state.Effect{Kind: state.EffectShowCG, Asset: d.cg})
	}
	ids := make([]string, 0, len(d.characters))
	for id := range d.characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := d.characters[id]
		effects = append(effects, state.Effect{
			Kind:      state.EffectShowCharacter,
			Character: c.Character,
			Sprite:    c.Sprite,
			Position:  c.Position,
		})
	}
	return effects
}
