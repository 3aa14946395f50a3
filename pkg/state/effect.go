package state

import "github.com/sawane/shiori/pkg/scenario"

// EffectKind names a side effect the host should perform. The runtime
// never touches assets or audio itself; it only describes.
type EffectKind string

const (
	EffectShowBackground EffectKind = "show_background"
	EffectHideBackground EffectKind = "hide_background"
	EffectShowCG         EffectKind = "show_cg"
	EffectHideCG         EffectKind = "hide_cg"
	EffectShowCharacter  EffectKind = "show_character"
	EffectHideCharacter  EffectKind = "hide_character"
	EffectMoveCharacter  EffectKind = "move_character"
	EffectChangeSprite   EffectKind = "change_sprite"
	EffectPlayBGM        EffectKind = "play_bgm"
	EffectStopBGM        EffectKind = "stop_bgm"
	EffectPlaySE         EffectKind = "play_se"
	EffectPlayVoice      EffectKind = "play_voice"
	EffectSceneChange    EffectKind = "scene_change"
)

// Effect is an ordered side-effect descriptor. Only the fields relevant
// to the kind are set.
type Effect struct {
	Kind       EffectKind          `json:"kind"`
	Asset      string              `json:"asset,omitempty"`
	Character  string              `json:"character,omitempty"`
	Sprite     string              `json:"sprite,omitempty"`
	Position   scenario.Position   `json:"position,omitempty"`
	Transition scenario.Transition `json:"transition,omitzero"`
	// ExitTransition is set on scene_change effects when the scene being
	// left declares one.
	ExitTransition scenario.Transition `json:"exit_transition,omitzero"`
	Volume     float64             `json:"volume,omitempty"`
	Fade       float64             `json:"fade,omitempty"`
	Duration   float64             `json:"duration,omitempty"`
	FromScene  string              `json:"from_scene,omitempty"`
	ToScene    string              `json:"to_scene,omitempty"`
}
