package tui

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/sawane/shiori/pkg/state"
)

var profile = termenv.ColorProfile()

// Speaker styles a character name for a dialogue line.
func Speaker(name string) string {
	if name == "" {
		return ""
	}
	return termenv.String(name).Foreground(profile.Color("#818cf8")).Bold().String()
}

// Stage styles effect descriptions, shown as faint stage directions.
func Stage(text string) string {
	return termenv.String(text).Faint().String()
}

// Prompt styles a choice prompt.
func Prompt(text string) string {
	return termenv.String(text).Foreground(profile.Color("#e879f9")).Bold().String()
}

// Option formats one selectable choice line.
func Option(index int, text string) string {
	num := termenv.String(fmt.Sprintf("[%d]", index)).Foreground(profile.Color("#a78bfa")).String()
	return fmt.Sprintf("  %s %s", num, text)
}

// Diagnostic styles a content defect report.
func Diagnostic(text string) string {
	return termenv.String(text).Foreground(profile.Color("#fb7185")).String()
}

// DescribeEffect renders an effect as a short stage direction, or ""
// for effects a text player has nothing to show for.
func DescribeEffect(e state.Effect) string {
	switch e.Kind {
	case state.EffectShowBackground:
		return fmt.Sprintf("(background: %s)", e.Asset)
	case state.EffectHideBackground:
		return "(background fades)"
	case state.EffectShowCG:
		return fmt.Sprintf("(cg: %s)", e.Asset)
	case state.EffectHideCG:
		return "(cg fades)"
	case state.EffectShowCharacter:
		return fmt.Sprintf("(%s enters, %s, %s)", e.Character, e.Sprite, e.Position)
	case state.EffectHideCharacter:
		return fmt.Sprintf("(%s leaves)", e.Character)
	case state.EffectMoveCharacter:
		return fmt.Sprintf("(%s moves %s)", e.Character, e.Position)
	case state.EffectChangeSprite:
		return fmt.Sprintf("(%s: %s)", e.Character, e.Sprite)
	case state.EffectPlayBGM:
		return fmt.Sprintf("(bgm: %s)", e.Asset)
	case state.EffectStopBGM:
		return "(bgm stops)"
	case state.EffectPlaySE:
		return fmt.Sprintf("(se: %s)", e.Asset)
	case state.EffectPlayVoice:
		return ""
	case state.EffectSceneChange:
		return fmt.Sprintf("(scene: %s)", e.ToScene)
	default:
		return ""
	}
}
