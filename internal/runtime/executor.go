package runtime

import (
	"fmt"

	"github.com/sawane/shiori/pkg/scenario"
	"github.com/sawane/shiori/pkg/state"
)

// contentError is a defect in scenario content discovered during
// execution: a broken scene reference, an exhausted call stack, a type
// error in a condition. It is the author's bug, not the caller's; the
// runtime surfaces it as a diagnostic and ends the scenario.
type contentError struct {
	msg string
}

func (e *contentError) Error() string { return e.msg }

func contentErrorf(format string, args ...any) *contentError {
	return &contentError{msg: fmt.Sprintf(format, args...)}
}

type stepKind int

const (
	// stepContinue advances to the next command in the same frame.
	stepContinue stepKind = iota
	// stepDialogue starts displaying a line and yields to the player.
	stepDialogue
	// stepChoice presents a choice and yields to the player.
	stepChoice
	// stepWait starts a timed pause after this command.
	stepWait
	// stepJump moves the cursor to another scene position.
	stepJump
	// stepEnd terminates the scenario.
	stepEnd
)

// step is the outcome of executing one command.
type step struct {
	kind     stepKind
	effects  []state.Effect
	dialogue *scenario.Dialogue
	choice   *state.PendingChoice
	wait     float64
	jump     state.Cursor
}

// execCommand executes one command at the current cursor. Cursor movement
// itself is handled by the advance loop; execCommand only reports what
// should happen next. Errors are always content defects.
func (r *Runtime) execCommand(cmd scenario.Command) (step, error) {
	switch c := cmd.(type) {
	case scenario.Dialogue:
		return step{kind: stepDialogue, dialogue: &c}, nil

	case scenario.ShowBackground:
		r.display.background = c.Asset
		return effectStep(state.Effect{Kind: state.EffectShowBackground, Asset: c.Asset, Transition: c.Transition}), nil

	case scenario.HideBackground:
		r.display.background = ""
		return effectStep(state.Effect{Kind: state.EffectHideBackground, Transition: c.Transition}), nil

	case scenario.ShowCG:
		r.display.cg = c.Asset
		return effectStep(state.Effect{Kind: state.EffectShowCG, Asset: c.Asset, Transition: c.Transition}), nil

	case scenario.HideCG:
		r.display.cg = ""
		return effectStep(state.Effect{Kind: state.EffectHideCG, Transition: c.Transition}), nil

	case scenario.ShowCharacter:
		r.display.characters[c.Character] = state.CharacterDisplay{
			Character: c.Character,
			Sprite:    c.Sprite,
			Position:  c.Position,
		}
		return effectStep(state.Effect{
			Kind:       state.EffectShowCharacter,
			Character:  c.Character,
			Sprite:     c.Sprite,
			Position:   c.Position,
			Transition: c.Transition,
		}), nil

	case scenario.HideCharacter:
		delete(r.display.characters, c.Character)
		return effectStep(state.Effect{Kind: state.EffectHideCharacter, Character: c.Character, Transition: c.Transition}), nil

	case scenario.MoveCharacter:
		cd, ok := r.display.characters[c.Character]
		if !ok {
			// Not a defect worth ending the scenario over.
			r.logger.Warn("move of character that is not on stage", "character", c.Character)
			return step{kind: stepContinue}, nil
		}
		cd.Position = c.Position
		r.display.characters[c.Character] = cd
		return effectStep(state.Effect{
			Kind:      state.EffectMoveCharacter,
			Character: c.Character,
			Position:  c.Position,
			Duration:  c.Duration,
		}), nil

	case scenario.ChangeSprite:
		cd, ok := r.display.characters[c.Character]
		if !ok {
			r.logger.Warn("sprite change for character that is not on stage", "character", c.Character)
			return step{kind: stepContinue}, nil
		}
		cd.Sprite = c.Sprite
		r.display.characters[c.Character] = cd
		return effectStep(state.Effect{Kind: state.EffectChangeSprite, Character: c.Character, Sprite: c.Sprite}), nil

	case scenario.PlayBGM:
		return effectStep(state.Effect{Kind: state.EffectPlayBGM, Asset: c.Asset, Volume: c.Volume, Fade: c.FadeIn}), nil

	case scenario.StopBGM:
		return effectStep(state.Effect{Kind: state.EffectStopBGM, Fade: c.FadeOut}), nil

	case scenario.PlaySE:
		return effectStep(state.Effect{Kind: state.EffectPlaySE, Asset: c.Asset, Volume: c.Volume}), nil

	case scenario.PlayVoice:
		return effectStep(state.Effect{Kind: state.EffectPlayVoice, Asset: c.Asset, Volume: c.Volume}), nil

	case scenario.ShowChoice:
		return r.execChoice(c)

	case scenario.Jump:
		return r.execJump(c.Scene, 0)

	case scenario.SetFlag:
		r.flags.Set(c.Flag, c.Value)
		return step{kind: stepContinue}, nil

	case scenario.SetVariable:
		r.vars.Set(c.Variable, c.Value)
		return step{kind: stepContinue}, nil

	case scenario.ModifyVariable:
		if err := r.applyModify(c); err != nil {
			return step{}, err
		}
		return step{kind: stepContinue}, nil

	case scenario.Wait:
		w := c.Seconds
		if w < 0 {
			w = 0
		}
		return step{kind: stepWait, wait: w}, nil

	case scenario.Call:
		return r.execCall(c)

	case scenario.Return:
		if len(r.stack) == 0 {
			return step{}, contentErrorf("return with empty scene stack; no matching call")
		}
		frame := r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
		return r.execJump(frame.Scene, frame.Index)

	case scenario.If:
		ok, err := evalCondition(c.Cond, r.flags, r.vars)
		if err != nil {
			return step{}, contentErrorf("if condition: %v", err)
		}
		block := c.Then
		if !ok {
			block = c.Else
		}
		if err := r.execInline(block); err != nil {
			return step{}, err
		}
		return step{kind: stepContinue}, nil

	case scenario.End:
		return step{kind: stepEnd}, nil

	default:
		return step{}, contentErrorf("unknown command type %T", cmd)
	}
}

func effectStep(e state.Effect) step {
	return step{kind: stepContinue, effects: []state.Effect{e}}
}

// execChoice filters options against the stores and yields the visible
// set. Zero visible options is a content defect: the scenario dead-ends.
func (r *Runtime) execChoice(c scenario.ShowChoice) (step, error) {
	pending := &state.PendingChoice{Prompt: c.Prompt}
	for i, opt := range c.Options {
		ok, err := evalCondition(opt.Cond, r.flags, r.vars)
		if err != nil {
			return step{}, contentErrorf("choice option %q: %v", opt.Text, err)
		}
		if ok {
			pending.Options = append(pending.Options, state.ChoiceView{Index: i, Text: opt.Text})
		}
	}
	if len(pending.Options) == 0 {
		return step{}, contentErrorf("all %d choice options filtered out", len(c.Options))
	}
	return step{kind: stepChoice, choice: pending}, nil
}

// execCall pushes the return frame and jumps into the subroutine scene.
func (r *Runtime) execCall(c scenario.Call) (step, error) {
	if len(r.stack) >= r.maxCallDepth {
		return step{}, contentErrorf("call stack depth limit %d exceeded; possible scenario recursion", r.maxCallDepth)
	}
	returnScene := c.ReturnScene
	if returnScene == "" {
		returnScene = r.cursor.Scene
	}
	if r.doc.Scene(returnScene) == nil {
		return step{}, contentErrorf("call return scene %q not found", returnScene)
	}
	r.stack = append(r.stack, state.Frame{Scene: returnScene, Index: r.cursor.Index + 1})
	return r.execJump(c.Scene, 0)
}

// execJump validates the target and emits the scene change effect,
// carrying the exit transition of the scene being left and the entry
// transition of the target.
func (r *Runtime) execJump(sceneID string, index int) (step, error) {
	target := r.doc.Scene(sceneID)
	if target == nil {
		return step{}, contentErrorf("scene %q not found", sceneID)
	}
	eff := state.Effect{
		Kind:      state.EffectSceneChange,
		FromScene: r.cursor.Scene,
		ToScene:   sceneID,
	}
	if from := r.doc.Scene(r.cursor.Scene); from != nil && from.ExitTransition != nil {
		eff.ExitTransition = *from.ExitTransition
	}
	if target.EntryTransition != nil {
		eff.Transition = *target.EntryTransition
	}
	return step{
		kind:    stepJump,
		jump:    state.Cursor{Scene: sceneID, Index: index},
		effects: []state.Effect{eff},
	}, nil
}

// applyModify applies a variable operation. Undefined variables start
// from the type-specific zero for the operation.
func (r *Runtime) applyModify(c scenario.ModifyVariable) error {
	current, ok := r.vars.Get(c.Variable)
	if !ok {
		switch c.Op {
		case scenario.ModAdd, scenario.ModSub, scenario.ModMul, scenario.ModDiv:
			current = scenario.ZeroValue(c.Operand.Kind())
		case scenario.ModAppend:
			current = scenario.StringValue("")
		case scenario.ModToggle:
			current = scenario.BoolValue(false)
		}
	}

	var (
		next scenario.Value
		err  error
	)
	switch c.Op {
	case scenario.ModAdd:
		next, err = current.Add(c.Operand)
	case scenario.ModSub:
		next, err = current.Sub(c.Operand)
	case scenario.ModMul:
		next, err = current.Mul(c.Operand)
	case scenario.ModDiv:
		next, err = current.Div(c.Operand)
	case scenario.ModAppend:
		next, err = current.Append(c.Operand)
	case scenario.ModToggle:
		next, err = current.Toggle()
	default:
		return contentErrorf("unknown variable operation %q on %q", c.Op, c.Variable)
	}
	if err != nil {
		return contentErrorf("operation %q on variable %q: %v", c.Op, c.Variable, err)
	}
	r.vars.Set(c.Variable, next)
	return nil
}

// execInline runs an If block. Only state mutations are legal; flow
// control inside a block is a content defect, anything else is ignored
// with a log line.
func (r *Runtime) execInline(block []scenario.Command) error {
	for _, cmd := range block {
		switch c := cmd.(type) {
		case scenario.SetFlag:
			r.flags.Set(c.Flag, c.Value)
		case scenario.SetVariable:
			r.vars.Set(c.Variable, c.Value)
		case scenario.ModifyVariable:
			if err := r.applyModify(c); err != nil {
				return err
			}
		case scenario.If:
			ok, err := evalCondition(c.Cond, r.flags, r.vars)
			if err != nil {
				return contentErrorf("if condition: %v", err)
			}
			inner := c.Then
			if !ok {
				inner = c.Else
			}
			if err := r.execInline(inner); err != nil {
				return err
			}
		case scenario.Jump, scenario.Call, scenario.Return, scenario.End:
			return contentErrorf("command %T is not allowed inside an if block", cmd)
		default:
			r.logger.Warn("command has no effect inside an if block", "command", fmt.Sprintf("%T", cmd))
		}
	}
	return nil
}
