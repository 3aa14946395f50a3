package scenario

// Position is a stage position for a displayed character.
type Position string

const (
	PositionLeft   Position = "left"
	PositionCenter Position = "center"
	PositionRight  Position = "right"
)

// TransitionKind names a visual transition style.
type TransitionKind string

const (
	TransitionNone      TransitionKind = "none"
	TransitionFade      TransitionKind = "fade"
	TransitionCrossfade TransitionKind = "crossfade"
)

// Transition describes how a visual change is presented. The zero value
// is an instant cut.
type Transition struct {
	Kind     TransitionKind `json:"kind,omitempty"`
	Duration float64        `json:"duration,omitempty"`
}

// ModifyOp is an in-place variable operation.
type ModifyOp string

const (
	ModAdd    ModifyOp = "add"
	ModSub    ModifyOp = "sub"
	ModMul    ModifyOp = "mul"
	ModDiv    ModifyOp = "div"
	ModAppend ModifyOp = "append"
	ModToggle ModifyOp = "toggle"
)

// ChoiceOption is a single selectable branch of a ShowChoice command.
type ChoiceOption struct {
	// Text shown to the player.
	Text string
	// Scene to jump to when selected.
	Scene string
	// Cond gates visibility; nil means always visible.
	Cond Condition
	// SetFlags are raised when the option is selected.
	SetFlags []string
}

// Command is one instruction in a scene. The concrete types below form a
// closed set; the executor switches exhaustively over them, so adding a
// command means extending that switch.
type Command interface{ isCommand() }

// Dialogue presents a line of text. Empty Speaker means the narrator.
type Dialogue struct {
	Speaker string
	Text    string
	Voice   string
}

// ShowBackground sets the current background image.
type ShowBackground struct {
	Asset      string
	Transition Transition
}

// HideBackground clears the current background.
type HideBackground struct {
	Transition Transition
}

// ShowCG displays a full-screen event graphic over the stage.
type ShowCG struct {
	Asset      string
	Transition Transition
}

// HideCG removes the event graphic.
type HideCG struct {
	Transition Transition
}

// ShowCharacter places a character sprite on stage.
type ShowCharacter struct {
	Character  string
	Sprite     string
	Position   Position
	Transition Transition
}

// HideCharacter removes a character from stage.
type HideCharacter struct {
	Character  string
	Transition Transition
}

// MoveCharacter repositions a displayed character. Moving a character
// that is not on stage is ignored with a diagnostic.
type MoveCharacter struct {
	Character string
	Position  Position
	Duration  float64
}

// ChangeSprite swaps the sprite of a displayed character.
type ChangeSprite struct {
	Character string
	Sprite    string
}

// PlayBGM starts background music.
type PlayBGM struct {
	Asset  string
	Volume float64
	FadeIn float64
}

// StopBGM stops background music.
type StopBGM struct {
	FadeOut float64
}

// PlaySE plays a one-shot sound effect.
type PlaySE struct {
	Asset  string
	Volume float64
}

// PlayVoice plays a voice clip.
type PlayVoice struct {
	Asset  string
	Volume float64
}

// ShowChoice presents options to the player. Options whose condition is
// unsatisfied are filtered out at presentation time.
type ShowChoice struct {
	Prompt  string
	Options []ChoiceOption
}

// Jump transfers control to the start of another scene.
type Jump struct {
	Scene string
}

// SetFlag writes a boolean flag.
type SetFlag struct {
	Flag  string
	Value bool
}

// SetVariable writes a variable, replacing any previous value and kind.
type SetVariable struct {
	Variable string
	Value    Value
}

// ModifyVariable applies Op to a variable in place. An undefined variable
// starts from the type-specific zero for the operation. Toggle takes no
// operand.
type ModifyVariable struct {
	Variable string
	Op       ModifyOp
	Operand  Value
}

// Wait pauses execution for a duration in seconds, driven by the host's
// delta time.
type Wait struct {
	Seconds float64
}

// Call enters Scene as a subroutine. When a Return executes, control
// resumes in ReturnScene at the command after the Call. Empty ReturnScene
// means the calling scene.
type Call struct {
	Scene       string
	ReturnScene string
}

// Return pops the scene stack. Executing it with an empty stack is a
// content defect.
type Return struct{}

// If executes Then or Else inline depending on Cond. Only state mutation
// commands (SetFlag, SetVariable, ModifyVariable, nested If) are legal in
// the blocks.
type If struct {
	Cond Condition
	Then []Command
	Else []Command
}

// End terminates the scenario.
type End struct{}

func (Dialogue) isCommand() {}
func (ShowBackground) isCommand() {}
func (HideBackground) isCommand() {}
func (ShowCG) isCommand() {}
func (HideCG) isCommand() {}
func (ShowCharacter) isCommand() {}
func (HideCharacter) isCommand() {}
func (MoveCharacter) isCommand() {}
func (ChangeSprite) isCommand() {}
func (PlayBGM) isCommand() {}
func (StopBGM) isCommand() {}
func (PlaySE) isCommand() {}
func (PlayVoice) isCommand() {}
func (ShowChoice) isCommand() {}
func (Jump) isCommand() {}
func (SetFlag) isCommand() {}
func (SetVariable) isCommand() {}
func (ModifyVariable) isCommand() {}
func (Wait) isCommand() {}
func (Call) isCommand() {}
func (Return) isCommand() {}
func (If) isCommand() {}
func (End) isCommand() {}
