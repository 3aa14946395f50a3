package state

import "github.com/sawane/shiori/pkg/scenario"

// Status is the externally visible execution mode of a runtime.
type Status string

const (
	// StatusIdle means a document is loaded but execution has not started.
	StatusIdle Status = "idle"
	// StatusRunning means the runtime is executing commands, revealing
	// text or waiting out a timed pause.
	StatusRunning Status = "running"
	// StatusAwaitingChoice means a choice is presented and the runtime
	// blocks until one is selected.
	StatusAwaitingChoice Status = "awaiting_choice"
	// StatusAwaitingAdvance means a dialogue line is fully revealed and
	// the runtime blocks until the player advances.
	StatusAwaitingAdvance Status = "awaiting_advance"
	// StatusEnded is terminal. Further advances are no-ops.
	StatusEnded Status = "ended"
)

// Cursor addresses one command in the document.
type Cursor struct {
	Scene string `json:"scene"`
	Index int    `json:"index"`
}

// Frame is one entry of the scene call stack: where a Return resumes.
type Frame struct {
	Scene string `json:"scene"`
	Index int    `json:"index"`
}

// ChoiceView is one visible option of a pending choice. Index is the
// option's position in the document, which is what SelectChoice takes;
// filtered options leave holes in the index sequence.
type ChoiceView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// PendingChoice is the choice currently presented to the player.
type PendingChoice struct {
	Prompt  string       `json:"prompt,omitempty"`
	Options []ChoiceView `json:"options"`
}

// Line is the dialogue line currently displayed, with the portion made
// visible so far by the typewriter reveal.
type Line struct {
	Speaker  string `json:"speaker,omitempty"`
	Text     string `json:"text"`
	Visible  string `json:"visible"`
	Complete bool   `json:"complete"`
}

// HistoryEntry is one read dialogue line in the backlog.
type HistoryEntry struct {
	Scene   string `json:"scene"`
	Index   int    `json:"index"`
	Speaker string `json:"speaker,omitempty"`
	Text    string `json:"text"`
}

// CharacterDisplay describes one character currently on stage.
type CharacterDisplay struct {
	Character string            `json:"character"`
	Sprite    string            `json:"sprite"`
	Position  scenario.Position `json:"position"`
}

// DisplayState is the visual scene composition the host should be
// showing. It exists so a restore can rebuild the screen.
type DisplayState struct {
	Background string                      `json:"background,omitempty"`
	CG         string                      `json:"cg,omitempty"`
	Characters map[string]CharacterDisplay `json:"characters,omitempty"`
}

// Diagnostic reports a content defect the runtime recovered from or
// terminated on, attributed to the command that caused it.
type Diagnostic struct {
	Cursor  Cursor `json:"cursor"`
	Message string `json:"message"`
}

// Event is the result of one host call into the runtime: the resulting
// status and cursor, the effects produced this call in execution order,
// and whatever the player should now be looking at.
type Event struct {
	Status  Status   `json:"status"`
	Cursor  Cursor   `json:"cursor"`
	Effects []Effect `json:"effects,omitempty"`
	// Line is set while a dialogue line is displayed.
	Line *Line `json:"line,omitempty"`
	// Choice is set while Status is StatusAwaitingChoice.
	Choice *PendingChoice `json:"choice,omitempty"`
	// Diagnostics carries content defects hit during this call.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
