package scenario

// Document is a complete, immutable scenario: metadata plus a set of
// scenes keyed by ID. The runtime never mutates a Document, so one
// instance can back any number of runtimes.
type Document struct {
	// ID identifies the scenario. Snapshots record it and restore
	// refuses snapshots taken against a different ID.
	ID string
	// Version is a content revision marker, also checked on restore.
	Version string
	// Title is the display title.
	Title string
	// Author and Description are optional authoring metadata.
	Author      string
	Description string
	// Entry is the scene where execution starts.
	Entry string
	// Scenes maps scene ID to scene.
	Scenes map[string]*Scene
}

// Scene is an ordered command list.
type Scene struct {
	ID    string
	Title string
	// Commands execute in order from index 0.
	Commands []Command
	// EntryTransition and ExitTransition wrap scene changes, when set.
	EntryTransition *Transition
	ExitTransition  *Transition
}

// Scene returns the scene with the given ID, or nil.
func (d *Document) Scene(id string) *Scene {
	return d.Scenes[id]
}

// EntryScene returns the entry scene, or nil when it is missing.
func (d *Document) EntryScene() *Scene {
	return d.Scenes[d.Entry]
}
