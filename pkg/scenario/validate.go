package scenario

import (
	"fmt"
	"sort"
)

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from Validate. Index is the command index inside
// Scene, or -1 for scene- and document-level findings.
type Issue struct {
	Severity Severity
	Scene    string
	Index    int
	Message  string
}

func (i Issue) String() string {
	loc := "document"
	if i.Scene != "" {
		loc = i.Scene
		if i.Index >= 0 {
			loc = fmt.Sprintf("%s[%d]", i.Scene, i.Index)
		}
	}
	return fmt.Sprintf("%s: %s: %s", i.Severity, loc, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a document for structural defects the runtime would
// otherwise only discover mid-playthrough: broken scene references,
// illegal inline commands, malformed operations. Warnings flag content
// that is legal but suspicious, such as a choice whose options are all
// conditional and can therefore all be filtered out at once.
//
// Scenes are visited in sorted ID order so output is deterministic.
func Validate(doc *Document) []Issue {
	v := &validator{doc: doc}

	if doc.ID == "" {
		v.warnf("", -1, "document has no ID; snapshots cannot be matched to it")
	}
	if doc.Entry == "" {
		v.errorf("", -1, "document has no entry scene")
	} else if doc.Scenes[doc.Entry] == nil {
		v.errorf("", -1, "entry scene %q does not exist", doc.Entry)
	}

	ids := make([]string, 0, len(doc.Scenes))
	for id := range doc.Scenes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		v.scene(id, doc.Scenes[id])
	}
	v.reachability(ids)
	return v.issues
}

type validator struct {
	doc    *Document
	issues []Issue
}

func (v *validator) errorf(scene string, index int, format string, args ...any) {
	v.issues = append(v.issues, Issue{Severity: SeverityError, Scene: scene, Index: index, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) warnf(scene string, index int, format string, args ...any) {
	v.issues = append(v.issues, Issue{Severity: SeverityWarning, Scene: scene, Index: index, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) checkTarget(scene string, index int, what, target string) {
	if target == "" {
		v.errorf(scene, index, "%s has an empty scene target", what)
		return
	}
	if v.doc.Scenes[target] == nil {
		v.errorf(scene, index, "%s targets unknown scene %q", what, target)
	}
}

func (v *validator) scene(id string, s *Scene) {
	if s == nil {
		v.errorf(id, -1, "scene entry is nil")
		return
	}
	if s.ID != "" && s.ID != id {
		v.warnf(id, -1, "scene ID %q does not match its map key", s.ID)
	}
	if len(s.Commands) == 0 {
		v.warnf(id, -1, "scene has no commands")
	}

	terminated := false
	for i, cmd := range s.Commands {
		if terminated {
			v.warnf(id, i, "command is unreachable after an unconditional scene exit")
			terminated = false // report once per run
		}
		v.command(id, i, cmd)
		switch cmd.(type) {
		case Jump, Return, End:
			terminated = true
		}
	}
}

func (v *validator) command(scene string, index int, cmd Command) {
	switch c := cmd.(type) {
	case Jump:
		v.checkTarget(scene, index, "jump", c.Scene)
	case Call:
		v.checkTarget(scene, index, "call", c.Scene)
		if c.ReturnScene != "" {
			v.checkTarget(scene, index, "call return", c.ReturnScene)
		}
	case ShowChoice:
		if len(c.Options) == 0 {
			v.errorf(scene, index, "choice has no options")
			return
		}
		allConditional := true
		for _, opt := range c.Options {
			v.checkTarget(scene, index, fmt.Sprintf("choice option %q", opt.Text), opt.Scene)
			if opt.Cond == nil {
				allConditional = false
			}
		}
		if allConditional {
			v.warnf(scene, index, "every choice option is conditional; all options can be filtered out at runtime")
		}
	case Wait:
		if c.Seconds < 0 {
			v.errorf(scene, index, "wait duration is negative")
		}
	case ModifyVariable:
		v.modify(scene, index, c)
	case If:
		v.inlineBlock(scene, index, c.Then)
		v.inlineBlock(scene, index, c.Else)
	}
}

func (v *validator) modify(scene string, index int, c ModifyVariable) {
	switch c.Op {
	case ModAdd, ModSub, ModMul, ModDiv:
		if k := c.Operand.Kind(); k != KindInt && k != KindFloat {
			v.errorf(scene, index, "operation %q on %q requires a numeric operand, got %s", c.Op, c.Variable, k)
		}
	case ModAppend:
		if c.Operand.Kind() != KindString {
			v.errorf(scene, index, "append on %q requires a string operand, got %s", c.Variable, c.Operand.Kind())
		}
	case ModToggle:
		// No operand.
	default:
		v.errorf(scene, index, "unknown variable operation %q", c.Op)
	}
}

// inlineBlock enforces that If blocks only carry state mutations.
func (v *validator) inlineBlock(scene string, index int, block []Command) {
	for _, cmd := range block {
		switch c := cmd.(type) {
		case SetFlag, SetVariable:
		case ModifyVariable:
			v.modify(scene, index, c)
		case If:
			v.inlineBlock(scene, index, c.Then)
			v.inlineBlock(scene, index, c.Else)
		default:
			v.errorf(scene, index, "command %T is not allowed inside an if block", cmd)
		}
	}
}

// reachability walks jump, call and choice edges from the entry scene and
// warns about scenes nothing links to.
func (v *validator) reachability(ids []string) {
	if v.doc.Scenes[v.doc.Entry] == nil {
		return
	}
	seen := map[string]bool{v.doc.Entry: true}
	queue := []string{v.doc.Entry}
	visit := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		s := v.doc.Scenes[queue[0]]
		queue = queue[1:]
		if s == nil {
			continue
		}
		for _, cmd := range s.Commands {
			switch c := cmd.(type) {
			case Jump:
				visit(c.Scene)
			case Call:
				visit(c.Scene)
				visit(c.ReturnScene)
			case ShowChoice:
				for _, opt := range c.Options {
					visit(opt.Scene)
				}
			}
		}
	}
	for _, id := range ids {
		if !seen[id] {
			v.warnf(id, -1, "scene is unreachable from the entry scene")
		}
	}
}
