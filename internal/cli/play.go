// Package cli implements the interactive terminal player behind the
// run command.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sawane/shiori"
	"github.com/sawane/shiori/internal/presentation/tui"
	"github.com/sawane/shiori/pkg/adapters/file"
	"github.com/sawane/shiori/pkg/adapters/yaml"
	"github.com/sawane/shiori/pkg/session"
	"github.com/sawane/shiori/pkg/state"
)

// PlayOptions configures an interactive playthrough.
type PlayOptions struct {
	// SaveDir is where save slots live. Empty uses the store default.
	SaveDir string
	// Auto plays without prompts, always taking the first choice.
	Auto bool
	// Logger receives engine logs. Nil discards them.
	Logger *slog.Logger

	// In and Out override stdin/stdout, mainly for tests.
	In  io.Reader
	Out io.Writer
}

// frameDT is the synthetic frame time the player advances with. Text
// reveal is instant in the terminal, so the exact value only matters
// for wait commands.
const frameDT = 0.05

type player struct {
	eng   *shiori.Engine
	saves *session.Manager
	in    *bufio.Reader
	out   io.Writer
	auto  bool
	ctx   context.Context
	shown map[state.Cursor]bool
}

// RunPlay loads a scenario file and plays it in the terminal.
func RunPlay(path string, opts PlayOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	engOpts := []shiori.Option{shiori.WithTextSpeed(0)}
	if opts.Logger != nil {
		engOpts = append(engOpts, shiori.WithLogger(opts.Logger))
	}

	ctx := context.Background()
	eng, err := shiori.Load(ctx, yaml.NewLoader(path), engOpts...)
	if err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	p := &player{
		eng:   eng,
		saves: session.NewManager(file.New(opts.SaveDir)),
		in:    bufio.NewReader(opts.In),
		out:   opts.Out,
		auto:  opts.Auto,
		ctx:   ctx,
		shown: make(map[state.Cursor]bool),
	}

	if !p.auto {
		tui.PrintBanner()
		if title := eng.Document().Title; title != "" {
			fmt.Fprintln(p.out, title)
			fmt.Fprintln(p.out)
		}
	}
	return p.loop()
}

func (p *player) loop() error {
	input := false
	for {
		ev, err := p.eng.Advance(frameDT, input)
		if err != nil {
			return err
		}
		input = false
		p.printEffects(ev.Effects)

		switch ev.Status {
		case state.StatusAwaitingAdvance:
			p.printLine(ev)
			quit, advance, err := p.prompt()
			if err != nil || quit {
				return err
			}
			input = advance

		case state.StatusAwaitingChoice:
			ev, err = p.choose(ev)
			if err != nil {
				return err
			}
			p.printEffects(ev.Effects)
			if ev.Status == state.StatusEnded {
				return p.finish(ev)
			}

		case state.StatusEnded:
			return p.finish(ev)

		case state.StatusRunning:
			// Mid-wait; let the synthetic clock tick.
			if !p.auto {
				time.Sleep(time.Duration(frameDT * float64(time.Second)))
			}
		}
	}
}

func (p *player) printLine(ev state.Event) {
	if ev.Line == nil || p.shown[ev.Cursor] {
		return
	}
	p.shown[ev.Cursor] = true
	if ev.Line.Speaker != "" {
		fmt.Fprintf(p.out, "%s: %s\n", tui.Speaker(ev.Line.Speaker), ev.Line.Visible)
	} else {
		fmt.Fprintln(p.out, ev.Line.Visible)
	}
}

func (p *player) printEffects(effects []state.Effect) {
	if p.auto {
		return
	}
	for _, e := range effects {
		if desc := tui.DescribeEffect(e); desc != "" {
			fmt.Fprintln(p.out, tui.Stage(desc))
		}
	}
}

// prompt waits for the advance key or a player command. It returns
// quit=true when the player leaves, advance=true when the story should
// move on.
func (p *player) prompt() (quit, advance bool, err error) {
	if p.auto {
		return false, true, nil
	}

	for {
		fmt.Fprint(p.out, "> ")
		text, err := p.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return true, false, nil
			}
			return true, false, err
		}

		fields := strings.Fields(text)
		if len(fields) == 0 {
			return false, true, nil
		}

		switch fields[0] {
		case "quit", "q", "exit":
			fmt.Fprintln(p.out, "Bye!")
			return true, false, nil
		case "history", "h":
			p.printHistory()
		case "save":
			p.save(fields)
		case "load":
			if len(fields) < 2 {
				fmt.Fprintln(p.out, "usage: load <slot>")
				continue
			}
			if loaded := p.load(fields[1]); loaded {
				// The restored event re-renders on the next frame.
				return false, false, nil
			}
		case "saves":
			p.printSaves()
		default:
			fmt.Fprintln(p.out, "commands: <enter> advance, save [slot], load <slot>, saves, history, quit")
		}
	}
}

func (p *player) choose(ev state.Event) (state.Event, error) {
	if !p.auto {
		fmt.Fprintln(p.out, tui.Prompt(ev.Choice.Prompt))
		for _, opt := range ev.Choice.Options {
			fmt.Fprintln(p.out, tui.Option(opt.Index, opt.Text))
		}
	}

	for {
		index := ev.Choice.Options[0].Index
		if !p.auto {
			fmt.Fprint(p.out, "? ")
			text, err := p.in.ReadString('\n')
			if err != nil {
				return state.Event{}, err
			}
			index, err = strconv.Atoi(strings.TrimSpace(text))
			if err != nil {
				fmt.Fprintln(p.out, "enter an option number")
				continue
			}
		}

		next, err := p.eng.SelectChoice(index)
		if err != nil {
			if p.auto {
				return state.Event{}, err
			}
			fmt.Fprintf(p.out, "invalid option: %v\n", err)
			continue
		}
		return next, nil
	}
}

func (p *player) finish(ev state.Event) error {
	for _, d := range ev.Diagnostics {
		fmt.Fprintln(p.out, tui.Diagnostic(fmt.Sprintf("content error at %s[%d]: %s", d.Cursor.Scene, d.Cursor.Index, d.Message)))
	}
	if !p.auto {
		fmt.Fprintln(p.out, "\n--- fin ---")
	}
	return nil
}

func (p *player) printHistory() {
	entries := p.eng.History()
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "(no history yet)")
		return
	}
	for _, e := range entries {
		if e.Speaker != "" {
			fmt.Fprintf(p.out, "%s: %s\n", tui.Speaker(e.Speaker), e.Text)
		} else {
			fmt.Fprintln(p.out, e.Text)
		}
	}
}

func (p *player) save(fields []string) {
	slot := session.NewSlotID()
	if len(fields) > 1 {
		slot = fields[1]
	}
	if err := p.saves.Save(p.ctx, slot, p.eng.Snapshot("")); err != nil {
		fmt.Fprintf(p.out, "save failed: %v\n", err)
		return
	}
	fmt.Fprintf(p.out, "saved to %q\n", slot)
}

func (p *player) load(slot string) bool {
	snap, err := p.saves.Load(p.ctx, slot)
	if err != nil {
		fmt.Fprintf(p.out, "load failed: %v\n", err)
		return false
	}
	ev, err := p.eng.Restore(snap)
	if err != nil {
		fmt.Fprintf(p.out, "load failed: %v\n", err)
		return false
	}
	// Allow the restored line to print again.
	p.shown = make(map[state.Cursor]bool)
	p.printEffects(ev.Effects)
	fmt.Fprintf(p.out, "loaded %q\n", slot)
	return true
}

func (p *player) printSaves() {
	infos, err := p.saves.Slots(p.ctx)
	if err != nil {
		fmt.Fprintf(p.out, "listing saves failed: %v\n", err)
		return
	}
	if len(infos) == 0 {
		fmt.Fprintln(p.out, "(no saves)")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(p.out, "%s  %s  %s[%s]\n", info.Slot, info.CreatedAt.Format(time.RFC3339), info.DocumentID, info.Scene)
	}
}
