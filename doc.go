/*
Package shiori is a deterministic branching narrative runtime for visual
novel style games and interactive fiction.

It executes scenario documents: graphs of scenes whose commands show
dialogue, present choices, drive stage state (backgrounds, character
sprites, audio) and mutate story flags and variables. The engine owns
logic and state; the host owns rendering, audio and input. This
separation lets the same scenario run under a terminal player, an HTTP
service or a game engine frontend.

# Concept

Playback is frame driven. The host calls Advance with the elapsed time
each frame and receives an Event: the effects to apply, the dialogue
line with its typewriter reveal progress, a pending choice, or the end
of the scenario. Given the same document, the same frame timings and the
same inputs, playback is always reproducible.

# Key Features

  - Deterministic Execution: no wall clock, no randomness; time only
    enters through the host's Advance calls.
  - Hexagonal Architecture: document loading and save persistence are
    ports with file, memory and Redis adapters.
  - Save Anywhere: the full play state serializes to a snapshot and
    restores later, including mid-line reveal progress.
  - Graceful Degradation: broken content (dangling scene references,
    div by zero, unbounded command chains) ends the scenario with a
    diagnostic instead of panicking the host.

# Usage

Load a document, start playback and drive the frame loop:

	package main

	import (
		"context"
		"log"

		"github.com/sawane/shiori"
		"github.com/sawane/shiori/pkg/adapters/yaml"
		"github.com/sawane/shiori/pkg/state"
	)

	func main() {
		ctx := context.Background()
		eng, err := shiori.Load(ctx, yaml.NewLoader("story.yaml"))
		if err != nil {
			log.Fatal(err)
		}
		if err := eng.Start(); err != nil {
			log.Fatal(err)
		}

		for {
			ev, err := eng.Advance(0.016, readInput())
			if err != nil {
				log.Fatal(err)
			}

			render(ev)

			if ev.Status == state.StatusAwaitingChoice {
				ev, _ = eng.SelectChoice(askPlayer(ev.Choice))
				render(ev)
			}
			if ev.Status == state.StatusEnded {
				break
			}
		}
	}
*/
package shiori
