package runtime

// reveal drives the typewriter effect for one dialogue line. It is fed
// the host's delta time; speed is in runes per second. A speed of zero
// or less reveals the whole line instantly.
type reveal struct {
	text    []rune
	visible int
	elapsed float64
	delay   float64
}

func newReveal(text string, runesPerSecond float64) *reveal {
	r := &reveal{text: []rune(text)}
	if runesPerSecond > 0 {
		r.delay = 1.0 / runesPerSecond
	} else {
		r.visible = len(r.text)
	}
	return r
}

// advance accumulates dt and reveals as many runes as have become due.
func (r *reveal) advance(dt float64) {
	if r.complete() || r.delay <= 0 {
		return
	}
	r.elapsed += dt
	for r.elapsed >= r.delay && !r.complete() {
		r.elapsed -= r.delay
		r.visible++
	}
}

// skip reveals the whole line at once.
func (r *reveal) skip() {
	r.visible = len(r.text)
	r.elapsed = 0
}

func (r *reveal) complete() bool {
	return r.visible >= len(r.text)
}

// visibleText returns the revealed prefix.
func (r *reveal) visibleText() string {
	if r.complete() {
		return string(r.text)
	}
	return string(r.text[:r.visible])
}

// restoreAt positions the reveal mid-line, used when resuming from a
// snapshot.
func (r *reveal) restoreAt(visible int, elapsed float64) {
	if visible > len(r.text) {
		visible = len(r.text)
	}
	if visible < 0 {
		visible = 0
	}
	r.visible = visible
	r.elapsed = elapsed
}
