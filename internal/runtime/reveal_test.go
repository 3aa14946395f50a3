package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRevealAdvance(t *testing.T) {
	r := newReveal("Hello", 10) // 100ms per rune

	assert.False(t, r.complete())
	assert.Equal(t, "", r.visibleText())

	r.advance(0.1)
	assert.Equal(t, "H", r.visibleText())

	r.advance(0.4)
	assert.Equal(t, "Hello", r.visibleText())
	assert.True(t, r.complete())
}

func TestRevealPartialFrames(t *testing.T) {
	r := newReveal("12345", 10)

	r.advance(0.25)
	assert.Equal(t, "12", r.visibleText())

	// The 50ms remainder carries into the next frame.
	r.advance(0.25)
	assert.Equal(t, "12345", r.visibleText())
	assert.True(t, r.complete())
}

func TestRevealSkip(t *testing.T) {
	r := newReveal("Long line of text", 10)
	r.skip()
	assert.True(t, r.complete())
	assert.Equal(t, "Long line of text", r.visibleText())

	// Further frames change nothing.
	r.advance(1)
	assert.Equal(t, "Long line of text", r.visibleText())
}

func TestRevealInstantWhenSpeedZero(t *testing.T) {
	r := newReveal("instant", 0)
	assert.True(t, r.complete())
	assert.Equal(t, "instant", r.visibleText())
}

func TestRevealEmptyText(t *testing.T) {
	r := newReveal("", 10)
	assert.True(t, r.complete())
}

func TestRevealUnicode(t *testing.T) {
	r := newReveal("こんにちは", 10)
	r.advance(0.1)
	assert.Equal(t, "こ", r.visibleText())
	r.advance(0.4)
	assert.True(t, r.complete())
	assert.Equal(t, "こんにちは", r.visibleText())
}
