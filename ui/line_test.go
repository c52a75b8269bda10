package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func assertWrap(t *testing.T, input string, width int, expected ...string) {
	t.Helper()
	assert.Equal(t, expected, Wrap(input, width), "%q (width=%d)", input, width)
}

func TestWrap(t *testing.T) {
	assertWrap(t, "", 10, "")
	assertWrap(t, "hello world", 100, "hello world")
	assertWrap(t, "hello world", 11, "hello world")
	assertWrap(t, "hello world", 10, "hello", "world")
	assertWrap(t, "hello   world", 10, "hello", "world")
	assertWrap(t, "  leading", 10, "leading")
	assertWrap(t, "lorem ipsum dolor shit amet", 12, "lorem ipsum", "dolor shit", "amet")
	assertWrap(t, "abcdefghijkl", 5, "abcde", "fghij", "kl")
	assertWrap(t, "ab abcdefghijkl", 5, "ab", "abcde", "fghij", "kl")
	assertWrap(t, "日本語", 4, "日本", "語")
}

func TestLineRender(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	line := Line{At: at, Head: HeadInfo, Body: "hello world"}
	assert.Equal(t, []string{"12:30:00 -- hello world"}, line.Render(0))
	assert.Equal(t, []string{"12:30:00 -- hello world"}, line.Render(80))
	assert.Equal(t, []string{
		"12:30:00 -- hello",
		"            world",
	}, line.Render(22))

	// too narrow to wrap anything sensibly.
	assert.Equal(t, []string{"12:30:00 -- hello world"}, line.Render(15))

	line = Line{At: at, Body: "x"}
	assert.Equal(t, []string{"12:30:00    x"}, line.Render(80))
}
