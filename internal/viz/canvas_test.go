package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestCanvas_Set(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0, "")
	c.Set(3, 3, "")
	c.Set(-1, 0, "")
	c.Set(4, 0, "")

	assert.Equal(t, rune(0x2801), c.Grid[0][0])
	assert.Equal(t, rune(0x2880), c.Grid[0][1])
	assert.Equal(t, 2, c.Lit())
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 5)
	c.DrawLine(0, 0, 19, 0, "")
	assert.Equal(t, 20, c.Lit())

	c.Clear()
	c.DrawLine(0, 0, 5, 5, "")
	assert.Equal(t, 6, c.Lit())
}

func TestCanvas_StringColours(t *testing.T) {
	c := NewCanvas(3, 1)
	red := lipgloss.Color("#ff0000")
	c.Set(0, 0, red)
	c.Set(2, 0, red)

	out := c.String()
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 3, len([]rune(stripANSI(out)))-1)
}

func stripANSI(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case r == 0x1b:
			skip = true
		case skip && r == 'm':
			skip = false
		case !skip:
			b.WriteRune(r)
		}
	}
	return b.String()
}
