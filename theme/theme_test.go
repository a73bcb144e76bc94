package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gpl = `GIMP Palette
Name: ramp
Columns: 2
# black to orange
  0   0   0	black
200 100  50	orange
bad line
`

func TestReadGPL(t *testing.T) {
	p, err := ReadGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, "ramp", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {200, 100, 50}}, p.Colors)

	_, err = ReadGPL(strings.NewReader("GIMP Palette\nName: empty\n"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}

	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{200, 100, 50}, p.Lookup(1.5))
	assert.Equal(t, RGB{100, 50, 25}, p.Lookup(0.5))

	single := &Palette{Colors: []RGB{{1, 2, 3}}}
	assert.Equal(t, RGB{1, 2, 3}, single.Lookup(0.7))
}

func TestLoadOrDefault(t *testing.T) {
	assert.Equal(t, "plasma", LoadOrDefault("").Name)
	assert.Equal(t, "plasma", LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl")).Name)

	path := filepath.Join(t.TempDir(), "ramp.gpl")
	require.NoError(t, os.WriteFile(path, []byte(gpl), 0644))
	assert.Equal(t, "ramp", LoadOrDefault(path).Name)
}

func TestThemeColors(t *testing.T) {
	th := New(&Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}})

	assert.Equal(t, lipgloss.Color("#000000"), th.BG())
	assert.Equal(t, lipgloss.Color("#c86432"), th.Success())
	assert.Equal(t, lipgloss.Color("#643219"), th.Accent())
	assert.Equal(t, '│', th.Symbols.BarLine)
}
