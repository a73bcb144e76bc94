package timeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistUniformRoundTrip(t *testing.T) {
	tl, _ := newTestTimeline(4)
	tl.SetFirstMeasure(2)
	require.NoError(t, tl.SetSelectedTimeSignature(7, 8))

	var buf bytes.Buffer
	require.NoError(t, tl.WriteXML(&buf))
	assert.Contains(t, buf.String(), `<measure firstMeasure="2" denom="8" num="7"></measure>`)

	other, _ := newTestTimeline(4)
	require.NoError(t, other.ReadXML(&buf))
	assert.True(t, other.IsUniformLength())
	assert.Equal(t, 2, other.FirstMeasure())
	assert.Equal(t, 7, other.ActiveNumerator(0))
	assert.Equal(t, 8, other.ActiveDenominator(0))
}

func TestPersistVariableRoundTrip(t *testing.T) {
	tl, _ := variableTimeline(t)

	var buf bytes.Buffer
	require.NoError(t, tl.WriteXML(&buf))
	assert.Equal(t, 3, strings.Count(buf.String(), "<timesig "))

	other, _ := newTestTimeline(12)
	require.NoError(t, other.ReadXML(&buf))
	assert.True(t, other.IsVariableLengthMode())
	assert.Equal(t, measuresOf(tl), measuresOf(other))
	assert.Equal(t, tl.TotalTicks(), other.TotalTicks())
	assertInvariants(t, other)
}

func TestRestoreDefaultsBadValues(t *testing.T) {
	tl, _ := variableTimeline(t)

	doc := `<measure firstMeasure="-3" num="99" denom="6">
		<timesig num="3" denom="4" measure="2"/>
		<timesig num="3" denom="5" measure="4"/>
		<timesig num="3" measure="6"/>
		<timesig num="5" denom="4" measure="-1"/>
	</measure>`
	require.NoError(t, tl.ReadXML(strings.NewReader(doc)))

	assert.Equal(t, 0, tl.FirstMeasure())
	assert.True(t, tl.IsVariableLengthMode())
	got := tl.TimeSignatures()
	require.Len(t, got, 2)
	assert.Equal(t, [3]int{0, 4, 4}, [3]int{got[0].Measure, got[0].Num, got[0].Denom})
	assert.Equal(t, [3]int{2, 3, 4}, [3]int{got[1].Measure, got[1].Num, got[1].Denom})
	assert.Equal(t, 0, tl.SelectedTimeSignature())
	assert.False(t, tl.Importing())
}

func TestRestoreMissingAttributes(t *testing.T) {
	tl, _ := variableTimeline(t)

	require.NoError(t, tl.ReadXML(strings.NewReader(`<measure/>`)))
	assert.True(t, tl.IsUniformLength())
	assert.Equal(t, 0, tl.FirstMeasure())
	assert.Equal(t, 4, tl.ActiveNumerator(0))
}

func TestReadXMLMalformed(t *testing.T) {
	tl, _ := newTestTimeline(4)
	assert.Error(t, tl.ReadXML(strings.NewReader(`<measure`)))
}
