package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testEpochs() []Epoch {
	return []Epoch{
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHZ", Start: day(2010, 3, 2), Open: true},
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHN", Start: day(2010, 3, 2), End: day(2015, 6, 30)},
		{Network: "HL", Station: "APE", Location: "", Channel: "BHZ", Start: day(2005, 1, 1), End: day(2012, 12, 31)},
		{Network: "HT", Station: "LKD2", Location: "00", Channel: "EHZ", Start: day(2018, 9, 1), Open: true},
	}
}

func TestBuildIndexLookup(t *testing.T) {
	idx := BuildIndex(testEpochs())

	epochs, ok := idx.Lookup("HL", "ATH", "00", "HHZ")
	require.True(t, ok)
	require.Len(t, epochs, 1)
	assert.True(t, epochs[0].Open)

	_, ok = idx.Lookup("HL", "ATH", "10", "HHZ")
	assert.False(t, ok, "unknown location must not resolve")

	_, ok = idx.Lookup("XX", "ATH", "00", "HHZ")
	assert.False(t, ok)

	assert.Equal(t, 4, idx.Len())
}

func TestBuildIndexMultipleEpochsSameChannel(t *testing.T) {
	epochs := []Epoch{
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHZ", Start: day(2000, 1, 1), End: day(2005, 1, 1)},
		{Network: "HL", Station: "ATH", Location: "00", Channel: "HHZ", Start: day(2010, 3, 2), Open: true},
	}
	idx := BuildIndex(epochs)

	got, ok := idx.Lookup("HL", "ATH", "00", "HHZ")
	require.True(t, ok)
	assert.Len(t, got, 2)
}

func TestIndexPruningHelpers(t *testing.T) {
	idx := BuildIndex(testEpochs())

	assert.Contains(t, idx.Networks(), "HL")
	assert.Contains(t, idx.Networks(), "HT")
	assert.NotContains(t, idx.Networks(), "GE")

	assert.True(t, idx.HasStation("HL", "ATH"))
	assert.True(t, idx.HasStation("HL", "APE"))
	assert.False(t, idx.HasStation("HL", "LKD2"), "station known only under HT")
	assert.False(t, idx.HasStation("HT", "ATH"))

	// Channel directory names may carry a compound label such as HHZ.D.
	assert.True(t, idx.ChannelKnown("HL", "ATH", "HHZ.D"))
	assert.True(t, idx.ChannelKnown("HL", "ATH", "HHN"))
	assert.False(t, idx.ChannelKnown("HL", "ATH", "BHZ.D"), "channel known only at APE")
}

func TestEpochContains(t *testing.T) {
	closed := Epoch{Start: day(2010, 3, 2), End: day(2015, 6, 30)}

	// Bounds are inclusive.
	assert.True(t, closed.Contains(day(2010, 3, 2)))
	assert.True(t, closed.Contains(day(2015, 6, 30)))
	assert.True(t, closed.Contains(day(2012, 1, 1)))

	// One day outside either bound is no match.
	assert.False(t, closed.Contains(day(2010, 3, 1)))
	assert.False(t, closed.Contains(day(2015, 7, 1)))

	open := Epoch{Start: day(2010, 3, 2), Open: true}
	assert.True(t, open.Contains(day(2015, 4, 10)))
	assert.True(t, open.Contains(day(2199, 12, 31)))
	assert.False(t, open.Contains(day(2010, 3, 1)))
}
