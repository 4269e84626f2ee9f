package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatStampMillis(t *testing.T) {
	ts := time.Date(2026, 1, 6, 9, 30, 5, 123456789, time.UTC)
	require.Equal(t, "2026-01-06 09:30:05.123", FormatStamp(ts))
}

func TestMidnightOf(t *testing.T) {
	loc, err := LoadZone("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2026, 1, 6, 23, 59, 59, 0, loc)
	m := MidnightOf(ts)
	require.Equal(t, time.Date(2026, 1, 6, 0, 0, 0, 0, loc), m)
}

func TestNextMidnightCrossesMonth(t *testing.T) {
	loc, err := LoadZone("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2026, 1, 31, 18, 0, 0, 0, loc)
	next := NextMidnight(ts)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), next)
}

func TestLoadZoneDefault(t *testing.T) {
	loc, err := LoadZone("")
	require.NoError(t, err)
	require.Equal(t, "America/New_York", loc.String())
}

func TestLoadZoneInvalid(t *testing.T) {
	_, err := LoadZone("Nowhere/Invalid")
	require.Error(t, err)
}
