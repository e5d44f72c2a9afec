package holidays

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEasterSunday(t *testing.T) {
	cases := map[int]time.Time{
		2020: date(2020, time.April, 12),
		2021: date(2021, time.April, 4),
		2024: date(2024, time.March, 31),
		2025: date(2025, time.April, 20),
		2026: date(2026, time.April, 5),
		2027: date(2027, time.March, 28),
		2028: date(2028, time.April, 16),
		2038: date(2038, time.April, 25),
		2285: date(2285, time.March, 22),
	}

	for year, want := range cases {
		assert.Equal(t, want, EasterSunday(year), "year %d", year)
	}
}

func TestBuildBavaria2025(t *testing.T) {
	defs, err := Build(2025, "BY")
	require.NoError(t, err)

	byName := map[string]time.Time{}
	for _, d := range defs {
		assert.Equal(t, 1.0, d.Scope)
		byName[d.Name] = d.Date
	}

	assert.Equal(t, date(2025, time.April, 18), byName["Karfreitag"])
	assert.Equal(t, date(2025, time.April, 21), byName["Ostermontag"])
	assert.Equal(t, date(2025, time.May, 29), byName["Christi Himmelfahrt"])
	assert.Equal(t, date(2025, time.June, 9), byName["Pfingstmontag"])
	assert.Equal(t, date(2025, time.June, 19), byName["Fronleichnam"])
	assert.Contains(t, byName, "Heilige Drei Könige")
	assert.Contains(t, byName, "Allerheiligen")
	assert.NotContains(t, byName, "Reformationstag")
	assert.Len(t, defs, 12)

	for i := 1; i < len(defs); i++ {
		assert.False(t, defs[i].Date.Before(defs[i-1].Date))
	}
}

func TestBuildCorpusChristiOnlyInSubset(t *testing.T) {
	defs, err := Build(2025, "BE")
	require.NoError(t, err)

	names := map[string]bool{}
	for _, d := range defs {
		names[d.Name] = true
	}
	assert.False(t, names["Fronleichnam"])
	assert.True(t, names["Karfreitag"])
	assert.True(t, names["Internationaler Frauentag"])
	assert.Len(t, defs, 10)
}

func TestBuildUnknownRegion(t *testing.T) {
	_, err := Build(2025, "XX")
	require.Error(t, err)
}

func TestParseCalendar(t *testing.T) {
	data := []byte(`{"year":2026,"months":[{"month":12,"days":"24*,25,26,27,31*"},{"month":5,"days":"1,4+"}]}`)

	year, days, err := ParseCalendar(data)
	require.NoError(t, err)
	assert.Equal(t, 2026, year)

	// 26 and 27 December 2026 are Saturday and Sunday
	require.Len(t, days, 5)
	assert.Equal(t, ImportedDay{Date: date(2026, time.December, 24), Scope: 0.5}, days[0])
	assert.Equal(t, ImportedDay{Date: date(2026, time.December, 25), Scope: 1.0}, days[1])
	assert.Equal(t, ImportedDay{Date: date(2026, time.December, 31), Scope: 0.5}, days[2])
	assert.Equal(t, ImportedDay{Date: date(2026, time.May, 4), Scope: 1.0}, days[4])
}

func TestParseCalendarRejectsBadDay(t *testing.T) {
	_, _, err := ParseCalendar([]byte(`{"year":2026,"months":[{"month":2,"days":"30"}]}`))
	require.Error(t, err)

	_, _, err = ParseCalendar([]byte(`{"year":2026,"months":[{"month":2,"days":"x"}]}`))
	require.Error(t, err)
}
