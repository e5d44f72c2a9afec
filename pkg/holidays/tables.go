package holidays

import (
	"fmt"
	"sort"
	"time"
)

// Regions - коды федеральных земель
var Regions = []string{
	"BW", "BY", "BE", "BB", "HB", "HH", "HE", "MV",
	"NI", "NW", "RP", "SL", "SN", "ST", "SH", "TH",
}

type regionSet map[string]struct{}

func newRegionSet(codes ...string) regionSet {
	s := make(regionSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s regionSet) has(region string) bool {
	if s == nil {
		return true
	}
	_, ok := s[region]
	return ok
}

var knownRegions = newRegionSet(Regions...)

func IsKnownRegion(region string) bool {
	return knownRegions.has(region)
}

// Definition - сгенерированный праздник до сохранения в БД
type Definition struct {
	Date  time.Time
	Name  string
	Scope float64
}

type fixedHoliday struct {
	month   time.Month
	day     int
	name    string
	regions regionSet // nil - для всех земель
}

type easterHoliday struct {
	offset  int
	name    string
	regions regionSet
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Neujahr", nil},
	{time.January, 6, "Heilige Drei Könige", newRegionSet("BW", "BY", "ST")},
	{time.March, 8, "Internationaler Frauentag", newRegionSet("BE", "MV")},
	{time.May, 1, "Tag der Arbeit", nil},
	{time.August, 15, "Mariä Himmelfahrt", newRegionSet("SL")},
	{time.September, 20, "Weltkindertag", newRegionSet("TH")},
	{time.October, 3, "Tag der Deutschen Einheit", nil},
	{time.October, 31, "Reformationstag", newRegionSet("BB", "HB", "HH", "MV", "NI", "SN", "ST", "SH", "TH")},
	{time.November, 1, "Allerheiligen", newRegionSet("BW", "BY", "NW", "RP", "SL")},
	{time.December, 25, "1. Weihnachtstag", nil},
	{time.December, 26, "2. Weihnachtstag", nil},
}

var easterHolidays = []easterHoliday{
	{-2, "Karfreitag", nil},
	{1, "Ostermontag", nil},
	{39, "Christi Himmelfahrt", nil},
	{50, "Pfingstmontag", nil},
	{60, "Fronleichnam", newRegionSet("BW", "BY", "HE", "NW", "RP", "SL")},
}

// Build возвращает все праздники года для земли, отсортированные по дате.
// Сгенерированные праздники всегда полные (scope 1.0).
func Build(year int, region string) ([]Definition, error) {
	if !IsKnownRegion(region) {
		return nil, fmt.Errorf("unknown region %q", region)
	}

	var defs []Definition
	for _, h := range fixedHolidays {
		if !h.regions.has(region) {
			continue
		}
		defs = append(defs, Definition{
			Date:  time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC),
			Name:  h.name,
			Scope: 1.0,
		})
	}

	easter := EasterSunday(year)
	for _, h := range easterHolidays {
		if !h.regions.has(region) {
			continue
		}
		defs = append(defs, Definition{
			Date:  easter.AddDate(0, 0, h.offset),
			Name:  h.name,
			Scope: 1.0,
		})
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Date.Before(defs[j].Date) })
	return defs, nil
}
