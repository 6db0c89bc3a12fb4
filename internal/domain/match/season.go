package match

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Season is a league year keyed by the last two digits of its start and end
// years: 2021/22 is 2122. AllSeasons selects the whole log.
type Season int

const AllSeasons Season = -1

const allSeasonsKey = "all"

var seasonPattern = regexp.MustCompile(`^\d{4}$`)

// ParseSeason parses a stored season id. Only four digit keys are valid.
func ParseSeason(raw string) (Season, bool) {
	value := strings.TrimSpace(raw)
	if !seasonPattern.MatchString(value) {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return Season(n), true
}

// ParseScope parses a season selector: empty or "all" is unrestricted.
func ParseScope(raw string) (Season, error) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, allSeasonsKey) {
		return AllSeasons, nil
	}
	season, ok := ParseSeason(value)
	if !ok {
		return 0, fmt.Errorf("invalid season %q: expected %q or a four digit key", raw, allSeasonsKey)
	}
	return season, nil
}

// SeasonStartingIn returns the season that begins in the given calendar year.
func SeasonStartingIn(year int) Season {
	return Season((year%100)*100 + (year+1)%100)
}

func (s Season) IsAll() bool {
	return s == AllSeasons
}

// Contains reports whether a match played in season m falls into scope s.
func (s Season) Contains(m Season) bool {
	return s.IsAll() || s == m
}

func (s Season) String() string {
	if s.IsAll() {
		return allSeasonsKey
	}
	return fmt.Sprintf("%04d", int(s))
}

// Label renders the season for people, e.g. "2021/22".
func (s Season) Label() string {
	if s.IsAll() {
		return "all seasons"
	}
	start := int(s) / 100
	end := int(s) % 100
	return fmt.Sprintf("20%02d/%02d", start, end)
}
