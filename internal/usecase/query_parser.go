package usecase

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/riskibarqy/league-stats/internal/domain/match"
)

var (
	yearPattern       = regexp.MustCompile(`\b(20\d{2})\b`)
	seasonPairPattern = regexp.MustCompile(`\b(\d{2})/(\d{2})\b`)
	wordPattern       = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// seasonKeywords are checked in order; longer phrases come before the
// phrases they contain.
var seasonKeywords = []struct {
	phrase string
	back   int
}{
	{phrase: "season before last", back: 2},
	{phrase: "позапрошлом сезоне", back: 2},
	{phrase: "last season", back: 1},
	{phrase: "previous season", back: 1},
	{phrase: "прошлом сезоне", back: 1},
	{phrase: "this season", back: 0},
	{phrase: "current season", back: 0},
	{phrase: "этом сезоне", back: 0},
	{phrase: "текущем сезоне", back: 0},
	{phrase: "сейчас", back: 0},
}

var (
	tableKeywords = []string{"standings", "table", "ranking", "таблица", "таблицу", "распределение"}
	topKeywords   = []string{"top", "leaders", "best teams", "топ", "лидеры", "лучшие команды", "первые места"}
	noTableHints  = []string{"no table", "without table", "не показывай таблицу"}
)

// ParsedQuery is the best-effort reading of a free text question.
type ParsedQuery struct {
	Text        string
	Teams       []string
	Season      match.Season
	SeasonFound bool
	ShowTable   bool
}

// QueryParser extracts known teams and a season from free text by plain
// string matching.
type QueryParser struct {
	teams   []string
	seasons []match.Season
	aliases map[string]string
}

// NewQueryParser builds a parser over the teams and seasons of log. aliases
// maps alternative names to canonical team ids; unknown targets are ignored.
func NewQueryParser(log *match.Log, aliases map[string]string) *QueryParser {
	p := &QueryParser{
		teams:   log.Teams(),
		seasons: log.Seasons(),
		aliases: make(map[string]string, len(aliases)),
	}
	for alias, team := range aliases {
		id, ok := log.ResolveTeam(team)
		key := match.FoldTeam(alias)
		if !ok || key == "" {
			continue
		}
		p.aliases[key] = id
	}
	return p
}

func (p *QueryParser) Parse(text string) ParsedQuery {
	lower := strings.ToLower(match.NormalizeTeam(text))
	out := ParsedQuery{
		Text:      text,
		Teams:     p.extractTeams(lower),
		Season:    match.AllSeasons,
		ShowTable: wantsTable(lower),
	}
	if season, ok := p.extractSeason(lower); ok {
		out.Season = season
		out.SeasonFound = true
	}
	return out
}

// extractTeams returns matched teams ordered by where they first appear.
func (p *QueryParser) extractTeams(lower string) []string {
	words := make(map[string]int)
	for _, loc := range wordPattern.FindAllStringIndex(lower, -1) {
		word := lower[loc[0]:loc[1]]
		if _, ok := words[word]; !ok {
			words[word] = loc[0]
		}
	}

	positions := make(map[string]int)
	found := func(team string, pos int) {
		if current, ok := positions[team]; !ok || pos < current {
			positions[team] = pos
		}
	}

	for _, team := range p.teams {
		name := strings.ToLower(team)
		if idx := indexWord(lower, name); idx >= 0 {
			found(team, idx)
			continue
		}
		if len([]rune(name)) <= 3 {
			continue
		}
		for _, part := range strings.Fields(name) {
			if len([]rune(part)) < 3 {
				continue
			}
			if pos, ok := words[part]; ok {
				found(team, pos)
			}
		}
	}
	for alias, team := range p.aliases {
		if idx := indexWord(lower, alias); idx >= 0 {
			found(team, idx)
		}
	}

	teams := make([]string, 0, len(positions))
	for team := range positions {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool {
		if positions[teams[i]] != positions[teams[j]] {
			return positions[teams[i]] < positions[teams[j]]
		}
		return teams[i] < teams[j]
	})
	return teams
}

func (p *QueryParser) extractSeason(lower string) (match.Season, bool) {
	if m := yearPattern.FindStringSubmatch(lower); m != nil {
		year, _ := strconv.Atoi(m[1])
		return match.SeasonStartingIn(year), true
	}
	if m := seasonPairPattern.FindStringSubmatch(lower); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if (start+1)%100 == end {
			return match.Season(start*100 + end), true
		}
	}

	for _, keyword := range seasonKeywords {
		if !strings.Contains(lower, keyword.phrase) {
			continue
		}
		idx := len(p.seasons) - 1 - keyword.back
		if idx < 0 {
			return 0, false
		}
		return p.seasons[idx], true
	}
	return 0, false
}

func wantsTable(lower string) bool {
	if containsAny(lower, noTableHints) {
		return false
	}
	return containsAny(lower, tableKeywords) || containsAny(lower, topKeywords)
}

// indexWord finds phrase in text where it is not part of a longer word.
func indexWord(text, phrase string) int {
	if phrase == "" {
		return -1
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return -1
		}
		start := offset + idx
		end := start + len(phrase)
		if !isWordRune(lastRune(text[:start])) && !isWordRune(firstRune(text[end:])) {
			return start
		}
		offset = start + 1
	}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
