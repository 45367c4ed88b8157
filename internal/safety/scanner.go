package safety

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Category names the pattern group that flagged a piece of text.
type Category string

const (
	CategorySelfHarm Category = "self_harm"
	CategoryViolence Category = "violence"
	CategorySexual   Category = "sexual"
	CategoryIllegal  Category = "illegal"
	CategoryCustom   Category = "custom"
)

// Match describes the first harmful term found in a text.
type Match struct {
	Category Category
	Term     string
}

type patternGroup struct {
	category Category
	rx       *regexp.Regexp
}

// Coarse lexical filter. "attack" in a chess opening is flagged too.
var defaultGroups = []patternGroup{
	{CategorySelfHarm, regexp.MustCompile(`(?i)\b(suicide|self[-\s]?harm|cutting|self[-\s]?injury|ending[-\s]?life)\b`)},
	{CategoryViolence, regexp.MustCompile(`(?i)\b(kill|murder|assassinate|violence|weapon|bomb|attack|hurt|harm)\b`)},
	{CategorySexual, regexp.MustCompile(`(?i)\b(sexual|explicit|porn|nsfw|adult[-\s]?content)\b`)},
	{CategoryIllegal, regexp.MustCompile(`(?i)\b(drug[-\s]?dealing|illegal[-\s]?drugs|hacking|fraud|scam)\b`)},
}

// Scanner flags harmful text. It is immutable after construction and safe for
// concurrent use.
type Scanner struct {
	groups  []patternGroup
	matcher *goahocorasick.Machine
}

var defaultScanner = &Scanner{groups: defaultGroups}

// Default returns a scanner using only the built-in pattern groups.
func Default() *Scanner {
	return defaultScanner
}

// NewScanner builds a scanner from the built-in pattern groups plus operator
// supplied terms. Extra terms are matched case-insensitively on word boundaries.
func NewScanner(extraTerms []string) (*Scanner, error) {
	s := &Scanner{groups: defaultGroups}

	terms := lo.Uniq(lo.FilterMap(extraTerms, func(t string, _ int) (string, bool) {
		t = strings.ToLower(strings.TrimSpace(t))
		return t, t != ""
	}))
	if len(terms) == 0 {
		return s, nil
	}

	patterns := make([][]rune, len(terms))
	for i, t := range terms {
		patterns[i] = []rune(t)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build term matcher: %w", err)
	}
	s.matcher = m
	return s, nil
}

// Harmful reports whether text matches any harmful pattern.
func (s *Scanner) Harmful(text string) bool {
	_, ok := s.Scan(text)
	return ok
}

// Scan returns the first match in text, checking the built-in groups before
// the extra terms.
func (s *Scanner) Scan(text string) (Match, bool) {
	for _, g := range s.groups {
		if term := g.rx.FindString(text); term != "" {
			return Match{Category: g.category, Term: strings.ToLower(term)}, true
		}
	}
	if s.matcher == nil || text == "" {
		return Match{}, false
	}

	content := []rune(strings.ToLower(text))
	for _, hit := range s.matcher.MultiPatternSearch(content, false) {
		start, end := hit.Pos, hit.Pos+len(hit.Word)
		if start < 0 || end > len(content) {
			continue
		}
		if isWordRune(content, start-1) || isWordRune(content, end) {
			continue
		}
		return Match{Category: CategoryCustom, Term: string(hit.Word)}, true
	}
	return Match{}, false
}

func isWordRune(rs []rune, i int) bool {
	if i < 0 || i >= len(rs) {
		return false
	}
	return unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i])
}
