package statute

import (
	"regexp"
	"strings"
)

// Parser decomposes a citation string written in one numbering scheme.
// Parse reports false when the string is not in the parser's scheme; that
// is not an error, it tells the caller to try the next parser.
type Parser interface {
	// Name returns a short identifier for the parser.
	Name() string

	// Scheme returns the numbering scheme the parser understands.
	Scheme() Scheme

	// Parse decomposes s into chapter, act/paragraph, section and
	// subsection tokens.
	Parse(s string) (Parsed, bool)
}

// ILCSChapters are the Compiled Statutes chapters that appear in the
// disposition data.
var ILCSChapters = []string{
	"10", "15", "35", "50", "205", "225", "305", "415", "430", "510",
	"625", "710", "720", "730", "740", "750", "760", "765", "815", "820",
}

// ILRSChapters are the Revised Statutes chapters that appear in the
// disposition data.
var ILRSChapters = []string{
	"23", "38", "42", "56.5", "95.5", "121.5", "124", "134",
}

var subsectionSplitPattern = regexp.MustCompile(`[-(\s]`)

// ILCSParser parses Compiled Statutes citations such as "720-5/16A-3(a)".
type ILCSParser struct {
	citationPattern *regexp.Regexp
}

// NewILCSParser creates an ILCS parser restricted to ILCSChapters.
func NewILCSParser() *ILCSParser {
	return &ILCSParser{
		citationPattern: regexp.MustCompile(
			`^(?P<chapter>` + alternation(ILCSChapters) + `)` +
				`[- ]` +
				`(?P<act_prefix>\d+)` +
				`[/\\]` +
				`(?P<section>[\da-zA-Z.]+(?:-[\da-zA-Z.]+)?)` +
				`(?P<subsection>.*)`),
	}
}

// Name returns the parser identifier.
func (parser *ILCSParser) Name() string { return "ilcs" }

// Scheme returns SchemeILCS.
func (parser *ILCSParser) Scheme() Scheme { return SchemeILCS }

// Parse decomposes an ILCS citation.
func (parser *ILCSParser) Parse(s string) (Parsed, bool) {
	match := parser.citationPattern.FindStringSubmatch(s)
	if match == nil {
		return Parsed{}, false
	}
	pattern := parser.citationPattern
	return Parsed{
		Scheme:      SchemeILCS,
		Chapter:     match[pattern.SubexpIndex("chapter")],
		ActPrefix:   match[pattern.SubexpIndex("act_prefix")],
		Section:     match[pattern.SubexpIndex("section")],
		Subsections: ParseSubsections(match[pattern.SubexpIndex("subsection")]),
	}, true
}

// ILRSParser parses Revised Statutes citations such as "38-9-1" or
// "56.5 704-D".
type ILRSParser struct {
	citationPattern *regexp.Regexp
}

// NewILRSParser creates an ILRS parser restricted to ILRSChapters.
func NewILRSParser() *ILRSParser {
	return &ILRSParser{
		citationPattern: regexp.MustCompile(
			`^(?P<chapter>` + alternation(ILRSChapters) + `)` +
				`[-. ]?\s*` +
				`(?P<paragraph>[\da-zA-Z.]+(?:-\d+[\da-zA-Z.]*)?)` +
				`(?P<subsection>.*)`),
	}
}

// Name returns the parser identifier.
func (parser *ILRSParser) Name() string { return "ilrs" }

// Scheme returns SchemeILRS.
func (parser *ILRSParser) Scheme() Scheme { return SchemeILRS }

// Parse decomposes an ILRS citation.
func (parser *ILRSParser) Parse(s string) (Parsed, bool) {
	match := parser.citationPattern.FindStringSubmatch(s)
	if match == nil {
		return Parsed{}, false
	}
	pattern := parser.citationPattern
	return Parsed{
		Scheme:      SchemeILRS,
		Chapter:     match[pattern.SubexpIndex("chapter")],
		Paragraph:   match[pattern.SubexpIndex("paragraph")],
		Subsections: ParseSubsections(match[pattern.SubexpIndex("subsection")]),
	}, true
}

// ParseSubsections splits the subsection tail of a citation into one
// lower-cased token per level.
//
//	ParseSubsections("(c)(2)")  // ["c", "2"]
//	ParseSubsections("-D")      // ["d"]
//
// Returns an empty slice (not nil) when there are no tokens.
func ParseSubsections(s string) []string {
	subsections := []string{}
	for _, bit := range subsectionSplitPattern.Split(s, -1) {
		bit = strings.TrimSuffix(bit, ")")
		if bit == "" {
			continue
		}
		subsections = append(subsections, strings.ToLower(bit))
	}
	return subsections
}

func alternation(values []string) string {
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = regexp.QuoteMeta(value)
	}
	return strings.Join(quoted, "|")
}
