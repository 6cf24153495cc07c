package statute

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/coolbeans/convictions/pkg/ilcs"
	"github.com/coolbeans/convictions/pkg/iucr"
)

// Crosswalk maps ILRS citations to ILCS sections. *ilcs.Crosswalk
// implements it.
type Crosswalk interface {
	LookupByILRS(chapter, paragraph string) ([]ilcs.Section, bool)
}

// OffenseTable maps ILCS citations to IUCR offenses. *iucr.Table
// implements it.
type OffenseTable interface {
	LookupByILCS(chapter, actPrefix, section string, subsections ...string) ([]iucr.Offense, bool)
}

// primaryParagraphPattern extracts the primary component of an ILRS
// paragraph: digits, an optional A, and an optional -digits suffix.
var primaryParagraphPattern = regexp.MustCompile(`^\d+A?(?:-\d+)?`)

// trailingLetterPattern splits a section ending in a letter that could be
// read as a subsection marker, e.g. "401D" or "401-D".
var trailingLetterPattern = regexp.MustCompile(`^(.*\d)-?([A-Za-z])$`)

// ResolveLegacy maps a parsed ILRS citation to its ILCS equivalent. When the
// paragraph is not in the crosswalk, the lookup is retried once with the
// paragraph truncated to its primary component.
//
// It panics if the crosswalk yields more than one ILCS section for a
// paragraph. The crosswalk is one-to-one and anything else is a bug in the
// table.
func ResolveLegacy(crosswalk Crosswalk, parsed Parsed, rawStatute string) (Citation, error) {
	sections, ok := crosswalk.LookupByILRS(parsed.Chapter, parsed.Paragraph)
	if !ok {
		primaryParagraph := primaryParagraphPattern.FindString(parsed.Paragraph)
		if primaryParagraph == "" {
			return Citation{}, &ILCSLookupError{Chapter: parsed.Chapter, Paragraph: parsed.Paragraph, RawStatute: rawStatute}
		}
		sections, ok = crosswalk.LookupByILRS(parsed.Chapter, primaryParagraph)
		if !ok {
			return Citation{}, &ILCSLookupError{Chapter: parsed.Chapter, Paragraph: parsed.Paragraph, RawStatute: rawStatute}
		}
	}
	if len(sections) != 1 {
		panic(fmt.Sprintf("statute: %d ILCS sections for raw statute '%s' (chapter %s, paragraph %s)",
			len(sections), rawStatute, parsed.Chapter, parsed.Paragraph))
	}

	section := sections[0]
	return Citation{
		Chapter:     section.Chapter,
		ActPrefix:   section.ActPrefix,
		Section:     section.Section,
		Subsections: append([]string{}, parsed.Subsections...),
	}, nil
}

// LookupOffenses finds the offenses for a resolved citation. On a miss, a
// section ending in a letter ("401D") is retried once with the letter moved
// in front of the subsections ("401", "d", ...).
func LookupOffenses(table OffenseTable, citation Citation) ([]iucr.Offense, bool) {
	offenses, ok := table.LookupByILCS(citation.Chapter, citation.ActPrefix, citation.Section, citation.Subsections...)
	if ok {
		return offenses, true
	}

	match := trailingLetterPattern.FindStringSubmatch(citation.Section)
	if match == nil {
		return nil, false
	}
	subsections := append([]string{strings.ToLower(match[2])}, citation.Subsections...)
	return table.LookupByILCS(citation.Chapter, citation.ActPrefix, match[1], subsections...)
}
