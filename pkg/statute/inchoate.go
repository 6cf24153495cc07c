package statute

import (
	"regexp"
	"strings"
)

// DefaultPrefix is prepended to a stripped primary citation that carries no
// chapter of its own. In the disposition data a bare section next to an
// inchoate fragment always belongs to the Criminal Code of 1961.
const DefaultPrefix = "720-5/"

// typoAttemptPrefix appears on a single record as "720-5-4(720-5/18-2)".
const typoAttemptPrefix = "720-5-4"

// separatorCutset holds the punctuation left behind after removing an
// inchoate fragment. \x1a is debris from bad CSV escaping in the extract.
const separatorCutset = "/\\,\x1a"

// InchoateStripper separates an attempt, conspiracy or solicitation citation
// from the target offense it was packed together with.
//
// The extract encodes inchoate offenses by concatenating two citations in a
// single field, in either order:
//
//	720-5/8-4 (720-5/18-2)
//	38-8-4(38-18-2)
//	9-1,5/8-4
type InchoateStripper struct {
	leadingILCSPattern  *regexp.Regexp
	trailingILCSPattern *regexp.Regexp
	leadingILRSPattern  *regexp.Regexp
	kindPattern         *regexp.Regexp
}

// NewInchoateStripper creates a stripper with precompiled patterns.
func NewInchoateStripper() *InchoateStripper {
	return &InchoateStripper{
		// 720-5/8-4, (720-5/8-4), 720 5 8-4, 8-2, (8-4)(A)/, ...
		// The leading 720-5 is optional and the whole fragment may be
		// wrapped in parens.
		leadingILCSPattern: regexp.MustCompile(
			`(?i)^(?P<modifier>` +
				`(?:\(?720[- ]+5?[/\\ ]?)?` +
				`\(?8-[124]\)?` +
				`(?:\(?-?A\)?)?` +
				`/*` +
				`\)?)`),
		trailingILCSPattern: regexp.MustCompile(`,?(?P<modifier>5/8-4(?:\(?A\)?)?)$`),
		// The separator is usually / or \, and in one odd case a 9.
		leadingILRSPattern: regexp.MustCompile(`(?i)^(?P<modifier>38-8-4[9/\\]?)`),
		kindPattern:        regexp.MustCompile(`8-([124])`),
	}
}

var defaultStripper = NewInchoateStripper()

// StripModifier separates the inchoate fragment from s using the default
// stripper. See InchoateStripper.Strip.
func StripModifier(s string) (string, *Modifier) {
	return defaultStripper.Strip(s)
}

// Strip returns the primary citation and the inchoate modifier stripped from
// it. Citations without a modifier are returned unchanged with a nil
// modifier.
func (stripper *InchoateStripper) Strip(s string) (string, *Modifier) {
	if strings.HasPrefix(s, typoAttemptPrefix) {
		primary := stripSurroundingParens(strings.ReplaceAll(s, typoAttemptPrefix, ""))
		return primary, &Modifier{Raw: typoAttemptPrefix, Kind: KindAttempt}
	}

	fragment, ok := stripper.findModifier(s)
	if !ok {
		return s, nil
	}

	primary := strings.TrimSpace(strings.ReplaceAll(s, fragment, ""))
	primary = strings.TrimLeft(primary, separatorCutset)
	primary = strings.TrimRight(primary, separatorCutset)
	if strings.HasPrefix(fragment, "38") {
		fragment = trimLastIn(fragment, "9/\\")
	}
	primary = stripSurroundingParens(primary)
	if !hasChapterPrefix(primary) {
		primary = DefaultPrefix + primary
	}
	fragment = strings.Trim(strings.Trim(fragment, "/"), "\\")

	return primary, &Modifier{Raw: fragment, Kind: stripper.kindOf(fragment)}
}

// findModifier tries the leading ILCS, trailing ILCS and leading ILRS
// patterns in order. The first match wins.
func (stripper *InchoateStripper) findModifier(s string) (string, bool) {
	for _, pattern := range []*regexp.Regexp{
		stripper.leadingILCSPattern,
		stripper.trailingILCSPattern,
		stripper.leadingILRSPattern,
	} {
		match := pattern.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		if fragment := match[pattern.SubexpIndex("modifier")]; fragment != "" {
			return fragment, true
		}
	}
	return "", false
}

func (stripper *InchoateStripper) kindOf(fragment string) ModifierKind {
	matches := stripper.kindPattern.FindAllStringSubmatch(fragment, -1)
	if len(matches) == 0 {
		return KindAttempt
	}
	switch matches[len(matches)-1][1] {
	case "1":
		return KindSolicitation
	case "2":
		return KindConspiracy
	default:
		return KindAttempt
	}
}

func hasChapterPrefix(s string) bool {
	return strings.HasPrefix(s, "720") ||
		strings.HasPrefix(s, "38") ||
		strings.HasPrefix(s, "56.5")
}

// stripSurroundingParens removes braces and one level of parens wrapping a
// citation. A paren enclosing a single character, as in "(a)...", is part
// of a subsection and is kept.
func stripSurroundingParens(s string) string {
	s = strings.Trim(s, "{")
	s = strings.Trim(s, "}")
	if len(s) > 2 && s[0] == '(' && s[2] != ')' {
		s = s[1:]
	}
	if len(s) > 2 && s[len(s)-1] == ')' && s[len(s)-3] != '(' {
		s = s[:len(s)-1]
	}
	return s
}

// trimLastIn removes the final byte of s when it is one of chars.
func trimLastIn(s, chars string) string {
	if s != "" && strings.IndexByte(chars, s[len(s)-1]) >= 0 {
		return s[:len(s)-1]
	}
	return s
}
