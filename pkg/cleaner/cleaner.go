// Package cleaner normalizes the free-text city/state field of the court
// extract into separate city and state values.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuationPattern = regexp.MustCompile(`[,.]+`)
	chicagoPattern     = regexp.MustCompile(`^CHI?C?A?GO?$`)
)

// cityAbbreviations expands the abbreviations clerks used in city names.
var cityAbbreviations = map[string]string{
	"CHGO":  "CHICAGO",
	"CLB":   "CLUB",
	"CNTRY": "COUNTRY",
	"HL":    "HILLS",
	"HGTS":  "HEIGHTS",
	"HTS":   "HEIGHTS",
	"PK":    "PARK",
	"VILL":  "VILLAGE",
	"CTY":   "CITY",
}

// SplitCityState separates a combined city/state string such as
// "CHICAGO,ILL." or "CALUMET CITYIL" into its city and state. The state is
// returned as written; CleanCityState normalizes it.
//
// A state abbreviation glued to the end of the last word is only split off
// when the whole string isn't already a known municipality, so "BLUE
// ISLAND" stays intact.
func SplitCityState(cityState string) (string, string) {
	bits := strings.Fields(punctuationPattern.ReplaceAllString(cityState, " "))
	if len(bits) == 0 {
		return "", ""
	}

	last := bits[len(bits)-1]
	if IsState(last) {
		return strings.Join(bits[:len(bits)-1], " "), last
	}

	if len(last) > 2 && !IsCookCountyMunicipality(strings.Join(bits, " ")) {
		suffix := last[len(last)-2:]
		if IsState(suffix) {
			cityBits := append(append([]string{}, bits[:len(bits)-1]...), last[:len(last)-2])
			return strings.Join(cityBits, " "), suffix
		}
	}

	return strings.Join(bits, " "), ""
}

// CleanCityState expands abbreviations and misspellings of Chicago in the
// city and maps "ILL" to "IL".
func CleanCityState(city, state string) (string, string) {
	words := strings.Split(FoldAccents(city), " ")
	for i, word := range words {
		words[i] = fixChicago(unabbreviate(word))
	}

	if state == "ILL" {
		state = "IL"
	}
	return strings.Join(words, " "), state
}

// ParseCityState splits and cleans a combined city/state string.
func ParseCityState(cityState string) (string, string) {
	return CleanCityState(SplitCityState(cityState))
}

// FoldAccents strips combining marks, e.g. "JOLIÉT" becomes "JOLIET".
func FoldAccents(s string) string {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return result
}

func unabbreviate(word string) string {
	if expanded, ok := cityAbbreviations[strings.ToUpper(word)]; ok {
		return expanded
	}
	return word
}

func fixChicago(word string) string {
	switch {
	case chicagoPattern.MatchString(word):
		return "CHICAGO"
	case word == "CHICAG0" || word == "CHICAFO":
		return "CHICAGO"
	}
	return word
}
