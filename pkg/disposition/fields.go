package disposition

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format used throughout the extract, e.g. "13-Jun-43".
const DateLayout = "2-Jan-06"

const (
	lifeSentence  = "88888888"
	deathSentence = "99999999"
)

// ChargeTypes are the accepted values of chrgtype and ammndchrgtype.
var ChargeTypes = []string{"A", "C", "F", "M", "R", "T", "V", "Y"}

// ChargeClasses are the accepted values of chrgclass and ammndchrgclass.
// D, F and O are only seen in amended classes.
var ChargeClasses = []string{"1", "2", "3", "4", "A", "B", "C", "D", "F", "G", "M", "N", "O", "P", "T", "U", "X", "Z"}

var zipcodePattern = regexp.MustCompile(`^\d{5}$`)

// now is replaced in tests.
var now = time.Now

// Sentence is a decoded minimum or maximum sentence.
type Sentence struct {
	Years  int  `json:"years"`
	Months int  `json:"months"`
	Days   int  `json:"days"`
	Life   bool `json:"life,omitempty"`
	Death  bool `json:"death,omitempty"`
}

// ParseDate parses an extract date. Two-digit years that would land after
// the current year are moved back a century. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if date.Year() > now().Year() {
		date = date.AddDate(-100, 0, 0)
	}
	return &date, nil
}

// ParseSentence decodes a sentence of the form YYYMMDDD. Shorter values
// are left-padded with zeros. 88888888 is a life sentence and 99999999 a
// death sentence.
func ParseSentence(s string) (Sentence, error) {
	s = strings.TrimSpace(s)
	switch s {
	case lifeSentence:
		return Sentence{Life: true}, nil
	case deathSentence:
		return Sentence{Death: true}, nil
	}

	if len(s) > 8 {
		return Sentence{}, fmt.Errorf("invalid sentence %q: more than 8 digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return Sentence{}, fmt.Errorf("invalid sentence %q", s)
		}
	}

	padded := strings.Repeat("0", 8-len(s)) + s
	years, _ := strconv.Atoi(padded[0:3])
	months, _ := strconv.Atoi(padded[3:5])
	days, _ := strconv.Atoi(padded[5:8])
	return Sentence{Years: years, Months: months, Days: days}, nil
}

// ParseChargeType normalizes a charge type. "Felony" becomes "F".
func ParseChargeType(s string) (string, error) {
	chargeType := strings.TrimSpace(s)
	if chargeType == "Felony" {
		chargeType = "F"
	}
	if chargeType != "" && !slices.Contains(ChargeTypes, chargeType) {
		return "", fmt.Errorf("unexpected charge type %q", chargeType)
	}
	return chargeType, nil
}

// ParseChargeClass validates a charge class.
func ParseChargeClass(s string) (string, error) {
	if s != "" && !slices.Contains(ChargeClasses, s) {
		return "", fmt.Errorf("unexpected charge class %q", s)
	}
	return s, nil
}

// ParseSex lower-cases the sex field, which must be male or female when set.
func ParseSex(s string) (string, error) {
	sex := strings.ToLower(strings.TrimSpace(s))
	if sex != "" && sex != "male" && sex != "female" {
		return "", fmt.Errorf("unexpected value %q for sex", strings.TrimSpace(s))
	}
	return sex, nil
}

// ParseZipcode returns a five digit zipcode, or "" for anything else.
func ParseZipcode(s string) string {
	zipcode := strings.TrimSpace(s)
	if !zipcodePattern.MatchString(zipcode) {
		return ""
	}
	return zipcode
}

// ParseInt parses an optional integer. An empty string yields nil.
func ParseInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", s, err)
	}
	return &n, nil
}
