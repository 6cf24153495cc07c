// Package address builds geocoder queries from disposition addresses and
// anonymizes street addresses to the 100 block before they are published.
package address

import (
	"errors"
	"regexp"
	"strings"
	"sync"
)

// Component labels produced by ParseComponents.
const (
	LabelAddressNumber       = "AddressNumber"
	LabelAddressNumberSuffix = "AddressNumberSuffix"
	LabelOccupancyType       = "OccupancyType"
	LabelOccupancyIdentifier = "OccupancyIdentifier"
	LabelStreet              = "Street"
)

var (
	// ErrNoStreet is returned by GeocoderAddress when the street is empty.
	ErrNoStreet = errors.New("need an address to geocode")

	// ErrNoLocality is returned by GeocoderAddress when there is neither a
	// zipcode nor a city and state.
	ErrNoLocality = errors.New("need a zipcode or city and state to geocode")
)

var houseNumberPattern = regexp.MustCompile(`^(\d+)\s*(.*)$`)

// Component is one labelled piece of a parsed street address.
type Component struct {
	Label string
	Value string
}

// GeocoderAddress builds the single-line query sent to the geocoder. The
// zipcode is preferred over city and state.
func GeocoderAddress(street, zipcode, city, state string) (string, error) {
	if street == "" {
		return "", ErrNoStreet
	}

	bits := []string{street}
	switch {
	case zipcode != "":
		bits = append(bits, zipcode)
	case city != "" && state != "":
		bits = append(bits, city, state)
	default:
		return "", ErrNoLocality
	}
	return strings.Join(bits, ","), nil
}

// Anonymizer reduces street addresses to their 100 block. Results are
// memoized, and an Anonymizer is safe for concurrent use.
type Anonymizer struct {
	parse func(string) []Component

	mu    sync.Mutex
	cache map[string]string
}

// NewAnonymizer returns an Anonymizer using ParseComponents.
func NewAnonymizer() *Anonymizer {
	return NewAnonymizerWithParser(ParseComponents)
}

// NewAnonymizerWithParser returns an Anonymizer using a custom component
// parser.
func NewAnonymizerWithParser(parse func(string) []Component) *Anonymizer {
	return &Anonymizer{
		parse: parse,
		cache: make(map[string]string),
	}
}

// Anonymize rounds the house number down to the 100 block and drops the
// number suffix and any apartment or unit, e.g. "1234B N MAIN ST APT 3"
// becomes "1200 N MAIN ST".
func (anonymizer *Anonymizer) Anonymize(address string) string {
	anonymizer.mu.Lock()
	defer anonymizer.mu.Unlock()

	if anonymized, ok := anonymizer.cache[address]; ok {
		return anonymized
	}

	var kept []string
	for _, component := range anonymizer.parse(address) {
		switch component.Label {
		case LabelAddressNumber:
			kept = append(kept, BlockNumber(component.Value))
		case LabelAddressNumberSuffix, LabelOccupancyType, LabelOccupancyIdentifier:
			continue
		default:
			kept = append(kept, component.Value)
		}
	}

	anonymized := strings.Join(kept, " ")
	anonymizer.cache[address] = anonymized
	return anonymized
}

// Len returns the number of memoized addresses.
func (anonymizer *Anonymizer) Len() int {
	anonymizer.mu.Lock()
	defer anonymizer.mu.Unlock()
	return len(anonymizer.cache)
}

// BlockNumber replaces the last two digits of a house number with zeros.
// Numbers of two digits or fewer become "0".
func BlockNumber(number string) string {
	if len(number) <= 2 {
		return "0"
	}
	return number[:len(number)-2] + "00"
}

// splitHouseNumber separates the digits of a house number from a suffix
// such as "B" or "1/2".
func splitHouseNumber(value string) (string, string) {
	match := houseNumberPattern.FindStringSubmatch(value)
	if match == nil {
		return value, ""
	}
	return match[1], strings.TrimPrefix(match[2], "-")
}
