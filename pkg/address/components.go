//go:build !libpostal

package address

import (
	"regexp"
	"strings"
)

var leadingNumberPattern = regexp.MustCompile(`^\d+(?:-?[A-Z]|-?1/2)?$`)

// occupancyTypes take the following token as their identifier.
var occupancyTypes = map[string]bool{
	"APT":       true,
	"APARTMENT": true,
	"UNIT":      true,
	"STE":       true,
	"SUITE":     true,
	"RM":        true,
	"ROOM":      true,
	"FL":        true,
	"FLOOR":     true,
	"#":         true,
}

// ParseComponents labels the tokens of a street address with a token
// heuristic. Build with the libpostal tag to use libpostal instead.
func ParseComponents(address string) []Component {
	tokens := strings.Fields(strings.ToUpper(strings.ReplaceAll(address, ",", " ")))

	components := make([]Component, 0, len(tokens))
	expectIdentifier := false
	for i, token := range tokens {
		switch {
		case expectIdentifier:
			components = append(components, Component{Label: LabelOccupancyIdentifier, Value: token})
			expectIdentifier = false
		case i == 0 && leadingNumberPattern.MatchString(token):
			number, suffix := splitHouseNumber(token)
			components = append(components, Component{Label: LabelAddressNumber, Value: number})
			if suffix != "" {
				components = append(components, Component{Label: LabelAddressNumberSuffix, Value: suffix})
			}
		case occupancyTypes[token]:
			components = append(components, Component{Label: LabelOccupancyType, Value: token})
			expectIdentifier = true
		case len(token) > 1 && strings.HasPrefix(token, "#"):
			components = append(components, Component{Label: LabelOccupancyIdentifier, Value: token})
		default:
			components = append(components, Component{Label: LabelStreet, Value: token})
		}
	}
	return components
}
