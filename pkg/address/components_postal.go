//go:build libpostal

package address

import (
	"strings"

	postal "github.com/openvenues/gopostal/parser"
)

// ParseComponents labels the parts of a street address with libpostal.
// libpostal lower-cases its output; values are returned upper-cased to
// match the court extract.
func ParseComponents(address string) []Component {
	parsed := postal.ParseAddress(address)

	components := make([]Component, 0, len(parsed))
	for _, component := range parsed {
		value := strings.ToUpper(component.Value)
		switch component.Label {
		case "house_number":
			number, suffix := splitHouseNumber(value)
			components = append(components, Component{Label: LabelAddressNumber, Value: number})
			if suffix != "" {
				components = append(components, Component{Label: LabelAddressNumberSuffix, Value: suffix})
			}
		case "unit", "level", "staircase", "entrance":
			components = append(components, Component{Label: LabelOccupancyIdentifier, Value: value})
		case "road":
			components = append(components, Component{Label: LabelStreet, Value: value})
		default:
			// city, state and postcode stay in the anonymized address
			components = append(components, Component{Label: component.Label, Value: value})
		}
	}
	return components
}
