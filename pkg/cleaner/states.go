package cleaner

// stateAbbreviations holds USPS codes for the states, DC and the
// territories.
var stateAbbreviations = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
	"AS": true, "GU": true, "MP": true, "PR": true, "VI": true,
}

// singleWordStateNames lets a trailing token like "INDIANA" count as a state.
var singleWordStateNames = map[string]bool{
	"ALABAMA": true, "ALASKA": true, "ARIZONA": true, "ARKANSAS": true,
	"CALIFORNIA": true, "COLORADO": true, "CONNECTICUT": true, "DELAWARE": true,
	"FLORIDA": true, "GEORGIA": true, "HAWAII": true, "IDAHO": true,
	"ILLINOIS": true, "INDIANA": true, "IOWA": true, "KANSAS": true,
	"KENTUCKY": true, "LOUISIANA": true, "MAINE": true, "MARYLAND": true,
	"MASSACHUSETTS": true, "MICHIGAN": true, "MINNESOTA": true,
	"MISSISSIPPI": true, "MISSOURI": true, "MONTANA": true, "NEBRASKA": true,
	"NEVADA": true, "OHIO": true, "OKLAHOMA": true, "OREGON": true,
	"PENNSYLVANIA": true, "TENNESSEE": true, "TEXAS": true, "UTAH": true,
	"VERMONT": true, "VIRGINIA": true, "WASHINGTON": true, "WISCONSIN": true,
	"WYOMING": true, "GUAM": true,
}

// mockStates are strings clerks used for states that aren't official
// abbreviations.
var mockStates = map[string]bool{"ILL": true, "I": true, "MX": true}

// IsState reports whether s names a state, by USPS code, single-word name
// or one of the mock abbreviations seen in the extract.
func IsState(s string) bool {
	return stateAbbreviations[s] || singleWordStateNames[s] || mockStates[s]
}
