package cleaner

import "strings"

// cookCountyMunicipalities are the incorporated places of Cook County,
// Illinois, upper-cased.
var cookCountyMunicipalities = map[string]bool{}

func init() {
	for _, name := range []string{
		"ALSIP", "ARLINGTON HEIGHTS", "BARRINGTON", "BARRINGTON HILLS",
		"BARTLETT", "BEDFORD PARK", "BELLWOOD", "BERKELEY", "BERWYN",
		"BLUE ISLAND", "BRIDGEVIEW", "BROADVIEW", "BROOKFIELD",
		"BUFFALO GROVE", "BURBANK", "BURNHAM", "BURR RIDGE", "CALUMET CITY",
		"CALUMET PARK", "CHICAGO", "CHICAGO HEIGHTS", "CHICAGO RIDGE",
		"CICERO", "COUNTRY CLUB HILLS", "COUNTRYSIDE", "CRESTWOOD",
		"DEER PARK", "DEERFIELD", "DES PLAINES", "DIXMOOR", "DOLTON",
		"EAST DUNDEE", "EAST HAZEL CREST", "ELGIN", "ELK GROVE VILLAGE",
		"ELMHURST", "ELMWOOD PARK", "EVANSTON", "EVERGREEN PARK",
		"FLOSSMOOR", "FORD HEIGHTS", "FOREST PARK", "FOREST VIEW",
		"FRANKLIN PARK", "GLENCOE", "GLENVIEW", "GLENWOOD", "GOLF",
		"HANOVER PARK", "HARVEY", "HARWOOD HEIGHTS", "HAZEL CREST",
		"HICKORY HILLS", "HILLSIDE", "HINSDALE", "HODGKINS",
		"HOFFMAN ESTATES", "HOMETOWN", "HOMEWOOD", "INDIAN HEAD PARK",
		"INVERNESS", "JUSTICE", "KENILWORTH", "LA GRANGE", "LA GRANGE PARK",
		"LANSING", "LEMONT", "LINCOLNWOOD", "LYNWOOD", "LYONS", "MARKHAM",
		"MATTESON", "MAYWOOD", "MCCOOK", "MELROSE PARK", "MERRIONETTE PARK",
		"MIDLOTHIAN", "MORTON GROVE", "MOUNT PROSPECT", "NILES", "NORRIDGE",
		"NORTH RIVERSIDE", "NORTHBROOK", "NORTHFIELD", "NORTHLAKE",
		"OAK BROOK", "OAK FOREST", "OAK LAWN", "OAK PARK", "OLYMPIA FIELDS",
		"ORLAND HILLS", "ORLAND PARK", "PALATINE", "PALOS HEIGHTS",
		"PALOS HILLS", "PALOS PARK", "PARK FOREST", "PARK RIDGE", "PHOENIX",
		"POSEN", "PROSPECT HEIGHTS", "RICHTON PARK", "RIVER FOREST",
		"RIVER GROVE", "RIVERDALE", "RIVERSIDE", "ROBBINS",
		"ROLLING MEADOWS", "ROSELLE", "ROSEMONT", "SAUK VILLAGE",
		"SCHAUMBURG", "SCHILLER PARK", "SKOKIE", "SOUTH BARRINGTON",
		"SOUTH CHICAGO HEIGHTS", "SOUTH HOLLAND", "STEGER", "STICKNEY",
		"STONE PARK", "STREAMWOOD", "SUMMIT", "THORNTON", "TINLEY PARK",
		"UNIVERSITY PARK", "WESTCHESTER", "WESTERN SPRINGS", "WHEELING",
		"WILLOW SPRINGS", "WILMETTE", "WINNETKA", "WORTH",
	} {
		cookCountyMunicipalities[name] = true
	}
}

// IsCookCountyMunicipality reports whether city is an incorporated place in
// Cook County. The comparison ignores case and surrounding space.
func IsCookCountyMunicipality(city string) bool {
	return cookCountyMunicipalities[strings.ToUpper(strings.TrimSpace(city))]
}

// DetectState returns "IL" for a city in Cook County and "" otherwise.
func DetectState(city string) string {
	if IsCookCountyMunicipality(city) {
		return "IL"
	}
	return ""
}
