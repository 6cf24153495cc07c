package iucr

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Group is a named set of IUCR codes used to bucket convictions in reports.
// A composite group takes the union of the codes of the groups it Includes,
// removes the codes of the groups it Excludes and keeps only the codes of
// every group it is Within.
//
// Charges without an IUCR code are matched on their statute and charge
// description instead: Statutes are case-insensitive statute prefixes and
// Descriptions case-insensitive regular expressions over the description.
// Include, Exclude and Within apply to those matches the same way.
type Group struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Codes        []string `json:"codes"`
	Include      []string `json:"include,omitempty"`
	Exclude      []string `json:"exclude,omitempty"`
	Within       []string `json:"within,omitempty"`
	Statutes     []string `json:"statutes,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// Charge is what a group is matched against.
type Charge struct {
	Code        string
	Statute     string
	Description string
}

// Categories are based on the CPD IUCR code list published by the City of
// Chicago. Domestic violence, stalking and orders of protection are grouped
// by the project rather than by CPD, so their battery codes are also
// counted under aggravated battery.
var groupDeclarations = []Group{
	{Name: "homicide", Label: "Homicide", Codes: []string{"0110", "0130", "0141", "0142"}},
	{Name: "homicide_nonindex", Label: "Homicide (non-index)", Codes: []string{"0141", "0142"}},
	{Name: "sexual_assault", Label: "Sexual Assault", Codes: []string{
		"0261", "0263", "0264", "0265", "0266", "0271", "0272", "0273",
		"0274", "0275", "0281", "0291"},
		// Criminal sexual assault and aggravated criminal sexual assault.
		Statutes: []string{"720-5/12-14", "720-5/12-16("}},
	{Name: "robbery", Label: "Robbery", Codes: []string{
		"0312", "0313", "0320", "0325", "0326", "0330", "0331", "0334",
		"0337", "0340", "031A", "031B", "033A", "033B"}},
	{Name: "agg_assault", Label: "Aggravated Assault", Codes: []string{
		"0520", "0530", "0550", "0551", "0552", "0553", "0554", "0555",
		"0556", "0557", "0558", "051A", "051B"}},
	{Name: "agg_assault_nonindex", Label: "Aggravated Assault (non-index)", Codes: []string{"0554"}},
	// 0545 (PRO EMP HANDS NO/MIN INJURY) and 0560 (SIMPLE) are assaults
	// that aren't aggravated.
	{Name: "non_agg_assault", Label: "Assault", Codes: []string{"0545", "0560"}},
	{Name: "agg_battery", Label: "Aggravated Battery", Codes: []string{
		"0420", "0430", "0440", "0450", "0451", "0452", "0453", "0454",
		"0461", "0462", "0479", "0480", "0481", "0482", "0483", "0485",
		"0487", "0488", "0489", "0495", "0496", "0497", "0498", "041A",
		"041B"}},
	{Name: "agg_battery_nonindex", Label: "Aggravated Battery (non-index)", Codes: []string{"0440", "0454", "0487"}},
	{Name: "non_agg_battery", Label: "Battery", Codes: []string{"0460", "0475", "0484", "0486"}},
	{Name: "burglary", Label: "Burglary", Codes: []string{"0610", "0620", "0630", "0650"}},
	{Name: "theft", Label: "Theft", Codes: []string{
		"0810", "0820", "0840", "0841", "0842", "0843", "0850", "0860",
		"0865", "0870", "0880", "0890", "0895"}},
	{Name: "motor_vehicle_theft", Label: "Motor Vehicle Theft", Codes: []string{
		"0910", "0915", "0917", "0918", "0920", "0925", "0927", "0928",
		"0930", "0935", "0937", "0938"}},
	{Name: "arson", Label: "Arson", Codes: []string{"1010", "1020", "1025", "1030", "1035", "1090"}},
	{Name: "arson_nonindex", Label: "Arson (non-index)", Codes: []string{"1030", "1035"}},
	{Name: "domestic_violence", Label: "Domestic Violence", Codes: []string{
		"0486", "0488", "0489", "0496", "0497", "0498"}},
	{Name: "stalking", Label: "Stalking", Codes: []string{"0580", "0581", "0583"}},
	{Name: "violating_order_protection", Label: "Violating Order of Protection", Codes: []string{"4387"}},
	{Name: "drug_mfg_delivery", Label: "Drug Manufacture/Delivery", Codes: []string{
		"1821", "1822", "2010", "2011", "2012", "2013", "2014", "2015",
		"2016", "2017", "2018", "2019"},
		Descriptions: mfgDeliveryDescriptions},
	{Name: "drug_possession", Label: "Drug Possession", Codes: []string{
		"1811", "1812", "2020", "2021", "2022", "2023", "2024", "2025",
		"2026", "2027", "2028", "2029"},
		Descriptions: possessionDescriptions},
	{Name: "cannabis", Label: "Cannabis", Codes: []string{"1811", "1812", "1821", "1822"},
		Statutes: []string{"720-550/"}, Descriptions: []string{`CAN`}},
	{Name: "cannabis_mfg_delivery", Label: "Cannabis Manufacture/Delivery",
		Include: []string{"drug_mfg_delivery"}, Within: []string{"cannabis"}},
	{Name: "cannabis_possession", Label: "Cannabis Possession",
		Include: []string{"drug_possession"}, Within: []string{"cannabis"}},
	{Name: "drug", Label: "Drug", Include: []string{"drug_mfg_delivery", "drug_possession"}, Codes: []string{
		"1811", "1812", "1821", "1822", "1840", "1850", "1860", "2010",
		"2011", "2012", "2013", "2014", "2015", "2016", "2017", "2018",
		"2019", "2020", "2021", "2022", "2023", "2024", "2025", "2026",
		"2027", "2028", "2029", "2030", "2031", "2032", "2040", "2050",
		"2060", "2070", "2080", "2090", "2091", "2092", "2093", "2094",
		"2095", "2110", "2111", "2120", "2160", "2170"}},

	{Name: "violent", Label: "Violent", Include: []string{
		"homicide", "sexual_assault", "robbery", "agg_battery", "agg_assault"}},
	{Name: "violent_nonindex", Label: "Violent (non-index)", Include: []string{
		"homicide_nonindex", "agg_assault_nonindex", "agg_battery_nonindex"}},
	{Name: "violent_index", Label: "Violent Index Crimes", Include: []string{"violent"}, Exclude: []string{"violent_nonindex"}},
	{Name: "property", Label: "Property", Include: []string{
		"burglary", "theft", "motor_vehicle_theft", "arson"}},
	{Name: "property_index", Label: "Property Index Crimes", Include: []string{"property"}, Exclude: []string{"arson_nonindex"},
		Statutes: []string{
			"625-5/4-103(a)", // motor vehicle theft
			"720-5/16-1",     // theft
			"720-5/17-1(B)",  // deceptive practice
			"720-5/19-1",     // burglary
			"720-5/24-1.2",   // aggravated discharge of a firearm
		}},
	{Name: "nonviolent", Label: "Nonviolent", Include: []string{"property_index"}, Statutes: []string{
		"510-70/4.01(a)", // animal fighting
		"720-5/26-5",     // dog fighting, both IUCR codes are non-index
		"625-5/11-501",   // DUI
		"720-135/1",      // harassing phone calls
		"720-5/9-3",      // involuntary manslaughter or reckless homicide
	}},
	{Name: "crimes_affecting_women", Label: "Crimes Affecting Women", Include: []string{
		"sexual_assault", "domestic_violence", "violating_order_protection"}},
}

var mfgDeliveryDescriptions = []string{
	`MAN/DEL`,
	`MANU/DEL`,
	`POSS MANU`,
	`MANUEL/DEL`,
	`MFG/DEL`,
	`MFG/DISTRIB`,
	`MFG `,
	`DEL.*(CONT|SUB)`,
	// [^E] keeps "DELETE/FALSIFY TITLE DOCUMENT" out.
	`^(AGG|ATT|ATTEMPT|CASUAL|EMP|METH|)[ \. ]*DEL[^E]+`,
	`^(P[ \. ]*C[ \. ]*S[ \./]+|POSS(ES{1,2}(ION|)|)).*DEL`,
}

// "Possession" also describes plenty of non-drug charges.
var possessionDescriptions = []string{
	`POS{1,2}.*(CON|CTL|LOOK-ALIKE).*SUB`,
	`POS{1,2}.*(CANN|COCA|METH|HERO|STEROID)`,
	`POSS.*(GR|PILL|OBJECT)`,
	`^POS{1,2}( OF| ) CAN(ABIS| )`,
	`SCRIPT`,
	`^ATTEMPT POSS/ MISDEMEANOR$`,
	`^(POSS ANY SUB WITH INTENT|POSSESION)$`,
	`POSS.* WITH INTENT TO DEL`,
	// Casual delivery of cannabis is treated as possession.
	`CAS.* DEL`,
}

// Registry holds resolved category groups.
type Registry struct {
	groups   []Group
	byName   map[string]int
	sets     []map[string]bool
	matchers []*chargeMatcher
}

type chargeMatcher struct {
	statutes     []string
	descriptions []*regexp.Regexp
	include      []int
	exclude      []int
	within       []int
}

// NewRegistry resolves composite groups against the groups declared before
// them. A reference to an unknown or later group is an error.
func NewRegistry(declarations []Group) (*Registry, error) {
	registry := &Registry{byName: make(map[string]int, len(declarations))}
	for _, declaration := range declarations {
		if _, exists := registry.byName[declaration.Name]; exists {
			return nil, fmt.Errorf("duplicate category %q", declaration.Name)
		}

		matcher, err := registry.newMatcher(declaration)
		if err != nil {
			return nil, err
		}

		set := make(map[string]bool)
		for _, code := range declaration.Codes {
			set[code] = true
		}
		for _, index := range matcher.include {
			for code := range registry.sets[index] {
				set[code] = true
			}
		}
		for _, index := range matcher.exclude {
			for code := range registry.sets[index] {
				delete(set, code)
			}
		}
		for _, index := range matcher.within {
			for code := range set {
				if !registry.sets[index][code] {
					delete(set, code)
				}
			}
		}

		resolved := declaration
		resolved.Codes = make([]string, 0, len(set))
		for code := range set {
			resolved.Codes = append(resolved.Codes, code)
		}
		sort.Strings(resolved.Codes)

		registry.byName[declaration.Name] = len(registry.groups)
		registry.groups = append(registry.groups, resolved)
		registry.sets = append(registry.sets, set)
		registry.matchers = append(registry.matchers, matcher)
	}
	return registry, nil
}

func (registry *Registry) newMatcher(declaration Group) (*chargeMatcher, error) {
	matcher := &chargeMatcher{}
	for _, statute := range declaration.Statutes {
		matcher.statutes = append(matcher.statutes, strings.ToUpper(statute))
	}
	for _, pattern := range declaration.Descriptions {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("category %q: invalid description pattern %q: %w", declaration.Name, pattern, err)
		}
		matcher.descriptions = append(matcher.descriptions, re)
	}

	references := []struct {
		verb    string
		names   []string
		indices *[]int
	}{
		{"includes", declaration.Include, &matcher.include},
		{"excludes", declaration.Exclude, &matcher.exclude},
		{"is within", declaration.Within, &matcher.within},
	}
	for _, reference := range references {
		for _, name := range reference.names {
			index, ok := registry.byName[name]
			if !ok {
				return nil, fmt.Errorf("category %q %s unknown category %q", declaration.Name, reference.verb, name)
			}
			*reference.indices = append(*reference.indices, index)
		}
	}
	return matcher, nil
}

var defaultRegistry = mustRegistry(groupDeclarations)

func mustRegistry(declarations []Group) *Registry {
	registry, err := NewRegistry(declarations)
	if err != nil {
		panic("iucr: " + err.Error())
	}
	return registry
}

// DefaultRegistry returns the bundled category groups.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Groups returns every group in declaration order with resolved codes.
func (registry *Registry) Groups() []Group {
	return append([]Group(nil), registry.groups...)
}

// Lookup returns the group with the given name.
func (registry *Registry) Lookup(name string) (Group, bool) {
	index, ok := registry.byName[name]
	if !ok {
		return Group{}, false
	}
	return registry.groups[index], true
}

// Contains reports whether the named group contains code.
func (registry *Registry) Contains(name, code string) bool {
	index, ok := registry.byName[name]
	return ok && registry.sets[index][code]
}

// GroupsFor returns the names of every group containing code, in
// declaration order.
func (registry *Registry) GroupsFor(code string) []string {
	names := []string{}
	for i, group := range registry.groups {
		if registry.sets[i][code] {
			names = append(names, group.Name)
		}
	}
	return names
}

// GroupsForCharge returns the names of every group matching charge, in
// declaration order. A charge with a code is matched by code alone; one
// without is matched by statute prefix and charge description.
func (registry *Registry) GroupsForCharge(charge Charge) []string {
	if charge.Code != "" {
		return registry.GroupsFor(charge.Code)
	}

	statute := strings.ToUpper(strings.TrimSpace(charge.Statute))
	description := strings.TrimSpace(charge.Description)
	if statute == "" && description == "" {
		return []string{}
	}

	matched := make([]bool, len(registry.groups))
	names := []string{}
	for i, matcher := range registry.matchers {
		matched[i] = matcher.matches(matched, statute, description)
		if matched[i] {
			names = append(names, registry.groups[i].Name)
		}
	}
	return names
}

// matches reports whether the uncoded charge belongs to the group. earlier
// holds the results of every group declared before it.
func (matcher *chargeMatcher) matches(earlier []bool, statute, description string) bool {
	own := false
	for _, prefix := range matcher.statutes {
		if statute != "" && strings.HasPrefix(statute, prefix) {
			own = true
			break
		}
	}
	if !own && description != "" {
		for _, re := range matcher.descriptions {
			if re.MatchString(description) {
				own = true
				break
			}
		}
	}
	for _, index := range matcher.include {
		own = own || earlier[index]
	}
	if !own {
		return false
	}
	for _, index := range matcher.exclude {
		if earlier[index] {
			return false
		}
	}
	for _, index := range matcher.within {
		if !earlier[index] {
			return false
		}
	}
	return true
}
