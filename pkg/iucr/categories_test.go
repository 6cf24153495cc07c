package iucr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryGroups(t *testing.T) {
	registry := DefaultRegistry()
	groups := registry.Groups()
	require.NotEmpty(t, groups)

	names := make([]string, len(groups))
	for i, group := range groups {
		names[i] = group.Name
		assert.NotEmpty(t, group.Label, group.Name)
		assert.NotEmpty(t, group.Codes, group.Name)
	}
	assert.Equal(t, "homicide", names[0], "groups are returned in declaration order")
	assert.Contains(t, names, "violent_index")
	assert.Contains(t, names, "property_index")
	assert.Contains(t, names, "crimes_affecting_women")
}

func TestCompositeGroups(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		group string
		code  string
		want  bool
	}{
		{"violent_index", "0110", true},
		{"violent_index", "0141", false}, // non-index homicide
		{"violent_index", "0554", false}, // non-index agg assault
		{"violent_index", "0440", false}, // non-index agg battery
		{"violent_index", "031A", true},
		{"violent_index", "0810", false},
		{"property_index", "0810", true},
		{"property_index", "1020", true},
		{"property_index", "1030", false}, // non-index arson
		{"crimes_affecting_women", "0281", true},
		{"crimes_affecting_women", "0486", true},
		{"crimes_affecting_women", "4387", true},
		{"crimes_affecting_women", "0580", false},
		{"violating_order_protection", "4387", true},
		{"violating_order_protection", "0261", false},
		{"agg_assault_nonindex", "0554", true},
		{"agg_assault_nonindex", "0520", false},
		{"unknown", "0110", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, registry.Contains(tc.group, tc.code), "%s contains %s", tc.group, tc.code)
	}
}

func TestGroupsFor(t *testing.T) {
	registry := DefaultRegistry()

	assert.Equal(t, []string{"homicide", "violent", "violent_index"}, registry.GroupsFor("0110"))
	assert.Equal(t, []string{"non_agg_battery", "domestic_violence", "crimes_affecting_women"}, registry.GroupsFor("0486"))
	assert.Equal(t, []string{}, registry.GroupsFor("9999"))
}

func TestGroupsForCharge(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		name   string
		charge Charge
		want   []string
	}{
		{
			name:   "code wins over statute",
			charge: Charge{Code: "0110", Statute: "720-5/9-3"},
			want:   []string{"homicide", "violent", "violent_index"},
		},
		{
			name:   "ambiguous reckless homicide",
			charge: Charge{Statute: "720-5/9-3", Description: "INVOLUNTARY MANSLAUGHTER"},
			want:   []string{"nonviolent"},
		},
		{
			name:   "statute prefix is case-insensitive",
			charge: Charge{Statute: "720-5/17-1(b)(1)"},
			want:   []string{"property_index", "nonviolent"},
		},
		{
			name:   "criminal sexual assault",
			charge: Charge{Statute: "720-5/12-14(a)(1)"},
			want:   []string{"sexual_assault", "violent", "violent_index", "crimes_affecting_women"},
		},
		{
			name:   "cannabis possession by description",
			charge: Charge{Description: "POSS OF CANNABIS 30-500 GRAMS"},
			want:   []string{"drug_possession", "cannabis", "cannabis_possession", "drug"},
		},
		{
			name:   "delivery by description",
			charge: Charge{Statute: "720-570/401(c)(2)", Description: "MFG/DEL 01-15 GR COCAINE/ANLG"},
			want:   []string{"drug_mfg_delivery", "drug"},
		},
		{
			name:   "deleting a title is not delivery",
			charge: Charge{Description: "DELETE/FALSIFY TITLE DOCUMENT"},
			want:   []string{},
		},
		{
			name:   "nothing to match",
			charge: Charge{},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, registry.GroupsForCharge(tt.charge))
		})
	}
}

func TestWithinIntersectsCodes(t *testing.T) {
	registry := DefaultRegistry()

	group, ok := registry.Lookup("cannabis_mfg_delivery")
	require.True(t, ok)
	assert.Equal(t, []string{"1821", "1822"}, group.Codes)

	group, ok = registry.Lookup("cannabis_possession")
	require.True(t, ok)
	assert.Equal(t, []string{"1811", "1812"}, group.Codes)

	assert.True(t, registry.Contains("drug", "2012"))
	assert.True(t, registry.Contains("drug", "1811"))
}

func TestLookupGroup(t *testing.T) {
	group, ok := DefaultRegistry().Lookup("homicide_nonindex")
	require.True(t, ok)
	assert.Equal(t, []string{"0141", "0142"}, group.Codes)

	_, ok = DefaultRegistry().Lookup("missing")
	assert.False(t, ok)
}

func TestNewRegistryErrors(t *testing.T) {
	_, err := NewRegistry([]Group{
		{Name: "a", Codes: []string{"1"}},
		{Name: "a", Codes: []string{"2"}},
	})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewRegistry([]Group{
		{Name: "composite", Include: []string{"later"}},
		{Name: "later", Codes: []string{"1"}},
	})
	assert.ErrorContains(t, err, "unknown category")

	_, err = NewRegistry([]Group{
		{Name: "a", Codes: []string{"1"}},
		{Name: "b", Codes: []string{"1"}, Exclude: []string{"missing"}},
	})
	assert.ErrorContains(t, err, "unknown category")

	_, err = NewRegistry([]Group{
		{Name: "a", Codes: []string{"1"}, Within: []string{"missing"}},
	})
	assert.ErrorContains(t, err, "unknown category")

	_, err = NewRegistry([]Group{
		{Name: "a", Descriptions: []string{"(unclosed"}},
	})
	assert.ErrorContains(t, err, "invalid description pattern")
}

func TestEveryBundledOffenseCodeIsWellFormed(t *testing.T) {
	table := Default()
	for _, offenses := range table.offenses {
		for _, offense := range offenses {
			assert.Len(t, offense.Code, 4, offense.Code)
			assert.NotEmpty(t, offense.Category, offense.Code)
		}
	}
}
