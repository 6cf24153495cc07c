package disposition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow(t *testing.T, year int) {
	t.Helper()
	previous := now
	now = func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = previous })
}

func TestParseDate(t *testing.T) {
	fixedNow(t, 2014)

	tests := []struct {
		input string
		want  *time.Time
	}{
		{"", nil},
		{"13-Jan-06", date(2006, time.January, 13)},
		{"4-Jan-07", date(2007, time.January, 4)},
		{"13-Jun-43", date(1943, time.June, 13)},
		{"19-Nov-43", date(1943, time.November, 19)},
		{"2-Jun-89", date(1989, time.June, 2)},
		{"02-jun-14", date(2014, time.June, 2)},
		{"1-Dec-15", date(1915, time.December, 1)},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}

	for _, bad := range []string{"2006-01-13", "32-Jan-06", "13-Foo-06"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSentence(t *testing.T) {
	tests := []struct {
		input string
		want  Sentence
	}{
		{"0", Sentence{}},
		{"", Sentence{}},
		{"5700000", Sentence{Years: 57}},
		{"100000", Sentence{Years: 1}},
		{"00206015", Sentence{Years: 2, Months: 6, Days: 15}},
		{"88888888", Sentence{Life: true}},
		{"99999999", Sentence{Death: true}},
	}

	for _, tc := range tests {
		got, err := ParseSentence(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}

	for _, bad := range []string{"12A", "123456789", "-1"} {
		_, err := ParseSentence(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseChargeType(t *testing.T) {
	tests := map[string]string{
		"Felony": "F",
		" F ":    "F",
		"M":      "M",
		"":       "",
	}
	for input, want := range tests {
		got, err := ParseChargeType(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseChargeType("Misdemeanor")
	assert.ErrorContains(t, err, "unexpected charge type")
}

func TestParseChargeClass(t *testing.T) {
	for _, class := range ChargeClasses {
		got, err := ParseChargeClass(class)
		require.NoError(t, err)
		assert.Equal(t, class, got)
	}

	got, err := ParseChargeClass("")
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = ParseChargeClass("Q")
	assert.ErrorContains(t, err, "unexpected charge class")
}

func TestParseSex(t *testing.T) {
	for input, want := range map[string]string{"Male": "male", " FEMALE ": "female", "": ""} {
		got, err := ParseSex(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSex("Unknown")
	assert.Error(t, err)
}

func TestParseZipcode(t *testing.T) {
	tests := map[string]string{
		"60622":      "60622",
		" 60622 ":    "60622",
		"60622-1234": "",
		"6062":       "",
		"ABCDE":      "",
		"":           "",
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseZipcode(input), input)
	}
}

func TestParseInt(t *testing.T) {
	got, err := ParseInt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseInt(" 250 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 250, *got)

	_, err = ParseInt("1.5")
	assert.Error(t, err)
}

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
