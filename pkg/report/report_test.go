package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/convictions/pkg/disposition"
	"github.com/coolbeans/convictions/pkg/iucr"
)

func statutes(values ...string) []*disposition.Disposition {
	dispositions := make([]*disposition.Disposition, len(values))
	for i, value := range values {
		dispositions[i] = &disposition.Disposition{Statute: value}
	}
	return dispositions
}

func convictions(pairs ...[2]string) []*disposition.Conviction {
	convictions := make([]*disposition.Conviction, len(pairs))
	for i, pair := range pairs {
		convictions[i] = &disposition.Conviction{FinalStatute: pair[0], FinalChrgDesc: pair[1]}
	}
	return convictions
}

func TestMostCommonStatutes(t *testing.T) {
	robbery := [2]string{"720-5/18-2", "ARMED ROBBERY"}
	attemptRobbery := [2]string{"720-5/18-2", "ATTEMPT ARMED ROBBERY"}
	cocaine := [2]string{"720-570/402(c)", "POSS AMT CON SUB EXCEPT(A)/(D)"}
	murder := [2]string{"720-5/9-1", "FIRST DEGREE MURDER"}
	battery := [2]string{"720-5/12-4", "AGG BATTERY"}

	all := convictions(
		robbery, cocaine, robbery, [2]string{"", "NO STATUTE"},
		murder, cocaine, robbery, battery, attemptRobbery,
	)

	tests := []struct {
		name string
		n    int
		want StatuteCounts
	}{
		{"top two", 2, StatuteCounts{
			{"720-5/18-2", "ARMED ROBBERY", 3},
			{"720-570/402(c)", "POSS AMT CON SUB EXCEPT(A)/(D)", 2},
		}},
		{"ties by statute then description", 0, StatuteCounts{
			{"720-5/18-2", "ARMED ROBBERY", 3},
			{"720-570/402(c)", "POSS AMT CON SUB EXCEPT(A)/(D)", 2},
			{"720-5/12-4", "AGG BATTERY", 1},
			{"720-5/18-2", "ATTEMPT ARMED ROBBERY", 1},
			{"720-5/9-1", "FIRST DEGREE MURDER", 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MostCommonStatutes(all, tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MostCommonStatutes() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMostCommonStatutesCountsConvictions(t *testing.T) {
	day := time.Date(2006, 3, 1, 0, 0, 0, 0, time.UTC)
	count := func(chrgDisp string) *disposition.Disposition {
		return &disposition.Disposition{
			CaseNumber:    "A1",
			InitialDate:   &day,
			ChrgDispDate:  &day,
			ChrgDisp:      chrgDisp,
			FinalStatute:  "720-5/18-2",
			FinalChrgDesc: "ARMED ROBBERY",
		}
	}

	// Two counts with different dispositions roll up into one conviction.
	rolled := disposition.RollUp([]*disposition.Disposition{count("Plea Of Guilty"), count("Finding Guilty")})
	require.Len(t, rolled, 1)

	got := MostCommonStatutes(rolled, 0)
	assert.Equal(t, StatuteCounts{{"720-5/18-2", "ARMED ROBBERY", 1}}, got)
}

func TestMostCommonStatutesEmpty(t *testing.T) {
	assert.Empty(t, MostCommonStatutes(nil, 10))
}

func TestCountCategories(t *testing.T) {
	registry, err := iucr.NewRegistry([]iucr.Group{
		{Name: "robbery", Label: "Robbery", Codes: []string{"031A", "0320"}},
		{Name: "drug", Label: "Drug", Codes: []string{"2020"}},
		{Name: "violent", Label: "Violent", Include: []string{"robbery"}},
	})
	require.NoError(t, err)

	convictions := []*disposition.Conviction{
		{IUCRCode: "031A"},
		{IUCRCode: "0320"},
		{IUCRCode: "2020"},
		{IUCRCode: "9999"},
		{},
	}

	got := CountCategories(registry, convictions)
	want := CategoryCounts{
		{Name: "robbery", Label: "Robbery", Count: 2},
		{Name: "drug", Label: "Drug", Count: 1},
		{Name: "violent", Label: "Violent", Count: 2},
		{Name: OtherCategory, Label: "Other", Count: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CountCategories() mismatch (-want +got):\n%s", diff)
	}
}

func TestCountCategoriesUncodedConvictions(t *testing.T) {
	convictions := []*disposition.Conviction{
		// Involuntary manslaughter or reckless homicide: 0141 or 0142.
		{FinalStatute: "720-5/9-3", FinalChrgDesc: "RECKLESS HOMICIDE"},
		{FinalStatute: "720-5/19-1(a)", FinalChrgDesc: "BURGLARY"},
		{FinalStatute: "720-550/5(c)", FinalChrgDesc: "MFG/DEL CANNABIS 10-30 GRAMS"},
		{FinalStatute: "720-570/402", FinalChrgDesc: "POSS AMT CON SUB EXCEPT(A)/(D)"},
		{FinalStatute: "not-a-real-citation"},
	}

	got := make(map[string]int)
	for _, count := range CountCategories(iucr.DefaultRegistry(), convictions) {
		got[count.Name] = count.Count
	}

	assert.Equal(t, 2, got["nonviolent"], "reckless homicide and burglary")
	assert.Equal(t, 1, got["property_index"])
	assert.Equal(t, 0, got["homicide"])
	assert.Equal(t, 1, got["drug_mfg_delivery"])
	assert.Equal(t, 1, got["cannabis_mfg_delivery"])
	assert.Equal(t, 1, got["drug_possession"])
	assert.Equal(t, 0, got["cannabis_possession"])
	assert.Equal(t, 2, got["drug"])
	assert.Equal(t, 1, got[OtherCategory])
}

func TestCountCategoriesDefaultRegistry(t *testing.T) {
	registry := iucr.DefaultRegistry()
	got := CountCategories(registry, []*disposition.Conviction{{IUCRCode: "0110"}})

	require.Len(t, got, len(registry.Groups())+1)
	for _, count := range got {
		if count.Name == "homicide" {
			assert.Equal(t, 1, count.Count)
		}
		if count.Name == OtherCategory {
			assert.Equal(t, 0, count.Count)
		}
	}
}

func TestAttemptedStatutes(t *testing.T) {
	dispositions := statutes(
		"720-5/8-4(720-5/9-1)", "720-5/18-2", "38-8-4(38-9-1)",
		"720-5/8-4(720-5/9-1)", "",
	)
	assert.Equal(t, Statutes{"38-8-4(38-9-1)", "720-5/8-4(720-5/9-1)"}, AttemptedStatutes(dispositions))
}

func TestAttemptedStatutesUseChargedStatute(t *testing.T) {
	// Amended to the completed offense: still charged as an attempt.
	amended := &disposition.Disposition{Statute: "720-5/8-4(720-5/18-2)", FinalStatute: "720-5/18-2"}
	// Amended to an attempt from a completed offense: not charged as one.
	upgraded := &disposition.Disposition{Statute: "720-5/18-2", FinalStatute: "720-5/8-4(720-5/18-2)"}

	got := AttemptedStatutes([]*disposition.Disposition{amended, upgraded})
	assert.Equal(t, Statutes{"720-5/8-4(720-5/18-2)"}, got)
}

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name   string
		report Report
		want   string
	}{
		{
			name:   "statute counts",
			report: StatuteCounts{{"720-5/18-2", "ARMED ROBBERY", 3}, {"720-570/402(c)", "", 2}},
			want:   "statute,chrgdesc,count\n720-5/18-2,ARMED ROBBERY,3\n720-570/402(c),,2\n",
		},
		{
			name:   "category counts",
			report: CategoryCounts{{Name: "robbery", Label: "Robbery, armed", Count: 1}},
			want:   "category,label,count\nrobbery,\"Robbery, armed\",1\n",
		},
		{
			name:   "statutes",
			report: Statutes{"720-5/8-4(720-5/9-1)"},
			want:   "statute\n720-5/8-4(720-5/9-1)\n",
		},
		{
			name:   "empty",
			report: Statutes(nil),
			want:   "statute\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteCSV(&buf, tt.report))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
