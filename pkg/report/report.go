// Package report aggregates enriched dispositions and convictions into the
// tables published with the analysis.
package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/coolbeans/convictions/pkg/disposition"
	"github.com/coolbeans/convictions/pkg/iucr"
)

// OtherCategory counts convictions that fall in no category group.
const OtherCategory = "other"

// Report is a table that can be written as CSV.
type Report interface {
	Header() []string
	Rows() [][]string
}

// WriteCSV writes the report's header and rows.
func WriteCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(report.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(report.Rows()); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

// StatuteCount is the number of convictions under a statute and charge
// description.
type StatuteCount struct {
	Statute  string `json:"statute"`
	ChrgDesc string `json:"chrgdesc"`
	Count    int    `json:"count"`
}

// StatuteCounts is a list of statute counts, most common first.
type StatuteCounts []StatuteCount

// Header implements Report.
func (counts StatuteCounts) Header() []string {
	return []string{"statute", "chrgdesc", "count"}
}

// Rows implements Report.
func (counts StatuteCounts) Rows() [][]string {
	rows := make([][]string, len(counts))
	for i, count := range counts {
		rows[i] = []string{count.Statute, count.ChrgDesc, strconv.Itoa(count.Count)}
	}
	return rows
}

// MostCommonStatutes counts convictions by final statute and charge
// description and returns the n most common, ties broken by statute then
// description. n <= 0 returns every pair. Convictions without a final
// statute are not counted.
func MostCommonStatutes(convictions []*disposition.Conviction, n int) StatuteCounts {
	type key struct{ statute, chrgDesc string }
	totals := make(map[key]int)
	for _, conviction := range convictions {
		if conviction.FinalStatute == "" {
			continue
		}
		totals[key{conviction.FinalStatute, conviction.FinalChrgDesc}]++
	}

	counts := make(StatuteCounts, 0, len(totals))
	for k, count := range totals {
		counts = append(counts, StatuteCount{Statute: k.statute, ChrgDesc: k.chrgDesc, Count: count})
	}
	slices.SortFunc(counts, func(a, b StatuteCount) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			strings.Compare(a.Statute, b.Statute),
			strings.Compare(a.ChrgDesc, b.ChrgDesc))
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// CategoryCount is the number of convictions in a category group.
type CategoryCount struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CategoryCounts lists category counts in registry order with the
// OtherCategory bucket last.
type CategoryCounts []CategoryCount

// Header implements Report.
func (counts CategoryCounts) Header() []string {
	return []string{"category", "label", "count"}
}

// Rows implements Report.
func (counts CategoryCounts) Rows() [][]string {
	rows := make([][]string, len(counts))
	for i, count := range counts {
		rows[i] = []string{count.Name, count.Label, strconv.Itoa(count.Count)}
	}
	return rows
}

// CountCategories counts convictions per category group of registry. A
// conviction is counted in every group containing its IUCR code. One
// without a code is counted in every group matching its final statute or
// charge description. A conviction that matches no group is counted as
// other.
func CountCategories(registry *iucr.Registry, convictions []*disposition.Conviction) CategoryCounts {
	groups := registry.Groups()
	counts := make(CategoryCounts, len(groups), len(groups)+1)
	index := make(map[string]int, len(groups))
	for i, group := range groups {
		counts[i] = CategoryCount{Name: group.Name, Label: group.Label}
		index[group.Name] = i
	}

	other := 0
	for _, conviction := range convictions {
		names := registry.GroupsForCharge(iucr.Charge{
			Code:        conviction.IUCRCode,
			Statute:     conviction.FinalStatute,
			Description: conviction.FinalChrgDesc,
		})
		if len(names) == 0 {
			other++
			continue
		}
		for _, name := range names {
			counts[index[name]].Count++
		}
	}
	return append(counts, CategoryCount{Name: OtherCategory, Label: "Other", Count: other})
}

// Statutes is a sorted list of distinct statutes.
type Statutes []string

// Header implements Report.
func (statutes Statutes) Header() []string {
	return []string{"statute"}
}

// Rows implements Report.
func (statutes Statutes) Rows() [][]string {
	rows := make([][]string, len(statutes))
	for i, statute := range statutes {
		rows[i] = []string{statute}
	}
	return rows
}

// attemptSection appears in every statute packed with the attempt section,
// in either citation scheme.
const attemptSection = "8-4"

// AttemptedStatutes returns the distinct statutes, as charged, that cite
// the attempt section.
func AttemptedStatutes(dispositions []*disposition.Disposition) Statutes {
	seen := make(map[string]bool)
	var statutes Statutes
	for _, d := range dispositions {
		if !strings.Contains(d.Statute, attemptSection) || seen[d.Statute] {
			continue
		}
		seen[d.Statute] = true
		statutes = append(statutes, d.Statute)
	}
	slices.Sort(statutes)
	return statutes
}
