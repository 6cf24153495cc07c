// Package iucr provides the Illinois Uniform Crime Reporting (IUCR) offense
// table keyed by ILCS citation, and the crime categories reports group
// offense codes into.
package iucr

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
)

//go:embed data/offenses.csv
var dataFS embed.FS

// Offense is one IUCR offense classification.
type Offense struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// Index is true for offenses counted in the FBI crime index.
	Index bool `json:"index"`
}

// Columns lists the offense CSV header, in order.
var Columns = []string{
	"ilcs_chapter", "ilcs_act_prefix", "ilcs_section", "ilcs_subsection",
	"code", "category", "description", "index",
}

var subsectionPathPattern = regexp.MustCompile(`[()\s]+`)

// Table maps ILCS citations to IUCR offenses. It is read-only after
// loading and safe for concurrent use.
type Table struct {
	offenses map[string][]Offense
	codes    map[string]Offense
	rows     int
}

// Load reads an offense CSV with a header row naming Columns.
// ilcs_subsection holds the parenthesized path, e.g. "(a)(1)".
func Load(reader io.Reader) (*Table, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read offense header: %w", err)
	}
	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range Columns {
		if _, ok := columnIndex[name]; !ok {
			return nil, fmt.Errorf("offense header missing column %q", name)
		}
	}

	table := &Table{
		offenses: make(map[string][]Offense),
		codes:    make(map[string]Offense),
	}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read offense row %d: %w", table.rows+2, err)
		}
		field := func(name string) string {
			return strings.TrimSpace(record[columnIndex[name]])
		}

		offense := Offense{
			Code:        field("code"),
			Category:    field("category"),
			Description: field("description"),
			Index:       strings.EqualFold(field("index"), "I"),
		}
		if offense.Code == "" {
			return nil, fmt.Errorf("offense row %d: code is required", table.rows+2)
		}
		key := tableKey(field("ilcs_chapter"), field("ilcs_act_prefix"), field("ilcs_section"),
			SplitSubsectionPath(field("ilcs_subsection"))...)
		table.offenses[key] = append(table.offenses[key], offense)
		table.codes[offense.Code] = offense
		table.rows++
	}
	return table, nil
}

// LoadFile reads an offense CSV from disk.
func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open offense table: %w", err)
	}
	defer file.Close()
	return Load(file)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the bundled offense table.
func Default() *Table {
	defaultOnce.Do(func() {
		file, err := dataFS.Open("data/offenses.csv")
		if err != nil {
			panic(fmt.Sprintf("iucr: bundled offense table missing: %v", err))
		}
		defer file.Close()
		table, err := Load(file)
		if err != nil {
			panic(fmt.Sprintf("iucr: bundled offense table invalid: %v", err))
		}
		defaultTable = table
	})
	return defaultTable
}

// LookupByILCS returns every offense recorded for the exact citation.
// Section and subsections compare case-insensitively. More than one offense
// may match; the second result is false when none does.
func (table *Table) LookupByILCS(chapter, actPrefix, section string, subsections ...string) ([]Offense, bool) {
	offenses, ok := table.offenses[tableKey(chapter, actPrefix, section, subsections...)]
	if !ok {
		return nil, false
	}
	return append([]Offense(nil), offenses...), true
}

// LookupCode returns the offense with the given IUCR code.
func (table *Table) LookupCode(code string) (Offense, bool) {
	offense, ok := table.codes[code]
	return offense, ok
}

// Len returns the number of table rows.
func (table *Table) Len() int {
	return table.rows
}

// SplitSubsectionPath decomposes "(a)(1)" into ["a", "1"].
func SplitSubsectionPath(path string) []string {
	var subsections []string
	for _, token := range subsectionPathPattern.Split(path, -1) {
		if token != "" {
			subsections = append(subsections, strings.ToLower(token))
		}
	}
	return subsections
}

func tableKey(chapter, actPrefix, section string, subsections ...string) string {
	parts := []string{
		strings.TrimSpace(chapter),
		strings.TrimSpace(actPrefix),
		strings.ToLower(strings.TrimSpace(section)),
	}
	for _, subsection := range subsections {
		parts = append(parts, strings.ToLower(strings.TrimSpace(subsection)))
	}
	return strings.Join(parts, "|")
}
