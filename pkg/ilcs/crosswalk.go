// Package ilcs provides the crosswalk from superseded Illinois Revised
// Statutes (ILRS) chapter/paragraph citations to their Illinois Compiled
// Statutes (ILCS) chapter/act/section equivalents.
package ilcs

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

//go:embed data/crosswalk.csv
var dataFS embed.FS

// Section is an ILCS section without subsections.
type Section struct {
	Chapter   string `json:"chapter"`
	ActPrefix string `json:"act_prefix"`
	Section   string `json:"section"`
}

// String formats the section as "720-5/9-1".
func (s Section) String() string {
	return s.Chapter + "-" + s.ActPrefix + "/" + s.Section
}

// Columns lists the crosswalk CSV header, in order.
var Columns = []string{"ilrs_chapter", "ilrs_paragraph", "ilcs_chapter", "ilcs_act_prefix", "ilcs_section"}

type ilrsKey struct {
	chapter   string
	paragraph string
}

// Crosswalk maps ILRS (chapter, paragraph) pairs to ILCS sections.
// It is read-only after loading and safe for concurrent use.
type Crosswalk struct {
	sections map[ilrsKey][]Section
	rows     int
}

// Load reads a crosswalk CSV with a header row naming Columns.
func Load(reader io.Reader) (*Crosswalk, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read crosswalk header: %w", err)
	}
	columnIndex, err := indexColumns(header, Columns)
	if err != nil {
		return nil, err
	}

	crosswalk := &Crosswalk{sections: make(map[ilrsKey][]Section)}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read crosswalk row %d: %w", crosswalk.rows+2, err)
		}

		key := newKey(record[columnIndex["ilrs_chapter"]], record[columnIndex["ilrs_paragraph"]])
		if key.chapter == "" || key.paragraph == "" {
			return nil, fmt.Errorf("crosswalk row %d: ilrs_chapter and ilrs_paragraph are required", crosswalk.rows+2)
		}
		crosswalk.sections[key] = append(crosswalk.sections[key], Section{
			Chapter:   strings.TrimSpace(record[columnIndex["ilcs_chapter"]]),
			ActPrefix: strings.TrimSpace(record[columnIndex["ilcs_act_prefix"]]),
			Section:   strings.TrimSpace(record[columnIndex["ilcs_section"]]),
		})
		crosswalk.rows++
	}
	return crosswalk, nil
}

// LoadFile reads a crosswalk CSV from disk.
func LoadFile(path string) (*Crosswalk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open crosswalk: %w", err)
	}
	defer file.Close()
	return Load(file)
}

var (
	defaultOnce      sync.Once
	defaultCrosswalk *Crosswalk
)

// Default returns the bundled crosswalk.
func Default() *Crosswalk {
	defaultOnce.Do(func() {
		file, err := dataFS.Open("data/crosswalk.csv")
		if err != nil {
			panic(fmt.Sprintf("ilcs: bundled crosswalk missing: %v", err))
		}
		defer file.Close()
		crosswalk, err := Load(file)
		if err != nil {
			panic(fmt.Sprintf("ilcs: bundled crosswalk invalid: %v", err))
		}
		defaultCrosswalk = crosswalk
	})
	return defaultCrosswalk
}

// LookupByILRS returns the ILCS sections for an ILRS chapter and paragraph.
// The paragraph is compared case-insensitively. The second result is false
// when the pair is not in the crosswalk.
func (crosswalk *Crosswalk) LookupByILRS(chapter, paragraph string) ([]Section, bool) {
	sections, ok := crosswalk.sections[newKey(chapter, paragraph)]
	if !ok {
		return nil, false
	}
	return append([]Section(nil), sections...), true
}

// Len returns the number of crosswalk rows.
func (crosswalk *Crosswalk) Len() int {
	return crosswalk.rows
}

func newKey(chapter, paragraph string) ilrsKey {
	return ilrsKey{
		chapter:   strings.TrimSpace(chapter),
		paragraph: strings.ToLower(strings.TrimSpace(paragraph)),
	}
}

func indexColumns(header, required []string) (map[string]int, error) {
	columnIndex := make(map[string]int, len(header))
	for i, name := range header {
		columnIndex[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := columnIndex[name]; !ok {
			return nil, fmt.Errorf("crosswalk header missing column %q", name)
		}
	}
	return columnIndex, nil
}
