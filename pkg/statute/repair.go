package statute

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/repairs.yaml
var dataFS embed.FS

// RepairEntry maps one known-malformed raw statute to its corrected form.
type RepairEntry struct {
	Raw   string `yaml:"raw"`
	Fixed string `yaml:"fixed"`
}

// RepairTable fixes known badly formed statutes that the rule-based parsers
// can't decompose. A table is read-only after loading.
type RepairTable struct {
	fixes map[string]string
}

// LoadRepairTable reads a YAML list of raw/fixed entries.
// Duplicate raw keys are rejected.
func LoadRepairTable(reader io.Reader) (*RepairTable, error) {
	var entries []RepairEntry
	if err := yaml.NewDecoder(reader).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse repair table: %w", err)
	}

	table := &RepairTable{fixes: make(map[string]string, len(entries))}
	for i, entry := range entries {
		if entry.Raw == "" || entry.Fixed == "" {
			return nil, fmt.Errorf("repair entry %d: raw and fixed are required", i)
		}
		if _, exists := table.fixes[entry.Raw]; exists {
			return nil, fmt.Errorf("repair entry %d: duplicate raw statute %q", i, entry.Raw)
		}
		table.fixes[entry.Raw] = entry.Fixed
	}
	return table, nil
}

// LoadRepairFile reads a repair table from a YAML file.
func LoadRepairFile(path string) (*RepairTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repair table: %w", err)
	}
	defer file.Close()
	return LoadRepairTable(file)
}

var (
	defaultRepairsOnce  sync.Once
	defaultRepairsTable *RepairTable
)

// DefaultRepairTable returns the bundled repair table.
func DefaultRepairTable() *RepairTable {
	defaultRepairsOnce.Do(func() {
		file, err := dataFS.Open("data/repairs.yaml")
		if err != nil {
			panic(fmt.Sprintf("statute: bundled repair table missing: %v", err))
		}
		defer file.Close()
		table, err := LoadRepairTable(file)
		if err != nil {
			panic(fmt.Sprintf("statute: bundled repair table invalid: %v", err))
		}
		defaultRepairsTable = table
	})
	return defaultRepairsTable
}

// Repair returns the corrected form of s, trying an exact match before the
// lower-cased form. Statutes without an entry are returned unchanged.
func (table *RepairTable) Repair(s string) string {
	if fixed, ok := table.fixes[s]; ok {
		return fixed
	}
	if fixed, ok := table.fixes[strings.ToLower(s)]; ok {
		return fixed
	}
	return s
}

// Len returns the number of entries.
func (table *RepairTable) Len() int {
	return len(table.fixes)
}

// Entries returns every entry in no particular order.
func (table *RepairTable) Entries() []RepairEntry {
	entries := make([]RepairEntry, 0, len(table.fixes))
	for raw, fixed := range table.fixes {
		entries = append(entries, RepairEntry{Raw: raw, Fixed: fixed})
	}
	return entries
}
