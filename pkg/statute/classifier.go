package statute

import (
	"github.com/coolbeans/convictions/pkg/ilcs"
	"github.com/coolbeans/convictions/pkg/iucr"
)

// Resolution records every stage of classifying one raw statute.
type Resolution struct {
	RawStatute string         `json:"raw_statute"`
	Repaired   string         `json:"repaired"`
	Primary    string         `json:"primary"`
	Modifier   *Modifier      `json:"modifier,omitempty"`
	Parsed     Parsed         `json:"parsed"`
	Citation   Citation       `json:"citation"`
	Offenses   []iucr.Offense `json:"offenses"`
}

// Ambiguous reports whether more than one offense matched.
func (resolution *Resolution) Ambiguous() bool {
	return len(resolution.Offenses) > 1
}

// Classifier resolves raw statutes to IUCR offenses. It holds only
// read-only tables and is safe for concurrent use.
type Classifier struct {
	repairs   *RepairTable
	stripper  *InchoateStripper
	parsers   []Parser
	crosswalk Crosswalk
	offenses  OffenseTable
}

// NewClassifier creates a classifier over the given tables. Parsers are
// tried in order: ILCS first, then ILRS.
func NewClassifier(repairs *RepairTable, crosswalk Crosswalk, offenses OffenseTable) *Classifier {
	return &Classifier{
		repairs:   repairs,
		stripper:  NewInchoateStripper(),
		parsers:   []Parser{NewILCSParser(), NewILRSParser()},
		crosswalk: crosswalk,
		offenses:  offenses,
	}
}

// Default creates a classifier over the bundled repair, crosswalk and
// offense tables.
func Default() *Classifier {
	return NewClassifier(DefaultRepairTable(), ilcs.Default(), iucr.Default())
}

// Classify returns the offenses matching raw. More than one offense may be
// returned; callers decide what to do with an ambiguous match.
//
// Errors are *FormatError, *ILCSLookupError or *IUCRLookupError.
func (classifier *Classifier) Classify(raw string) ([]iucr.Offense, error) {
	resolution, err := classifier.Resolve(raw)
	if err != nil {
		return nil, err
	}
	return resolution.Offenses, nil
}

// Resolve classifies raw and returns the intermediate results along with
// the offenses. On error the returned resolution holds the stages that
// completed.
func (classifier *Classifier) Resolve(raw string) (*Resolution, error) {
	resolution := &Resolution{RawStatute: raw}
	resolution.Repaired = classifier.repairs.Repair(raw)
	resolution.Primary, resolution.Modifier = classifier.stripper.Strip(resolution.Repaired)

	citation, err := classifier.parse(resolution, raw)
	if err != nil {
		return resolution, err
	}
	resolution.Citation = citation

	offenses, ok := LookupOffenses(classifier.offenses, citation)
	if !ok {
		return resolution, &IUCRLookupError{RawStatute: raw, Citation: citation}
	}
	resolution.Offenses = offenses
	return resolution, nil
}

// Parse runs the parsers over a repaired, stripped citation without
// resolving it.
func (classifier *Classifier) Parse(s string) (Parsed, bool) {
	for _, parser := range classifier.parsers {
		if parsed, ok := parser.Parse(s); ok {
			return parsed, true
		}
	}
	return Parsed{}, false
}

func (classifier *Classifier) parse(resolution *Resolution, raw string) (Citation, error) {
	parsed, ok := classifier.Parse(resolution.Primary)
	if !ok {
		return Citation{}, &FormatError{RawStatute: raw}
	}
	resolution.Parsed = parsed

	if parsed.Scheme == SchemeILRS {
		return ResolveLegacy(classifier.crosswalk, parsed, raw)
	}
	return Citation{
		Chapter:     parsed.Chapter,
		ActPrefix:   parsed.ActPrefix,
		Section:     parsed.Section,
		Subsections: parsed.Subsections,
	}, nil
}
