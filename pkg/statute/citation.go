// Package statute parses the Illinois statute citations recorded in court
// disposition extracts and resolves them to IUCR offense codes.
//
// Citations appear in two numbering schemes: the Illinois Compiled Statutes
// (ILCS, "720-5/9-1(a)(1)") and the superseded Illinois Revised Statutes
// (ILRS, "38-9-1"). Clerks typed them by hand for decades, so the same
// section shows up with slashes, backslashes, spaces, stray parens and,
// for inchoate offenses, a second citation packed into the same field.
// Resolution runs repair, inchoate stripping, parsing, ILRS to ILCS
// cross-referencing and offense lookup, in that order.
package statute

import (
	"fmt"
	"strings"
)

// Scheme identifies the statutory numbering scheme a citation was parsed in.
type Scheme string

const (
	SchemeILCS Scheme = "ilcs"
	SchemeILRS Scheme = "ilrs"
)

// Parsed is the token decomposition of a citation string.
// ILCS parses fill ActPrefix and Section; ILRS parses fill Paragraph.
type Parsed struct {
	Scheme      Scheme   `json:"scheme"`
	Chapter     string   `json:"chapter"`
	ActPrefix   string   `json:"act_prefix,omitempty"`
	Section     string   `json:"section,omitempty"`
	Paragraph   string   `json:"paragraph,omitempty"`
	Subsections []string `json:"subsections,omitempty"`
}

// Citation is a fully resolved ILCS citation ready for offense lookup.
type Citation struct {
	Chapter     string   `json:"chapter"`
	ActPrefix   string   `json:"act_prefix"`
	Section     string   `json:"section"`
	Subsections []string `json:"subsections,omitempty"`
}

// String formats the citation in canonical ILCS form, e.g. "720-5/9-1(a)(1)".
func (c Citation) String() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s-%s/%s", c.Chapter, c.ActPrefix, c.Section)
	for _, subsection := range c.Subsections {
		builder.WriteString("(" + subsection + ")")
	}
	return builder.String()
}

// ModifierKind classifies an inchoate offense.
type ModifierKind string

const (
	KindAttempt      ModifierKind = "attempt"
	KindConspiracy   ModifierKind = "conspiracy"
	KindSolicitation ModifierKind = "solicitation"
)

// Modifier is the inchoate-offense citation fragment stripped from a raw
// statute, e.g. "720-5/8-4".
type Modifier struct {
	Raw  string       `json:"raw"`
	Kind ModifierKind `json:"kind"`
}
