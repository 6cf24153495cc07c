package statute

import "fmt"

// FormatError reports a statute that neither the ILCS nor the ILRS parser
// can decompose after repair and inchoate stripping.
type FormatError struct {
	RawStatute string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Can't understand statute '%s'", e.RawStatute)
}

// ILCSLookupError reports an ILRS citation with no ILCS cross-reference,
// even after truncating the paragraph to its primary component.
type ILCSLookupError struct {
	Chapter    string
	Paragraph  string
	RawStatute string
}

func (e *ILCSLookupError) Error() string {
	return fmt.Sprintf("Unable to find ILCS statute for raw statute '%s' (chapter %s, paragraph %s)",
		e.RawStatute, e.Chapter, e.Paragraph)
}

// IUCRLookupError reports a resolved citation with no matching IUCR offense.
type IUCRLookupError struct {
	RawStatute string
	Citation   Citation
}

func (e *IUCRLookupError) Error() string {
	return fmt.Sprintf("Cannot find IUCR offense for statute '%s'", e.RawStatute)
}
