package disposition

import (
	"cmp"
	"slices"
	"time"
)

// Conviction is one charge a defendant was convicted of in a case. It is
// rolled up from one or more dispositions of the same statute on the
// case's first disposition date.
type Conviction struct {
	ID int64 `json:"id,omitempty"`

	CaseNumber    string     `json:"case_number"`
	Ctlbkngno     string     `json:"ctlbkngno"`
	Fgrprntno     string     `json:"fgrprntno"`
	StatePoliceID string     `json:"statepoliceid"`
	FBIIDNo       string     `json:"fbiidno"`
	DOB           *time.Time `json:"dob,omitempty"`

	StAddress string `json:"st_address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Sex       string `json:"sex"`

	ChrgDispDate   *time.Time `json:"chrgdispdate,omitempty"`
	FinalStatute   string     `json:"final_statute"`
	FinalChrgDesc  string     `json:"final_chrgdesc"`
	FinalChrgType  string     `json:"final_chrgtype"`
	FinalChrgClass string     `json:"final_chrgclass"`
	IUCRCode       string     `json:"iucr_code"`
	IUCRCategory   string     `json:"iucr_category"`
	Inchoate       string     `json:"inchoate,omitempty"`

	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`

	Dispositions []*Disposition `json:"-"`
}

func newConviction(disposition *Disposition) *Conviction {
	return &Conviction{
		CaseNumber:     disposition.CaseNumber,
		Ctlbkngno:      disposition.Ctlbkngno,
		Fgrprntno:      disposition.Fgrprntno,
		StatePoliceID:  disposition.StatePoliceID,
		FBIIDNo:        disposition.FBIIDNo,
		DOB:            disposition.DOB,
		StAddress:      disposition.StAddress,
		City:           disposition.City,
		State:          disposition.State,
		Zipcode:        disposition.Zipcode,
		Sex:            disposition.Sex,
		ChrgDispDate:   disposition.ChrgDispDate,
		FinalStatute:   disposition.FinalStatute,
		FinalChrgDesc:  disposition.FinalChrgDesc,
		FinalChrgType:  disposition.FinalChrgType,
		FinalChrgClass: disposition.FinalChrgClass,
		IUCRCode:       disposition.IUCRCode,
		IUCRCategory:   disposition.IUCRCategory,
		Inchoate:       disposition.Inchoate,
		Lat:            disposition.Lat,
		Lon:            disposition.Lon,
	}
}

// FirstDispositionDates returns, per case number, the earliest charge
// disposition date among the case's in-analysis dispositions.
func FirstDispositionDates(dispositions []*Disposition) map[string]time.Time {
	first := make(map[string]time.Time)
	for _, disposition := range dispositions {
		if !disposition.InAnalysis() {
			continue
		}
		date, ok := first[disposition.CaseNumber]
		if !ok || disposition.ChrgDispDate.Before(date) {
			first[disposition.CaseNumber] = *disposition.ChrgDispDate
		}
	}
	return first
}

// RollUp builds convictions from dispositions. Only dispositions on a
// case's first in-analysis disposition date are considered. Within a case,
// a new conviction starts when a statute is first seen, or when a
// statute/disposition pair repeats, which is read as another count of the
// same charge. Other dispositions of a seen statute fold into the latest
// conviction.
func RollUp(dispositions []*Disposition) []*Conviction {
	first := FirstDispositionDates(dispositions)

	var initial []*Disposition
	for _, disposition := range dispositions {
		date, ok := first[disposition.CaseNumber]
		if ok && disposition.ChrgDispDate != nil && disposition.ChrgDispDate.Equal(date) {
			initial = append(initial, disposition)
		}
	}
	slices.SortStableFunc(initial, func(a, b *Disposition) int {
		return cmp.Or(
			cmp.Compare(a.CaseNumber, b.CaseNumber),
			cmp.Compare(a.FinalStatute, b.FinalStatute),
		)
	})

	type statuteDisposition struct {
		statute     string
		disposition string
	}

	var (
		convictions []*Conviction
		current     *Conviction
		caseNumber  string
		statuteSeen map[string]bool
		pairSeen    map[statuteDisposition]bool
	)
	for _, disposition := range initial {
		if statuteSeen == nil || disposition.CaseNumber != caseNumber {
			caseNumber = disposition.CaseNumber
			statuteSeen = make(map[string]bool)
			pairSeen = make(map[statuteDisposition]bool)
			current = nil
		}

		pair := statuteDisposition{disposition.FinalStatute, disposition.ChrgDisp}
		if !statuteSeen[disposition.FinalStatute] || pairSeen[pair] {
			current = newConviction(disposition)
			convictions = append(convictions, current)
		}
		current.Dispositions = append(current.Dispositions, disposition)

		pairSeen[pair] = true
		statuteSeen[disposition.FinalStatute] = true
	}
	return convictions
}
