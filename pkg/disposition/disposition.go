package disposition

import (
	"fmt"
	"strings"
	"time"

	"github.com/coolbeans/convictions/pkg/address"
	"github.com/coolbeans/convictions/pkg/cleaner"
)

// AnalysisStart is the first initial and disposition date included in the
// analysis.
var AnalysisStart = time.Date(2005, time.January, 1, 0, 0, 0, 0, time.UTC)

// Disposition is a cleaned disposition record.
type Disposition struct {
	ID int64 `json:"id,omitempty"`

	CaseNumber     string     `json:"case_number"`
	SequenceNumber string     `json:"sequence_number"`
	Ctlbkngno      string     `json:"ctlbkngno"`
	Fgrprntno      string     `json:"fgrprntno"`
	StatePoliceID  string     `json:"statepoliceid"`
	FBIIDNo        string     `json:"fbiidno"`
	DOB            *time.Time `json:"dob,omitempty"`

	StAddress    string `json:"st_address"`
	RawCityState string `json:"raw_city_state"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`

	ArrestDate   *time.Time `json:"arrest_date,omitempty"`
	InitialDate  *time.Time `json:"initial_date,omitempty"`
	ChrgDispDate *time.Time `json:"chrgdispdate,omitempty"`

	Sex string `json:"sex"`

	Statute           string `json:"statute"`
	ChrgDesc          string `json:"chrgdesc"`
	ChrgType          string `json:"chrgtype"`
	ChrgType2         string `json:"chrgtype2"`
	ChrgClass         string `json:"chrgclass"`
	ChrgDisp          string `json:"chrgdisp"`
	AmmndChargStatute string `json:"ammndchargstatute"`
	AmmndChrgDescr    string `json:"ammndchrgdescr"`
	AmmndChrgType     string `json:"ammndchrgtype"`
	AmmndChrgClass    string `json:"ammndchrgclass"`

	MinSent   Sentence `json:"minsent"`
	MaxSent   Sentence `json:"maxsent"`
	AmtOfFine *int     `json:"amtoffine,omitempty"`

	// Final* hold the amended value when there is one, otherwise the
	// original.
	FinalStatute   string `json:"final_statute"`
	FinalChrgDesc  string `json:"final_chrgdesc"`
	FinalChrgType  string `json:"final_chrgtype"`
	FinalChrgClass string `json:"final_chrgclass"`

	IUCRCode     string `json:"iucr_code"`
	IUCRCategory string `json:"iucr_category"`
	Inchoate     string `json:"inchoate,omitempty"`

	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// FieldError records a raw field that could not be parsed.
type FieldError struct {
	CaseNumber string
	Field      string
	Value      string
	Err        error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("error parsing %q for case %q: %v", e.Field, e.CaseNumber, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FieldErrors collects the field errors of one record.
type FieldErrors []*FieldError

func (errs FieldErrors) Error() string {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

type fieldLoader struct {
	field string
	load  func(d *Disposition, value string) error
}

// fieldLoaders is run in order; amended fields come after the originals
// they override.
var fieldLoaders = []fieldLoader{
	{"case_number", func(d *Disposition, v string) error { d.CaseNumber = v; return nil }},
	{"sequence_number", func(d *Disposition, v string) error { d.SequenceNumber = v; return nil }},
	{"st_address", func(d *Disposition, v string) error { d.StAddress = v; return nil }},
	{"city_state", loadCityState},
	{"zipcode", func(d *Disposition, v string) error { d.Zipcode = ParseZipcode(v); return nil }},
	{"ctlbkngno", func(d *Disposition, v string) error { d.Ctlbkngno = v; return nil }},
	{"fgrprntno", func(d *Disposition, v string) error { d.Fgrprntno = v; return nil }},
	{"statepoliceid", func(d *Disposition, v string) error { d.StatePoliceID = v; return nil }},
	{"fbiidno", func(d *Disposition, v string) error { d.FBIIDNo = v; return nil }},
	{"dob", dateLoader(func(d *Disposition) **time.Time { return &d.DOB })},
	{"arrest_date", dateLoader(func(d *Disposition) **time.Time { return &d.ArrestDate })},
	{"initial_date", dateLoader(func(d *Disposition) **time.Time { return &d.InitialDate })},
	{"sex", func(d *Disposition, v string) (err error) { d.Sex, err = ParseSex(v); return err }},
	{"statute", func(d *Disposition, v string) error {
		d.Statute = v
		d.FinalStatute = override(d.FinalStatute, v)
		return nil
	}},
	{"chrgdesc", func(d *Disposition, v string) error {
		d.ChrgDesc = v
		d.FinalChrgDesc = override(d.FinalChrgDesc, v)
		return nil
	}},
	{"chrgtype", func(d *Disposition, v string) error {
		chargeType, err := ParseChargeType(v)
		if err != nil {
			return err
		}
		d.ChrgType = chargeType
		d.FinalChrgType = override(d.FinalChrgType, chargeType)
		return nil
	}},
	{"chrgtype2", func(d *Disposition, v string) error { d.ChrgType2 = v; return nil }},
	{"chrgclass", func(d *Disposition, v string) error {
		chargeClass, err := ParseChargeClass(v)
		if err != nil {
			return err
		}
		d.ChrgClass = chargeClass
		d.FinalChrgClass = override(d.FinalChrgClass, chargeClass)
		return nil
	}},
	{"chrgdisp", func(d *Disposition, v string) error { d.ChrgDisp = v; return nil }},
	{"chrgdispdate", dateLoader(func(d *Disposition) **time.Time { return &d.ChrgDispDate })},
	{"ammndchargstatute", func(d *Disposition, v string) error {
		d.AmmndChargStatute = v
		d.FinalStatute = override(d.FinalStatute, v)
		return nil
	}},
	{"ammndchrgdescr", func(d *Disposition, v string) error {
		d.AmmndChrgDescr = v
		d.FinalChrgDesc = override(d.FinalChrgDesc, v)
		return nil
	}},
	{"ammndchrgtype", func(d *Disposition, v string) error {
		chargeType, err := ParseChargeType(v)
		if err != nil {
			return err
		}
		d.AmmndChrgType = chargeType
		d.FinalChrgType = override(d.FinalChrgType, chargeType)
		return nil
	}},
	{"ammndchrgclass", func(d *Disposition, v string) error {
		chargeClass, err := ParseChargeClass(v)
		if err != nil {
			return err
		}
		d.AmmndChrgClass = chargeClass
		d.FinalChrgClass = override(d.FinalChrgClass, chargeClass)
		return nil
	}},
	{"minsent", func(d *Disposition, v string) (err error) { d.MinSent, err = ParseSentence(v); return err }},
	{"maxsent", func(d *Disposition, v string) (err error) { d.MaxSent, err = ParseSentence(v); return err }},
	{"amtoffine", func(d *Disposition, v string) (err error) { d.AmtOfFine, err = ParseInt(v); return err }},
}

// Load builds a Disposition from a raw row. Every field is loaded even
// when an earlier one fails; the returned FieldErrors, if any, list the
// fields that could not be parsed. Unparseable dates are left nil.
func Load(raw Raw) (*Disposition, FieldErrors) {
	disposition := &Disposition{}
	var errs FieldErrors
	for _, loader := range fieldLoaders {
		value := raw.Get(loader.field)
		if err := loader.load(disposition, value); err != nil {
			errs = append(errs, &FieldError{
				CaseNumber: raw.Get("case_number"),
				Field:      loader.field,
				Value:      value,
				Err:        err,
			})
		}
	}
	return disposition, errs
}

func loadCityState(d *Disposition, value string) error {
	d.RawCityState = value
	d.City, d.State = cleaner.ParseCityState(value)
	if d.State == "" {
		d.State = cleaner.DetectState(d.City)
	}
	return nil
}

func dateLoader(field func(d *Disposition) **time.Time) func(d *Disposition, value string) error {
	return func(d *Disposition, value string) error {
		date, err := ParseDate(value)
		*field(d) = date
		return err
	}
}

func override(current, value string) string {
	if value != "" {
		return value
	}
	return current
}

// GeocoderAddress returns the query string used to geocode this
// disposition's address.
func (disposition *Disposition) GeocoderAddress() (string, error) {
	return address.GeocoderAddress(disposition.StAddress, disposition.Zipcode, disposition.City, disposition.State)
}

// HasGeocodableAddress reports whether the record has a street address, a
// zipcode and a city or state.
func (disposition *Disposition) HasGeocodableAddress() bool {
	if disposition.StAddress == "" || disposition.Zipcode == "" {
		return false
	}
	return disposition.State != "" || disposition.City != ""
}

// HasBadAddress reports whether the record lacks a zipcode and either the
// city or the state.
func (disposition *Disposition) HasBadAddress() bool {
	return disposition.Zipcode == "" && (disposition.State == "" || disposition.City == "")
}

// Geocoded reports whether coordinates have been set.
func (disposition *Disposition) Geocoded() bool {
	return disposition.Lat != nil && disposition.Lon != nil
}

// InAnalysis reports whether both the initial date and the charge
// disposition date are on or after AnalysisStart.
func (disposition *Disposition) InAnalysis() bool {
	if disposition.InitialDate == nil || disposition.ChrgDispDate == nil {
		return false
	}
	return !disposition.InitialDate.Before(AnalysisStart) && !disposition.ChrgDispDate.Before(AnalysisStart)
}
