package address

import (
	"errors"
	"sync"
	"testing"
)

func TestGeocoderAddress(t *testing.T) {
	tests := []struct {
		name    string
		street  string
		zipcode string
		city    string
		state   string
		want    string
		wantErr error
	}{
		{"zipcode preferred", "1234 N MAIN ST", "60601", "CHICAGO", "IL", "1234 N MAIN ST,60601", nil},
		{"city and state", "1234 N MAIN ST", "", "CHICAGO", "IL", "1234 N MAIN ST,CHICAGO,IL", nil},
		{"no street", "", "60601", "CHICAGO", "IL", "", ErrNoStreet},
		{"city without state", "1234 N MAIN ST", "", "CHICAGO", "", "", ErrNoLocality},
		{"nothing", "1234 N MAIN ST", "", "", "", "", ErrNoLocality},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GeocoderAddress(tc.street, tc.zipcode, tc.city, tc.state)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Expected error %v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBlockNumber(t *testing.T) {
	tests := map[string]string{
		"1234":  "1200",
		"100":   "100",
		"199":   "100",
		"99":    "0",
		"5":     "0",
		"":      "0",
		"12345": "12300",
	}
	for input, want := range tests {
		if got := BlockNumber(input); got != want {
			t.Errorf("BlockNumber(%q): expected %q, got %q", input, want, got)
		}
	}
}

func TestAnonymizeWithParser(t *testing.T) {
	calls := 0
	parse := func(address string) []Component {
		calls++
		return []Component{
			{Label: LabelAddressNumber, Value: "1234"},
			{Label: LabelAddressNumberSuffix, Value: "B"},
			{Label: LabelStreet, Value: "N"},
			{Label: LabelStreet, Value: "MAIN"},
			{Label: LabelOccupancyType, Value: "APT"},
			{Label: LabelOccupancyIdentifier, Value: "3"},
		}
	}

	anonymizer := NewAnonymizerWithParser(parse)
	if got := anonymizer.Anonymize("1234B N MAIN APT 3"); got != "1200 N MAIN" {
		t.Errorf("Expected %q, got %q", "1200 N MAIN", got)
	}
	anonymizer.Anonymize("1234B N MAIN APT 3")
	if calls != 1 {
		t.Errorf("Expected 1 parse for a memoized address, got %d", calls)
	}
	if anonymizer.Len() != 1 {
		t.Errorf("Expected 1 cached address, got %d", anonymizer.Len())
	}
}

func TestAnonymizerConcurrentUse(t *testing.T) {
	anonymizer := NewAnonymizer()
	addresses := []string{"1234 N MAIN ST", "55 W ELM ST", "2000 S STATE ST APT 4"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, address := range addresses {
				anonymizer.Anonymize(address)
			}
		}()
	}
	wg.Wait()

	if anonymizer.Len() != len(addresses) {
		t.Errorf("Expected %d cached addresses, got %d", len(addresses), anonymizer.Len())
	}
}
