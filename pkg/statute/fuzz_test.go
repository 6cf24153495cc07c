package statute

import (
	"errors"
	"strings"
	"testing"
)

// FuzzStripModifier checks that stripping never panics and that a stripped
// modifier is always reported with a kind.
// Run with: go test -fuzz=FuzzStripModifier -fuzztime=30s ./pkg/statute/...
func FuzzStripModifier(f *testing.F) {
	seeds := []string{
		"720-5/8-4 (720-5/9-1)",
		"38-8-4(38-9-1)",
		"9-1,5/8-4",
		"720-5-4(720-5/18-2)",
		"(8-4)(",
		"{}",
		"(",
		"",
		"8-4",
		"38-8-49",
		"720-5/8-4\x1a",
		strings.Repeat("(", 100),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data string) {
		primary, modifier := StripModifier(data)
		if modifier == nil {
			if primary != data {
				t.Errorf("Expected %q unchanged without a modifier, got %q", data, primary)
			}
			return
		}
		if modifier.Kind == "" {
			t.Error("Modifier has empty kind")
		}
	})
}

// FuzzClassify checks that classification never panics on caller input
// and only returns the documented error types.
// Run with: go test -fuzz=FuzzClassify -fuzztime=30s ./pkg/statute/...
func FuzzClassify(f *testing.F) {
	seeds := []string{
		"38 9-1E",
		"56.5-704-D",
		"720-570/402(c)",
		"not-a-real-citation",
		"720-5/8-4(720-5/9-1(a)(1))",
		"625 5 11 501 A 2",
		"38-",
		"720-5/",
		"56.5",
		"121.5-262",
		"\x00\xff",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	classifier := Default()
	f.Fuzz(func(t *testing.T, data string) {
		offenses, err := classifier.Classify(data)
		if err == nil {
			if len(offenses) == 0 {
				t.Errorf("Classify(%q) returned no offenses and no error", data)
			}
			return
		}

		var formatErr *FormatError
		var ilcsErr *ILCSLookupError
		var iucrErr *IUCRLookupError
		if !errors.As(err, &formatErr) && !errors.As(err, &ilcsErr) && !errors.As(err, &iucrErr) {
			t.Errorf("Classify(%q) returned unexpected error type %T", data, err)
		}
	})
}
