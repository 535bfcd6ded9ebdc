package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestStats(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		field         string
		min, max, avg float64
	}{
		{"volume", 250, 1000, 562.5},
		{"price", 89, 150, 113.5},
		{"stock", 60, 200, 122.5},
		{" Price ", 89, 150, 113.5},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			st, err := s.Stats(tt.field)
			if err != nil {
				t.Fatalf("Stats failed: %v", err)
			}
			if st.Min != tt.min || st.Max != tt.max || st.Avg != tt.avg {
				t.Errorf("got min=%v max=%v avg=%v, want %v %v %v", st.Min, st.Max, st.Avg, tt.min, tt.max, tt.avg)
			}
			if st.Count != 4 {
				t.Errorf("count: got %d, want 4", st.Count)
			}
		})
	}
}

func TestStats_InvalidField(t *testing.T) {
	for _, field := range []string{"name", "id", "colour", ""} {
		_, err := seededStore(t).Stats(field)
		if !errors.Is(err, ErrInvalidField) {
			t.Errorf("%q: got %v, want ErrInvalidField", field, err)
			continue
		}
		if !strings.Contains(err.Error(), "volume, price, stock") {
			t.Errorf("%q: message %q should list numeric fields", field, err)
		}
	}
}

func TestStats_EmptyCatalog(t *testing.T) {
	s, err := NewStore()
	if err != nil {
		t.Fatal(err)
	}

	st, err := s.Stats("price")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st != (Stat{Field: "price"}) {
		t.Errorf("got %+v, want zeros", st)
	}
	if all := s.AllStats(); len(all) != 0 {
		t.Errorf("AllStats on empty catalog: got %v", all)
	}
}

func TestAllStats(t *testing.T) {
	all := seededStore(t).AllStats()
	if len(all) != len(NumericFields) {
		t.Fatalf("got %d fields, want %d", len(all), len(NumericFields))
	}
	if all["stock"].Max != 200 || all["volume"].Min != 250 {
		t.Errorf("got %+v", all)
	}
}
