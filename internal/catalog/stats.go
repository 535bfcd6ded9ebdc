package catalog

import (
	"fmt"
	"strings"
)

// NumericFields are the fields statistics can be computed over.
var NumericFields = []string{"volume", "price", "stock"}

// Stat summarises one numeric field.
type Stat struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

func numericValue(b Beverage, field string) (float64, bool) {
	switch field {
	case "volume":
		return b.Volume, true
	case "price":
		return b.Price, true
	case "stock":
		return float64(b.Stock), true
	}
	return 0, false
}

// Stats returns min, max and average of field over the catalog. An empty
// catalog yields zeros.
func (s *Store) Stats(field string) (Stat, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if _, ok := numericValue(Beverage{}, field); !ok {
		return Stat{}, fmt.Errorf("%w: field must be one of: %s", ErrInvalidField, strings.Join(NumericFields, ", "))
	}
	return summarise(s.Snapshot(), field), nil
}

// AllStats returns statistics for every numeric field that has values. Fields
// are omitted when the catalog is empty.
func (s *Store) AllStats() map[string]Stat {
	items := s.Snapshot()
	out := make(map[string]Stat, len(NumericFields))
	if len(items) == 0 {
		return out
	}
	for _, field := range NumericFields {
		out[field] = summarise(items, field)
	}
	return out
}

func summarise(items []Beverage, field string) Stat {
	st := Stat{Field: field}
	var sum float64
	for i, b := range items {
		v, _ := numericValue(b, field)
		if i == 0 {
			st.Min, st.Max = v, v
		} else {
			st.Min = min(st.Min, v)
			st.Max = max(st.Max, v)
		}
		sum += v
	}
	st.Count = len(items)
	if st.Count > 0 {
		st.Avg = sum / float64(st.Count)
	}
	return st
}
