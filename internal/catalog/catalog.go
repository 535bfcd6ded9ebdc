// Package catalog implements the in-memory beverage catalog: CRUD, sorting
// and numeric statistics. The Store is safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned when no beverage has the requested id.
	ErrNotFound = errors.New("beverage not found")

	// ErrDuplicateID is returned when creating a beverage whose id exists.
	ErrDuplicateID = errors.New("beverage with this id already exists")

	// ErrInvalidField is returned for a sort or statistics field that does
	// not exist or is not numeric.
	ErrInvalidField = errors.New("invalid field")

	// ErrValidation is returned when a beverage fails schema checks.
	ErrValidation = errors.New("invalid beverage")
)

// Beverage is one catalog entry. Volume is in millilitres.
type Beverage struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Manufacturer string  `json:"manufacturer" yaml:"manufacturer"`
	Type         string  `json:"type" yaml:"type"`
	Volume       float64 `json:"volume" yaml:"volume"`
	Price        float64 `json:"price" yaml:"price"`
	Stock        int     `json:"stock" yaml:"stock"`
}

// Validate checks the beverage schema: text fields must be non-blank and
// numeric fields must not be negative.
func (b Beverage) Validate() error {
	var problems []string
	for _, f := range []struct{ name, value string }{
		{"id", b.ID},
		{"name", b.Name},
		{"manufacturer", b.Manufacturer},
		{"type", b.Type},
	} {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+" is required")
		}
	}
	if b.Volume < 0 {
		problems = append(problems, "volume must not be negative")
	}
	if b.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if b.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Patch is a partial update. Nil fields are left unchanged. The id of a
// beverage cannot be changed.
type Patch struct {
	Name         *string  `json:"name,omitempty"`
	Manufacturer *string  `json:"manufacturer,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Volume       *float64 `json:"volume,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Stock        *int     `json:"stock,omitempty"`
}

func (p Patch) apply(b Beverage) Beverage {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Manufacturer != nil {
		b.Manufacturer = *p.Manufacturer
	}
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Volume != nil {
		b.Volume = *p.Volume
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Stock != nil {
		b.Stock = *p.Stock
	}
	return b
}

// Store holds beverages in insertion order.
type Store struct {
	mu    sync.RWMutex
	items map[string]Beverage
	order []string
}

// NewStore creates a store holding the given beverages. Invalid or duplicate
// entries are rejected.
func NewStore(initial ...Beverage) (*Store, error) {
	s := &Store{items: make(map[string]Beverage, len(initial))}
	for _, b := range initial {
		if _, err := s.Create(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Seed returns the starter catalog.
func Seed() []Beverage {
	return []Beverage{
		{ID: "1", Name: "Coca-Cola", Manufacturer: "Coca-Cola", Type: "Carbonated", Volume: 500, Price: 89, Stock: 150},
		{ID: "2", Name: "Orange juice", Manufacturer: "Dobry", Type: "Juice", Volume: 1000, Price: 120, Stock: 80},
		{ID: "3", Name: "Mineral water", Manufacturer: "Borjomi", Type: "Water", Volume: 500, Price: 95, Stock: 200},
		{ID: "4", Name: "Energy drink", Manufacturer: "Red Bull", Type: "Energy", Volume: 250, Price: 150, Stock: 60},
	}
}

// Len returns the number of beverages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get returns the beverage with the given id.
func (s *Store) Get(id string) (Beverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[id]
	if !ok {
		return Beverage{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return b, nil
}

// Create adds b to the catalog.
func (s *Store) Create(b Beverage) (Beverage, error) {
	b.ID = strings.TrimSpace(b.ID)
	if err := b.Validate(); err != nil {
		return Beverage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[b.ID]; exists {
		return Beverage{}, fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
	}
	s.items[b.ID] = b
	s.order = append(s.order, b.ID)
	return b, nil
}

// Update applies p to the beverage with the given id and returns the result.
// The update is rejected as a whole if the patched beverage is invalid.
func (s *Store) Update(id string, p Patch) (Beverage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.items[id]
	if !ok {
		return Beverage{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := p.apply(b)
	if err := updated.Validate(); err != nil {
		return Beverage{}, err
	}
	s.items[id] = updated
	return updated, nil
}

// Delete removes the beverage with the given id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Snapshot returns a copy of every beverage in insertion order.
func (s *Store) Snapshot() []Beverage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Beverage, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// List returns the beverages sorted by sortBy. An empty or unknown sortBy
// keeps insertion order; order "desc" reverses the sort, anything else is
// ascending. Sorting is stable.
func (s *Store) List(sortBy, order string) []Beverage {
	items := s.Snapshot()
	less, ok := lessFuncs[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		return items
	}
	desc := strings.EqualFold(strings.TrimSpace(order), "desc")
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
	return items
}

// SortFields lists the accepted sort_by values.
var SortFields = []string{"id", "name", "manufacturer", "type", "volume", "price", "stock"}

var lessFuncs = map[string]func(a, b Beverage) bool{
	"id":           func(a, b Beverage) bool { return a.ID < b.ID },
	"name":         func(a, b Beverage) bool { return a.Name < b.Name },
	"manufacturer": func(a, b Beverage) bool { return a.Manufacturer < b.Manufacturer },
	"type":         func(a, b Beverage) bool { return a.Type < b.Type },
	"volume":       func(a, b Beverage) bool { return a.Volume < b.Volume },
	"price":        func(a, b Beverage) bool { return a.Price < b.Price },
	"stock":        func(a, b Beverage) bool { return a.Stock < b.Stock },
}
