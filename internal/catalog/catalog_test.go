package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Seed()...)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return s
}

func ids(items []Beverage) string {
	out := make([]string, len(items))
	for i, b := range items {
		out[i] = b.ID
	}
	return strings.Join(out, ",")
}

func TestSeed(t *testing.T) {
	s := seededStore(t)
	if s.Len() != 4 {
		t.Fatalf("got %d beverages, want 4", s.Len())
	}
	b, err := s.Get("4")
	if err != nil {
		t.Fatal(err)
	}
	if b.Manufacturer != "Red Bull" || b.Volume != 250 || b.Stock != 60 {
		t.Errorf("beverage 4: got %+v", b)
	}
}

func TestCreate(t *testing.T) {
	s := seededStore(t)

	b := Beverage{ID: " 5 ", Name: "Kvass", Manufacturer: "Ochakovo", Type: "Fermented", Volume: 1500, Price: 110, Stock: 30}
	got, err := s.Create(b)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.ID != "5" {
		t.Errorf("id not trimmed: %q", got.ID)
	}
	if ids(s.List("", "")) != "1,2,3,4,5" {
		t.Errorf("insertion order: got %s", ids(s.List("", "")))
	}

	if _, err := s.Create(b); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate create: got %v, want ErrDuplicateID", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	valid := Beverage{ID: "x", Name: "n", Manufacturer: "m", Type: "t", Volume: 1, Price: 1, Stock: 1}

	tests := []struct {
		name   string
		mutate func(*Beverage)
		field  string
	}{
		{"blank id", func(b *Beverage) { b.ID = "  " }, "id"},
		{"blank name", func(b *Beverage) { b.Name = "" }, "name"},
		{"blank manufacturer", func(b *Beverage) { b.Manufacturer = "" }, "manufacturer"},
		{"blank type", func(b *Beverage) { b.Type = "" }, "type"},
		{"negative volume", func(b *Beverage) { b.Volume = -1 }, "volume"},
		{"negative price", func(b *Beverage) { b.Price = -0.5 }, "price"},
		{"negative stock", func(b *Beverage) { b.Stock = -3 }, "stock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seededStore(t)
			b := valid
			tt.mutate(&b)

			_, err := s.Create(b)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
			if s.Len() != 4 {
				t.Errorf("invalid beverage was stored")
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	if _, err := seededStore(t).Get("99"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	s := seededStore(t)

	price := 99.5
	name := "Coca-Cola Zero"
	got, err := s.Update("1", Patch{Price: &price, Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Price != 99.5 || got.Name != "Coca-Cola Zero" {
		t.Errorf("patched fields: got %+v", got)
	}
	if got.Volume != 500 || got.Stock != 150 || got.ID != "1" {
		t.Errorf("untouched fields changed: got %+v", got)
	}

	stored, _ := s.Get("1")
	if stored != got {
		t.Errorf("stored %+v, returned %+v", stored, got)
	}
}

func TestUpdate_Errors(t *testing.T) {
	s := seededStore(t)

	if _, err := s.Update("99", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}

	stock := -1
	if _, err := s.Update("2", Patch{Stock: &stock}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative stock: got %v, want ErrValidation", err)
	}
	if b, _ := s.Get("2"); b.Stock != 80 {
		t.Errorf("rejected update was applied: stock=%d", b.Stock)
	}
}

func TestDelete(t *testing.T) {
	s := seededStore(t)

	if err := s.Delete("2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ids(s.List("", "")) != "1,3,4" {
		t.Errorf("after delete: got %s", ids(s.List("", "")))
	}
	if err := s.Delete("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestList_Sort(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		sortBy, order string
		want          string
	}{
		{"", "", "1,2,3,4"},
		{"price", "asc", "1,3,2,4"},
		{"price", "desc", "4,2,3,1"},
		{"volume", "", "4,1,3,2"},     // stable for equal volumes
		{"volume", "desc", "2,1,3,4"}, // stable for equal volumes
		{"stock", "DESC", "3,1,2,4"},
		{"manufacturer", "asc", "3,1,2,4"},
		{"unknown", "desc", "1,2,3,4"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.sortBy, tt.order), func(t *testing.T) {
			if got := ids(s.List(tt.sortBy, tt.order)); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	s := seededStore(t)
	items := s.List("", "")
	items[0].Name = "changed"

	if b, _ := s.Get("1"); b.Name == "changed" {
		t.Error("List exposed internal storage")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := seededStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			if _, err := s.Create(Beverage{ID: id, Name: "n", Manufacturer: "m", Type: "t", Volume: 1, Price: 1, Stock: i}); err != nil {
				t.Errorf("Create %s: %v", id, err)
			}
		}(i)
		go func() {
			defer wg.Done()
			_ = s.List("stock", "desc")
			_ = s.AllStats()
		}()
	}
	wg.Wait()

	if s.Len() != 24 {
		t.Errorf("got %d beverages, want 24", s.Len())
	}
}
