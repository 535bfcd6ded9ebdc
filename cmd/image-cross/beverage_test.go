package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ironsheep/image-cross/internal/catalog"
	"github.com/ironsheep/image-cross/internal/httpapi"
)

func newCatalogServer(t *testing.T) (*httptest.Server, *catalog.Store) {
	t.Helper()
	store, err := catalog.NewStore(catalog.Seed()...)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(httpapi.New(httpapi.Options{Catalog: store}).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func TestParseBeverage(t *testing.T) {
	t.Parallel()

	b, err := parseBeverage([]string{"5", "Lemonade", "Fanta", "Carbonated", "330.0", "75", "100"})
	if err != nil {
		t.Fatalf("parseBeverage failed: %v", err)
	}
	want := catalog.Beverage{ID: "5", Name: "Lemonade", Manufacturer: "Fanta", Type: "Carbonated", Volume: 330, Price: 75, Stock: 100}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}

	bad := [][]string{
		{"5", "Lemonade", "Fanta", "Carbonated", "big", "75", "100"},
		{"5", "Lemonade", "Fanta", "Carbonated", "330", "cheap", "100"},
		{"5", "Lemonade", "Fanta", "Carbonated", "330", "75", "1.5"},
		{"5", "", "Fanta", "Carbonated", "330", "75", "100"},
		{"5", "Lemonade"},
	}
	for _, fields := range bad {
		if _, err := parseBeverage(fields); err == nil {
			t.Errorf("expected error for %v", fields)
		}
	}
}

func TestPromptBeverage(t *testing.T) {
	t.Parallel()

	in := strings.NewReader("6\nTea\nLipton\nIced tea\n500\n60\n30\n")
	var out strings.Builder
	b, err := promptBeverage(in, &out)
	if err != nil {
		t.Fatalf("promptBeverage failed: %v", err)
	}
	if b.ID != "6" || b.Type != "Iced tea" || b.Stock != 30 {
		t.Errorf("unexpected beverage %+v", b)
	}
	if !strings.Contains(out.String(), "Manufacturer: ") {
		t.Errorf("expected prompts in output, got %q", out.String())
	}

	if _, err := promptBeverage(strings.NewReader("6\nTea\n"), &out); err == nil {
		t.Error("expected error for truncated input")
	}
}

func TestPostBeverage(t *testing.T) {
	srv, store := newCatalogServer(t)

	b := catalog.Beverage{ID: "5", Name: "Lemonade", Manufacturer: "Fanta", Type: "Carbonated", Volume: 330, Price: 75, Stock: 100}
	created, err := postBeverage(context.Background(), srv.Client(), srv.URL+"/", b)
	if err != nil {
		t.Fatalf("postBeverage failed: %v", err)
	}
	if created != b {
		t.Errorf("got %+v, want %+v", created, b)
	}
	if store.Len() != 5 {
		t.Errorf("expected 5 beverages, got %d", store.Len())
	}

	_, err = postBeverage(context.Background(), srv.Client(), srv.URL, b)
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestBeverageAddCmd(t *testing.T) {
	srv, store := newCatalogServer(t)

	stdout, _, err := execute(t, "beverage", "add", "--server", srv.URL, "7", "Kvass", "Ochakovo", "Fermented", "1500", "75", "40")
	if err != nil {
		t.Fatalf("beverage add failed: %v", err)
	}
	var created catalog.Beverage
	if err := json.Unmarshal([]byte(stdout), &created); err != nil {
		t.Fatalf("invalid output %q: %v", stdout, err)
	}
	if created.ID != "7" {
		t.Errorf("unexpected beverage %+v", created)
	}
	if _, err := store.Get("7"); err != nil {
		t.Errorf("beverage not stored: %v", err)
	}

	if _, _, err := execute(t, "beverage", "add", "--server", srv.URL, "8", "Kvass"); err == nil {
		t.Error("expected error for wrong argument count")
	}
}
