package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ironsheep/image-cross/internal/catalog"
	"github.com/ironsheep/image-cross/internal/logging"
)

func statusForCatalogError(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateID),
		errors.Is(err, catalog.ErrValidation),
		errors.Is(err, catalog.ErrInvalidField):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListBeverages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	order := query.Get("order")
	if order == "" {
		order = "asc"
	}
	writeJSON(w, http.StatusOK, s.catalog.List(query.Get("sort_by"), order))
}

// beverageInput distinguishes missing fields from zero values on create.
type beverageInput struct {
	ID           *string  `json:"id"`
	Name         *string  `json:"name"`
	Manufacturer *string  `json:"manufacturer"`
	Type         *string  `json:"type"`
	Volume       *float64 `json:"volume"`
	Price        *float64 `json:"price"`
	Stock        *int     `json:"stock"`
}

func (in beverageInput) beverage() (catalog.Beverage, error) {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("id", in.ID != nil)
	check("name", in.Name != nil)
	check("manufacturer", in.Manufacturer != nil)
	check("type", in.Type != nil)
	check("volume", in.Volume != nil)
	check("price", in.Price != nil)
	check("stock", in.Stock != nil)
	if len(missing) > 0 {
		return catalog.Beverage{}, fmt.Errorf("%w: missing required fields: %s", catalog.ErrValidation, strings.Join(missing, ", "))
	}
	return catalog.Beverage{
		ID:           *in.ID,
		Name:         *in.Name,
		Manufacturer: *in.Manufacturer,
		Type:         *in.Type,
		Volume:       *in.Volume,
		Price:        *in.Price,
		Stock:        *in.Stock,
	}, nil
}

func (s *Server) handleCreateBeverage(w http.ResponseWriter, r *http.Request) {
	var in beverageInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	b, err := in.beverage()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.catalog.Create(b)
	if err != nil {
		writeError(w, statusForCatalogError(err), err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("beverage created", "id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetBeverage(w http.ResponseWriter, r *http.Request) {
	b, err := s.catalog.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusForCatalogError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type beverageUpdate struct {
	catalog.Patch
	ID *string `json:"id"`
}

func (s *Server) handleUpdateBeverage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in beverageUpdate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if in.ID != nil && *in.ID != id {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: id cannot be changed", catalog.ErrValidation))
		return
	}

	updated, err := s.catalog.Update(id, in.Patch)
	if err != nil {
		writeError(w, statusForCatalogError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBeverage(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.PathValue("id")); err != nil {
		writeError(w, statusForCatalogError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	st, err := s.catalog.Stats(r.PathValue("field"))
	if err != nil {
		writeError(w, statusForCatalogError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleAllStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.AllStats())
}

// handleStatisticsChart renders min, average and max of each numeric field as
// a grouped bar chart.
func (s *Server) handleStatisticsChart(w http.ResponseWriter, r *http.Request) {
	stats := s.catalog.AllStats()

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Beverage statistics",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Beverage statistics",
			Subtitle: fmt.Sprintf("%d beverages", s.catalog.Len()),
		}),
	)
	bar.SetXAxis(catalog.NumericFields)

	series := []struct {
		name  string
		value func(catalog.Stat) float64
	}{
		{"min", func(st catalog.Stat) float64 { return st.Min }},
		{"avg", func(st catalog.Stat) float64 { return st.Avg }},
		{"max", func(st catalog.Stat) float64 { return st.Max }},
	}
	for _, sr := range series {
		data := make([]opts.BarData, 0, len(catalog.NumericFields))
		for _, field := range catalog.NumericFields {
			data = append(data, opts.BarData{Value: sr.value(stats[field])})
		}
		bar.AddSeries(sr.name, data)
	}

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to render chart", "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("failed to render chart"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
