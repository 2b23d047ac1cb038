package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/matule/internal/network"
)

const (
	defaultPerPage = 30
	maxPerPage     = 500
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("failed to encode response")
	}
}

// respondError writes the backend error envelope.
func (s *Server) respondError(w http.ResponseWriter, status int, message string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	s.respondJSON(w, status, network.ErrorEnvelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func fieldError(field, code, message string) map[string]any {
	return map[string]any{
		field: map[string]string{"code": code, "message": message},
	}
}

// paginate slices items by the page and perPage query parameters.
func paginate[T any](r *http.Request, items []T) network.Page[T] {
	page := positiveInt(r.URL.Query().Get("page"), 1)
	perPage := min(positiveInt(r.URL.Query().Get("perPage"), defaultPerPage), maxPerPage)

	total := len(items)
	start := total
	if page-1 <= total/perPage {
		start = min((page-1)*perPage, total)
	}
	end := min(start+perPage, total)
	pageItems := items[start:end]
	if pageItems == nil {
		pageItems = []T{}
	}
	return network.Page[T]{
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
		TotalItems: total,
		Items:      pageItems,
	}
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
