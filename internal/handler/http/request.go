package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tutora/tutora-backend/internal/handler/http/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads r's body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// uuidParam returns the path parameter name, writing a 400 unless it is a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "Invalid "+name, map[string]string{name: "must be a valid UUID"})
		return "", false
	}
	return id.String(), true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < 1 {
		response.BadRequest(w, "Invalid "+name, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return n, true
}

// queryString returns nil for an absent or empty parameter.
func queryString(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}

func queryUUID(w http.ResponseWriter, r *http.Request, name string) (*string, bool) {
	v := queryString(r, name)
	if v == nil {
		return nil, true
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{name: "must be a valid UUID"})
		return nil, false
	}
	s := id.String()
	return &s, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	v := queryString(r, name)
	if v == nil {
		return nil, true
	}
	n, err := strconv.Atoi(*v)
	if err != nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{name: "must be an integer"})
		return nil, false
	}
	return &n, true
}

func queryBool(w http.ResponseWriter, r *http.Request, name string) (*bool, bool) {
	v := queryString(r, name)
	if v == nil {
		return nil, true
	}
	b, err := strconv.ParseBool(*v)
	if err != nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{name: "must be true or false"})
		return nil, false
	}
	return &b, true
}

// queryDate parses a YYYY-MM-DD parameter.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := queryString(r, name)
	if v == nil {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", *v)
	if err != nil {
		response.BadRequest(w, "Invalid query parameters", map[string]string{name: "must be a date in YYYY-MM-DD format"})
		return nil, false
	}
	return &t, true
}

// paging reads page and limit, leaving zero for absent values.
func paging(w http.ResponseWriter, r *http.Request) (page, limit int, ok bool) {
	p, ok := queryInt(w, r, "page")
	if !ok {
		return 0, 0, false
	}
	l, ok := queryInt(w, r, "limit")
	if !ok {
		return 0, 0, false
	}
	if p != nil {
		page = *p
	}
	if l != nil {
		limit = *l
	}
	return page, limit, true
}
