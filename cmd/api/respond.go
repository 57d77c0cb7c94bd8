package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// respondOK wraps the payload in the {ok:true, ...} envelope every
// endpoint speaks.
func respondOK(w http.ResponseWriter, status int, payload map[string]interface{}) {
	body := map[string]interface{}{"ok": true}
	for k, v := range payload {
		body[k] = v
	}
	respondJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"ok": false, "error": message})
}

// respondStoreError maps the store's sentinel errors onto the API error
// taxonomy. Anything unrecognized is a 500 whose detail goes to the log
// only, never to the client.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrCategoryNotFound),
		errors.Is(err, database.ErrCustomerNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrCartLineNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidCustomer),
		errors.Is(err, database.ErrDuplicateSlug),
		errors.Is(err, database.ErrDuplicateSKU):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrInsufficientStock):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondPage(w http.ResponseWriter, page *store.OffsetPage) {
	respondOK(w, http.StatusOK, map[string]interface{}{
		"items":       page.Items,
		"total":       page.Total,
		"page":        page.Page,
		"limit":       page.Limit,
		"total_pages": page.TotalPages,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	return id, err == nil && id > 0
}

func pageParams(r *http.Request) (int, int) {
	return queryInt(r, "page", 1), queryInt(r, "limit", 20)
}
