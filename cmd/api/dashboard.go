package main

import (
	"net/http"

	"github.com/anvarov/backoffice/internal/store"
)

func (s *server) handleRecentCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	customers, err := store.RecentCustomers(r.Context(), s.db, queryInt(r, "limit", 10))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{"items": customers})
}

func (s *server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	products, err := store.TopProducts(r.Context(), s.db, queryInt(r, "limit", 10))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{"items": products})
}
