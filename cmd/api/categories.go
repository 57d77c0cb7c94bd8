package main

import (
	"encoding/json"
	"net/http"

	"github.com/anvarov/backoffice/internal/store"
)

func (s *server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id, ok := queryID(r); ok {
			category, err := store.GetCategory(ctx, s.db, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondOK(w, http.StatusOK, map[string]interface{}{"item": category})
			return
		}

		page, limit := pageParams(r)
		result, err := store.ListCategories(ctx, s.db, r.URL.Query().Get("q"), page, limit)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondPage(w, result)

	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		category, err := store.CreateCategory(ctx, s.db, req.Name, req.Slug)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": category.ID, "item": category})

	case http.MethodPut:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid category id")
			return
		}

		var req struct {
			Name *string `json:"name"`
			Slug *string `json:"slug"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		category, err := store.UpdateCategory(ctx, s.db, id, req.Name, req.Slug)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"item": category})

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid category id")
			return
		}

		if err := store.DeleteCategory(ctx, s.db, id); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": id})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
