package main

import (
	"encoding/json"
	"net/http"

	"github.com/anvarov/backoffice/internal/store"
)

func (s *server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id, ok := queryID(r); ok {
			customer, err := store.GetCustomer(ctx, s.db, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondOK(w, http.StatusOK, map[string]interface{}{"item": customer})
			return
		}

		page, limit := pageParams(r)
		result, err := store.ListCustomers(ctx, s.db, r.URL.Query().Get("q"), page, limit)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondPage(w, result)

	case http.MethodPost:
		var req struct {
			Name    string `json:"name"`
			Email   string `json:"email"`
			Phone   string `json:"phone"`
			Firm    string `json:"firm"`
			Address string `json:"address"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}

		customer, err := store.CreateCustomer(ctx, s.db, store.CustomerParams{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Firm:    req.Firm,
			Address: req.Address,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": customer.ID, "item": customer})

	case http.MethodPut:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid customer id")
			return
		}

		var req struct {
			Name    *string `json:"name"`
			Email   *string `json:"email"`
			Phone   *string `json:"phone"`
			Firm    *string `json:"firm"`
			Address *string `json:"address"`
			Status  *string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		customer, err := store.UpdateCustomer(ctx, s.db, id, store.UpdateCustomerParams{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Firm:    req.Firm,
			Address: req.Address,
			Status:  req.Status,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"item": customer})

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid customer id")
			return
		}

		if err := store.DeactivateCustomer(ctx, s.db, id); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": id})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
