package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/anvarov/backoffice/internal/store"
)

// resolveOwner builds the cart owner from explicit identifiers. A
// customer id wins over a session token when both are present.
func resolveOwner(customerID int64, sessionToken string) (store.OwnerRef, bool) {
	if customerID > 0 {
		return store.CustomerOwner(customerID), true
	}
	if sessionToken != "" {
		return store.SessionOwner(sessionToken), true
	}
	return store.OwnerRef{}, false
}

func ownerFromQuery(r *http.Request) (store.OwnerRef, bool) {
	customerID, _ := strconv.ParseInt(r.URL.Query().Get("customer_id"), 10, 64)
	token := r.URL.Query().Get("session_token")
	if token == "" {
		token = r.Header.Get("X-Session-Token")
	}
	return resolveOwner(customerID, token)
}

func (s *server) handleCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		owner, ok := ownerFromQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "customer_id or session_token required")
			return
		}

		lines, err := store.ListCart(ctx, s.db, owner)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"items": lines})

	case http.MethodPost:
		var req struct {
			CustomerID   int64  `json:"customer_id"`
			SessionToken string `json:"session_token"`
			ProductID    int64  `json:"product_id"`
			Quantity     int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		owner, ok := resolveOwner(req.CustomerID, req.SessionToken)
		if !ok {
			respondError(w, http.StatusBadRequest, "customer_id or session_token required")
			return
		}
		if req.ProductID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid product id")
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		line, err := store.AddCartLine(ctx, s.db, owner, req.ProductID, req.Quantity)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"item": line})

	case http.MethodPut:
		var req struct {
			CustomerID   int64  `json:"customer_id"`
			SessionToken string `json:"session_token"`
			ProductID    int64  `json:"product_id"`
			Quantity     int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		owner, ok := resolveOwner(req.CustomerID, req.SessionToken)
		if !ok {
			respondError(w, http.StatusBadRequest, "customer_id or session_token required")
			return
		}
		if req.ProductID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := store.SetCartQuantity(ctx, s.db, owner, req.ProductID, req.Quantity); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{
			"product_id": req.ProductID,
			"quantity":   req.Quantity,
		})

	case http.MethodDelete:
		owner, ok := ownerFromQuery(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "customer_id or session_token required")
			return
		}

		productID, _ := strconv.ParseInt(r.URL.Query().Get("product_id"), 10, 64)
		if productID > 0 {
			if err := store.RemoveCartLine(ctx, s.db, owner, productID); err != nil {
				respondStoreError(w, err)
				return
			}
		} else if err := store.ClearCart(ctx, s.db, owner); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *server) handleCartMerge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		SessionToken string `json:"session_token"`
		CustomerID   int64  `json:"customer_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionToken == "" || req.CustomerID <= 0 {
		respondError(w, http.StatusBadRequest, "session_token and customer_id required")
		return
	}

	if err := store.MergeSessionIntoCustomer(r.Context(), s.db, req.SessionToken, req.CustomerID); err != nil {
		respondStoreError(w, err)
		return
	}

	lines, err := store.ListCart(r.Context(), s.db, store.CustomerOwner(req.CustomerID))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]interface{}{"items": lines})
}
