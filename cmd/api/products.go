package main

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/store"
)

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id, ok := queryID(r); ok {
			product, err := store.GetProduct(ctx, s.db, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondOK(w, http.StatusOK, map[string]interface{}{"item": product})
			return
		}

		filter := store.ProductFilter{
			Query:  r.URL.Query().Get("q"),
			Status: r.URL.Query().Get("status"),
		}
		if cid := queryInt(r, "category_id", 0); cid > 0 {
			id := int64(cid)
			filter.CategoryID = &id
		}

		page, limit := pageParams(r)
		result, err := store.ListProducts(ctx, s.db, filter, page, limit)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondPage(w, result)

	case http.MethodPost:
		var req struct {
			Name          string  `json:"name"`
			SKU           string  `json:"sku"`
			MRP           float64 `json:"mrp"`
			WholesaleRate float64 `json:"wholesale_rate"`
			Stock         int     `json:"stock"`
			CategoryID    *int64  `json:"category_id"`
			Image         string  `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Name == "" {
			respondError(w, http.StatusBadRequest, "name is required")
			return
		}
		if req.Stock < 0 {
			respondError(w, http.StatusBadRequest, "stock must not be negative")
			return
		}

		product, err := store.CreateProduct(ctx, s.db, store.CreateProductParams{
			Name:          req.Name,
			SKU:           req.SKU,
			MRP:           decimal.NewFromFloat(req.MRP),
			WholesaleRate: decimal.NewFromFloat(req.WholesaleRate),
			Stock:         req.Stock,
			CategoryID:    req.CategoryID,
			Image:         req.Image,
		})
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": product.ID, "item": product})

	case http.MethodPut:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		var req struct {
			Name          *string  `json:"name"`
			SKU           *string  `json:"sku"`
			MRP           *float64 `json:"mrp"`
			WholesaleRate *float64 `json:"wholesale_rate"`
			Stock         *int     `json:"stock"`
			Status        *string  `json:"status"`
			CategoryID    *int64   `json:"category_id"`
			Image         *string  `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Stock != nil && *req.Stock < 0 {
			respondError(w, http.StatusBadRequest, "stock must not be negative")
			return
		}

		params := store.UpdateProductParams{
			Name:       req.Name,
			SKU:        req.SKU,
			Stock:      req.Stock,
			Status:     req.Status,
			CategoryID: req.CategoryID,
			Image:      req.Image,
		}
		if req.MRP != nil {
			mrp := decimal.NewFromFloat(*req.MRP)
			params.MRP = &mrp
		}
		if req.WholesaleRate != nil {
			rate := decimal.NewFromFloat(*req.WholesaleRate)
			params.WholesaleRate = &rate
		}

		product, err := store.UpdateProduct(ctx, s.db, id, params)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"item": product})

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := store.DeactivateProduct(ctx, s.db, id); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": id})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
