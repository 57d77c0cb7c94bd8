package main

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/events"
	"github.com/anvarov/backoffice/internal/store"
)

type orderItemPayload struct {
	ProductID  int64   `json:"product_id"`
	CategoryID *int64  `json:"category_id"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

func toLineParams(items []orderItemPayload) []store.OrderLineParams {
	params := make([]store.OrderLineParams, 0, len(items))
	for _, item := range items {
		params = append(params, store.OrderLineParams{
			ProductID:  item.ProductID,
			CategoryID: item.CategoryID,
			Quantity:   item.Quantity,
			Price:      decimal.NewFromFloat(item.Price),
		})
	}
	return params
}

// parseDate accepts RFC3339 or a bare YYYY-MM-DD.
func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *server) handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		if id, ok := queryID(r); ok {
			order, err := store.GetOrder(ctx, s.db, id)
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondOK(w, http.StatusOK, map[string]interface{}{"item": order})
			return
		}

		if cid := queryInt(r, "customer_id", 0); cid > 0 {
			result, err := store.ListOrdersByCustomerCursor(ctx, s.db, int64(cid),
				r.URL.Query().Get("cursor"), queryInt(r, "limit", 20))
			if err != nil {
				respondStoreError(w, err)
				return
			}
			respondOK(w, http.StatusOK, map[string]interface{}{
				"items":       result.Items,
				"next_cursor": result.NextCursor,
				"has_more":    result.HasMore,
			})
			return
		}

		page, limit := pageParams(r)
		result, err := store.ListOrders(ctx, s.db, store.OrderFilter{
			Query:  r.URL.Query().Get("q"),
			Status: r.URL.Query().Get("status"),
		}, page, limit)
		if err != nil {
			respondStoreError(w, err)
			return
		}
		respondPage(w, result)

	case http.MethodPost:
		var req struct {
			CustomerID   int64              `json:"customer_id"`
			TotalAmount  *float64           `json:"total_amount"`
			Currency     string             `json:"currency"`
			Status       string             `json:"status"`
			Address      string             `json:"address"`
			OrderDate    string             `json:"order_date"`
			DeliveryDate string             `json:"delivery_date"`
			Items        []orderItemPayload `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		orderDate, err := parseDate(req.OrderDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid order_date")
			return
		}
		deliveryDate, err := parseDate(req.DeliveryDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid delivery_date")
			return
		}

		params := store.CreateOrderParams{
			CustomerID:   req.CustomerID,
			Currency:     req.Currency,
			Status:       req.Status,
			Address:      req.Address,
			OrderDate:    orderDate,
			DeliveryDate: deliveryDate,
			Items:        toLineParams(req.Items),
		}
		if req.TotalAmount != nil {
			total := decimal.NewFromFloat(*req.TotalAmount)
			params.TotalAmount = &total
		}

		result, err := store.CreateOrder(ctx, s.db, params)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		s.events.PublishAsync(events.OrderEvent{
			Type:       events.TypeOrderCreated,
			OrderID:    result.Order.ID,
			CustomerID: result.Order.CustomerID,
			Status:     result.Order.Status,
			Payment:    result.Order.Payment,
		})

		respondOK(w, http.StatusOK, map[string]interface{}{
			"id":          result.Order.ID,
			"items_saved": result.ItemsSaved,
		})

	case http.MethodPut:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid order id")
			return
		}

		var req struct {
			Payment      *string             `json:"payment"`
			Status       *string             `json:"status"`
			TotalAmount  *float64            `json:"total_amount"`
			Currency     *string             `json:"currency"`
			Address      *string             `json:"address"`
			OrderDate    *string             `json:"order_date"`
			DeliveryDate *string             `json:"delivery_date"`
			Items        *[]orderItemPayload `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		params := store.UpdateOrderParams{
			Payment:  req.Payment,
			Status:   req.Status,
			Currency: req.Currency,
			Address:  req.Address,
		}
		if req.TotalAmount != nil {
			total := decimal.NewFromFloat(*req.TotalAmount)
			params.TotalAmount = &total
		}
		if req.OrderDate != nil {
			t, err := parseDate(*req.OrderDate)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid order_date")
				return
			}
			params.OrderDate = t
		}
		if req.DeliveryDate != nil {
			t, err := parseDate(*req.DeliveryDate)
			if err != nil {
				respondError(w, http.StatusBadRequest, "invalid delivery_date")
				return
			}
			params.DeliveryDate = t
		}
		if req.Items != nil {
			items := toLineParams(*req.Items)
			params.Items = &items
		}

		order, err := store.UpdateOrder(ctx, s.db, id, params)
		if err != nil {
			respondStoreError(w, err)
			return
		}

		s.events.PublishAsync(events.OrderEvent{
			Type:       events.TypeOrderUpdated,
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			Status:     order.Status,
			Payment:    order.Payment,
		})

		respondOK(w, http.StatusOK, map[string]interface{}{"item": order})

	case http.MethodDelete:
		id, ok := queryID(r)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid order id")
			return
		}

		if err := store.CancelOrder(ctx, s.db, id); err != nil {
			respondStoreError(w, err)
			return
		}
		respondOK(w, http.StatusOK, map[string]interface{}{"id": id})

	default:
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *server) handleOrdersExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	orders, err := store.AllOrders(r.Context(), s.db)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{"id", "customer_id", "customer_name", "total_amount", "currency", "payment", "status", "order_date", "created_at"})
	for _, o := range orders {
		orderDate := ""
		if o.OrderDate != nil {
			orderDate = o.OrderDate.Format("2006-01-02")
		}
		cw.Write([]string{
			strconv.FormatInt(o.ID, 10),
			strconv.FormatInt(o.CustomerID, 10),
			o.CustomerName,
			o.TotalAmount.StringFixed(2),
			o.Currency,
			o.Payment,
			o.Status,
			orderDate,
			o.CreatedAt.Format(time.RFC3339),
		})
	}
}
