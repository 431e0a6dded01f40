package transport

import (
	"net/http"
	"strconv"
	"time"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/order"

	"github.com/shopspring/decimal"
)

type lineBody struct {
	ItemID   *string         `json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func toLineInputs(lines []lineBody) []order.LineInput {
	out := make([]order.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, order.LineInput{
			ItemID:   l.ItemID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
		})
	}
	return out
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerName string     `json:"customer_name"`
		Items        []lineBody `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Create(r.Context(), body.CustomerName, toLineInputs(body.Items))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) handleEditOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    string     `json:"id"`
		Items []lineBody `json:"items"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Edit(r.Context(), body.ID, toLineInputs(body.Items))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleSetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID          string             `json:"id"`
		IsPaid      bool               `json:"is_paid"`
		PaymentType *order.PaymentType `json:"payment_type"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.SetPaymentStatus(r.Context(), body.ID, body.IsPaid, body.PaymentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, apperr.New(apperr.Validation, "order ID is required"))
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := order.ListParams{
		UnpaidOnly:   q.Get("filter") == "unpaid",
		CustomerName: q.Get("customerName"),
		SortOrder:    q.Get("sortOrder"),
	}

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := q.Get("sortBy"); v == "customer_name" {
		params.SortBy = order.SortByCustomerName
	} else {
		params.SortBy = order.SortByDate
	}

	if v := q.Get("startDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, r, apperr.New(apperr.Validation, "startDate must be YYYY-MM-DD"))
			return
		}
		params.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, r, apperr.New(apperr.Validation, "endDate must be YYYY-MM-DD"))
			return
		}
		end := t.AddDate(0, 0, 1).Add(-time.Millisecond)
		params.EndDate = &end
	}

	res, err := h.orders.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
