package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/deundomarinel09/easyshop-engine/internal/reconciler"
	"github.com/deundomarinel09/easyshop-engine/internal/reorder"
)

type OrdersHandler struct {
	manager *reconciler.Manager
	reorder *reorder.Transformer
	timeout time.Duration
}

func NewOrdersHandler(manager *reconciler.Manager, transformer *reorder.Transformer, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		manager: manager,
		reorder: transformer,
		timeout: timeout,
	}
}

type OrdersResponseDTO struct {
	Orders []OrderDTO `json:"orders"`
	Error  string     `json:"error,omitempty"`
}

type CancelRequestDTO struct {
	Reason string `json:"reason"`
}

type ReorderResponseDTO struct {
	Added   int `json:"added"`
	Dropped int `json:"dropped"`
}

// ListOrders serves the reconciler's current view, optionally filtered by
// the status query parameter. A fetch error is reported alongside the
// stale orders, never instead of them.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	buyerID := getBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	rec, err := h.manager.For(buyerID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "shutting_down", err.Error())
		return
	}

	filter := reconciler.FilterAll
	if s := r.URL.Query().Get("status"); s != "" {
		filter = reconciler.StatusFilter(s)
	}

	resp := OrdersResponseDTO{Orders: toOrderDTOs(rec.Orders(filter))}
	if fetchErr := rec.LastError(); fetchErr != nil {
		resp.Error = "failed to load orders, showing last known state"
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrdersHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	buyerID := getBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderRef := chi.URLParam(r, "order_ref")

	var req CancelRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	rec, err := h.manager.For(buyerID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "shutting_down", err.Error())
		return
	}

	if err := rec.Cancel(ctx, orderRef, req.Reason); err != nil {
		respondOrderActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancellation submitted"})
}

func (h *OrdersHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	buyerID := getBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderRef := chi.URLParam(r, "order_ref")

	rec, err := h.manager.For(buyerID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "shutting_down", err.Error())
		return
	}

	if err := rec.MarkReceived(ctx, orderRef); err != nil {
		respondOrderActionError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "order completed"})
}

func (h *OrdersHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	buyerID := getBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}
	orderRef := chi.URLParam(r, "order_ref")

	rec, err := h.manager.For(buyerID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "shutting_down", err.Error())
		return
	}

	order, ok := rec.Order(orderRef)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "order not found")
		return
	}

	result, err := h.reorder.Reorder(ctx, buyerID, order)
	if err != nil {
		if errors.Is(err, reorder.ErrNotTerminal) {
			respondError(w, http.StatusConflict, "not_terminal", err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, ReorderResponseDTO{Added: result.Added, Dropped: result.Dropped})
}

// CancelReasons serves the enumerated reason list for the cancel dialog.
func (h *OrdersHandler) CancelReasons(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, reconciler.CancelReasons)
}

func respondOrderActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconciler.ErrReasonRequired):
		respondError(w, http.StatusBadRequest, "reason_required", err.Error())
	case errors.Is(err, reconciler.ErrUnknownOrder):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, reconciler.ErrNotCancellable), errors.Is(err, reconciler.ErrNotReceivable):
		respondError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, reconciler.ErrActionInFlight):
		respondError(w, http.StatusConflict, "action_in_flight", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "backend_error", err.Error())
	}
}
