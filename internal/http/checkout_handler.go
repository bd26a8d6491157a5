package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/deundomarinel09/easyshop-engine/internal/checkout"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

var errInvalidCoordinate = errors.New("lat and lng must both be valid numbers")

type CheckoutHandler struct {
	checkout *checkout.Service
	timeout  time.Duration
}

func NewCheckoutHandler(checkoutSvc *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutSvc, timeout: timeout}
}

type SubmitRequestDTO struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Address      string   `json:"address"`
	Instructions string   `json:"instructions"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
}

type SubmitResponseDTO struct {
	Fees FeeBreakdownDTO `json:"fees"`
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	buyerID := getBuyerID(r.Context())
	if buyerID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req SubmitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if (req.Lat == nil) != (req.Lng == nil) {
		respondError(w, http.StatusBadRequest, "invalid_point", errInvalidCoordinate.Error())
		return
	}

	submitReq := checkout.SubmitRequest{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Instructions: req.Instructions,
	}
	if req.Lat != nil {
		submitReq.Point = &domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	}

	fees, err := h.checkout.Submit(ctx, buyerID, submitReq)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrMissingContactInfo):
			respondError(w, http.StatusBadRequest, "missing_contact_info", err.Error())
		case errors.Is(err, checkout.ErrEmptyCart):
			respondError(w, http.StatusConflict, "empty_cart", err.Error())
		case errors.Is(err, checkout.ErrSubmitInFlight):
			respondError(w, http.StatusConflict, "submit_in_flight", err.Error())
		default:
			respondError(w, http.StatusBadGateway, "submission_failed", err.Error())
		}
		return
	}

	respondJSON(w, http.StatusCreated, SubmitResponseDTO{Fees: toFeeBreakdownDTO(fees)})
}
