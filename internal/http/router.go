package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter assembles the storefront API surface around the injected
// handlers.
func NewRouter(
	logger zerolog.Logger,
	requestTimeout time.Duration,
	cartHandler *CartHandler,
	checkoutHandler *CheckoutHandler,
	ordersHandler *OrdersHandler,
	productHandler *ProductHandler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(BuyerIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", productHandler.ListProducts)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Get("/quote", cartHandler.Quote)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.Submit)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/cancel-reasons", ordersHandler.CancelReasons)
			r.Post("/{order_ref}/cancel", ordersHandler.CancelOrder)
			r.Post("/{order_ref}/received", ordersHandler.MarkReceived)
			r.Post("/{order_ref}/reorder", ordersHandler.Reorder)
		})
	})

	return r
}
