package http

import (
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// Monetary values leave the engine as fixed two-decimal strings. This is
// the presentation boundary; everything upstream keeps full precision.

type ProductDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Stock         int    `json:"stock"`
	Weight        string `json:"weight"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Category      string `json:"category,omitempty"`
	Image         string `json:"image,omitempty"`
}

func toProductDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		Stock:         p.Stock,
		Weight:        p.Weight.String(),
		UnitOfMeasure: p.UnitOfMeasure,
		Category:      p.Category,
		Image:         p.Image,
	}
}

type CartItemDTO struct {
	ProductID     int64  `json:"product_id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	Quantity      int    `json:"quantity"`
	Stock         int    `json:"stock"`
	Weight        string `json:"weight"`
	UnitOfMeasure string `json:"unit_of_measure"`
	Image         string `json:"image,omitempty"`
	LineTotal     string `json:"line_total"`
}

func toCartItemDTOs(items []domain.CartItem) []CartItemDTO {
	out := make([]CartItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemDTO{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         it.Price.StringFixed(2),
			Quantity:      it.Quantity,
			Stock:         it.Stock,
			Weight:        it.Weight.String(),
			UnitOfMeasure: it.UnitOfMeasure,
			Image:         it.Image,
			LineTotal:     it.LineTotal().StringFixed(2),
		})
	}
	return out
}

type FeeBreakdownDTO struct {
	DistanceFee   string `json:"distance_fee"`
	WeightFee     string `json:"weight_fee"`
	ItemsSubtotal string `json:"items_subtotal"`
	GrandTotal    string `json:"grand_total"`
}

func toFeeBreakdownDTO(f domain.FeeBreakdown) FeeBreakdownDTO {
	return FeeBreakdownDTO{
		DistanceFee:   f.DistanceFee.StringFixed(2),
		WeightFee:     f.WeightFee.StringFixed(2),
		ItemsSubtotal: f.ItemsSubtotal.StringFixed(2),
		GrandTotal:    f.GrandTotal.StringFixed(2),
	}
}

type OrderItemDTO struct {
	ProductID int64  `json:"product_id"`
	Product   string `json:"product"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type OrderDTO struct {
	OrderRef        string          `json:"order_ref"`
	Status          string          `json:"status"`
	Name            string          `json:"name"`
	ShippingAddress string          `json:"shipping_address"`
	Fees            FeeBreakdownDTO `json:"fees"`
	Items           []OrderItemDTO  `json:"items"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
}

func toOrderDTOs(orders []domain.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		items := make([]OrderItemDTO, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, OrderItemDTO{
				ProductID: it.ProductID,
				Product:   it.Product,
				UnitPrice: it.UnitPrice.StringFixed(2),
				Quantity:  it.Quantity,
			})
		}
		out = append(out, OrderDTO{
			OrderRef:        o.OrderRef,
			Status:          o.Status.String(),
			Name:            o.Name,
			ShippingAddress: o.ShippingAddress,
			Fees:            toFeeBreakdownDTO(o.Fees),
			Items:           items,
			CancelReason:    o.CancelReason,
		})
	}
	return out
}
