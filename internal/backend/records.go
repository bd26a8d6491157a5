package backend

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// valuesList tolerates both a bare JSON array and the `{"$values": [...]}`
// envelope some backend serializers wrap collections in.
type valuesList[T any] struct {
	Values []T
}

func (v *valuesList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &v.Values)
	}
	var wrapper struct {
		Values []T `json:"$values"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	v.Values = wrapper.Values
	return nil
}

type productRecord struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
	Weight        float64 `json:"weight"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
}

func (r productRecord) toDomain() (domain.Product, error) {
	if r.ID == 0 {
		return domain.Product{}, fmt.Errorf("product record missing id")
	}
	if r.Price < 0 || r.Stock < 0 || r.Weight < 0 {
		return domain.Product{}, fmt.Errorf("product %d has negative price, stock or weight", r.ID)
	}
	return domain.Product{
		ID:            r.ID,
		Name:          r.Name,
		Price:         decimal.NewFromFloat(r.Price),
		Stock:         r.Stock,
		Weight:        decimal.NewFromFloat(r.Weight),
		UnitOfMeasure: r.UnitOfMeasure,
		Category:      r.Category,
		Image:         r.Image,
	}, nil
}

type orderItemRecord struct {
	ProductID int64   `json:"productId"`
	Product   string  `json:"product"`
	Amount    float64 `json:"amount"`
	Quantity  int     `json:"quantity"`
}

type orderRecord struct {
	OrderRef        string                      `json:"orderRef"`
	Status          string                      `json:"status"`
	Name            string                      `json:"name"`
	ShippingAddress string                      `json:"shippingAddress"`
	DistanceFee     float64                     `json:"distanceFee"`
	WeightFee       float64                     `json:"weightFee"`
	SubTotal        float64                     `json:"subTotal"`
	Total           float64                     `json:"total"`
	CancelReason    string                      `json:"cancelReason"`
	Items           valuesList[orderItemRecord] `json:"items"`
}

func (r orderRecord) toDomain() (domain.Order, error) {
	if r.OrderRef == "" {
		return domain.Order{}, fmt.Errorf("order record missing orderRef")
	}

	items := make([]domain.OrderItem, 0, len(r.Items.Values))
	for _, it := range r.Items.Values {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Product:   it.Product,
			UnitPrice: decimal.NewFromFloat(it.Amount),
			Quantity:  it.Quantity,
		})
	}

	return domain.Order{
		OrderRef:        r.OrderRef,
		Status:          domain.OrderStatus(r.Status),
		Name:            r.Name,
		ShippingAddress: r.ShippingAddress,
		Fees: domain.FeeBreakdown{
			DistanceFee:   decimal.NewFromFloat(r.DistanceFee),
			WeightFee:     decimal.NewFromFloat(r.WeightFee),
			ItemsSubtotal: decimal.NewFromFloat(r.SubTotal),
			GrandTotal:    decimal.NewFromFloat(r.Total),
		},
		Items:        items,
		CancelReason: r.CancelReason,
	}, nil
}

type payloadItemWire struct {
	ProductID int64   `json:"productId"`
	Amount    float64 `json:"amount"`
	Quantity  int     `json:"quantity"`
}

type orderPayloadWire struct {
	UserID          string            `json:"userId"`
	Name            string            `json:"name"`
	Email           string            `json:"email"`
	PhoneNo         string            `json:"phoneNo"`
	ShippingAddress string            `json:"shippingAddress"`
	Instruction     string            `json:"instruction,omitempty"`
	Status          string            `json:"status"`
	DistanceFee     float64           `json:"distanceFee"`
	WeightFee       float64           `json:"weightFee"`
	SubTotal        float64           `json:"subTotal"`
	Total           float64           `json:"total"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
	Items           []payloadItemWire `json:"items"`
}

// toWire renders the payload for the backend. Monetary values are rounded
// to two decimals here, at the presentation boundary, never earlier.
func toWire(p domain.OrderPayload) orderPayloadWire {
	items := make([]payloadItemWire, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, payloadItemWire{
			ProductID: it.ProductID,
			Amount:    money(it.UnitPrice),
			Quantity:  it.Quantity,
		})
	}

	wire := orderPayloadWire{
		UserID:          p.BuyerID,
		Name:            p.Name,
		Email:           p.Email,
		PhoneNo:         p.Phone,
		ShippingAddress: p.ShippingAddress,
		Instruction:     p.Instructions,
		Status:          p.Status.String(),
		DistanceFee:     money(p.Fees.DistanceFee),
		WeightFee:       money(p.Fees.WeightFee),
		SubTotal:        money(p.Fees.ItemsSubtotal),
		Total:           money(p.Fees.GrandTotal),
		Items:           items,
	}
	if p.Point != nil {
		lat, lng := p.Point.Lat, p.Point.Lng
		wire.Latitude = &lat
		wire.Longitude = &lng
	}
	return wire
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
