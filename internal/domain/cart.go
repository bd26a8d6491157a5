package domain

import "github.com/shopspring/decimal"

// CartItem is a single line in the buyer's cart. The stock, price and weight
// fields are a snapshot of the product at the time it entered the cart; the
// cart service keeps Quantity within [1, Stock] at all times.
type CartItem struct {
	ProductID     int64           `json:"product_id" bson:"product_id"`
	Name          string          `json:"name" bson:"name"`
	Price         decimal.Decimal `json:"price" bson:"price"`
	Quantity      int             `json:"quantity" bson:"quantity"`
	Stock         int             `json:"stock" bson:"stock"`
	Weight        decimal.Decimal `json:"weight" bson:"weight"`
	UnitOfMeasure string          `json:"unit_of_measure" bson:"unit_of_measure"`
	Image         string          `json:"image" bson:"image"`
}

// NewCartItem builds a line for the given product with quantity 1.
func NewCartItem(p Product) CartItem {
	return CartItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.Price,
		Quantity:      1,
		Stock:         p.Stock,
		Weight:        p.Weight,
		UnitOfMeasure: p.UnitOfMeasure,
		Image:         p.Image,
	}
}

// LineTotal is price times quantity at full precision.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}
