package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID            int64
	Name          string
	Price         decimal.Decimal
	Stock         int
	Weight        decimal.Decimal
	UnitOfMeasure string
	Category      string
	Image         string
}

// InStock reports whether at least one unit can still be sold.
func (p Product) InStock() bool {
	return p.Stock > 0
}
