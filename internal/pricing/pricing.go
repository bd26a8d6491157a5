// Package pricing converts cart contents and a delivery location into a
// delivery fee breakdown. Everything here is pure: no I/O, no state, the
// same inputs always produce the same breakdown.
package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

const (
	earthRadiusKm = 6371

	// Deliveries within flatTierKm pay only the base fee; each whole
	// kilometer beyond it adds perKmFee. The floor (not round) of the
	// distance is part of the pricing contract with the backend.
	flatTierKm      = 0.3
	baseDistanceFee = 35
	perKmFee        = 10

	// First freeWeightKg kilograms ship free, then perExtraKgFee per
	// started kilogram above that.
	freeWeightKg  = 5
	perExtraKgFee = 10
)

// unitToKg converts a product's unit of measure into kilograms.
// Units not listed here are treated as negligible weight.
var unitToKg = map[string]decimal.Decimal{
	"kg": decimal.NewFromInt(1),
	"g":  decimal.NewFromFloat(0.001),
}

var defaultUnitFactor = decimal.NewFromFloat(0.001)

// DistanceKm is the great-circle distance between two points via the
// haversine formula, in kilometers.
func DistanceKm(a, b domain.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceFee prices the trip from the store to the selected delivery point.
// No selected point means pickup, which costs nothing.
func DistanceFee(store domain.GeoPoint, point *domain.GeoPoint) decimal.Decimal {
	if point == nil {
		return decimal.Zero
	}
	km := DistanceKm(store, *point)
	if km <= flatTierKm {
		return decimal.NewFromInt(baseDistanceFee)
	}
	wholeKm := decimal.NewFromInt(int64(math.Floor(km)))
	return decimal.NewFromInt(baseDistanceFee).Add(wholeKm.Mul(decimal.NewFromInt(perKmFee)))
}

// TotalWeightKg sums the cart's weight in kilograms at full precision.
func TotalWeightKg(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		factor, ok := unitToKg[strings.ToLower(it.UnitOfMeasure)]
		if !ok {
			factor = defaultUnitFactor
		}
		total = total.Add(it.Weight.Mul(factor).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// WeightFee charges for every started kilogram above the free allowance.
func WeightFee(items []domain.CartItem) decimal.Decimal {
	extra := TotalWeightKg(items).Sub(decimal.NewFromInt(freeWeightKg))
	if extra.Sign() <= 0 {
		return decimal.Zero
	}
	return extra.Ceil().Mul(decimal.NewFromInt(perExtraKgFee))
}

// Subtotal sums price times quantity over the cart.
func Subtotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Quote computes the full fee breakdown for the cart delivered to point.
// Distance and weight fees are independent components of delivery cost and
// simply add up; there is no discounting between them.
func Quote(items []domain.CartItem, point *domain.GeoPoint, store domain.GeoPoint) domain.FeeBreakdown {
	distanceFee := DistanceFee(store, point)
	weightFee := WeightFee(items)
	subtotal := Subtotal(items)

	return domain.FeeBreakdown{
		DistanceFee:   distanceFee,
		WeightFee:     weightFee,
		ItemsSubtotal: subtotal,
		GrandTotal:    subtotal.Add(weightFee).Add(distanceFee),
	}
}
