package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// IsTerminal reports whether the order can take no further transitions.
// Terminal orders stay readable and are the only ones eligible for reorder.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// KnownStatuses lists every concrete state of the order state machine,
// in lifecycle order.
func KnownStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}
}

// FeeBreakdown is a derived pricing result. It is recomputed whenever the
// inputs change and never mutated in place. Values carry full precision;
// rounding to two decimals happens only when a value is rendered.
type FeeBreakdown struct {
	DistanceFee   decimal.Decimal
	WeightFee     decimal.Decimal
	ItemsSubtotal decimal.Decimal
	GrandTotal    decimal.Decimal
}

func (f FeeBreakdown) Equal(o FeeBreakdown) bool {
	return f.DistanceFee.Equal(o.DistanceFee) &&
		f.WeightFee.Equal(o.WeightFee) &&
		f.ItemsSubtotal.Equal(o.ItemsSubtotal) &&
		f.GrandTotal.Equal(o.GrandTotal)
}

// OrderItem is one line of a placed order as reported by the backend.
type OrderItem struct {
	ProductID int64
	Product   string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (i OrderItem) Equal(o OrderItem) bool {
	return i.ProductID == o.ProductID &&
		i.Product == o.Product &&
		i.UnitPrice.Equal(o.UnitPrice) &&
		i.Quantity == o.Quantity
}

// Order is the locally mirrored read model of a backend-owned order.
// The backend is authoritative; local copies are a cache.
type Order struct {
	OrderRef        string
	Status          OrderStatus
	Name            string
	ShippingAddress string
	Fees            FeeBreakdown
	Items           []OrderItem
	CancelReason    string
}

// Equal is a structural value comparison, decimal-aware, so the poll diff
// does not produce false negatives from field encoding differences.
func (o Order) Equal(other Order) bool {
	if o.OrderRef != other.OrderRef ||
		o.Status != other.Status ||
		o.Name != other.Name ||
		o.ShippingAddress != other.ShippingAddress ||
		o.CancelReason != other.CancelReason ||
		!o.Fees.Equal(other.Fees) ||
		len(o.Items) != len(other.Items) {
		return false
	}
	for i := range o.Items {
		if !o.Items[i].Equal(other.Items[i]) {
			return false
		}
	}
	return true
}

// OrdersEqual compares two order lists by content, ignoring list order.
// Order refs are opaque but sortable, so both sides are compared in a
// canonical ref order.
func OrdersEqual(a, b []Order) bool {
	if len(a) != len(b) {
		return false
	}
	as := sortedByRef(a)
	bs := sortedByRef(b)
	for i := range as {
		if !as[i].Equal(bs[i]) {
			return false
		}
	}
	return true
}

func sortedByRef(orders []Order) []Order {
	out := make([]Order, len(orders))
	copy(out, orders)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderRef < out[j].OrderRef })
	return out
}

// PayloadItem is one itemized line of an order submission.
type PayloadItem struct {
	ProductID int64
	UnitPrice decimal.Decimal
	Quantity  int
}

// OrderPayload is the write-only submission model sent to the backend.
type OrderPayload struct {
	BuyerID         string
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
	Instructions    string
	Status          OrderStatus
	Items           []PayloadItem
	Fees            FeeBreakdown
	Point           *GeoPoint
}
