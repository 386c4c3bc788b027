package model

import "slices"

type OrderStatus int

const (
	UnknownStatus OrderStatus = iota - 1
	Pending
	Packed
	Shipped
	OutForDelivery
	Delivered
)

// statusFlow is the only path an order travels. Advancing never goes back.
var statusFlow = []OrderStatus{Pending, Packed, Shipped, OutForDelivery, Delivered}

var statusLabels = map[OrderStatus]string{
	Pending:        "Pending",
	Packed:         "Packed",
	Shipped:        "Shipped",
	OutForDelivery: "Out for delivery",
	Delivered:      "Delivered",
}

func ParseOrderStatus(label string) OrderStatus {
	for status, l := range statusLabels {
		if l == label {
			return status
		}
	}
	return UnknownStatus
}

func (s OrderStatus) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

func (s OrderStatus) IsTerminal() bool {
	return s == statusFlow[len(statusFlow)-1]
}

// Next returns the status following s. The terminal status maps to itself,
// a status outside the flow falls back to Pending.
func (s OrderStatus) Next() OrderStatus {
	i := slices.Index(statusFlow, s)
	switch {
	case i < 0:
		return Pending
	case i == len(statusFlow)-1:
		return s
	default:
		return statusFlow[i+1]
	}
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
