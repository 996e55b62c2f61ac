// Package model holds the order-console data types shared across the poller,
// the selection model and the mutation builders.
package model

import (
	"strconv"
	"strings"
)

// Order is a single broker order row. The backend owns the lifecycle; the
// console never mutates an Order in place, it only sends mutation requests.
type Order struct {
	Name            string  `json:"name"`
	Symbol          string  `json:"symbol"`
	TransactionType string  `json:"transaction_type"`
	Quantity        float64 `json:"quantity"`
	Price           float64 `json:"price"`
	Status          string  `json:"status"`
	OrderID         string  `json:"order_id"`
}

// OrderSnapshot is the five-bucket collection returned by one read. The
// console only ever swaps whole snapshots; partial or merged states are never
// synthesized locally.
type OrderSnapshot struct {
	Pending   []Order `json:"pending"`
	Traded    []Order `json:"traded"`
	Rejected  []Order `json:"rejected"`
	Cancelled []Order `json:"cancelled"`
	Others    []Order `json:"others"`
}

// Empty reports whether the snapshot has no rows in any bucket.
func (s OrderSnapshot) Empty() bool {
	return len(s.Pending) == 0 && len(s.Traded) == 0 && len(s.Rejected) == 0 &&
		len(s.Cancelled) == 0 && len(s.Others) == 0
}

// RowKey derives the stable selection key for a displayed row: name, symbol
// and order_id, falling back to status and finally the positional index when
// the backend omits identifiers. Selection bookkeeping only; never sent
// upstream.
func RowKey(o Order, index int) string {
	tail := strings.TrimSpace(o.OrderID)
	if tail == "" {
		tail = strings.TrimSpace(o.Status)
	}
	if tail == "" {
		tail = strconv.Itoa(index)
	}
	return o.Name + "-" + o.Symbol + "-" + tail
}

// OrderRef is the immutable identity triple used by cancel and modify.
type OrderRef struct {
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	OrderID string `json:"order_id"`
}

// Ref extracts the identity triple from an order row.
func (o Order) Ref() OrderRef {
	return OrderRef{Name: o.Name, Symbol: o.Symbol, OrderID: o.OrderID}
}
