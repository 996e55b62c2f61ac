package submit

import (
	"errors"

	"orderdesk/internal/console"
	"orderdesk/internal/gateway/broker"
)

// User-facing validation errors raised before any network call.
var (
	ErrNoGroupSelected  = errors.New("select at least one group")
	ErrNoClientSelected = errors.New("select at least one client")
)

// BuildPlacePayload validates entity selection, resolves quantities and
// assembles the full /place_order body. Every enum-like field is normalized
// to its canonical uppercase token; the order type additionally goes through
// the closed label translation so "SL MARKET" leaves as STOPLOSS_MARKET.
func BuildPlacePayload(d TradeDraft) (broker.PlacePayload, error) {
	if d.GroupAcc {
		if len(d.SelectedGroups) == 0 {
			return broker.PlacePayload{}, ErrNoGroupSelected
		}
	} else if len(d.SelectedClients) == 0 {
		return broker.PlacePayload{}, ErrNoClientSelected
	}

	orderType, err := console.ParseOrderTypeLabel(d.OrderType)
	if err != nil {
		return broker.PlacePayload{}, &console.FieldError{Field: "order_type", Msg: err.Error()}
	}
	if orderType == console.OrderTypeNoChange {
		return broker.PlacePayload{}, &console.FieldError{Field: "order_type", Msg: "order type is required"}
	}

	quantities := Distribute(d)
	amo := "N"
	if d.AMO {
		amo = "Y"
	}
	return broker.PlacePayload{
		GroupAcc:          d.GroupAcc,
		Groups:            append([]string{}, d.SelectedGroups...),
		Clients:           append([]string{}, d.SelectedClients...),
		Action:            canonical(d.Action),
		OrderType:         string(orderType),
		ProductType:       canonical(d.ProductType),
		OrderDuration:     canonical(d.Duration),
		Exchange:          canonical(d.Exchange),
		Symbol:            d.Symbol,
		Price:             d.Price,
		TriggerPrice:      d.TriggerPrice,
		DisclosedQuantity: d.DisclosedQty,
		AMOOrder:          amo,
		QtySelection:      d.QtySelection,
		QuantityInLot:     quantities.Single,
		PerClientQty:      quantities.PerClient,
		PerGroupQty:       quantities.PerGroup,
		DiffQty:           d.DiffQty,
		Multiplier:        d.Multiplier,
	}, nil
}
