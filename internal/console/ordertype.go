package console

import (
	"fmt"
	"strings"
)

// OrderType is the canonical wire token for an order type. The display labels
// shown by the trade surface ("SL MARKET") differ from the tokens; translation
// goes through ParseOrderTypeLabel, never ad hoc string matching.
type OrderType string

const (
	OrderTypeNoChange       OrderType = "NO_CHANGE"
	OrderTypeLimit          OrderType = "LIMIT"
	OrderTypeMarket         OrderType = "MARKET"
	OrderTypeStopLoss       OrderType = "STOPLOSS"
	OrderTypeStopLossMarket OrderType = "STOPLOSS_MARKET"
)

// ParseOrderTypeLabel maps a display label or wire token onto the closed
// OrderType set. Blank means "no change" on the modify screen.
func ParseOrderTypeLabel(label string) (OrderType, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "", "NO CHANGE", "NO_CHANGE", "NOCHANGE":
		return OrderTypeNoChange, nil
	case "LIMIT":
		return OrderTypeLimit, nil
	case "MARKET":
		return OrderTypeMarket, nil
	case "STOPLOSS", "SL", "SL LIMIT", "SL_LIMIT":
		return OrderTypeStopLoss, nil
	case "SL MARKET", "SL_MARKET", "STOPLOSS MARKET", "STOPLOSS_MARKET", "SLM":
		return OrderTypeStopLossMarket, nil
	default:
		return "", fmt.Errorf("unknown order type %q", label)
	}
}

// FieldRequirements lists the optional fields an order type turns mandatory.
type FieldRequirements struct {
	Price   bool
	Trigger bool
}

// Requirements returns the requirement matrix row for the order type.
func (t OrderType) Requirements() FieldRequirements {
	switch t {
	case OrderTypeLimit:
		return FieldRequirements{Price: true}
	case OrderTypeStopLoss:
		return FieldRequirements{Price: true, Trigger: true}
	case OrderTypeStopLossMarket:
		return FieldRequirements{Trigger: true}
	default:
		// MARKET and NO_CHANGE require neither.
		return FieldRequirements{}
	}
}
