// Package submit implements the trade-submission core: the draft form state,
// the quantity distribution rules, payload building and draft persistence.
package submit

import "strings"

// DraftVersion tags persisted drafts so future field changes can migrate
// rather than corrupt old records.
const DraftVersion = 1

// DraftKey is the single fixed storage key for the persisted draft.
const DraftKey = "trade_draft"

// TradeDraft is the full trade-form field set. Quantities are kept as strings
// exactly as the inputs hold them, so a blank field survives a reload; the
// distributor is what snaps blanks back to safe integers.
type TradeDraft struct {
	Version      int    `json:"v"`
	Action       string `json:"action"`
	ProductType  string `json:"product_type"`
	QtySelection string `json:"qty_selection"`
	GroupAcc     bool   `json:"group_acc"`
	DiffQty      bool   `json:"diff_qty"`
	Multiplier   bool   `json:"multiplier"`
	Quantity     string `json:"quantity"`
	OrderType    string `json:"order_type"`
	Duration     string `json:"duration"`
	AMO          bool   `json:"amo"`
	Exchange     string `json:"exchange"`
	Symbol       string `json:"symbol"`
	Price        float64 `json:"price"`
	TriggerPrice float64 `json:"trigger_price"`
	DisclosedQty float64 `json:"disclosed_qty"`

	SelectedClients []string          `json:"selected_clients"`
	SelectedGroups  []string          `json:"selected_groups"`
	PerClientQty    map[string]string `json:"per_client_qty"`
	PerGroupQty     map[string]string `json:"per_group_qty"`
}

// DefaultDraft returns the form defaults used when nothing was persisted or
// the persisted record is unusable.
func DefaultDraft() TradeDraft {
	return TradeDraft{
		Version:         DraftVersion,
		Action:          "buy",
		ProductType:     "VALUEPLUS",
		QtySelection:    "manual",
		Quantity:        "1",
		OrderType:       "LIMIT",
		Duration:        "DAY",
		Exchange:        "nse",
		SelectedClients: []string{},
		SelectedGroups:  []string{},
		PerClientQty:    map[string]string{},
		PerGroupQty:     map[string]string{},
	}
}

// normalize repairs nil collections after JSON decoding so downstream code
// never branches on nil maps.
func (d *TradeDraft) normalize() {
	if d.SelectedClients == nil {
		d.SelectedClients = []string{}
	}
	if d.SelectedGroups == nil {
		d.SelectedGroups = []string{}
	}
	if d.PerClientQty == nil {
		d.PerClientQty = map[string]string{}
	}
	if d.PerGroupQty == nil {
		d.PerGroupQty = map[string]string{}
	}
	if d.Version <= 0 {
		d.Version = DraftVersion
	}
}

// canonical uppercases an enum-like field for transmission.
func canonical(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
