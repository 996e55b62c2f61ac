package broker

import "orderdesk/internal/model"

// ordersResponse mirrors the /get_orders body. Any absent bucket decodes to
// nil and is normalized to an empty slice before publication.
type ordersResponse struct {
	Pending   []model.Order `json:"pending"`
	Traded    []model.Order `json:"traded"`
	Rejected  []model.Order `json:"rejected"`
	Cancelled []model.Order `json:"cancelled"`
	Others    []model.Order `json:"others"`
}

// CancelRequest is the /cancel_order body: one batch, one response.
type CancelRequest struct {
	Orders []model.OrderRef `json:"orders"`
}

// ModifyRequest is the sparse-diff /modify_order body. Nil fields are omitted
// on the wire, which tells the router to keep the existing value.
type ModifyRequest struct {
	Name         string   `json:"name"`
	Symbol       string   `json:"symbol"`
	OrderID      string   `json:"order_id"`
	Quantity     *int     `json:"quantity,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	TriggerPrice *float64 `json:"triggerprice,omitempty"`
	OrderType    string   `json:"ordertype,omitempty"`
}

type modifyEnvelope struct {
	Order ModifyRequest `json:"order"`
}

// PlacePayload is the full /place_order body. It always carries the single
// quantity plus both differentiation maps (empty where not applicable) and the
// explicit mode flags, so the router can reconstruct submission intent without
// guessing.
type PlacePayload struct {
	GroupAcc          bool           `json:"groupacc"`
	Groups            []string       `json:"groups"`
	Clients           []string       `json:"clients"`
	Action            string         `json:"action"`
	OrderType         string         `json:"ordertype"`
	ProductType       string         `json:"producttype"`
	OrderDuration     string         `json:"orderduration"`
	Exchange          string         `json:"exchange"`
	Symbol            string         `json:"symbol"`
	Price             float64        `json:"price"`
	TriggerPrice      float64        `json:"triggerprice"`
	DisclosedQuantity float64        `json:"disclosedquantity"`
	AMOOrder          string         `json:"amoorder"`
	QtySelection      string         `json:"qtySelection"`
	QuantityInLot     int            `json:"quantityinlot"`
	PerClientQty      map[string]int `json:"perClientQty"`
	PerGroupQty       map[string]int `json:"perGroupQty"`
	DiffQty           bool           `json:"diffQty"`
	Multiplier        bool           `json:"multiplier"`
}

type ltpResponse struct {
	LTP float64 `json:"ltp"`
}

type clientsResponse struct {
	Clients []model.Client `json:"clients"`
}
