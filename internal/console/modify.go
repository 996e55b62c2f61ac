package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/logger"
	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LTPPlaceholder is shown when the optional last-traded-price lookup is
// unavailable.
const LTPPlaceholder = "--"

// ModifyForm is what the modify dialog opens with: the immutable target plus
// prefilled editable fields.
type ModifyForm struct {
	Target          model.OrderRef `json:"target"`
	Quantity        string         `json:"quantity"`
	Price           string         `json:"price"`
	LastTradedPrice string         `json:"last_traded_price"`
}

// ModifyFields carries the user-entered values of the modify dialog. Blank
// means "keep the existing value".
type ModifyFields struct {
	Quantity     string `json:"quantity"`
	Price        string `json:"price"`
	TriggerPrice string `json:"trigger_price"`
	OrderType    string `json:"order_type"`
}

// OpenModify validates the selection preconditions, captures the modify
// target and prefills quantity/price from the selected row. The LTP lookup is
// display-only: its failure degrades to a placeholder and never blocks.
func (c *Console) OpenModify(ctx context.Context) (*ModifyForm, error) {
	snap, _ := c.poller.Snapshot()
	rows := c.selection.SelectedPending(snap)
	switch {
	case len(rows) == 0:
		return nil, ErrSelectOne
	case len(rows) > 1:
		return nil, ErrSelectOnlyOne
	}
	row := rows[0]
	form := &ModifyForm{Target: row.Ref(), LastTradedPrice: LTPPlaceholder}
	if row.Quantity > 0 {
		form.Quantity = strconv.Itoa(int(row.Quantity))
	}
	if row.Price > 0 {
		form.Price = decimal.NewFromFloat(row.Price).String()
	}
	if ltp, err := c.gateway.LTP(ctx, row.Symbol); err == nil && ltp > 0 {
		form.LastTradedPrice = decimal.NewFromFloat(ltp).String()
	} else if err != nil {
		logger.Debugf("console: ltp lookup failed for %s: %v", row.Symbol, err)
	}
	c.setTarget(row.Ref())
	return form, nil
}

// SubmitModify validates the entered fields against the requirement matrix
// and sends a sparse-diff payload: identity plus only the fields the operator
// actually supplied.
func (c *Console) SubmitModify(ctx context.Context, fields ModifyFields) (string, error) {
	target, ok := c.currentTarget()
	if !ok {
		return "", ErrNoModifyTarget
	}

	orderType, err := ParseOrderTypeLabel(fields.OrderType)
	if err != nil {
		return "", &FieldError{Field: "order_type", Msg: err.Error()}
	}

	quantity, hasQuantity, err := parseQuantity(fields.Quantity)
	if err != nil {
		return "", err
	}
	price, hasPrice, err := parsePositiveDecimal("price", fields.Price)
	if err != nil {
		return "", err
	}
	trigger, hasTrigger, err := parsePositiveDecimal("trigger_price", fields.TriggerPrice)
	if err != nil {
		return "", err
	}

	if orderType != OrderTypeNoChange {
		req := orderType.Requirements()
		if req.Price && !hasPrice {
			return "", &FieldError{Field: "price", Msg: fmt.Sprintf("order type %s requires price", orderType)}
		}
		if req.Trigger && !hasTrigger {
			return "", &FieldError{Field: "trigger_price", Msg: fmt.Sprintf("order type %s requires trigger price", orderType)}
		}
	} else if !hasQuantity && !hasPrice && !hasTrigger {
		return "", ErrNothingToUpdate
	}

	payload := broker.ModifyRequest{
		Name:    target.Name,
		Symbol:  target.Symbol,
		OrderID: target.OrderID,
	}
	if hasQuantity {
		payload.Quantity = &quantity
	}
	if hasPrice {
		payload.Price = &price
	}
	if hasTrigger {
		payload.TriggerPrice = &trigger
	}
	if orderType != OrderTypeNoChange {
		payload.OrderType = string(orderType)
	}

	trace := uuid.NewString()
	release := c.poller.BeginMutation()
	defer release()

	logger.Infof("console: modify trace=%s order=%s symbol=%s", trace, target.OrderID, target.Symbol)
	msg, err := c.gateway.ModifyOrder(ctx, payload)
	if err != nil {
		c.recordAudit(ctx, model.AuditRecord{
			TraceID: trace,
			Action:  "modify",
			Summary: modifySummary(payload),
			Outcome: model.AuditOutcomeError,
			Detail:  err.Error(),
		})
		logger.Errorf("console: modify failed trace=%s err=%v", trace, err)
		return "", err
	}

	c.recordAudit(ctx, model.AuditRecord{
		TraceID: trace,
		Action:  "modify",
		Summary: modifySummary(payload),
		Outcome: model.AuditOutcomeOK,
		Detail:  msg,
	})
	release()
	c.afterMutationSuccess()
	return msg, nil
}

// parseQuantity accepts a blank value or a positive whole number.
func parseQuantity(raw string) (int, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false, &FieldError{Field: "quantity", Msg: "quantity must be a positive whole number"}
	}
	return n, true, nil
}

// parsePositiveDecimal accepts a blank value or a positive real number.
func parsePositiveDecimal(field, raw string) (float64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return 0, false, &FieldError{Field: field, Msg: strings.ReplaceAll(field, "_", " ") + " must be a positive number"}
	}
	f, _ := d.Float64()
	return f, true, nil
}

func modifySummary(req broker.ModifyRequest) string {
	parts := []string{"order " + req.OrderID + " " + req.Symbol}
	if req.Quantity != nil {
		parts = append(parts, fmt.Sprintf("qty=%d", *req.Quantity))
	}
	if req.Price != nil {
		parts = append(parts, fmt.Sprintf("price=%g", *req.Price))
	}
	if req.TriggerPrice != nil {
		parts = append(parts, fmt.Sprintf("trigger=%g", *req.TriggerPrice))
	}
	if req.OrderType != "" {
		parts = append(parts, "type="+req.OrderType)
	}
	return strings.Join(parts, " ")
}
