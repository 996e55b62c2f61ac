package console

import (
	"context"
	"testing"

	"orderdesk/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingSnapshot() model.OrderSnapshot {
	return model.OrderSnapshot{Pending: []model.Order{
		{Name: "Acc1", Symbol: "TCS", Quantity: 100, Price: 1490.5, OrderID: "OID1"},
		{Name: "Acc2", Symbol: "INFY", Quantity: 5, OrderID: "OID2"},
	}}
}

func TestOpenModifyRequiresExactlyOneSelection(t *testing.T) {
	snap := pendingSnapshot()
	c := newTestConsole(snap, &fakeMutationGateway{}, nil)

	_, err := c.OpenModify(context.Background())
	assert.ErrorIs(t, err, ErrSelectOne)

	selectRow(c, snap, 0)
	selectRow(c, snap, 1)
	_, err = c.OpenModify(context.Background())
	assert.ErrorIs(t, err, ErrSelectOnlyOne)
}

func TestOpenModifyPrefillsFromSelectedRow(t *testing.T) {
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{ltp: 1502.35}
	c := newTestConsole(snap, gw, nil)
	selectRow(c, snap, 0)

	form, err := c.OpenModify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.OrderRef{Name: "Acc1", Symbol: "TCS", OrderID: "OID1"}, form.Target)
	assert.Equal(t, "100", form.Quantity)
	assert.Equal(t, "1490.5", form.Price)
	assert.Equal(t, "1502.35", form.LastTradedPrice)
}

func TestOpenModifyDegradesLTPToPlaceholder(t *testing.T) {
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{ltpErr: assert.AnError}
	c := newTestConsole(snap, gw, nil)
	selectRow(c, snap, 0)

	form, err := c.OpenModify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LTPPlaceholder, form.LastTradedPrice)
}

func TestSubmitModifyWithoutOpenTarget(t *testing.T) {
	c := newTestConsole(pendingSnapshot(), &fakeMutationGateway{}, nil)
	_, err := c.SubmitModify(context.Background(), ModifyFields{Quantity: "15"})
	assert.ErrorIs(t, err, ErrNoModifyTarget)
}

func openTarget(t *testing.T, c *Console, snap model.OrderSnapshot, idx int) {
	t.Helper()
	selectRow(c, snap, idx)
	_, err := c.OpenModify(context.Background())
	require.NoError(t, err)
}

func TestSubmitModifyRequirementMatrix(t *testing.T) {
	cases := []struct {
		name      string
		fields    ModifyFields
		wantField string
	}{
		{"limit needs price", ModifyFields{OrderType: "LIMIT"}, "price"},
		{"stoploss needs price", ModifyFields{OrderType: "STOPLOSS", TriggerPrice: "99"}, "price"},
		{"stoploss needs trigger", ModifyFields{OrderType: "STOPLOSS", Price: "100"}, "trigger_price"},
		{"sl market needs trigger", ModifyFields{OrderType: "SL MARKET"}, "trigger_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := pendingSnapshot()
			gw := &fakeMutationGateway{}
			c := newTestConsole(snap, gw, nil)
			openTarget(t, c, snap, 0)

			_, err := c.SubmitModify(context.Background(), tc.fields)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.wantField, fe.Field)
			assert.Empty(t, gw.modifyCalls)
			assert.False(t, c.Poller().Busy())
		})
	}
}

func TestSubmitModifyMarketNeedsNoExtras(t *testing.T) {
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{modifyMsg: "ok"}
	c := newTestConsole(snap, gw, nil)
	openTarget(t, c, snap, 0)

	_, err := c.SubmitModify(context.Background(), ModifyFields{OrderType: "MARKET"})
	require.NoError(t, err)
	require.Len(t, gw.modifyCalls, 1)
	req := gw.modifyCalls[0]
	assert.Equal(t, "MARKET", req.OrderType)
	assert.Nil(t, req.Quantity)
	assert.Nil(t, req.Price)
	assert.Nil(t, req.TriggerPrice)
}

func TestSubmitModifyNothingToUpdate(t *testing.T) {
	snap := pendingSnapshot()
	c := newTestConsole(snap, &fakeMutationGateway{}, nil)
	openTarget(t, c, snap, 0)

	_, err := c.SubmitModify(context.Background(), ModifyFields{})
	assert.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestSubmitModifyRejectsBadNumbers(t *testing.T) {
	snap := pendingSnapshot()
	c := newTestConsole(snap, &fakeMutationGateway{}, nil)
	openTarget(t, c, snap, 0)

	_, err := c.SubmitModify(context.Background(), ModifyFields{Quantity: "-3"})
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "quantity", fe.Field)

	_, err = c.SubmitModify(context.Background(), ModifyFields{Price: "abc"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "price", fe.Field)

	_, err = c.SubmitModify(context.Background(), ModifyFields{OrderType: "ICEBERG"})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "order_type", fe.Field)
}

func TestSubmitModifySendsSparseDiff(t *testing.T) {
	// Operator selects Acc1/TCS qty 100 and changes only the quantity to 15:
	// the wire payload is identity plus quantity, nothing else.
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{modifyMsg: "modified"}
	audit := &fakeAudit{}
	c := newTestConsole(snap, gw, audit)
	openTarget(t, c, snap, 0)

	msg, err := c.SubmitModify(context.Background(), ModifyFields{Quantity: "15"})
	require.NoError(t, err)
	assert.Equal(t, "modified", msg)

	require.Len(t, gw.modifyCalls, 1)
	req := gw.modifyCalls[0]
	assert.Equal(t, "Acc1", req.Name)
	assert.Equal(t, "TCS", req.Symbol)
	assert.Equal(t, "OID1", req.OrderID)
	require.NotNil(t, req.Quantity)
	assert.Equal(t, 15, *req.Quantity)
	assert.Nil(t, req.Price)
	assert.Nil(t, req.TriggerPrice)
	assert.Empty(t, req.OrderType)

	// Success path: selection cleared, target consumed, refresh queued.
	assert.Empty(t, c.Selection().Keys())
	assert.False(t, c.Poller().Busy())
	assert.Len(t, c.Poller().refreshCh, 1)
	_, hasTarget := c.currentTarget()
	assert.False(t, hasTarget)

	rec, ok := audit.last()
	require.True(t, ok)
	assert.Equal(t, "modify", rec.Action)
	assert.Equal(t, model.AuditOutcomeOK, rec.Outcome)
}

func TestSubmitModifyStopLossWithBothFieldsOmitsQuantity(t *testing.T) {
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{modifyMsg: "modified"}
	c := newTestConsole(snap, gw, nil)
	openTarget(t, c, snap, 0)

	_, err := c.SubmitModify(context.Background(), ModifyFields{
		OrderType:    "STOPLOSS",
		Price:        "250",
		TriggerPrice: "248.5",
	})
	require.NoError(t, err)

	require.Len(t, gw.modifyCalls, 1)
	req := gw.modifyCalls[0]
	assert.Equal(t, "STOPLOSS", req.OrderType)
	require.NotNil(t, req.Price)
	assert.Equal(t, 250.0, *req.Price)
	require.NotNil(t, req.TriggerPrice)
	assert.Equal(t, 248.5, *req.TriggerPrice)
	assert.Nil(t, req.Quantity)
}

func TestModifyEndToEndScenario(t *testing.T) {
	// Fetch publishes one pending order, the operator selects its row and
	// changes only the quantity to 15 leaving everything else untouched.
	snap := model.OrderSnapshot{Pending: []model.Order{{
		Name: "Acc1", Symbol: "TCS", OrderID: "100",
		Quantity: 10, Price: 250, Status: "OPEN", TransactionType: "BUY",
	}}}
	gw := &fakeMutationGateway{modifyMsg: "modified"}
	c := newTestConsole(snap, gw, nil)

	c.Selection().Toggle("Acc1-TCS-100")
	form, err := c.OpenModify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10", form.Quantity)
	assert.Equal(t, "250", form.Price)

	_, err = c.SubmitModify(context.Background(), ModifyFields{Quantity: "15"})
	require.NoError(t, err)

	require.Len(t, gw.modifyCalls, 1)
	req := gw.modifyCalls[0]
	assert.Equal(t, "Acc1", req.Name)
	assert.Equal(t, "TCS", req.Symbol)
	assert.Equal(t, "100", req.OrderID)
	require.NotNil(t, req.Quantity)
	assert.Equal(t, 15, *req.Quantity)
	assert.Nil(t, req.Price)
	assert.Nil(t, req.TriggerPrice)
	assert.Empty(t, req.OrderType)
}

func TestSubmitModifyFailureKeepsTarget(t *testing.T) {
	snap := pendingSnapshot()
	gw := &fakeMutationGateway{modifyErr: assert.AnError}
	audit := &fakeAudit{}
	c := newTestConsole(snap, gw, audit)
	openTarget(t, c, snap, 0)

	_, err := c.SubmitModify(context.Background(), ModifyFields{Quantity: "15"})
	require.Error(t, err)

	_, hasTarget := c.currentTarget()
	assert.True(t, hasTarget)
	assert.False(t, c.Poller().Busy())
	assert.Len(t, c.Poller().refreshCh, 0)

	rec, ok := audit.last()
	require.True(t, ok)
	assert.Equal(t, model.AuditOutcomeError, rec.Outcome)
}
