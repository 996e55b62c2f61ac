package console

import (
	"context"
	"fmt"

	"orderdesk/internal/logger"
	"orderdesk/internal/model"

	"github.com/google/uuid"
)

// CancelSelected cancels every selected pending row as one batch request.
// The batch is a single request/response unit: on failure nothing is applied
// locally, selection included, so the operator can retry as-is.
func (c *Console) CancelSelected(ctx context.Context) (string, error) {
	snap, _ := c.poller.Snapshot()
	rows := c.selection.SelectedPending(snap)
	if len(rows) == 0 {
		return "", ErrNoSelection
	}
	refs := make([]model.OrderRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, row.Ref())
	}

	trace := uuid.NewString()
	release := c.poller.BeginMutation()
	defer release()

	logger.Infof("console: cancel batch trace=%s orders=%d", trace, len(refs))
	msg, err := c.gateway.CancelOrders(ctx, refs)
	if err != nil {
		c.recordAudit(ctx, model.AuditRecord{
			TraceID: trace,
			Action:  "cancel",
			Summary: fmt.Sprintf("batch of %d pending orders", len(refs)),
			Outcome: model.AuditOutcomeError,
			Detail:  err.Error(),
		})
		logger.Errorf("console: cancel batch failed trace=%s err=%v", trace, err)
		return "", err
	}

	c.recordAudit(ctx, model.AuditRecord{
		TraceID: trace,
		Action:  "cancel",
		Summary: fmt.Sprintf("batch of %d pending orders", len(refs)),
		Outcome: model.AuditOutcomeOK,
		Detail:  msg,
	})
	release()
	c.afterMutationSuccess()
	return msg, nil
}
