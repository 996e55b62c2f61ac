// Package console implements the order-console core: snapshot polling with
// change detection, row selection, and the cancel/modify mutation flows with
// their validation rules.
package console

import (
	"context"
	"errors"
	"sync"

	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/logger"
	"orderdesk/internal/model"
)

// User-facing validation errors. These block the network call and are
// reported synchronously.
var (
	ErrNoSelection     = errors.New("no orders selected")
	ErrSelectOne       = errors.New("select one order to modify")
	ErrSelectOnlyOne   = errors.New("select only one order to modify")
	ErrNoModifyTarget  = errors.New("no order opened for modify")
	ErrNothingToUpdate = errors.New("nothing to update")
)

// IsValidationError reports whether err is a local pre-network validation
// failure rather than a transport or backend error.
func IsValidationError(err error) bool {
	for _, known := range []error{
		ErrNoSelection, ErrSelectOne, ErrSelectOnlyOne,
		ErrNoModifyTarget, ErrNothingToUpdate,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	var fe *FieldError
	return errors.As(err, &fe)
}

// FieldError is a validation failure tied to a single input field.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Msg }

// MutationGateway is the write side of the broker contract plus the optional
// last-traded-price lookup.
type MutationGateway interface {
	CancelOrders(ctx context.Context, orders []model.OrderRef) (string, error)
	ModifyOrder(ctx context.Context, req broker.ModifyRequest) (string, error)
	LTP(ctx context.Context, symbol string) (float64, error)
}

// AuditSink records mutation attempts. Failures to record are the sink's
// problem; the console never blocks on it.
type AuditSink interface {
	Record(ctx context.Context, rec model.AuditRecord)
}

// Console ties the poller, the selection model and the mutation flows
// together. All mutations run under the poller's busy flag so no read is
// dispatched while one is in flight.
type Console struct {
	poller    *Poller
	selection *Selection
	gateway   MutationGateway
	audit     AuditSink

	mu     sync.Mutex
	target *model.OrderRef
}

// New constructs a console. audit may be nil.
func New(poller *Poller, selection *Selection, gateway MutationGateway, audit AuditSink) *Console {
	return &Console{
		poller:    poller,
		selection: selection,
		gateway:   gateway,
		audit:     audit,
	}
}

// Poller exposes the underlying poller for surface wiring.
func (c *Console) Poller() *Poller { return c.poller }

// Selection exposes the selection model for surface wiring.
func (c *Console) Selection() *Selection { return c.selection }

func (c *Console) setTarget(ref model.OrderRef) {
	c.mu.Lock()
	c.target = &ref
	c.mu.Unlock()
}

func (c *Console) clearTarget() {
	c.mu.Lock()
	c.target = nil
	c.mu.Unlock()
}

func (c *Console) currentTarget() (model.OrderRef, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return model.OrderRef{}, false
	}
	return *c.target, true
}

func (c *Console) recordAudit(ctx context.Context, rec model.AuditRecord) {
	if c.audit == nil {
		return
	}
	c.audit.Record(ctx, rec)
}

// afterMutationSuccess clears selection state and forces an immediate
// out-of-band refresh. The caller must have released the busy flag first or
// the refresh tick would be skipped.
func (c *Console) afterMutationSuccess() {
	c.selection.Clear()
	c.clearTarget()
	c.poller.Refresh()
	logger.Debugf("console: selection cleared, refresh forced")
}
