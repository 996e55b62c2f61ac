package console

import (
	"context"
	"sync"
	"time"

	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/model"
)

// fakeMutationGateway records calls and replies with canned results.
type fakeMutationGateway struct {
	mu sync.Mutex

	cancelCalls [][]model.OrderRef
	cancelMsg   string
	cancelErr   error

	modifyCalls []broker.ModifyRequest
	modifyMsg   string
	modifyErr   error

	ltp    float64
	ltpErr error
}

func (g *fakeMutationGateway) CancelOrders(ctx context.Context, orders []model.OrderRef) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelCalls = append(g.cancelCalls, orders)
	return g.cancelMsg, g.cancelErr
}

func (g *fakeMutationGateway) ModifyOrder(ctx context.Context, req broker.ModifyRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.modifyCalls = append(g.modifyCalls, req)
	return g.modifyMsg, g.modifyErr
}

func (g *fakeMutationGateway) LTP(ctx context.Context, symbol string) (float64, error) {
	return g.ltp, g.ltpErr
}

// fakeAudit collects records in memory.
type fakeAudit struct {
	mu      sync.Mutex
	records []model.AuditRecord
}

func (a *fakeAudit) Record(ctx context.Context, rec model.AuditRecord) {
	a.mu.Lock()
	a.records = append(a.records, rec)
	a.mu.Unlock()
}

func (a *fakeAudit) last() (model.AuditRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.records) == 0 {
		return model.AuditRecord{}, false
	}
	return a.records[len(a.records)-1], true
}

// newTestConsole seeds a console whose poller already holds snap.
func newTestConsole(snap model.OrderSnapshot, gw *fakeMutationGateway, audit *fakeAudit) *Console {
	p := NewPoller(&scriptedGateway{}, time.Hour)
	p.mu.Lock()
	p.snapshot = snap
	p.fingerprint = Fingerprint(snap)
	p.lastUpdated = time.Now()
	p.mu.Unlock()
	var sink AuditSink
	if audit != nil {
		sink = audit
	}
	return New(p, NewSelection(), gw, sink)
}

func selectRow(c *Console, snap model.OrderSnapshot, idx int) {
	c.Selection().Toggle(model.RowKey(snap.Pending[idx], idx))
}
