package deskhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orderdesk/internal/console"
	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/model"
	"orderdesk/internal/submit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	snapshot  model.OrderSnapshot
	cancelErr error
	modifyErr error
	placeErr  error
	clients   []model.Client
	groups    []model.Group
	symbols   []model.SymbolOption
}

func (g *stubGateway) GetOrders(ctx context.Context) (model.OrderSnapshot, error) {
	return g.snapshot, nil
}

func (g *stubGateway) CancelOrders(ctx context.Context, orders []model.OrderRef) (string, error) {
	if g.cancelErr != nil {
		return "", g.cancelErr
	}
	return "cancelled", nil
}

func (g *stubGateway) ModifyOrder(ctx context.Context, req broker.ModifyRequest) (string, error) {
	if g.modifyErr != nil {
		return "", g.modifyErr
	}
	return "modified", nil
}

func (g *stubGateway) LTP(ctx context.Context, symbol string) (float64, error) {
	return 1502.35, nil
}

func (g *stubGateway) GetClients(ctx context.Context) ([]model.Client, error) {
	return g.clients, nil
}

func (g *stubGateway) GetGroups(ctx context.Context) ([]model.Group, error) {
	return g.groups, nil
}

func (g *stubGateway) SearchSymbols(ctx context.Context, q, exchange string) ([]model.SymbolOption, error) {
	return g.symbols, nil
}

func (g *stubGateway) PlaceOrder(ctx context.Context, payload broker.PlacePayload) (string, error) {
	if g.placeErr != nil {
		return "", g.placeErr
	}
	return "placed", nil
}

func newTestServer(t *testing.T, gw *stubGateway) (*Server, *console.Console) {
	t.Helper()
	poller := console.NewPoller(gw, time.Hour)
	con := console.New(poller, console.NewSelection(), gw, nil)
	sub := submit.NewService(gw, nil, poller, nil)

	srv, err := NewServer(ServerConfig{
		Addr:   ":0",
		Router: NewRouter(con, sub, nil),
	})
	require.NoError(t, err)

	// Seed the published snapshot through a normal tick.
	if !gw.snapshot.Empty() {
		poller.Tick(context.Background())
		require.Eventually(t, func() bool {
			snap, _ := poller.Snapshot()
			return !snap.Empty()
		}, time.Second, 5*time.Millisecond)
	}
	return srv, con
}

func doJSON(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func pendingRow() model.Order {
	return model.Order{Name: "Acc1", Symbol: "TCS", Quantity: 100, Price: 1490.5, OrderID: "OID1"}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})
	rec := doJSON(srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrdersEndpointReturnsSnapshot(t *testing.T) {
	gw := &stubGateway{snapshot: model.OrderSnapshot{Pending: []model.Order{pendingRow()}}}
	srv, _ := newTestServer(t, gw)

	rec := doJSON(srv, http.MethodGet, "/api/desk/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders      model.OrderSnapshot `json:"orders"`
		Busy        bool                `json:"busy"`
		LastUpdated string              `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders.Pending, 1)
	assert.Equal(t, "Acc1", resp.Orders.Pending[0].Name)
	assert.False(t, resp.Busy)
	assert.NotEmpty(t, resp.LastUpdated)
}

func TestSelectionToggleValidation(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	rec := doJSON(srv, http.MethodPost, "/api/desk/selection/toggle", `{"key":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(srv, http.MethodPost, "/api/desk/selection/toggle", `{"key":"Acc1-TCS-OID1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(srv, http.MethodGet, "/api/desk/selection", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acc1-TCS-OID1")

	rec = doJSON(srv, http.MethodPost, "/api/desk/selection/clear", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelWithoutSelectionIsBadRequest(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})
	rec := doJSON(srv, http.MethodPost, "/api/desk/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no orders selected")
}

func TestCancelUpstreamFailureIsBadGateway(t *testing.T) {
	row := pendingRow()
	gw := &stubGateway{
		snapshot:  model.OrderSnapshot{Pending: []model.Order{row}},
		cancelErr: assert.AnError,
	}
	srv, con := newTestServer(t, gw)
	con.Selection().Toggle(model.RowKey(row, 0))

	rec := doJSON(srv, http.MethodPost, "/api/desk/cancel", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestModifyFlowOverHTTP(t *testing.T) {
	row := pendingRow()
	gw := &stubGateway{snapshot: model.OrderSnapshot{Pending: []model.Order{row}}}
	srv, con := newTestServer(t, gw)
	con.Selection().Toggle(model.RowKey(row, 0))

	rec := doJSON(srv, http.MethodPost, "/api/desk/modify/open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"OID1"`)
	assert.Contains(t, rec.Body.String(), "1502.35")

	rec = doJSON(srv, http.MethodPost, "/api/desk/modify", `{"order_type":"STOPLOSS","price":"100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "trigger price")

	rec = doJSON(srv, http.MethodPost, "/api/desk/modify", `{"quantity":"15"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "modified")
}

func TestPlaceValidationAndUpstreamMapping(t *testing.T) {
	gw := &stubGateway{}
	srv, _ := newTestServer(t, gw)

	rec := doJSON(srv, http.MethodPost, "/api/desk/place", `{"action":"buy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	gw.placeErr = assert.AnError
	rec = doJSON(srv, http.MethodPost, "/api/desk/place", `{"action":"buy","order_type":"LIMIT","selected_clients":["C1"]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	gw.placeErr = nil
	rec = doJSON(srv, http.MethodPost, "/api/desk/place", `{"action":"buy","order_type":"LIMIT","selected_clients":["C1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "placed")
}

func TestReferenceDataEndpoints(t *testing.T) {
	gw := &stubGateway{
		clients: []model.Client{{ClientID: "C1", Name: "Acc1"}},
		groups:  []model.Group{{GroupName: "G1", NoOfClients: 1, Multiplier: 1}},
		symbols: []model.SymbolOption{{Value: "NSE:TCS", Label: "TCS LTD"}},
	}
	srv, _ := newTestServer(t, gw)

	rec := doJSON(srv, http.MethodGet, "/api/desk/clients", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acc1")

	rec = doJSON(srv, http.MethodGet, "/api/desk/groups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "G1")

	rec = doJSON(srv, http.MethodGet, "/api/desk/symbols?q=tcs&exchange=NSE", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "NSE:TCS")

	// Blank queries short-circuit without touching the router.
	rec = doJSON(srv, http.MethodGet, "/api/desk/symbols?q=", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"symbols":[]`)
}

func TestDraftEndpointsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})

	rec := doJSON(srv, http.MethodGet, "/api/desk/draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d submit.TradeDraft
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, submit.DefaultDraft().Action, d.Action)

	rec = doJSON(srv, http.MethodPut, "/api/desk/draft", `{"action":"sell","symbol":"TCS"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVisibilityEndpoint(t *testing.T) {
	srv, con := newTestServer(t, &stubGateway{})

	rec := doJSON(srv, http.MethodPost, "/api/desk/visibility", `{"visible":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	// A hidden surface skips ticks entirely.
	con.Poller().Tick(context.Background())
	snap, _ := con.Poller().Snapshot()
	assert.True(t, snap.Empty())

	rec = doJSON(srv, http.MethodPost, "/api/desk/visibility", `{"visible":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuditEndpointWithoutSink(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})
	rec := doJSON(srv, http.MethodGet, "/api/desk/audit", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefreshEndpointQueuesTick(t *testing.T) {
	srv, _ := newTestServer(t, &stubGateway{})
	rec := doJSON(srv, http.MethodPost, "/api/desk/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
