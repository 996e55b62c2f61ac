package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"orderdesk/internal/console"
	"orderdesk/internal/gateway/broker"
	"orderdesk/internal/logger"
	"orderdesk/internal/model"

	"github.com/google/uuid"
)

// Gateway is the broker surface the submission side needs: reference data,
// symbol lookup and the place call.
type Gateway interface {
	GetClients(ctx context.Context) ([]model.Client, error)
	GetGroups(ctx context.Context) ([]model.Group, error)
	SearchSymbols(ctx context.Context, q, exchange string) ([]model.SymbolOption, error)
	PlaceOrder(ctx context.Context, payload broker.PlacePayload) (string, error)
}

// DraftStore persists the single trade draft. Load returns (nil, nil) when no
// record exists.
type DraftStore interface {
	SaveDraft(ctx context.Context, key string, payload []byte) error
	LoadDraft(ctx context.Context, key string) ([]byte, error)
}

// BusyGuard serializes mutations against the polling loop. Satisfied by the
// console poller.
type BusyGuard interface {
	BeginMutation() func()
}

// Service drives the trade form: reference-data caching, draft persistence
// and order placement.
type Service struct {
	gateway Gateway
	store   DraftStore
	guard   BusyGuard
	audit   console.AuditSink

	mu      sync.Mutex
	clients []model.Client
	groups  []model.Group
}

// NewService constructs a submission service. store, guard and audit may each
// be nil; the corresponding behavior degrades rather than fails.
func NewService(gateway Gateway, store DraftStore, guard BusyGuard, audit console.AuditSink) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		guard:   guard,
		audit:   audit,
	}
}

// Clients returns the cached client list, fetching it on first use. The list
// changes only on router restarts, so one fetch per process is enough.
func (s *Service) Clients(ctx context.Context) ([]model.Client, error) {
	s.mu.Lock()
	cached := s.clients
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	clients, err := s.gateway.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []model.Client{}
	}
	s.mu.Lock()
	s.clients = clients
	s.mu.Unlock()
	return clients, nil
}

// Groups returns the cached group list, fetching it on first use.
func (s *Service) Groups(ctx context.Context) ([]model.Group, error) {
	s.mu.Lock()
	cached := s.groups
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	groups, err := s.gateway.GetGroups(ctx)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []model.Group{}
	}
	s.mu.Lock()
	s.groups = groups
	s.mu.Unlock()
	return groups, nil
}

// SearchSymbols passes a typed-ahead lookup through to the router.
func (s *Service) SearchSymbols(ctx context.Context, q, exchange string) ([]model.SymbolOption, error) {
	options, err := s.gateway.SearchSymbols(ctx, q, exchange)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []model.SymbolOption{}
	}
	return options, nil
}

// SaveDraft persists the current form state. Persistence is best effort: a
// store failure is logged and the form keeps working from memory.
func (s *Service) SaveDraft(ctx context.Context, draft TradeDraft) {
	if s.store == nil {
		return
	}
	draft.normalize()
	draft.Version = DraftVersion
	payload, err := json.Marshal(draft)
	if err != nil {
		logger.Warnf("submit: serializing draft failed: %v", err)
		return
	}
	if err := s.store.SaveDraft(ctx, DraftKey, payload); err != nil {
		logger.Warnf("submit: persisting draft failed: %v", err)
	}
}

// LoadDraft restores the persisted form state, falling back to defaults when
// nothing usable is stored.
func (s *Service) LoadDraft(ctx context.Context) TradeDraft {
	if s.store == nil {
		return DefaultDraft()
	}
	raw, err := s.store.LoadDraft(ctx, DraftKey)
	if err != nil {
		logger.Warnf("submit: loading draft failed: %v", err)
		return DefaultDraft()
	}
	return DecodeDraft(raw)
}

// Place validates the draft, builds the full payload and submits it. The
// busy guard holds off the polling loop for the duration; on success the
// caller-visible router message comes back verbatim.
func (s *Service) Place(ctx context.Context, draft TradeDraft) (string, error) {
	payload, err := BuildPlacePayload(draft)
	if err != nil {
		return "", err
	}

	trace := uuid.NewString()
	release := func() {}
	if s.guard != nil {
		release = s.guard.BeginMutation()
	}
	defer release()

	logger.Infof("submit: place trace=%s symbol=%s action=%s", trace, payload.Symbol, payload.Action)
	msg, err := s.gateway.PlaceOrder(ctx, payload)
	if err != nil {
		s.recordAudit(ctx, model.AuditRecord{
			TraceID: trace,
			Action:  "place",
			Summary: placeSummary(payload),
			Outcome: model.AuditOutcomeError,
			Detail:  err.Error(),
		})
		logger.Errorf("submit: place failed trace=%s err=%v", trace, err)
		return "", err
	}

	s.recordAudit(ctx, model.AuditRecord{
		TraceID: trace,
		Action:  "place",
		Summary: placeSummary(payload),
		Outcome: model.AuditOutcomeOK,
		Detail:  msg,
	})
	release()
	return msg, nil
}

func (s *Service) recordAudit(ctx context.Context, rec model.AuditRecord) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, rec)
}

func placeSummary(p broker.PlacePayload) string {
	target := fmt.Sprintf("%d clients", len(p.Clients))
	if p.GroupAcc {
		target = fmt.Sprintf("%d groups", len(p.Groups))
	}
	return fmt.Sprintf("%s %s %s for %s", p.Action, p.OrderType, p.Symbol, target)
}
