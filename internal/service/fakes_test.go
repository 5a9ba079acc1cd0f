package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/marketplace"
)

var errNotStubbed = errors.New("not stubbed")

type fakeMarketplace struct {
	searchNumbersFn    func(ctx context.Context, filter marketplace.Payload) ([]domain.DID, error)
	purchaseNumberFn   func(ctx context.Context, p marketplace.Purchase) (*marketplace.Response, error)
	addNumberFn        func(ctx context.Context, listing domain.NumberListing) (*marketplace.Response, error)
	listBuyersFn       func(ctx context.Context) ([]domain.Buyer, error)
	sendMessageFn      func(ctx context.Context, side marketplace.Side, msg marketplace.Message) (string, error)
	searchMarketViewFn func(ctx context.Context, filter marketplace.Payload) ([]domain.Rate, error)
	interconnectFn     func(ctx context.Context, ic marketplace.Interconnection) (*marketplace.Response, error)
	callHistoryFn      func(ctx context.Context, q marketplace.CallHistoryQuery) ([]domain.CDR, error)
	payHistoryFn       func(ctx context.Context, q marketplace.PayHistoryQuery) ([]domain.Transaction, error)
	listSellersFn      func(ctx context.Context, pager int, offset int) ([]domain.Seller, error)
	getTestNumbersFn   func(ctx context.Context, country string, description string) ([]domain.TestNumber, error)
	routeTestFn        func(ctx context.Context, test domain.RouteTest) (string, error)
}

var _ marketplace.API = (*fakeMarketplace)(nil)

func (f *fakeMarketplace) SearchNumbers(ctx context.Context, filter marketplace.Payload) ([]domain.DID, error) {
	if f.searchNumbersFn != nil {
		return f.searchNumbersFn(ctx, filter)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) PurchaseNumber(ctx context.Context, p marketplace.Purchase) (*marketplace.Response, error) {
	if f.purchaseNumberFn != nil {
		return f.purchaseNumberFn(ctx, p)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) AddNumber(ctx context.Context, listing domain.NumberListing) (*marketplace.Response, error) {
	if f.addNumberFn != nil {
		return f.addNumberFn(ctx, listing)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) ListBuyers(ctx context.Context) ([]domain.Buyer, error) {
	if f.listBuyersFn != nil {
		return f.listBuyersFn(ctx)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) SendMessage(ctx context.Context, side marketplace.Side, msg marketplace.Message) (string, error) {
	if f.sendMessageFn != nil {
		return f.sendMessageFn(ctx, side, msg)
	}
	return "", errNotStubbed
}

func (f *fakeMarketplace) SearchMarketView(ctx context.Context, filter marketplace.Payload) ([]domain.Rate, error) {
	if f.searchMarketViewFn != nil {
		return f.searchMarketViewFn(ctx, filter)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) Interconnect(ctx context.Context, ic marketplace.Interconnection) (*marketplace.Response, error) {
	if f.interconnectFn != nil {
		return f.interconnectFn(ctx, ic)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) CallHistory(ctx context.Context, q marketplace.CallHistoryQuery) ([]domain.CDR, error) {
	if f.callHistoryFn != nil {
		return f.callHistoryFn(ctx, q)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) PayHistory(ctx context.Context, q marketplace.PayHistoryQuery) ([]domain.Transaction, error) {
	if f.payHistoryFn != nil {
		return f.payHistoryFn(ctx, q)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) ListSellers(ctx context.Context, pager int, offset int) ([]domain.Seller, error) {
	if f.listSellersFn != nil {
		return f.listSellersFn(ctx, pager, offset)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) GetTestNumbers(ctx context.Context, country string, description string) ([]domain.TestNumber, error) {
	if f.getTestNumbersFn != nil {
		return f.getTestNumbersFn(ctx, country, description)
	}
	return nil, errNotStubbed
}

func (f *fakeMarketplace) RouteTest(ctx context.Context, test domain.RouteTest) (string, error) {
	if f.routeTestFn != nil {
		return f.routeTestFn(ctx, test)
	}
	return "", errNotStubbed
}

// memoryStore is a Seen/Record store without check-and-set.
type memoryStore struct {
	mu       sync.Mutex
	keys     map[domain.NotificationKey]bool
	recorded []domain.NotificationKey
	seenErr  error
}

func newMemoryStore(keys ...domain.NotificationKey) *memoryStore {
	s := &memoryStore{keys: make(map[domain.NotificationKey]bool)}
	for _, key := range keys {
		s.keys[key] = true
	}
	return s
}

func (s *memoryStore) Seen(ctx context.Context, key domain.NotificationKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seenErr != nil {
		return false, s.seenErr
	}
	return s.keys[key], nil
}

func (s *memoryStore) Record(ctx context.Context, key domain.NotificationKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	s.recorded = append(s.recorded, key)
	return nil
}

// claimingStore adds atomic check-and-set.
type claimingStore struct {
	*memoryStore
	claims []domain.NotificationKey
}

func (s *claimingStore) Claim(ctx context.Context, key domain.NotificationKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = append(s.claims, key)
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

type recordedAction struct {
	flow, action, result string
}

type recordingRecorder struct {
	mu      sync.Mutex
	actions []recordedAction
}

func (r *recordingRecorder) IncAction(flow string, action string, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, recordedAction{flow: flow, action: action, result: result})
}

func (r *recordingRecorder) count(result string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.result == result {
			n++
		}
	}
	return n
}

type fakeSummarizer struct {
	prompt string
	reply  string
	err    error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func applicationError(endpoint string, reason string) error {
	return &marketplace.Error{Kind: marketplace.KindApplication, Endpoint: endpoint, StatusCode: 200, Reason: reason}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
