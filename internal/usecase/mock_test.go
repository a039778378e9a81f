package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"

	"github.com/rs/zerolog"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// --- orders ---

type memOrderRepo struct {
	mu        sync.RWMutex
	store     map[string]*model.Order
	saves     int
	saveErr   error
	saveDelay time.Duration
	updateErr error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{store: make(map[string]*model.Order)}
}

func (m *memOrderRepo) Save(ctx context.Context, o *model.Order) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saveDelay > 0 {
		time.Sleep(m.saveDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.store[o.ID] = &cp
	m.saves++
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.NewNotFound("order", id)
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) FindByPaymentIntent(ctx context.Context, piID string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.store {
		if o.PaymentIntentID == piID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.NewNotFound("order", piID)
}

func (m *memOrderRepo) Update(ctx context.Context, id string, p model.OrderPatch) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.NewNotFound("order", id)
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		o.PaymentStatus = *p.PaymentStatus
	}
	if p.ViewToken != nil {
		o.ViewToken = *p.ViewToken
	}
	if p.ViewTokenExpiresAt != nil {
		o.ViewTokenExpiresAt = p.ViewTokenExpiresAt
	}
	if p.PaymentIntentID != nil {
		o.PaymentIntentID = *p.PaymentIntentID
	}
	if p.TicketIDs != nil {
		o.TicketIDs = append([]string(nil), (*p.TicketIDs)...)
	}
	return nil
}

func (m *memOrderRepo) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

func (m *memOrderRepo) only() *model.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.store {
		cp := *o
		return &cp
	}
	return nil
}

// --- tickets ---

type memTicketRepo struct {
	mu      sync.RWMutex
	store   map[string][]*model.Ticket
	calls   int
	failOn  map[int]error // 1-based Save call number -> error
	listErr error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{store: make(map[string][]*model.Ticket), failOn: map[int]error{}}
}

func (m *memTicketRepo) Save(ctx context.Context, orderID string, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.failOn[m.calls]; err != nil {
		return err
	}
	cp := *t
	m.store[orderID] = append(m.store[orderID], &cp)
	return nil
}

func (m *memTicketRepo) ListByOrder(ctx context.Context, orderID string) ([]*model.Ticket, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Ticket, 0, len(m.store[orderID]))
	for _, t := range m.store[orderID] {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// --- users ---

type memUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User
	err   error
}

func newMemUserRepo(users ...*model.User) *memUserRepo {
	m := &memUserRepo{store: make(map[string]*model.User)}
	for _, u := range users {
		m.store[u.ID] = u
	}
	return m
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.NewNotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindOneByField(ctx context.Context, field, value string) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.store))
	for id := range m.store {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		u := m.store[id]
		var v string
		switch field {
		case model.UserFieldEmail:
			v = u.Email
		case model.UserFieldStripeCustomerID:
			v = u.StripeCustomerID
		}
		if v == value {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewNotFound("user", field+"="+value)
}

// --- catalog ---

type memCatalog struct {
	performances map[string]*model.Performance
	venues       map[string]*model.Venue
	productions  map[string]*model.Production
	sellers      map[string]*model.Seller
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		performances: map[string]*model.Performance{},
		venues:       map[string]*model.Venue{},
		productions:  map[string]*model.Production{},
		sellers:      map[string]*model.Seller{},
	}
}

func (m *memCatalog) FindPerformance(ctx context.Context, id string) (*model.Performance, error) {
	if p, ok := m.performances[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFound("performance", id)
}

func (m *memCatalog) FindVenue(ctx context.Context, id string) (*model.Venue, error) {
	if v, ok := m.venues[id]; ok {
		return v, nil
	}
	return nil, domain.NewNotFound("venue", id)
}

func (m *memCatalog) FindProduction(ctx context.Context, id string) (*model.Production, error) {
	if p, ok := m.productions[id]; ok {
		return p, nil
	}
	return nil, domain.NewNotFound("production", id)
}

func (m *memCatalog) FindSeller(ctx context.Context, id string) (*model.Seller, error) {
	if s, ok := m.sellers[id]; ok {
		return s, nil
	}
	return nil, domain.NewNotFound("seller", id)
}

// --- subscriptions ---

type memSubRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Subscription
	writes  int
	findErr error
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) FindByUser(ctx context.Context, userID string) (*model.Subscription, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.NewNotFound("subscription", userID)
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) Upsert(ctx context.Context, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.UserID] = &cp
	m.writes++
	return nil
}

func (m *memSubRepo) Patch(ctx context.Context, userID string, p model.SubscriptionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		s = &model.Subscription{UserID: userID}
		m.store[userID] = s
	}
	p.Apply(s)
	m.writes++
	return nil
}

// --- failure ledger ---

type memLedger struct {
	mu      sync.Mutex
	records []*model.FailedStep
}

func (m *memLedger) Record(ctx context.Context, f *model.FailedStep) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *f
	m.records = append(m.records, &cp)
	return nil
}

func (m *memLedger) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// --- payment provider ---

type metadataUpdate struct {
	ID      string
	Fields  map[string]string
	Account string
}

type MockPaymentProvider struct {
	mu      sync.Mutex
	Updates []metadataUpdate

	GetPaymentIntentFunc func(ctx context.Context, id, account string) (*model.PaymentIntent, error)
	UpdateMetadataFunc   func(ctx context.Context, id string, fields map[string]string, account string) error
	GetCustomerFunc      func(ctx context.Context, id, account string) (*model.Customer, error)
	GetSubscriptionFunc  func(ctx context.Context, id, account string) (*model.SubscriptionSnapshot, error)
}

func (m *MockPaymentProvider) GetPaymentIntent(ctx context.Context, id, account string) (*model.PaymentIntent, error) {
	if m.GetPaymentIntentFunc != nil {
		return m.GetPaymentIntentFunc(ctx, id, account)
	}
	return nil, domain.NewNotFound("payment_intent", id)
}

func (m *MockPaymentProvider) UpdatePaymentIntentMetadata(ctx context.Context, id string, fields map[string]string, account string) error {
	m.mu.Lock()
	m.Updates = append(m.Updates, metadataUpdate{ID: id, Fields: fields, Account: account})
	m.mu.Unlock()
	if m.UpdateMetadataFunc != nil {
		return m.UpdateMetadataFunc(ctx, id, fields, account)
	}
	return nil
}

func (m *MockPaymentProvider) GetCustomer(ctx context.Context, id, account string) (*model.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, id, account)
	}
	return nil, domain.NewNotFound("customer", id)
}

func (m *MockPaymentProvider) GetSubscription(ctx context.Context, id, account string) (*model.SubscriptionSnapshot, error) {
	if m.GetSubscriptionFunc != nil {
		return m.GetSubscriptionFunc(ctx, id, account)
	}
	return nil, domain.NewNotFound("subscription", id)
}

// --- sender ---

type MockTicketSender struct {
	mu   sync.Mutex
	Sent []*model.TicketMessage
	Err  error
}

func (m *MockTicketSender) Send(ctx context.Context, msg *model.TicketMessage) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

func (m *MockTicketSender) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// --- event claims ---

type memClaims struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
}

func newMemClaims() *memClaims { return &memClaims{claimed: map[string]bool{}} }

func (m *memClaims) Claim(ctx context.Context, id string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimed[id] {
		return false, nil
	}
	m.claimed[id] = true
	return true, nil
}

func (m *memClaims) Release(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claimed, id)
	m.released = append(m.released, id)
	return nil
}

// --- locker ---

// memLocker gives up immediately when the key is held, like RedisLocker once its retries run out.
type memLocker struct {
	mu      sync.Mutex
	held    map[string]string
	seq     int
	err     error // transport failure returned by every TryLock
	waits   int
	unlocks int
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (m *memLocker) TryLock(ctx context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.held[key]; ok {
		m.waits++
		return "", fmt.Errorf("lock %s: %w", key, domain.ErrLockHeld)
	}
	m.seq++
	token := fmt.Sprintf("tok-%d", m.seq)
	m.held[key] = token
	return token, nil
}

func (m *memLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
		m.unlocks++
	}
	return nil
}

// --- fixtures ---

func paidEvent(id string, md map[string]string) *model.Event {
	return &model.Event{
		ID:   id,
		Type: model.EventPaymentIntentSucceeded,
		PaymentIntent: &model.PaymentIntent{
			ID:             "pi_" + id,
			Amount:         5000,
			AmountReceived: 5000,
			Currency:       "usd",
			Metadata:       md,
		},
	}
}

func validMetadata() map[string]string {
	return map[string]string{
		model.MetaSellerID:      "seller-1",
		model.MetaProductionID:  "prod-1",
		model.MetaPerformanceID: "perf-1",
		model.MetaAmount:        "5000",
		model.MetaCustomerEmail: "buyer@example.com",
		model.MetaVenueName:     "Grand Hall",
		model.MetaVenueCity:     "Springfield",
		model.MetaVenueState:    "IL",
		model.MetaVenueZip:      "62701",
	}
}
