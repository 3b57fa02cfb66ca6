package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"voyago/internal/domain/bookings"
	"voyago/internal/domain/listings"
	"voyago/internal/domain/payments"
	"voyago/internal/domain/storage"
	"voyago/internal/gateway"

	"go.uber.org/zap"
)

type fakeListingStore struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*listings.Listing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{rows: map[int64]*listings.Listing{}}
}

func (f *fakeListingStore) Create(ctx context.Context, l *listings.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	l.ID = f.seq
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeListingStore) GetByID(ctx context.Context, id int64) (*listings.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingStore) List(ctx context.Context, limit, offset int) ([]*listings.Listing, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*listings.Listing
	for _, l := range f.rows {
		cp := *l
		out = append(out, &cp)
	}
	return out, len(f.rows), nil
}

type fakeBookingStore struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*bookings.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{rows: map[int64]*bookings.Booking{}}
}

func (f *fakeBookingStore) seed(b *bookings.Booking) *bookings.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == 0 {
		f.seq++
		b.ID = f.seq
	} else if b.ID > f.seq {
		f.seq = b.ID
	}
	if b.Currency == "" {
		b.Currency = "ETB"
	}
	cp := *b
	f.rows[b.ID] = &cp
	return b
}

func (f *fakeBookingStore) Create(ctx context.Context, b *bookings.Booking) error {
	f.mu.Lock()
	f.seq++
	b.ID = f.seq
	f.mu.Unlock()
	b.Reference = fmt.Sprintf("BK%d", b.ID)
	if b.Currency == "" {
		b.Currency = "ETB"
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.seed(b)
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id int64) (*bookings.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) List(ctx context.Context, limit, offset int) ([]*bookings.Booking, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*bookings.Booking
	for _, b := range f.rows {
		cp := *b
		out = append(out, &cp)
	}
	return out, len(f.rows), nil
}

type fakePaymentStore struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*payments.Payment
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{rows: map[int64]*payments.Payment{}}
}

func (f *fakePaymentStore) seed(p *payments.Payment) *payments.Payment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		f.seq++
		p.ID = f.seq
	} else if p.ID > f.seq {
		f.seq = p.ID
	}
	cp := *p
	f.rows[p.ID] = &cp
	return p
}

func (f *fakePaymentStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakePaymentStore) Create(ctx context.Context, p *payments.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.TxRef == p.TxRef {
			return payments.ErrDuplicateReference
		}
		if row.BookingID == p.BookingID && row.Status == payments.StatusPending {
			return payments.ErrActivePaymentExists
		}
	}
	f.seq++
	p.ID = f.seq
	if p.Status == "" {
		p.Status = payments.StatusPending
	}
	if p.Currency == "" {
		p.Currency = "ETB"
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

func (f *fakePaymentStore) GetByID(ctx context.Context, id int64) (*payments.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePaymentStore) GetByReference(ctx context.Context, txRef string) (*payments.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.rows {
		if p.TxRef == txRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePaymentStore) LockByReference(ctx context.Context, txRef string) (*payments.Payment, error) {
	return f.GetByReference(ctx, txRef)
}

func (f *fakePaymentStore) LatestByBooking(ctx context.Context, bookingID int64) (*payments.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *payments.Payment
	for _, p := range f.rows {
		if p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakePaymentStore) LockLatestByBooking(ctx context.Context, bookingID int64) (*payments.Payment, error) {
	return f.LatestByBooking(ctx, bookingID)
}

func (f *fakePaymentStore) SetStatus(ctx context.Context, id int64, status payments.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakePaymentStore) MarkCompleted(ctx context.Context, id int64, gatewayTxID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return fmt.Errorf("payment %d not found", id)
	}
	p.Status = payments.StatusCompleted
	p.GatewayTxID = &gatewayTxID
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakePaymentStore) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if p.Status == payments.StatusPending && p.CreatedAt.Before(cutoff) {
			p.Status = payments.StatusFailed
			n++
		}
	}
	return n, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	initCalls   []gateway.InitializeRequest
	verifyCalls []string

	initFunc   func(req gateway.InitializeRequest) (*gateway.InitializeResponse, error)
	verifyFunc func(txRef string) (*gateway.VerifyResponse, error)
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	g.mu.Lock()
	g.initCalls = append(g.initCalls, req)
	g.mu.Unlock()
	if g.initFunc != nil {
		return g.initFunc(req)
	}
	return &gateway.InitializeResponse{CheckoutURL: "https://checkout.chapa.co/pay/test"}, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, txRef string) (*gateway.VerifyResponse, error) {
	g.mu.Lock()
	g.verifyCalls = append(g.verifyCalls, txRef)
	g.mu.Unlock()
	if g.verifyFunc != nil {
		return g.verifyFunc(txRef)
	}
	return &gateway.VerifyResponse{Status: gateway.VerifiedSuccess, GatewayRef: "CHAPA-REF"}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	enqueued []int64
}

func (n *fakeNotifier) Enqueue(paymentID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enqueued = append(n.enqueued, paymentID)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.enqueued)
}

type testEnv struct {
	app      *application
	listings *fakeListingStore
	bookings *fakeBookingStore
	payments *fakePaymentStore
	gateway  *fakeGateway
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		listings: newFakeListingStore(),
		bookings: newFakeBookingStore(),
		payments: newFakePaymentStore(),
		gateway:  &fakeGateway{},
		notifier: &fakeNotifier{},
	}

	env.app = &application{
		config: config{
			env: "test",
		},
		store: &storage.Container{
			Listings: env.listings,
			Bookings: env.bookings,
			Payments: env.payments,
		},
		logger:   zap.NewNop().Sugar(),
		gateway:  env.gateway,
		notifier: env.notifier,
	}
	return env
}

func (e *testEnv) execute(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.app.mount().ServeHTTP(rr, req)
	return rr
}
