package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/pos-checkout/internal/core/checkout"
	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/pricing"
	"github.com/rl1809/pos-checkout/internal/port"
)

// Mock CatalogRepository
type mockCatalog struct {
	mu    sync.Mutex
	items map[int64][]domain.CatalogItem
	err   error
	calls int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{items: make(map[int64][]domain.CatalogItem)}
}

func (m *mockCatalog) ListCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.CatalogItem, len(m.items[tenantID]))
	copy(out, m.items[tenantID])
	return out, nil
}

func (m *mockCatalog) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Mock OrderRepository
type mockOrders struct {
	mu       sync.Mutex
	payloads []domain.OrderPayload
	refs     []string
	receipts []domain.OrderReceipt
	attempts []string
	err      error
	saveErr  error // returned after the order is stored
	started  chan struct{}
	release  chan struct{}
	nextID   int64
}

func (m *mockOrders) CreateOrder(ctx context.Context, reference string, payload domain.OrderPayload) (domain.OrderReceipt, error) {
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, reference)
	if m.err != nil {
		return domain.OrderReceipt{}, m.err
	}
	for i, ref := range m.refs {
		if ref == reference {
			return m.receipts[i], port.ErrDuplicateOrder
		}
	}
	m.nextID++
	receipt := domain.OrderReceipt{OrderID: m.nextID, Reference: reference, CreatedAt: time.Now()}
	m.payloads = append(m.payloads, payload)
	m.refs = append(m.refs, reference)
	m.receipts = append(m.receipts, receipt)
	if m.saveErr != nil {
		return domain.OrderReceipt{}, m.saveErr
	}
	return receipt, nil
}

func (m *mockOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payloads)
}

// Mock CacheRepository
type mockLocks struct {
	mu   sync.Mutex
	held map[string]string
	err  error
}

func newMockLocks() *mockLocks {
	return &mockLocks{held: make(map[string]string)}
}

func (m *mockLocks) AcquireSubmission(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.held[key]; ok {
		return false, nil
	}
	m.held[key] = token
	return true, nil
}

func (m *mockLocks) ReleaseSubmission(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

func (m *mockLocks) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

// Mock Observer
type mockObserver struct {
	mu       sync.Mutex
	results  []string
	mutation map[string]int
}

func (o *mockObserver) CartMutation(op string, applied bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mutation == nil {
		o.mutation = make(map[string]int)
	}
	o.mutation[fmt.Sprintf("%s:%t", op, applied)]++
}

func (o *mockObserver) CheckoutResult(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

type testEnv struct {
	catalog *mockCatalog
	orders  *mockOrders
	locks   *mockLocks
	svc     *CheckoutService
}

var testSession = domain.SessionContext{TenantID: 1, BranchID: 2, UserID: 3}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func setupEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		catalog: newMockCatalog(),
		orders:  &mockOrders{},
		locks:   newMockLocks(),
	}
	env.catalog.items[1] = []domain.CatalogItem{
		{ID: 10, TenantID: 1, Name: "Latte", Category: "drinks", SellingPrice: decimal.NewFromInt(20), CurrentQuantity: 10, IsActive: true},
		{ID: 11, TenantID: 1, Name: "Bagel", Category: "food", SellingPrice: decimal.NewFromInt(10), CurrentQuantity: 2, IsActive: true},
	}
	env.catalog.items[5] = []domain.CatalogItem{
		{ID: 50, TenantID: 5, Name: "Tea", Category: "drinks", SellingPrice: decimal.NewFromInt(4), CurrentQuantity: 3, IsActive: true},
	}

	cfg := Config{
		Rates:         pricing.NewRateTable(pricing.DefaultTaxRate),
		EnforceStock:  true,
		SubmitLockTTL: time.Minute,
		SubmitTimeout: time.Second,
		IdleTTL:       10 * time.Minute,
	}
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)
	env.svc = NewCheckoutService(env.catalog, env.orders, env.locks, cfg, zap.NewNop(), opts...)
	return env
}

// ringUp opens a session with three lattes and a shift set.
func ringUp(t *testing.T, env *testEnv) string {
	t.Helper()
	view, err := env.svc.Open(context.Background(), testSession)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := view.ID
	env.svc.AddItem(id, 10)
	env.svc.ChangeQuantity(id, 10, 2)

	draft := domain.DefaultDraft()
	draft.ShiftID = 4
	draft.CustomerID = 9
	draft.DiscountAmount = decimal.NewFromInt(10)
	draft.PaidAmount = decimal.NewFromInt(60)
	draft.Notes = "no sugar"
	if _, err := env.svc.UpdateDraft(id, draft); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	return id
}

func TestOpen_RequiresTenant(t *testing.T) {
	env := setupEnv(t)

	_, err := env.svc.Open(context.Background(), domain.SessionContext{UserID: 1})
	if !errors.Is(err, checkout.ErrContextRequired) {
		t.Errorf("expected ErrContextRequired, got: %v", err)
	}
}

func TestOpen_CatalogFailure(t *testing.T) {
	env := setupEnv(t)
	env.catalog.setErr(errors.New("db down"))

	_, err := env.svc.Open(context.Background(), testSession)
	if err == nil {
		t.Fatal("expected error when catalog cannot load")
	}
	if env.svc.SessionCount() != 0 {
		t.Errorf("expected no session, got %d", env.svc.SessionCount())
	}
}

func TestAddItem_ReservesDisplayedStock(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)

	res, err := env.svc.AddItem(view.ID, 11)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected add to apply")
	}
	res, _ = env.svc.AddItem(view.ID, 11)
	res, _ = env.svc.AddItem(view.ID, 11)
	if res.Applied {
		t.Error("expected third add past stock to be skipped")
	}

	for _, item := range res.View.Catalog {
		if item.ID == 11 && item.CurrentQuantity != 0 {
			t.Errorf("expected bagel to show 0 available, got %d", item.CurrentQuantity)
		}
	}
	if res.View.Totals.ItemCount != 2 {
		t.Errorf("expected item count 2, got %d", res.View.Totals.ItemCount)
	}
}

func TestAddItem_UnknownItemSkipped(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)

	res, err := env.svc.AddItem(view.ID, 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Applied {
		t.Error("expected unknown item to be skipped")
	}
}

func TestMutations_UnknownSession(t *testing.T) {
	env := setupEnv(t)

	if _, err := env.svc.AddItem("nope", 10); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got: %v", err)
	}
	if _, err := env.svc.Submit(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got: %v", err)
	}
	if err := env.svc.Close("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got: %v", err)
	}
}

func TestSubmit_Success(t *testing.T) {
	obs := &mockObserver{}
	env := setupEnv(t, WithObserver(obs))
	id := ringUp(t, env)

	receipt, err := env.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if receipt.OrderID != 1 || receipt.Reference == "" {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	if env.orders.count() != 1 {
		t.Fatalf("expected 1 order, got %d", env.orders.count())
	}
	payload := env.orders.payloads[0]
	if !payload.TotalAmount.Equal(decimal.RequireFromString("58.4")) {
		t.Errorf("expected total 58.4, got %s", payload.TotalAmount)
	}
	if payload.ShiftID != 4 || payload.CustomerID != 9 || payload.Notes != "no sugar" {
		t.Errorf("unexpected payload metadata: %+v", payload)
	}
	if env.orders.refs[0] != receipt.Reference {
		t.Errorf("expected reference %s, got %s", receipt.Reference, env.orders.refs[0])
	}

	view, _ := env.svc.View(id)
	if len(view.Lines) != 0 {
		t.Errorf("expected cart cleared, got %d lines", len(view.Lines))
	}
	if view.Draft.ShiftID != 4 || view.Draft.BranchID != 2 {
		t.Errorf("expected shift and branch kept, got %+v", view.Draft)
	}
	if view.Draft.CustomerID != 0 || !view.Draft.DiscountAmount.IsZero() || view.Draft.Notes != "" {
		t.Errorf("expected transient draft fields reset, got %+v", view.Draft)
	}
	if view.LastReceipt == nil || view.LastReceipt.OrderID != 1 {
		t.Errorf("expected last receipt, got %+v", view.LastReceipt)
	}
	if view.State != StateIdle {
		t.Errorf("expected idle state, got %s", view.State)
	}
	if env.locks.size() != 0 {
		t.Errorf("expected submission lock released, %d held", env.locks.size())
	}
	if env.catalog.calls != 2 {
		t.Errorf("expected catalog reloaded after order, %d calls", env.catalog.calls)
	}
	if len(obs.results) != 1 || obs.results[0] != "success" {
		t.Errorf("unexpected checkout results: %v", obs.results)
	}
}

func TestSubmit_BlockedWithoutShift(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)
	env.svc.AddItem(view.ID, 10)

	draft := domain.DefaultDraft()
	draft.ShiftID = 0
	env.svc.UpdateDraft(view.ID, draft)

	_, err := env.svc.Submit(context.Background(), view.ID)
	if !errors.Is(err, checkout.ErrShiftRequired) {
		t.Errorf("expected ErrShiftRequired, got: %v", err)
	}
	if env.orders.count() != 0 {
		t.Errorf("expected no order sent, got %d", env.orders.count())
	}

	after, _ := env.svc.View(view.ID)
	if len(after.Lines) != 1 || after.Lines[0].Quantity != 1 {
		t.Errorf("expected cart unchanged, got %+v", after.Lines)
	}
	if after.CanSubmit {
		t.Error("expected submit to be disabled")
	}
}

func TestSubmit_BlockedWhenEmpty(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)
	env.svc.UpdateDraft(view.ID, domain.OrderDraft{ShiftID: 1})

	_, err := env.svc.Submit(context.Background(), view.ID)
	if !errors.Is(err, checkout.ErrEmptyCart) {
		t.Errorf("expected ErrEmptyCart, got: %v", err)
	}
	if env.orders.count() != 0 {
		t.Errorf("expected no order sent, got %d", env.orders.count())
	}
}

func TestSubmit_FailureKeepsCartAndDraft(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	before, _ := env.svc.View(id)
	env.orders.err = errors.New("connection reset")

	_, err := env.svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got: %v", err)
	}

	after, _ := env.svc.View(id)
	if len(after.Lines) != 1 || after.Lines[0].Quantity != 3 {
		t.Errorf("expected cart kept, got %+v", after.Lines)
	}
	if after.Draft.CustomerID != before.Draft.CustomerID || !after.Draft.DiscountAmount.Equal(before.Draft.DiscountAmount) {
		t.Errorf("expected draft kept, got %+v", after.Draft)
	}
	if after.State != StateIdle || !after.CanSubmit {
		t.Errorf("expected idle and ready for retry, got state %s canSubmit %t", after.State, after.CanSubmit)
	}
	if env.locks.size() != 0 {
		t.Errorf("expected submission lock released, %d held", env.locks.size())
	}

	// Retry succeeds with the same cart.
	env.orders.err = nil
	if _, err := env.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if env.orders.count() != 1 {
		t.Errorf("expected 1 order after retry, got %d", env.orders.count())
	}
}

func TestSubmit_LockFailureKeepsCart(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.locks.err = errors.New("redis unavailable")

	_, err := env.svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got: %v", err)
	}
	if env.orders.count() != 0 {
		t.Errorf("expected no order sent, got %d", env.orders.count())
	}
	view, _ := env.svc.View(id)
	if len(view.Lines) != 1 {
		t.Errorf("expected cart kept, got %d lines", len(view.Lines))
	}
}

func TestSubmit_LockHeldElsewhere(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.locks.held[submissionKeyPrefix+id] = "other-instance"

	_, err := env.svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrSubmissionInProgress) {
		t.Fatalf("expected ErrSubmissionInProgress, got: %v", err)
	}
	if env.orders.count() != 0 {
		t.Errorf("expected no order sent, got %d", env.orders.count())
	}
	if env.locks.held[submissionKeyPrefix+id] != "other-instance" {
		t.Error("foreign lock was released")
	}
}

func TestSubmit_ConcurrentSendsOnce(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.orders.started = make(chan struct{}, 1)
	env.orders.release = make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = env.svc.Submit(context.Background(), id)
	}()
	<-env.orders.started

	_, err := env.svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrSubmissionInProgress) {
		t.Errorf("expected ErrSubmissionInProgress, got: %v", err)
	}

	// The cart stays editable while the order is in flight.
	res, err := env.svc.AddItem(id, 11)
	if err != nil || !res.Applied {
		t.Errorf("expected add during submission to apply, got %v %v", res.Applied, err)
	}
	if res.View.State != StateSubmitting || res.View.CanSubmit {
		t.Errorf("expected submitting with trigger disabled, got %s %t", res.View.State, res.View.CanSubmit)
	}

	close(env.orders.release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first submit failed: %v", firstErr)
	}
	if env.orders.count() != 1 {
		t.Errorf("expected exactly 1 order, got %d", env.orders.count())
	}
	if env.orders.payloads[0].Items[0].Quantity != 3 || len(env.orders.payloads[0].Items) != 1 {
		t.Errorf("expected payload captured at submit time, got %+v", env.orders.payloads[0].Items)
	}
}

func TestSubmit_CatalogReloadFailureFoldsStock(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.catalog.setErr(errors.New("db down"))

	if _, err := env.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, _ := env.svc.View(id)
	for _, item := range view.Catalog {
		if item.ID == 10 && item.CurrentQuantity != 7 {
			t.Errorf("expected 7 lattes left, got %d", item.CurrentQuantity)
		}
	}
}

func TestSwitchContext_ResetsCart(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)

	view, err := env.svc.SwitchContext(context.Background(), id, domain.SessionContext{TenantID: 5, BranchID: 6, UserID: 3})
	if err != nil {
		t.Fatalf("switch: %v", err)
	}
	if len(view.Lines) != 0 {
		t.Errorf("expected empty cart, got %d lines", len(view.Lines))
	}
	if len(view.Catalog) != 1 || view.Catalog[0].ID != 50 {
		t.Errorf("expected tenant 5 catalog, got %+v", view.Catalog)
	}
	if view.Draft.ShiftID != 0 || view.Draft.BranchID != 6 {
		t.Errorf("expected fresh draft for branch 6, got %+v", view.Draft)
	}
}

func TestUpdateDraft_Rejected(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)

	tests := []domain.OrderDraft{
		{OrderType: "Drone"},
		{Status: "Lost"},
		{ShiftID: -1},
		{DiscountAmount: decimal.NewFromInt(-1)},
		{PaidAmount: decimal.NewFromInt(-5)},
	}
	for _, draft := range tests {
		if _, err := env.svc.UpdateDraft(view.ID, draft); !errors.Is(err, ErrInvalidDraft) {
			t.Errorf("draft %+v: expected ErrInvalidDraft, got %v", draft, err)
		}
	}
}

func TestUpdateDraft_Defaults(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)

	got, err := env.svc.UpdateDraft(view.ID, domain.OrderDraft{ShiftID: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Draft.OrderType != domain.OrderTypeDineIn || got.Draft.Status != domain.OrderStatusPending {
		t.Errorf("expected defaults, got %+v", got.Draft)
	}
}

func TestView_ChangeDue(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)

	view, _ := env.svc.View(id)
	if !view.NetTotal.Equal(decimal.RequireFromString("58.4")) {
		t.Errorf("expected net total 58.4, got %s", view.NetTotal)
	}
	if !view.ChangeDue.Equal(decimal.RequireFromString("1.6")) {
		t.Errorf("expected change 1.6, got %s", view.ChangeDue)
	}
}

func TestUndoAndClear(t *testing.T) {
	obs := &mockObserver{}
	env := setupEnv(t, WithObserver(obs))
	id := ringUp(t, env)

	res, _ := env.svc.Clear(id)
	if !res.Applied || len(res.View.Lines) != 0 {
		t.Fatalf("expected clear to empty the cart, got %+v", res)
	}
	res, _ = env.svc.Undo(id)
	if !res.Applied || len(res.View.Lines) != 1 || res.View.Lines[0].Quantity != 3 {
		t.Errorf("expected undo to restore 3 lattes, got %+v", res.View.Lines)
	}
	if obs.mutation["clear:true"] != 1 || obs.mutation["undo:true"] != 1 {
		t.Errorf("unexpected mutation counts: %v", obs.mutation)
	}
}

func TestExpireIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	env := setupEnv(t, WithClock(clock))

	stale, _ := env.svc.Open(context.Background(), testSession)
	now = now.Add(8 * time.Minute)
	fresh, _ := env.svc.Open(context.Background(), testSession)
	now = now.Add(5 * time.Minute)

	if n := env.svc.ExpireIdle(now); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if _, err := env.svc.View(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected stale session gone, got: %v", err)
	}
	if _, err := env.svc.View(fresh.ID); err != nil {
		t.Errorf("expected fresh session kept, got: %v", err)
	}
}

func TestUpdateDraft_KeepsBranch(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)

	after, err := env.svc.UpdateDraft(view.ID, domain.OrderDraft{ShiftID: 4, CustomerID: 9})
	if err != nil {
		t.Fatalf("update draft: %v", err)
	}
	if after.Draft.BranchID != testSession.BranchID {
		t.Errorf("expected branch %d kept, got %d", testSession.BranchID, after.Draft.BranchID)
	}

	after, _ = env.svc.UpdateDraft(view.ID, domain.OrderDraft{BranchID: 8, ShiftID: 4})
	if after.Draft.BranchID != 8 {
		t.Errorf("expected explicit branch 8, got %d", after.Draft.BranchID)
	}
}

func TestSubmit_RetryAfterLostReplyReusesReference(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.orders.saveErr = context.DeadlineExceeded

	_, err := env.svc.Submit(context.Background(), id)
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected ErrSubmissionFailed, got: %v", err)
	}
	if view, _ := env.svc.View(id); len(view.Lines) != 1 {
		t.Fatalf("expected cart kept, got %d lines", len(view.Lines))
	}

	env.orders.saveErr = nil
	receipt, err := env.svc.Submit(context.Background(), id)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if env.orders.count() != 1 {
		t.Errorf("expected 1 stored order, got %d", env.orders.count())
	}
	if receipt.OrderID != 1 || receipt.Reference != env.orders.refs[0] {
		t.Errorf("expected stored receipt, got %+v", receipt)
	}
	if env.orders.attempts[0] != env.orders.attempts[1] {
		t.Errorf("expected same reference on retry, got %v", env.orders.attempts)
	}
	if view, _ := env.svc.View(id); len(view.Lines) != 0 {
		t.Errorf("expected cart cleared, got %d lines", len(view.Lines))
	}
}

func TestSubmit_EditAfterFailureStartsNewOrder(t *testing.T) {
	env := setupEnv(t)
	id := ringUp(t, env)
	env.orders.err = errors.New("connection reset")
	env.svc.Submit(context.Background(), id)

	env.orders.err = nil
	env.svc.AddItem(id, 11)
	if _, err := env.svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(env.orders.attempts) != 2 || env.orders.attempts[0] == env.orders.attempts[1] {
		t.Errorf("expected a fresh reference after the cart changed, got %v", env.orders.attempts)
	}

	// a new order after success gets its own reference
	env.svc.AddItem(id, 10)
	env.svc.Submit(context.Background(), id)
	if len(env.orders.refs) != 2 || env.orders.refs[0] == env.orders.refs[1] {
		t.Errorf("expected distinct references per order, got %v", env.orders.refs)
	}
}

func TestView_LowStock(t *testing.T) {
	env := setupEnv(t)
	view, _ := env.svc.Open(context.Background(), testSession)
	if len(view.LowStock) != 0 {
		t.Fatalf("expected no low stock, got %v", view.LowStock)
	}

	env.svc.AddItem(view.ID, 11)
	res, _ := env.svc.AddItem(view.ID, 11)
	if len(res.View.LowStock) != 1 || res.View.LowStock[0] != 11 {
		t.Errorf("expected item 11 low once its stock is reserved, got %v", res.View.LowStock)
	}
}
