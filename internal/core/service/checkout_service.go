package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/pos-checkout/internal/core/cart"
	"github.com/rl1809/pos-checkout/internal/core/checkout"
	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/pricing"
	"github.com/rl1809/pos-checkout/internal/port"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSubmissionInProgress = errors.New("submission in progress")
	ErrSubmissionFailed     = errors.New("order submission failed")
	ErrInvalidDraft         = errors.New("invalid order draft")
)

const submissionKeyPrefix = "checkout:"

// Config tunes a CheckoutService. A zero Rates table applies DefaultTaxRate.
type Config struct {
	Rates         pricing.RateTable
	EnforceStock  bool
	SubmitLockTTL time.Duration
	SubmitTimeout time.Duration
	IdleTTL       time.Duration
}

// Observer receives cart and checkout outcomes, e.g. for metrics.
type Observer interface {
	CartMutation(op string, applied bool)
	CheckoutResult(result string)
}

type nopObserver struct{}

func (nopObserver) CartMutation(string, bool) {}
func (nopObserver) CheckoutResult(string)     {}

type Option func(*CheckoutService)

func WithObserver(o Observer) Option {
	return func(s *CheckoutService) { s.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(s *CheckoutService) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *CheckoutService) { s.newID = gen }
}

// CheckoutService owns the open cashier sessions. Each session has its own
// lock; the order call runs outside it so the cart stays editable while an
// order is in flight.
type CheckoutService struct {
	catalog  port.CatalogRepository
	orders   port.OrderRepository
	locks    port.CacheRepository
	cfg      Config
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
	newID    func() string

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewCheckoutService(catalog port.CatalogRepository, orders port.OrderRepository, locks port.CacheRepository, cfg Config, logger *zap.Logger, opts ...Option) *CheckoutService {
	if cfg.Rates.Default.IsZero() && cfg.Rates.PerTenant == nil {
		cfg.Rates = pricing.NewRateTable(pricing.DefaultTaxRate)
	}
	s := &CheckoutService{
		catalog:  catalog,
		orders:   orders,
		locks:    locks,
		cfg:      cfg,
		logger:   logger,
		observer: nopObserver{},
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts a session for sc with an empty cart and the tenant's current
// catalog.
func (s *CheckoutService) Open(ctx context.Context, sc domain.SessionContext) (View, error) {
	if sc.TenantID <= 0 {
		return View{}, checkout.ErrContextRequired
	}

	items, err := s.catalog.ListCatalog(ctx, sc.TenantID)
	if err != nil {
		return View{}, fmt.Errorf("load catalog: %w", err)
	}

	sess := &session{
		id:      s.newID(),
		ctx:     sc,
		catalog: items,
		cart:    s.newCart(),
		draft:   s.newDraft(sc),
		state:   StateIdle,
		touched: s.now(),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("session opened",
		zap.String("session_id", sess.id),
		zap.Int64("tenant_id", sc.TenantID),
		zap.Int64("branch_id", sc.BranchID),
		zap.Int("catalog_size", len(items)))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(s.rate(sess)), nil
}

// SwitchContext moves a session to another tenant or branch. The cart starts
// over against the new catalog.
func (s *CheckoutService) SwitchContext(ctx context.Context, id string, sc domain.SessionContext) (View, error) {
	if sc.TenantID <= 0 {
		return View{}, checkout.ErrContextRequired
	}
	sess, err := s.session(id)
	if err != nil {
		return View{}, err
	}

	items, err := s.catalog.ListCatalog(ctx, sc.TenantID)
	if err != nil {
		return View{}, fmt.Errorf("load catalog: %w", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == StateSubmitting {
		return View{}, ErrSubmissionInProgress
	}
	sess.ctx = sc
	sess.catalog = items
	sess.cart = s.newCart()
	sess.draft = s.newDraft(sc)
	sess.reference = ""
	sess.lastReceipt = nil
	sess.touched = s.now()
	return sess.view(s.rate(sess)), nil
}

func (s *CheckoutService) View(id string) (View, error) {
	sess, err := s.session(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(s.rate(sess)), nil
}

// Close drops the session. An order still in flight is not cancelled.
func (s *CheckoutService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// AddItem adds one unit of a catalog item. Items missing from the session's
// catalog are skipped like any other soft violation.
func (s *CheckoutService) AddItem(id string, itemID int64) (MutationResult, error) {
	return s.mutate(id, "add", func(sess *session) bool {
		item, ok := sess.findItem(itemID)
		if !ok {
			return false
		}
		return sess.cart.AddItem(item)
	})
}

func (s *CheckoutService) ChangeQuantity(id string, itemID int64, delta int) (MutationResult, error) {
	return s.mutate(id, "change", func(sess *session) bool {
		return sess.cart.ChangeQuantity(itemID, delta)
	})
}

func (s *CheckoutService) RemoveItem(id string, itemID int64) (MutationResult, error) {
	return s.mutate(id, "remove", func(sess *session) bool {
		return sess.cart.RemoveItem(itemID)
	})
}

func (s *CheckoutService) Clear(id string) (MutationResult, error) {
	return s.mutate(id, "clear", func(sess *session) bool {
		return sess.cart.Clear()
	})
}

func (s *CheckoutService) Undo(id string) (MutationResult, error) {
	return s.mutate(id, "undo", func(sess *session) bool {
		return sess.cart.Undo()
	})
}

func (s *CheckoutService) mutate(id, op string, fn func(*session) bool) (MutationResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return MutationResult{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	applied := fn(sess)
	if applied {
		sess.reference = ""
	}
	sess.touched = s.now()
	s.observer.CartMutation(op, applied)
	return MutationResult{Applied: applied, View: sess.view(s.rate(sess))}, nil
}

// UpdateDraft replaces the order metadata. Empty order type and status fall
// back to DineIn and Pending; a zero branch keeps the session's branch.
func (s *CheckoutService) UpdateDraft(id string, draft domain.OrderDraft) (View, error) {
	if err := validateDraft(draft); err != nil {
		return View{}, err
	}
	if draft.OrderType == "" {
		draft.OrderType = domain.OrderTypeDineIn
	}
	if draft.Status == "" {
		draft.Status = domain.OrderStatusPending
	}

	sess, err := s.session(id)
	if err != nil {
		return View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if draft.BranchID == 0 {
		draft.BranchID = sess.draft.BranchID
	}
	if !draft.Equal(sess.draft) {
		sess.reference = ""
	}
	sess.draft = draft
	sess.touched = s.now()
	return sess.view(s.rate(sess)), nil
}

func validateDraft(d domain.OrderDraft) error {
	switch {
	case d.OrderType != "" && !d.OrderType.Valid():
		return fmt.Errorf("%w: unknown order type %q", ErrInvalidDraft, d.OrderType)
	case d.Status != "" && !d.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDraft, d.Status)
	case d.ShiftID < 0 || d.CustomerID < 0 || d.BranchID < 0:
		return fmt.Errorf("%w: identifiers must not be negative", ErrInvalidDraft)
	case d.DiscountAmount.IsNegative() || d.PaidAmount.IsNegative():
		return fmt.Errorf("%w: amounts must not be negative", ErrInvalidDraft)
	}
	return nil
}

// Payload previews the order request the session would submit now.
func (s *CheckoutService) Payload(id string) (*domain.OrderPayload, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	lines := sess.cart.Lines()
	return checkout.Build(lines, sess.draft, pricing.Compute(lines, s.rate(sess)), sess.ctx)
}

// Submit sends the session's order. Only one submission per session runs at a
// time. On success the cart is cleared and the draft's per-order fields are
// reset; on failure both are left as they were so the cashier can retry.
func (s *CheckoutService) Submit(ctx context.Context, id string) (domain.OrderReceipt, error) {
	sess, err := s.session(id)
	if err != nil {
		return domain.OrderReceipt{}, err
	}

	sess.mu.Lock()
	if sess.state == StateSubmitting {
		sess.mu.Unlock()
		s.observer.CheckoutResult("in_progress")
		return domain.OrderReceipt{}, ErrSubmissionInProgress
	}
	lines := sess.cart.Lines()
	payload, err := checkout.Build(lines, sess.draft, pricing.Compute(lines, s.rate(sess)), sess.ctx)
	if err != nil {
		sess.mu.Unlock()
		s.observer.CheckoutResult("blocked")
		return domain.OrderReceipt{}, err
	}
	if sess.reference == "" {
		sess.reference = s.newID()
	}
	reference := sess.reference
	sess.state = StateSubmitting
	tenantID := sess.ctx.TenantID
	catalog := sess.catalog
	sess.mu.Unlock()

	receipt, err := s.send(ctx, id, reference, *payload)
	if err != nil {
		sess.mu.Lock()
		sess.state = StateIdle
		sess.touched = s.now()
		sess.mu.Unlock()

		if errors.Is(err, ErrSubmissionInProgress) {
			s.observer.CheckoutResult("in_progress")
			return domain.OrderReceipt{}, err
		}
		s.observer.CheckoutResult("failed")
		s.logger.Warn("order submission failed",
			zap.String("session_id", id),
			zap.Int64("tenant_id", tenantID),
			zap.Error(err))
		return domain.OrderReceipt{}, err
	}

	refreshed := s.reloadCatalog(ctx, tenantID, catalog, lines)

	sess.mu.Lock()
	sess.state = StateIdle
	sess.cart = s.newCart()
	sess.draft = sess.draft.ResetTransient()
	sess.reference = ""
	sess.catalog = refreshed
	sess.lastReceipt = &receipt
	sess.touched = s.now()
	sess.mu.Unlock()

	s.observer.CheckoutResult("success")
	s.logger.Info("order submitted",
		zap.String("session_id", id),
		zap.Int64("order_id", receipt.OrderID),
		zap.String("reference", receipt.Reference),
		zap.String("total", payload.TotalAmount.String()),
		zap.Int("items", len(payload.Items)))
	return receipt, nil
}

// send creates the order under reference. A retry of an order the store
// already holds returns the stored receipt.
func (s *CheckoutService) send(ctx context.Context, sessionID, reference string, payload domain.OrderPayload) (domain.OrderReceipt, error) {
	key := submissionKeyPrefix + sessionID

	ok, err := s.locks.AcquireSubmission(ctx, key, reference, s.cfg.SubmitLockTTL)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("%w: submission lock: %w", ErrSubmissionFailed, err)
	}
	if !ok {
		return domain.OrderReceipt{}, ErrSubmissionInProgress
	}
	defer func() {
		if err := s.locks.ReleaseSubmission(context.WithoutCancel(ctx), key, reference); err != nil {
			s.logger.Warn("release submission lock", zap.String("key", key), zap.Error(err))
		}
	}()

	if s.cfg.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SubmitTimeout)
		defer cancel()
	}

	receipt, err := s.orders.CreateOrder(ctx, reference, payload)
	if errors.Is(err, port.ErrDuplicateOrder) {
		s.logger.Info("order already recorded", zap.String("reference", reference), zap.Int64("order_id", receipt.OrderID))
		err = nil
	}
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}
	if receipt.Reference == "" {
		receipt.Reference = reference
	}
	return receipt, nil
}

// reloadCatalog fetches stock after an order. If the source is unavailable
// the sold quantities are taken out of the old snapshot instead.
func (s *CheckoutService) reloadCatalog(ctx context.Context, tenantID int64, old []domain.CatalogItem, sold []cart.Line) []domain.CatalogItem {
	var (
		items []domain.CatalogItem
		err   error
	)
	if r, ok := s.catalog.(port.CatalogRefresher); ok {
		items, err = r.RefreshCatalog(ctx, tenantID)
	} else {
		items, err = s.catalog.ListCatalog(ctx, tenantID)
	}
	if err != nil {
		s.logger.Warn("reload catalog after order", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return foldSold(old, sold)
	}
	return items
}

// ExpireIdle closes sessions untouched for longer than the idle TTL and
// returns how many were closed. Sessions with an order in flight are kept.
func (s *CheckoutService) ExpireIdle(now time.Time) int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	expired := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.state == StateIdle && now.Sub(sess.touched) > s.cfg.IdleTTL
		sess.mu.Unlock()
		if stale {
			delete(s.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		s.logger.Info("expired idle sessions", zap.Int("count", expired))
	}
	return expired
}

func (s *CheckoutService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *CheckoutService) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *CheckoutService) newCart() *cart.Cart {
	if s.cfg.EnforceStock {
		return cart.New()
	}
	return cart.New(cart.WithoutStockTracking())
}

func (s *CheckoutService) newDraft(sc domain.SessionContext) domain.OrderDraft {
	d := domain.DefaultDraft()
	d.BranchID = sc.BranchID
	return d
}

func (s *CheckoutService) rate(sess *session) decimal.Decimal {
	return s.cfg.Rates.Rate(sess.ctx.TenantID)
}
