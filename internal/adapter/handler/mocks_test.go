package handler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/pricing"
	"github.com/rl1809/pos-checkout/internal/core/service"
)

type mockCatalog struct {
	items []domain.CatalogItem
}

func (m *mockCatalog) ListCatalog(_ context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	var out []domain.CatalogItem
	for _, item := range m.items {
		if item.TenantID == tenantID {
			out = append(out, item)
		}
	}
	return out, nil
}

type mockOrders struct {
	mu       sync.Mutex
	payloads []domain.OrderPayload
	err      error
}

func (m *mockOrders) CreateOrder(_ context.Context, reference string, p domain.OrderPayload) (domain.OrderReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.OrderReceipt{}, m.err
	}
	m.payloads = append(m.payloads, p)
	return domain.OrderReceipt{OrderID: int64(len(m.payloads)), Reference: reference, CreatedAt: time.Unix(1700000000, 0).UTC()}, nil
}

type mockLocks struct {
	mu   sync.Mutex
	held map[string]string
}

func (m *mockLocks) AcquireSubmission(_ context.Context, key, token string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return false, nil
	}
	m.held[key] = token
	return true, nil
}

func (m *mockLocks) ReleaseSubmission(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

var errOrderAPI = errors.New("order api down")

type fixture struct {
	svc    *service.CheckoutService
	orders *mockOrders
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog := &mockCatalog{items: []domain.CatalogItem{
		{ID: 10, TenantID: 1, Name: "Latte", SellingPrice: decimal.NewFromInt(20), CurrentQuantity: 10, IsActive: true},
		{ID: 11, TenantID: 1, Name: "Bagel", SellingPrice: decimal.NewFromInt(10), CurrentQuantity: 1, IsActive: true},
	}}
	orders := &mockOrders{}
	locks := &mockLocks{held: make(map[string]string)}
	svc := service.NewCheckoutService(catalog, orders, locks, service.Config{
		Rates:         pricing.NewRateTable(pricing.DefaultTaxRate),
		EnforceStock:  true,
		SubmitLockTTL: time.Minute,
		SubmitTimeout: time.Second,
		IdleTTL:       time.Hour,
	}, zap.NewNop())
	return &fixture{svc: svc, orders: orders}
}
