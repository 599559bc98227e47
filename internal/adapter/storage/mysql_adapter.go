package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/port"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateOrder    = port.ErrDuplicateOrder
)

const mysqlDuplicateEntry = 1062

//go:embed schema.sql
var schema string

type MySQLAdapter struct {
	db  *sql.DB
	now func() time.Time
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, now: time.Now}
}

// EnsureSchema creates the catalog and order tables if they are missing.
func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) ListCatalog(ctx context.Context, tenantID int64) ([]domain.CatalogItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, tenant_id, name, category, selling_price, cost_per_unit,
		       current_quantity, min_quantity, is_active
		FROM catalog_items
		WHERE tenant_id = ?
		ORDER BY category, name, id`, tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(
			&item.ID, &item.TenantID, &item.Name, &item.Category, &item.SellingPrice, &item.CostPerUnit,
			&item.CurrentQuantity, &item.MinQuantity, &item.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return items, nil
}

// existingOrder returns the receipt of an order already stored under reference
// together with ErrDuplicateOrder.
func (m *MySQLAdapter) existingOrder(ctx context.Context, reference string) (domain.OrderReceipt, error) {
	receipt := domain.OrderReceipt{Reference: reference}
	err := m.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM orders WHERE reference = ?`, reference,
	).Scan(&receipt.OrderID, &receipt.CreatedAt)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("read existing order: %w", err)
	}
	return receipt, ErrDuplicateOrder
}

// CreateOrder writes the order with its items and takes the quantities out of
// stock in one transaction. Any item short on stock rolls the whole order back.
// A reference already stored yields that order's receipt and ErrDuplicateOrder.
func (m *MySQLAdapter) CreateOrder(ctx context.Context, reference string, p domain.OrderPayload) (domain.OrderReceipt, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	createdAt := m.now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx, `
		INSERT INTO orders (reference, tenant_id, branch_id, shift_id, customer_id, order_type, status,
		                    subtotal, tax_amount, discount_amount, total_amount, paid_amount,
		                    notes, created_by_user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reference, p.TenantID, p.BranchID, p.ShiftID, p.CustomerID, string(p.OrderType), string(p.Status),
		p.Subtotal, p.TaxAmount, p.DiscountAmount, p.TotalAmount, p.PaidAmount,
		p.Notes, p.CreatedByUserID, createdAt,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			tx.Rollback()
			return m.existingOrder(ctx, reference)
		}
		return domain.OrderReceipt{}, fmt.Errorf("insert order: %w", err)
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("order id: %w", err)
	}

	for _, item := range p.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, item_id, item_variant_id, quantity, unit_price, total_price, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			orderID, item.ItemID, item.ItemVariantID, item.Quantity, item.UnitPrice, item.TotalPrice, item.Notes,
		)
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("insert order item %d: %w", item.ItemID, err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE catalog_items
			SET current_quantity = current_quantity - ?
			WHERE id = ? AND tenant_id = ? AND current_quantity >= ?`,
			item.Quantity, item.ItemID, p.TenantID, item.Quantity,
		)
		if err != nil {
			return domain.OrderReceipt{}, fmt.Errorf("update stock: %w", err)
		}

		rows, _ := res.RowsAffected()
		if rows == 0 {
			return domain.OrderReceipt{}, fmt.Errorf("item %d: %w", item.ItemID, ErrInsufficientStock)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.OrderReceipt{}, fmt.Errorf("commit: %w", err)
	}

	return domain.OrderReceipt{OrderID: orderID, Reference: reference, CreatedAt: createdAt}, nil
}
