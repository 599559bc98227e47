package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DineIn"
	OrderTypeTakeAway OrderType = "TakeAway"
	OrderTypeDelivery OrderType = "Delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeAway, OrderTypeDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// SessionContext identifies who is ringing up the order. It comes from the
// authenticated session and is passed explicitly.
type SessionContext struct {
	TenantID int64 `json:"tenantId"`
	BranchID int64 `json:"branchId"`
	UserID   int64 `json:"userId"`
}

// OrderDraft is the cashier-editable order metadata merged with the cart at
// checkout. CustomerID 0 is a walk-in customer.
type OrderDraft struct {
	BranchID       int64           `json:"branchId"`
	ShiftID        int64           `json:"shiftId"`
	CustomerID     int64           `json:"customerId"`
	OrderType      OrderType       `json:"orderType"`
	Status         OrderStatus     `json:"status"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Notes          string          `json:"notes"`
}

func DefaultDraft() OrderDraft {
	return OrderDraft{
		OrderType: OrderTypeDineIn,
		Status:    OrderStatusPending,
	}
}

func (d OrderDraft) Equal(o OrderDraft) bool {
	return d.BranchID == o.BranchID &&
		d.ShiftID == o.ShiftID &&
		d.CustomerID == o.CustomerID &&
		d.OrderType == o.OrderType &&
		d.Status == o.Status &&
		d.DiscountAmount.Equal(o.DiscountAmount) &&
		d.PaidAmount.Equal(o.PaidAmount) &&
		d.Notes == o.Notes
}

// ResetTransient clears the per-order fields after a successful checkout.
// Branch and shift belong to the cashier and survive.
func (d OrderDraft) ResetTransient() OrderDraft {
	next := DefaultDraft()
	next.BranchID = d.BranchID
	next.ShiftID = d.ShiftID
	return next
}

// OrderPayload is the order-creation request. Its JSON shape is consumed by
// the order endpoint and must stay stable.
type OrderPayload struct {
	TenantID        int64              `json:"tenantId"`
	BranchID        int64              `json:"branchId"`
	ShiftID         int64              `json:"shiftId"`
	CustomerID      int64              `json:"customerId"`
	OrderType       OrderType          `json:"orderType"`
	Status          OrderStatus        `json:"status"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"taxAmount"`
	DiscountAmount  decimal.Decimal    `json:"discountAmount"`
	TotalAmount     decimal.Decimal    `json:"totalAmount"`
	PaidAmount      decimal.Decimal    `json:"paidAmount"`
	Notes           string             `json:"notes"`
	CreatedByUserID int64              `json:"createdByUserId"`
	Items           []OrderPayloadItem `json:"items"`
}

type OrderPayloadItem struct {
	ItemID        int64           `json:"itemId"`
	ItemVariantID int64           `json:"itemVariantId"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Notes         string          `json:"notes"`
}

// OrderReceipt acknowledges a created order.
type OrderReceipt struct {
	OrderID   int64     `json:"orderId"`
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"createdAt"`
}
