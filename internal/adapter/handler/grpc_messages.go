package handler

import (
	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/service"
)

type OpenSessionRequest struct {
	Context domain.SessionContext `json:"context"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type SwitchContextRequest struct {
	SessionID string                `json:"sessionId"`
	Context   domain.SessionContext `json:"context"`
}

type ItemRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    int64  `json:"itemId"`
}

type ChangeQuantityRequest struct {
	SessionID string `json:"sessionId"`
	ItemID    int64  `json:"itemId"`
	Delta     int    `json:"delta"`
}

type UpdateDraftRequest struct {
	SessionID string            `json:"sessionId"`
	Draft     domain.OrderDraft `json:"draft"`
}

type SessionResponse struct {
	Session service.View `json:"session"`
}

type MutationResponse struct {
	Applied bool         `json:"applied"`
	Session service.View `json:"session"`
}

type PayloadResponse struct {
	Payload *domain.OrderPayload `json:"payload"`
}

type SubmitResponse struct {
	Receipt domain.OrderReceipt `json:"receipt"`
	Session service.View        `json:"session"`
}

type Empty struct{}
