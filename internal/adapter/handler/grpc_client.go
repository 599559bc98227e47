package handler

import (
	"context"

	"google.golang.org/grpc"
)

// CheckoutClient calls ServiceName over a connection using the JSON codec.
type CheckoutClient struct {
	cc grpc.ClientConnInterface
}

func NewCheckoutClient(cc grpc.ClientConnInterface) *CheckoutClient {
	return &CheckoutClient{cc: cc}
}

func (c *CheckoutClient) OpenSession(ctx context.Context, in *OpenSessionRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "OpenSession", in)
}

func (c *CheckoutClient) GetSession(ctx context.Context, in *SessionRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "GetSession", in)
}

func (c *CheckoutClient) CloseSession(ctx context.Context, in *SessionRequest) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "CloseSession", in)
}

func (c *CheckoutClient) SwitchContext(ctx context.Context, in *SwitchContextRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "SwitchContext", in)
}

func (c *CheckoutClient) AddItem(ctx context.Context, in *ItemRequest) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "AddItem", in)
}

func (c *CheckoutClient) ChangeQuantity(ctx context.Context, in *ChangeQuantityRequest) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "ChangeQuantity", in)
}

func (c *CheckoutClient) RemoveItem(ctx context.Context, in *ItemRequest) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "RemoveItem", in)
}

func (c *CheckoutClient) ClearCart(ctx context.Context, in *SessionRequest) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "ClearCart", in)
}

func (c *CheckoutClient) Undo(ctx context.Context, in *SessionRequest) (*MutationResponse, error) {
	return invoke[MutationResponse](ctx, c.cc, "Undo", in)
}

func (c *CheckoutClient) UpdateDraft(ctx context.Context, in *UpdateDraftRequest) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, "UpdateDraft", in)
}

func (c *CheckoutClient) PreviewPayload(ctx context.Context, in *SessionRequest) (*PayloadResponse, error) {
	return invoke[PayloadResponse](ctx, c.cc, "PreviewPayload", in)
}

func (c *CheckoutClient) Submit(ctx context.Context, in *SessionRequest) (*SubmitResponse, error) {
	return invoke[SubmitResponse](ctx, c.cc, "Submit", in)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, grpc.CallContentSubtype(codecName)); err != nil {
		return nil, err
	}
	return out, nil
}
