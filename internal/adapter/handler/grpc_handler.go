package handler

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/rl1809/pos-checkout/internal/core/service"
)

const ServiceName = "pos.checkout.v1.CheckoutService"

// CheckoutServer is the server side of ServiceName.
type CheckoutServer interface {
	OpenSession(context.Context, *OpenSessionRequest) (*SessionResponse, error)
	GetSession(context.Context, *SessionRequest) (*SessionResponse, error)
	CloseSession(context.Context, *SessionRequest) (*Empty, error)
	SwitchContext(context.Context, *SwitchContextRequest) (*SessionResponse, error)
	AddItem(context.Context, *ItemRequest) (*MutationResponse, error)
	ChangeQuantity(context.Context, *ChangeQuantityRequest) (*MutationResponse, error)
	RemoveItem(context.Context, *ItemRequest) (*MutationResponse, error)
	ClearCart(context.Context, *SessionRequest) (*MutationResponse, error)
	Undo(context.Context, *SessionRequest) (*MutationResponse, error)
	UpdateDraft(context.Context, *UpdateDraftRequest) (*SessionResponse, error)
	PreviewPayload(context.Context, *SessionRequest) (*PayloadResponse, error)
	Submit(context.Context, *SessionRequest) (*SubmitResponse, error)
}

var checkoutServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("OpenSession", CheckoutServer.OpenSession),
		unary("GetSession", CheckoutServer.GetSession),
		unary("CloseSession", CheckoutServer.CloseSession),
		unary("SwitchContext", CheckoutServer.SwitchContext),
		unary("AddItem", CheckoutServer.AddItem),
		unary("ChangeQuantity", CheckoutServer.ChangeQuantity),
		unary("RemoveItem", CheckoutServer.RemoveItem),
		unary("ClearCart", CheckoutServer.ClearCart),
		unary("Undo", CheckoutServer.Undo),
		unary("UpdateDraft", CheckoutServer.UpdateDraft),
		unary("PreviewPayload", CheckoutServer.PreviewPayload),
		unary("Submit", CheckoutServer.Submit),
	},
	Streams: []grpc.StreamDesc{},
}

func unary[Req, Resp any](name string, call func(CheckoutServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CheckoutServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CheckoutServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterCheckoutServer(s grpc.ServiceRegistrar, srv CheckoutServer) {
	s.RegisterService(&checkoutServiceDesc, srv)
}

type GRPCHandler struct {
	checkout *service.CheckoutService
}

func NewGRPCHandler(checkout *service.CheckoutService) *GRPCHandler {
	return &GRPCHandler{checkout: checkout}
}

func (h *GRPCHandler) OpenSession(ctx context.Context, req *OpenSessionRequest) (*SessionResponse, error) {
	view, err := h.checkout.Open(ctx, req.Context)
	if err != nil {
		return nil, grpcError(err)
	}
	return &SessionResponse{Session: view}, nil
}

func (h *GRPCHandler) GetSession(_ context.Context, req *SessionRequest) (*SessionResponse, error) {
	view, err := h.checkout.View(req.SessionID)
	if err != nil {
		return nil, grpcError(err)
	}
	return &SessionResponse{Session: view}, nil
}

func (h *GRPCHandler) CloseSession(_ context.Context, req *SessionRequest) (*Empty, error) {
	if err := h.checkout.Close(req.SessionID); err != nil {
		return nil, grpcError(err)
	}
	return &Empty{}, nil
}

func (h *GRPCHandler) SwitchContext(ctx context.Context, req *SwitchContextRequest) (*SessionResponse, error) {
	view, err := h.checkout.SwitchContext(ctx, req.SessionID, req.Context)
	if err != nil {
		return nil, grpcError(err)
	}
	return &SessionResponse{Session: view}, nil
}

func (h *GRPCHandler) AddItem(_ context.Context, req *ItemRequest) (*MutationResponse, error) {
	if req.ItemID <= 0 {
		return nil, grpcError(fmt.Errorf("%w: item id required", errInvalidRequest))
	}
	return mutationResponse(h.checkout.AddItem(req.SessionID, req.ItemID))
}

func (h *GRPCHandler) ChangeQuantity(_ context.Context, req *ChangeQuantityRequest) (*MutationResponse, error) {
	if req.ItemID <= 0 {
		return nil, grpcError(fmt.Errorf("%w: item id required", errInvalidRequest))
	}
	return mutationResponse(h.checkout.ChangeQuantity(req.SessionID, req.ItemID, req.Delta))
}

func (h *GRPCHandler) RemoveItem(_ context.Context, req *ItemRequest) (*MutationResponse, error) {
	return mutationResponse(h.checkout.RemoveItem(req.SessionID, req.ItemID))
}

func (h *GRPCHandler) ClearCart(_ context.Context, req *SessionRequest) (*MutationResponse, error) {
	return mutationResponse(h.checkout.Clear(req.SessionID))
}

func (h *GRPCHandler) Undo(_ context.Context, req *SessionRequest) (*MutationResponse, error) {
	return mutationResponse(h.checkout.Undo(req.SessionID))
}

func (h *GRPCHandler) UpdateDraft(_ context.Context, req *UpdateDraftRequest) (*SessionResponse, error) {
	view, err := h.checkout.UpdateDraft(req.SessionID, req.Draft)
	if err != nil {
		return nil, grpcError(err)
	}
	return &SessionResponse{Session: view}, nil
}

func (h *GRPCHandler) PreviewPayload(_ context.Context, req *SessionRequest) (*PayloadResponse, error) {
	payload, err := h.checkout.Payload(req.SessionID)
	if err != nil {
		return nil, grpcError(err)
	}
	return &PayloadResponse{Payload: payload}, nil
}

func (h *GRPCHandler) Submit(ctx context.Context, req *SessionRequest) (*SubmitResponse, error) {
	receipt, err := h.checkout.Submit(ctx, req.SessionID)
	if err != nil {
		return nil, grpcError(err)
	}
	view, err := h.checkout.View(req.SessionID)
	if err != nil {
		return nil, grpcError(err)
	}
	return &SubmitResponse{Receipt: receipt, Session: view}, nil
}

func mutationResponse(res service.MutationResult, err error) (*MutationResponse, error) {
	if err != nil {
		return nil, grpcError(err)
	}
	return &MutationResponse{Applied: res.Applied, Session: res.View}, nil
}
