package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/pos-checkout/internal/core/domain"
	"github.com/rl1809/pos-checkout/internal/core/service"
)

type HTTPHandler struct {
	checkout *service.CheckoutService
	logger   *zap.Logger
}

type addItemRequest struct {
	ItemID int64 `json:"itemId" binding:"required,gt=0"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type submitResponse struct {
	Receipt domain.OrderReceipt `json:"receipt"`
	Session service.View        `json:"session"`
}

func NewHTTPHandler(checkout *service.CheckoutService, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{checkout: checkout, logger: logger}
}

// Register mounts the session API under /api and the health probe.
func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)

	api := r.Group("/api")
	{
		api.POST("/sessions", h.OpenSession)
		api.GET("/sessions/:id", h.GetSession)
		api.DELETE("/sessions/:id", h.CloseSession)
		api.PUT("/sessions/:id/context", h.SwitchContext)
		api.POST("/sessions/:id/items", h.AddItem)
		api.PATCH("/sessions/:id/items/:itemId", h.ChangeQuantity)
		api.DELETE("/sessions/:id/items/:itemId", h.RemoveItem)
		api.DELETE("/sessions/:id/items", h.ClearCart)
		api.POST("/sessions/:id/undo", h.Undo)
		api.PUT("/sessions/:id/draft", h.UpdateDraft)
		api.GET("/sessions/:id/payload", h.PreviewPayload)
		api.POST("/sessions/:id/checkout", h.Submit)
	}
}

func (h *HTTPHandler) OpenSession(c *gin.Context) {
	var sc domain.SessionContext
	if err := c.ShouldBindJSON(&sc); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	view, err := h.checkout.Open(c.Request.Context(), sc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *HTTPHandler) GetSession(c *gin.Context) {
	view, err := h.checkout.View(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) CloseSession(c *gin.Context) {
	if err := h.checkout.Close(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) SwitchContext(c *gin.Context) {
	var sc domain.SessionContext
	if err := c.ShouldBindJSON(&sc); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	view, err := h.checkout.SwitchContext(c.Request.Context(), c.Param("id"), sc)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	h.mutation(c)(h.checkout.AddItem(c.Param("id"), req.ItemID))
}

func (h *HTTPHandler) ChangeQuantity(c *gin.Context) {
	itemID, err := itemParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var req changeQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	h.mutation(c)(h.checkout.ChangeQuantity(c.Param("id"), itemID, req.Delta))
}

func (h *HTTPHandler) RemoveItem(c *gin.Context) {
	itemID, err := itemParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.mutation(c)(h.checkout.RemoveItem(c.Param("id"), itemID))
}

func (h *HTTPHandler) ClearCart(c *gin.Context) {
	h.mutation(c)(h.checkout.Clear(c.Param("id")))
}

func (h *HTTPHandler) Undo(c *gin.Context) {
	h.mutation(c)(h.checkout.Undo(c.Param("id")))
}

func (h *HTTPHandler) UpdateDraft(c *gin.Context) {
	var draft domain.OrderDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}

	view, err := h.checkout.UpdateDraft(c.Param("id"), draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) PreviewPayload(c *gin.Context) {
	payload, err := h.checkout.Payload(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *HTTPHandler) Submit(c *gin.Context) {
	id := c.Param("id")
	receipt, err := h.checkout.Submit(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	view, err := h.checkout.View(id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, submitResponse{Receipt: receipt, Session: view})
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) mutation(c *gin.Context) func(service.MutationResult, error) {
	return func(res service.MutationResult, err error) {
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	code, message := httpStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

func itemParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad item id %q", errInvalidRequest, c.Param("itemId"))
	}
	return id, nil
}
