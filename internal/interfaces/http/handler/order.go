package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
)

// OrderHandler handles order intake, resolution, dispatch and tracking
type OrderHandler struct {
	BaseHandler
	orders   OrderUseCases
	matches  MatchUseCases
	dispatch DispatchUseCases
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderUseCases, matches MatchUseCases, dispatch DispatchUseCases) *OrderHandler {
	return &OrderHandler{orders: orders, matches: matches, dispatch: dispatch}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/orders")
	g.POST("", h.CreateOrder)
	g.POST("/dispatch", h.DispatchOrders)
	g.GET("/:id", h.GetOrder)
	g.POST("/:id/cancel", h.CancelOrder)
	g.POST("/:id/resolve", h.ResolveMatch)
	g.POST("/:id/tracking", h.AddTracking)
}

// CreateOrder records a shop order
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.CreateOrder(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetOrder returns an order with its line items and planned purchases
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CancelOrder cancels an order that has not completed
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.CancelOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ResolveMatch binds the order's line items to matches and plans purchases
func (h *OrderHandler) ResolveMatch(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.matches.ResolveMatchForOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DispatchOrders places channel purchases for the given orders
func (h *OrderHandler) DispatchOrders(c *gin.Context) {
	var req IDListRequest
	if !h.bindJSON(c, &req) {
		return
	}
	results, err := h.dispatch.DispatchOrders(c.Request.Context(), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// AddTracking pushes tracking details to the shop and completes the order
func (h *OrderHandler) AddTracking(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req AddTrackingRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.AddTracking(c.Request.Context(), id, fulfillmentapp.AddTrackingInput{
		TrackingNumber: req.TrackingNumber,
		TrackingURL:    req.TrackingURL,
		Carrier:        req.Carrier,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
