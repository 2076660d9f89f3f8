package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
)

// MatchHandler handles match management and reconciliation endpoints
type MatchHandler struct {
	BaseHandler
	matches        MatchUseCases
	reconciliation ReconciliationUseCases
}

// NewMatchHandler creates a new MatchHandler
func NewMatchHandler(matches MatchUseCases, reconciliation ReconciliationUseCases) *MatchHandler {
	return &MatchHandler{matches: matches, reconciliation: reconciliation}
}

// RegisterRoutes registers the match routes
func (h *MatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/matches")
	g.POST("", h.CreateMatch)
	g.PUT("", h.OverwriteMatch)
	g.POST("/upsert", h.UpsertMatch)
	g.GET("", h.ListMatches)
	g.POST("/inventory-sync", h.SyncInventory)
	g.GET("/:id", h.GetMatch)
	g.DELETE("/:id", h.DeleteMatch)
	g.GET("/:id/price-delta", h.PriceDelta)
	g.GET("/:id/inventory-status", h.InventorySyncStatus)
}

// CreateMatch creates a match; an existing match with the same input set is a conflict
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	h.writeMatch(c, h.matches.CreateMatch, true)
}

// OverwriteMatch replaces any match with the same input set
func (h *MatchHandler) OverwriteMatch(c *gin.Context) {
	h.writeMatch(c, h.matches.OverwriteMatch, false)
}

// UpsertMatch updates the outputs of the match with the same input set, or creates it
func (h *MatchHandler) UpsertMatch(c *gin.Context) {
	h.writeMatch(c, h.matches.UpsertMatch, false)
}

func (h *MatchHandler) writeMatch(
	c *gin.Context,
	op func(context.Context, fulfillmentapp.MatchInput) (*fulfillmentapp.MatchResponse, error),
	created bool,
) {
	var req MatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	match, err := op(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if created {
		h.Created(c, match)
		return
	}
	h.Success(c, match)
}

// GetMatch returns a match with its items
func (h *MatchHandler) GetMatch(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	match, err := h.matches.GetMatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, match)
}

// ListMatches returns the caller's matches
func (h *MatchHandler) ListMatches(c *gin.Context) {
	matches, err := h.matches.ListMatches(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, matches)
}

// DeleteMatch deletes a match; its catalog items are kept
func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.matches.DeleteMatch(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// PriceDelta returns the live minus stored price of the match outputs
func (h *MatchHandler) PriceDelta(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	delta, err := h.reconciliation.PriceDelta(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PriceDeltaResponse{MatchID: id, PriceDelta: delta})
}

// InventorySyncStatus reports whether the match's source inventory drifted from its channel
func (h *MatchHandler) InventorySyncStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	status, err := h.reconciliation.InventorySyncStatus(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// SyncInventory pushes inventory corrections for the given matches.
// A partial failure answers 502 with the per-match result in data.
func (h *MatchHandler) SyncInventory(c *gin.Context) {
	var req IDListRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.reconciliation.SyncInventory(c.Request.Context(), req.IDs)
	if err != nil {
		h.handleErrorWithData(c, err, result)
		return
	}
	h.Success(c, result)
}
