package handler

import (
	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes idempotent catalog item resolution
type CatalogHandler struct {
	BaseHandler
	catalog CatalogUseCases
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogUseCases) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterRoutes registers the catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalog")
	g.POST("/source-items", h.EnsureSourceItem)
	g.POST("/channel-items", h.EnsureChannelItem)
}

// EnsureSourceItem returns the id of the source item with the given key, creating it if absent
func (h *CatalogHandler) EnsureSourceItem(c *gin.Context) {
	var req SourceItemSpecRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := h.catalog.EnsureSourceItem(c.Request.Context(), req.toSpec())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CatalogItemResponse{ID: id})
}

// EnsureChannelItem returns the id of the channel item with the given key, creating it if absent
func (h *CatalogHandler) EnsureChannelItem(c *gin.Context) {
	var req ChannelItemSpecRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := h.catalog.EnsureChannelItem(c.Request.Context(), req.toSpec())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CatalogItemResponse{ID: id})
}
