package handler

import (
	"github.com/gin-gonic/gin"

	fulfillmentapp "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/dropship/backend/internal/domain/fulfillment"
)

// PlatformHandler handles platforms, shops, channels and the catalog and
// webhook functions proxied to them
type PlatformHandler struct {
	BaseHandler
	platforms PlatformUseCases
}

// NewPlatformHandler creates a new PlatformHandler
func NewPlatformHandler(platforms PlatformUseCases) *PlatformHandler {
	return &PlatformHandler{platforms: platforms}
}

// RegisterRoutes registers platform, shop and channel routes
func (h *PlatformHandler) RegisterRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/platforms")
	p.POST("", h.CreatePlatform)
	p.GET("", h.ListPlatforms)
	p.GET("/:id", h.GetPlatform)

	shops := rg.Group("/shops")
	shops.POST("", h.CreateShop)
	h.registerStoreRoutes(shops, fulfillment.PlatformKindShop)

	channels := rg.Group("/channels")
	channels.POST("", h.CreateChannel)
	h.registerStoreRoutes(channels, fulfillment.PlatformKindChannel)
}

func (h *PlatformHandler) registerStoreRoutes(g *gin.RouterGroup, kind fulfillment.PlatformKind) {
	g.GET("/:id", h.storeHandler(kind, h.getStore))
	g.GET("/:id/products", h.storeHandler(kind, h.searchProducts))
	g.GET("/:id/products/:productId", h.storeHandler(kind, h.getProduct))
	g.GET("/:id/webhooks", h.storeHandler(kind, h.listWebhooks))
	g.POST("/:id/webhooks", h.storeHandler(kind, h.createWebhook))
	g.DELETE("/:id/webhooks/:webhookId", h.storeHandler(kind, h.deleteWebhook))
}

// storeHandler resolves the :id path parameter into a StoreRef of kind
func (h *PlatformHandler) storeHandler(kind fulfillment.PlatformKind, fn func(*gin.Context, fulfillmentapp.StoreRef)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		fn(c, fulfillmentapp.StoreRef{Kind: kind, ID: id})
	}
}

// CreatePlatform registers a platform configuration
func (h *PlatformHandler) CreatePlatform(c *gin.Context) {
	var req CreatePlatformRequest
	if !h.bindJSON(c, &req) {
		return
	}
	platform, err := h.platforms.CreatePlatform(c.Request.Context(), fulfillmentapp.CreatePlatformInput{
		Name:      req.Name,
		Kind:      fulfillment.PlatformKind(req.Kind),
		Functions: req.Functions,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, platform)
}

// ListPlatforms returns the caller's platforms
func (h *PlatformHandler) ListPlatforms(c *gin.Context) {
	platforms, err := h.platforms.ListPlatforms(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, platforms)
}

// GetPlatform returns one platform
func (h *PlatformHandler) GetPlatform(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	platform, err := h.platforms.GetPlatform(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, platform)
}

// CreateShop registers a shop on a shop platform
func (h *PlatformHandler) CreateShop(c *gin.Context) {
	var req CreateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	shop, err := h.platforms.CreateShop(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, shop)
}

// CreateChannel registers a channel on a channel platform
func (h *PlatformHandler) CreateChannel(c *gin.Context) {
	var req CreateStoreRequest
	if !h.bindJSON(c, &req) {
		return
	}
	channel, err := h.platforms.CreateChannel(c.Request.Context(), req.toInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, channel)
}

func (h *PlatformHandler) getStore(c *gin.Context, ref fulfillmentapp.StoreRef) {
	store, err := h.platforms.GetStore(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, store)
}

func (h *PlatformHandler) searchProducts(c *gin.Context, ref fulfillmentapp.StoreRef) {
	query := c.Query("q")
	if query == "" {
		h.BadRequest(c, "Query parameter q is required")
		return
	}
	products, err := h.platforms.SearchProducts(c.Request.Context(), ref, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

func (h *PlatformHandler) getProduct(c *gin.Context, ref fulfillmentapp.StoreRef) {
	product, err := h.platforms.GetProduct(c.Request.Context(), ref, c.Param("productId"), c.Query("variant_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

func (h *PlatformHandler) listWebhooks(c *gin.Context, ref fulfillmentapp.StoreRef) {
	webhooks, err := h.platforms.ListWebhooks(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, webhooks)
}

func (h *PlatformHandler) createWebhook(c *gin.Context, ref fulfillmentapp.StoreRef) {
	var req CreateWebhookRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := h.platforms.CreateWebhook(c.Request.Context(), ref, req.Topic, req.Endpoint)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, WebhookResponse{ID: id})
}

func (h *PlatformHandler) deleteWebhook(c *gin.Context, ref fulfillmentapp.StoreRef) {
	if err := h.platforms.DeleteWebhook(c.Request.Context(), ref, c.Param("webhookId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
