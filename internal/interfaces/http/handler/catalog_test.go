package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
)

func TestCatalogHandler(t *testing.T) {
	catalog := new(MockCatalog)
	r := newTestRouter(NewCatalogHandler(catalog))
	shopID, channelID, itemID := uuid.New(), uuid.New(), uuid.New()

	catalog.On("EnsureSourceItem", mock.Anything, fulfillment.SourceItemSpec{
		ItemKey: fulfillment.ItemKey{ProductID: "a", Quantity: 1},
		ShopID:  shopID,
	}).Return(itemID, nil)
	catalog.On("EnsureChannelItem", mock.Anything, mock.MatchedBy(func(s fulfillment.ChannelItemSpec) bool {
		return s.ChannelID == channelID
	})).Return(uuid.Nil, shared.ErrNotFound)

	w := doRequest(t, r, http.MethodPost, "/api/v1/catalog/source-items", map[string]any{
		"shop_id": shopID, "product_id": "a", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var got CatalogItemResponse
	decodeResponse(t, w, &got)
	assert.Equal(t, itemID, got.ID)

	w = doRequest(t, r, http.MethodPost, "/api/v1/catalog/channel-items", map[string]any{
		"channel_id": channelID, "product_id": "x", "quantity": 1, "price": "3",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/v1/catalog/source-items", map[string]any{
		"shop_id": shopID, "product_id": "a", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
