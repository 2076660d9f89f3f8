package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormSourceItemRepository implements SourceItemRepository using GORM
type GormSourceItemRepository struct {
	db *gorm.DB
}

// NewGormSourceItemRepository creates a new GormSourceItemRepository
func NewGormSourceItemRepository(db *gorm.DB) *GormSourceItemRepository {
	return &GormSourceItemRepository{db: db}
}

// FindByKey finds a source item by its natural key within a user's scope
func (r *GormSourceItemRepository) FindByKey(ctx context.Context, userID uuid.UUID, spec fulfillment.SourceItemSpec) (*fulfillment.SourceItem, error) {
	var model models.SourceItemModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("shop_id = ? AND product_id = ? AND variant_id = ? AND quantity = ?",
			spec.ShopID, spec.ProductID, spec.VariantID, spec.Quantity).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a source item
func (r *GormSourceItemRepository) Create(ctx context.Context, item *fulfillment.SourceItem) error {
	if err := r.db.WithContext(ctx).Create(models.SourceItemModelFromDomain(item)).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: source item %s", shared.ErrAlreadyExists, item.ItemKey)
		}
		return err
	}
	return nil
}

// GormChannelItemRepository implements ChannelItemRepository using GORM
type GormChannelItemRepository struct {
	db *gorm.DB
}

// NewGormChannelItemRepository creates a new GormChannelItemRepository
func NewGormChannelItemRepository(db *gorm.DB) *GormChannelItemRepository {
	return &GormChannelItemRepository{db: db}
}

// FindByKey finds a channel item by its natural key within a user's scope
func (r *GormChannelItemRepository) FindByKey(ctx context.Context, userID uuid.UUID, spec fulfillment.ChannelItemSpec) (*fulfillment.ChannelItem, error) {
	var model models.ChannelItemModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("channel_id = ? AND product_id = ? AND variant_id = ? AND quantity = ?",
			spec.ChannelID, spec.ProductID, spec.VariantID, spec.Quantity).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a channel item
func (r *GormChannelItemRepository) Create(ctx context.Context, item *fulfillment.ChannelItem) error {
	if err := r.db.WithContext(ctx).Create(models.ChannelItemModelFromDomain(item)).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: channel item %s", shared.ErrAlreadyExists, item.ItemKey)
		}
		return err
	}
	return nil
}
