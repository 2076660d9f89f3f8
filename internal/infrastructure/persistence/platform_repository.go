package persistence

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormPlatformRepository implements PlatformRepository using GORM
type GormPlatformRepository struct {
	db *gorm.DB
}

// NewGormPlatformRepository creates a new GormPlatformRepository
func NewGormPlatformRepository(db *gorm.DB) *GormPlatformRepository {
	return &GormPlatformRepository{db: db}
}

// FindByIDForUser finds a platform by ID within a user's scope
func (r *GormPlatformRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*fulfillment.Platform, error) {
	var model models.PlatformModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser returns the platforms of a user ordered by name
func (r *GormPlatformRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]fulfillment.Platform, error) {
	var rows []models.PlatformModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	platforms := make([]fulfillment.Platform, 0, len(rows))
	for i := range rows {
		platforms = append(platforms, *rows[i].ToDomain())
	}
	return platforms, nil
}

// Create inserts a platform
func (r *GormPlatformRepository) Create(ctx context.Context, platform *fulfillment.Platform) error {
	return r.db.WithContext(ctx).Create(models.PlatformModelFromDomain(platform)).Error
}

// ListAdapterKeys returns the distinct adapter keys referenced by any platform
func (r *GormPlatformRepository) ListAdapterKeys(ctx context.Context) ([]string, error) {
	var rows []models.PlatformModel
	if err := r.db.WithContext(ctx).Select("id", "functions").Find(&rows).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for i := range rows {
		for _, key := range rows[i].Functions.Data().AdapterKeys() {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// GormShopRepository implements ShopRepository using GORM
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByIDForUser finds a shop by ID within a user's scope
func (r *GormShopRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*fulfillment.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a shop
func (r *GormShopRepository) Create(ctx context.Context, shop *fulfillment.Shop) error {
	return r.db.WithContext(ctx).Create(models.ShopModelFromDomain(shop)).Error
}

// GormChannelRepository implements ChannelRepository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByIDForUser finds a channel by ID within a user's scope
func (r *GormChannelRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*fulfillment.Channel, error) {
	var model models.ChannelModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a channel
func (r *GormChannelRepository) Create(ctx context.Context, channel *fulfillment.Channel) error {
	return r.db.WithContext(ctx).Create(models.ChannelModelFromDomain(channel)).Error
}

// compile-time checks against the domain ports
var (
	_ fulfillment.SourceItemRepository      = (*GormSourceItemRepository)(nil)
	_ fulfillment.ChannelItemRepository     = (*GormChannelItemRepository)(nil)
	_ fulfillment.MatchRepository           = (*GormMatchRepository)(nil)
	_ fulfillment.OrderRepository           = (*GormOrderRepository)(nil)
	_ fulfillment.PlannedPurchaseRepository = (*GormPlannedPurchaseRepository)(nil)
	_ fulfillment.PlatformRepository        = (*GormPlatformRepository)(nil)
	_ fulfillment.ShopRepository            = (*GormShopRepository)(nil)
	_ fulfillment.ChannelRepository         = (*GormChannelRepository)(nil)
)
