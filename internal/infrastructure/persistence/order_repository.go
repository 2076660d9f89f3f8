package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForUser loads an order with its line items within a user's scope
func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*fulfillment.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts an order together with its line items
func (r *GormOrderRepository) Create(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error
}

// Update saves the order header
func (r *GormOrderRepository) Update(ctx context.Context, order *fulfillment.Order) error {
	model := models.OrderModelFromDomain(order)
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = time.Now()
	}

	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ? AND owner_user_id = ?", order.ID, order.OwnerUserID).
		Updates(map[string]any{
			"order_name":      model.OrderName,
			"email":           model.Email,
			"shipping_method": model.ShippingMethod,
			"shipping":        model.Shipping,
			"status":          model.Status,
			"order_error":     model.OrderError,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormPlannedPurchaseRepository implements PlannedPurchaseRepository using GORM
type GormPlannedPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPlannedPurchaseRepository creates a new GormPlannedPurchaseRepository
func NewGormPlannedPurchaseRepository(db *gorm.DB) *GormPlannedPurchaseRepository {
	return &GormPlannedPurchaseRepository{db: db}
}

// undispatched selects lines with neither purchase id nor url
func undispatched(db *gorm.DB) *gorm.DB {
	return db.Where("purchase_id = '' AND url = ''")
}

func creationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("position ASC")
}

// FindByOrder returns all planned purchases of an order in creation order
func (r *GormPlannedPurchaseRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]fulfillment.PlannedPurchase, error) {
	return r.find(r.db.WithContext(ctx).Where("order_id = ?", orderID))
}

// FindUndispatched returns the undispatched planned purchases of an order in creation order
func (r *GormPlannedPurchaseRepository) FindUndispatched(ctx context.Context, orderID uuid.UUID) ([]fulfillment.PlannedPurchase, error) {
	return r.find(r.db.WithContext(ctx).Where("order_id = ?", orderID).Scopes(undispatched))
}

// CountUndispatched counts the undispatched planned purchases of an order
func (r *GormPlannedPurchaseRepository) CountUndispatched(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PlannedPurchaseModel{}).
		Where("order_id = ?", orderID).
		Scopes(undispatched).
		Count(&count).Error
	return count, err
}

// ReplaceUndispatched deletes the undispatched purchases of an order and inserts purchases
func (r *GormPlannedPurchaseRepository) ReplaceUndispatched(ctx context.Context, orderID uuid.UUID, purchases []fulfillment.PlannedPurchase) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).
			Scopes(undispatched).
			Delete(&models.PlannedPurchaseModel{}).Error; err != nil {
			return err
		}
		if len(purchases) == 0 {
			return nil
		}
		rows := make([]*models.PlannedPurchaseModel, 0, len(purchases))
		for i, p := range purchases {
			p.OrderID = orderID
			rows = append(rows, models.PlannedPurchaseModelFromDomain(p, i))
		}
		return tx.Create(&rows).Error
	})
}

// SaveResults writes the dispatch outcome of each purchase
func (r *GormPlannedPurchaseRepository) SaveResults(ctx context.Context, purchases []fulfillment.PlannedPurchase) error {
	if len(purchases) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range purchases {
			if err := tx.Model(&models.PlannedPurchaseModel{}).
				Where("id = ?", p.ID).
				Updates(map[string]any{
					"purchase_id": p.PurchaseID,
					"url":         p.URL,
					"error":       p.Error,
					"updated_at":  now,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormPlannedPurchaseRepository) find(query *gorm.DB) ([]fulfillment.PlannedPurchase, error) {
	var rows []models.PlannedPurchaseModel
	if err := query.Scopes(creationOrder).Find(&rows).Error; err != nil {
		return nil, err
	}
	purchases := make([]fulfillment.PlannedPurchase, 0, len(rows))
	for i := range rows {
		purchases = append(purchases, rows[i].ToDomain())
	}
	return purchases, nil
}
