package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dropship/backend/internal/domain/fulfillment"
	"github.com/dropship/backend/internal/domain/shared"
	"github.com/dropship/backend/internal/infrastructure/persistence/models"
)

// GormMatchRepository implements MatchRepository using GORM.
// Input and output sets live in the match_inputs and match_outputs join tables.
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// FindByIDForUser finds a match by ID within a user's scope
func (r *GormMatchRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*fulfillment.Match, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Scopes(ownedBy(userID)).Where("id = ?", id))
}

// FindByInputSignature finds the match of a user whose input id-set has the given signature
func (r *GormMatchRepository) FindByInputSignature(ctx context.Context, userID uuid.UUID, signature string) (*fulfillment.Match, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Scopes(ownedBy(userID)).Where("input_signature = ?", signature))
}

// FindCandidates returns the matches of a user with exactly inputCount inputs, most recently updated first
func (r *GormMatchRepository) FindCandidates(ctx context.Context, userID uuid.UUID, inputCount int) ([]fulfillment.Match, error) {
	var rows []models.MatchModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Where("input_count = ?", inputCount).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// FindAllForUser returns every match of a user, newest first
func (r *GormMatchRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]fulfillment.Match, error) {
	var rows []models.MatchModel
	if err := r.db.WithContext(ctx).
		Scopes(ownedBy(userID)).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// Create inserts a match with its input and output links
func (r *GormMatchRepository) Create(ctx context.Context, match *fulfillment.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createMatch(tx, match)
	})
}

// ReplaceOutputs swaps the output links of an existing match, keeping its id
func (r *GormMatchRepository) ReplaceOutputs(ctx context.Context, match *fulfillment.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updatedAt := match.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now()
		}
		result := tx.Model(&models.MatchModel{}).
			Where("id = ? AND owner_user_id = ?", match.ID, match.OwnerUserID).
			Update("updated_at", updatedAt)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		if err := tx.Where("match_id = ?", match.ID).Delete(&models.MatchOutputModel{}).Error; err != nil {
			return err
		}
		outputs := models.MatchOutputModelsFromDomain(match)
		if len(outputs) == 0 {
			return nil
		}
		return tx.Create(&outputs).Error
	})
}

// Recreate deletes old and inserts replacement in one transaction
func (r *GormMatchRepository) Recreate(ctx context.Context, old, replacement *fulfillment.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteMatch(tx, old.OwnerUserID, old.ID); err != nil {
			return err
		}
		return createMatch(tx, replacement)
	})
}

// DeleteForUser deletes a match and its links within a user's scope
func (r *GormMatchRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteMatch(tx, userID, id)
	})
}

func createMatch(tx *gorm.DB, match *fulfillment.Match) error {
	model, inputs, outputs := models.MatchModelFromDomain(match)
	if err := tx.Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: input set %s", fulfillment.ErrDuplicateMatch, model.InputSignature)
		}
		return err
	}
	if len(inputs) > 0 {
		if err := tx.Create(&inputs).Error; err != nil {
			return err
		}
	}
	if len(outputs) > 0 {
		if err := tx.Create(&outputs).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteMatch(tx *gorm.DB, userID, id uuid.UUID) error {
	result := tx.Scopes(ownedBy(userID)).Where("id = ?", id).Delete(&models.MatchModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	if err := tx.Where("match_id = ?", id).Delete(&models.MatchInputModel{}).Error; err != nil {
		return err
	}
	return tx.Where("match_id = ?", id).Delete(&models.MatchOutputModel{}).Error
}

func (r *GormMatchRepository) findOne(ctx context.Context, query *gorm.DB) (*fulfillment.Match, error) {
	var row models.MatchModel
	if err := query.First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	matches, err := r.hydrate(ctx, []models.MatchModel{row})
	if err != nil {
		return nil, err
	}
	return &matches[0], nil
}

// hydrate loads the input and output items of rows, keeping the row order
func (r *GormMatchRepository) hydrate(ctx context.Context, rows []models.MatchModel) ([]fulfillment.Match, error) {
	if len(rows) == 0 {
		return []fulfillment.Match{}, nil
	}
	db := r.db.WithContext(ctx)

	matchIDs := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		matchIDs[i] = row.ID
	}

	var inputLinks []models.MatchInputModel
	if err := db.Where("match_id IN ?", matchIDs).Order("source_item_id").Find(&inputLinks).Error; err != nil {
		return nil, err
	}
	var outputLinks []models.MatchOutputModel
	if err := db.Where("match_id IN ?", matchIDs).Order("channel_item_id").Find(&outputLinks).Error; err != nil {
		return nil, err
	}

	sourceIDs := make([]uuid.UUID, 0, len(inputLinks))
	for _, l := range inputLinks {
		sourceIDs = append(sourceIDs, l.SourceItemID)
	}
	channelIDs := make([]uuid.UUID, 0, len(outputLinks))
	for _, l := range outputLinks {
		channelIDs = append(channelIDs, l.ChannelItemID)
	}

	sources := make(map[uuid.UUID]fulfillment.SourceItem, len(sourceIDs))
	if len(sourceIDs) > 0 {
		var items []models.SourceItemModel
		if err := db.Where("id IN ?", sourceIDs).Find(&items).Error; err != nil {
			return nil, err
		}
		for i := range items {
			sources[items[i].ID] = *items[i].ToDomain()
		}
	}
	channels := make(map[uuid.UUID]fulfillment.ChannelItem, len(channelIDs))
	if len(channelIDs) > 0 {
		var items []models.ChannelItemModel
		if err := db.Where("id IN ?", channelIDs).Find(&items).Error; err != nil {
			return nil, err
		}
		for i := range items {
			channels[items[i].ID] = *items[i].ToDomain()
		}
	}

	inputsByMatch := make(map[uuid.UUID][]fulfillment.SourceItem, len(rows))
	for _, l := range inputLinks {
		if item, ok := sources[l.SourceItemID]; ok {
			inputsByMatch[l.MatchID] = append(inputsByMatch[l.MatchID], item)
		}
	}
	outputsByMatch := make(map[uuid.UUID][]fulfillment.ChannelItem, len(rows))
	for _, l := range outputLinks {
		if item, ok := channels[l.ChannelItemID]; ok {
			outputsByMatch[l.MatchID] = append(outputsByMatch[l.MatchID], item)
		}
	}

	matches := make([]fulfillment.Match, 0, len(rows))
	for i := range rows {
		matches = append(matches, *rows[i].ToDomain(inputsByMatch[rows[i].ID], outputsByMatch[rows[i].ID]))
	}
	return matches, nil
}
