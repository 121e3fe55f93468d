package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Savit10/streamsense/internal/errs"
	"github.com/Savit10/streamsense/internal/infrastructure/persistence/sqlite/model"
	"github.com/Savit10/streamsense/internal/ports"
)

type FeatureRepository struct {
	db *gorm.DB
}

var _ ports.FeatureRepository = (*FeatureRepository)(nil)

func NewFeatureRepository(db *gorm.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// dbFromContext prefers the transaction handle placed in context by the
// unit of work, so repository calls inside WithTx share its atomicity.
func (r *FeatureRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *FeatureRepository) GetFeature(ctx context.Context, userID uint64) (ports.UserFeature, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.UserFeature{}, err
	}

	var row model.UserFeature
	if err := db.Where("user_id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserFeature{}, ports.ErrFeatureNotFound
		}
		return ports.UserFeature{}, errs.Wrap(err, "query user feature")
	}
	return mapFeature(row), nil
}

func (r *FeatureRepository) ListFeatures(ctx context.Context, limit int) ([]ports.UserFeature, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.UserFeature{}).Order("user_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.UserFeature
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query user features")
	}

	items := make([]ports.UserFeature, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFeature(row))
	}
	return items, nil
}

func (r *FeatureRepository) ListRecentEvents(ctx context.Context, n int) ([]ports.EventLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Event{}).Order("event_id desc")
	if n > 0 {
		query = query.Limit(n)
	}

	var rows []model.Event
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query recent events")
	}

	items := make([]ports.EventLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.EventLogEntry{
			EventID:    row.EventID,
			UserID:     row.UserID,
			ItemID:     row.ItemID,
			EventType:  row.EventType,
			EventValue: row.EventValue,
			EventTS:    row.EventTS,
		})
	}
	return items, nil
}

func (r *FeatureRepository) UpsertFeature(ctx context.Context, row ports.UserFeature) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	record := model.UserFeature{
		UserID:         row.UserID,
		LastEventTS:    row.LastEventTS,
		EventCount:     row.EventCount,
		AddToCartCount: row.AddToCartCount,
		PurchaseCount:  row.PurchaseCount,
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"last_event_ts":     record.LastEventTS,
			"event_count":       record.EventCount,
			"add_to_cart_count": record.AddToCartCount,
			"purchase_count":    record.PurchaseCount,
		}),
	}).Create(&record).Error; err != nil {
		return errs.Wrap(err, "upsert user feature")
	}
	return nil
}

func (r *FeatureRepository) AppendEvent(ctx context.Context, input ports.EventLogAppend) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Event{
		UserID:     input.UserID,
		ItemID:     input.ItemID,
		EventType:  input.EventType,
		EventValue: input.EventValue,
		EventTS:    input.EventTS,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "append event log entry")
	}
	return nil
}

func (r *FeatureRepository) GetWatermark(ctx context.Context, partition int) (int64, bool, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, false, err
	}

	var row model.OffsetWatermark
	if err := db.Where("partition_id = ?", partition).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, errs.Wrap(err, "query offset watermark")
	}
	return row.Offset, true, nil
}

func (r *FeatureRepository) SetWatermark(ctx context.Context, partition int, offset int64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.OffsetWatermark{
		Partition: partition,
		Offset:    offset,
		UpdatedAt: nowUTCString(),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "partition_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"committed_offset": row.Offset,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert offset watermark")
	}
	return nil
}

func mapFeature(row model.UserFeature) ports.UserFeature {
	return ports.UserFeature{
		UserID:         row.UserID,
		LastEventTS:    row.LastEventTS,
		EventCount:     row.EventCount,
		AddToCartCount: row.AddToCartCount,
		PurchaseCount:  row.PurchaseCount,
	}
}
