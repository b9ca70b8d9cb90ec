package repository

import (
	"context"
	"time"

	"jersey-storefront/internal/model"
	"jersey-storefront/internal/textutil"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxLastErrorLen = 1024

type AttributionForwardRepository interface {
	Enqueue(ctx context.Context, tx *gorm.DB, orderID uint, payload []byte) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.AttributionForward, error)
	MarkSent(ctx context.Context, id uint) error
	RecordFailure(ctx context.Context, id uint, lastErr string, nextAttemptAt time.Time, dead bool) error
	FindByOrderID(ctx context.Context, orderID uint) (*model.AttributionForward, error)
}

type attributionForwardRepoImpl struct {
	db *gorm.DB
}

func NewAttributionForwardRepository(db *gorm.DB) AttributionForwardRepository {
	return &attributionForwardRepoImpl{db: db}
}

// Enqueue inserts the outbox row inside the caller's transaction. A second
// enqueue for the same order is dropped by the unique index.
func (r *attributionForwardRepoImpl) Enqueue(ctx context.Context, tx *gorm.DB, orderID uint, payload []byte) error {
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(&model.AttributionForward{
			OrderID:       orderID,
			Payload:       payload,
			Status:        model.ForwardStatusPending,
			NextAttemptAt: time.Now(),
		}).Error
}

func (r *attributionForwardRepoImpl) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*model.AttributionForward, error) {
	var rows []*model.AttributionForward
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", model.ForwardStatusPending, now).
		Order("next_attempt_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error

	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *attributionForwardRepoImpl) MarkSent(ctx context.Context, id uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.AttributionForward{}).
		Where("id = ? AND status = ?", id, model.ForwardStatusPending).
		Updates(map[string]interface{}{
			"status":     model.ForwardStatusSent,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
			"sent_at":    &now,
			"updated_at": now,
		}).Error
}

func (r *attributionForwardRepoImpl) RecordFailure(ctx context.Context, id uint, lastErr string, nextAttemptAt time.Time, dead bool) error {
	lastErr = textutil.Truncate(lastErr, maxLastErrorLen)
	status := model.ForwardStatusPending
	if dead {
		status = model.ForwardStatusDead
	}

	return r.db.WithContext(ctx).Model(&model.AttributionForward{}).
		Where("id = ? AND status = ?", id, model.ForwardStatusPending).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        gorm.Expr("attempts + 1"),
			"last_error":      lastErr,
			"next_attempt_at": nextAttemptAt,
			"updated_at":      time.Now(),
		}).Error
}

func (r *attributionForwardRepoImpl) FindByOrderID(ctx context.Context, orderID uint) (*model.AttributionForward, error) {
	var row model.AttributionForward
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
