package repository

import (
	"context"
	"time"

	"jersey-storefront/internal/model"
	"jersey-storefront/internal/textutil"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxFailureReasonLen = 512

type OrderRepository interface {
	CreateWithItems(ctx context.Context, tx *gorm.DB, order *model.Order) error
	SetSessionID(ctx context.Context, orderID uint, sessionID string) error
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, confirmation *model.PaymentConfirmation) (bool, error)
	MarkFailed(ctx context.Context, orderID uint, reason string) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]*model.Order, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Order, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// CreateWithItems writes the order header and then its items on tx. The
// caller owns the transaction, so a failed item insert rolls back the header.
func (r *orderRepoImpl) CreateWithItems(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	items := order.Items
	if err := tx.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	order.Items = items
	return nil
}

func (r *orderRepoImpl) SetSessionID(ctx context.Context, orderID uint, sessionID string) error {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"stripe_session_id": sessionID,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	return r.findOne(ctx, "id = ?", orderID)
}

func (r *orderRepoImpl) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

func (r *orderRepoImpl) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *orderRepoImpl) findOne(ctx context.Context, query string, arg interface{}) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where(query, arg).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

// MarkPaid moves a pending order to paid and fills the customer details the
// provider collected. It reports whether this call performed the transition;
// an order that is already paid or failed is left untouched.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderID uint, confirmation *model.PaymentConfirmation) (bool, error) {
	updates := map[string]interface{}{
		"status":     model.OrderStatusPaid,
		"updated_at": time.Now(),
	}
	if confirmation != nil {
		if confirmation.PaymentIntentID != "" {
			updates["payment_intent_id"] = confirmation.PaymentIntentID
		}
		c := confirmation.Customer
		setIfPresent(updates, "customer_email", c.Email)
		setIfPresent(updates, "customer_name", c.Name)
		setIfPresent(updates, "customer_phone", c.Phone)
		if !c.Address.IsZero() {
			updates["shipping_line1"] = c.Address.Line1
			updates["shipping_line2"] = c.Address.Line2
			updates["shipping_city"] = c.Address.City
			updates["shipping_state"] = c.Address.State
			updates["shipping_postal_code"] = c.Address.PostalCode
			updates["shipping_country"] = c.Address.Country
		}
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) MarkFailed(ctx context.Context, orderID uint, reason string) (bool, error) {
	reason = textutil.Truncate(reason, maxFailureReasonLen)

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":         model.OrderStatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *orderRepoImpl) ListRecent(ctx context.Context, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("status = ? AND created_at < ?", model.OrderStatusPending, createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func setIfPresent(updates map[string]interface{}, column, value string) {
	if value != "" {
		updates[column] = value
	}
}
