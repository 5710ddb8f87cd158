package repository

import (
	"context"
	"errors"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"gorm.io/gorm"
)

// ErrPaymentAlreadyApplied is returned by MarkPaid when the order was settled
// concurrently or the payment reference already settles another order.
var ErrPaymentAlreadyApplied = errors.New("payment already applied")

// PaymentRepository records verification attempts and settles paid orders.
type PaymentRepository interface {
	RecordVerification(ctx context.Context, v *models.PaymentVerification) error
	// MarkPaid writes the order's payment fields and the successful
	// verification row in one transaction. It only settles an unpaid order.
	MarkPaid(ctx context.Context, order *models.Order, v *models.PaymentVerification) error
}

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) RecordVerification(ctx context.Context, v *models.PaymentVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *GormPaymentRepository) MarkPaid(ctx context.Context, order *models.Order, v *models.PaymentVerification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(order).
			Where("payment_status <> ?", models.PaymentStatusPaid).
			Select("payment_status", "payment_method", "payment_reference", "paid_at").
			Updates(order)
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrPaymentAlreadyApplied
		}
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPaymentAlreadyApplied
		}
		return tx.Create(v).Error
	})
}
