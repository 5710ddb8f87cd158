package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMarkPaid_UpdatesOrderAndRecordsVerification(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	now := time.Now()
	order := &models.Order{
		ID:               uuid.New(),
		PaymentStatus:    models.PaymentStatusPaid,
		PaymentMethod:    models.PaymentProviderSquare,
		PaymentReference: "pay_1",
		PaidAt:           &now,
	}
	v := &models.PaymentVerification{
		OrderID:   order.ID,
		Provider:  models.PaymentProviderSquare,
		Reference: "pay_1",
		Verified:  true,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "payment_verifications"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	assert.NoError(t, repo.MarkPaid(context.Background(), order, v))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_AlreadySettled(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	order := &models.Order{ID: uuid.New(), PaymentStatus: models.PaymentStatusPaid, PaymentReference: "pay_1"}
	v := &models.PaymentVerification{OrderID: order.ID, Reference: "pay_1", Verified: true}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.MarkPaid(context.Background(), order, v)
	assert.ErrorIs(t, err, repository.ErrPaymentAlreadyApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_ReferenceUsedByAnotherOrder(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPaymentRepository(gormDB)

	order := &models.Order{ID: uuid.New(), PaymentStatus: models.PaymentStatusPaid, PaymentReference: "pay_1"}
	v := &models.PaymentVerification{OrderID: order.ID, Reference: "pay_1", Verified: true}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET`)).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	err := repo.MarkPaid(context.Background(), order, v)
	assert.ErrorIs(t, err, repository.ErrPaymentAlreadyApplied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
