package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	awspkg "github.com/Hosanna-Mosa/c-t-sub002/pkg/aws"
	"github.com/Hosanna-Mosa/c-t-sub002/providers"
	"github.com/Hosanna-Mosa/c-t-sub002/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// zeroDecimalCurrencies have no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true, "KRW": true,
	"MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// MinorUnits converts an amount to the currency's smallest unit.
func MinorUnits(amount float64, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return int64(math.Round(amount))
	}
	return int64(math.Round(amount * 100))
}

type PaymentResult struct {
	OrderID         string     `json:"orderId"`
	Provider        string     `json:"provider"`
	Reference       string     `json:"reference"`
	PaymentStatus   string     `json:"paymentStatus"`
	PaidAt          *time.Time `json:"paidAt,omitempty"`
	AlreadyVerified bool       `json:"alreadyVerified"`
}

type PaymentService interface {
	Verify(ctx context.Context, actor Actor, provider, orderID, reference string) (*PaymentResult, *ServiceError)
}

type paymentServiceImpl struct {
	orders    repository.OrderRepository
	payments  repository.PaymentRepository
	providers map[string]providers.PaymentProvider
	metrics   MetricsRecorder
	now       func() time.Time
	logger    *zap.Logger
}

// NewPaymentService creates a PaymentService over the given providers, keyed
// by their Name. Nil providers are skipped.
func NewPaymentService(
	orders repository.OrderRepository,
	payments repository.PaymentRepository,
	metrics MetricsRecorder,
	logger *zap.Logger,
	provs ...providers.PaymentProvider,
) PaymentService {
	byName := make(map[string]providers.PaymentProvider, len(provs))
	for _, p := range provs {
		if p != nil {
			byName[p.Name()] = p
		}
	}
	return &paymentServiceImpl{
		orders:    orders,
		payments:  payments,
		providers: byName,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *paymentServiceImpl) Verify(ctx context.Context, actor Actor, providerName, orderID, reference string) (*PaymentResult, *ServiceError) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ValidationError("Payment reference is required")
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, &ServiceError{StatusCode: http.StatusServiceUnavailable, Message: "Payment provider is not configured", Kind: KindIntegration}
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, NotFoundError("Order not found")
	}
	order, err := s.orders.FindByIDWithUser(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("Order not found")
		}
		s.logger.Error("Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return nil, PersistenceError("Failed to load order", err)
	}
	if !actor.CanAccess(order.UserID.String()) {
		return nil, ForbiddenError("You do not have access to this order")
	}

	if order.PaymentStatus == models.PaymentStatusPaid {
		if order.PaymentReference == reference {
			return &PaymentResult{
				OrderID:         order.ID.String(),
				Provider:        order.PaymentMethod,
				Reference:       reference,
				PaymentStatus:   order.PaymentStatus,
				PaidAt:          order.PaidAt,
				AlreadyVerified: true,
			}, nil
		}
		return nil, ConflictError("Order is already paid with a different payment")
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, PreconditionError("Cannot verify payment for a cancelled order")
	}

	audit := &models.PaymentVerification{
		OrderID:     order.ID,
		Provider:    providerName,
		Reference:   reference,
		RequestedBy: actor.UserID,
	}

	payment, err := provider.GetPayment(ctx, reference)
	if err != nil {
		s.logger.Error("Payment lookup failed",
			zap.String("provider", providerName),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		audit.Reason = "provider error: " + err.Error()
		s.recordAudit(ctx, audit)
		var apiErr *providers.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ValidationError("Payment not found at provider")
		}
		return nil, IntegrationError(http.StatusBadGateway, "Failed to verify payment with provider", err)
	}
	audit.Amount = payment.Amount
	audit.Currency = payment.Currency
	audit.ProviderStatus = payment.Status

	if reason := mismatch(order, payment); reason != "" {
		audit.Reason = reason
		s.recordAudit(ctx, audit)
		s.recordMetric(ctx, awspkg.MetricPaymentsRejected, providerName)
		s.logger.Warn("Payment rejected",
			zap.String("provider", providerName),
			zap.String("order_id", orderID),
			zap.String("reason", reason),
		)
		return nil, ValidationError(reason)
	}

	paidAt := s.now().UTC()
	order.PaymentStatus = models.PaymentStatusPaid
	order.PaymentMethod = providerName
	order.PaymentReference = reference
	order.PaidAt = &paidAt
	audit.Verified = true

	if err := s.payments.MarkPaid(ctx, order, audit); err != nil {
		if errors.Is(err, repository.ErrPaymentAlreadyApplied) {
			s.logger.Warn("Payment already applied",
				zap.String("order_id", orderID),
				zap.String("reference", reference),
			)
			return nil, ConflictError("Payment has already been applied to an order")
		}
		s.logger.Error("Failed to mark order paid", zap.String("order_id", orderID), zap.Error(err))
		return nil, PersistenceError("Failed to save payment", err)
	}
	s.recordMetric(ctx, awspkg.MetricPaymentsVerified, providerName)
	s.logger.Info("Payment verified",
		zap.String("provider", providerName),
		zap.String("order_id", orderID),
		zap.Int64("amount", payment.Amount),
	)

	return &PaymentResult{
		OrderID:       order.ID.String(),
		Provider:      providerName,
		Reference:     reference,
		PaymentStatus: order.PaymentStatus,
		PaidAt:        order.PaidAt,
	}, nil
}

// mismatch returns why payment cannot settle order, or "".
func mismatch(order *models.Order, payment models.ProviderPayment) string {
	if !payment.Completed {
		return fmt.Sprintf("Payment is not completed (status %s)", payment.Status)
	}
	currency := strings.ToUpper(order.Currency)
	if currency == "" {
		currency = "USD"
	}
	if !strings.EqualFold(payment.Currency, currency) {
		return fmt.Sprintf("Payment currency %s does not match order currency %s", payment.Currency, currency)
	}
	if expected := MinorUnits(order.TotalAmount, currency); payment.Amount != expected {
		return fmt.Sprintf("Payment amount %d does not match order total %d", payment.Amount, expected)
	}
	return ""
}

func (s *paymentServiceImpl) recordAudit(ctx context.Context, v *models.PaymentVerification) {
	if err := s.payments.RecordVerification(ctx, v); err != nil {
		s.logger.Error("Failed to record payment verification", zap.String("order_id", v.OrderID.String()), zap.Error(err))
	}
}

func (s *paymentServiceImpl) recordMetric(ctx context.Context, name, provider string) {
	if s.metrics == nil {
		return
	}
	_ = s.metrics.RecordCount(ctx, name, map[string]string{"Provider": provider})
}
