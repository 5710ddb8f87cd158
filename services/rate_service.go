package services

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/cache"
	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/Hosanna-Mosa/c-t-sub002/providers"
	"go.uber.org/zap"
)

// RateCache stores quotes by request key.
type RateCache interface {
	Get(ctx context.Context, key string) ([]models.ShippingRate, bool)
	Set(ctx context.Context, key string, rates []models.ShippingRate)
}

// RateService quotes shipping for a parcel from the warehouse.
type RateService interface {
	Rates(ctx context.Context, req *models.RateQuoteRequest) ([]models.ShippingRate, *ServiceError)
	Transit(ctx context.Context, req *models.RateQuoteRequest) ([]models.TransitEstimate, *ServiceError)
	Options(ctx context.Context, req *models.RateQuoteRequest) (*models.ShippingOptions, *ServiceError)
}

type rateServiceImpl struct {
	provider providers.ShippingProvider
	cache    RateCache
	origin   models.Address
	now      func() time.Time
	logger   *zap.Logger
}

// NewRateService creates a RateService. cache may be nil.
func NewRateService(provider providers.ShippingProvider, rateCache RateCache, origin models.Address, logger *zap.Logger) RateService {
	return &rateServiceImpl{
		provider: provider,
		cache:    rateCache,
		origin:   origin,
		now:      time.Now,
		logger:   logger,
	}
}

// Rates returns the quotes sorted by amount, cheapest first.
func (s *rateServiceImpl) Rates(ctx context.Context, req *models.RateQuoteRequest) ([]models.ShippingRate, *ServiceError) {
	parcel := req.Parcel()
	key := cache.RateQuoteKey(s.origin, req.Destination, parcel)
	if s.cache != nil {
		if rates, ok := s.cache.Get(ctx, key); ok && len(rates) > 0 {
			s.logger.Debug("Rate quote cache hit", zap.String("key", key))
			return rates, nil
		}
	}

	rates, err := s.provider.GetRates(ctx, parcel, s.origin, req.Destination)
	if err != nil {
		s.logger.Error("GetRates failed", zap.Error(err))
		return nil, IntegrationError(http.StatusBadGateway, "Failed to retrieve shipping rates", err)
	}
	if len(rates) == 0 {
		return nil, NotFoundError("No shipping rates available for the given destination")
	}

	sort.SliceStable(rates, func(i, j int) bool { return rates[i].Amount < rates[j].Amount })
	if s.cache != nil {
		s.cache.Set(ctx, key, rates)
	}
	return rates, nil
}

// Transit returns delivery windows, fastest first. Rates without an estimate
// sort last.
func (s *rateServiceImpl) Transit(ctx context.Context, req *models.RateQuoteRequest) ([]models.TransitEstimate, *ServiceError) {
	rates, svcErr := s.Rates(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	out := make([]models.TransitEstimate, 0, len(rates))
	for _, r := range rates {
		est := models.TransitEstimate{
			Carrier:       r.Carrier,
			ServiceLevel:  r.ServiceLevel,
			EstimatedDays: r.EstimatedDays,
		}
		if r.EstimatedDays > 0 {
			at := today.AddDate(0, 0, r.EstimatedDays)
			est.EstimatedDelivery = &at
		}
		out = append(out, est)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return daysRank(out[i].EstimatedDays) < daysRank(out[j].EstimatedDays)
	})
	return out, nil
}

// Options picks the cheapest and the fastest rate.
func (s *rateServiceImpl) Options(ctx context.Context, req *models.RateQuoteRequest) (*models.ShippingOptions, *ServiceError) {
	rates, svcErr := s.Rates(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}

	opts := &models.ShippingOptions{Options: rates}
	cheapest := rates[0]
	opts.Cheapest = &cheapest
	for i := range rates {
		r := rates[i]
		if r.EstimatedDays <= 0 {
			continue
		}
		if opts.Fastest == nil || r.EstimatedDays < opts.Fastest.EstimatedDays ||
			(r.EstimatedDays == opts.Fastest.EstimatedDays && r.Amount < opts.Fastest.Amount) {
			opts.Fastest = &r
		}
	}
	return opts, nil
}

func daysRank(days int) int {
	if days <= 0 {
		return int(^uint(0) >> 1)
	}
	return days
}
