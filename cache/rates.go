package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/Hosanna-Mosa/c-t-sub002/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRateTTL = 15 * time.Minute

// RateQuoteCache memoises carrier quotes for identical requests.
type RateQuoteCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRateQuoteCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RateQuoteCache {
	if ttl <= 0 {
		ttl = DefaultRateTTL
	}
	return &RateQuoteCache{redis: client, ttl: ttl, logger: logger}
}

// RateQuoteKey hashes the normalised quote inputs.
func RateQuoteKey(origin, destination models.Address, parcel models.Parcel) string {
	norm := func(a models.Address) models.Address {
		a.Name, a.Phone, a.Email = "", "", ""
		a.Street1 = strings.ToUpper(strings.TrimSpace(a.Street1))
		a.Street2 = strings.ToUpper(strings.TrimSpace(a.Street2))
		a.City = strings.ToUpper(strings.TrimSpace(a.City))
		a.State = strings.ToUpper(strings.TrimSpace(a.State))
		a.PostalCode = strings.ToUpper(strings.ReplaceAll(a.PostalCode, " ", ""))
		a.Country = strings.ToUpper(strings.TrimSpace(a.Country))
		return a
	}
	b, _ := json.Marshal(struct {
		From   models.Address `json:"f"`
		To     models.Address `json:"t"`
		Parcel models.Parcel  `json:"p"`
	}{norm(origin), norm(destination), parcel})
	sum := sha256.Sum256(b)
	return "rates:" + hex.EncodeToString(sum[:])
}

func (c *RateQuoteCache) Get(ctx context.Context, key string) ([]models.ShippingRate, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rates []models.ShippingRate
	if err := json.Unmarshal(data, &rates); err != nil {
		c.logger.Warn("Failed to unmarshal cached rates", zap.Error(err))
		return nil, false
	}
	return rates, true
}

func (c *RateQuoteCache) Set(ctx context.Context, key string, rates []models.ShippingRate) {
	data, err := json.Marshal(rates)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to cache rates", zap.Error(err))
	}
}
